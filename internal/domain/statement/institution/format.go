// Package institution holds the closed set of statement layouts the engine knows how
// to read. Each layout is a Format: an applicability predicate plus a line grammar
// that turns page text into transaction records. Formats are registered in a fixed
// order and the first one that claims a document wins.
package institution

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement/normalizer"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement/patterns"
)

// Registered format names. The classifier keys its account-type table on these.
const (
	NameBMOAccount          = "BMO Account"
	NameBMO                 = "BMO"
	NameEQBank              = "EQ Bank"
	NameTDCreditCard        = "TD Credit Card"
	NameTDBank              = "TD Bank"
	NameTangerineCreditCard = "Tangerine Credit Card"
	NameTangerine           = "Tangerine"
	NameRBCVisa             = "RBC Visa"
	NameRBCBank             = "RBC Bank"
	NameSimplii             = "Simplii"
	NameCIBCVisa            = "CIBC Visa"
	NameCIBC                = "CIBC"
	NameAmex                = "Amex"
	NameScotiabank          = "Scotiabank"
	NameScotiaCreditCard    = "Scotia Credit Card"
	NameWise                = "Wise"
)

// Format is one registered statement layout.
type Format interface {
	// Name is the institution label stamped on every record.
	Name() string
	// Applies reports whether the layout claims a document, given the text of its
	// first pages and its file name.
	Applies(text, filename string) bool
	// Extract runs the layout's line grammar over every page in order.
	Extract(pages []statement.Page) *statement.Extraction
}

// base carries what every format shares: its name and the confidence it assigns.
type base struct {
	name       string
	confidence float64
}

func (b base) Name() string { return b.name }

// record builds a dated record stamped with the format's provenance.
func (b base) record(page int, date, description string, amount decimal.Decimal) statement.TransactionRecord {
	return statement.TransactionRecord{
		Date:              date,
		Description:       normalizer.CleanDescription(description),
		Amount:            amount,
		Page:              page,
		SourceInstitution: b.name,
		ExtractionMethod:  statement.MethodInstitution,
		Confidence:        b.confidence,
	}
}

// trimmedLines returns the page's lines with surrounding whitespace removed.
func trimmedLines(p statement.Page) []string {
	lines := p.Lines()
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	return lines
}

// skipLine reports whether a line is a balance, total or disclaimer row. Every
// layout checks it before its own grammar.
func skipLine(line string) bool {
	return patterns.IsNonTransaction(line)
}

// hasAny is a case-sensitive substring test over a list of indicators.
func hasAny(s string, indicators ...string) bool {
	for _, ind := range indicators {
		if strings.Contains(s, ind) {
			return true
		}
	}
	return false
}

// hasAnyLower lower-cases s and tests it against already lower-case indicators.
func hasAnyLower(s string, indicators ...string) bool {
	return hasAny(strings.ToLower(s), indicators...)
}

// keywordDirection returns the direction decided by the first matching keyword
// list, credits first. It returns DirectionUnknown when neither list matches.
func keywordDirection(lower string, credits, debits []string) statement.Direction {
	switch {
	case hasAny(lower, credits...):
		return statement.DirectionCredit
	case hasAny(lower, debits...):
		return statement.DirectionDebit
	default:
		return statement.DirectionUnknown
	}
}

// parseUnsigned parses a column value that the statement prints without a sign.
func parseUnsigned(raw string) (decimal.Decimal, bool) {
	v, err := normalizer.ParseAmount(raw)
	if err != nil {
		return decimal.Zero, false
	}
	return v, true
}
