// Package statement holds the data model shared by every stage of the bank-statement
// extraction engine: pages in, transaction records and per-document results out.
package statement

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Direction is the credit/debit classification of a transaction.
// It is distinct from the sign of the raw parsed amount.
type Direction string

const (
	DirectionUnknown Direction = ""
	DirectionCredit  Direction = "credit"
	DirectionDebit   Direction = "debit"
)

// ConfidenceLevel buckets a 0.0-1.0 confidence score.
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "high"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceLow    ConfidenceLevel = "low"
)

// LevelFor maps a per-record confidence score to its level.
func LevelFor(confidence float64) ConfidenceLevel {
	switch {
	case confidence >= 0.9:
		return ConfidenceHigh
	case confidence >= 0.6:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// downgrade returns the next lower level.
func (l ConfidenceLevel) downgrade() ConfidenceLevel {
	switch l {
	case ConfidenceHigh:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// ExtractionMethod records which extraction tier produced a record.
type ExtractionMethod string

const (
	MethodInstitution      ExtractionMethod = "institution"
	MethodGenericRegion    ExtractionMethod = "generic_region"
	MethodGenericFlat      ExtractionMethod = "generic_flat"
	MethodGenericMultiLine ExtractionMethod = "generic_multiline"
	MethodOCRLine          ExtractionMethod = "ocr"
)

// DescriptionFallback replaces descriptions that are empty after cleaning.
const DescriptionFallback = "Transaction"

// TransactionRecord is one extracted line item.
type TransactionRecord struct {
	Date        string // MM-DD, year intentionally omitted
	PostingDate string // optional second date for dual-date formats
	Description string
	Amount      decimal.Decimal // raw parsed sign, before classification
	Direction   Direction
	IsSpending  bool
	Balance     *decimal.Decimal

	Currency     string
	ExchangeInfo string
	Reference    string
	Location     string
	Reward       *decimal.Decimal
	Note         string

	Page              int
	SourceInstitution string
	ExtractionMethod  ExtractionMethod
	Confidence        float64
	ConfidenceLevel   ConfidenceLevel

	// Filled by the optional categorization collaborator.
	Category           string
	CategoryConfidence float64
	MatchedRule        string
}

// AbsAmount returns the magnitude of the raw amount.
func (r TransactionRecord) AbsAmount() decimal.Decimal {
	return r.Amount.Abs()
}

// DirectionSet reports whether an extractor already decided the direction.
func (r TransactionRecord) DirectionSet() bool {
	return r.Direction != DirectionUnknown
}

func (r TransactionRecord) String() string {
	return fmt.Sprintf("%s %s %s", r.Date, r.Description, r.Amount.StringFixed(2))
}

// Page is the unit every extractor consumes: the extractable text of one PDF page.
type Page struct {
	Number int // 1-based
	Text   string
}

// Lines splits the page text into physical lines.
func (p Page) Lines() []string {
	return splitLines(p.Text)
}

// DroppedLine is a candidate line that matched part of a grammar but did not
// produce a record. It never surfaces as an error; it feeds diagnostics.
type DroppedLine struct {
	Page   int
	Line   string
	Reason string
}

func (d DroppedLine) Error() string {
	return fmt.Sprintf("page %d: %s: %q", d.Page, d.Reason, d.Line)
}

// Reasons attached to dropped lines.
const (
	DropNoDate           = "no date"
	DropInvalidDate      = "invalid date"
	DropNoAmount         = "no amount"
	DropZeroAmount       = "non-positive amount"
	DropShortDescription = "description too short"
	DropUnparsable       = "grammar mismatch"
	DropIncompleteBlock  = "incomplete multi-line block"
	DropAmbiguousAmount  = "ambiguous amount column"
)

// Extraction is what every extractor returns.
type Extraction struct {
	Records  []TransactionRecord
	Dropped  []DroppedLine
	Warnings []string
}

// Add appends a record, applying the description fallback.
func (e *Extraction) Add(r TransactionRecord) {
	if r.Description == "" {
		r.Description = DescriptionFallback
	}
	if r.ConfidenceLevel == "" {
		r.ConfidenceLevel = LevelFor(r.Confidence)
	}
	e.Records = append(e.Records, r)
}

// Drop records a discarded candidate line.
func (e *Extraction) Drop(page int, line, reason string) {
	e.Dropped = append(e.Dropped, DroppedLine{Page: page, Line: line, Reason: reason})
}

// Warn records a problem that lost part of the input without failing the
// extraction, such as a page the OCR engine could not read.
func (e *Extraction) Warn(msg string) {
	e.Warnings = append(e.Warnings, msg)
}

// Merge appends another extraction's output, keeping order.
func (e *Extraction) Merge(other *Extraction) {
	if other == nil {
		return
	}
	e.Records = append(e.Records, other.Records...)
	e.Dropped = append(e.Dropped, other.Dropped...)
	e.Warnings = append(e.Warnings, other.Warnings...)
}

// Len returns the number of records.
func (e *Extraction) Len() int {
	if e == nil {
		return 0
	}
	return len(e.Records)
}
