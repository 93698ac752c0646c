package institution

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement/normalizer"
)

// BMOAccount reads Everyday Banking chequing statements: one glued date ("Nov28"),
// then description, then the deducted/added/balance columns.
type BMOAccount struct{ base }

func NewBMOAccount() *BMOAccount {
	return &BMOAccount{base{name: NameBMOAccount, confidence: 0.9}}
}

var (
	bmoAccountDate   = regexp.MustCompile(`^([A-Z][a-z]{2})(\d{1,2})`)
	bmoAccountAmount = regexp.MustCompile(`[\d,]+\.\d{2}`)
)

var bmoAccountDeducted = []string{
	"transfersent", "transfer sent", "debitcardpurchase", "debit card purchase",
	"fee", "charge", "returned item", "overdraft",
}

func (f *BMOAccount) Applies(text, _ string) bool {
	return hasAny(text, "Your Everyday Banking statement", "Everyday Banking", "Primary Chequing Account", "BMO Bank of Montreal") &&
		hasAny(text, "deducted($)", "added($)", "Opening", "Closing totals", "Primary Chequing", "INTERAC e-Transfer", "Direct Deposit") &&
		!hasAny(text, "Previous Balance", "Credit Limit", "Minimum Payment", "Payment Due Date", "Interest Rate", "Cash Advance")
}

func (f *BMOAccount) Extract(pages []statement.Page) *statement.Extraction {
	out := &statement.Extraction{}
	for _, p := range pages {
		inSection := false
		for _, line := range trimmedLines(p) {
			if strings.Contains(line, "Date Description") || strings.Contains(line, "Amountsdeducted") {
				inSection = true
				continue
			}
			if hasAny(line, "Please report any errors", "Trade-marks", "Important information",
				"Alternatively, you can bring", "GST-", "QST-") {
				inSection = false
				continue
			}
			if !inSection || skipLine(line) || !f.candidate(line) {
				continue
			}
			f.parse(out, p.Number, line)
		}
	}
	return out
}

func (f *BMOAccount) candidate(line string) bool {
	if hasAnyLower(line, "date description", "amounts deducted", "amounts added", "balance",
		"primary chequing account", "continued", "opening balance", "closing totals") {
		return false
	}
	return bmoAccountDate.MatchString(line) && bmoAccountAmount.MatchString(line) && len(line) > 10
}

func (f *BMOAccount) parse(out *statement.Extraction, page int, line string) {
	m := bmoAccountDate.FindStringSubmatch(line)
	date, ok := normalizer.MonthDay(m[1], m[2])
	if !ok {
		out.Drop(page, line, statement.DropInvalidDate)
		return
	}

	rest := strings.TrimSpace(line[len(m[0]):])
	raw := bmoAccountAmount.FindAllString(rest, -1)
	desc := rest
	for _, a := range raw {
		desc = strings.Replace(desc, a, "", 1)
	}

	var deducted, added decimal.Decimal
	var balance *decimal.Decimal
	switch len(raw) {
	case 1:
		// A lone figure cannot be told apart from the balance column.
		out.Drop(page, line, statement.DropAmbiguousAmount)
		return
	case 2:
		v, _ := parseUnsigned(raw[0])
		if hasAnyLower(desc, bmoAccountDeducted...) {
			deducted = v
		} else {
			added = v
		}
		balance = normalizer.AmountPtr(raw[1])
	default:
		deducted, _ = parseUnsigned(raw[0])
		added, _ = parseUnsigned(raw[1])
		balance = normalizer.AmountPtr(raw[2])
	}

	net := added.Sub(deducted)
	r := f.record(page, date, desc, net)
	r.Balance = balance
	if net.IsNegative() {
		r.Direction = statement.DirectionDebit
	} else {
		r.Direction = statement.DirectionCredit
	}
	out.Add(r)
}

// BMO reads the MasterCard layout: "Nov.3 Nov.8 DESCRIPTION REF AMOUNT".
type BMO struct{ base }

func NewBMO() *BMO {
	return &BMO{base{name: NameBMO, confidence: 0.9}}
}

var (
	bmoLine      = regexp.MustCompile(`^([A-Za-z]{3})\.(\d{1,2})\s+([A-Za-z]{3})\.(\d{1,2})\s+(.*)$`)
	bmoAmount    = regexp.MustCompile(`([\d,]+\.\d{2})(\s*CR)?\s*$`)
	bmoReference = regexp.MustCompile(`(\d{10,})\s*[\d,]+\.\d{2}(?:\s*CR)?\s*$`)
)

var bmoCardTerms = []string{"MasterCard", "Mastercard", "CardNumber", "Card number", "CustomerName"}

// Applies accepts the BMO brand next to a card term, or the glued field labels the
// MasterCard text layer produces. Neither a bare "BMO" nor a bare "MasterCard" is
// enough: other banks' statements print "BMO MASTERCARD PAYMENT" lines and other
// issuers print MasterCard.
func (f *BMO) Applies(text, _ string) bool {
	if strings.Contains(text, "BMO") && hasAny(text, bmoCardTerms...) {
		return true
	}
	return strings.Contains(text, "MasterCard") && hasAny(text, "CardNumber", "CustomerName")
}

func (f *BMO) Extract(pages []statement.Page) *statement.Extraction {
	out := &statement.Extraction{}
	for _, p := range pages {
		for _, line := range trimmedLines(p) {
			if skipLine(line) {
				continue
			}
			m := bmoLine.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			f.parse(out, p.Number, line, m)
		}
	}
	return out
}

func (f *BMO) parse(out *statement.Extraction, page int, line string, m []string) {
	rest := strings.TrimSpace(m[5])
	loc := bmoAmount.FindStringSubmatchIndex(rest)
	if loc == nil {
		out.Drop(page, line, statement.DropNoAmount)
		return
	}
	amount, ok := parseUnsigned(rest[loc[2]:loc[3]])
	if !ok {
		out.Drop(page, line, statement.DropNoAmount)
		return
	}
	if loc[4] >= 0 {
		amount = amount.Neg()
	}

	desc := strings.TrimSpace(rest[:loc[0]])
	reference := ""
	if rm := bmoReference.FindStringSubmatch(rest); rm != nil {
		reference = rm[1]
		desc = strings.TrimSpace(strings.Replace(desc, reference, "", 1))
	}
	if hasAnyLower(desc, "total", "interest", "fee", "balance", "payment", "credit limit") {
		return
	}

	date, ok := normalizer.MonthDay(m[1], m[2])
	if !ok {
		out.Drop(page, line, statement.DropInvalidDate)
		return
	}
	posted, _ := normalizer.MonthDay(m[3], m[4])

	r := f.record(page, date, desc, amount)
	r.PostingDate = posted
	r.Reference = reference
	out.Add(r)
}
