package institution

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement/normalizer"
)

// TDCreditCard reads the Cash Back card layout. Transactions only count inside the
// ACTIVITY DESCRIPTION table, which may restart on every page.
type TDCreditCard struct{ base }

func NewTDCreditCard() *TDCreditCard {
	return &TDCreditCard{base{name: NameTDCreditCard, confidence: 0.9}}
}

var (
	tdCardDetect = regexp.MustCompile(`^[A-Z]{3}\s*\d{1,2}\s+[A-Z]{3}\s*\d{1,2}`)
	tdCardAmount = regexp.MustCompile(`-?\$[\d,]+\.\d{2}`)
	tdCardLine   = regexp.MustCompile(`^([A-Z]{3})\s*(\d{1,2})\s+([A-Z]{3})\s*(\d{1,2})\s+(.*?)\s+(-?\$?[\d,]+\.\d{2})`)
)

func (f *TDCreditCard) Applies(text, _ string) bool {
	return hasAny(text, "TD CASH BACK CARD", "CASH BACK CARD", "TD Credit Card") &&
		hasAny(text, "PREVIOUS STATEMENT BALANCE", "Minimum Payment", "Credit Card", "ACTIVITY DESCRIPTION", "Cash Back Dollars")
}

func (f *TDCreditCard) Extract(pages []statement.Page) *statement.Extraction {
	out := &statement.Extraction{}
	for _, p := range pages {
		inSection := false
		for _, line := range trimmedLines(p) {
			if hasAny(line, "ACTIVITY DESCRIPTION", "TRANSACTIO") {
				inSection = true
				continue
			}
			if hasAny(line, "NET AMOUNT OF MONTHLY", "TOTAL NEW BALANCE", "CALCULATING YOUR BALANCE", "PAYMENT INFORMATION") {
				inSection = false
				continue
			}
			if !inSection || !f.candidate(line) {
				continue
			}

			m := tdCardLine.FindStringSubmatch(line)
			if m == nil {
				out.Drop(p.Number, line, statement.DropUnparsable)
				continue
			}
			date, posted, ok := dualDate(m[1], m[2], m[3], m[4])
			if !ok {
				out.Drop(p.Number, line, statement.DropInvalidDate)
				continue
			}
			amount, err := normalizer.ParseAmount(m[6])
			if err != nil {
				out.Drop(p.Number, line, statement.DropNoAmount)
				continue
			}
			r := f.record(p.Number, date, m[5], amount)
			r.PostingDate = posted
			out.Add(r)
		}
	}
	return out
}

func (f *TDCreditCard) candidate(line string) bool {
	if skipLine(line) || hasAnyLower(line, "previous statement", "activity description", "amount", "date", "continued",
		"net amount", "total", "balance", "payment", "foreign currency", "@exchange rate") {
		return false
	}
	return tdCardDetect.MatchString(line) && tdCardAmount.MatchString(line) && len(line) > 15
}

// TDBank reads the personal account layout, where the statement itself splits
// activity into "Credits" and "Debits" sections. The active section decides the
// direction; amounts are printed unsigned.
type TDBank struct{ base }

func NewTDBank() *TDBank {
	return &TDBank{base{name: NameTDBank, confidence: 0.9}}
}

var (
	tdBankDetect = regexp.MustCompile(`^\d{2}/\d{2}`)
	tdBankLine   = regexp.MustCompile(`^(\d{2})/(\d{2})\s+(.*?)\s+([\d,]+\.?\d{2})$`)
)

func (f *TDBank) Applies(text, _ string) bool {
	return hasAny(text, "STATEMENT OF ACCOUNT", "TD Personal", "Primary Account")
}

func (f *TDBank) Extract(pages []statement.Page) *statement.Extraction {
	out := &statement.Extraction{}
	for _, p := range pages {
		section := statement.DirectionUnknown
		for _, line := range trimmedLines(p) {
			switch {
			case line == "Credits":
				section = statement.DirectionCredit
				continue
			case line == "Debits":
				section = statement.DirectionDebit
				continue
			case strings.Contains(line, "DAILY ACCOUNT ACTIVITY"):
				// The activity table opens with the credits block.
				section = statement.DirectionCredit
				continue
			}
			if section == statement.DirectionUnknown || skipLine(line) || !tdBankDetect.MatchString(line) {
				continue
			}

			m := tdBankLine.FindStringSubmatch(line)
			if m == nil {
				out.Drop(p.Number, line, statement.DropUnparsable)
				continue
			}
			month, _ := strconv.Atoi(m[1])
			day, _ := strconv.Atoi(m[2])
			date, ok := normalizer.FormatDate(month, day)
			if !ok {
				out.Drop(p.Number, line, statement.DropInvalidDate)
				continue
			}
			amount, ok := parseUnsigned(m[4])
			if !ok {
				out.Drop(p.Number, line, statement.DropNoAmount)
				continue
			}
			r := f.record(p.Number, date, m[3], amount)
			r.Direction = section
			out.Add(r)
		}
	}
	return out
}
