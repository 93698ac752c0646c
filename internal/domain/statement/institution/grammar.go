package institution

import (
	"regexp"
	"strings"

	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement/normalizer"
)

// carriedDate is the carry-forward state of layouts that print a date only on the
// first line of each day. It lives for one page.
type carriedDate struct {
	date string
}

func (c *carriedDate) set(date string) { c.date = date }
func (c *carriedDate) ok() bool        { return c.date != "" }

var (
	columnAmount = regexp.MustCompile(`[\d,]+\.\d{2}`)
	edgeNonWord  = regexp.MustCompile(`^\W+|\W+$`)
)

// leadingAmountRecord parses the "DESCRIPTION AMOUNT [BALANCE]" tail shared by the
// carry-forward layouts. The first figure is the unsigned transaction amount and
// must be positive; an optional second figure is the running balance. A non-empty
// reason means the line was dropped.
func leadingAmountRecord(b base, page int, date, line string) (statement.TransactionRecord, string) {
	locs := columnAmount.FindAllStringIndex(line, -1)
	if len(locs) == 0 {
		return statement.TransactionRecord{}, statement.DropNoAmount
	}
	amount, ok := parseUnsigned(line[locs[0][0]:locs[0][1]])
	if !ok || !amount.IsPositive() {
		return statement.TransactionRecord{}, statement.DropZeroAmount
	}

	desc := edgeNonWord.ReplaceAllString(strings.TrimSpace(line[:locs[0][0]]), "")
	desc = normalizer.CleanDescription(desc)
	if len(desc) < 3 {
		return statement.TransactionRecord{}, statement.DropShortDescription
	}

	r := b.record(page, date, desc, amount)
	if len(locs) > 1 {
		r.Balance = normalizer.AmountPtr(line[locs[1][0]:locs[1][1]])
	}
	return r, ""
}

// dualDate parses the two adjacent "Mmm D" tokens of a card line.
func dualDate(month1, day1, month2, day2 string) (date, posted string, ok bool) {
	date, ok = normalizer.MonthDay(month1, day1)
	if !ok {
		return "", "", false
	}
	posted, _ = normalizer.MonthDay(month2, day2)
	return date, posted, true
}
