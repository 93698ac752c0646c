package institution

import (
	"regexp"
	"strings"

	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement/normalizer"
)

var scotiaCardTerms = []string{"scene", "credit card", "minimum payment", "credit limit"}

// Scotiabank reads chequing and savings statements. Dates are glued ("Dec18") and
// appear on the first line of a day; each transaction line is recognised by one
// of the bank's transaction codes.
type Scotiabank struct{ base }

func NewScotiabank() *Scotiabank {
	return &Scotiabank{base{name: NameScotiabank, confidence: 0.85}}
}

var (
	scotiaBankDate     = regexp.MustCompile(`(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)(\d{1,2})`)
	scotiaBankLeadDate = regexp.MustCompile(`^(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\d{1,2}\s*`)
	scotiaAmount       = regexp.MustCompile(`-?\$?([\d,]+\.\d{2})`)
)

var (
	scotiaBankSkip = []string{
		"opening balance", "closing balance", "minus total withdrawals",
		"plus total deposits", "plustotal deposits", "minustotal withdrawals",
		"balance brought forward", "your basic banking account summary",
	}
	scotiaBankCodes = []string{
		"mb-billpayment", "mb-transfer", "withdrawal", "deposit",
		"fees/dues", "servicecharge", "point of salepurchase",
		"debit memo", "mutual funds", "error correction", "ei canada",
	}
	scotiaBankTerms = []string{
		"deposits", "withdrawals", "mb-billpayment", "service charge",
		"mb-transfer", "chequing", "savings", "balance brought forward",
	}
	scotiaBankCredits = []string{"deposit", "transfer from", "interest", "credit", "refund"}
)

func (f *Scotiabank) Applies(text, filename string) bool {
	name := strings.ToLower(filename)
	if strings.Contains(name, "scotia") && strings.Contains(name, "bank") {
		return true
	}
	lower := strings.ToLower(text)
	if !hasAny(lower, "scotiabank", "scotia") {
		return false
	}
	return hasAny(lower, scotiaBankTerms...) && !hasAny(lower, scotiaCardTerms...)
}

func (f *Scotiabank) Extract(pages []statement.Page) *statement.Extraction {
	out := &statement.Extraction{}
	for _, p := range pages {
		var carry carriedDate
		for _, line := range trimmedLines(p) {
			if m := scotiaBankDate.FindStringSubmatch(line); m != nil {
				if d, ok := normalizer.MonthDay(m[1], m[2]); ok {
					carry.set(d)
				}
			}
			if !f.candidate(line) {
				continue
			}
			if !carry.ok() {
				out.Drop(p.Number, line, statement.DropNoDate)
				continue
			}
			f.parse(out, p.Number, carry.date, line)
		}
	}
	return out
}

func (f *Scotiabank) candidate(line string) bool {
	lower := strings.ToLower(line)
	if skipLine(line) || hasAny(lower, scotiaBankSkip...) {
		return false
	}
	return hasAny(lower, scotiaBankCodes...) && scotiaAmount.MatchString(line) && len(line) > 10
}

func (f *Scotiabank) parse(out *statement.Extraction, page int, date, line string) {
	loc := scotiaAmount.FindStringSubmatchIndex(line)
	amount, ok := parseUnsigned(line[loc[2]:loc[3]])
	if !ok {
		out.Drop(page, line, statement.DropNoAmount)
		return
	}
	desc := scotiaBankLeadDate.ReplaceAllString(strings.TrimSpace(line[:loc[0]]), "")
	desc = normalizer.CleanDescription(desc)
	if len(desc) < 3 {
		out.Drop(page, line, statement.DropShortDescription)
		return
	}
	r := f.record(page, date, desc, amount)
	if hasAnyLower(desc, scotiaBankCredits...) {
		r.Direction = statement.DirectionCredit
	} else {
		r.Direction = statement.DirectionDebit
	}
	out.Add(r)
}

// ScotiaCreditCard reads Scene+ and other Scotia card statements:
// "001 Apr-1 Apr-2 STARBUCKS TORONTO ON 6.45".
type ScotiaCreditCard struct{ base }

func NewScotiaCreditCard() *ScotiaCreditCard {
	return &ScotiaCreditCard{base{name: NameScotiaCreditCard, confidence: 0.8}}
}

var (
	scotiaCardDate = regexp.MustCompile(`([A-Za-z]{3})[-\s](\d{1,2})`)
	scotiaCardRef  = regexp.MustCompile(`\b\d{3}\b\s*`)
	scotiaCardSkip = []string{
		"beginning points", "points earned", "total", "balance",
		"statement", "account", "summary", "payment due",
		"payments/credits", "purchases/charges", "based on your",
		"rewards points", "eligible purchases", "credit limit",
	}
)

func (f *ScotiaCreditCard) Applies(text, _ string) bool {
	lower := strings.ToLower(text)
	return hasAny(lower, "scotiabank", "scotia") && hasAny(lower, scotiaCardTerms...)
}

func (f *ScotiaCreditCard) Extract(pages []statement.Page) *statement.Extraction {
	out := &statement.Extraction{}
	for _, p := range pages {
		for _, line := range trimmedLines(p) {
			if !f.candidate(line) {
				continue
			}
			f.parse(out, p.Number, line)
		}
	}
	return out
}

func (f *ScotiaCreditCard) candidate(line string) bool {
	if skipLine(line) || hasAnyLower(line, scotiaCardSkip...) {
		return false
	}
	return scotiaAmount.MatchString(line) && scotiaCardDate.MatchString(line) && len(line) > 15
}

func (f *ScotiaCreditCard) parse(out *statement.Extraction, page int, line string) {
	loc := scotiaAmount.FindStringIndex(line)
	amount, err := normalizer.ParseAmount(line[loc[0]:loc[1]])
	if err != nil {
		out.Drop(page, line, statement.DropNoAmount)
		return
	}
	desc := strings.TrimSpace(line[:loc[0]])

	date := ""
	for _, m := range scotiaCardDate.FindAllStringSubmatch(desc, -1) {
		if d, ok := normalizer.MonthDay(m[1], m[2]); ok {
			date = d
			desc = strings.Replace(desc, m[0], "", 1)
			break
		}
	}
	if date == "" {
		out.Drop(page, line, statement.DropInvalidDate)
		return
	}
	posted := ""
	for _, m := range scotiaCardDate.FindAllStringSubmatch(desc, -1) {
		if d, ok := normalizer.MonthDay(m[1], m[2]); ok {
			posted = d
			desc = strings.Replace(desc, m[0], "", 1)
			break
		}
	}

	desc = normalizer.CleanDescription(scotiaCardRef.ReplaceAllString(desc, ""))
	if len(desc) < 3 {
		out.Drop(page, line, statement.DropShortDescription)
		return
	}
	r := f.record(page, date, desc, amount)
	r.PostingDate = posted
	out.Add(r)
}
