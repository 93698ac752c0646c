package institution

import (
	"regexp"
	"strings"

	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement/normalizer"
)

// rbcCardPhrases only occur on card statements; they replace the file-name hint
// when the name does not say "visa".
var rbcCardPhrases = []string{"Credit Limit", "Minimum Payment", "New Balance"}

// RBCVisa reads "DEC22 DEC29 PARSFOODINCNORTHYORKON $12.00" lines.
type RBCVisa struct{ base }

func NewRBCVisa() *RBCVisa {
	return &RBCVisa{base{name: NameRBCVisa, confidence: 0.9}}
}

var (
	rbcVisaDetect = regexp.MustCompile(`^[A-Z]{3}\d{2}\s+[A-Z]{3}\d{2}`)
	rbcVisaLine   = regexp.MustCompile(`^([A-Z]{3})(\d{2})\s+([A-Z]{3})(\d{2})\s+(.*?)\s+(-?\$?[\d,]+\.?\d{2})$`)
)

func (f *RBCVisa) Applies(text, filename string) bool {
	if !hasAny(text, "RBC Visa", "Visa Infinite", "Avion") {
		return false
	}
	return strings.Contains(strings.ToLower(filename), "visa") || hasAny(text, rbcCardPhrases...)
}

func (f *RBCVisa) Extract(pages []statement.Page) *statement.Extraction {
	out := &statement.Extraction{}
	for _, p := range pages {
		for _, line := range trimmedLines(p) {
			if skipLine(line) || !rbcVisaDetect.MatchString(line) {
				continue
			}
			m := rbcVisaLine.FindStringSubmatch(line)
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

// RBCBank reads Day to Day Banking statements. Only the first transaction of a
// day carries the "3 Mar" date; the following lines inherit it.
type RBCBank struct{ base }

func NewRBCBank() *RBCBank {
	return &RBCBank{base{name: NameRBCBank, confidence: 0.85}}
}

var rbcBankDate = regexp.MustCompile(`(\d{1,2})\s+([A-Za-z]{3,9})\b`)

var (
	rbcBankHeader = []string{"date", "description", "withdrawals", "deposits", "balance"}
	rbcBankSkip   = []string{
		"date", "description", "withdrawals", "deposits", "balance",
		"details of your account", "continued", "opening balance", "closing balance",
		"total deposits", "total withdrawals", "summary", "rbc",
		"fee electronic", "multiproduct rebate", "monthly fee",
	}
	rbcBankCredits = []string{"e-transfer", "autodeposit", "deposit", "rebate", "refund"}
	rbcBankDebits  = []string{
		"interac purchase", "contactless interac purchase", "online banking payment",
		"loan payment", "atm withdrawal", "fee", "charge", "misc payment",
	}
)

func (f *RBCBank) Applies(text, filename string) bool {
	if strings.Contains(strings.ToLower(filename), "visa") || hasAny(text, rbcCardPhrases...) {
		return false
	}
	return hasAny(text, "Royal Bank of Canada", "RBC Day to Day Banking", "account statement")
}

func (f *RBCBank) Extract(pages []statement.Page) *statement.Extraction {
	out := &statement.Extraction{}
	for _, p := range pages {
		if !strings.Contains(p.Text, "Details of your account activity") {
			continue
		}
		var carry carriedDate
		for _, line := range trimmedLines(p) {
			if line == "" || hasAnyLower(line, rbcBankHeader...) {
				continue
			}
			if date, raw, ok := findDayMonth(line); ok {
				carry.set(date)
				if rest := strings.TrimSpace(strings.Replace(line, raw, "", 1)); rest != "" {
					f.parseLine(out, p.Number, carry.date, rest)
				}
				continue
			}
			if !carry.ok() {
				if columnAmount.MatchString(line) {
					out.Drop(p.Number, line, statement.DropNoDate)
				}
				continue
			}
			f.parseLine(out, p.Number, carry.date, line)
		}
	}
	return out
}

// findDayMonth returns the first "D Mmm" token whose month is real. Tokens such
// as "12 Main" are skipped so they cannot overwrite the carried date.
func findDayMonth(line string) (date, raw string, ok bool) {
	for _, m := range rbcBankDate.FindAllStringSubmatch(line, -1) {
		if d, valid := normalizer.MonthDay(m[2], m[1]); valid {
			return d, m[0], true
		}
	}
	return "", "", false
}

func (f *RBCBank) parseLine(out *statement.Extraction, page int, date, line string) {
	if len(line) < 5 || skipLine(line) {
		return
	}
	lower := strings.ToLower(line)
	if hasAny(lower, rbcBankSkip...) {
		return
	}
	r, reason := leadingAmountRecord(f.base, page, date, line)
	if reason != "" {
		out.Drop(page, line, reason)
		return
	}
	r.Direction = keywordDirection(lower, rbcBankCredits, rbcBankDebits)
	out.Add(r)
}
