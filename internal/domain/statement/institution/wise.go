package institution

import (
	"regexp"
	"strings"

	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement/normalizer"
)

// NoteCategorySummary marks Wise records that are per-category totals rather than
// individual transactions.
const NoteCategorySummary = "category_summary"

// Wise reads the card statement, which lists per-category totals ("Card payments
// $120.44") instead of individual transactions. Every total is dated with the end
// of the statement period.
type Wise struct{ base }

func NewWise() *Wise {
	return &Wise{base{name: NameWise, confidence: 0.8}}
}

var (
	wiseWord   = regexp.MustCompile(`\bWise\b`)
	wisePeriod = regexp.MustCompile(`Date:\s*\w+\s+\d+,\s+\d+\s+to\s+(\w+)\s+(\d+),\s+\d+`)
	wiseAmount = regexp.MustCompile(`\$[\d,]+\.\d{2}`)
	wiseLine   = regexp.MustCompile(`^(.*?)\s+\$?([\d,]+\.\d{2})$`)
)

var (
	wiseSkip       = []string{"total balance", "statement", "xxxx-xxxx", "as of"}
	wiseCategories = []string{
		"card payments", "moneysent", "top up", "topup", "atm withdrawals",
		"exchange in", "exchange out", "revolut fees", "payment", "withdrawal",
	}
)

// Applies matches the file name or the brand as a whole word, so words such as
// "otherwise" do not count.
func (f *Wise) Applies(text, filename string) bool {
	if strings.Contains(strings.ToLower(filename), "wise") {
		return true
	}
	return wiseWord.MatchString(text) || strings.Contains(text, "wise.com")
}

// Extract carries the statement period across pages; it is usually printed on the
// first page only.
func (f *Wise) Extract(pages []statement.Page) *statement.Extraction {
	out := &statement.Extraction{}
	periodEnd := ""
	for _, p := range pages {
		lines := trimmedLines(p)
		for _, line := range lines {
			if !strings.Contains(line, "Date:") || !strings.Contains(line, "to") {
				continue
			}
			if m := wisePeriod.FindStringSubmatch(line); m != nil {
				if d, ok := normalizer.MonthDay(m[1], m[2]); ok {
					periodEnd = d
				}
			}
			break
		}

		for _, line := range lines {
			if !f.candidate(line) {
				continue
			}
			m := wiseLine.FindStringSubmatch(line)
			if m == nil {
				out.Drop(p.Number, line, statement.DropUnparsable)
				continue
			}
			amount, ok := parseUnsigned(m[2])
			if !ok || amount.IsZero() {
				continue
			}
			if periodEnd == "" {
				out.Drop(p.Number, line, statement.DropNoDate)
				continue
			}
			r := f.record(p.Number, periodEnd, m[1], amount)
			r.Note = NoteCategorySummary
			out.Add(r)
		}
	}
	return out
}

func (f *Wise) candidate(line string) bool {
	if !wiseAmount.MatchString(line) {
		return false
	}
	if skipLine(line) {
		return false
	}
	lower := strings.ToLower(line)
	return !hasAny(lower, wiseSkip...) && hasAny(lower, wiseCategories...)
}
