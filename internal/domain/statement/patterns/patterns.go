// Package patterns is the shared set of date, amount, header and skip rules used by
// the generic, OCR and institution extractors.
package patterns

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/statement-extractor/internal/domain/statement/normalizer"
)

const monthAlt = `(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)`

// DatePatterns are tried in order; the first match wins.
var DatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d{1,2}[/-]\d{1,2}[/-]\d{2,4}`),
	regexp.MustCompile(`\d{4}[/-]\d{1,2}[/-]\d{1,2}`),
	regexp.MustCompile(`(?i)` + monthAlt + `\.?\s*\d{1,2},?\s*\d{4}`),
	regexp.MustCompile(`(?i)\d{1,2}\s+` + monthAlt),
	regexp.MustCompile(`(?i)` + monthAlt + `\.\d{1,2},\d{4}`),
	regexp.MustCompile(`(?i)` + monthAlt + `\.\d{1,2}\b`),
}

// AmountPatterns are tried in order; the first match wins.
var AmountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\$\d{1,3}(?:,\d{3})*\.\d{2}`),
	regexp.MustCompile(`\$\d+\.\d{2}`),
	regexp.MustCompile(`\(\$\d+\.\d{2}\)`),
	regexp.MustCompile(`\+\$?\d{1,3}(?:,\d{3})*\.\d{2}`),
	regexp.MustCompile(`-\$?\d{1,3}(?:,\d{3})*\.\d{2}`),
	regexp.MustCompile(`\b\d{1,3}(?:,\d{3})*\.\d{2}\b`),
	regexp.MustCompile(`\b\d+\.\d{2}\b`),
}

// amountToken finds every amount on a line, left to right, without overlaps.
var amountToken = regexp.MustCompile(`\(-?\$?\d{1,3}(?:,\d{3})*\.\d{2}\)|\(-?\$?\d+\.\d{2}\)|[+-]?\$?\d{1,3}(?:,\d{3})+\.\d{2}\b|[+-]?\$?\d+\.\d{2}\b`)

var numberToken = regexp.MustCompile(`\d+`)

var (
	// TransactionKeywords earn a table region points when present.
	TransactionKeywords = []string{"date", "transaction", "description", "amount", "debit", "credit"}

	// HeaderIndicators mark column-header lines.
	HeaderIndicators = []string{"date", "transaction", "description", "amount", "debit", "credit", "balance"}

	// ExclusionKeywords mark summary or disclaimer text.
	ExclusionKeywords = []string{
		"opening balance", "closing balance", "total", "subtotal",
		"previous statement", "terms and conditions", "privacy policy",
		"prior to april", "member of", "deposit insurance",
	}

	// BalanceRowKeywords mark carried balances that card and account layouts
	// print inside their transaction tables.
	BalanceRowKeywords = []string{
		"previous balance", "new balance", "balance forward",
		"brought forward", "carried forward",
	}

	// SummaryKeywords mark total and balance rows inside a table.
	SummaryKeywords = []string{"total", "subtotal", "balance", "opening", "closing", "previous", "carried forward"}
)

var preprocessRules = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`([a-zA-Z])(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`), "$1 $2"},
	{regexp.MustCompile(`([a-z])(` + monthAlt + `)`), "$1 $2"},
	{regexp.MustCompile(`([a-zA-Z])(\$\d)`), "$1 $2"},
	{regexp.MustCompile(`([a-zA-Z])(\+\$?\d)`), "$1 $2"},
	{regexp.MustCompile(`([a-zA-Z])(-\$?\d)`), "$1 $2"},
	{regexp.MustCompile(`(\d),(\d{4})`), "$1, $2"},
	{regexp.MustCompile(`(?i)([a-z])(PreviousBalance|NewBalance|PaymentDue|CreditLimit|MinimumPayment)`), "$1 $2"},
	{regexp.MustCompile(`(?i)(PreviousBalance|NewBalance|PaymentDue|CreditLimit|MinimumPayment)([a-z])`), "$1 $2"},
}

// Preprocess inserts spaces where the text layer glued dates or amounts onto words.
func Preprocess(text string) string {
	for _, rule := range preprocessRules {
		text = rule.re.ReplaceAllString(text, rule.repl)
	}
	return text
}

// DateMatch is a date token found on a line.
type DateMatch struct {
	Raw        string
	Normalized string // MM-DD
}

// FindDate returns the left-most date token on the line whose normalization
// succeeds. Ties go to the earlier pattern.
func FindDate(line string) (DateMatch, bool) {
	best, bestPos := DateMatch{}, -1
	for _, re := range DatePatterns {
		for _, loc := range re.FindAllStringIndex(line, -1) {
			if bestPos >= 0 && loc[0] >= bestPos {
				break
			}
			raw := line[loc[0]:loc[1]]
			if norm, ok := normalizer.NormalizeDate(raw); ok {
				best, bestPos = DateMatch{Raw: raw, Normalized: norm}, loc[0]
				break
			}
		}
	}
	return best, bestPos >= 0
}

// HasDate reports whether any date pattern matches.
func HasDate(line string) bool {
	for _, re := range DatePatterns {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

// HasAmount reports whether any amount pattern matches.
func HasAmount(line string) bool {
	for _, re := range AmountPatterns {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

// AmountMatch is an amount token found on a line.
type AmountMatch struct {
	Raw   string
	Value decimal.Decimal
}

// FindAmounts returns the parseable amount tokens on a line in reading order.
func FindAmounts(line string) []AmountMatch {
	var out []AmountMatch
	for _, raw := range amountToken.FindAllString(line, -1) {
		v, err := normalizer.ParseAmount(raw)
		if err != nil {
			continue
		}
		out = append(out, AmountMatch{Raw: raw, Value: v})
	}
	return out
}

// FirstAmount returns the first amount on the line, trying AmountPatterns in order.
func FirstAmount(line string) (AmountMatch, bool) {
	for _, re := range AmountPatterns {
		for _, raw := range re.FindAllString(line, -1) {
			if v, err := normalizer.ParseAmount(raw); err == nil {
				return AmountMatch{Raw: raw, Value: v}, true
			}
		}
	}
	return AmountMatch{}, false
}

// StripAmounts removes every amount-pattern match from the line.
func StripAmounts(line string) string {
	for _, re := range AmountPatterns {
		line = re.ReplaceAllString(line, "")
	}
	return line
}

// CountNumbers counts runs of digits.
func CountNumbers(line string) int {
	return len(numberToken.FindAllString(line, -1))
}

// IsTableLike reports whether a line looks like table data: a date and an amount,
// or at least three numeric runs.
func IsTableLike(line string) bool {
	return (HasDate(line) && HasAmount(line)) || CountNumbers(line) >= 3
}

// IsHeaderLine reports whether a line is a column header: two or more header
// indicators and not both a date and an amount.
func IsHeaderLine(line string) bool {
	lower := strings.ToLower(line)
	count := 0
	for _, kw := range HeaderIndicators {
		if strings.Contains(lower, kw) {
			count++
		}
	}
	return count >= 2 && !(HasDate(line) && HasAmount(line))
}

// IsSummaryLine reports whether a line is a total or balance row.
func IsSummaryLine(line string) bool {
	return ContainsAny(strings.ToLower(line), SummaryKeywords)
}

// IsExcluded reports whether a line carries summary or disclaimer text.
func IsExcluded(line string) bool {
	return ContainsAny(strings.ToLower(line), ExclusionKeywords)
}

// IsNonTransaction reports whether a line must never become a record, whatever
// grammar reads it: summary or disclaimer text, or a carried balance row.
func IsNonTransaction(line string) bool {
	lower := strings.ToLower(line)
	return ContainsAny(lower, ExclusionKeywords) || ContainsAny(lower, BalanceRowKeywords)
}

// ContainsAny reports whether s contains any of the substrings. Callers lower-case
// both sides when they want a case-insensitive test.
func ContainsAny(s string, substrings []string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// ContainsAnyFold is ContainsAny ignoring case.
func ContainsAnyFold(s string, substrings []string) bool {
	lower := strings.ToLower(s)
	for _, sub := range substrings {
		if strings.Contains(lower, strings.ToLower(sub)) {
			return true
		}
	}
	return false
}

// CountContaining counts how many of the substrings occur in s.
func CountContaining(s string, substrings []string) int {
	n := 0
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			n++
		}
	}
	return n
}
