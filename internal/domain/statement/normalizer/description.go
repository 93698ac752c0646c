package normalizer

import (
	"regexp"
	"strings"

	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
)

const monthAlt = `(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*`

var (
	spaceRun       = regexp.MustCompile(`\s+`)
	strayAmount    = regexp.MustCompile(`\(?-?\$?\d{1,3}(?:,\d{3})*\.\d{2}\)?`)
	leadingDate    = regexp.MustCompile(`(?i)^\s*(?:\d{1,2}[/-]\d{1,2}(?:[/-]\d{2,4})?|` + monthAlt + `\.?\s*\d{1,2}(?:,?\s*\d{4})?|\d{1,2}[\s-]+` + monthAlt + `(?:[\s-]+\d{4})?)\s+`)
	trailingPunct  = regexp.MustCompile(`^[\s\-–|:*,]+|[\s\-–|:*,]+$`)
	provinceSuffix = regexp.MustCompile(`\s+(?:ON|QC|BC|AB|MB|SK|NS|NB|NL|PE|YT|NT|NU)$`)
)

// CleanDescription collapses whitespace and trims separator noise.
func CleanDescription(s string) string {
	s = spaceRun.ReplaceAllString(strings.TrimSpace(s), " ")
	return trailingPunct.ReplaceAllString(s, "")
}

// StripAmounts removes amount-looking substrings from free text.
func StripAmounts(s string) string {
	return CleanDescription(strayAmount.ReplaceAllString(s, " "))
}

// StripLeadingDate removes one leading date token.
func StripLeadingDate(s string) string {
	return CleanDescription(leadingDate.ReplaceAllString(s, ""))
}

// StripProvince removes a trailing Canadian province code.
func StripProvince(s string) string {
	return CleanDescription(provinceSuffix.ReplaceAllString(CleanDescription(s), ""))
}

// DescriptionOrDefault returns the cleaned description, or the fallback sentinel
// when fewer than minLen characters remain.
func DescriptionOrDefault(s string, minLen int) string {
	s = CleanDescription(s)
	if len(s) < minLen {
		return statement.DescriptionFallback
	}
	return s
}
