// Package normalizer canonicalizes the raw fragments matched on statement lines:
// dates become month-day strings, amounts become signed decimals, descriptions are
// whitespace-cleaned. Everything here is pure; no I/O.
package normalizer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var months = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

var fullMonths = []string{
	"january", "february", "march", "april", "may", "june",
	"july", "august", "september", "october", "november", "december",
}

var (
	isoDatePattern     = regexp.MustCompile(`^(\d{4})[/-](\d{1,2})[/-](\d{1,2})$`)
	numericDatePattern = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})(?:[/-](\d{2,4}))?$`)
	dayMonthPattern    = regexp.MustCompile(`^(\d{1,2})[\s.-]*([A-Za-z]{3,9})\.?(?:[\s,.-]*(\d{4}|\d{2}))?$`)
	monthDayPattern    = regexp.MustCompile(`^([A-Za-z]{3,9})\.?[\s.-]*(\d{1,2})(?:[\s,.-]+(\d{4}|\d{2}))?$`)
)

// MonthNumber resolves a month abbreviation or full month name ("Mar", "MARCH",
// "Sept") to 1-12. Anything that is not a real month is rejected, which keeps
// reference numbers and column headers from being read as dates.
func MonthNumber(name string) (int, bool) {
	lower := strings.ToLower(strings.TrimSuffix(strings.TrimSpace(name), "."))
	if len(lower) < 3 {
		return 0, false
	}
	n, ok := months[lower[:3]]
	if !ok {
		return 0, false
	}
	if len(lower) > 3 && !strings.HasPrefix(fullMonths[n-1], lower) {
		return 0, false
	}
	return n, true
}

// IsMonth reports whether name is a month abbreviation or full month name.
func IsMonth(name string) bool {
	_, ok := MonthNumber(name)
	return ok
}

// FormatDate renders a month and day in the canonical MM-DD form.
func FormatDate(month, day int) (string, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return "", false
	}
	return fmt.Sprintf("%02d-%02d", month, day), true
}

// NormalizeDate converts a date fragment to MM-DD. Numeric dates are read month
// first. The canonical form is accepted as input, so NormalizeDate is idempotent.
func NormalizeDate(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}

	if m := isoDatePattern.FindStringSubmatch(s); m != nil {
		return formatParts(m[2], m[3])
	}
	if m := numericDatePattern.FindStringSubmatch(s); m != nil {
		return formatParts(m[1], m[2])
	}
	if m := dayMonthPattern.FindStringSubmatch(s); m != nil {
		month, ok := MonthNumber(m[2])
		if !ok {
			return "", false
		}
		day, _ := strconv.Atoi(m[1])
		return FormatDate(month, day)
	}
	if m := monthDayPattern.FindStringSubmatch(s); m != nil {
		month, ok := MonthNumber(m[1])
		if !ok {
			return "", false
		}
		day, _ := strconv.Atoi(m[2])
		return FormatDate(month, day)
	}
	return "", false
}

// MonthDay builds MM-DD from a month name and a numeric day string.
func MonthDay(monthName, day string) (string, bool) {
	month, ok := MonthNumber(monthName)
	if !ok {
		return "", false
	}
	d, err := strconv.Atoi(strings.TrimSpace(day))
	if err != nil {
		return "", false
	}
	return FormatDate(month, d)
}

func formatParts(month, day string) (string, bool) {
	m, err := strconv.Atoi(month)
	if err != nil {
		return "", false
	}
	d, err := strconv.Atoi(day)
	if err != nil {
		return "", false
	}
	return FormatDate(m, d)
}
