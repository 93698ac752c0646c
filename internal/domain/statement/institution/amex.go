package institution

import (
	"regexp"
	"strings"

	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement/normalizer"
)

// Amex reads the glued "December16 AMZNMKTPCA*NE4ZR9AWWW.AMAZON.CA 16.99" layout.
// The month may be abbreviated or spelled out.
type Amex struct{ base }

func NewAmex() *Amex {
	return &Amex{base{name: NameAmex, confidence: 0.85}}
}

var (
	amexDetect = regexp.MustCompile(`^[A-Za-z]{3,9}\d{1,2}\s+[A-Z]`)
	amexLine   = regexp.MustCompile(`^([A-Za-z]{3,9})(\d{1,2})\s+(.*?)\s+(-?[\d,]+\.?\d{2})$`)
)

// Applies accepts the issuer's own names on content alone. The generic
// "Statement of Account" heading still needs the file name to say amex.
func (f *Amex) Applies(text, filename string) bool {
	if hasAny(text, "AmericanExpress", "Amex Bank of Canada") {
		return true
	}
	return strings.Contains(text, "Statement of Account") && strings.Contains(strings.ToLower(filename), "amex")
}

func (f *Amex) Extract(pages []statement.Page) *statement.Extraction {
	out := &statement.Extraction{}
	for _, p := range pages {
		for _, line := range trimmedLines(p) {
			if skipLine(line) || !amexDetect.MatchString(line) {
				continue
			}
			m := amexLine.FindStringSubmatch(line)
			if m == nil {
				out.Drop(p.Number, line, statement.DropUnparsable)
				continue
			}
			if hasAnyLower(m[3], "total", "balance", "payment") {
				continue
			}
			date, ok := normalizer.MonthDay(m[1], m[2])
			if !ok {
				out.Drop(p.Number, line, statement.DropInvalidDate)
				continue
			}
			amount, err := normalizer.ParseAmount(m[4])
			if err != nil {
				out.Drop(p.Number, line, statement.DropNoAmount)
				continue
			}
			out.Add(f.record(p.Number, date, m[3], amount))
		}
	}
	return out
}
