package institution

import (
	"regexp"

	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement/normalizer"
)

// EQBank reads "Sep 28 PRESTO ETIK/HSR****2590, TORON -$5.60" lines, where the
// amount carries its own sign and dollar marker.
type EQBank struct{ base }

func NewEQBank() *EQBank {
	return &EQBank{base{name: NameEQBank, confidence: 0.95}}
}

var (
	eqDate   = regexp.MustCompile(`^[A-Za-z]{3}\s+\d{1,2}`)
	eqAmount = regexp.MustCompile(`-?\$[\d,]+\.?\d{2}`)
	eqLine   = regexp.MustCompile(`^([A-Za-z]{3})\s+(\d{1,2})\s+(.*?)\s+(-?\$[\d,]+\.?\d{2})$`)
)

func (f *EQBank) Applies(text, _ string) bool {
	return hasAny(text, "EQ Bank", "Cash Card", "Equitable Bank")
}

func (f *EQBank) Extract(pages []statement.Page) *statement.Extraction {
	out := &statement.Extraction{}
	for _, p := range pages {
		for _, line := range trimmedLines(p) {
			if skipLine(line) || !eqDate.MatchString(line) || !eqAmount.MatchString(line) {
				continue
			}
			m := eqLine.FindStringSubmatch(line)
			if m == nil {
				out.Drop(p.Number, line, statement.DropUnparsable)
				continue
			}
			if hasAnyLower(m[3], "withdrawals", "deposits") {
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
