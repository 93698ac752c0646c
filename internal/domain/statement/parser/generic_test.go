package parser

import (
	"fmt"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement/patterns"
)

func page(text string) statement.Page {
	return statement.Page{Number: 1, Text: strings.TrimLeft(text, "\n")}
}

func TestExtractPage_UnknownLayoutYieldsRecords(t *testing.T) {
	g := NewGenericExtractor(DefaultConfig())
	out := g.ExtractPage(page(`
Community Credit Union
Member statement

Date Description Amount
01/15/2024 GROCERY STORE PURCHASE $45.67
01/16/2024 COFFEE SHOP DOWNTOWN $4.50
01/18/2024 ONLINE TRANSFER RECEIVED $200.00
`))

	require.Len(t, out.Records, 3)
	r := out.Records[0]
	assert.Equal(t, "01-15", r.Date)
	assert.Equal(t, "GROCERY STORE PURCHASE", r.Description)
	assert.Equal(t, "45.67", r.Amount.StringFixed(2))
	assert.Equal(t, statement.MethodGenericRegion, r.ExtractionMethod)
	assert.InDelta(t, RegionConfidence, r.Confidence, 1e-9)
	assert.Equal(t, "200.00", out.Records[2].Amount.StringFixed(2))
}

func TestExtractPage_OpeningBalanceNeverYieldsRecord(t *testing.T) {
	g := NewGenericExtractor(DefaultConfig())
	out := g.ExtractPage(page(`
01/01/2024 Opening Balance $1,000.00
01/02/2024 Coffee Shop $4.50
01/03/2024 Book Store $12.00
01/04/2024 Gas Station $40.00
`))

	require.Len(t, out.Records, 3)
	for _, r := range out.Records {
		assert.NotContains(t, strings.ToLower(r.Description), "opening")
	}
}

func TestExtractPage_FlatFallback(t *testing.T) {
	g := NewGenericExtractor(DefaultConfig())
	out := g.ExtractPage(page(`
Statement for March
Mar 3, 2024 Bakery 12.50
Thank you for banking with us
Mar 5, 2024 Pharmacy 8.25
`))

	require.Len(t, out.Records, 2)
	assert.Equal(t, "03-03", out.Records[0].Date)
	assert.Equal(t, "Bakery", out.Records[0].Description)
	assert.Equal(t, statement.MethodGenericFlat, out.Records[0].ExtractionMethod)
	assert.InDelta(t, FlatConfidence, out.Records[1].Confidence, 1e-9)
}

func TestExtractPage_MultiLineBlock(t *testing.T) {
	g := NewGenericExtractor(DefaultConfig())
	out := g.ExtractPage(page(`
Savings account
01 Oct 2021
Interac Transfer
45.00 619.54
`))

	require.Len(t, out.Records, 1)
	r := out.Records[0]
	assert.Equal(t, "10-01", r.Date)
	assert.Equal(t, "Interac Transfer", r.Description)
	assert.Equal(t, "45.00", r.Amount.StringFixed(2))
	assert.Equal(t, statement.MethodGenericMultiLine, r.ExtractionMethod)
	assert.InDelta(t, MultiLineConfidence, r.Confidence, 1e-9)
}

func TestExtractPage_MultiLineWithoutAmountIsDropped(t *testing.T) {
	g := NewGenericExtractor(DefaultConfig())
	out := g.ExtractPage(page(`
01 Oct 2021
Interac Transfer
`))

	assert.Empty(t, out.Records)
	require.Len(t, out.Dropped, 1)
	assert.Equal(t, statement.DropIncompleteBlock, out.Dropped[0].Reason)
}

func TestExtract_KeepsPageOrder(t *testing.T) {
	g := NewGenericExtractor(DefaultConfig())
	out := g.Extract([]statement.Page{
		{Number: 1, Text: "Mar 3, 2024 Bakery 12.50\n"},
		{Number: 2, Text: "Mar 9, 2024 Florist 30.00\n"},
	})

	require.Len(t, out.Records, 2)
	assert.Equal(t, 1, out.Records[0].Page)
	assert.Equal(t, 2, out.Records[1].Page)
}

func TestDetectRegions(t *testing.T) {
	text := strings.Join([]string{
		"header",
		"A 01/02/2024 1.00",
		"B 01/03/2024 2.00",
		"note",
		"C 01/04/2024 3.00",
		"",
		"D 01/05/2024 4.00",
	}, "\n")

	regions := DetectRegions(text)
	require.Len(t, regions, 2)
	assert.Equal(t, 1, regions[0].Start)
	assert.Len(t, regions[0].Lines, 2)
	assert.Equal(t, 4, regions[1].Start)
	assert.Len(t, regions[1].Lines, 1)
}

func TestScoreRegion(t *testing.T) {
	dated := func(n int) []string {
		lines := make([]string, n)
		for i := range lines {
			lines[i] = fmt.Sprintf("01/%02d/2024 STORE $%d.00", i+1, i+1)
		}
		return lines
	}

	tests := []struct {
		name  string
		lines []string
		want  int
	}{
		{
			name:  "two dated lines",
			lines: dated(2),
			want:  4,
		},
		{
			name:  "total row costs three points",
			lines: append(dated(2), "01/17/2024 Total $50.17"),
			want:  5,
		},
		{
			name:  "date and amount points are capped",
			lines: dated(7),
			want:  12,
		},
		{
			name:  "never negative",
			lines: []string{"opening balance 1.00 2.00 3.00", "closing balance 4.00 5.00 6.00"},
			want:  0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScoreRegion(Region{Lines: tt.lines}))
		})
	}
}

func TestAcceptedRegions_Threshold(t *testing.T) {
	text := "01/01/2024 A $1.00\n01/02/2024 B $2.00\n"

	assert.Empty(t, NewGenericExtractor(DefaultConfig()).AcceptedRegions(text))

	lenient := NewGenericExtractor(Config{RegionThreshold: 4})
	regions := lenient.AcceptedRegions(text)
	require.Len(t, regions, 1)
	assert.Equal(t, 4, regions[0].Score)
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		date   string
		desc   string
		amount string
		reason string
	}{
		{
			name: "dollar amount", line: "03/15/2024 PAYROLL DEPOSIT $1,250.00",
			date: "03-15", desc: "PAYROLL DEPOSIT", amount: "1250.00",
		},
		{
			name: "parenthesised amount is negative", line: "03/16/2024 REFUND ($45.00)",
			date: "03-16", desc: "REFUND", amount: "-45.00",
		},
		{
			name: "leading minus", line: "5 Mar COFFEE -$3.20",
			date: "03-05", desc: "COFFEE", amount: "-3.20",
		},
		{
			name: "short description falls back", line: "01/15/2024 AB $1.00",
			date: "01-15", desc: statement.DescriptionFallback, amount: "1.00",
		},
		{name: "no date", line: "PAYROLL $1,000.00", reason: statement.DropNoDate},
		{name: "no amount", line: "01/15/2024 PAYROLL", reason: statement.DropNoAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, reason := ParseLine(tt.line, 3, FlatConfidence, statement.MethodGenericFlat)
			assert.Equal(t, tt.reason, reason)
			if tt.reason != "" {
				return
			}
			assert.Equal(t, tt.date, r.Date)
			assert.Equal(t, tt.desc, r.Description)
			assert.Equal(t, tt.amount, r.Amount.StringFixed(2))
			assert.Equal(t, 3, r.Page)
		})
	}
}

// Random merchant names must not disturb the grammar.
func TestExtractPage_RandomMerchants(t *testing.T) {
	gofakeit.Seed(42)
	var b strings.Builder
	want := 0
	for i := 0; i < 40; i++ {
		line := fmt.Sprintf("02/%02d/2024 %s $%.2f", i%28+1, gofakeit.Company(), gofakeit.Price(1, 999))
		if patterns.IsSummaryLine(line) || patterns.IsExcluded(line) {
			continue
		}
		b.WriteString(line + "\n")
		want++
	}

	out := NewGenericExtractor(DefaultConfig()).ExtractPage(page(b.String()))
	assert.Len(t, out.Records, want)
	for _, r := range out.Records {
		assert.True(t, r.Amount.IsPositive(), r.String())
		assert.NotEmpty(t, r.Description)
	}
}
