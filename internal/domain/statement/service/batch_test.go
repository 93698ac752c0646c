package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement/pdfdoc"
)

func TestProcessBatch_PreservesOrderAndIsolatesFailures(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		filepath.Join(dir, "a.pdf"),
		filepath.Join(dir, "b.pdf"),
		filepath.Join(dir, "c.pdf"),
		filepath.Join(dir, "d.pdf"),
	}
	p := NewProcessor(Config{Workers: 2}, nil)

	var seen []int
	results := p.ProcessBatch(context.Background(), paths, func(done, total int, _ *statement.DocumentAnalysisResult) {
		assert.Equal(t, len(paths), total)
		seen = append(seen, done)
	})

	require.Len(t, results, len(paths))
	for i, r := range results {
		assert.Equal(t, paths[i], r.File)
		assert.True(t, r.Failed())
		assert.ErrorIs(t, r.Err(), pdfdoc.ErrUnreadableFile)
	}
	assert.Equal(t, []int{1, 2, 3, 4}, seen)
}

func TestProcessBatch_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := NewProcessor(DefaultConfig(), nil).ProcessBatch(ctx, []string{"x.pdf", "y.pdf"}, nil)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.ErrorIs(t, r.Err(), context.Canceled)
	}
}

func TestFlatten(t *testing.T) {
	a := statement.NewResult("/in/td-march.pdf")
	a.Institution = "TD Bank"
	a.ProcessingMethod = statement.InstitutionMethod("TD Bank")
	a.ConfidenceLevel = statement.ConfidenceHigh
	a.Transactions = []statement.TransactionRecord{
		{Date: "03-01", Description: "PAYROLL", Amount: decimal.RequireFromString("1200.00")},
		{Date: "03-02", Description: "RENT", Amount: decimal.RequireFromString("900.00")},
	}

	failed := statement.NewResult("/in/broken.pdf")
	failed.Fail(pdfdoc.ErrUnreadablePDF)

	b := statement.NewResult("/in/scan.pdf")
	b.ProcessingMethod = statement.ProcessingOCR
	b.Transactions = []statement.TransactionRecord{
		{Date: "04-10", Description: "PHARMACY", Amount: decimal.RequireFromString("-9.99")},
	}

	rows := Flatten([]*statement.DocumentAnalysisResult{a, failed, nil, b})
	require.Len(t, rows, 3)
	assert.Equal(t, "td-march.pdf", rows[0].SourceFile)
	assert.Equal(t, "TD Bank", rows[0].Institution)
	assert.Equal(t, "RENT", rows[1].Description)
	assert.Equal(t, "scan.pdf", rows[2].SourceFile)
	assert.Equal(t, statement.ProcessingOCR, rows[2].ProcessingMethod)
}

func TestSummarize(t *testing.T) {
	a := statement.NewResult("a.pdf")
	a.ProcessingMethod = statement.ProcessingGenericText
	a.Transactions = []statement.TransactionRecord{
		{Amount: decimal.RequireFromString("-10.00"), Direction: statement.DirectionDebit},
		{Amount: decimal.RequireFromString("25.00"), Direction: statement.DirectionCredit},
	}
	a.Finalize(false)

	b := statement.NewResult("b.pdf")
	b.Fail(pdfdoc.ErrEmptyDocument)
	b.Finalize(false)

	s := Summarize([]*statement.DocumentAnalysisResult{a, b})
	assert.Equal(t, 2, s.Documents)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 2, s.Transactions)
	assert.Equal(t, "10.00", s.TotalDebits.StringFixed(2))
	assert.Equal(t, "25.00", s.TotalCredits.StringFixed(2))
	assert.Equal(t, 1, s.ByMethod[statement.ProcessingGenericText])
	assert.Equal(t, 1, s.ByMethod[statement.ProcessingUnidentified])
}
