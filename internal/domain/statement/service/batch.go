package service

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
)

// ProgressFunc is called once per finished document. Calls are serialized.
type ProgressFunc func(done, total int, result *statement.DocumentAnalysisResult)

// ProcessBatch processes every path with up to Config.Workers documents in flight.
// Results are returned in the order of paths; a failing document never stops the
// batch. Documents not yet started when ctx is cancelled are reported as failed.
func (p *Processor) ProcessBatch(ctx context.Context, paths []string, onProgress ProgressFunc) []*statement.DocumentAnalysisResult {
	results := make([]*statement.DocumentAnalysisResult, len(paths))
	batchID := uuid.New()
	p.logger.InfoContext(ctx, "batch started",
		"batch_id", batchID,
		"documents", len(paths),
		"workers", p.config.Workers)

	var (
		g    errgroup.Group
		mu   sync.Mutex
		done int
	)
	g.SetLimit(p.config.Workers)

	for i, path := range paths {
		g.Go(func() error {
			var r *statement.DocumentAnalysisResult
			if err := ctx.Err(); err != nil {
				r = statement.NewResult(path)
				r.Fail(err)
			} else {
				r = p.ProcessDocument(ctx, path)
			}
			results[i] = r

			if onProgress != nil {
				mu.Lock()
				done++
				onProgress(done, len(paths), r)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if r.Failed() {
			failed++
		}
	}
	p.logger.InfoContext(ctx, "batch finished",
		"batch_id", batchID,
		"documents", len(paths),
		"failed", failed)
	return results
}

// FlatTransaction is one transaction of a batch, annotated with the file it came
// from and how that file was processed.
type FlatTransaction struct {
	SourceFile       string
	Institution      string
	ProcessingMethod statement.ProcessingMethod
	DocumentLevel    statement.ConfidenceLevel
	statement.TransactionRecord
}

// Flatten concatenates the transactions of every result in order. Failed results
// contribute nothing.
func Flatten(results []*statement.DocumentAnalysisResult) []FlatTransaction {
	var n int
	for _, r := range results {
		if r != nil {
			n += len(r.Transactions)
		}
	}

	out := make([]FlatTransaction, 0, n)
	for _, r := range results {
		if r == nil {
			continue
		}
		source := filepath.Base(r.File)
		for _, tx := range r.Transactions {
			out = append(out, FlatTransaction{
				SourceFile:        source,
				Institution:       r.Institution,
				ProcessingMethod:  r.ProcessingMethod,
				DocumentLevel:     r.ConfidenceLevel,
				TransactionRecord: tx,
			})
		}
	}
	return out
}

// Summary aggregates a batch.
type Summary struct {
	Documents    int
	Failed       int
	Transactions int
	TotalDebits  decimal.Decimal
	TotalCredits decimal.Decimal
	ByMethod     map[statement.ProcessingMethod]int
}

// Summarize totals a batch of results.
func Summarize(results []*statement.DocumentAnalysisResult) Summary {
	s := Summary{
		TotalDebits:  decimal.Zero,
		TotalCredits: decimal.Zero,
		ByMethod:     make(map[statement.ProcessingMethod]int),
	}
	for _, r := range results {
		if r == nil {
			continue
		}
		s.Documents++
		if r.Failed() {
			s.Failed++
		}
		s.Transactions += len(r.Transactions)
		s.TotalDebits = s.TotalDebits.Add(r.TotalDebits)
		s.TotalCredits = s.TotalCredits.Add(r.TotalCredits)
		s.ByMethod[r.ProcessingMethod]++
	}
	return s
}
