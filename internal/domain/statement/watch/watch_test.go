package watch

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement/export"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement/pdfdoc"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement/service"
	"github.com/FACorreiaa/statement-extractor/pkg/storage"
)

type fakeProcessor struct {
	mu    sync.Mutex
	calls [][]string
}

func (f *fakeProcessor) ProcessBatch(_ context.Context, paths []string, _ service.ProgressFunc) []*statement.DocumentAnalysisResult {
	f.mu.Lock()
	f.calls = append(f.calls, paths)
	f.mu.Unlock()

	out := make([]*statement.DocumentAnalysisResult, len(paths))
	for i, p := range paths {
		r := statement.NewResult(p)
		if strings.Contains(filepath.Base(p), "broken") {
			r.Fail(pdfdoc.ErrEmptyDocument)
		} else {
			r.Institution = "EQ Bank"
			r.ProcessingMethod = statement.InstitutionMethod("EQ Bank")
			r.Transactions = []statement.TransactionRecord{{
				Date: "03-01", Description: "INTERAC E-TRANSFER", Amount: decimal.RequireFromString("-20.00"),
				Direction: statement.DirectionDebit, Page: 1, Confidence: 0.95,
			}}
			r.Finalize(true)
		}
		out[i] = r
	}
	return out
}

func writeInbox(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
	}
}

func newWatcher(t *testing.T) (*Watcher, *fakeProcessor, storage.Storage, string) {
	t.Helper()
	inbox := t.TempDir()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	proc := &fakeProcessor{}
	w := New(proc, store, inbox, nil)
	w.now = func() time.Time { return time.Date(2024, 3, 15, 10, 15, 0, 0, time.UTC) }
	return w, proc, store, inbox
}

func TestWatcher_ScanProcessesNewDocuments(t *testing.T) {
	w, proc, store, inbox := newWatcher(t)
	writeInbox(t, inbox, map[string]string{
		"a.pdf":      "%PDF-1.4 first",
		"B.PDF":      "%PDF-1.4 second",
		"broken.pdf": "%PDF-1.4 third",
		"notes.txt":  "ignored",
	})

	res, err := w.Scan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, res.Found)
	assert.Equal(t, 2, res.Processed)
	assert.Equal(t, 1, res.Failed)
	require.NotNil(t, res.Export)
	assert.Equal(t, "transactions-20240315-101500.csv", res.Export.Name)
	assert.Len(t, res.Export.Sources, 3)

	require.Len(t, proc.calls, 1)
	assert.Equal(t, []string{
		filepath.Join(inbox, "B.PDF"),
		filepath.Join(inbox, "a.pdf"),
		filepath.Join(inbox, "broken.pdf"),
	}, proc.calls[0])

	rc, _, err := store.Open(context.Background(), Namespace, res.Export.ID)
	require.NoError(t, err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(string(body), "\n"), "header plus two transactions")
	assert.Contains(t, string(body), "INTERAC E-TRANSFER")
}

func TestWatcher_SkipsSeenContent(t *testing.T) {
	w, proc, _, inbox := newWatcher(t)
	writeInbox(t, inbox, map[string]string{"a.pdf": "%PDF-1.4 same"})

	_, err := w.Scan(context.Background())
	require.NoError(t, err)

	// Same bytes under a new name, plus one new document.
	writeInbox(t, inbox, map[string]string{
		"a-copy.pdf": "%PDF-1.4 same",
		"c.pdf":      "%PDF-1.4 new",
	})
	res, err := w.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, res.Found)
	assert.Equal(t, 2, res.Skipped)
	assert.Equal(t, 1, res.Processed)

	require.Len(t, proc.calls, 2)
	assert.Equal(t, []string{filepath.Join(inbox, "c.pdf")}, proc.calls[1])

	res, err = w.Scan(context.Background())
	require.NoError(t, err)
	assert.Nil(t, res.Export)
	assert.Len(t, proc.calls, 2)
}

func TestWatcher_RemembersAcrossRestarts(t *testing.T) {
	w, _, store, inbox := newWatcher(t)
	writeInbox(t, inbox, map[string]string{"a.pdf": "%PDF-1.4 first"})
	_, err := w.Scan(context.Background())
	require.NoError(t, err)

	proc := &fakeProcessor{}
	restarted := New(proc, store, inbox, nil).WithFormat(export.FormatXLSX)
	res, err := restarted.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Skipped)
	assert.Empty(t, proc.calls)
}

func TestWatcher_XLSXExport(t *testing.T) {
	w, _, _, inbox := newWatcher(t)
	w.WithFormat(export.FormatXLSX)
	writeInbox(t, inbox, map[string]string{"a.pdf": "%PDF-1.4 first"})

	res, err := w.Scan(context.Background())
	require.NoError(t, err)
	require.NotNil(t, res.Export)
	assert.True(t, strings.HasSuffix(res.Export.Name, ".xlsx"))
	assert.Equal(t, export.FormatXLSX.ContentType(), res.Export.ContentType)
}

func TestWatcher_MissingInbox(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	w := New(&fakeProcessor{}, store, filepath.Join(t.TempDir(), "missing"), nil)

	_, err = w.Scan(context.Background())
	assert.Error(t, err)
}
