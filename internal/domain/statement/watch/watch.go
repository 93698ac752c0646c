// Package watch processes statements dropped into an inbox directory and archives
// one export per scan.
package watch

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement/export"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement/service"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement/sniffer"
	"github.com/FACorreiaa/statement-extractor/pkg/storage"
)

// Namespace is the storage namespace exports are written to.
const Namespace = "exports"

// BatchProcessor processes a set of documents.
type BatchProcessor interface {
	ProcessBatch(ctx context.Context, paths []string, onProgress service.ProgressFunc) []*statement.DocumentAnalysisResult
}

// ScanResult summarizes one pass over the inbox.
type ScanResult struct {
	Found     int
	Skipped   int // already processed in an earlier scan
	Processed int
	Failed    int
	Export    *storage.FileInfo
}

// Watcher picks up PDFs it has not seen before. A document is identified by the
// fingerprint of its content, so renamed or re-dropped files are not processed
// twice. Fingerprints survive restarts through the Sources of stored exports.
type Watcher struct {
	processor BatchProcessor
	store     storage.Storage
	inbox     string
	format    export.Format
	now       func() time.Time
	logger    *slog.Logger

	mu     sync.Mutex
	seen   map[string]bool
	loaded bool
}

func New(processor BatchProcessor, store storage.Storage, inbox string, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		processor: processor,
		store:     store,
		inbox:     inbox,
		format:    export.FormatCSV,
		now:       time.Now,
		logger:    logger,
		seen:      make(map[string]bool),
	}
}

// WithFormat selects the export format.
func (w *Watcher) WithFormat(f export.Format) *Watcher {
	w.format = f
	return w
}

// Scan processes every unseen PDF in the inbox and stores their transactions as a
// single export. Scans are serialized.
func (w *Watcher) Scan(ctx context.Context) (*ScanResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.loadSeen(ctx); err != nil {
		return nil, err
	}

	paths, err := listPDFs(w.inbox)
	if err != nil {
		return nil, err
	}

	res := &ScanResult{Found: len(paths)}
	var (
		pending      []string
		fingerprints []string
	)
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			w.logger.WarnContext(ctx, "skipping unreadable file", "file", p, "error", err)
			continue
		}
		fp := sniffer.Fingerprint(data)
		if w.seen[fp] || slices.Contains(fingerprints, fp) {
			res.Skipped++
			continue
		}
		pending = append(pending, p)
		fingerprints = append(fingerprints, fp)
	}

	if len(pending) == 0 {
		w.logger.DebugContext(ctx, "inbox scan found nothing new", "inbox", w.inbox, "found", res.Found)
		return res, nil
	}

	results := w.processor.ProcessBatch(ctx, pending, nil)
	for _, r := range results {
		if r == nil || r.Failed() {
			res.Failed++
			continue
		}
		res.Processed++
	}
	if err := ctx.Err(); err != nil {
		// Unfinished documents stay unseen and are retried next scan.
		return res, err
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, w.format, service.Flatten(results), results); err != nil {
		return res, fmt.Errorf("build export: %w", err)
	}

	info, err := w.store.Put(ctx, Namespace, storage.FileInfo{
		Name:        export.FileName("transactions", w.now().UTC().Format("20060102-150405"), w.format),
		ContentType: w.format.ContentType(),
		Sources:     fingerprints,
	}, &buf)
	if err != nil {
		return res, fmt.Errorf("store export: %w", err)
	}
	res.Export = info

	for _, fp := range fingerprints {
		w.seen[fp] = true
	}

	w.logger.InfoContext(ctx, "inbox scan completed",
		"inbox", w.inbox,
		"processed", res.Processed,
		"failed", res.Failed,
		"skipped", res.Skipped,
		"export", info.Name)
	return res, nil
}

func (w *Watcher) loadSeen(ctx context.Context) error {
	if w.loaded {
		return nil
	}
	files, err := w.store.List(ctx, Namespace)
	if err != nil {
		return fmt.Errorf("load processed documents: %w", err)
	}
	for _, f := range files {
		for _, fp := range f.Sources {
			w.seen[fp] = true
		}
	}
	w.loaded = true
	return nil
}

func listPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read inbox: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}
