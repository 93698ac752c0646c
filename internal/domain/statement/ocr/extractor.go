package ocr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement/parser"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement/patterns"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement/pdfdoc"
)

// Segment filters and confidence scaling. The cutoffs are empirical.
const (
	DefaultMinConfidence    = 0.7
	DefaultMinTextLength    = 3
	DefaultConfidenceFactor = 0.8
)

// Config tunes the extractor.
type Config struct {
	MinConfidence    float64 // segments below this are discarded
	MinTextLength    int     // segments this short or shorter are discarded
	ConfidenceFactor float64 // record confidence = engine confidence * factor
	DPI              int
	TmpDir           string
}

func DefaultConfig() Config {
	return Config{
		MinConfidence:    DefaultMinConfidence,
		MinTextLength:    DefaultMinTextLength,
		ConfidenceFactor: DefaultConfidenceFactor,
		DPI:              pdfdoc.DefaultDPI,
	}
}

// Extractor turns page images into transaction records.
type Extractor struct {
	engine Engine
	config Config
	logger *slog.Logger
}

// NewExtractor creates an extractor. A nil engine is allowed; the extractor then
// reports itself unavailable.
func NewExtractor(engine Engine, config Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultConfig()
	if config.MinConfidence <= 0 {
		config.MinConfidence = def.MinConfidence
	}
	if config.MinTextLength <= 0 {
		config.MinTextLength = def.MinTextLength
	}
	if config.ConfidenceFactor <= 0 {
		config.ConfidenceFactor = def.ConfidenceFactor
	}
	if config.DPI <= 0 {
		config.DPI = def.DPI
	}
	return &Extractor{engine: engine, config: config, logger: logger}
}

// Available reports whether an OCR engine is installed.
func (e *Extractor) Available() bool {
	return e.engine != nil && e.engine.Available()
}

// ExtractPage enhances the image at imagePath, recognizes it and parses the
// confident segments. The enhanced copy is removed before returning.
func (e *Extractor) ExtractPage(ctx context.Context, imagePath string, page int) (*statement.Extraction, error) {
	if !e.Available() {
		return nil, ErrEngineUnavailable
	}

	enhanced, cleanup, err := e.enhance(imagePath)
	if err != nil {
		e.logger.WarnContext(ctx, "image enhancement failed, using original",
			slog.Int("page", page),
			slog.Any("error", err))
		enhanced, cleanup = imagePath, func() {}
	}
	defer cleanup()

	segments, err := e.engine.Recognize(ctx, enhanced)
	if err != nil {
		return nil, fmt.Errorf("recognize page %d: %w", page, err)
	}
	return e.ParseSegments(segments, page), nil
}

// ParseSegments applies the confidence and length filters, then the shared line
// grammar, to recognized segments.
func (e *Extractor) ParseSegments(segments []Segment, page int) *statement.Extraction {
	out := &statement.Extraction{}
	for _, s := range segments {
		text := strings.TrimSpace(s.Text)
		if s.Confidence < e.config.MinConfidence || len(text) <= e.config.MinTextLength {
			continue
		}
		text = patterns.Preprocess(text)
		if patterns.IsNonTransaction(text) {
			continue
		}
		if !patterns.HasDate(text) && !patterns.HasAmount(text) {
			continue
		}
		rec, reason := parser.ParseLine(text, page, s.Confidence*e.config.ConfidenceFactor, statement.MethodOCRLine)
		if reason != "" {
			out.Drop(page, text, reason)
			continue
		}
		out.Add(rec)
	}
	return out
}

// ExtractPages renders each listed page of the PDF and runs ExtractPage on it. A
// page that fails is logged and becomes a warning on the extraction. When no listed
// page could be read the call returns ErrNoPageRecognized wrapping the last page
// error.
func (e *Extractor) ExtractPages(ctx context.Context, r pdfdoc.Rasterizer, path string, pages []int) (*statement.Extraction, error) {
	if !e.Available() {
		return nil, ErrEngineUnavailable
	}
	if r == nil || !r.Available() {
		return nil, pdfdoc.ErrRasterizerUnavailable
	}

	out := &statement.Extraction{}
	failed := 0
	var lastErr error
	for _, n := range pages {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		page, err := e.renderAndExtract(ctx, r, path, n)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return out, err
			}
			e.logger.WarnContext(ctx, "ocr page failed",
				slog.String("file", filepath.Base(path)),
				slog.Int("page", n),
				slog.Any("error", err))
			out.Warn(fmt.Sprintf("page %d: ocr failed: %v", n, err))
			failed++
			lastErr = err
			continue
		}
		out.Merge(page)
	}
	if failed > 0 && failed == len(pages) {
		return out, fmt.Errorf("%w: %d page(s): %w", ErrNoPageRecognized, failed, lastErr)
	}
	return out, nil
}

// renderAndExtract keeps the rendered image alive only for the duration of one page.
func (e *Extractor) renderAndExtract(ctx context.Context, r pdfdoc.Rasterizer, path string, page int) (*statement.Extraction, error) {
	img, cleanup, err := r.Render(ctx, path, page, e.config.DPI)
	if err != nil {
		return nil, err
	}
	defer cleanup()
	return e.ExtractPage(ctx, img, page)
}

func (e *Extractor) enhance(imagePath string) (string, func(), error) {
	f, err := os.CreateTemp(e.config.TmpDir, "ocr-enhanced-*.png")
	if err != nil {
		return "", nil, fmt.Errorf("create temp image: %w", err)
	}
	name := f.Name()
	_ = f.Close()
	cleanup := func() { _ = os.Remove(name) }

	if err := PreprocessFile(imagePath, name); err != nil {
		cleanup()
		return "", nil, err
	}
	return name, cleanup, nil
}
