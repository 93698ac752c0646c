// Package service orchestrates statement processing: classification of the PDF,
// institution identification, extraction through the dedicated, generic or OCR
// path, direction inference and optional categorization.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement/classifier"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement/institution"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement/ocr"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement/parser"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement/pdfdoc"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement/sniffer"
	"github.com/FACorreiaa/statement-extractor/pkg/metrics"
)

const tracerName = "github.com/FACorreiaa/statement-extractor/service"

// ErrOCRUnavailable is set on results that needed OCR when no engine or
// rasterizer was configured.
var ErrOCRUnavailable = errors.New("OCR is required for this document but is not available")

// CategorizationService labels cleaned descriptions. It is optional.
type CategorizationService interface {
	CategorizeBatch(ctx context.Context, descriptions []string) ([]*CategorizationResult, error)
}

// CategorizationResult holds the category assigned to one description
type CategorizationResult struct {
	Category    string
	Confidence  float64
	MatchedRule string
}

// Config tunes the processor. Zero values take the package defaults.
type Config struct {
	Workers     int // documents processed concurrently by ProcessBatch
	SamplePages int // pages of text handed to institution identification
	Sniffer     sniffer.Thresholds
	Generic     parser.Config
	OCR         ocr.Config
}

func DefaultConfig() Config {
	return Config{
		Workers:     runtime.GOMAXPROCS(0),
		SamplePages: sniffer.DefaultSamplePages,
		Sniffer:     sniffer.DefaultThresholds(),
		Generic:     parser.DefaultConfig(),
		OCR:         ocr.DefaultConfig(),
	}
}

// Processor is the document processor. It holds no per-document state and is safe
// for concurrent use once configured.
type Processor struct {
	config     Config
	sniffer    *sniffer.Classifier
	identifier *institution.Identifier
	generic    *parser.GenericExtractor
	ocr        *ocr.Extractor
	rasterizer pdfdoc.Rasterizer
	classifier *classifier.Classifier
	catService CategorizationService // Optional: nil if categorization not available
	metrics    *metrics.Metrics      // Optional
	logger     *slog.Logger
	tracer     trace.Tracer
}

// NewProcessor creates a processor with the default institution registry and no
// OCR engine.
func NewProcessor(config Config, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultConfig()
	if config.Workers <= 0 {
		config.Workers = def.Workers
	}
	if config.SamplePages <= 0 {
		config.SamplePages = def.SamplePages
	}
	return &Processor{
		config:     config,
		sniffer:    sniffer.NewClassifier(config.Sniffer),
		identifier: institution.NewIdentifier(institution.DefaultRegistry(), logger),
		generic:    parser.NewGenericExtractor(config.Generic),
		ocr:        ocr.NewExtractor(nil, config.OCR, logger),
		classifier: classifier.New(),
		logger:     logger,
		tracer:     otel.Tracer(tracerName),
	}
}

// WithRegistry replaces the institution registry.
func (p *Processor) WithRegistry(registry *institution.Registry) *Processor {
	p.identifier = institution.NewIdentifier(registry, p.logger)
	return p
}

// WithOCR enables the OCR path.
func (p *Processor) WithOCR(engine ocr.Engine, rasterizer pdfdoc.Rasterizer) *Processor {
	p.ocr = ocr.NewExtractor(engine, p.config.OCR, p.logger)
	p.rasterizer = rasterizer
	return p
}

// WithCategorizationService adds categorization support to the processor
func (p *Processor) WithCategorizationService(catService CategorizationService) *Processor {
	p.catService = catService
	return p
}

// WithMetrics reports every processed document to m.
func (p *Processor) WithMetrics(m *metrics.Metrics) *Processor {
	p.metrics = m
	return p
}

// Identifier exposes the institution identifier used by the processor.
func (p *Processor) Identifier() *institution.Identifier {
	return p.identifier
}

// OCRAvailable reports whether scanned pages can be read.
func (p *Processor) OCRAvailable() bool {
	return p.ocr.Available() && p.rasterizer != nil && p.rasterizer.Available()
}

// ProcessDocument opens one PDF and runs the full pipeline on it. It never returns
// nil; failures are reported on the result.
func (p *Processor) ProcessDocument(ctx context.Context, path string) *statement.DocumentAnalysisResult {
	start := time.Now()
	ctx, span := p.tracer.Start(ctx, "ProcessDocument",
		trace.WithAttributes(attribute.String("file", filepath.Base(path))))
	defer span.End()

	doc, err := pdfdoc.Open(path)
	if err != nil {
		result := statement.NewResult(path)
		result.Fail(err)
		p.finish(ctx, result, false, start)
		return result
	}
	return p.Process(ctx, doc)
}

// Process runs the pipeline on an opened document. A panic inside an extractor is
// converted into a failed result.
func (p *Processor) Process(ctx context.Context, doc *pdfdoc.Document) (result *statement.DocumentAnalysisResult) {
	start := time.Now()
	ctx, span := p.tracer.Start(ctx, "Process")
	defer span.End()

	result = statement.NewResult(doc.Path)
	result.PageCount = doc.PageCount()
	if len(doc.Data) > 0 {
		result.Fingerprint = sniffer.Fingerprint(doc.Data)
	}
	dedicated := false

	defer func() {
		if rec := recover(); rec != nil {
			result.Fail(fmt.Errorf("panic while processing %s: %v", doc.Name, rec))
		}
		p.finish(ctx, result, dedicated, start)
	}()

	profile := p.sniffer.Classify(doc.Pages, doc.TextErr)
	result.DocumentType = profile.Type
	span.SetAttributes(
		attribute.String("document_type", string(profile.Type)),
		attribute.Int("pages", result.PageCount))
	if doc.TextErr != nil {
		result.Warn(fmt.Sprintf("text layer unreadable: %v", doc.TextErr))
	}

	ext, dedicated, err := p.extract(ctx, doc, profile, result)
	if err != nil {
		result.Fail(err)
		return result
	}

	for _, w := range ext.Warnings {
		result.Warn(w)
	}
	result.DroppedLines = ext.Dropped
	records := p.classifier.Classify(result.Institution, ext.Records)
	result.Transactions = p.categorize(ctx, records, result)
	return result
}

// extract picks the extraction path. The bool reports whether a dedicated format
// produced the records.
func (p *Processor) extract(ctx context.Context, doc *pdfdoc.Document, profile sniffer.Profile, result *statement.DocumentAnalysisResult) (*statement.Extraction, bool, error) {
	if profile.Type != statement.DocumentScannedImage {
		if ext, ok := p.extractDedicated(ctx, doc, result); ok {
			return ext, true, nil
		}
	}

	switch profile.Type {
	case statement.DocumentTextBased:
		ext := p.generic.Extract(doc.Pages)
		if ext.Len() > 0 {
			result.ProcessingMethod = statement.ProcessingGenericText
		} else {
			result.ProcessingMethod = statement.ProcessingUnidentified
		}
		return ext, false, nil

	case statement.DocumentScannedImage:
		result.ProcessingMethod = statement.ProcessingOCR
		if !p.OCRAvailable() {
			return nil, false, ErrOCRUnavailable
		}
		ext, err := p.ocr.ExtractPages(ctx, p.rasterizer, doc.Path, pageNumbers(doc.Pages))
		if err != nil {
			return nil, false, p.ocrError(err)
		}
		return ext, false, nil

	default:
		ext, err := p.extractHybrid(ctx, doc, result)
		return ext, false, err
	}
}

func (p *Processor) extractDedicated(ctx context.Context, doc *pdfdoc.Document, result *statement.DocumentAnalysisResult) (*statement.Extraction, bool) {
	ctx, span := p.tracer.Start(ctx, "IdentifyInstitution")
	defer span.End()

	// A later format that also claims the document gets its turn before the
	// generic fallback.
	for _, format := range p.identifier.Candidates(ctx, doc.SampleText(p.config.SamplePages), doc.Name) {
		ext := format.Extract(doc.Pages)
		if ext.Len() == 0 {
			p.logger.WarnContext(ctx, "institution format produced no transactions, trying next",
				"file", doc.Name,
				"institution", format.Name(),
				"dropped", len(ext.Dropped))
			result.Warn(fmt.Sprintf("%s layout matched but no transactions were read", format.Name()))
			continue
		}
		span.SetAttributes(attribute.String("institution", format.Name()))
		result.Institution = format.Name()
		result.ProcessingMethod = statement.InstitutionMethod(format.Name())
		return ext, true
	}
	return nil, false
}

// extractHybrid reads each page from its text layer when it has enough text and
// through OCR otherwise, in page order.
func (p *Processor) extractHybrid(ctx context.Context, doc *pdfdoc.Document, result *statement.DocumentAnalysisResult) (*statement.Extraction, error) {
	result.ProcessingMethod = statement.ProcessingHybrid
	out := &statement.Extraction{}
	ocrAvailable := p.OCRAvailable()
	skipped, ocrPages, ocrFailed := 0, 0, 0
	var ocrErr error

	for _, page := range doc.Pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if p.sniffer.UseTextLayer(page) {
			out.Merge(p.generic.ExtractPage(page))
			continue
		}
		if !ocrAvailable {
			skipped++
			continue
		}
		ocrPages++
		ext, err := p.ocr.ExtractPages(ctx, p.rasterizer, doc.Path, []int{page.Number})
		if errors.Is(err, ocr.ErrNoPageRecognized) {
			// The page's warning travels on ext.
			out.Merge(ext)
			ocrFailed++
			ocrErr = err
			continue
		}
		if err != nil {
			return nil, p.ocrError(err)
		}
		out.Merge(ext)
	}

	if skipped > 0 {
		if out.Len() == 0 {
			return nil, ErrOCRUnavailable
		}
		result.Warn(fmt.Sprintf("%d page(s) need OCR but no OCR engine is available", skipped))
	}
	if out.Len() == 0 {
		if ocrPages > 0 && ocrFailed == ocrPages {
			return nil, ocrErr
		}
		result.ProcessingMethod = statement.ProcessingUnidentified
	}
	return out, nil
}

func (p *Processor) ocrError(err error) error {
	if errors.Is(err, ocr.ErrEngineUnavailable) || errors.Is(err, pdfdoc.ErrRasterizerUnavailable) {
		return fmt.Errorf("%w: %w", ErrOCRUnavailable, err)
	}
	return err
}

// categorize fills the category fields. A failing categorizer leaves records
// uncategorized and adds a warning.
func (p *Processor) categorize(ctx context.Context, records []statement.TransactionRecord, result *statement.DocumentAnalysisResult) []statement.TransactionRecord {
	if p.catService == nil || len(records) == 0 {
		return records
	}

	descriptions := make([]string, len(records))
	for i, r := range records {
		descriptions[i] = r.Description
	}

	cats, err := p.catService.CategorizeBatch(ctx, descriptions)
	if err == nil && len(cats) != len(records) {
		err = fmt.Errorf("categorizer returned %d results for %d descriptions", len(cats), len(records))
	}
	if err != nil {
		p.logger.WarnContext(ctx, "categorization failed, leaving transactions uncategorized", "error", err)
		result.Warn("categorization failed: " + err.Error())
		return records
	}

	out := make([]statement.TransactionRecord, len(records))
	for i, r := range records {
		if c := cats[i]; c != nil {
			r.Category = c.Category
			r.CategoryConfidence = c.Confidence
			r.MatchedRule = c.MatchedRule
		}
		out[i] = r
	}
	return out
}

func (p *Processor) finish(ctx context.Context, result *statement.DocumentAnalysisResult, dedicated bool, start time.Time) {
	result.Finalize(dedicated)
	result.Duration = time.Since(start)

	span := trace.SpanFromContext(ctx)
	span.SetAttributes(
		attribute.String("method", string(result.ProcessingMethod)),
		attribute.Int("transactions", len(result.Transactions)),
		attribute.Int("dropped", len(result.DroppedLines)))

	p.metrics.ObserveDocument(metrics.Document{
		Method:       string(result.ProcessingMethod),
		Confidence:   string(result.ConfidenceLevel),
		DocumentType: string(result.DocumentType),
		Transactions: len(result.Transactions),
		Dropped:      len(result.DroppedLines),
		Failed:       result.Failed(),
		Duration:     result.Duration,
	})

	if result.Failed() {
		span.SetStatus(codes.Error, result.Error)
		p.logger.ErrorContext(ctx, "document processing failed",
			"file", filepath.Base(result.File),
			"type", result.DocumentType,
			"error", result.Err())
		return
	}
	p.logger.InfoContext(ctx, "document processed",
		"file", filepath.Base(result.File),
		"type", result.DocumentType,
		"method", result.ProcessingMethod,
		"institution", result.Institution,
		"transactions", len(result.Transactions),
		"dropped", len(result.DroppedLines),
		"confidence", result.ConfidenceLevel,
		"duration", result.Duration)
}

func pageNumbers(pages []statement.Page) []int {
	out := make([]int, len(pages))
	for i, p := range pages {
		out[i] = p.Number
	}
	return out
}
