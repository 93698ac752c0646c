package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/FACorreiaa/statement-extractor/internal/domain/categorization"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement/ocr"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement/parser"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement/pdfdoc"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement/service"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement/sniffer"
	"github.com/FACorreiaa/statement-extractor/pkg/config"
	"github.com/FACorreiaa/statement-extractor/pkg/metrics"
)

// Dependencies holds everything a command needs to process documents.
type Dependencies struct {
	Config *config.Config
	Logger *slog.Logger

	Metrics       *metrics.Metrics
	Categorizer   *categorization.Service
	Processor     *service.Processor
	metricsServer *http.Server
}

// InitDependencies builds the processor and its optional collaborators from cfg.
func InitDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initCategorization(); err != nil {
		return nil, fmt.Errorf("failed to init categorization: %w", err)
	}

	deps.initProcessor()

	if err := deps.initMetrics(); err != nil {
		deps.Cleanup()
		return nil, fmt.Errorf("failed to init metrics: %w", err)
	}

	logger.Debug("dependencies initialized",
		"ocr", deps.Processor.OCRAvailable(),
		"categorization", deps.Categorizer != nil,
		"metrics", deps.metricsServer != nil)
	return deps, nil
}

// ProcessorConfig maps the extraction settings onto the processor's config.
func ProcessorConfig(cfg *config.Config) service.Config {
	return service.Config{
		Workers:     cfg.Batch.Workers,
		SamplePages: cfg.Extraction.SamplePages,
		Sniffer: sniffer.Thresholds{
			TextBasedChars: cfg.Extraction.TextBasedChars,
			ScannedChars:   cfg.Extraction.ScannedChars,
			SamplePages:    cfg.Extraction.SamplePages,
			HybridPageText: cfg.Extraction.HybridPageText,
		},
		Generic: parser.Config{
			RegionThreshold:    cfg.Extraction.RegionThreshold,
			MultiLineLookahead: cfg.Extraction.MultiLineLookahead,
			MultiLineMinFlat:   parser.DefaultConfig().MultiLineMinFlat,
		},
		OCR: ocr.Config{
			MinConfidence:    cfg.OCR.MinConfidence,
			MinTextLength:    cfg.OCR.MinTextLength,
			ConfidenceFactor: cfg.OCR.ConfidenceFactor,
			DPI:              cfg.OCR.DPI,
			TmpDir:           cfg.OCR.TmpDir,
		},
	}
}

func (d *Dependencies) initCategorization() error {
	if !d.Config.Categorization.Enabled {
		return nil
	}

	var categories []categorization.Category
	if path := d.Config.Categorization.RulesFile; path != "" {
		loaded, err := categorization.LoadRulesFile(path)
		if err != nil {
			return err
		}
		categories = loaded
		d.Logger.Info("categorization rules loaded", "file", path, "categories", len(categories))
	}

	svc, err := categorization.NewService(categories, d.Logger)
	if err != nil {
		return err
	}
	d.Categorizer = svc
	return nil
}

func (d *Dependencies) initProcessor() {
	d.Processor = service.NewProcessor(ProcessorConfig(d.Config), d.Logger)

	if d.Config.OCR.Enabled {
		rasterizer := pdfdoc.NewPdftoppm(d.Config.OCR.PdftoppmBinary)
		rasterizer.TmpDir = d.Config.OCR.TmpDir
		d.Processor.WithOCR(ocr.NewTesseractEngine(d.Config.OCR.TesseractBinary, d.Config.OCR.Language), rasterizer)
		if !d.Processor.OCRAvailable() {
			d.Logger.Warn("OCR tools not found, scanned pages will fail",
				"tesseract", d.Config.OCR.TesseractBinary,
				"pdftoppm", d.Config.OCR.PdftoppmBinary)
		}
	}

	if d.Categorizer != nil {
		d.Processor.WithCategorizationService(newCategorizationAdapter(d.Categorizer))
	}
}

func (d *Dependencies) initMetrics() error {
	if !d.Config.Observability.MetricsEnabled {
		return nil
	}

	d.Metrics = metrics.New()
	d.Processor.WithMetrics(d.Metrics)

	mux := http.NewServeMux()
	mux.Handle("/metrics", d.Metrics.Handler())
	d.metricsServer = &http.Server{
		Addr:              d.Config.Observability.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := d.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			d.Logger.Error("metrics server stopped", "error", err)
		}
	}()
	d.Logger.Info("serving metrics", "addr", d.Config.Observability.MetricsAddr)
	return nil
}

// Cleanup closes all resources
func (d *Dependencies) Cleanup() {
	if d.metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := d.metricsServer.Shutdown(ctx); err != nil {
			d.Logger.Warn("metrics server shutdown", "error", err)
		}
	}
	if d.Categorizer != nil {
		if err := d.Categorizer.Close(); err != nil {
			d.Logger.Warn("close categorizer", "error", err)
		}
	}
	d.Logger.Debug("cleanup completed")
}
