package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	// Load environment variables from .env files when present.
	_ "github.com/joho/godotenv/autoload"
)

// Config holds all application configuration
type Config struct {
	Extraction     ExtractionConfig
	OCR            OCRConfig
	Batch          BatchConfig
	Export         ExportConfig
	Categorization CategorizationConfig
	Watch          WatchConfig
	Observability  ObservabilityConfig
}

// ExtractionConfig tunes document classification and the generic extractor.
type ExtractionConfig struct {
	TextBasedChars     float64
	ScannedChars       float64
	HybridPageText     int
	SamplePages        int
	RegionThreshold    int
	MultiLineLookahead int
}

type OCRConfig struct {
	Enabled          bool
	TesseractBinary  string
	PdftoppmBinary   string
	Language         string
	DPI              int
	MinConfidence    float64
	MinTextLength    int
	ConfidenceFactor float64
	TmpDir           string
}

type BatchConfig struct {
	Workers  int
	Progress bool
}

type ExportConfig struct {
	Dir    string
	Format string
}

type CategorizationConfig struct {
	Enabled   bool
	RulesFile string
}

type WatchConfig struct {
	InboxDir string
	Schedule string
}

type ObservabilityConfig struct {
	LogLevel       string
	LogFormat      string
	MetricsEnabled bool
	MetricsAddr    string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Extraction: ExtractionConfig{
			TextBasedChars:     getEnvAsFloat("EXTRACT_TEXT_BASED_CHARS", 500),
			ScannedChars:       getEnvAsFloat("EXTRACT_SCANNED_CHARS", 100),
			HybridPageText:     getEnvAsInt("EXTRACT_HYBRID_PAGE_CHARS", 200),
			SamplePages:        getEnvAsInt("EXTRACT_SAMPLE_PAGES", 3),
			RegionThreshold:    getEnvAsInt("EXTRACT_REGION_THRESHOLD", 5),
			MultiLineLookahead: getEnvAsInt("EXTRACT_MULTILINE_LOOKAHEAD", 2),
		},
		OCR: OCRConfig{
			Enabled:          getEnvAsBool("OCR_ENABLED", true),
			TesseractBinary:  getEnv("OCR_TESSERACT_BIN", "tesseract"),
			PdftoppmBinary:   getEnv("OCR_PDFTOPPM_BIN", "pdftoppm"),
			Language:         getEnv("OCR_LANGUAGE", "eng"),
			DPI:              getEnvAsInt("OCR_DPI", 300),
			MinConfidence:    getEnvAsFloat("OCR_MIN_CONFIDENCE", 0.7),
			MinTextLength:    getEnvAsInt("OCR_MIN_TEXT_LENGTH", 3),
			ConfidenceFactor: getEnvAsFloat("OCR_CONFIDENCE_FACTOR", 0.8),
			TmpDir:           getEnv("OCR_TMP_DIR", ""),
		},
		Batch: BatchConfig{
			Workers:  getEnvAsInt("BATCH_WORKERS", runtime.GOMAXPROCS(0)),
			Progress: getEnvAsBool("BATCH_PROGRESS", true),
		},
		Export: ExportConfig{
			Dir:    getEnv("EXPORT_DIR", "./exports"),
			Format: strings.ToLower(getEnv("EXPORT_FORMAT", "csv")),
		},
		Categorization: CategorizationConfig{
			Enabled:   getEnvAsBool("CATEGORIZATION_ENABLED", true),
			RulesFile: getEnv("CATEGORIZATION_RULES_FILE", ""),
		},
		Watch: WatchConfig{
			InboxDir: getEnv("WATCH_INBOX_DIR", "./inbox"),
			Schedule: getEnv("WATCH_SCHEDULE", "@every 5m"),
		},
		Observability: ObservabilityConfig{
			LogLevel:       strings.ToLower(getEnv("LOG_LEVEL", "info")),
			LogFormat:      strings.ToLower(getEnv("LOG_FORMAT", "text")),
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", false),
			MetricsAddr:    getEnv("METRICS_ADDR", ":9090"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the extractor cannot run with.
func (c *Config) Validate() error {
	if c.Extraction.ScannedChars >= c.Extraction.TextBasedChars {
		return errors.New("EXTRACT_SCANNED_CHARS must be below EXTRACT_TEXT_BASED_CHARS")
	}
	if c.Extraction.SamplePages < 1 {
		return errors.New("EXTRACT_SAMPLE_PAGES must be at least 1")
	}
	if c.OCR.MinConfidence < 0 || c.OCR.MinConfidence > 1 {
		return errors.New("OCR_MIN_CONFIDENCE must be between 0 and 1")
	}
	if c.OCR.DPI < 72 {
		return errors.New("OCR_DPI must be at least 72")
	}
	if c.Batch.Workers < 1 {
		return errors.New("BATCH_WORKERS must be at least 1")
	}
	switch c.Export.Format {
	case "csv", "xlsx":
	default:
		return fmt.Errorf("EXPORT_FORMAT %q: want csv or xlsx", c.Export.Format)
	}
	switch c.Observability.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT %q: want text or json", c.Observability.LogFormat)
	}
	switch c.Observability.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL %q: want debug, info, warn or error", c.Observability.LogLevel)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
