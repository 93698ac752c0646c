package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/FACorreiaa/statement-extractor/pkg/config"
)

var (
	cfg     *config.Config
	version = "dev"
	rootCmd = &cobra.Command{
		Use:   "extractor",
		Short: "Extract transactions from bank and credit card statement PDFs",
		Long: `extractor reads bank and credit card statement PDFs and turns them into
normalized transaction records.

Statements from known institutions are read with a dedicated layout. Anything
else goes through the generic text extractor, and scanned pages are sent to OCR.`,
		Version:           version,
		SilenceUsage:      true,
		PersistentPreRunE: initConfig,
	}
)

func init() {
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "log format (text, json)")
	rootCmd.PersistentFlags().Int("workers", 0, "documents processed concurrently")
	rootCmd.PersistentFlags().Bool("no-ocr", false, "disable OCR for scanned pages")
	rootCmd.PersistentFlags().Bool("no-categorize", false, "skip transaction categorization")
	rootCmd.PersistentFlags().String("rules", "", "YAML file with categorization rules")
	rootCmd.PersistentFlags().String("metrics-addr", "", "serve prometheus metrics on this address")

	rootCmd.AddCommand(processCmd())
	rootCmd.AddCommand(identifyCmd())
	rootCmd.AddCommand(batchCmd())
	rootCmd.AddCommand(watchCmd())
	rootCmd.AddCommand(formatsCmd())
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		slog.Info("received interrupt signal, shutting down")
		cancel()
	}()

	err := rootCmd.ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initConfig(cmd *cobra.Command, _ []string) error {
	loaded, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyFlags(cmd, loaded)
	if err := loaded.Validate(); err != nil {
		return err
	}
	cfg = loaded

	if err := setupLogging(cfg.Observability); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	return nil
}

// applyFlags overrides configuration with the flags set on this invocation.
func applyFlags(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		c.Observability.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-format") {
		c.Observability.LogFormat, _ = flags.GetString("log-format")
	}
	if flags.Changed("workers") {
		c.Batch.Workers, _ = flags.GetInt("workers")
	}
	if noOCR, _ := flags.GetBool("no-ocr"); noOCR {
		c.OCR.Enabled = false
	}
	if skip, _ := flags.GetBool("no-categorize"); skip {
		c.Categorization.Enabled = false
	}
	if flags.Changed("rules") {
		c.Categorization.RulesFile, _ = flags.GetString("rules")
	}
	if flags.Changed("metrics-addr") {
		c.Observability.MetricsAddr, _ = flags.GetString("metrics-addr")
		c.Observability.MetricsEnabled = c.Observability.MetricsAddr != ""
	}
}

func setupLogging(o config.ObservabilityConfig) error {
	var level slog.Level
	switch o.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level: %s", o.LogLevel)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch o.LogFormat {
	case "text":
		handler = slog.NewTextHandler(os.Stderr, opts)
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	default:
		return fmt.Errorf("invalid log format: %s", o.LogFormat)
	}

	slog.SetDefault(slog.New(handler))
	return nil
}
