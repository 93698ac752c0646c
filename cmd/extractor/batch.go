package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement/export"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement/service"
)

func batchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch [files or directories...]",
		Short: "Process many statements and export one combined file",
		Long: `Process every PDF given, or found in the given directories, concurrently.
The transactions of all documents are exported to a single file with the source
file recorded on every row. A failing document does not stop the batch.

Examples:
  extractor batch statements/
  extractor batch statements/ --recursive --format xlsx
  extractor batch jan.pdf feb.pdf --output 2024-q1.csv`,
		Args: cobra.MinimumNArgs(1),
		RunE: runBatch,
	}

	cmd.Flags().BoolP("recursive", "r", false, "descend into subdirectories")
	cmd.Flags().StringP("output", "o", "", "export file (default: <export dir>/transactions-<timestamp>.<format>)")
	cmd.Flags().String("format", "", "export format (csv, xlsx)")
	cmd.Flags().Bool("no-progress", false, "hide the progress bar")

	return cmd
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	recursive, _ := cmd.Flags().GetBool("recursive")
	paths, err := collectPDFs(args, recursive)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no PDF files found")
	}

	output, _ := cmd.Flags().GetString("output")
	flag, _ := cmd.Flags().GetString("format")
	format, err := exportFormat(flag, output, cfg.Export.Format)
	if err != nil {
		return err
	}
	if output == "" {
		stamp := time.Now().UTC().Format("20060102-150405")
		output = filepath.Join(cfg.Export.Dir, export.FileName("transactions", stamp, format))
	}

	deps, err := loadDependencies()
	if err != nil {
		return err
	}
	defer deps.Cleanup()

	var onProgress service.ProgressFunc
	noProgress, _ := cmd.Flags().GetBool("no-progress")
	if cfg.Batch.Progress && !noProgress {
		onProgress = progressReporter(os.Stderr, len(paths))
	}

	results := deps.Processor.ProcessBatch(ctx, paths, onProgress)

	n, err := writeExportFile(output, format, results)
	if err != nil {
		return err
	}

	printSummary(cmd.OutOrStdout(), results)
	fmt.Fprintf(cmd.OutOrStdout(), "\nwrote %d transactions to %s\n", n, output)

	return ctx.Err()
}

func progressReporter(w io.Writer, total int) service.ProgressFunc {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Processing statements...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(w); err != nil {
				slog.Warn("failed to write newline after progress bar", "error", err)
			}
		}),
	)

	return func(_, _ int, r *statement.DocumentAnalysisResult) {
		if r.Failed() {
			slog.Debug("document failed", "file", filepath.Base(r.File), "error", r.Error)
		}
		if err := bar.Add(1); err != nil {
			slog.Warn("failed to update progress bar", "error", err)
		}
	}
}
