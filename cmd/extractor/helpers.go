package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement/export"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement/service"
	"github.com/FACorreiaa/statement-extractor/pkg/money"
)

func loadDependencies() (*Dependencies, error) {
	return InitDependencies(cfg, slog.Default())
}

// collectPDFs expands directories into the PDF files they contain, sorted by
// name. Plain file arguments are kept as given.
func collectPDFs(args []string, recursive bool) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to access %s: %w", arg, err)
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}

		var found []string
		err = filepath.WalkDir(arg, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != arg && !recursive {
					return filepath.SkipDir
				}
				return nil
			}
			if strings.EqualFold(filepath.Ext(path), ".pdf") {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", arg, err)
		}
		sort.Strings(found)
		paths = append(paths, found...)
	}
	return paths, nil
}

// exportFormat picks the format from an explicit flag, then the output file
// extension, then the configured default.
func exportFormat(flag, output, fallback string) (export.Format, error) {
	if flag != "" {
		return export.ParseFormat(flag)
	}
	if ext := strings.TrimPrefix(filepath.Ext(output), "."); ext != "" {
		if f, err := export.ParseFormat(ext); err == nil {
			return f, nil
		}
	}
	return export.ParseFormat(fallback)
}

func writeExportFile(path string, f export.Format, results []*statement.DocumentAnalysisResult) (int, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", path, err)
	}

	txs := service.Flatten(results)
	if err := export.Write(file, f, txs, results); err != nil {
		_ = file.Close()
		return 0, err
	}
	if err := file.Close(); err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return len(txs), nil
}

func printResult(w io.Writer, r *statement.DocumentAnalysisResult, showTransactions bool) {
	fmt.Fprintf(w, "File:         %s\n", r.File)
	if r.Failed() {
		fmt.Fprintf(w, "Error:        %s\n", r.Error)
	}
	fmt.Fprintf(w, "Type:         %s\n", r.DocumentType)
	if r.Institution != "" {
		fmt.Fprintf(w, "Institution:  %s\n", r.Institution)
	}
	fmt.Fprintf(w, "Method:       %s\n", r.ProcessingMethod)
	fmt.Fprintf(w, "Confidence:   %s\n", r.ConfidenceLevel)
	fmt.Fprintf(w, "Pages:        %d\n", r.PageCount)
	fmt.Fprintf(w, "Transactions: %d (%d debits %s, %d credits %s)\n",
		len(r.Transactions),
		r.DebitCount, money.Format(r.TotalDebits, money.DefaultCurrency),
		r.CreditCount, money.Format(r.TotalCredits, money.DefaultCurrency))
	if len(r.DroppedLines) > 0 {
		fmt.Fprintf(w, "Dropped:      %d candidate lines\n", len(r.DroppedLines))
	}
	for _, warning := range r.Warnings {
		fmt.Fprintf(w, "Warning:      %s\n", warning)
	}

	if !showTransactions || len(r.Transactions) == 0 {
		return
	}

	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tDESCRIPTION\tAMOUNT\tDIRECTION\tCATEGORY\tPAGE")
	for _, tx := range r.Transactions {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\n",
			tx.Date,
			truncate(tx.Description, 48),
			money.Format(tx.AbsAmount(), tx.Currency),
			tx.Direction,
			tx.Category,
			tx.Page)
	}
	_ = tw.Flush()
}

func printSummary(w io.Writer, results []*statement.DocumentAnalysisResult) {
	s := service.Summarize(results)

	fmt.Fprintf(w, "Documents:    %d (%d failed)\n", s.Documents, s.Failed)
	fmt.Fprintf(w, "Transactions: %d\n", s.Transactions)
	fmt.Fprintf(w, "Debits:       %s\n", money.Format(s.TotalDebits, money.DefaultCurrency))
	fmt.Fprintf(w, "Credits:      %s\n", money.Format(s.TotalCredits, money.DefaultCurrency))

	methods := make([]string, 0, len(s.ByMethod))
	for m := range s.ByMethod {
		methods = append(methods, string(m))
	}
	sort.Strings(methods)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "\nMETHOD\tDOCUMENTS")
	for _, m := range methods {
		fmt.Fprintf(tw, "%s\t%d\n", m, s.ByMethod[statement.ProcessingMethod(m)])
	}
	_ = tw.Flush()

	for _, r := range results {
		if r != nil && r.Failed() {
			fmt.Fprintf(w, "failed: %s: %s\n", filepath.Base(r.File), r.Error)
		}
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
