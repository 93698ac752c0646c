package main

import (
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func identifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "identify [files...]",
		Short: "Classify statements without extracting them",
		Long: `Report the document type and the institution format that would read each
statement. Nothing is extracted and OCR is never run.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runIdentify,
	}
}

func runIdentify(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	paths, err := collectPDFs(args, false)
	if err != nil {
		return err
	}

	deps, err := loadDependencies()
	if err != nil {
		return err
	}
	defer deps.Cleanup()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FILE\tTYPE\tINSTITUTION\tPAGES\tIMAGE PAGES\tAVG CHARS")
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		id, err := deps.Processor.Identify(ctx, path)
		if err != nil {
			fmt.Fprintf(w, "%s\terror: %v\t\t\t\t\n", filepath.Base(path), err)
			continue
		}
		institution := id.Institution
		if institution == "" {
			institution = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%.0f\n",
			filepath.Base(path), id.DocumentType, institution, id.Pages, id.ImagePages, id.AvgChars)
	}
	return w.Flush()
}
