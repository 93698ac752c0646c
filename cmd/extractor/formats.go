package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement/classifier"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement/institution"
)

func formatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List the supported institution formats",
		Long: `List the dedicated statement layouts in the order they are tried. The first
format that claims a document reads it.`,
		Args: cobra.NoArgs,
		RunE: runFormats,
	}
}

func runFormats(cmd *cobra.Command, _ []string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tFORMAT\tMETHOD\tACCOUNT TYPE")
	for i, f := range institution.DefaultRegistry().Formats() {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n",
			i+1, f.Name(), statement.InstitutionMethod(f.Name()), classifier.AccountTypeOf(f.Name()))
	}
	return w.Flush()
}
