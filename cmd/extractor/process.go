package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
)

func processCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process [file]",
		Short: "Extract transactions from one statement",
		Long: `Process a single statement PDF and print what was extracted.

Examples:
  extractor process statement.pdf
  extractor process statement.pdf --transactions
  extractor process statement.pdf --output out/statement.xlsx`,
		Args: cobra.ExactArgs(1),
		RunE: runProcess,
	}

	cmd.Flags().BoolP("transactions", "t", false, "print every extracted transaction")
	cmd.Flags().StringP("output", "o", "", "write the transactions to this file")
	cmd.Flags().String("format", "", "export format (csv, xlsx); defaults to the output extension")

	return cmd
}

func runProcess(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	deps, err := loadDependencies()
	if err != nil {
		return err
	}
	defer deps.Cleanup()

	result := deps.Processor.ProcessDocument(ctx, args[0])

	showTransactions, _ := cmd.Flags().GetBool("transactions")
	printResult(cmd.OutOrStdout(), result, showTransactions)

	if output, _ := cmd.Flags().GetString("output"); output != "" && !result.Failed() {
		flag, _ := cmd.Flags().GetString("format")
		format, err := exportFormat(flag, output, cfg.Export.Format)
		if err != nil {
			return err
		}
		n, err := writeExportFile(output, format, []*statement.DocumentAnalysisResult{result})
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "wrote %d transactions to %s\n", n, output)
	}

	if result.Failed() {
		return fmt.Errorf("processing %s: %w", args[0], result.Err())
	}
	return nil
}
