package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement/service"
	"github.com/FACorreiaa/statement-extractor/pkg/money"
)

const (
	TransactionsSheet = "Transactions"
	SummarySheet      = "Summary"
)

var transactionHeader = []any{
	"source_file", "institution", "processing_method", "page", "date", "posting_date",
	"description", "amount", "direction", "is_spending", "balance", "currency",
	"reference", "confidence", "confidence_level", "category",
}

var summaryHeader = []any{
	"file", "document_type", "institution", "processing_method", "confidence_level",
	"pages", "transactions", "dropped_lines", "debits", "credits", "total_debits",
	"total_credits", "warnings", "error",
}

// WriteXLSX writes a workbook with every transaction on one sheet and one row per
// document on a summary sheet.
func WriteXLSX(w io.Writer, txs []service.FlatTransaction, results []*statement.DocumentAnalysisResult) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", TransactionsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	amountFmt := "#,##0.00"
	amounts, err := f.NewStyle(&excelize.Style{CustomNumFmt: &amountFmt})
	if err != nil {
		return err
	}

	if err := writeTransactions(f, txs, bold, amounts); err != nil {
		return err
	}
	if err := writeSummary(f, results, bold); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func writeTransactions(f *excelize.File, txs []service.FlatTransaction, header, amounts int) error {
	if err := writeHeader(f, TransactionsSheet, transactionHeader, header); err != nil {
		return err
	}

	for i, tx := range txs {
		var balance any
		if tx.Balance != nil {
			balance = tx.Balance.InexactFloat64()
		}
		row := []any{
			tx.SourceFile,
			tx.Institution,
			string(tx.ProcessingMethod),
			tx.Page,
			tx.Date,
			tx.PostingDate,
			tx.Description,
			tx.Amount.InexactFloat64(),
			string(tx.Direction),
			tx.IsSpending,
			balance,
			currency(tx.TransactionRecord),
			tx.Reference,
			tx.Confidence,
			string(tx.ConfidenceLevel),
			tx.Category,
		}
		if err := setRow(f, TransactionsSheet, i+2, row); err != nil {
			return err
		}
	}

	if len(txs) > 0 {
		last := len(txs) + 1
		if err := f.SetCellStyle(TransactionsSheet, "H2", fmt.Sprintf("H%d", last), amounts); err != nil {
			return err
		}
		if err := f.SetCellStyle(TransactionsSheet, "K2", fmt.Sprintf("K%d", last), amounts); err != nil {
			return err
		}
	}
	return f.SetColWidth(TransactionsSheet, "G", "G", 48)
}

func writeSummary(f *excelize.File, results []*statement.DocumentAnalysisResult, header int) error {
	if err := writeHeader(f, SummarySheet, summaryHeader, header); err != nil {
		return err
	}

	row := 2
	for _, r := range results {
		if r == nil {
			continue
		}
		values := []any{
			r.File,
			string(r.DocumentType),
			r.Institution,
			string(r.ProcessingMethod),
			string(r.ConfidenceLevel),
			r.PageCount,
			len(r.Transactions),
			len(r.DroppedLines),
			r.DebitCount,
			r.CreditCount,
			money.Format(r.TotalDebits, money.DefaultCurrency),
			money.Format(r.TotalCredits, money.DefaultCurrency),
			strings.Join(r.Warnings, "; "),
			r.Error,
		}
		if err := setRow(f, SummarySheet, row, values); err != nil {
			return err
		}
		row++
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, header []any, style int) error {
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}
	if err := f.SetRowStyle(sheet, 1, 1, style); err != nil {
		return err
	}
	end, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.AutoFilter(sheet, "A1:"+end, nil); err != nil {
		return err
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("%s row %d: %w", sheet, row, err)
	}
	return nil
}
