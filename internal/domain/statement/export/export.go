// Package export writes flattened batch results to CSV and XLSX.
package export

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement/service"
	"github.com/FACorreiaa/statement-extractor/pkg/money"
)

// Format is an output file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

var ErrUnknownFormat = errors.New("unknown export format")

// ParseFormat accepts "csv" or "xlsx", case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatXLSX:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Extension returns the file extension including the dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

// Write writes txs in format f. Results feed the XLSX summary sheet.
func Write(w io.Writer, f Format, txs []service.FlatTransaction, results []*statement.DocumentAnalysisResult) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, txs)
	case FormatXLSX:
		return WriteXLSX(w, txs, results)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// Row is the CSV shape of one flattened transaction.
type Row struct {
	SourceFile         string `csv:"source_file"`
	Institution        string `csv:"institution"`
	ProcessingMethod   string `csv:"processing_method"`
	DocumentConfidence string `csv:"document_confidence"`
	Page               int    `csv:"page"`
	Date               string `csv:"date"`
	PostingDate        string `csv:"posting_date"`
	Description        string `csv:"description"`
	Amount             string `csv:"amount"`
	Direction          string `csv:"direction"`
	IsSpending         bool   `csv:"is_spending"`
	Balance            string `csv:"balance"`
	Currency           string `csv:"currency"`
	ExchangeInfo       string `csv:"exchange_info"`
	Reference          string `csv:"reference"`
	Location           string `csv:"location"`
	Reward             string `csv:"reward"`
	Note               string `csv:"note"`
	ExtractionMethod   string `csv:"extraction_method"`
	Confidence         string `csv:"confidence"`
	ConfidenceLevel    string `csv:"confidence_level"`
	Category           string `csv:"category"`
	CategoryConfidence string `csv:"category_confidence"`
	MatchedRule        string `csv:"matched_rule"`
}

// NewRow converts a flattened transaction to its CSV shape.
func NewRow(tx service.FlatTransaction) Row {
	r := Row{
		SourceFile:         tx.SourceFile,
		Institution:        tx.Institution,
		ProcessingMethod:   string(tx.ProcessingMethod),
		DocumentConfidence: string(tx.DocumentLevel),
		Page:               tx.Page,
		Date:               tx.Date,
		PostingDate:        tx.PostingDate,
		Description:        tx.Description,
		Amount:             tx.Amount.StringFixed(2),
		Direction:          string(tx.Direction),
		IsSpending:         tx.IsSpending,
		Balance:            optional(tx.Balance),
		Currency:           currency(tx.TransactionRecord),
		ExchangeInfo:       tx.ExchangeInfo,
		Reference:          tx.Reference,
		Location:           tx.Location,
		Reward:             optional(tx.Reward),
		Note:               tx.Note,
		ExtractionMethod:   string(tx.ExtractionMethod),
		Confidence:         fmt.Sprintf("%.2f", tx.Confidence),
		ConfidenceLevel:    string(tx.ConfidenceLevel),
		Category:           tx.Category,
		MatchedRule:        tx.MatchedRule,
	}
	if tx.Category != "" {
		r.CategoryConfidence = fmt.Sprintf("%.2f", tx.CategoryConfidence)
	}
	return r
}

// WriteCSV writes a header row and one row per transaction.
func WriteCSV(w io.Writer, txs []service.FlatTransaction) error {
	rows := make([]*Row, len(txs))
	for i, tx := range txs {
		r := NewRow(tx)
		rows[i] = &r
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// FileName builds an export file name for a batch, e.g. "transactions-20240315-101500.csv".
func FileName(prefix, stamp string, f Format) string {
	return filepath.Clean(fmt.Sprintf("%s-%s%s", prefix, stamp, f.Extension()))
}

func optional(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.StringFixed(2)
}

func currency(tx statement.TransactionRecord) string {
	if tx.Currency != "" {
		return tx.Currency
	}
	return money.DefaultCurrency
}
