package statement

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DocumentType is the outcome of text-density classification.
type DocumentType string

const (
	DocumentTextBased    DocumentType = "text_based"
	DocumentScannedImage DocumentType = "scanned_image"
	DocumentMixed        DocumentType = "mixed"
)

// ProcessingMethod names the path that produced a result.
type ProcessingMethod string

const (
	ProcessingGenericText  ProcessingMethod = "generic_text"
	ProcessingOCR          ProcessingMethod = "ocr"
	ProcessingHybrid       ProcessingMethod = "hybrid"
	ProcessingUnidentified ProcessingMethod = "unidentified"
)

// InstitutionMethod returns the processing method for a dedicated format,
// e.g. "TD Credit Card" becomes "td_credit_card".
func InstitutionMethod(name string) ProcessingMethod {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.Join(strings.Fields(slug), "_")
	return ProcessingMethod(slug)
}

// DocumentAnalysisResult is the envelope returned for one processed file.
// It is built once per document and not modified after it is returned.
type DocumentAnalysisResult struct {
	ID               uuid.UUID
	File             string
	DocumentType     DocumentType
	Institution      string
	ProcessingMethod ProcessingMethod
	ConfidenceLevel  ConfidenceLevel
	Transactions     []TransactionRecord
	DroppedLines     []DroppedLine
	PageCount        int
	Fingerprint      string
	Warnings         []string
	Error            string

	DebitCount   int
	CreditCount  int
	TotalDebits  decimal.Decimal
	TotalCredits decimal.Decimal

	ProcessedAt time.Time
	Duration    time.Duration

	err error
}

// NewResult starts an empty result for a file.
func NewResult(file string) *DocumentAnalysisResult {
	return &DocumentAnalysisResult{
		ID:               uuid.New(),
		File:             file,
		ProcessingMethod: ProcessingUnidentified,
		ConfidenceLevel:  ConfidenceLow,
		ProcessedAt:      time.Now(),
	}
}

// Fail marks the result as an unrecoverable document error.
func (r *DocumentAnalysisResult) Fail(err error) {
	r.err = err
	r.Error = err.Error()
	r.Transactions = nil
	r.ConfidenceLevel = ConfidenceLow
}

// Err returns the typed error behind Error, if any.
func (r *DocumentAnalysisResult) Err() error {
	if r.err == nil && r.Error != "" {
		return errors.New(r.Error)
	}
	return r.err
}

// Failed reports whether extraction could not proceed.
func (r *DocumentAnalysisResult) Failed() bool {
	return r.Error != ""
}

// Warn attaches a non-fatal note.
func (r *DocumentAnalysisResult) Warn(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// Finalize computes the summary counters and the document confidence level.
// dedicated reports whether an institution format produced the records.
func (r *DocumentAnalysisResult) Finalize(dedicated bool) {
	r.DebitCount, r.CreditCount = 0, 0
	r.TotalDebits, r.TotalCredits = decimal.Zero, decimal.Zero
	for _, tx := range r.Transactions {
		switch tx.Direction {
		case DirectionDebit:
			r.DebitCount++
			r.TotalDebits = r.TotalDebits.Add(tx.AbsAmount())
		case DirectionCredit:
			r.CreditCount++
			r.TotalCredits = r.TotalCredits.Add(tx.AbsAmount())
		}
	}
	r.ConfidenceLevel = DocumentConfidence(r.Transactions, len(r.DroppedLines), dedicated)
}

// DocumentConfidence derives the document level from the per-record scores, whether a
// dedicated format matched, and how many candidate lines were dropped.
func DocumentConfidence(records []TransactionRecord, dropped int, dedicated bool) ConfidenceLevel {
	if len(records) == 0 {
		return ConfidenceLow
	}

	var sum float64
	for _, r := range records {
		sum += r.Confidence
	}
	mean := sum / float64(len(records))

	level := ConfidenceLow
	switch {
	case dedicated && mean >= 0.85:
		level = ConfidenceHigh
	case mean >= 0.7:
		level = ConfidenceMedium
	}

	if dropped > len(records) {
		level = level.downgrade()
	}
	return level
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(text, "\n")
}
