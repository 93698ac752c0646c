// Package sniffer classifies a statement PDF by the density of its extractable text
// and fingerprints its content for duplicate detection.
package sniffer

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode/utf8"

	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
)

// Density cutoffs in characters per sampled page. Tuned by hand on a small set of
// statements; keep them overridable.
const (
	DefaultTextBasedChars = 500
	DefaultScannedChars   = 100
	DefaultSamplePages    = 3
	DefaultHybridPageText = 200
)

// Thresholds configures the classifier.
type Thresholds struct {
	TextBasedChars float64 // average above this is text_based
	ScannedChars   float64 // average below this is scanned_image
	SamplePages    int     // pages sampled from the start of the document
	HybridPageText int     // a page with more characters than this is read from its text layer
}

// DefaultThresholds returns the stock cutoffs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		TextBasedChars: DefaultTextBasedChars,
		ScannedChars:   DefaultScannedChars,
		SamplePages:    DefaultSamplePages,
		HybridPageText: DefaultHybridPageText,
	}
}

// Profile is the classification outcome.
type Profile struct {
	Type        statement.DocumentType
	AvgChars    float64
	Sampled     int
	SparsePages []int // pages that need OCR when the document is processed page by page
}

// Classifier is the document-type classifier.
type Classifier struct {
	thresholds Thresholds
}

func NewClassifier(t Thresholds) *Classifier {
	d := DefaultThresholds()
	if t.TextBasedChars <= 0 {
		t.TextBasedChars = d.TextBasedChars
	}
	if t.ScannedChars <= 0 {
		t.ScannedChars = d.ScannedChars
	}
	if t.SamplePages <= 0 {
		t.SamplePages = d.SamplePages
	}
	if t.HybridPageText <= 0 {
		t.HybridPageText = d.HybridPageText
	}
	return &Classifier{thresholds: t}
}

// Classify samples the first pages and averages their extractable characters.
// A text layer that could not be read at all classifies as mixed so the hybrid path
// can fall back to OCR page by page.
func (c *Classifier) Classify(pages []statement.Page, textErr error) Profile {
	p := Profile{SparsePages: c.sparsePages(pages)}

	if textErr != nil || len(pages) == 0 {
		p.Type = statement.DocumentMixed
		return p
	}

	n := min(len(pages), c.thresholds.SamplePages)
	total := 0
	for _, page := range pages[:n] {
		total += CharCount(page.Text)
	}
	p.Sampled = n
	p.AvgChars = float64(total) / float64(n)

	switch {
	case p.AvgChars > c.thresholds.TextBasedChars:
		p.Type = statement.DocumentTextBased
	case p.AvgChars < c.thresholds.ScannedChars:
		p.Type = statement.DocumentScannedImage
	default:
		p.Type = statement.DocumentMixed
	}
	return p
}

// UseTextLayer reports whether a page has enough text to skip OCR.
func (c *Classifier) UseTextLayer(page statement.Page) bool {
	return CharCount(page.Text) > c.thresholds.HybridPageText
}

func (c *Classifier) sparsePages(pages []statement.Page) []int {
	var sparse []int
	for _, p := range pages {
		if !c.UseTextLayer(p) {
			sparse = append(sparse, p.Number)
		}
	}
	return sparse
}

// CharCount counts the characters of the trimmed text.
func CharCount(text string) int {
	return utf8.RuneCountInString(strings.TrimSpace(text))
}

// Fingerprint returns the SHA256 of the file content.
func Fingerprint(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
