// Package ocr reads scanned statement pages: it enhances the rendered page image,
// runs an OCR engine over it, keeps the confident text segments and parses them with
// the generic line grammar at reduced confidence.
package ocr

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"image"
	"io"
	"os/exec"
	"sort"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
)

var (
	ErrEngineUnavailable = errors.New("ocr engine not available")
	// ErrNoPageRecognized means every requested page failed to render or recognize.
	ErrNoPageRecognized = errors.New("ocr failed on every page")
)

// Segment is one recognized text run with its bounding box and a 0.0-1.0
// confidence.
type Segment struct {
	Box        image.Rectangle
	Text       string
	Confidence float64
}

// Engine recognizes text in a page image.
type Engine interface {
	Available() bool
	Recognize(ctx context.Context, imagePath string) ([]Segment, error)
}

// TesseractEngine shells out to the tesseract CLI and reads its TSV output.
type TesseractEngine struct {
	Binary   string
	Language string
	PSM      int // page segmentation mode; 6 assumes a uniform block of text
}

func NewTesseractEngine(binary, language string) *TesseractEngine {
	if binary == "" {
		binary = "tesseract"
	}
	if language == "" {
		language = "eng"
	}
	return &TesseractEngine{Binary: binary, Language: language, PSM: 6}
}

func (t *TesseractEngine) Available() bool {
	_, err := exec.LookPath(t.Binary)
	return err == nil
}

func (t *TesseractEngine) Recognize(ctx context.Context, imagePath string) ([]Segment, error) {
	if !t.Available() {
		return nil, ErrEngineUnavailable
	}

	cmd := exec.CommandContext(ctx, t.Binary,
		imagePath,
		"stdout",
		"-l", t.Language,
		"--psm", strconv.Itoa(t.PSM),
		"tsv")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("tesseract: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return ParseTSV(bytes.NewReader(out))
}

// tsvRow is one row of tesseract's TSV output. Word rows have level 5.
type tsvRow struct {
	Level  int     `csv:"level"`
	Page   int     `csv:"page_num"`
	Block  int     `csv:"block_num"`
	Par    int     `csv:"par_num"`
	Line   int     `csv:"line_num"`
	Word   int     `csv:"word_num"`
	Left   int     `csv:"left"`
	Top    int     `csv:"top"`
	Width  int     `csv:"width"`
	Height int     `csv:"height"`
	Conf   float64 `csv:"conf"`
	Text   string  `csv:"text"`
}

const wordLevel = 5

type lineKey struct{ page, block, par, line int }

// ParseTSV groups tesseract word rows into one segment per text line. The line's
// confidence is the mean of its words' confidences.
func ParseTSV(r io.Reader) ([]Segment, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	var rows []tsvRow
	if err := gocsv.UnmarshalCSV(reader, &rows); err != nil {
		return nil, fmt.Errorf("parse tesseract tsv: %w", err)
	}

	type acc struct {
		words []string
		conf  float64
		box   image.Rectangle
		order int
	}
	lines := map[lineKey]*acc{}
	for _, row := range rows {
		text := strings.TrimSpace(row.Text)
		if row.Level != wordLevel || row.Conf < 0 || text == "" {
			continue
		}
		key := lineKey{row.Page, row.Block, row.Par, row.Line}
		box := image.Rect(row.Left, row.Top, row.Left+row.Width, row.Top+row.Height)
		a, ok := lines[key]
		if !ok {
			a = &acc{box: box, order: len(lines)}
			lines[key] = a
		}
		a.words = append(a.words, text)
		a.conf += row.Conf
		a.box = a.box.Union(box)
	}

	accs := make([]*acc, 0, len(lines))
	for _, a := range lines {
		accs = append(accs, a)
	}
	sort.Slice(accs, func(i, j int) bool { return accs[i].order < accs[j].order })

	segments := make([]Segment, 0, len(accs))
	for _, a := range accs {
		segments = append(segments, Segment{
			Box:        a.box,
			Text:       strings.Join(a.words, " "),
			Confidence: a.conf / float64(len(a.words)) / 100,
		})
	}
	return segments, nil
}
