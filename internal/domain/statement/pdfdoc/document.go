// Package pdfdoc opens statement PDFs: the extractable text layer per page, document
// structure (page count, image objects) and page rasterization for OCR.
package pdfdoc

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
)

var (
	ErrUnreadableFile = errors.New("cannot read file")
	ErrUnreadablePDF  = errors.New("cannot open PDF")
	ErrEmptyDocument  = errors.New("document has no pages")
)

// Document is an opened PDF.
type Document struct {
	Path  string
	Name  string // base name, used for filename hints
	Data  []byte
	Pages []statement.Page

	// TextErr is set when the text layer could not be read. Pages then carry
	// empty text and every page is a candidate for OCR.
	TextErr error
	Info    *Info
}

// Open reads a PDF from disk. It fails only when neither the text layer reader nor
// the structure reader can make sense of the file.
func Open(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreadableFile, err)
	}
	return FromBytes(path, data)
}

// FromBytes opens a PDF already held in memory.
func FromBytes(path string, data []byte) (*Document, error) {
	doc := &Document{
		Path: path,
		Name: filepath.Base(path),
		Data: data,
	}

	pages, textErr := extractText(data)
	info, infoErr := Inspect(data)

	switch {
	case textErr != nil && infoErr != nil:
		return nil, fmt.Errorf("%w: %w", ErrUnreadablePDF, errors.Join(textErr, infoErr))
	case textErr != nil:
		doc.TextErr = textErr
		doc.Info = info
		doc.Pages = make([]statement.Page, info.PageCount)
		for i := range doc.Pages {
			doc.Pages[i] = statement.Page{Number: i + 1}
		}
	default:
		doc.Pages = pages
		doc.Info = info
	}

	if len(doc.Pages) == 0 {
		return nil, ErrEmptyDocument
	}
	return doc, nil
}

// PageCount returns the number of pages.
func (d *Document) PageCount() int {
	return len(d.Pages)
}

// SampleText concatenates the text of the first n pages.
func (d *Document) SampleText(n int) string {
	var b strings.Builder
	for i, p := range d.Pages {
		if i >= n {
			break
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(p.Text)
	}
	return b.String()
}

// HasImages reports whether page n (1-based) references image objects. Unknown
// when the structure reader failed, in which case it returns false.
func (d *Document) HasImages(n int) bool {
	if d.Info == nil {
		return false
	}
	return d.Info.ImagePages[n]
}
