package pdfdoc

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
)

// wordGap is the horizontal gap, as a fraction of the font size, above which two
// text runs on the same row are separated by a space.
const wordGap = 0.25

// extractText reads the text layer page by page. The reader panics on some
// malformed files, so the panic is turned into an error.
func extractText(data []byte) (pages []statement.Page, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("text layer: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("text layer: %w", err)
	}

	total := reader.NumPage()
	pages = make([]statement.Page, 0, total)
	for i := 1; i <= total; i++ {
		page := reader.Page(i)
		p := statement.Page{Number: i}
		if !page.V.IsNull() {
			p.Text = pageText(page)
		}
		pages = append(pages, p)
	}
	return pages, nil
}

func pageText(page pdf.Page) string {
	rows, err := page.GetTextByRow()
	if err != nil {
		return ""
	}

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		if line := joinRow(row.Content); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// joinRow rebuilds one physical line from positioned text runs.
func joinRow(words pdf.TextHorizontal) string {
	if len(words) == 0 {
		return ""
	}
	sorted := make([]pdf.Text, len(words))
	copy(sorted, words)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].X < sorted[j].X })

	var b strings.Builder
	prevEnd := 0.0
	for i, w := range sorted {
		if i > 0 {
			gap := w.X - prevEnd
			threshold := w.FontSize * wordGap
			if threshold <= 0 {
				threshold = 1
			}
			if gap > threshold && !strings.HasSuffix(b.String(), " ") && !strings.HasPrefix(w.S, " ") {
				b.WriteByte(' ')
			}
		}
		b.WriteString(w.S)
		prevEnd = w.X + w.W
	}
	return strings.TrimSpace(b.String())
}
