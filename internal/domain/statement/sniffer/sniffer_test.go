package sniffer

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
)

func pageWith(n, chars int) statement.Page {
	return statement.Page{Number: n, Text: strings.Repeat("x", chars)}
}

func TestClassifier_Classify(t *testing.T) {
	c := NewClassifier(DefaultThresholds())

	tests := []struct {
		name    string
		pages   []statement.Page
		textErr error
		want    statement.DocumentType
		avg     float64
	}{
		{
			name:  "dense text",
			pages: []statement.Page{pageWith(1, 900), pageWith(2, 700), pageWith(3, 600)},
			want:  statement.DocumentTextBased,
			avg:   (900 + 700 + 600) / 3.0,
		},
		{
			name:  "almost empty",
			pages: []statement.Page{pageWith(1, 20), pageWith(2, 0)},
			want:  statement.DocumentScannedImage,
			avg:   10,
		},
		{
			name:  "in between",
			pages: []statement.Page{pageWith(1, 300)},
			want:  statement.DocumentMixed,
			avg:   300,
		},
		{
			name:  "only first three pages are sampled",
			pages: []statement.Page{pageWith(1, 0), pageWith(2, 0), pageWith(3, 0), pageWith(4, 5000)},
			want:  statement.DocumentScannedImage,
			avg:   0,
		},
		{
			name:    "unreadable text layer",
			pages:   []statement.Page{pageWith(1, 0)},
			textErr: errors.New("boom"),
			want:    statement.DocumentMixed,
		},
		{
			name: "no pages",
			want: statement.DocumentMixed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := c.Classify(tt.pages, tt.textErr)
			assert.Equal(t, tt.want, p.Type)
			assert.InDelta(t, tt.avg, p.AvgChars, 0.001)
		})
	}
}

func TestClassifier_ExactCutoffsAreMixed(t *testing.T) {
	c := NewClassifier(DefaultThresholds())
	assert.Equal(t, statement.DocumentMixed, c.Classify([]statement.Page{pageWith(1, 500)}, nil).Type)
	assert.Equal(t, statement.DocumentMixed, c.Classify([]statement.Page{pageWith(1, 100)}, nil).Type)
}

func TestClassifier_SparsePages(t *testing.T) {
	c := NewClassifier(Thresholds{})
	p := c.Classify([]statement.Page{pageWith(1, 600), pageWith(2, 150), pageWith(3, 201)}, nil)
	assert.Equal(t, []int{2}, p.SparsePages)
	assert.True(t, c.UseTextLayer(pageWith(3, 201)))
	assert.False(t, c.UseTextLayer(pageWith(3, 200)))
}

func TestCharCount(t *testing.T) {
	assert.Equal(t, 15, CharCount("  Date  Desc\n\tAmt\n"))
	assert.Equal(t, 0, CharCount(" \n\t "))
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint([]byte("statement"))
	assert.Len(t, a, 64)
	assert.Equal(t, a, Fingerprint([]byte("statement")))
	assert.NotEqual(t, a, Fingerprint([]byte("statement2")))
}
