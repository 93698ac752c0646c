package pdfdoc

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
)

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.pdf"))
	assert.ErrorIs(t, err, ErrUnreadableFile)
}

func TestFromBytes_Garbage(t *testing.T) {
	_, err := FromBytes("junk.pdf", []byte("this is not a pdf"))
	assert.ErrorIs(t, err, ErrUnreadablePDF)
}

func TestDocument_SampleText(t *testing.T) {
	doc := &Document{Pages: []statement.Page{
		{Number: 1, Text: "one"},
		{Number: 2, Text: "two"},
		{Number: 3, Text: "three"},
		{Number: 4, Text: "four"},
	}}

	assert.Equal(t, "one\ntwo\nthree", doc.SampleText(3))
	assert.Equal(t, "one", doc.SampleText(1))
	assert.Equal(t, 4, doc.PageCount())
}

func TestDocument_HasImages(t *testing.T) {
	doc := &Document{}
	assert.False(t, doc.HasImages(1))

	doc.Info = &Info{PageCount: 2, ImagePages: map[int]bool{2: true}}
	assert.False(t, doc.HasImages(1))
	assert.True(t, doc.HasImages(2))
}

func TestJoinRow(t *testing.T) {
	tests := []struct {
		name  string
		words pdf.TextHorizontal
		want  string
	}{
		{
			name:  "empty",
			words: nil,
			want:  "",
		},
		{
			name: "glyphs without gaps join",
			words: pdf.TextHorizontal{
				{S: "N", X: 10, W: 5, FontSize: 10},
				{S: "o", X: 15, W: 5, FontSize: 10},
				{S: "v", X: 20, W: 5, FontSize: 10},
			},
			want: "Nov",
		},
		{
			name: "wide gap becomes space and order follows x",
			words: pdf.TextHorizontal{
				{S: "45.00", X: 200, W: 30, FontSize: 10},
				{S: "COFFEE", X: 10, W: 40, FontSize: 10},
			},
			want: "COFFEE 45.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, joinRow(tt.words))
		})
	}
}

func TestPdftoppm_Unavailable(t *testing.T) {
	r := NewPdftoppm("definitely-not-a-real-pdftoppm")
	assert.False(t, r.Available())

	_, cleanup, err := r.Render(context.Background(), "x.pdf", 1, DefaultDPI)
	require.ErrorIs(t, err, ErrRasterizerUnavailable)
	cleanup()
}
