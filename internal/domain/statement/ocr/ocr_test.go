package ocr

import (
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement/pdfdoc"
)

type fakeEngine struct {
	available bool
	segments  []Segment
	err       error
	seen      []string
}

func (f *fakeEngine) Available() bool { return f.available }

func (f *fakeEngine) Recognize(_ context.Context, imagePath string) ([]Segment, error) {
	f.seen = append(f.seen, imagePath)
	return f.segments, f.err
}

type fakeRasterizer struct {
	dir      string
	failPage int
	rendered int
	cleaned  int
}

func (f *fakeRasterizer) Available() bool { return true }

func (f *fakeRasterizer) Render(_ context.Context, _ string, page, _ int) (string, func(), error) {
	if page == f.failPage {
		return "", func() {}, errors.New("render failed")
	}
	path := filepath.Join(f.dir, "page.png")
	if err := imaging.Save(imaging.New(8, 8, color.White), path); err != nil {
		return "", func() {}, err
	}
	f.rendered++
	return path, func() { f.cleaned++; _ = os.Remove(path) }, nil
}

func writeImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scan.png")
	require.NoError(t, imaging.Save(imaging.New(16, 16, color.White), path))
	return path
}

func TestParseSegments(t *testing.T) {
	e := NewExtractor(&fakeEngine{available: true}, DefaultConfig(), nil)
	out := e.ParseSegments([]Segment{
		{Text: "01/15/2024 GROCERY STORE $45.67", Confidence: 0.9},
		{Text: "01/16/2024 BLURRY LINE $4.50", Confidence: 0.5},
		{Text: "$1.0", Confidence: 0.99},
		{Text: "Thank you for banking with us", Confidence: 0.95},
		{Text: "SERVICE FEE $12.00", Confidence: 0.9},
	}, 2)

	require.Len(t, out.Records, 1)
	r := out.Records[0]
	assert.Equal(t, "01-15", r.Date)
	assert.Equal(t, "GROCERY STORE", r.Description)
	assert.Equal(t, "45.67", r.Amount.StringFixed(2))
	assert.Equal(t, 2, r.Page)
	assert.InDelta(t, 0.72, r.Confidence, 1e-9)
	assert.Equal(t, statement.MethodOCRLine, r.ExtractionMethod)
	assert.Equal(t, statement.ConfidenceMedium, r.ConfidenceLevel)

	require.Len(t, out.Dropped, 1)
	assert.Equal(t, statement.DropNoDate, out.Dropped[0].Reason)
}

func TestParseSegments_SkipsBalanceRows(t *testing.T) {
	e := NewExtractor(&fakeEngine{available: true}, DefaultConfig(), nil)
	out := e.ParseSegments([]Segment{
		{Text: "01/01/2024 Opening Balance $1,000.00", Confidence: 0.95},
		{Text: "01/15/2024 GROCERY STORE $45.67", Confidence: 0.9},
		{Text: "01/31/2024 Closing Balance $900.00", Confidence: 0.95},
		{Text: "Previous statement balance $412.00", Confidence: 0.95},
		{Text: "01/31/2024 Balance forward $900.00", Confidence: 0.95},
	}, 1)

	require.Len(t, out.Records, 1)
	assert.Equal(t, "GROCERY STORE", out.Records[0].Description)
	assert.Empty(t, out.Dropped, "balance rows are skipped, not dropped")
}

func TestExtractPage_Unavailable(t *testing.T) {
	for _, e := range []*Extractor{
		NewExtractor(nil, DefaultConfig(), nil),
		NewExtractor(&fakeEngine{available: false}, DefaultConfig(), nil),
	} {
		_, err := e.ExtractPage(context.Background(), "missing.png", 1)
		assert.ErrorIs(t, err, ErrEngineUnavailable)
	}
}

func TestExtractPage_RemovesEnhancedCopy(t *testing.T) {
	engine := &fakeEngine{available: true, segments: []Segment{
		{Text: "3 Mar COFFEE SHOP $4.50", Confidence: 1},
	}}
	tmp := t.TempDir()
	e := NewExtractor(engine, Config{TmpDir: tmp}, nil)

	out, err := e.ExtractPage(context.Background(), writeImage(t), 1)
	require.NoError(t, err)
	require.Len(t, out.Records, 1)
	assert.Equal(t, "03-03", out.Records[0].Date)

	require.Len(t, engine.seen, 1)
	assert.True(t, strings.HasPrefix(engine.seen[0], tmp))
	_, statErr := os.Stat(engine.seen[0])
	assert.True(t, os.IsNotExist(statErr), "enhanced image must be removed")
}

func TestExtractPage_EngineError(t *testing.T) {
	engine := &fakeEngine{available: true, err: errors.New("boom")}
	e := NewExtractor(engine, Config{TmpDir: t.TempDir()}, nil)

	_, err := e.ExtractPage(context.Background(), writeImage(t), 4)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page 4")
}

func TestExtractPages_SkipsFailedPagesAndCleansUp(t *testing.T) {
	engine := &fakeEngine{available: true, segments: []Segment{
		{Text: "01/15/2024 PHARMACY $9.99", Confidence: 0.9},
	}}
	r := &fakeRasterizer{dir: t.TempDir(), failPage: 2}
	e := NewExtractor(engine, Config{TmpDir: t.TempDir()}, nil)

	out, err := e.ExtractPages(context.Background(), r, "scan.pdf", []int{1, 2, 3})
	require.NoError(t, err)
	assert.Len(t, out.Records, 2)
	assert.Equal(t, 1, out.Records[0].Page)
	assert.Equal(t, 3, out.Records[1].Page)
	assert.Equal(t, r.rendered, r.cleaned)

	require.Len(t, out.Warnings, 1)
	assert.Contains(t, out.Warnings[0], "page 2")
	assert.Contains(t, out.Warnings[0], "render failed")
}

func TestExtractPages_EveryPageFails(t *testing.T) {
	tests := []struct {
		name   string
		engine *fakeEngine
		raster *fakeRasterizer
		pages  []int
	}{
		{
			name:   "engine errors",
			engine: &fakeEngine{available: true, err: errors.New("tesseract: exit status 1")},
			raster: &fakeRasterizer{dir: t.TempDir()},
			pages:  []int{1, 2},
		},
		{
			name:   "rasterizer errors",
			engine: &fakeEngine{available: true},
			raster: &fakeRasterizer{dir: t.TempDir(), failPage: 1},
			pages:  []int{1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewExtractor(tt.engine, Config{TmpDir: t.TempDir()}, nil)

			out, err := e.ExtractPages(context.Background(), tt.raster, "scan.pdf", tt.pages)
			require.ErrorIs(t, err, ErrNoPageRecognized)
			require.NotNil(t, out)
			assert.Empty(t, out.Records)
			assert.Len(t, out.Warnings, len(tt.pages))
		})
	}
}

func TestExtractPages_RequiresRasterizer(t *testing.T) {
	e := NewExtractor(&fakeEngine{available: true}, DefaultConfig(), nil)
	_, err := e.ExtractPages(context.Background(), nil, "scan.pdf", []int{1})
	assert.ErrorIs(t, err, pdfdoc.ErrRasterizerUnavailable)
}

func TestExtractPages_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e := NewExtractor(&fakeEngine{available: true}, DefaultConfig(), nil)
	_, err := e.ExtractPages(ctx, &fakeRasterizer{dir: t.TempDir()}, "scan.pdf", []int{1})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseTSV(t *testing.T) {
	tsv := strings.Join([]string{
		"level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext",
		"1\t1\t0\t0\t0\t0\t0\t0\t2550\t3300\t-1\t",
		"4\t1\t1\t1\t1\t0\t100\t200\t600\t30\t-1\t",
		"5\t1\t1\t1\t1\t1\t100\t200\t120\t30\t96.5\t01/15/2024",
		"5\t1\t1\t1\t1\t2\t240\t200\t200\t30\t91.5\tGROCERY",
		"5\t1\t1\t1\t1\t3\t460\t200\t90\t30\t90.0\t$45.67",
		"5\t1\t1\t1\t2\t1\t100\t240\t80\t30\t40.0\tnoise",
		"5\t1\t1\t1\t2\t2\t200\t240\t10\t30\t95.0\t ",
	}, "\n") + "\n"

	segments, err := ParseTSV(strings.NewReader(tsv))
	require.NoError(t, err)
	require.Len(t, segments, 2)

	assert.Equal(t, "01/15/2024 GROCERY $45.67", segments[0].Text)
	assert.InDelta(t, 0.9266, segments[0].Confidence, 1e-3)
	assert.Equal(t, image.Rect(100, 200, 550, 230), segments[0].Box)

	assert.Equal(t, "noise", segments[1].Text)
	assert.InDelta(t, 0.40, segments[1].Confidence, 1e-9)
}

func TestPreprocess_RemovesSpeckle(t *testing.T) {
	img := imaging.New(5, 5, color.White)
	img.Set(2, 2, color.Black)

	out := Preprocess(img)
	require.Equal(t, img.Bounds(), out.Bounds())

	r, g, b, _ := out.At(2, 2).RGBA()
	assert.Equal(t, r, g)
	assert.Equal(t, g, b)
	assert.Greater(t, r, uint32(0xf000), "an isolated dark pixel is filtered out")
}

func TestMedianFilter(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 3, 3))
	values := []uint8{10, 20, 30, 40, 250, 60, 70, 80, 90}
	for i, v := range values {
		src.SetNRGBA(i%3, i/3, color.NRGBA{R: v, G: v, B: v, A: 255})
	}

	out := medianFilter(src)
	assert.Equal(t, uint8(60), out.NRGBAAt(1, 1).R)
	assert.Equal(t, uint8(20), out.NRGBAAt(0, 0).R)
}
