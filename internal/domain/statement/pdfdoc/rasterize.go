package pdfdoc

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
)

// DefaultDPI is the rasterization resolution used for OCR.
const DefaultDPI = 300

var ErrRasterizerUnavailable = errors.New("pdftoppm not found")

// Rasterizer renders a single page to an image file.
type Rasterizer interface {
	// Render writes page (1-based) of the PDF at path to a PNG and returns its path
	// and a cleanup func that removes it. Cleanup is safe to call more than once.
	Render(ctx context.Context, path string, page, dpi int) (string, func(), error)
	Available() bool
}

// Pdftoppm shells out to poppler's pdftoppm.
type Pdftoppm struct {
	Binary string
	TmpDir string // defaults to os.TempDir()
}

func NewPdftoppm(binary string) *Pdftoppm {
	if binary == "" {
		binary = "pdftoppm"
	}
	return &Pdftoppm{Binary: binary}
}

func (p *Pdftoppm) Available() bool {
	_, err := exec.LookPath(p.Binary)
	return err == nil
}

func (p *Pdftoppm) Render(ctx context.Context, path string, page, dpi int) (string, func(), error) {
	if !p.Available() {
		return "", func() {}, ErrRasterizerUnavailable
	}
	if dpi <= 0 {
		dpi = DefaultDPI
	}

	dir, err := os.MkdirTemp(p.TmpDir, "statement-page-*")
	if err != nil {
		return "", func() {}, fmt.Errorf("create temp dir: %w", err)
	}
	cleanup := func() { _ = os.RemoveAll(dir) }

	prefix := filepath.Join(dir, "page")
	n := strconv.Itoa(page)
	cmd := exec.CommandContext(ctx, p.Binary,
		"-f", n,
		"-l", n,
		"-png",
		"-singlefile",
		"-r", strconv.Itoa(dpi),
		path,
		prefix)

	if out, err := cmd.CombinedOutput(); err != nil {
		cleanup()
		return "", func() {}, fmt.Errorf("pdftoppm page %d: %w: %s", page, err, out)
	}

	return prefix + ".png", cleanup, nil
}
