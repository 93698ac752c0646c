package pdfdoc

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Info is the structural view of a PDF.
type Info struct {
	PageCount  int
	ImagePages map[int]bool // 1-based page numbers that reference image XObjects
}

// Inspect validates the PDF structure and records which pages carry images.
func Inspect(data []byte) (*Info, error) {
	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("structure: %w", err)
	}

	info := &Info{
		PageCount:  ctx.PageCount,
		ImagePages: make(map[int]bool),
	}
	if ctx.Optimize != nil {
		for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
			if len(pdfcpu.ImageObjNrs(ctx, pageNr)) > 0 {
				info.ImagePages[pageNr] = true
			}
		}
	}
	return info, nil
}
