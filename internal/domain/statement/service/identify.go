package service

import (
	"context"

	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement/pdfdoc"
	"github.com/FACorreiaa/statement-extractor/internal/domain/statement/sniffer"
)

// Identification describes a document without extracting its transactions.
type Identification struct {
	File         string
	DocumentType statement.DocumentType
	Institution  string // empty when no dedicated format applies
	Pages        int
	ImagePages   int
	AvgChars     float64
	SparsePages  []int
	Fingerprint  string
	TextErr      error
}

// Identify classifies the document and names the institution format that would
// read it. Scanned documents are never matched to a format.
func (p *Processor) Identify(ctx context.Context, path string) (*Identification, error) {
	doc, err := pdfdoc.Open(path)
	if err != nil {
		return nil, err
	}
	return p.IdentifyDocument(ctx, doc), nil
}

// IdentifyDocument is Identify for an opened document.
func (p *Processor) IdentifyDocument(ctx context.Context, doc *pdfdoc.Document) *Identification {
	ctx, span := p.tracer.Start(ctx, "Identify")
	defer span.End()

	profile := p.sniffer.Classify(doc.Pages, doc.TextErr)
	id := &Identification{
		File:         doc.Path,
		DocumentType: profile.Type,
		Pages:        doc.PageCount(),
		AvgChars:     profile.AvgChars,
		SparsePages:  profile.SparsePages,
		Fingerprint:  sniffer.Fingerprint(doc.Data),
		TextErr:      doc.TextErr,
	}
	if doc.Info != nil {
		id.ImagePages = len(doc.Info.ImagePages)
	}

	if profile.Type != statement.DocumentScannedImage {
		if f := p.identifier.Identify(ctx, doc.SampleText(p.config.SamplePages), doc.Name); f != nil {
			id.Institution = f.Name()
		}
	}
	return id
}
