// Package pdf opens PDF documents and exposes their pages for text
// extraction and rasterisation. MuPDF (via go-fitz) does the rendering; page
// text comes from MuPDF or, optionally, from the pure-Go ledongthuc/pdf reader.
package pdf

import (
	"context"
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"

	"github.com/spherical/pdf-scanner/internal/domain"
	"github.com/spherical/pdf-scanner/internal/observability"
)

// pointsPerInch maps a render scale of 1.0 to one pixel per PDF point.
const pointsPerInch = 72.0

// Text engines understood by NewDecoder.
const (
	EngineMuPDF = "mupdf"
	EnginePDF   = "pdf"
)

// Decoder opens PDF buffers with MuPDF.
type Decoder struct {
	validator  *Validator
	textEngine string
	logger     *observability.Logger
}

// NewDecoder creates a decoder. textEngine selects where page tokens come from.
func NewDecoder(textEngine string, maxSizeMB int, logger *observability.Logger) (*Decoder, error) {
	switch textEngine {
	case "", EngineMuPDF:
		textEngine = EngineMuPDF
	case EnginePDF:
	default:
		return nil, domain.ConfigError(fmt.Sprintf("unknown text engine %q", textEngine), nil)
	}
	if logger == nil {
		logger = observability.Nop()
	}
	return &Decoder{
		validator:  NewValidator(maxSizeMB),
		textEngine: textEngine,
		logger:     logger.WithComponent("pdf"),
	}, nil
}

// Open implements domain.Decoder.
func (d *Decoder) Open(ctx context.Context, data []byte) (domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := d.validator.ValidateData(data); err != nil {
		return nil, domain.DecodeError("invalid PDF", err)
	}

	fd, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, domain.DecodeError("failed to open PDF", err)
	}

	doc := &Document{
		fitz:      fd,
		validator: d.validator,
		numPages:  fd.NumPage(),
	}

	if d.textEngine == EnginePDF {
		layer, err := openTextLayer(data)
		if err != nil {
			fd.Close()
			return nil, domain.DecodeError("failed to read text layer", err)
		}
		doc.text = layer
	}

	d.logger.Debug().Int("pages", doc.numPages).Str("text_engine", d.textEngine).Msg("opened document")
	return doc, nil
}

// Document is an open PDF. It is not safe for concurrent use.
type Document struct {
	fitz      *fitz.Document
	text      *textLayer
	validator *Validator
	numPages  int
}

// NumPages implements domain.Document.
func (d *Document) NumPages() int {
	return d.numPages
}

// Page implements domain.Document.
func (d *Document) Page(ctx context.Context, n int) (domain.Page, error) {
	if n < 1 || n > d.numPages {
		return nil, domain.RenderError(fmt.Sprintf("page %d out of range 1..%d", n, d.numPages), nil)
	}
	return &Page{doc: d, number: n}, nil
}

// Close releases the MuPDF document.
func (d *Document) Close() error {
	if d.fitz == nil {
		return nil
	}
	err := d.fitz.Close()
	d.fitz = nil
	return err
}

// Page is a single page of a Document.
type Page struct {
	doc    *Document
	number int
}

// Number implements domain.Page.
func (p *Page) Number() int {
	return p.number
}

// Tokens returns the page's text lines in content order.
func (p *Page) Tokens(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.doc.text != nil {
		return p.doc.text.tokens(p.number)
	}
	if p.doc.fitz == nil {
		return nil, domain.ExtractionError("document is closed", nil)
	}

	text, err := p.doc.fitz.Text(p.number - 1)
	if err != nil {
		return nil, domain.ExtractionError(fmt.Sprintf("failed to read text of page %d", p.number), err)
	}
	return splitLines(text), nil
}

// Render rasterises the page at scale * 72 DPI.
func (p *Page) Render(ctx context.Context, scale float64) (*domain.RasterImage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := p.doc.validator.ValidateScale(scale); err != nil {
		return nil, domain.RenderError(fmt.Sprintf("cannot render page %d", p.number), err)
	}
	if p.doc.fitz == nil {
		return nil, domain.RenderError("document is closed", nil)
	}

	img, err := p.doc.fitz.ImageDPI(p.number-1, scale*pointsPerInch)
	if err != nil {
		return nil, domain.RenderError(fmt.Sprintf("failed to render page %d", p.number), err)
	}
	return domain.NewRasterImage(img), nil
}

func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	tokens := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			tokens = append(tokens, line)
		}
	}
	return tokens
}
