// Package domaintest provides in-memory fakes of the domain collaborators
// for tests.
package domaintest

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/spherical/pdf-scanner/internal/domain"
)

// Page is a scripted domain.Page.
type Page struct {
	N         int
	Text      []string
	TokensErr error
	Width     int // raster width at scale 1; defaults to 600
	Height    int // raster height at scale 1; defaults to 800
	RenderErr error

	mu      sync.Mutex
	renders int
}

// Number implements domain.Page.
func (p *Page) Number() int { return p.N }

// Tokens implements domain.Page.
func (p *Page) Tokens(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.TokensErr != nil {
		return nil, p.TokensErr
	}
	return p.Text, nil
}

// Render implements domain.Page. The raster is a Gradient sized by scale.
func (p *Page) Render(ctx context.Context, scale float64) (*domain.RasterImage, error) {
	p.mu.Lock()
	p.renders++
	p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.RenderErr != nil {
		return nil, p.RenderErr
	}
	w, h := p.Width, p.Height
	if w == 0 {
		w = 600
	}
	if h == 0 {
		h = 800
	}
	return Gradient(int(float64(w)*scale), int(float64(h)*scale)), nil
}

// Renders returns how many times Render was called.
func (p *Page) Renders() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.renders
}

// Document is a scripted domain.Document.
type Document struct {
	Pages []*Page

	// PageErr fails Page(n) for the given page numbers.
	PageErr map[int]error

	Closed bool
}

// NumPages implements domain.Document.
func (d *Document) NumPages() int { return len(d.Pages) }

// Page implements domain.Document.
func (d *Document) Page(ctx context.Context, n int) (domain.Page, error) {
	if err, ok := d.PageErr[n]; ok {
		return nil, err
	}
	if n < 1 || n > len(d.Pages) {
		return nil, domain.RenderError(fmt.Sprintf("page %d out of range", n), nil)
	}
	return d.Pages[n-1], nil
}

// Close implements domain.Document.
func (d *Document) Close() error {
	d.Closed = true
	return nil
}

// Decoder maps raw bytes to scripted documents. Unknown bytes fail to decode.
type Decoder struct {
	Docs map[string]*Document
}

// Open implements domain.Decoder.
func (d *Decoder) Open(ctx context.Context, data []byte) (domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, ok := d.Docs[string(data)]
	if !ok {
		return nil, domain.DecodeError("failed to open PDF", fmt.Errorf("unknown document %q", data))
	}
	doc.Closed = false
	return doc, nil
}

// SymbolDecoder returns Payloads keyed by raster width.
type SymbolDecoder struct {
	Payloads map[int]string
	Err      error
}

// Decode implements domain.SymbolDecoder.
func (s *SymbolDecoder) Decode(ctx context.Context, img *domain.RasterImage) (string, bool, error) {
	if s.Err != nil {
		return "", false, s.Err
	}
	p, ok := s.Payloads[img.Width]
	return p, ok, nil
}

// Gradient returns a w x h raster whose pixel (x, y) encodes its coordinates:
// R = x mod 256, G = y mod 256, B = (x+y) mod 256.
func Gradient(w, h int) *domain.RasterImage {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: uint8(x + y), A: 255})
		}
	}
	return domain.NewRasterImage(img)
}
