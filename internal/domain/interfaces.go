package domain

import "context"

// Decoder opens a document from its raw bytes.
type Decoder interface {
	// Open fails with a decode error when the bytes are not a readable document.
	Open(ctx context.Context, data []byte) (Document, error)
}

// Document is an ordered sequence of pages.
type Document interface {
	NumPages() int

	// Page returns page n, 1-based.
	Page(ctx context.Context, n int) (Page, error)

	Close() error
}

// PageRenderer rasterises a page.
type PageRenderer interface {
	// Render is deterministic for a fixed scale; scale 1.0 is one pixel per PDF point.
	Render(ctx context.Context, scale float64) (*RasterImage, error)
}

// Page is one read-only page of a Document.
type Page interface {
	PageRenderer

	// Number is the 1-based page number.
	Number() int

	// Tokens returns the page's text runs in content order.
	Tokens(ctx context.Context) ([]string, error)
}

// IdentifierExtractor locates an identifier on a page.
// A page without an identifier is reported with found == false and a nil
// error; a non-nil error always means the page could not be examined.
type IdentifierExtractor interface {
	Extract(ctx context.Context, page Page) (id Identifier, found bool, err error)

	// Strategy names the extraction method, e.g. "text" or "qr".
	Strategy() string
}

// SymbolDecoder decodes a 2D symbol from a raster.
type SymbolDecoder interface {
	Decode(ctx context.Context, img *RasterImage) (payload string, found bool, err error)
}

// Namer maps an identifier to an artifact filename.
type Namer interface {
	NameFor(identifier string) (string, error)
}

// Saver persists an artifact. It is called once per emitted artifact.
type Saver interface {
	Save(ctx context.Context, artifact Artifact) error
}
