package domain

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"time"
)

// RasterChannels is the fixed channel count of a RasterImage (RGBA).
const RasterChannels = 4

// RasterImage is an immutable row-major RGBA pixel buffer.
type RasterImage struct {
	Width  int
	Height int
	Stride int
	Pix    []uint8
}

// NewRasterImage copies img into a new RasterImage whose origin is (0, 0).
func NewRasterImage(img image.Image) *RasterImage {
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return &RasterImage{
		Width:  b.Dx(),
		Height: b.Dy(),
		Stride: rgba.Stride,
		Pix:    rgba.Pix,
	}
}

// Image returns an *image.RGBA sharing the raster's buffer. Callers must not
// write to it.
func (r *RasterImage) Image() *image.RGBA {
	return &image.RGBA{
		Pix:    r.Pix,
		Stride: r.Stride,
		Rect:   image.Rect(0, 0, r.Width, r.Height),
	}
}

// At returns the pixel at (x, y), or transparent black outside the raster.
func (r *RasterImage) At(x, y int) color.RGBA {
	if x < 0 || y < 0 || x >= r.Width || y >= r.Height {
		return color.RGBA{}
	}
	i := y*r.Stride + x*RasterChannels
	return color.RGBA{R: r.Pix[i], G: r.Pix[i+1], B: r.Pix[i+2], A: r.Pix[i+3]}
}

// Region is a rectangle in pixel coordinates relative to a raster's
// top-left corner.
type Region struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Within reports whether the region is non-empty and lies entirely inside a
// width x height raster.
func (r Region) Within(width, height int) bool {
	return r.X >= 0 && r.Y >= 0 &&
		r.Width > 0 && r.Height > 0 &&
		r.X+r.Width <= width && r.Y+r.Height <= height
}

func (r Region) String() string {
	return fmt.Sprintf("{x:%d y:%d w:%d h:%d}", r.X, r.Y, r.Width, r.Height)
}

// Identifier is a short token located on a page.
type Identifier struct {
	Value    string `json:"value"`
	Strategy string `json:"strategy"`
}

// Artifact is the terminal output for one page: the cropped raster and the
// filename it should be saved under.
type Artifact struct {
	DocumentIndex int          `json:"document_index"`
	DocumentName  string       `json:"document_name"`
	PageNumber    int          `json:"page_number"`
	Identifier    Identifier   `json:"identifier"`
	Filename      string       `json:"filename"`
	Image         *RasterImage `json:"-"`
}

// Failure is one entry of a batch report. PageNumber is 0 for failures that
// apply to the whole document.
type Failure struct {
	DocumentIndex int       `json:"document_index"`
	DocumentName  string    `json:"document_name"`
	PageNumber    int       `json:"page_number,omitempty"`
	Reason        ErrorType `json:"reason"`
	Message       string    `json:"message"`
}

// DocumentLevel reports whether the failure applies to the whole document.
func (f Failure) DocumentLevel() bool {
	return f.PageNumber == 0
}

// ProcessingStats contains metadata about a batch run
type ProcessingStats struct {
	TotalTime       time.Duration `json:"total_time"`
	Documents       int           `json:"documents"`
	FailedDocuments int           `json:"failed_documents"`
	PagesProcessed  int           `json:"pages_processed"`
	Artifacts       int           `json:"artifacts"`
	FailedPages     int           `json:"failed_pages"`
}

// Report is the complete result of a batch run. Artifacts and Failures are in
// document-then-page order.
type Report struct {
	RunID     string          `json:"run_id"`
	Artifacts []Artifact      `json:"artifacts"`
	Failures  []Failure       `json:"failures"`
	Stats     ProcessingStats `json:"stats"`
	Cancelled bool            `json:"cancelled,omitempty"`
}

// EventType represents the type of stream event
type EventType string

const (
	EventStart            EventType = "start"
	EventDocumentStart    EventType = "document_start"
	EventPageProcessing   EventType = "page_processing"
	EventArtifact         EventType = "artifact"
	EventPageFailed       EventType = "page_failed"
	EventDocumentFailed   EventType = "document_failed"
	EventDocumentComplete EventType = "document_complete"
	EventComplete         EventType = "complete"
)

// StreamEvent represents an event emitted during processing
type StreamEvent struct {
	Type          EventType   `json:"type"`
	DocumentIndex int         `json:"document_index"`
	PageNumber    int         `json:"page_number,omitempty"`
	Payload       interface{} `json:"payload,omitempty"` // Artifact, Failure, page count or status message
	Timestamp     time.Time   `json:"timestamp"`
}
