package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"io"

	"golang.org/x/image/draw"

	"github.com/spherical/pdf-scanner/internal/domain"
)

// EncodeOptions controls artifact encoding.
type EncodeOptions struct {
	Quality int // JPEG quality, 1..100
	Width   int // target width in pixels; 0 keeps the raster's width
}

// DefaultEncodeOptions encodes at quality 85 without resizing.
func DefaultEncodeOptions() EncodeOptions {
	return EncodeOptions{Quality: 85}
}

// Resize scales img to width, keeping the aspect ratio. A non-positive
// width or a width equal to the raster's returns img unchanged.
func Resize(img *domain.RasterImage, width int) *domain.RasterImage {
	if width <= 0 || img == nil || img.Width == 0 || width == img.Width {
		return img
	}
	height := img.Height * width / img.Width
	if height < 1 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img.Image(), img.Image().Bounds(), draw.Src, nil)
	return domain.NewRasterImage(dst)
}

// EncodeJPEG writes img as a JPEG.
func EncodeJPEG(w io.Writer, img *domain.RasterImage, opts EncodeOptions) error {
	if img == nil || img.Width == 0 || img.Height == 0 {
		return domain.IOError("cannot encode an empty raster", nil)
	}
	if opts.Quality < 1 || opts.Quality > 100 {
		return domain.ValidationError(fmt.Sprintf("quality must be between 1 and 100, got %d", opts.Quality), nil)
	}

	scaled := Resize(img, opts.Width)
	if err := jpeg.Encode(w, scaled.Image(), &jpeg.Options{Quality: opts.Quality}); err != nil {
		return domain.IOError("failed to encode JPEG", err)
	}
	return nil
}

// JPEGBytes encodes img into memory.
func JPEGBytes(img *domain.RasterImage, opts EncodeOptions) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeJPEG(&buf, img, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
