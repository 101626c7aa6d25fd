// Package qr decodes QR symbols from rendered page rasters.
package qr

import (
	"context"
	"errors"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"

	"github.com/spherical/pdf-scanner/internal/domain"
)

// Decoder implements domain.SymbolDecoder with the zxing QR reader.
type Decoder struct {
	hints map[gozxing.DecodeHintType]interface{}
}

// NewDecoder creates a QR decoder. tryHarder trades speed for accuracy on
// dense or small symbols.
func NewDecoder(tryHarder bool) *Decoder {
	hints := make(map[gozxing.DecodeHintType]interface{})
	if tryHarder {
		hints[gozxing.DecodeHintType_TRY_HARDER] = true
	}
	return &Decoder{hints: hints}
}

// Decode returns the payload of the first QR symbol found in img. A page
// without a readable symbol is reported as found == false.
func (d *Decoder) Decode(ctx context.Context, img *domain.RasterImage) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	if img == nil || img.Width == 0 || img.Height == 0 {
		return "", false, nil
	}

	bmp, err := gozxing.NewBinaryBitmapFromImage(img.Image())
	if err != nil {
		return "", false, domain.ExtractionError("failed to binarise raster", err)
	}

	// The reader keeps no state between calls but is cheap to build.
	result, err := qrcode.NewQRCodeReader().Decode(bmp, d.hints)
	if err != nil {
		// NotFound, Checksum and Format all mean no usable symbol on the page.
		var re gozxing.ReaderException
		if errors.As(err, &re) {
			return "", false, nil
		}
		return "", false, err
	}
	return result.GetText(), true, nil
}
