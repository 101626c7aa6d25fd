package pdf

import (
	"bytes"
	"fmt"

	"github.com/spherical/pdf-scanner/internal/domain"
)

// headerWindow is how far into the file the %PDF- marker may appear; readers
// tolerate leading junk before it.
const headerWindow = 1024

var pdfMagic = []byte("%PDF-")

// Validator provides input validation for PDF buffers
type Validator struct {
	maxBytes int64
}

// NewValidator creates a validator that rejects buffers larger than maxSizeMB.
// A non-positive limit disables the size check.
func NewValidator(maxSizeMB int) *Validator {
	return &Validator{maxBytes: int64(maxSizeMB) * 1024 * 1024}
}

// ValidateData checks that data looks like a PDF before it reaches MuPDF.
func (v *Validator) ValidateData(data []byte) error {
	if len(data) == 0 {
		return domain.ValidationError("document is empty", nil)
	}

	if v.maxBytes > 0 && int64(len(data)) > v.maxBytes {
		return domain.ValidationError(
			fmt.Sprintf("document is %d MB, limit is %d MB", len(data)/(1024*1024), v.maxBytes/(1024*1024)), nil)
	}

	window := data
	if len(window) > headerWindow {
		window = window[:headerWindow]
	}
	if !bytes.Contains(window, pdfMagic) {
		return domain.ValidationError("missing %PDF- header", nil)
	}

	return nil
}

// ValidateScale validates a render scale
func (v *Validator) ValidateScale(scale float64) error {
	if scale <= 0 || scale > 10 {
		return domain.ValidationError(fmt.Sprintf("scale must be in (0, 10], got %g", scale), nil)
	}
	return nil
}
