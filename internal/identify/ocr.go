package identify

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"strings"

	"github.com/spherical/pdf-scanner/internal/domain"
)

// TextRecognizer turns an encoded image into text. ocr.Client implements it.
type TextRecognizer interface {
	RecognizeImage(imageData []byte) (string, error)
}

// OCR reads the rendered page with a TextRecognizer and applies the same
// digit pattern as TextPattern. It covers scanned pages with no text layer.
type OCR struct {
	recognizer TextRecognizer
	matcher    *PatternMatcher
	scale      float64
}

// NewOCR creates an OCR extractor rendering pages at scale.
func NewOCR(recognizer TextRecognizer, digits int, scale float64) (*OCR, error) {
	if recognizer == nil {
		return nil, domain.ConfigError("text recognizer is required", nil)
	}
	if scale <= 0 {
		return nil, domain.ConfigError(fmt.Sprintf("OCR scale must be positive, got %g", scale), nil)
	}
	m, err := NewPatternMatcher(digits)
	if err != nil {
		return nil, err
	}
	return &OCR{recognizer: recognizer, matcher: m, scale: scale}, nil
}

// Strategy implements domain.IdentifierExtractor.
func (o *OCR) Strategy() string {
	return StrategyOCR
}

// Extract implements domain.IdentifierExtractor.
func (o *OCR) Extract(ctx context.Context, page domain.Page) (domain.Identifier, bool, error) {
	img, err := page.Render(ctx, o.scale)
	if err != nil {
		return domain.Identifier{}, false, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img.Image()); err != nil {
		return domain.Identifier{}, false, domain.ExtractionError("failed to encode page for OCR", err)
	}

	text, err := o.recognizer.RecognizeImage(buf.Bytes())
	if err != nil {
		return domain.Identifier{}, false, domain.ExtractionError(
			fmt.Sprintf("OCR failed on page %d", page.Number()), err)
	}

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}

	value, ok := o.matcher.Match(lines)
	if !ok {
		return domain.Identifier{}, false, nil
	}
	return domain.Identifier{Value: value, Strategy: StrategyOCR}, true, nil
}
