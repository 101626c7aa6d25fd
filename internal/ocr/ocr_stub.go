//go:build !ocr

// Package ocr recognises text in rendered pages that carry no text layer.
//
// This is the stub used when the "ocr" build tag is not set. Rebuild with
//
//	go build -tags ocr
//
// to link Tesseract.
package ocr

import "errors"

// ErrOCRNotEnabled is returned when OCR was not compiled in.
var ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

// Enabled reports whether OCR support was compiled in.
const Enabled = false

// Client is a stub OCR client.
type Client struct{}

// New returns ErrOCRNotEnabled.
func New(language string) (*Client, error) {
	return nil, ErrOCRNotEnabled
}

// Close is a no-op. It is safe to call on a nil client.
func (c *Client) Close() error {
	return nil
}

// RecognizeImage returns ErrOCRNotEnabled.
func (c *Client) RecognizeImage(imageData []byte) (string, error) {
	return "", ErrOCRNotEnabled
}
