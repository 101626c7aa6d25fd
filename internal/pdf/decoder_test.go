package pdf

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spherical/pdf-scanner/internal/domain"
	"github.com/spherical/pdf-scanner/internal/pdf/pdftest"
)

func TestValidator_ValidateData(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr bool
	}{
		{"empty", nil, true},
		{"not a pdf", []byte("hello world"), true},
		{"header", []byte("%PDF-1.7\n%..."), false},
		{"header after junk", append(bytes.Repeat([]byte{' '}, 100), []byte("%PDF-1.4")...), false},
		{"header too late", append(bytes.Repeat([]byte{' '}, headerWindow), []byte("%PDF-1.4")...), true},
	}

	v := NewValidator(1)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateData(tt.data)
			if tt.wantErr {
				assert.True(t, domain.IsType(err, domain.ErrorTypeValidation), "got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidator_SizeLimit(t *testing.T) {
	data := append([]byte("%PDF-1.7\n"), make([]byte, 2*1024*1024)...)

	assert.Error(t, NewValidator(1).ValidateData(data))
	assert.NoError(t, NewValidator(0).ValidateData(data), "non-positive limit disables the check")
}

func TestValidator_ValidateScale(t *testing.T) {
	v := NewValidator(0)
	for _, scale := range []float64{0.1, 1, 2.5, 10} {
		assert.NoError(t, v.ValidateScale(scale), "scale %g", scale)
	}
	for _, scale := range []float64{0, -1, 10.5} {
		assert.Error(t, v.ValidateScale(scale), "scale %g", scale)
	}
}

func TestNewDecoder_TextEngine(t *testing.T) {
	d, err := NewDecoder("", 0, nil)
	require.NoError(t, err)
	assert.Equal(t, EngineMuPDF, d.textEngine)

	d, err = NewDecoder(EnginePDF, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, EnginePDF, d.textEngine)

	_, err = NewDecoder("poppler", 0, nil)
	assert.True(t, domain.IsType(err, domain.ErrorTypeConfig))
}

func TestDecoder_OpenRejectsNonPDF(t *testing.T) {
	d, err := NewDecoder(EngineMuPDF, 0, nil)
	require.NoError(t, err)

	_, err = d.Open(context.Background(), []byte("definitely not a pdf"))
	require.Error(t, err)
	assert.True(t, domain.IsType(err, domain.ErrorTypeDecode))
}

func TestDecoder_OpenHonoursCancellation(t *testing.T) {
	d, err := NewDecoder(EngineMuPDF, 0, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = d.Open(ctx, []byte("%PDF-1.7"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSplitLines(t *testing.T) {
	got := splitLines("Invoice\n\n  ID 1234567 END \r\n\t\nSignature\n")
	assert.Equal(t, []string{"Invoice", "ID 1234567 END", "Signature"}, got)
	assert.Empty(t, splitLines(" \n \n"))
}

func TestDecoder_OpensGeneratedDocument(t *testing.T) {
	d, err := NewDecoder(EngineMuPDF, 0, nil)
	require.NoError(t, err)

	doc, err := d.Open(context.Background(), pdftest.Minimal("ID 1234567 END", ""))
	require.NoError(t, err)
	defer doc.Close()

	require.Equal(t, 2, doc.NumPages())

	page, err := doc.Page(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Number())

	tokens, err := page.Tokens(context.Background())
	require.NoError(t, err)
	assert.Contains(t, strings.Join(tokens, "\n"), "1234567")

	img, err := page.Render(context.Background(), 1.0)
	require.NoError(t, err)
	assert.InDelta(t, pdftest.PageWidth, img.Width, 1)
	assert.InDelta(t, pdftest.PageHeight, img.Height, 1)

	double, err := page.Render(context.Background(), 2.0)
	require.NoError(t, err)
	assert.InDelta(t, 2*pdftest.PageWidth, double.Width, 2)

	_, err = page.Render(context.Background(), 0)
	assert.True(t, domain.IsType(err, domain.ErrorTypeRender))

	blank, err := doc.Page(context.Background(), 2)
	require.NoError(t, err)
	tokens, err = blank.Tokens(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tokens)

	_, err = doc.Page(context.Background(), 3)
	assert.True(t, domain.IsType(err, domain.ErrorTypeRender))
}

func TestDecoder_PureGoTextEngine(t *testing.T) {
	d, err := NewDecoder(EnginePDF, 0, nil)
	require.NoError(t, err)

	doc, err := d.Open(context.Background(), pdftest.Minimal("ID 1234567 END"))
	require.NoError(t, err)
	defer doc.Close()

	page, err := doc.Page(context.Background(), 1)
	require.NoError(t, err)
	_, err = page.Tokens(context.Background())
	assert.NoError(t, err)
}

func TestDocument_CloseIsIdempotent(t *testing.T) {
	d, err := NewDecoder(EngineMuPDF, 0, nil)
	require.NoError(t, err)

	doc, err := d.Open(context.Background(), pdftest.Minimal("x"))
	require.NoError(t, err)
	page, err := doc.Page(context.Background(), 1)
	require.NoError(t, err)

	require.NoError(t, doc.Close())
	require.NoError(t, doc.Close())

	_, err = page.Render(context.Background(), 1.0)
	assert.True(t, domain.IsType(err, domain.ErrorTypeRender))
}
