package ocr

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
)

func blankPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestClient_RecognizeBlankImage(t *testing.T) {
	client, err := New("eng")
	if err != nil {
		t.Skipf("Tesseract not available: %v", err)
	}
	defer client.Close()

	// Only the round trip is checked; Tesseract may emit noise for a blank page.
	_, err = client.RecognizeImage(blankPNG(t, 120, 60))
	assert.NoError(t, err)
}

func TestClient_CloseIsIdempotent(t *testing.T) {
	var nilClient *Client
	assert.NoError(t, nilClient.Close())

	client, err := New("")
	if err != nil {
		assert.False(t, Enabled)
		return
	}
	assert.True(t, Enabled)
	assert.NoError(t, client.Close())
	assert.NoError(t, client.Close())
}
