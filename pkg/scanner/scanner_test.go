package scanner

import (
	"context"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spherical/pdf-scanner/internal/config"
	"github.com/spherical/pdf-scanner/internal/domain"
	"github.com/spherical/pdf-scanner/internal/ocr"
	"github.com/spherical/pdf-scanner/internal/pdf/pdftest"
	"github.com/spherical/pdf-scanner/internal/storage"
)

func dirConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Output.Dir = filepath.Join(t.TempDir(), "signatures")
	return cfg
}

func TestClient_ScanWritesSignatures(t *testing.T) {
	cfg := dirConfig(t)
	client, err := NewClientWithConfig(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer client.Close()

	report, err := client.Scan(context.Background(), []Input{
		{Name: "invoice.pdf", Data: pdftest.Minimal("ID 1234567 END", "no digits here")},
		{Name: "broken.pdf", Data: []byte("not a pdf")},
	}, nil)
	require.NoError(t, err)

	require.Len(t, report.Artifacts, 1)
	assert.Equal(t, "1234567.jpg", report.Artifacts[0].Filename)
	assert.Equal(t, 80, report.Artifacts[0].Image.Height)

	require.Len(t, report.Failures, 2)
	assert.Equal(t, 2, report.Failures[0].PageNumber)
	assert.Equal(t, domain.ErrorTypeNoMatch, report.Failures[0].Reason)
	assert.Equal(t, 1, report.Failures[1].DocumentIndex)
	assert.Equal(t, domain.ErrorTypeDecode, report.Failures[1].Reason)
	assert.True(t, report.Failures[1].DocumentLevel())

	f, err := os.Open(filepath.Join(cfg.Output.Dir, "1234567.jpg"))
	require.NoError(t, err)
	defer f.Close()
	img, err := jpeg.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 80, img.Bounds().Dy())
}

func TestClient_Stream(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Output.Driver = config.OutputNone
	client, err := NewClientWithConfig(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer client.Close()

	events, results := client.Stream(context.Background(), []Input{
		{Name: "a.pdf", Data: pdftest.Minimal("7654321")},
	})

	var types []EventType
	for ev := range events {
		types = append(types, ev.Type)
	}
	result := <-results

	require.NoError(t, result.Err)
	require.Len(t, result.Report.Artifacts, 1)
	assert.Equal(t, "7654321.jpg", result.Report.Artifacts[0].Filename)
	require.NotEmpty(t, types)
	assert.Equal(t, EventStart, types[0])
	assert.Equal(t, EventComplete, types[len(types)-1])
	assert.Contains(t, types, EventArtifact)
}

func TestNewClientWithConfig_OCRStrategy(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Output.Driver = config.OutputNone
	cfg.Scan.Strategy = config.StrategyOCR

	client, err := NewClientWithConfig(context.Background(), cfg, nil)
	if !ocr.Enabled {
		assert.True(t, domain.IsType(err, domain.ErrorTypeConfig))
		return
	}
	if err != nil {
		t.Skipf("Tesseract not available: %v", err)
	}
	assert.NoError(t, client.Close())
}

func TestNewClientWithConfig_RejectsInvalidConfig(t *testing.T) {
	_, err := NewClientWithConfig(context.Background(), nil, nil)
	assert.True(t, domain.IsType(err, domain.ErrorTypeConfig))

	cfg := config.DefaultConfig()
	cfg.Scan.Strategy = "barcode"
	_, err = NewClientWithConfig(context.Background(), cfg, nil)
	assert.True(t, domain.IsType(err, domain.ErrorTypeConfig))
}

func TestOptions(t *testing.T) {
	cfg := config.DefaultConfig()
	opts := Options(cfg)
	require.NotNil(t, opts.Layout)
	assert.Equal(t, 165, opts.Layout.BottomMargin)
	assert.Equal(t, 80, opts.Layout.Height)
	assert.Equal(t, config.ScopePage, opts.Scope)

	cfg.Crop.Enabled = false
	assert.Nil(t, Options(cfg).Layout)
}

func TestNewSaver(t *testing.T) {
	ctx := context.Background()

	saver, err := NewSaver(ctx, config.OutputConfig{Driver: config.OutputNone}, nil)
	require.NoError(t, err)
	assert.IsType(t, storage.Discard{}, saver)

	out := config.DefaultConfig().Output
	out.Dir = t.TempDir()
	saver, err = NewSaver(ctx, out, nil)
	require.NoError(t, err)
	assert.IsType(t, &storage.Retrying{}, saver)

	out.SaveRetries = 0
	saver, err = NewSaver(ctx, out, nil)
	require.NoError(t, err)
	assert.IsType(t, &storage.DirSaver{}, saver)

	_, err = NewSaver(ctx, config.OutputConfig{Driver: "ftp"}, nil)
	assert.True(t, domain.IsType(err, domain.ErrorTypeConfig))
}
