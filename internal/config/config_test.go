package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, StrategyText, cfg.Scan.Strategy)
	assert.Equal(t, ScopePage, cfg.Scan.Scope)
	assert.Equal(t, 7, cfg.Scan.Digits)
	assert.Equal(t, 165, cfg.Crop.BottomMargin)
	assert.Equal(t, 80, cfg.Crop.Height)
	assert.Equal(t, "{identifier}.jpg", cfg.Output.NameTemplate)
	assert.Equal(t, 85, cfg.Output.JPEGQuality)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scanner.yaml")
	yaml := `
scan:
  strategy: qr
  scope: document
  symbol_scale: 3
crop:
  enabled: true
  bottom_margin: 200
  height: 100
  left_margin: 12
output:
  driver: none
  jpeg_quality: 70
observability:
  log_level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, StrategyQR, cfg.Scan.Strategy)
	assert.Equal(t, ScopeDocument, cfg.Scan.Scope)
	assert.Equal(t, 3.0, cfg.Scan.SymbolScale)
	assert.Equal(t, 7, cfg.Scan.Digits, "unset keys keep their defaults")
	assert.Equal(t, 200, cfg.Crop.BottomMargin)
	assert.Equal(t, 100, cfg.Crop.Height)
	assert.Equal(t, 12, cfg.Crop.LeftMargin)
	assert.Equal(t, OutputNone, cfg.Output.Driver)
	assert.Equal(t, 70, cfg.Output.JPEGQuality)
	assert.Equal(t, "debug", cfg.Observability.LogLevel)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SCAN_STRATEGY", "QR")
	t.Setenv("SCAN_DIGITS", "8")
	t.Setenv("RENDER_SCALE", "1.5")
	t.Setenv("PDF_TEXT_ENGINE", "pdf")
	t.Setenv("OUTPUT_DRIVER", "s3")
	t.Setenv("S3_BUCKET", "signatures")
	t.Setenv("S3_PREFIX", "batch/")
	t.Setenv("AWS_REGION", "eu-west-1")
	t.Setenv("AWS_ACCESS_KEY_ID", "AKIATEST")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "secret")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, StrategyQR, cfg.Scan.Strategy)
	assert.Equal(t, 8, cfg.Scan.Digits)
	assert.Equal(t, 1.5, cfg.Scan.RenderScale)
	assert.Equal(t, TextEnginePDF, cfg.PDF.TextEngine)
	assert.Equal(t, OutputS3, cfg.Output.Driver)
	assert.Equal(t, "signatures", cfg.Output.S3.Bucket)
	assert.Equal(t, "batch/", cfg.Output.S3.Prefix)
	assert.Equal(t, "eu-west-1", cfg.Output.S3.Region)
	assert.Equal(t, "AKIATEST", cfg.Output.S3.AccessKey)
	assert.Equal(t, "secret", cfg.Output.S3.SecretKey)
	assert.Equal(t, "json", cfg.Observability.LogFormat)
}

func TestLoad_RejectsMalformedEnvNumbers(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"SCAN_DIGITS", "abc"},
		{"SCAN_DIGITS", "7.5"},
		{"RENDER_SCALE", "x"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load("")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"strategy", func(c *Config) { c.Scan.Strategy = "barcode" }},
		{"scope", func(c *Config) { c.Scan.Scope = "batch" }},
		{"digits", func(c *Config) { c.Scan.Digits = 0 }},
		{"render scale", func(c *Config) { c.Scan.RenderScale = 0 }},
		{"symbol scale", func(c *Config) { c.Scan.SymbolScale = 11 }},
		{"text engine", func(c *Config) { c.PDF.TextEngine = "poppler" }},
		{"crop height", func(c *Config) { c.Crop.Height = 0 }},
		{"crop anchor below page", func(c *Config) { c.Crop.BottomMargin = 10 }},
		{"negative margin", func(c *Config) { c.Crop.LeftMargin = -1 }},
		{"quality", func(c *Config) { c.Output.JPEGQuality = 101 }},
		{"width", func(c *Config) { c.Output.Width = -5 }},
		{"template", func(c *Config) { c.Output.NameTemplate = "sig.jpg" }},
		{"driver", func(c *Config) { c.Output.Driver = "ftp" }},
		{"dir", func(c *Config) { c.Output.Dir = "" }},
		{"bucket", func(c *Config) { c.Output.Driver = OutputS3 }},
		{"half credentials", func(c *Config) {
			c.Output.Driver = OutputS3
			c.Output.S3.Bucket = "signatures"
			c.Output.S3.AccessKey = "AKIA"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidate_CropDisabledSkipsCropChecks(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Crop.Enabled = false
	cfg.Crop.Height = 0
	assert.NoError(t, cfg.Validate())
}
