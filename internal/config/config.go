// Package config provides configuration loading for the scanner.
// Supports YAML files, environment variables, and programmatic overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Extraction strategies.
const (
	StrategyText = "text"
	StrategyQR   = "qr"
	StrategyOCR  = "ocr"
)

// Identifier scopes.
const (
	ScopePage     = "page"
	ScopeDocument = "document"
)

// Text engines.
const (
	TextEngineMuPDF = "mupdf"
	TextEnginePDF   = "pdf"
)

// Output drivers.
const (
	OutputDir  = "dir"
	OutputS3   = "s3"
	OutputNone = "none"
)

// Config holds all configuration for the scanner.
type Config struct {
	Scan          ScanConfig          `yaml:"scan"`
	PDF           PDFConfig           `yaml:"pdf"`
	Crop          CropConfig          `yaml:"crop"`
	Output        OutputConfig        `yaml:"output"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ScanConfig controls identifier extraction.
type ScanConfig struct {
	Strategy    string  `yaml:"strategy"` // text, qr or ocr
	Scope       string  `yaml:"scope"`    // page or document
	Digits      int     `yaml:"digits"`
	RenderScale float64 `yaml:"render_scale"`
	SymbolScale float64 `yaml:"symbol_scale"`
	OCRLanguage string  `yaml:"ocr_language"`
}

// PDFConfig controls document decoding.
type PDFConfig struct {
	TextEngine string `yaml:"text_engine"` // mupdf or pdf
	MaxSizeMB  int    `yaml:"max_size_mb"`
}

// CropConfig describes the bottom-anchored signature region.
type CropConfig struct {
	Enabled      bool `yaml:"enabled"`
	BottomMargin int  `yaml:"bottom_margin"`
	Height       int  `yaml:"height"`
	LeftMargin   int  `yaml:"left_margin"`
	RightMargin  int  `yaml:"right_margin"`
}

// OutputConfig controls artifact naming, encoding and persistence.
type OutputConfig struct {
	Driver       string   `yaml:"driver"` // dir, s3 or none
	Dir          string   `yaml:"dir"`
	Overwrite    bool     `yaml:"overwrite"`
	NameTemplate string   `yaml:"name_template"`
	JPEGQuality  int      `yaml:"jpeg_quality"`
	Width        int      `yaml:"width"` // 0 keeps the cropped width
	S3           S3Config `yaml:"s3"`
	SaveRetries  int      `yaml:"save_retries"`
}

// S3Config holds S3 upload settings.
type S3Config struct {
	Bucket string `yaml:"bucket"`
	Region string `yaml:"region"`
	Prefix string `yaml:"prefix"`

	// Static credentials; when empty the default AWS credential chain is used.
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Load reads configuration from a YAML file and applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("apply env overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns the default configuration: 7-digit text identifiers and an
// 80px signature strip 165px above the bottom edge.
func DefaultConfig() *Config {
	return &Config{
		Scan: ScanConfig{
			Strategy:    StrategyText,
			Scope:       ScopePage,
			Digits:      7,
			RenderScale: 1.0,
			SymbolScale: 2.0,
			OCRLanguage: "eng",
		},
		PDF: PDFConfig{
			TextEngine: TextEngineMuPDF,
			MaxSizeMB:  100,
		},
		Crop: CropConfig{
			Enabled:      true,
			BottomMargin: 165,
			Height:       80,
		},
		Output: OutputConfig{
			Driver:       OutputDir,
			Dir:          "signatures",
			Overwrite:    true,
			NameTemplate: "{identifier}.jpg",
			JPEGQuality:  85,
			SaveRetries:  2,
			S3: S3Config{
				Region: "us-east-2",
			},
		},
		Observability: ObservabilityConfig{
			LogLevel:  "info",
			LogFormat: "console",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	switch c.Scan.Strategy {
	case StrategyText, StrategyQR, StrategyOCR:
	default:
		return fmt.Errorf("invalid scan strategy: %q", c.Scan.Strategy)
	}

	if c.Scan.Scope != ScopePage && c.Scan.Scope != ScopeDocument {
		return fmt.Errorf("invalid scan scope: %q", c.Scan.Scope)
	}

	if c.Scan.Digits < 1 || c.Scan.Digits > 64 {
		return fmt.Errorf("digits must be between 1 and 64, got %d", c.Scan.Digits)
	}

	if c.Scan.RenderScale <= 0 || c.Scan.RenderScale > 10 {
		return fmt.Errorf("render_scale must be in (0, 10], got %g", c.Scan.RenderScale)
	}

	if c.Scan.SymbolScale <= 0 || c.Scan.SymbolScale > 10 {
		return fmt.Errorf("symbol_scale must be in (0, 10], got %g", c.Scan.SymbolScale)
	}

	if c.PDF.TextEngine != TextEngineMuPDF && c.PDF.TextEngine != TextEnginePDF {
		return fmt.Errorf("invalid pdf text engine: %q", c.PDF.TextEngine)
	}

	if c.Crop.Enabled {
		if c.Crop.Height < 1 {
			return fmt.Errorf("crop height must be positive, got %d", c.Crop.Height)
		}
		if c.Crop.BottomMargin < c.Crop.Height {
			return fmt.Errorf("crop bottom_margin (%d) must be at least the crop height (%d)",
				c.Crop.BottomMargin, c.Crop.Height)
		}
		if c.Crop.LeftMargin < 0 || c.Crop.RightMargin < 0 {
			return fmt.Errorf("crop margins must not be negative")
		}
	}

	if c.Output.JPEGQuality < 1 || c.Output.JPEGQuality > 100 {
		return fmt.Errorf("jpeg_quality must be between 1 and 100, got %d", c.Output.JPEGQuality)
	}

	if c.Output.Width < 0 {
		return fmt.Errorf("output width must not be negative, got %d", c.Output.Width)
	}

	if !strings.Contains(c.Output.NameTemplate, "{identifier}") {
		return fmt.Errorf("name_template must contain {identifier}: %q", c.Output.NameTemplate)
	}

	switch c.Output.Driver {
	case OutputDir:
		if c.Output.Dir == "" {
			return fmt.Errorf("output dir must be set for the dir driver")
		}
	case OutputS3:
		if c.Output.S3.Bucket == "" {
			return fmt.Errorf("s3 bucket must be set for the s3 driver")
		}
		if (c.Output.S3.AccessKey == "") != (c.Output.S3.SecretKey == "") {
			return fmt.Errorf("s3 access_key and secret_key must be set together")
		}
	case OutputNone:
	default:
		return fmt.Errorf("invalid output driver: %q", c.Output.Driver)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to config. A
// numeric variable that does not parse is an error.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("SCAN_STRATEGY"); v != "" {
		cfg.Scan.Strategy = strings.ToLower(v)
	}

	if v := os.Getenv("SCAN_SCOPE"); v != "" {
		cfg.Scan.Scope = strings.ToLower(v)
	}

	if v := os.Getenv("SCAN_DIGITS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SCAN_DIGITS: %q is not an integer", v)
		}
		cfg.Scan.Digits = n
	}

	if v := os.Getenv("RENDER_SCALE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("RENDER_SCALE: %q is not a number", v)
		}
		cfg.Scan.RenderScale = f
	}

	if v := os.Getenv("PDF_TEXT_ENGINE"); v != "" {
		cfg.PDF.TextEngine = strings.ToLower(v)
	}

	if v := os.Getenv("OUTPUT_DRIVER"); v != "" {
		cfg.Output.Driver = strings.ToLower(v)
	}

	if v := os.Getenv("OUTPUT_DIR"); v != "" {
		cfg.Output.Dir = v
	}

	if v := os.Getenv("S3_BUCKET"); v != "" {
		cfg.Output.S3.Bucket = v
	}

	if v := os.Getenv("S3_PREFIX"); v != "" {
		cfg.Output.S3.Prefix = v
	}

	if v := os.Getenv("AWS_REGION"); v != "" {
		cfg.Output.S3.Region = v
	}

	if v := os.Getenv("AWS_ACCESS_KEY_ID"); v != "" {
		cfg.Output.S3.AccessKey = v
	}

	if v := os.Getenv("AWS_SECRET_ACCESS_KEY"); v != "" {
		cfg.Output.S3.SecretKey = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Observability.LogFormat = v
	}

	return nil
}
