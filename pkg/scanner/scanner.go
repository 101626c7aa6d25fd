// Package scanner is the public entry point: it wires the decoder, the
// identifier extractor, the cropper, the namer and a saver from a
// config.Config and runs batches of PDF documents through them.
package scanner

import (
	"context"
	"errors"
	"fmt"

	"github.com/joho/godotenv"

	"github.com/spherical/pdf-scanner/internal/config"
	"github.com/spherical/pdf-scanner/internal/domain"
	"github.com/spherical/pdf-scanner/internal/identify"
	"github.com/spherical/pdf-scanner/internal/imaging"
	"github.com/spherical/pdf-scanner/internal/naming"
	"github.com/spherical/pdf-scanner/internal/observability"
	"github.com/spherical/pdf-scanner/internal/ocr"
	"github.com/spherical/pdf-scanner/internal/pdf"
	"github.com/spherical/pdf-scanner/internal/qr"
	"github.com/spherical/pdf-scanner/internal/scan"
	"github.com/spherical/pdf-scanner/internal/storage"
)

// Re-export types for the public API
type (
	Config      = config.Config
	Input       = scan.Input
	Report      = domain.Report
	Artifact    = domain.Artifact
	Failure     = domain.Failure
	Identifier  = domain.Identifier
	ErrorType   = domain.ErrorType
	StreamEvent = domain.StreamEvent
	EventType   = domain.EventType
)

// Event type constants
const (
	EventStart            = domain.EventStart
	EventDocumentStart    = domain.EventDocumentStart
	EventPageProcessing   = domain.EventPageProcessing
	EventArtifact         = domain.EventArtifact
	EventPageFailed       = domain.EventPageFailed
	EventDocumentFailed   = domain.EventDocumentFailed
	EventDocumentComplete = domain.EventDocumentComplete
	EventComplete         = domain.EventComplete
)

// Client is the main entry point for the scanner library
type Client struct {
	service *scan.Service
	closers []func() error
}

// NewClient loads .env and the configuration file at path (empty for
// defaults plus environment overrides) and builds a client.
func NewClient(ctx context.Context, path string) (*Client, error) {
	_ = godotenv.Load() // Ignore error if .env doesn't exist

	cfg, err := config.Load(path)
	if err != nil {
		return nil, domain.ConfigError("failed to load configuration", err)
	}
	return NewClientWithConfig(ctx, cfg, nil)
}

// NewClientWithConfig builds a client from cfg. A nil logger discards logs.
func NewClientWithConfig(ctx context.Context, cfg *config.Config, logger *observability.Logger) (*Client, error) {
	if cfg == nil {
		return nil, domain.ConfigError("configuration is required", nil)
	}
	if err := cfg.Validate(); err != nil {
		return nil, domain.ConfigError("invalid configuration", err)
	}
	if logger == nil {
		logger = observability.Nop()
	}

	c := &Client{}

	decoder, err := pdf.NewDecoder(cfg.PDF.TextEngine, cfg.PDF.MaxSizeMB, logger)
	if err != nil {
		return nil, err
	}

	extractor, err := c.newExtractor(cfg.Scan)
	if err != nil {
		c.Close()
		return nil, err
	}

	namer, err := naming.NewNamer(cfg.Output.NameTemplate)
	if err != nil {
		c.Close()
		return nil, err
	}

	saver, err := NewSaver(ctx, cfg.Output, logger)
	if err != nil {
		c.Close()
		return nil, err
	}

	service, err := scan.NewService(decoder, extractor, namer, saver, Options(cfg), logger)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.service = service
	return c, nil
}

func (c *Client) newExtractor(cfg config.ScanConfig) (domain.IdentifierExtractor, error) {
	switch cfg.Strategy {
	case config.StrategyText:
		return identify.NewTextPattern(cfg.Digits)
	case config.StrategyQR:
		return identify.NewSymbol(qr.NewDecoder(true), cfg.SymbolScale)
	case config.StrategyOCR:
		client, err := ocr.New(cfg.OCRLanguage)
		if err != nil {
			return nil, domain.ConfigError("OCR strategy unavailable", err)
		}
		c.closers = append(c.closers, client.Close)
		return identify.NewOCR(client, cfg.Digits, cfg.SymbolScale)
	default:
		return nil, domain.ConfigError(fmt.Sprintf("unknown strategy %q", cfg.Strategy), nil)
	}
}

// Options maps cfg onto pipeline options.
func Options(cfg *config.Config) scan.Options {
	opts := scan.Options{
		Scope:       cfg.Scan.Scope,
		RenderScale: cfg.Scan.RenderScale,
	}
	if cfg.Crop.Enabled {
		opts.Layout = &imaging.Layout{
			BottomMargin: cfg.Crop.BottomMargin,
			Height:       cfg.Crop.Height,
			LeftMargin:   cfg.Crop.LeftMargin,
			RightMargin:  cfg.Crop.RightMargin,
		}
	}
	return opts
}

// NewSaver builds the saver for the configured output driver. Dir and S3
// savers are retried cfg.SaveRetries times.
func NewSaver(ctx context.Context, cfg config.OutputConfig, logger *observability.Logger) (domain.Saver, error) {
	encode := imaging.EncodeOptions{Quality: cfg.JPEGQuality, Width: cfg.Width}

	var saver domain.Saver
	switch cfg.Driver {
	case config.OutputNone:
		return storage.Discard{}, nil
	case config.OutputDir:
		dir, err := storage.NewDirSaver(cfg.Dir, cfg.Overwrite, encode, logger)
		if err != nil {
			return nil, err
		}
		saver = dir
	case config.OutputS3:
		s3Saver, err := storage.NewS3Saver(ctx, storage.S3Options{
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			Prefix:    cfg.S3.Prefix,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
		}, encode, logger)
		if err != nil {
			return nil, err
		}
		saver = s3Saver
	default:
		return nil, domain.ConfigError(fmt.Sprintf("unknown output driver %q", cfg.Driver), nil)
	}

	if cfg.SaveRetries > 0 {
		saver = storage.NewRetrying(saver, storage.DefaultRetryConfig(cfg.SaveRetries), logger)
	}
	return saver, nil
}

// Scan runs inputs through the pipeline. Events are sent to eventCh without
// blocking when it is non-nil. On cancellation the partial report is
// returned together with the context's error.
func (c *Client) Scan(ctx context.Context, inputs []Input, eventCh chan<- StreamEvent) (*Report, error) {
	return c.service.Run(ctx, inputs, eventCh)
}

// Stream runs Scan in the background. The event channel is closed once the
// report has been sent on the result channel.
func (c *Client) Stream(ctx context.Context, inputs []Input) (<-chan StreamEvent, <-chan Result) {
	eventCh := make(chan StreamEvent, 100)
	resultCh := make(chan Result, 1)

	go func() {
		defer close(eventCh)
		report, err := c.service.Run(ctx, inputs, eventCh)
		resultCh <- Result{Report: report, Err: err}
		close(resultCh)
	}()

	return eventCh, resultCh
}

// Result is the outcome of a streamed scan.
type Result struct {
	Report *Report
	Err    error
}

// Close cleans up resources
func (c *Client) Close() error {
	var errs []error
	for _, closeFn := range c.closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}
