// Package scan runs the batch pipeline: for every page of every document it
// extracts an identifier, crops the signature region, names the artifact and
// hands it to a saver.
package scan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/spherical/pdf-scanner/internal/domain"
	"github.com/spherical/pdf-scanner/internal/imaging"
	"github.com/spherical/pdf-scanner/internal/observability"
)

// Identifier scopes.
const (
	// ScopePage looks for an identifier on every page.
	ScopePage = "page"
	// ScopeDocument stops at the first page that carries an identifier.
	ScopeDocument = "document"
)

// Input is one document of a batch.
type Input struct {
	Name string
	Data []byte
}

// Options configures a Service.
type Options struct {
	Scope       string
	RenderScale float64

	// Layout selects the region to crop. Nil keeps the full page raster.
	Layout *imaging.Layout
}

// DefaultOptions crops with the default layout at scale 1.
func DefaultOptions() Options {
	return Options{
		Scope:       ScopePage,
		RenderScale: 1.0,
		Layout:      &imaging.Layout{BottomMargin: 165, Height: 80},
	}
}

// DocumentStart is the payload of a document_start event.
type DocumentStart struct {
	Name  string `json:"name"`
	Pages int    `json:"pages"`
}

// Service orchestrates the scan of a batch
type Service struct {
	decoder   domain.Decoder
	extractor domain.IdentifierExtractor
	namer     domain.Namer
	saver     domain.Saver
	cropper   *imaging.Cropper
	opts      Options
	logger    *observability.Logger
}

// NewService creates a new scan service. A nil saver keeps artifacts in the
// report only.
func NewService(decoder domain.Decoder, extractor domain.IdentifierExtractor, namer domain.Namer,
	saver domain.Saver, opts Options, logger *observability.Logger) (*Service, error) {
	if decoder == nil || extractor == nil || namer == nil {
		return nil, domain.ConfigError("decoder, extractor and namer are required", nil)
	}
	if opts.Scope == "" {
		opts.Scope = ScopePage
	}
	if opts.Scope != ScopePage && opts.Scope != ScopeDocument {
		return nil, domain.ConfigError(fmt.Sprintf("invalid scope %q", opts.Scope), nil)
	}
	if opts.RenderScale <= 0 {
		return nil, domain.ConfigError(fmt.Sprintf("render scale must be positive, got %g", opts.RenderScale), nil)
	}
	if logger == nil {
		logger = observability.Nop()
	}

	s := &Service{
		decoder:   decoder,
		extractor: extractor,
		namer:     namer,
		saver:     saver,
		opts:      opts,
		logger:    logger.WithComponent("scan"),
	}
	if opts.Layout != nil {
		s.cropper = imaging.NewCropper(*opts.Layout)
	}
	return s, nil
}

// Run scans inputs in order and returns the report. Page and document
// faults are recorded in the report and never stop the batch. When ctx is
// cancelled Run stops before the next page and returns the partial report,
// marked Cancelled, together with ctx.Err().
func (s *Service) Run(ctx context.Context, inputs []Input, eventCh chan<- domain.StreamEvent) (*domain.Report, error) {
	startTime := time.Now()
	report := &domain.Report{
		RunID:     uuid.NewString(),
		Artifacts: []domain.Artifact{},
		Failures:  []domain.Failure{},
	}
	logger := s.logger.WithRun(report.RunID)

	s.emitEvent(eventCh, domain.StreamEvent{
		Type:      domain.EventStart,
		Payload:   fmt.Sprintf("Scanning %d documents with the %s strategy", len(inputs), s.extractor.Strategy()),
		Timestamp: time.Now(),
	})
	logger.Info().
		Int("documents", len(inputs)).
		Str("strategy", s.extractor.Strategy()).
		Str("scope", s.opts.Scope).
		Msg("Starting scan")

	var runErr error
	for i, input := range inputs {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		if err := s.runDocument(ctx, i, input, report, eventCh, logger); err != nil {
			runErr = err
			break
		}
	}

	report.Stats.Documents = len(inputs)
	report.Stats.Artifacts = len(report.Artifacts)
	report.Stats.TotalTime = time.Since(startTime)
	report.Cancelled = runErr != nil

	status := fmt.Sprintf("Scan complete: %d artifacts, %d failures in %v",
		len(report.Artifacts), len(report.Failures), report.Stats.TotalTime)
	if report.Cancelled {
		status = fmt.Sprintf("Scan cancelled: %d artifacts, %d failures", len(report.Artifacts), len(report.Failures))
	}
	s.emitEvent(eventCh, domain.StreamEvent{
		Type:      domain.EventComplete,
		Payload:   status,
		Timestamp: time.Now(),
	})

	logger.Info().
		Int("artifacts", len(report.Artifacts)).
		Int("failures", len(report.Failures)).
		Bool("cancelled", report.Cancelled).
		Dur("duration", report.Stats.TotalTime).
		Msg("Scan finished")

	return report, runErr
}

// runDocument processes one document. It returns an error only when the run
// was cancelled.
func (s *Service) runDocument(ctx context.Context, index int, input Input, report *domain.Report,
	eventCh chan<- domain.StreamEvent, runLogger *observability.Logger) error {
	logger := runLogger.WithDocument(index, input.Name)

	doc, err := s.decoder.Open(ctx, input.Data)
	if err != nil {
		if cancelled(ctx, err) {
			return ctx.Err()
		}
		logger.Warn().Err(err).Msg("Failed to open document")
		s.documentFailure(index, input.Name, domain.ErrorTypeDecode, err.Error(), report, eventCh)
		return nil
	}
	defer func() {
		if err := doc.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close document")
		}
	}()

	pages := doc.NumPages()
	s.emitEvent(eventCh, domain.StreamEvent{
		Type:          domain.EventDocumentStart,
		DocumentIndex: index,
		Payload:       DocumentStart{Name: input.Name, Pages: pages},
		Timestamp:     time.Now(),
	})
	logger.Debug().Int("pages", pages).Msg("Document opened")
	if pages == 0 {
		s.documentFailure(index, input.Name, domain.ErrorTypeNoMatch, "document has no pages", report, eventCh)
		return nil
	}

	d := &documentRun{
		service: s,
		index:   index,
		name:    input.Name,
		report:  report,
		eventCh: eventCh,
		logger:  logger,
	}

	found := false
	for n := 1; n <= pages; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		s.emitEvent(eventCh, domain.StreamEvent{
			Type:          domain.EventPageProcessing,
			DocumentIndex: index,
			PageNumber:    n,
			Payload:       fmt.Sprintf("Processing page %d of %d", n, pages),
			Timestamp:     time.Now(),
		})
		report.Stats.PagesProcessed++

		matched, err := d.page(ctx, doc, n)
		if err != nil {
			return err
		}
		if matched && s.opts.Scope == ScopeDocument {
			found = true
			break
		}
	}

	if s.opts.Scope == ScopeDocument && !found {
		s.documentFailure(index, input.Name, domain.ErrorTypeNoMatch, "no page carries an identifier", report, eventCh)
		return nil
	}

	s.emitEvent(eventCh, domain.StreamEvent{
		Type:          domain.EventDocumentComplete,
		DocumentIndex: index,
		Payload:       fmt.Sprintf("Completed %s", input.Name),
		Timestamp:     time.Now(),
	})
	return nil
}

func (s *Service) documentFailure(index int, name string, reason domain.ErrorType, message string,
	report *domain.Report, eventCh chan<- domain.StreamEvent) {
	failure := domain.Failure{
		DocumentIndex: index,
		DocumentName:  name,
		Reason:        reason,
		Message:       message,
	}
	report.Failures = append(report.Failures, failure)
	report.Stats.FailedDocuments++

	s.emitEvent(eventCh, domain.StreamEvent{
		Type:          domain.EventDocumentFailed,
		DocumentIndex: index,
		Payload:       failure,
		Timestamp:     time.Now(),
	})
}

// emitEvent safely emits an event to the channel
func (s *Service) emitEvent(eventCh chan<- domain.StreamEvent, event domain.StreamEvent) {
	if eventCh != nil {
		select {
		case eventCh <- event:
		default:
			s.logger.Warn().Str("event", string(event.Type)).Msg("Event channel full, dropping event")
		}
	}
}

// cancelled reports whether err is ctx's own cancellation rather than a
// fault of the document.
func cancelled(ctx context.Context, err error) bool {
	return ctx.Err() != nil &&
		(errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded))
}
