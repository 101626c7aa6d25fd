package scan

import (
	"context"
	"time"

	"github.com/spherical/pdf-scanner/internal/domain"
	"github.com/spherical/pdf-scanner/internal/observability"
)

// documentRun carries the per-document state of a run.
type documentRun struct {
	service *Service
	index   int
	name    string
	report  *domain.Report
	eventCh chan<- domain.StreamEvent
	logger  *observability.Logger
}

// page runs extract, crop, name, emit and save for page n. matched reports
// whether an identifier was found. A non-nil error means the run was
// cancelled; every other outcome is recorded in the report.
func (d *documentRun) page(ctx context.Context, doc domain.Document, n int) (matched bool, err error) {
	s := d.service

	p, err := doc.Page(ctx, n)
	if err != nil {
		return false, d.fail(ctx, n, domain.ErrorTypeRender, err)
	}
	page := newCachedPage(p)

	id, found, err := s.extractor.Extract(ctx, page)
	if err != nil {
		return false, d.fail(ctx, n, domain.TypeOf(err), err)
	}
	if !found {
		if s.opts.Scope == ScopePage {
			d.record(n, domain.ErrorTypeNoMatch, "no identifier found on page")
		}
		d.logger.Debug().Int("page", n).Msg("No identifier on page")
		return false, nil
	}

	raster, err := page.Render(ctx, s.opts.RenderScale)
	if err != nil {
		return true, d.fail(ctx, n, domain.ErrorTypeRender, err)
	}
	if s.cropper != nil {
		if raster, _, err = s.cropper.Crop(raster); err != nil {
			return true, d.fail(ctx, n, domain.TypeOf(err), err)
		}
	}

	filename, err := s.namer.NameFor(id.Value)
	if err != nil {
		return true, d.fail(ctx, n, domain.ErrorTypeNoIdentifier, err)
	}

	artifact := domain.Artifact{
		DocumentIndex: d.index,
		DocumentName:  d.name,
		PageNumber:    n,
		Identifier:    id,
		Filename:      filename,
		Image:         raster,
	}
	d.report.Artifacts = append(d.report.Artifacts, artifact)
	s.emitEvent(d.eventCh, domain.StreamEvent{
		Type:          domain.EventArtifact,
		DocumentIndex: d.index,
		PageNumber:    n,
		Payload:       artifact,
		Timestamp:     time.Now(),
	})
	d.logger.Info().
		Int("page", n).
		Str("identifier", id.Value).
		Str("filename", filename).
		Msg("Artifact emitted")

	if s.saver != nil {
		if err := s.saver.Save(ctx, artifact); err != nil {
			if cancelled(ctx, err) {
				return true, ctx.Err()
			}
			d.logger.Warn().Err(err).Str("filename", filename).Msg("Failed to save artifact")
			d.record(n, domain.ErrorTypeIO, err.Error())
		}
	}
	return true, nil
}

// fail records a page failure for err, unless err is the run's own
// cancellation, which is returned instead.
func (d *documentRun) fail(ctx context.Context, n int, reason domain.ErrorType, err error) error {
	if cancelled(ctx, err) {
		return ctx.Err()
	}
	d.logger.Warn().Err(err).Int("page", n).Str("reason", string(reason)).Msg("Page failed")
	d.record(n, reason, err.Error())
	return nil
}

func (d *documentRun) record(n int, reason domain.ErrorType, message string) {
	failure := domain.Failure{
		DocumentIndex: d.index,
		DocumentName:  d.name,
		PageNumber:    n,
		Reason:        reason,
		Message:       message,
	}
	d.report.Failures = append(d.report.Failures, failure)
	d.report.Stats.FailedPages++

	d.service.emitEvent(d.eventCh, domain.StreamEvent{
		Type:          domain.EventPageFailed,
		DocumentIndex: d.index,
		PageNumber:    n,
		Payload:       failure,
		Timestamp:     time.Now(),
	})
}

// cachedPage memoises renders by scale so the extractor and the cropper
// share one rasterisation of the page.
type cachedPage struct {
	domain.Page
	rasters map[float64]*domain.RasterImage
}

func newCachedPage(p domain.Page) *cachedPage {
	return &cachedPage{Page: p, rasters: make(map[float64]*domain.RasterImage)}
}

func (c *cachedPage) Render(ctx context.Context, scale float64) (*domain.RasterImage, error) {
	if img, ok := c.rasters[scale]; ok {
		return img, nil
	}
	img, err := c.Page.Render(ctx, scale)
	if err != nil {
		return nil, err
	}
	c.rasters[scale] = img
	return img, nil
}
