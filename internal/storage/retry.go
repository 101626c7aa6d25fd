package storage

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/spherical/pdf-scanner/internal/domain"
	"github.com/spherical/pdf-scanner/internal/observability"
)

const (
	defaultInitialBackoff = 500 * time.Millisecond
	defaultMaxBackoff     = 10 * time.Second
)

// RetryConfig holds retry configuration
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultRetryConfig returns the retry configuration for maxRetries retries.
func DefaultRetryConfig(maxRetries int) RetryConfig {
	return RetryConfig{
		MaxRetries:     maxRetries,
		InitialBackoff: defaultInitialBackoff,
		MaxBackoff:     defaultMaxBackoff,
	}
}

// calculateBackoff calculates exponential backoff duration
func calculateBackoff(attempt int, config RetryConfig) time.Duration {
	backoff := float64(config.InitialBackoff) * math.Pow(2, float64(attempt))
	if backoff > float64(config.MaxBackoff) {
		backoff = float64(config.MaxBackoff)
	}
	return time.Duration(backoff)
}

// shouldRetry reports whether a save error is transient. Encoding and
// validation faults fail the same way on every attempt.
func shouldRetry(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	switch domain.TypeOf(err) {
	case domain.ErrorTypeValidation, domain.ErrorTypeConfig:
		return false
	}
	return true
}

// Retrying retries a Saver with exponential backoff. The pipeline still sees
// a single Save call per artifact.
type Retrying struct {
	next   domain.Saver
	config RetryConfig
	logger *observability.Logger
}

// NewRetrying wraps next. A config with MaxRetries == 0 calls next once.
func NewRetrying(next domain.Saver, config RetryConfig, logger *observability.Logger) *Retrying {
	if logger == nil {
		logger = observability.Nop()
	}
	return &Retrying{
		next:   next,
		config: config,
		logger: logger.WithComponent("retrying_saver"),
	}
}

// Save implements domain.Saver.
func (r *Retrying) Save(ctx context.Context, artifact domain.Artifact) error {
	var lastErr error

	for attempt := 0; attempt <= r.config.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := r.next.Save(ctx, artifact)
		if err == nil {
			return nil
		}
		lastErr = err

		if !shouldRetry(err) || attempt == r.config.MaxRetries {
			break
		}

		backoff := calculateBackoff(attempt, r.config)
		r.logger.Warn().
			Err(err).
			Str("filename", artifact.Filename).
			Int("attempt", attempt+1).
			Dur("backoff", backoff).
			Msg("Save failed, retrying")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}

	if r.config.MaxRetries == 0 || !shouldRetry(lastErr) {
		return lastErr
	}
	return domain.IOError(fmt.Sprintf("save of %s failed after %d retries", artifact.Filename, r.config.MaxRetries), lastErr)
}
