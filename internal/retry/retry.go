// Package retry provides a bounded retry combinator with pluggable error
// classification. The attempt budget lives here so callers iterating over
// work units never have to fold retry counting into their loop index.
package retry

import (
	"context"
	"time"

	"github.com/wallet-refbot/internal/logging"
)

// Status tags the terminal state of a retried operation
type Status string

const (
	// StatusSuccess means the operation eventually succeeded
	StatusSuccess Status = "success"
	// StatusExhausted means every attempt failed with a retryable error
	StatusExhausted Status = "exhausted"
	// StatusFailed means an attempt failed with a non-retryable error
	StatusFailed Status = "failed"
	// StatusCancelled means the context was cancelled before completion
	StatusCancelled Status = "cancelled"
)

// Config configures retry behavior
type Config struct {
	MaxAttempts int
	Delay       time.Duration // fixed wait between attempts
	IsRetryable func(error) bool
}

// Result describes how the retried operation ended
type Result struct {
	Status   Status
	Attempts int
	Err      error // last error for any non-success status
}

// Func is an operation that can be retried
type Func func(ctx context.Context, attempt int) error

// Do runs fn until it succeeds, returns a non-retryable error, exhausts the
// attempt budget, or the context is cancelled. A nil IsRetryable treats every
// error as retryable.
func Do(ctx context.Context, cfg Config, fn Func) *Result {
	logger := logging.FromContext(ctx)

	isRetryable := cfg.IsRetryable
	if isRetryable == nil {
		isRetryable = func(error) bool { return true }
	}

	result := &Result{}

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		result.Attempts = attempt

		if ctx.Err() != nil {
			result.Status = StatusCancelled
			result.Err = ctx.Err()
			return result
		}

		err := fn(ctx, attempt)
		if err == nil {
			result.Status = StatusSuccess
			if attempt > 1 {
				logger.WithField("attempts", attempt).Info("Operation succeeded after retry")
			}
			return result
		}

		result.Err = err

		if !isRetryable(err) {
			result.Status = StatusFailed
			return result
		}

		if attempt >= cfg.MaxAttempts {
			logger.WithFields(map[string]interface{}{
				"attempts": attempt,
				"error":    err.Error(),
			}).Warn("Operation failed after max retry attempts")
			break
		}

		logger.WithFields(map[string]interface{}{
			"attempt":     attempt,
			"maxAttempts": cfg.MaxAttempts,
			"error":       err.Error(),
		}).Warn("Operation failed, retrying")

		if cfg.Delay > 0 {
			select {
			case <-time.After(cfg.Delay):
			case <-ctx.Done():
				result.Status = StatusCancelled
				result.Err = ctx.Err()
				return result
			}
		}
	}

	result.Status = StatusExhausted
	return result
}
