package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var errRetryable = errors.New("retryable")
var errFatal = errors.New("fatal")

func isRetryable(err error) bool { return errors.Is(err, errRetryable) }

func TestDoSucceedsFirstAttempt(t *testing.T) {
	calls := 0
	result := Do(context.Background(), Config{MaxAttempts: 3, IsRetryable: isRetryable},
		func(ctx context.Context, attempt int) error {
			calls++
			return nil
		})

	assert.Equal(t, StatusSuccess, result.Status)
	assert.Equal(t, 1, result.Attempts)
	assert.Equal(t, 1, calls)
	assert.NoError(t, result.Err)
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	calls := 0
	result := Do(context.Background(), Config{MaxAttempts: 3, IsRetryable: isRetryable},
		func(ctx context.Context, attempt int) error {
			calls++
			if calls < 3 {
				return errRetryable
			}
			return nil
		})

	assert.Equal(t, StatusSuccess, result.Status)
	assert.Equal(t, 3, result.Attempts)
}

func TestDoExhaustsAttemptBudget(t *testing.T) {
	calls := 0
	result := Do(context.Background(), Config{MaxAttempts: 3, IsRetryable: isRetryable},
		func(ctx context.Context, attempt int) error {
			calls++
			return errRetryable
		})

	assert.Equal(t, StatusExhausted, result.Status)
	assert.Equal(t, 3, result.Attempts)
	assert.Equal(t, 3, calls)
	assert.ErrorIs(t, result.Err, errRetryable)
}

func TestDoStopsOnNonRetryableError(t *testing.T) {
	calls := 0
	result := Do(context.Background(), Config{MaxAttempts: 3, IsRetryable: isRetryable},
		func(ctx context.Context, attempt int) error {
			calls++
			return errFatal
		})

	assert.Equal(t, StatusFailed, result.Status)
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, result.Err, errFatal)
}

func TestDoObservesCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	result := Do(ctx, Config{MaxAttempts: 3, IsRetryable: isRetryable},
		func(ctx context.Context, attempt int) error {
			calls++
			return errRetryable
		})

	assert.Equal(t, StatusCancelled, result.Status)
	assert.Equal(t, 0, calls)
}

func TestDoCancelledDuringDelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	result := Do(ctx, Config{MaxAttempts: 3, Delay: time.Second, IsRetryable: isRetryable},
		func(ctx context.Context, attempt int) error {
			cancel()
			return errRetryable
		})

	assert.Equal(t, StatusCancelled, result.Status)
	assert.Equal(t, 1, result.Attempts)
}
