package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/dgallion1/ocrgrid/internal/objstore"
	"github.com/dgallion1/ocrgrid/internal/ocr"
)

// IsRetryable checks if an error is worth retrying: transient answers
// from the OCR service or object storage.
func IsRetryable(err error) bool {
	var ocrErr *ocr.RetryableError
	var storeErr *objstore.RetryableError
	return errors.As(err, &ocrErr) || errors.As(err, &storeErr)
}

// Backoff returns a duration for attempt n (0-indexed) with jitter.
func Backoff(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * time.Second
	if base > 30*time.Second {
		base = 30 * time.Second
	}
	jitter := time.Duration(rand.Int64N(int64(base) / 2))
	return base + jitter
}

const MaxRetries = 3

// backoff is swapped in tests.
var backoff = Backoff

// withRetry runs fn up to MaxRetries times while it fails with a
// retryable error, sleeping between attempts.
func withRetry(ctx context.Context, log *slog.Logger, op string, fn func(context.Context) error) error {
	var lastErr error
	for attempt := range MaxRetries {
		lastErr = fn(ctx)
		if lastErr == nil || !IsRetryable(lastErr) {
			return lastErr
		}
		if attempt == MaxRetries-1 {
			break
		}
		log.Warn("retryable error", "op", op, "attempt", attempt, "error", lastErr)
		select {
		case <-time.After(backoff(attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}
