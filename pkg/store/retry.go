package store

import (
	"context"
	"time"

	apperr "github.com/matzehuels/boardviz/pkg/errors"
)

const connectAttempts = 3

// retryDelay is the wait before the first retry; it doubles after each attempt.
var retryDelay = time.Second

// retryable reports whether a failed connection attempt is worth repeating.
func retryable(err error) bool {
	return apperr.Is(err, apperr.ErrCodeStoreUnavailable)
}

// withRetry calls connect up to connectAttempts times with exponential backoff.
// Only STORE_UNAVAILABLE errors trigger a retry.
func withRetry[S Store](ctx context.Context, connect func() (S, error)) (S, error) {
	delay := retryDelay
	var (
		zero    S
		lastErr error
	)

	for i := 0; i < connectAttempts; i++ {
		s, err := connect()
		if err == nil {
			return s, nil
		}
		if lastErr = err; !retryable(err) {
			return zero, err
		}

		if i < connectAttempts-1 {
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return zero, lastErr
}
