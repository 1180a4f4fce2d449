// ABOUTME: Retry utilities for provider calls with exponential backoff
// ABOUTME: Context-aware so a cancelled request stops retrying immediately
package util

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"
)

// CalculateBackoff returns exponential backoff with jitter
// Base delay is doubled each attempt, with random jitter up to 25%
func CalculateBackoff(baseDelay time.Duration, attempt int) time.Duration {
	if attempt <= 0 || baseDelay <= 0 {
		return 0
	}
	// Cap attempt to avoid overflow in bit shift (max 30 for safety)
	if attempt > 30 {
		attempt = 30
	}
	backoff := baseDelay * time.Duration(1<<uint(attempt))
	if backoff > 30*time.Second || backoff <= 0 {
		backoff = 30 * time.Second
	}
	// Add jitter: -25% to +25% using auto-seeded math/rand/v2
	half := int64(backoff) / 2
	if half <= 0 {
		return backoff
	}
	jitter := time.Duration(rand.Int64N(half)) - backoff/4
	return backoff + jitter
}

// Sleep waits for d or until ctx is done, whichever comes first
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err so Retry gives up without further attempts
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

// Retry calls fn up to maxRetries+1 times with CalculateBackoff between attempts.
// It stops on success, on a Permanent error, or when ctx is done.
func Retry(ctx context.Context, maxRetries int, baseDelay time.Duration, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			if err := Sleep(ctx, CalculateBackoff(baseDelay, attempt)); err != nil {
				return fmt.Errorf("%w (last error: %w)", err, lastErr)
			}
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		if IsPermanent(err) {
			return err
		}
		lastErr = fmt.Errorf("attempt %d: %w", attempt+1, err)
		if ctx.Err() != nil {
			return lastErr
		}
	}
	return fmt.Errorf("failed after %d attempts: %w", maxRetries+1, lastErr)
}
