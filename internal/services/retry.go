package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// RetryPolicy describes a fixed-attempt, fixed-delay retry loop.
type RetryPolicy struct {
	Attempts int
	Delay    time.Duration
}

// Retry runs op until it succeeds, returns a permanent error, or the attempt
// budget is spent. The last error is returned unchanged so callers can wrap it
// with the marker that fits their operation. Errors marked with Permanent are
// returned immediately.
func Retry(ctx context.Context, policy RetryPolicy, logger *slog.Logger, op func(ctx context.Context) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	attempts := policy.Attempts
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
		var perm permanentError
		if errors.As(lastErr, &perm) {
			return perm.err
		}
		if attempt == attempts {
			break
		}
		if logger != nil {
			logger.Warn("attempt failed, retrying",
				slog.Int("attempt", attempt),
				slog.Int("max_attempts", attempts),
				slog.Duration("delay", policy.Delay),
				slog.Any("error", lastErr),
			)
		}
		if policy.Delay > 0 {
			timer := time.NewTimer(policy.Delay)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}
	}
	return fmt.Errorf("after %d attempts: %w", attempts, lastErr)
}

type permanentError struct{ err error }

func (p permanentError) Error() string { return p.err.Error() }

func (p permanentError) Unwrap() error { return p.err }

// Permanent marks err so Retry stops immediately and returns err itself.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanentError{err: err}
}
