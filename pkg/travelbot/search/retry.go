package search

import (
	"context"
	"math/rand/v2"
	"time"
)

// RetryConfig configures the bounded retry policy shared by all clients.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including initial).
	MaxAttempts int

	// InitialBackoff is the starting backoff duration.
	InitialBackoff time.Duration

	// MaxBackoff caps the backoff duration.
	MaxBackoff time.Duration

	// BackoffFactor is the multiplier applied to backoff after each attempt.
	BackoffFactor float64

	// Jitter is the random jitter factor (0.0-1.0).
	Jitter float64
}

// DefaultRetry is the standard retry configuration.
var DefaultRetry = RetryConfig{
	MaxAttempts:    3,
	InitialBackoff: 1 * time.Second,
	MaxBackoff:     30 * time.Second,
	BackoffFactor:  2.0,
	Jitter:         0.1,
}

// NoRetry disables retries.
var NoRetry = RetryConfig{
	MaxAttempts: 1,
}

// withRetry executes fn with bounded retries, respecting context
// cancellation. Only retryable failures (transient, parse) are
// reattempted; auth and quota failures return immediately.
//
// For multi-request operations fn must perform the whole unit, so a
// retry never reuses a partial result from a failed attempt.
func withRetry[T any](ctx context.Context, cfg RetryConfig, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}

	backoff := cfg.InitialBackoff
	var lastErr error

	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !retryable(err) {
			return zero, err
		}

		// Don't sleep after the last attempt.
		if attempt < cfg.MaxAttempts-1 {
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(jittered(backoff, cfg.Jitter)):
			}

			backoff = time.Duration(float64(backoff) * cfg.BackoffFactor)
			if backoff > cfg.MaxBackoff {
				backoff = cfg.MaxBackoff
			}
		}
	}

	return zero, lastErr
}

// jittered returns the backoff duration with jitter applied:
// base +/- (base * jitter * random).
func jittered(base time.Duration, jitter float64) time.Duration {
	if jitter <= 0 {
		return base
	}
	amount := float64(base) * jitter * (rand.Float64()*2 - 1)
	return time.Duration(float64(base) + amount)
}
