// Package retry provides a context-aware retry engine with configurable
// backoff. The scan executor client uses it for transient API failures.
//
// Usage:
//
//	err := retry.Do(ctx, retry.DefaultConfig(), func() error {
//	    return client.fetch()
//	})
package retry

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// Strategy defines the backoff algorithm.
type Strategy int

const (
	// Exponential doubles the delay each attempt: initDelay * 2^attempt.
	Exponential Strategy = iota
	// Linear increases the delay linearly: initDelay * (attempt+1).
	Linear
	// Constant uses the same delay between every attempt.
	Constant
)

// Config controls retry behaviour.
type Config struct {
	MaxAttempts int           // Total attempts (including the first). 0 means no-op.
	InitDelay   time.Duration // Base delay before first retry.
	MaxDelay    time.Duration // Upper bound on any single delay.
	Strategy    Strategy      // Backoff algorithm.
	Jitter      bool          // Add ±25% random jitter to each delay.
}

// DefaultConfig returns 3 attempts with exponential backoff from 500ms
// to 10s, jitter enabled.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 3,
		InitDelay:   500 * time.Millisecond,
		MaxDelay:    10 * time.Second,
		Strategy:    Exponential,
		Jitter:      true,
	}
}

// StopError wraps an error to signal that retrying should stop
// immediately, e.g. on a 4xx response.
type StopError struct {
	Err error
}

func (e *StopError) Error() string { return e.Err.Error() }
func (e *StopError) Unwrap() error { return e.Err }

// Stop wraps err so Do returns it without further attempts.
func Stop(err error) error { return &StopError{Err: err} }

// Do runs fn up to cfg.MaxAttempts times, sleeping between attempts per
// the configured strategy. It returns nil on the first success, the
// wrapped error if fn returns a StopError, ctx.Err() if the context is
// cancelled while waiting, and otherwise the last error.
func Do(ctx context.Context, cfg Config, fn func() error) error {
	if cfg.MaxAttempts <= 0 {
		return nil
	}

	var lastErr error
	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(cfg.delay(attempt - 1)):
			}
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		var stop *StopError
		if errors.As(lastErr, &stop) {
			return stop.Err
		}
	}
	return lastErr
}

func (c Config) delay(attempt int) time.Duration {
	var d time.Duration
	switch c.Strategy {
	case Linear:
		d = c.InitDelay * time.Duration(attempt+1)
	case Constant:
		d = c.InitDelay
	default:
		d = time.Duration(float64(c.InitDelay) * math.Pow(2, float64(attempt)))
	}
	if c.MaxDelay > 0 && d > c.MaxDelay {
		d = c.MaxDelay
	}
	if c.Jitter && d > 0 {
		// ±25%
		jitter := time.Duration(rand.Int64N(int64(d) / 2))
		d = d*3/4 + jitter
	}
	return d
}
