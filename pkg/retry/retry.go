// Package retry wraps fatal-class external calls in bounded exponential
// backoff. Best-effort pipeline steps deliberately bypass this package.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Config bounds a retried operation.
type Config struct {
	MaxTries        uint
	InitialInterval time.Duration
}

// DefaultConfig returns the bounds applied when a config is zero-valued.
func DefaultConfig() Config {
	return Config{
		MaxTries:        3,
		InitialInterval: 500 * time.Millisecond,
	}
}

func (c Config) normalize() Config {
	d := DefaultConfig()
	if c.MaxTries == 0 {
		c.MaxTries = d.MaxTries
	}
	if c.InitialInterval <= 0 {
		c.InitialInterval = d.InitialInterval
	}
	return c
}

// Do runs op with exponential backoff until it succeeds, returns a
// permanent error, the attempt bound is reached, or ctx is cancelled.
func Do[T any](ctx context.Context, cfg Config, op func() (T, error)) (T, error) {
	cfg = cfg.normalize()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = cfg.InitialInterval

	return backoff.Retry(ctx, op,
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(cfg.MaxTries),
	)
}

// Permanent marks err as non-retryable for Do.
func Permanent(err error) error {
	return backoff.Permanent(err)
}
