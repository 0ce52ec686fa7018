/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package poller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chainguard-dev/clog"
)

// ErrExhausted is returned when every attempt saw a transient miss. The last
// probe error is wrapped alongside it.
var ErrExhausted = errors.New("polling attempts exhausted")

// Config bounds a polling loop.
type Config struct {
	// BaseDelay is the wait after the first attempt. Each subsequent wait
	// doubles.
	BaseDelay time.Duration `env:"BASE_DELAY"`

	// MaxAttempts is the total number of probes, including the first.
	MaxAttempts int `env:"MAX_ATTEMPTS"`
}

// Validate checks that the configuration describes a runnable loop.
func (c Config) Validate() error {
	if c.BaseDelay <= 0 {
		return fmt.Errorf("base delay must be positive, got %v", c.BaseDelay)
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max attempts must be at least 1, got %d", c.MaxAttempts)
	}
	return nil
}

// Delay returns the wait after the given zero-based attempt.
func (c Config) Delay(attempt int) time.Duration {
	return c.BaseDelay << attempt
}

// Poll probes for a result until it is found, a permanent error occurs, the
// attempt budget is spent, or ctx is cancelled.
//
// A probe error for which isTransient returns true means "not there yet" and
// schedules another attempt; any other error aborts immediately. When the
// budget runs out the last transient error is wrapped in ErrExhausted.
// operation names the loop in logs.
func Poll[T any](ctx context.Context, cfg Config, operation string, isTransient func(error) bool, probe func(context.Context) (T, error)) (T, error) {
	var zero T
	if err := cfg.Validate(); err != nil {
		return zero, fmt.Errorf("invalid poll config for %s: %w", operation, err)
	}
	log := clog.FromContext(ctx).With("operation", operation)

	var lastErr error
	for attempt := range cfg.MaxAttempts {
		got, err := probe(ctx)
		if err == nil {
			if attempt > 0 {
				log.InfoContextf(ctx, "poll resolved on attempt %d/%d", attempt+1, cfg.MaxAttempts)
			}
			return got, nil
		}
		if !isTransient(err) {
			return zero, err
		}
		lastErr = err

		if attempt == cfg.MaxAttempts-1 {
			break
		}
		delay := cfg.Delay(attempt)
		log.InfoContextf(ctx, "attempt %d/%d pending, next probe in %v", attempt+1, cfg.MaxAttempts, delay)
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}
	}
	return zero, fmt.Errorf("%w after %d attempts for %s: %v", ErrExhausted, cfg.MaxAttempts, operation, lastErr)
}
