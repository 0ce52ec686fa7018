/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package poller

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

var errPending = errors.New("not there yet")

func transient(err error) bool { return errors.Is(err, errPending) }

func TestPollSucceedsFirstAttempt(t *testing.T) {
	t.Parallel()
	cfg := Config{BaseDelay: time.Hour, MaxAttempts: 3}

	start := time.Now()
	got, err := Poll(context.Background(), cfg, "test", transient, func(context.Context) (int, error) {
		return 7, nil
	})
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if got != 7 {
		t.Errorf("Poll() = %d, want 7", got)
	}
	// An immediate hit must not wait out any backoff.
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Poll() took %v, want immediate return", elapsed)
	}
}

func TestPollRetriesTransientThenSucceeds(t *testing.T) {
	t.Parallel()
	cfg := Config{BaseDelay: time.Millisecond, MaxAttempts: 5}

	calls := 0
	got, err := Poll(context.Background(), cfg, "test", transient, func(context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errPending
		}
		return "ready", nil
	})
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if got != "ready" {
		t.Errorf("Poll() = %q, want %q", got, "ready")
	}
	if calls != 3 {
		t.Errorf("probe called %d times, want 3", calls)
	}
}

func TestPollPermanentErrorAborts(t *testing.T) {
	t.Parallel()
	cfg := Config{BaseDelay: time.Millisecond, MaxAttempts: 5}

	permanent := errors.New("run failed")
	calls := 0
	_, err := Poll(context.Background(), cfg, "test", transient, func(context.Context) (int, error) {
		calls++
		return 0, permanent
	})
	if !errors.Is(err, permanent) {
		t.Fatalf("Poll() error = %v, want %v", err, permanent)
	}
	if errors.Is(err, ErrExhausted) {
		t.Error("Poll() permanent error must not be reported as exhaustion")
	}
	if calls != 1 {
		t.Errorf("probe called %d times, want 1", calls)
	}
}

func TestPollExhaustsBudget(t *testing.T) {
	t.Parallel()
	cfg := Config{BaseDelay: time.Millisecond, MaxAttempts: 4}

	calls := 0
	_, err := Poll(context.Background(), cfg, "test", transient, func(context.Context) (int, error) {
		calls++
		return 0, errPending
	})
	if !errors.Is(err, ErrExhausted) {
		t.Fatalf("Poll() error = %v, want ErrExhausted", err)
	}
	if calls != 4 {
		t.Errorf("probe called %d times, want 4", calls)
	}
}

func TestPollContextCancellation(t *testing.T) {
	t.Parallel()
	cfg := Config{BaseDelay: time.Hour, MaxAttempts: 3}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := Poll(ctx, cfg, "test", transient, func(context.Context) (int, error) {
			return 0, errPending
		})
		done <- err
	}()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Poll() error = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Poll() did not return after cancellation")
	}
}

func TestDelaySchedule(t *testing.T) {
	t.Parallel()
	cfg := Config{BaseDelay: 2 * time.Second, MaxAttempts: 7}

	var got []time.Duration
	for attempt := range cfg.MaxAttempts - 1 {
		got = append(got, cfg.Delay(attempt))
	}
	want := []time.Duration{
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		16 * time.Second,
		32 * time.Second,
		64 * time.Second,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("delay schedule mismatch (-want +got):\n%s", diff)
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{{
		name: "valid",
		cfg:  Config{BaseDelay: time.Second, MaxAttempts: 5},
	}, {
		name:    "zero delay",
		cfg:     Config{MaxAttempts: 5},
		wantErr: true,
	}, {
		name:    "zero attempts",
		cfg:     Config{BaseDelay: time.Second},
		wantErr: true,
	}, {
		name:    "negative delay",
		cfg:     Config{BaseDelay: -time.Second, MaxAttempts: 5},
		wantErr: true,
	}}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if err := tc.cfg.Validate(); (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %t", err, tc.wantErr)
			}
		})
	}
}
