/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package lookupcache_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"chainguard.dev/judgebuilder/lookupcache"
)

func TestGetOrComputeWithinTTL(t *testing.T) {
	t.Parallel()
	cache := lookupcache.New[string, int](time.Minute, 8)

	var calls atomic.Int32
	compute := func(context.Context) (int, error) {
		calls.Add(1)
		return 42, nil
	}

	for range 3 {
		got, err := cache.GetOrCompute(context.Background(), "k", compute)
		if err != nil {
			t.Fatalf("GetOrCompute() error = %v", err)
		}
		if got != 42 {
			t.Fatalf("GetOrCompute() = %d, want 42", got)
		}
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("compute called %d times, want 1", got)
	}
}

func TestGetOrComputeAfterExpiry(t *testing.T) {
	t.Parallel()
	cache := lookupcache.New[string, int](30*time.Millisecond, 8)

	var calls atomic.Int32
	compute := func(context.Context) (int, error) {
		return int(calls.Add(1)), nil
	}

	if got, _ := cache.GetOrCompute(context.Background(), "k", compute); got != 1 {
		t.Fatalf("first GetOrCompute() = %d, want 1", got)
	}

	// Past the TTL the entry is a miss and must recompute.
	time.Sleep(50 * time.Millisecond)
	got, err := cache.GetOrCompute(context.Background(), "k", compute)
	if err != nil {
		t.Fatalf("GetOrCompute() error = %v", err)
	}
	if got != 2 {
		t.Errorf("GetOrCompute() after expiry = %d, want 2", got)
	}
}

func TestComputeFailureNotCached(t *testing.T) {
	t.Parallel()
	cache := lookupcache.New[string, int](time.Minute, 8)

	boom := errors.New("upstream unavailable")
	var calls atomic.Int32
	failing := func(context.Context) (int, error) {
		calls.Add(1)
		return 0, boom
	}

	if _, err := cache.GetOrCompute(context.Background(), "k", failing); !errors.Is(err, boom) {
		t.Fatalf("GetOrCompute() error = %v, want %v", err, boom)
	}
	// The failure must not occupy the slot: the next read computes again.
	if _, err := cache.GetOrCompute(context.Background(), "k", failing); !errors.Is(err, boom) {
		t.Fatalf("GetOrCompute() error = %v, want %v", err, boom)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("compute called %d times, want 2", got)
	}
}

func TestForceRefreshBypassesTTL(t *testing.T) {
	t.Parallel()
	cache := lookupcache.New[string, int](time.Minute, 8)

	var calls atomic.Int32
	compute := func(context.Context) (int, error) {
		return int(calls.Add(1)), nil
	}

	if got, _ := cache.GetOrCompute(context.Background(), "k", compute); got != 1 {
		t.Fatalf("GetOrCompute() = %d, want 1", got)
	}
	got, err := cache.ForceRefresh(context.Background(), "k", compute)
	if err != nil {
		t.Fatalf("ForceRefresh() error = %v", err)
	}
	if got != 2 {
		t.Errorf("ForceRefresh() = %d, want 2", got)
	}
	// The refreshed value is now served from cache.
	if got, _ := cache.GetOrCompute(context.Background(), "k", compute); got != 2 {
		t.Errorf("GetOrCompute() after refresh = %d, want 2", got)
	}
}

func TestForceRefreshFailureKeepsExistingEntry(t *testing.T) {
	t.Parallel()
	cache := lookupcache.New[string, int](time.Minute, 8)

	if _, err := cache.GetOrCompute(context.Background(), "k", func(context.Context) (int, error) {
		return 7, nil
	}); err != nil {
		t.Fatalf("GetOrCompute() error = %v", err)
	}

	boom := errors.New("listing failed")
	if _, err := cache.ForceRefresh(context.Background(), "k", func(context.Context) (int, error) {
		return 0, boom
	}); !errors.Is(err, boom) {
		t.Fatalf("ForceRefresh() error = %v, want %v", err, boom)
	}

	got, err := cache.GetOrCompute(context.Background(), "k", func(context.Context) (int, error) {
		t.Error("compute should not run, entry still fresh")
		return 0, nil
	})
	if err != nil {
		t.Fatalf("GetOrCompute() error = %v", err)
	}
	if got != 7 {
		t.Errorf("GetOrCompute() = %d, want 7", got)
	}
}

func TestInvalidate(t *testing.T) {
	t.Parallel()
	cache := lookupcache.New[string, int](time.Minute, 8)

	var calls atomic.Int32
	compute := func(context.Context) (int, error) {
		return int(calls.Add(1)), nil
	}

	if got, _ := cache.GetOrCompute(context.Background(), "k", compute); got != 1 {
		t.Fatalf("GetOrCompute() = %d, want 1", got)
	}
	cache.Invalidate("k")
	if got, _ := cache.GetOrCompute(context.Background(), "k", compute); got != 2 {
		t.Errorf("GetOrCompute() after invalidate = %d, want 2", got)
	}
}

func TestConcurrentAccess(t *testing.T) {
	t.Parallel()
	cache := lookupcache.New[int, int](time.Minute, 64)

	var wg sync.WaitGroup
	for i := range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			key := i % 4
			got, err := cache.GetOrCompute(context.Background(), key, func(context.Context) (int, error) {
				return key * 10, nil
			})
			if err != nil {
				t.Errorf("GetOrCompute(%d) error = %v", key, err)
			}
			if got != key*10 {
				t.Errorf("GetOrCompute(%d) = %d, want %d", key, got, key*10)
			}
		}()
	}
	wg.Wait()
}
