/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package lookupcache

import (
	"context"
	"time"

	"github.com/chainguard-dev/clog"
	"github.com/jellydator/ttlcache/v3"
)

// Cache memoizes the results of an expensive lookup for a bounded time.
type Cache[K comparable, V any] struct {
	inner *ttlcache.Cache[K, V]
}

// New creates a cache whose entries expire ttl after insertion and which
// holds at most capacity entries.
func New[K comparable, V any](ttl time.Duration, capacity uint64) *Cache[K, V] {
	return &Cache[K, V]{
		inner: ttlcache.New[K, V](
			ttlcache.WithTTL[K, V](ttl),
			ttlcache.WithCapacity[K, V](capacity),
			// A hit must not extend an entry's lifetime: freshness is
			// measured from insertion.
			ttlcache.WithDisableTouchOnHit[K, V](),
		),
	}
}

// GetOrCompute returns the cached value for key if it is still fresh;
// otherwise it invokes compute, stores the result, and returns it. A compute
// error propagates to the caller and nothing is stored.
func (c *Cache[K, V]) GetOrCompute(ctx context.Context, key K, compute func(context.Context) (V, error)) (V, error) {
	if item := c.inner.Get(key); item != nil {
		clog.FromContext(ctx).With("key", key).Debug("cache hit")
		return item.Value(), nil
	}
	return c.refresh(ctx, key, compute)
}

// ForceRefresh recomputes the value for key regardless of freshness and
// stores the result. A compute error propagates and leaves any existing
// entry untouched.
func (c *Cache[K, V]) ForceRefresh(ctx context.Context, key K, compute func(context.Context) (V, error)) (V, error) {
	return c.refresh(ctx, key, compute)
}

// Invalidate drops the entry for key, if any.
func (c *Cache[K, V]) Invalidate(key K) {
	c.inner.Delete(key)
}

func (c *Cache[K, V]) refresh(ctx context.Context, key K, compute func(context.Context) (V, error)) (V, error) {
	clog.FromContext(ctx).With("key", key).Debug("cache miss, computing")
	value, err := compute(ctx)
	if err != nil {
		var zero V
		return zero, err
	}
	c.inner.Set(key, value, ttlcache.DefaultTTL)
	return value, nil
}
