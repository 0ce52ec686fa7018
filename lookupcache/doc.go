/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package lookupcache provides a small time-bounded memoization layer for
// expensive external lookups, such as workspace serving-endpoint listings and
// trace-derived schema analysis.
//
// It is a point cache over a handful of keys, not a general-purpose LRU:
// capacity is fixed at construction, entries expire after the cache TTL, and
// a failed computation is never stored. Reads after expiry recompute.
//
// # Usage
//
//	cache := lookupcache.New[string, []Endpoint](5*time.Minute, 1)
//
//	endpoints, err := cache.GetOrCompute(ctx, "endpoints", func(ctx context.Context) ([]Endpoint, error) {
//	    return client.ListEndpoints(ctx)
//	})
//
// GetOrCompute returns the cached value when fresh; ForceRefresh bypasses the
// freshness check unconditionally.
//
// # Concurrency
//
// All methods are safe for concurrent use. Concurrent misses on the same key
// may each invoke the compute function; the last completed computation wins.
// This matches the source-of-truth semantics of the lookups being fronted
// (listing endpoints twice is wasteful but harmless).
package lookupcache
