/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package workspace

import (
	"context"
	"time"

	"chainguard.dev/judgebuilder/lookupcache"
)

// DefaultTTL is how long an endpoint listing stays fresh.
const DefaultTTL = 5 * time.Minute

// The workspace has exactly one endpoint listing, so the cache is a single
// slot under a fixed key.
const listingKey = "serving-endpoints"

// CachedDirectory fronts a Directory with a TTL cache.
type CachedDirectory struct {
	inner Directory
	cache *lookupcache.Cache[string, []Endpoint]
}

// NewCachedDirectory wraps inner with a listing cache. A non-positive ttl
// uses DefaultTTL.
func NewCachedDirectory(inner Directory, ttl time.Duration) *CachedDirectory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CachedDirectory{
		inner: inner,
		cache: lookupcache.New[string, []Endpoint](ttl, 1),
	}
}

// List returns the endpoint listing, served from cache when fresh. With
// forceRefresh the source is always consulted.
func (c *CachedDirectory) List(ctx context.Context, forceRefresh bool) ([]Endpoint, error) {
	compute := func(ctx context.Context) ([]Endpoint, error) {
		return c.inner.ListServingEndpoints(ctx)
	}
	if forceRefresh {
		return c.cache.ForceRefresh(ctx, listingKey, compute)
	}
	return c.cache.GetOrCompute(ctx, listingKey, compute)
}

// Has reports whether an endpoint with the given name exists.
func (c *CachedDirectory) Has(ctx context.Context, name string) (bool, error) {
	endpoints, err := c.List(ctx, false)
	if err != nil {
		return false, err
	}
	for _, e := range endpoints {
		if e.Name == name {
			return true, nil
		}
	}
	return false, nil
}
