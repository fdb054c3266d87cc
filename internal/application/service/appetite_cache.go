package service

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// AppetiteCache is a small in-process cache for board appetite lookups keyed by
// category ID. Appetite resolution runs on every scoring call, so caching it
// avoids a taxonomy join per rescore. Entries may hold a nil appetite: a
// dangling category link is a legitimate, cacheable answer.
type AppetiteCache struct {
	store *gocache.Cache
}

type appetiteEntry struct {
	appetite *int
}

// NewAppetiteCache creates an appetite cache with the given TTL.
func NewAppetiteCache(ttl time.Duration) *AppetiteCache {
	return &AppetiteCache{
		store: gocache.New(ttl, 2*ttl),
	}
}

// Get returns the cached appetite for the category. The second return value
// distinguishes "cached as nil" from "not cached".
func (c *AppetiteCache) Get(categoryID string) (*int, bool) {
	v, ok := c.store.Get(categoryID)
	if !ok {
		return nil, false
	}
	return v.(appetiteEntry).appetite, true
}

// Set caches the resolved appetite for the category.
func (c *AppetiteCache) Set(categoryID string, appetite *int) {
	c.store.SetDefault(categoryID, appetiteEntry{appetite: appetite})
}

// Flush drops every cached appetite. Called when any theme's board appetite
// changes; per-category invalidation is not worth the bookkeeping at this size.
func (c *AppetiteCache) Flush() {
	c.store.Flush()
}
