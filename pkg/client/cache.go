package client

import (
	"context"
	"sync"
)

// Cache keys, one per server collection. Invalidating a key forces the next
// read of that collection to hit the API again.
const (
	KeyFriends            = "friends"
	KeyRecommendedUsers   = "users"
	KeyOutgoingRequests   = "outgoingFriendReqs"
	KeyFriendRequestsFeed = "friendRequests"
)

// QueryCache is an explicit key-value store for fetched collections. Views
// hold a handle to one cache and pull through it; there is no global
// instance. Safe for concurrent use.
type QueryCache struct {
	mu      sync.RWMutex
	entries map[string]any
}

func NewQueryCache() *QueryCache {
	return &QueryCache{entries: make(map[string]any)}
}

func (c *QueryCache) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	value, ok := c.entries[key]
	return value, ok
}

func (c *QueryCache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
}

// Invalidate marks the given collections stale by dropping them; the next
// fetch recomputes from the source of truth.
func (c *QueryCache) Invalidate(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.entries, key)
	}
}

// fetchCached returns the cached value for key, or calls fetch and caches
// the result. A fetch failure caches nothing, so prior state stays intact.
func fetchCached[T any](ctx context.Context, cache *QueryCache, key string, fetch func(context.Context) (T, error)) (T, error) {
	if cached, ok := cache.Get(key); ok {
		if value, ok := cached.(T); ok {
			return value, nil
		}
	}

	value, err := fetch(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	cache.Set(key, value)
	return value, nil
}
