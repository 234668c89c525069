package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryCache is an in-process ResultCache with lazy TTL expiry and a
// per-seed key index for feedback-driven invalidation. Suited to tests and
// single-node deployments; multi-node deployments use the Redis backend.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryItem
	bySeed  map[int64]map[string]struct{}
	ttl     time.Duration
	now     func() time.Time
}

type memoryItem struct {
	entry     *Entry
	expiresAt time.Time
	seedIDs   []int64
}

// NewMemoryCache creates an in-memory result cache with the given TTL
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &MemoryCache{
		entries: make(map[string]memoryItem),
		bySeed:  make(map[int64]map[string]struct{}),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached entry for key, or nil if absent or expired
func (c *MemoryCache) Get(_ context.Context, key string) (*Entry, error) {
	c.mu.RLock()
	item, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if c.now().After(item.expiresAt) {
		c.mu.Lock()
		// A Set may have refreshed the key since the read lock was dropped
		if current, ok := c.entries[key]; ok && c.now().After(current.expiresAt) {
			c.removeLocked(key)
		}
		c.mu.Unlock()
		return nil, nil
	}
	return item.entry, nil
}

// Set stores an entry under key and indexes it by each seed id
func (c *MemoryCache) Set(_ context.Context, key string, entry *Entry, seedIDs []int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.removeLocked(key)
	c.entries[key] = memoryItem{
		entry:     entry,
		expiresAt: c.now().Add(c.ttl),
		seedIDs:   append([]int64(nil), seedIDs...),
	}
	for _, id := range seedIDs {
		keys, ok := c.bySeed[id]
		if !ok {
			keys = make(map[string]struct{})
			c.bySeed[id] = keys
		}
		keys[key] = struct{}{}
	}
	return nil
}

// InvalidateSeed drops every cached entry whose query included seedID
func (c *MemoryCache) InvalidateSeed(_ context.Context, seedID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.bySeed[seedID] {
		c.removeLocked(key)
	}
	delete(c.bySeed, seedID)
	return nil
}

// removeLocked deletes an entry and its index references. Caller holds mu.
func (c *MemoryCache) removeLocked(key string) {
	item, ok := c.entries[key]
	if !ok {
		return
	}
	delete(c.entries, key)
	for _, id := range item.seedIDs {
		if keys, ok := c.bySeed[id]; ok {
			delete(keys, key)
			if len(keys) == 0 {
				delete(c.bySeed, id)
			}
		}
	}
}
