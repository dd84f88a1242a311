package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"finance-gateway/models"
)

// DefaultCacheTTL is the default lifetime of a cached market data record
const DefaultCacheTTL = 24 * time.Hour

// CacheKey identifies a cached market data record
type CacheKey struct {
	Symbol string
	Kind   models.DataKind
}

func (k CacheKey) String() string {
	return strings.ToUpper(k.Symbol) + ":" + string(k.Kind)
}

// CacheEntry is a cached payload together with its provenance. Entries are
// created on a successful fetch and never mutated afterward.
type CacheEntry struct {
	Payload    any
	Source     string
	InsertedAt time.Time
}

// QuoteCache is a time-bounded store of fetched market data. Get returns
// (nil, nil) on a miss; an entry older than the TTL is treated as absent.
type QuoteCache interface {
	Get(ctx context.Context, key CacheKey) (*CacheEntry, error)
	Put(ctx context.Context, key CacheKey, payload any, source string) error
}

// MemoryCache is the in-process QuoteCache implementation. Expiry is lazy:
// entries are checked against the TTL at lookup time, with no background
// sweep. Concurrent puts for the same key are last-write-wins.
type MemoryCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[CacheKey]CacheEntry
	now     func() time.Time
}

// NewMemoryCache creates a MemoryCache with the given TTL.
// A non-positive TTL falls back to DefaultCacheTTL.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &MemoryCache{
		ttl:     ttl,
		entries: make(map[CacheKey]CacheEntry),
		now:     time.Now,
	}
}

// Get returns the entry for key if it exists and has not expired
func (c *MemoryCache) Get(_ context.Context, key CacheKey) (*CacheEntry, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, nil
	}
	if c.now().Sub(entry.InsertedAt) >= c.ttl {
		return nil, nil
	}
	return &entry, nil
}

// Put stores a payload under key, overwriting any existing entry
func (c *MemoryCache) Put(_ context.Context, key CacheKey, payload any, source string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = CacheEntry{
		Payload:    payload,
		Source:     source,
		InsertedAt: c.now(),
	}
	return nil
}

// Invalidate removes the entry for key, forcing the next lookup to fetch
func (c *MemoryCache) Invalidate(key CacheKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// CleanExpired removes all expired entries and returns how many were dropped
func (c *MemoryCache) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	cutoff := c.now().Add(-c.ttl)
	for key, entry := range c.entries {
		if !entry.InsertedAt.After(cutoff) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of entries currently held, expired or not
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// TTL returns the cache's time-to-live duration
func (c *MemoryCache) TTL() time.Duration {
	return c.ttl
}

var _ QuoteCache = (*MemoryCache)(nil)
