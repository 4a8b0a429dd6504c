package entable

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Cache is the interface for caching query results.
// Users should implement this interface with their preferred caching solution
// (e.g., Redis, Memcached, in-memory).
type Cache interface {
	// Get retrieves a value from the cache.
	// Returns nil, nil if the key doesn't exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in the cache with an optional TTL.
	// If ttl is 0, the value should not expire.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from the cache.
	Delete(ctx context.Context, key string) error

	// DeletePrefix removes all values with the given prefix.
	DeletePrefix(ctx context.Context, prefix string) error

	// Clear removes all values from the cache.
	Clear(ctx context.Context) error
}

// CacheKey generates a cache key for a query.
type CacheKey struct {
	Table      string
	// Entity is the Go type the rows decode into. Types sharing a table
	// never share entries.
	Entity     string
	Operation  string
	Predicates string
	OrderBy    string
	Limit      int
	Offset     int
}

// String returns the string representation of the cache key.
func (k CacheKey) String() string {
	return k.Table + ":" + k.Entity + ":" + k.Operation + ":" + k.Predicates + ":" + k.OrderBy +
		":" + strconv.Itoa(k.Limit) + ":" + strconv.Itoa(k.Offset)
}

// TablePrefix returns the key prefix shared by all entries of a table.
func TablePrefix(table string) string {
	return table + ":"
}

type memoryEntry struct {
	value   []byte
	expires time.Time // zero means no expiry
}

// MemoryCache is an in-process Cache backed by a map.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryCache returns an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get implements Cache.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if c.expired(e) {
		c.mu.Lock()
		// A Set may have replaced the entry since the read lock was released.
		if e, ok := c.entries[key]; ok && c.expired(e) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, nil
	}
	return e.value, nil
}

func (c *MemoryCache) expired(e memoryEntry) bool {
	return !e.expires.IsZero() && !c.now().Before(e.expires)
}

// Set implements Cache.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := memoryEntry{value: value}
	if ttl > 0 {
		e.expires = c.now().Add(ttl)
	}
	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
	return nil
}

// Delete implements Cache.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

// DeletePrefix implements Cache.
func (c *MemoryCache) DeletePrefix(_ context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
	return nil
}

// Clear implements Cache.
func (c *MemoryCache) Clear(_ context.Context) error {
	c.mu.Lock()
	c.entries = make(map[string]memoryEntry)
	c.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

var _ Cache = (*MemoryCache)(nil)
