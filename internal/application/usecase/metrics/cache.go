package metrics

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/btc-tracker/backend/internal/domain/entity"
)

const (
	// DefaultCacheCapacity is the number of entries kept before the oldest is evicted.
	DefaultCacheCapacity = 50

	// DefaultCacheTTL is how long an entry lives without a store mutation.
	DefaultCacheTTL = 10 * time.Minute
)

// Cache is a bounded metrics cache. Entries beyond capacity are evicted
// oldest-first; any store event clears it entirely.
type Cache struct {
	mu       sync.Mutex
	items    *cache.Cache
	order    []string
	capacity int
}

// NewCache creates a new Cache.
func NewCache(capacity int, ttl time.Duration) *Cache {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{
		items:    cache.New(ttl, 2*ttl),
		capacity: capacity,
	}
}

// Get returns the cached metrics for key.
func (c *Cache) Get(key string) (entity.ReportMetrics, bool) {
	v, found := c.items.Get(key)
	if !found {
		return entity.ReportMetrics{}, false
	}
	return v.(entity.ReportMetrics), true
}

// Set stores metrics under key, evicting the oldest entries beyond capacity.
func (c *Cache) Set(key string, m entity.ReportMetrics) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, found := c.items.Get(key); !found {
		// drop keys that expired on their own
		c.order = slices.DeleteFunc(c.order, func(k string) bool {
			_, ok := c.items.Get(k)
			return !ok || k == key
		})
		c.order = append(c.order, key)
	}
	c.items.Set(key, m, cache.DefaultExpiration)

	for len(c.order) > c.capacity {
		c.items.Delete(c.order[0])
		c.order = c.order[1:]
	}
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items.Flush()
	c.order = nil
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	return c.items.ItemCount()
}

// OnStoreEvent invalidates the cache. It is subscribed to the event bus.
func (c *Cache) OnStoreEvent(_ context.Context, event entity.StoreEvent) {
	c.Clear()
	slog.Debug("Metrics cache cleared", "event", event.Name, "reportID", event.ReportID)
}
