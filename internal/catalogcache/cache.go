// Package catalogcache keeps a TTL-bounded snapshot of the Shopify SKU
// index so repeated sync runs and previews do not re-walk the whole catalog.
package catalogcache

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/computerwizzy/shopify-inventory-sync/internal/shopify"
)

const defaultTTL = 5 * time.Minute

// FetchFunc produces a fresh SKU index, normally the gateway's
// BuildSKUIndex.
type FetchFunc func(ctx context.Context) (map[string]shopify.CatalogVariant, error)

// Cache hands out the cached index while it is fresh and refetches once it
// expires. One fetch runs at a time; concurrent callers wait for it.
type Cache struct {
	mu        sync.Mutex
	ttl       time.Duration
	fetch     FetchFunc
	index     map[string]shopify.CatalogVariant
	fetchedAt time.Time
	hits      int64
	misses    int64
}

// New creates a cache around the fetch function. A non-positive TTL falls
// back to five minutes.
func New(ttl time.Duration, fetch FetchFunc) *Cache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Cache{ttl: ttl, fetch: fetch}
}

// Index returns the SKU index and the time it was fetched. A stale or empty
// cache triggers a refetch; on fetch failure nothing is cached and the error
// is returned.
func (c *Cache) Index(ctx context.Context) (map[string]shopify.CatalogVariant, time.Time, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.index != nil && time.Since(c.fetchedAt) < c.ttl {
		c.hits++
		return c.index, c.fetchedAt, nil
	}

	c.misses++
	index, err := c.fetch(ctx)
	if err != nil {
		return nil, time.Time{}, err
	}
	c.index = index
	c.fetchedAt = time.Now()
	log.Printf("[CATALOG] Cached SKU index: %d entries", len(index))
	return c.index, c.fetchedAt, nil
}

// Invalidate drops the snapshot; the next Index call refetches.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.index = nil
	c.fetchedAt = time.Time{}
}

// RefreshNow fetches a fresh snapshot regardless of age.
func (c *Cache) RefreshNow(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	index, err := c.fetch(ctx)
	if err != nil {
		return err
	}
	c.index = index
	c.fetchedAt = time.Now()
	log.Printf("[CATALOG] Refreshed SKU index: %d entries", len(index))
	return nil
}

// Stats describes the cache for the stats endpoint.
type Stats struct {
	Entries   int        `json:"entries"`
	Hits      int64      `json:"hits"`
	Misses    int64      `json:"misses"`
	TTL       string     `json:"ttl"`
	FetchedAt *time.Time `json:"fetched_at,omitempty"`
	AgeMs     int64      `json:"age_ms,omitempty"`
}

// Stats returns a snapshot of cache state and counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := Stats{
		Entries: len(c.index),
		Hits:    c.hits,
		Misses:  c.misses,
		TTL:     c.ttl.String(),
	}
	if !c.fetchedAt.IsZero() {
		fetched := c.fetchedAt
		stats.FetchedAt = &fetched
		stats.AgeMs = time.Since(fetched).Milliseconds()
	}
	return stats
}
