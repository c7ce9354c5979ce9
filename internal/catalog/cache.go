// Package catalog holds the time-boxed in-memory catalog and the read-only
// queries served from it.
package catalog

import (
	"context"
	"sync"
	"time"

	"grocery_feed/internal/domain"
)

// Loader runs the full ingestion pipeline. It never fails; a broken
// ingestion yields an empty or partial product list.
type Loader interface {
	Load(ctx context.Context) []domain.Product
}

// Observer receives cache hit/miss notifications.
type Observer interface {
	CacheHit()
	CacheMiss()
}

type Cache struct {
	mu       sync.Mutex
	loader   Loader
	ttl      time.Duration
	entry    *domain.Catalog
	observer Observer
}

func NewCache(loader Loader, ttl time.Duration) *Cache {
	return &Cache{
		loader: loader,
		ttl:    ttl,
	}
}

func (c *Cache) WithObserver(o Observer) *Cache {
	c.observer = o
	return c
}

// Get returns the cached catalog, refreshing it first when it is unset or
// at least ttl old at now. The refresh replaces the entry with whatever the
// loader produced, empty included. Concurrent callers wait for an in-flight
// refresh; the refresh itself ignores cancellation of ctx.
func (c *Cache) Get(ctx context.Context, now time.Time) *domain.Catalog {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.entry != nil && now.Sub(c.entry.CapturedAt) < c.ttl {
		if c.observer != nil {
			c.observer.CacheHit()
		}
		return c.entry
	}

	if c.observer != nil {
		c.observer.CacheMiss()
	}

	products := c.loader.Load(context.WithoutCancel(ctx))
	c.entry = domain.NewCatalog(products, now)
	return c.entry
}

// CapturedAt reports when the current entry was built; zero when unset.
func (c *Cache) CapturedAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entry == nil {
		return time.Time{}
	}
	return c.entry.CapturedAt
}

func (c *Cache) TTL() time.Duration {
	return c.ttl
}
