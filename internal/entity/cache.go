package entity

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultTTL is how long a resolved entity stays cached.
const DefaultTTL = 24 * time.Hour

type cacheEntry struct {
	entity  Entity
	expires time.Time
}

// Cache is a get-or-fetch cache in front of a Resolver. Entries expire after
// the TTL; failed fetches are not cached. Concurrent misses for the same QID
// share one fetch.
type Cache struct {
	resolver Resolver
	ttl      time.Duration
	now      func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry
	group   singleflight.Group
}

// NewCache wraps resolver with a cache. A non-positive ttl uses DefaultTTL.
func NewCache(resolver Resolver, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		resolver: resolver,
		ttl:      ttl,
		now:      time.Now,
		entries:  make(map[string]cacheEntry),
	}
}

// Resolve returns the cached entity or fetches it.
func (c *Cache) Resolve(ctx context.Context, qid string) (Entity, error) {
	return c.Get(ctx, qid, false)
}

// Get returns the entity for qid. With refresh, any cached entry is ignored
// and replaced by a fresh fetch.
func (c *Cache) Get(ctx context.Context, qid string, refresh bool) (Entity, error) {
	if !refresh {
		if e, ok := c.lookup(qid); ok {
			return e, nil
		}
	}

	// The shared fetch outlives any single caller; the resolver bounds it.
	fetchCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(qid, func() (any, error) {
		e, err := c.resolver.Resolve(fetchCtx, qid)
		if err != nil {
			return Entity{}, err
		}
		c.store(qid, e)
		return e, nil
	})

	select {
	case <-ctx.Done():
		return Entity{}, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return Entity{}, r.Err
		}
		return r.Val.(Entity), nil
	}
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.evictLocked()
	return len(c.entries)
}

func (c *Cache) lookup(qid string) (Entity, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[qid]
	if !ok {
		return Entity{}, false
	}
	if !c.now().Before(entry.expires) {
		delete(c.entries, qid)
		return Entity{}, false
	}
	return entry.entity, true
}

func (c *Cache) store(qid string, e Entity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.evictLocked()
	c.entries[qid] = cacheEntry{entity: e, expires: c.now().Add(c.ttl)}
}

func (c *Cache) evictLocked() {
	now := c.now()
	for k, entry := range c.entries {
		if !now.Before(entry.expires) {
			delete(c.entries, k)
		}
	}
}
