package csm

import (
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/codeready-toolchain/coordination-core/pkg/projectcontext"
)

// cacheEntry is the per-project TTL cache slot: a snapshot, the time it was
// cached, and a content hash cheap enough to compute on every commit
// (derived from version, since every commit strictly increases it).
type cacheEntry struct {
	snapshot    *projectcontext.ProjectContext
	cachedAt    time.Time
	contentHash string
}

func newCacheEntry(snapshot *projectcontext.ProjectContext) cacheEntry {
	return cacheEntry{
		snapshot:    snapshot,
		cachedAt:    time.Now(),
		contentHash: fmt.Sprintf("v%d", snapshot.Version),
	}
}

// ttlCache bounds memory via an underlying LRU while layering a wall-clock
// TTL check on top — the LRU by itself has no notion of staleness.
type ttlCache struct {
	lru *lru.Cache[string, cacheEntry]
	ttl time.Duration
}

func newTTLCache(size int, ttl time.Duration) (*ttlCache, error) {
	c, err := lru.New[string, cacheEntry](size)
	if err != nil {
		return nil, err
	}
	return &ttlCache{lru: c, ttl: ttl}, nil
}

// get returns the cached snapshot only if it exists and is still within
// TTL; otherwise it reports a miss so the caller falls back to the primary
// map.
func (c *ttlCache) get(projectID string) (*projectcontext.ProjectContext, bool) {
	entry, ok := c.lru.Peek(projectID)
	if !ok {
		return nil, false
	}
	if time.Since(entry.cachedAt) >= c.ttl {
		return nil, false
	}
	return entry.snapshot, true
}

func (c *ttlCache) put(projectID string, snapshot *projectcontext.ProjectContext) {
	c.lru.Add(projectID, newCacheEntry(snapshot))
}

func (c *ttlCache) invalidate(projectID string) {
	c.lru.Remove(projectID)
}

// sweep drops entries whose TTL has elapsed. It never blocks a concurrent
// get/put — the underlying LRU has its own internal locking and this walks
// a point-in-time key snapshot.
func (c *ttlCache) sweep() int {
	removed := 0
	for _, key := range c.lru.Keys() {
		entry, ok := c.lru.Peek(key)
		if !ok {
			continue
		}
		if time.Since(entry.cachedAt) >= c.ttl {
			c.lru.Remove(key)
			removed++
		}
	}
	return removed
}

func (c *ttlCache) len() int {
	return c.lru.Len()
}
