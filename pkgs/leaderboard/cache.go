package leaderboard

import (
	"sync"
	"time"
)

// cache maps gameId to its last aggregated payload, single mutex
// guarded; readers copy the payload out under the lock.
type cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[int64]cacheEntry
}

type cacheEntry struct {
	fetchedAt time.Time
	payload   *Payload
}

func newCache(ttl time.Duration) *cache {
	return &cache{ttl: ttl, entries: make(map[int64]cacheEntry)}
}

func (c *cache) get(gameID int64, now time.Time) (*Payload, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[gameID]
	if !ok || now.Sub(e.fetchedAt) >= c.ttl {
		return nil, false
	}
	cp := *e.payload
	return &cp, true
}

func (c *cache) put(gameID int64, payload *Payload, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[gameID] = cacheEntry{fetchedAt: now, payload: payload}
}
