package leaderboard

import (
	"context"
	"time"

	"github.com/arcadeforge/scoreforge/pkgs/helpers/clients"
)

// Aggregator is the cache-aware entry point over the page walk.
type Aggregator struct {
	fetcher *Fetcher
	cache   *cache
}

func NewAggregator(base string, cacheTTL time.Duration, alerts clients.Alerter) *Aggregator {
	return &Aggregator{
		fetcher: NewFetcher(base, alerts),
		cache:   newCache(cacheTTL),
	}
}

// Get returns the cached payload for gameID if fresh, otherwise fetches
// and re-caches it.
func (a *Aggregator) Get(ctx context.Context, gameID int64) (*Payload, error) {
	payload, _, err := a.GetWithCacheInfo(ctx, gameID)
	return payload, err
}

func (a *Aggregator) GetWithCacheInfo(ctx context.Context, gameID int64) (*Payload, bool, error) {
	now := time.Now()
	if payload, hit := a.cache.get(gameID, now); hit {
		return payload, true, nil
	}

	payload, err := a.fetcher.FetchAll(ctx, gameID)
	if err != nil {
		return nil, false, err
	}
	a.cache.put(gameID, payload, now)
	return payload, false, nil
}
