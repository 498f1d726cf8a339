package backend

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"time"

	"inderbu-scheduler/internal/scheduler"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
)

// CachedFetcher memoizes availability per query key for a short TTL and
// collapses concurrent identical fetches into one backend call.
type CachedFetcher struct {
	next  scheduler.AvailabilityFetcher
	cache *expirable.LRU[string, scheduler.Availability]
	group singleflight.Group
	log   *slog.Logger
}

func NewCachedFetcher(next scheduler.AvailabilityFetcher, size int, ttl time.Duration, log *slog.Logger) *CachedFetcher {
	if size <= 0 {
		size = 256
	}

	return &CachedFetcher{
		next:  next,
		cache: expirable.NewLRU[string, scheduler.Availability](size, nil, ttl),
		log:   log,
	}
}

func (c *CachedFetcher) FetchAvailability(ctx context.Context, q scheduler.AvailabilityQuery) (scheduler.Availability, error) {
	const op = "backend.CachedFetcher.FetchAvailability"

	key := q.Key()
	if a, ok := c.cache.Get(key); ok {
		c.log.Debug("Availability cache hit", slog.String("op", op), slog.String("query", key))
		return maps.Clone(a), nil
	}

	v, err, shared := c.group.Do(key, func() (any, error) {
		a, err := c.next.FetchAvailability(ctx, q)
		if err != nil {
			return nil, err
		}
		c.cache.Add(key, a)
		return a, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if shared {
		c.log.Debug("Availability fetch shared", slog.String("op", op), slog.String("query", key))
	}

	return maps.Clone(v.(scheduler.Availability)), nil
}

// Invalidate drops the cached entry for q so the next fetch reaches the backend.
func (c *CachedFetcher) Invalidate(q scheduler.AvailabilityQuery) {
	key := q.Key()
	c.group.Forget(key)
	c.cache.Remove(key)
}

func (c *CachedFetcher) Len() int {
	return c.cache.Len()
}

// Cached is a Client whose availability reads go through a CachedFetcher.
type Cached struct {
	*Client
	cache *CachedFetcher
}

func NewCached(c *Client, size int, ttl time.Duration) *Cached {
	return &Cached{Client: c, cache: NewCachedFetcher(c, size, ttl, c.log)}
}

func (c *Cached) FetchAvailability(ctx context.Context, q scheduler.AvailabilityQuery) (scheduler.Availability, error) {
	return c.cache.FetchAvailability(ctx, q)
}

func (c *Cached) Invalidate(q scheduler.AvailabilityQuery) {
	c.cache.Invalidate(q)
}
