package cache

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	listKeyPrefix = "doctors:list:"
	listGenKey    = "doctors:list:gen"
)

// ListCache stores backend list responses keyed by their canonical query.
// Invalidation bumps a generation counter, so every key written before it
// becomes unreachable without scanning.
type ListCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewListCache(rdb *redis.Client, ttl time.Duration) *ListCache {
	return &ListCache{rdb: rdb, ttl: ttl}
}

// Lookup returns the cached body for query and the generation it was read at.
// Pass the generation back to Store so a response fetched before an
// invalidation is never stored under the newer generation.
func (c *ListCache) Lookup(ctx context.Context, query string) ([]byte, int64, bool, error) {
	gen, err := c.generation(ctx)
	if err != nil {
		return nil, 0, false, err
	}
	b, err := c.rdb.Get(ctx, listKey(gen, query)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, gen, false, nil
	}
	if err != nil {
		return nil, gen, false, err
	}
	return b, gen, true, nil
}

func (c *ListCache) Store(ctx context.Context, gen int64, query string, body []byte) error {
	return c.rdb.Set(ctx, listKey(gen, query), body, c.ttl).Err()
}

func (c *ListCache) Invalidate(ctx context.Context) error {
	return c.rdb.Incr(ctx, listGenKey).Err()
}

func (c *ListCache) generation(ctx context.Context) (int64, error) {
	gen, err := c.rdb.Get(ctx, listGenKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func listKey(gen int64, query string) string {
	return listKeyPrefix + "v" + strconv.FormatInt(gen, 10) + ":" + query
}
