package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// SubmitLocks guards against the same add-doctor submission reaching the backend twice.
type SubmitLocks struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSubmitLocks(rdb *redis.Client, ttl time.Duration) *SubmitLocks {
	return &SubmitLocks{rdb: rdb, ttl: ttl}
}

// Acquire returns false when token is already held.
func (l *SubmitLocks) Acquire(ctx context.Context, token string) (bool, error) {
	return l.rdb.SetNX(ctx, submitKey(token), time.Now().UTC().Format(time.RFC3339Nano), l.ttl).Result()
}

func (l *SubmitLocks) Release(ctx context.Context, token string) error {
	return l.rdb.Del(ctx, submitKey(token)).Err()
}

func submitKey(token string) string { return "doctors:submit:" + token }
