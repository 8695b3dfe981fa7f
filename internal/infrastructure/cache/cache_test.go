package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestListCacheStoreAndLookup(t *testing.T) {
	_, rdb := newRedis(t)
	ctx := context.Background()
	c := NewListCache(rdb, time.Minute)

	_, gen, hit, err := c.Lookup(ctx, "city=Pune")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Zero(t, gen)

	require.NoError(t, c.Store(ctx, gen, "city=Pune", []byte(`[]`)))
	body, _, hit, err := c.Lookup(ctx, "city=Pune")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, `[]`, string(body))
}

func TestListCacheInvalidate(t *testing.T) {
	_, rdb := newRedis(t)
	ctx := context.Background()
	c := NewListCache(rdb, time.Minute)

	require.NoError(t, c.Store(ctx, 0, "q", []byte(`[1]`)))
	require.NoError(t, c.Invalidate(ctx))

	_, gen, hit, err := c.Lookup(ctx, "q")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, int64(1), gen)

	// a response fetched before the invalidation stays unreachable
	require.NoError(t, c.Store(ctx, 0, "q", []byte(`[1]`)))
	_, _, hit, err = c.Lookup(ctx, "q")
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestListCacheExpires(t *testing.T) {
	mr, rdb := newRedis(t)
	ctx := context.Background()
	c := NewListCache(rdb, time.Second)

	require.NoError(t, c.Store(ctx, 0, "q", []byte(`[]`)))
	mr.FastForward(2 * time.Second)
	_, _, hit, err := c.Lookup(ctx, "q")
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestSubmitLocks(t *testing.T) {
	_, rdb := newRedis(t)
	ctx := context.Background()
	l := NewSubmitLocks(rdb, time.Minute)

	ok, err := l.Acquire(ctx, "tok")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = l.Acquire(ctx, "tok")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, l.Release(ctx, "tok"))
	ok, err = l.Acquire(ctx, "tok")
	require.NoError(t, err)
	assert.True(t, ok)
}
