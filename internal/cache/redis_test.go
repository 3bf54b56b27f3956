package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hoossayn/hottakes-backend/internal/cache"
	"github.com/Hoossayn/hottakes-backend/internal/config"
)

func setupCache(t *testing.T) (*cache.RedisCache, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()
	return cache.NewRedisCache(cfg), mr
}

func TestGetCountMissAndHit(t *testing.T) {
	ctx := context.Background()
	c, _ := setupCache(t)

	key := c.KeyForReceivedCount("alice")

	_, ok, err := c.GetCount(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.SetCount(ctx, key, 42))

	count, ok, err := c.GetCount(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(42), count)
}

func TestGetCountRefreshesTTL(t *testing.T) {
	ctx := context.Background()
	c, mr := setupCache(t)

	key := c.KeyForReceivedCount("bob")
	require.NoError(t, c.SetCount(ctx, key, 7))

	// burn most of the TTL, then read; the access must push expiry back out
	mr.FastForward(55 * time.Minute)
	_, ok, err := c.GetCount(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(30 * time.Minute)
	_, ok, err = c.GetCount(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok, "TTL should have been refreshed on access")
}

func TestGetCountTreatsGarbageAsMiss(t *testing.T) {
	ctx := context.Background()
	c, mr := setupCache(t)

	require.NoError(t, mr.Set("takes:received:carol", "not-a-number"))

	_, ok, err := c.GetCount(ctx, c.KeyForReceivedCount("carol"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDel(t *testing.T) {
	ctx := context.Background()
	c, _ := setupCache(t)

	require.NoError(t, c.SetCount(ctx, "a", 1))
	require.NoError(t, c.SetCount(ctx, "b", 2))
	require.NoError(t, c.Del(ctx, "a", "b"))

	_, ok, err := c.GetCount(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)
}
