package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/greenlight/internal/config"
)

func newTestRedisCache(t *testing.T, ttl time.Duration) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	return NewRedisCache(client, ttl), mr
}

func TestMemoryCache_SetGet(t *testing.T) {
	t.Parallel()

	mc := NewMemoryCache(time.Minute)
	ctx := context.Background()

	_, ok, err := mc.Get(ctx, "board:1,2|discarded:|base:0")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, mc.Set(ctx, "board:1,2|discarded:|base:0", 180))

	score, ok, err := mc.Get(ctx, "board:1,2|discarded:|base:0")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 180, score)
	assert.Equal(t, 1, mc.Len())
}

func TestMemoryCache_Expiry(t *testing.T) {
	t.Parallel()

	mc := NewMemoryCache(time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mc.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "k", 90))

	now = now.Add(30 * time.Second)
	_, ok, _ := mc.Get(ctx, "k")
	assert.True(t, ok)

	now = now.Add(time.Minute)
	_, ok, _ = mc.Get(ctx, "k")
	assert.False(t, ok)
	assert.Equal(t, 0, mc.Len())
}

func TestMemoryCache_SetSweepsExpired(t *testing.T) {
	t.Parallel()

	mc := NewMemoryCache(time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mc.now = func() time.Time { return now }
	ctx := context.Background()

	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, mc.Set(ctx, k, 10))
	}
	assert.Equal(t, 3, mc.Len())

	// 一个 ttl 之内不清理
	now = now.Add(30 * time.Second)
	require.NoError(t, mc.Set(ctx, "d", 20))
	assert.Equal(t, 4, mc.Len())

	// a、b、c 已过期，d 还没有
	now = now.Add(45 * time.Second)
	require.NoError(t, mc.Set(ctx, "e", 30))
	assert.Equal(t, 2, mc.Len())

	score, ok, err := mc.Get(ctx, "d")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 20, score)
}

func TestMemoryCache_NoTTL(t *testing.T) {
	t.Parallel()

	mc := NewMemoryCache(0)
	now := time.Now()
	mc.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "k", 0))
	now = now.Add(24 * time.Hour)

	score, ok, err := mc.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0, score)
}

func TestRedisCache_SetGet(t *testing.T) {
	t.Parallel()

	rc, mr := newTestRedisCache(t, time.Hour)
	defer mr.Close()
	ctx := context.Background()

	_, ok, err := rc.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, rc.Set(ctx, "board:11,12|discarded:|base:40", 260))

	score, ok, err := rc.Get(ctx, "board:11,12|discarded:|base:40")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 260, score)

	assert.True(t, mr.Exists(maxScoreKeyPrefix+"board:11,12|discarded:|base:40"))
}

func TestRedisCache_Expiry(t *testing.T) {
	t.Parallel()

	rc, mr := newTestRedisCache(t, time.Minute)
	defer mr.Close()
	ctx := context.Background()

	require.NoError(t, rc.Set(ctx, "k", 70))
	mr.FastForward(2 * time.Minute)

	_, ok, err := rc.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCache_ServerDown(t *testing.T) {
	t.Parallel()

	rc, mr := newTestRedisCache(t, time.Minute)
	mr.Close()

	_, ok, err := rc.Get(context.Background(), "k")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestNewResultCache(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	cfg := config.Default()
	cache, err := NewResultCache(ctx, cfg)
	require.NoError(t, err)
	assert.IsType(t, &MemoryCache{}, cache)

	cfg.Cache.Backend = config.CacheNone
	cache, err = NewResultCache(ctx, cfg)
	require.NoError(t, err)
	assert.Nil(t, cache)

	mr := miniredis.RunT(t)
	cfg.Cache.Backend = config.CacheRedis
	cfg.Redis.Addr = mr.Addr()
	cache, err = NewResultCache(ctx, cfg)
	require.NoError(t, err)
	require.IsType(t, &RedisCache{}, cache)
	_ = cache.(*RedisCache).Close()
}
