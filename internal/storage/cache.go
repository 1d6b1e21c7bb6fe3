// Package storage 搜索结果缓存（键为牌面的结构化键，值为可达最高分），以及模拟对局结果的持久化。
package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/palemoky/greenlight/internal/config"
)

// ResultCache 可达最高分缓存，仅作参考，出错不影响对局
type ResultCache interface {
	Get(ctx context.Context, key string) (int, bool, error)
	Set(ctx context.Context, key string, score int) error
}

type memoryEntry struct {
	score     int
	expiresAt time.Time
}

// MemoryCache 进程内缓存
type MemoryCache struct {
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
	swept   time.Time
	mu      sync.RWMutex
}

// NewMemoryCache 创建进程内缓存，ttl 为 0 表示不过期
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get 读取缓存，过期的条目视为不存在
func (mc *MemoryCache) Get(_ context.Context, key string) (int, bool, error) {
	mc.mu.RLock()
	e, ok := mc.entries[key]
	mc.mu.RUnlock()
	if !ok {
		return 0, false, nil
	}
	if !e.expiresAt.IsZero() && mc.now().After(e.expiresAt) {
		mc.mu.Lock()
		delete(mc.entries, key)
		mc.mu.Unlock()
		return 0, false, nil
	}
	return e.score, true, nil
}

// Set 写入缓存；每过一个 ttl 顺带清理一次过期条目
func (mc *MemoryCache) Set(_ context.Context, key string, score int) error {
	now := mc.now()
	e := memoryEntry{score: score}
	if mc.ttl > 0 {
		e.expiresAt = now.Add(mc.ttl)
	}
	mc.mu.Lock()
	defer mc.mu.Unlock()
	if mc.ttl > 0 && now.Sub(mc.swept) >= mc.ttl {
		mc.sweep(now)
	}
	mc.entries[key] = e
	return nil
}

// sweep 删除所有过期条目，需持有写锁
func (mc *MemoryCache) sweep(now time.Time) {
	for k, e := range mc.entries {
		if now.After(e.expiresAt) {
			delete(mc.entries, k)
		}
	}
	mc.swept = now
}

// Len 当前条目数（含还没清理的过期条目）
func (mc *MemoryCache) Len() int {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return len(mc.entries)
}

// NewResultCache 按配置创建缓存。backend 为 none 时返回 nil。
func NewResultCache(ctx context.Context, cfg *config.Config) (ResultCache, error) {
	switch cfg.Cache.Backend {
	case config.CacheNone:
		return nil, nil
	case config.CacheRedis:
		client, err := Connect(ctx, &cfg.Redis)
		if err != nil {
			return nil, err
		}
		return NewRedisCache(client, cfg.Cache.TTLDuration()), nil
	default:
		return NewMemoryCache(cfg.Cache.TTLDuration()), nil
	}
}

// Connect 连接 Redis 并检查可用性
func Connect(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("连接 Redis 失败: %w", err)
	}
	return client, nil
}
