package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis key 前缀
const maxScoreKeyPrefix = "greenlight:max:"

// RedisCache Redis 缓存，可在多个求解进程之间共享
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache 创建 Redis 缓存，ttl 为 0 表示不过期
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// Get 读取可达最高分
func (rc *RedisCache) Get(ctx context.Context, key string) (int, bool, error) {
	score, err := rc.client.Get(ctx, maxScoreKeyPrefix+key).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("读取缓存失败: %w", err)
	}
	return score, true, nil
}

// Set 写入可达最高分
func (rc *RedisCache) Set(ctx context.Context, key string, score int) error {
	return rc.client.Set(ctx, maxScoreKeyPrefix+key, score, rc.ttl).Err()
}

// Close 关闭连接
func (rc *RedisCache) Close() error {
	return rc.client.Close()
}
