package cache

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// MemorySettings adapts the generic in-memory cache to the settings cache
// port. The context is unused; reads and writes are local.
type MemorySettings struct {
	inner *InMemory[[]byte]
}

// NewMemorySettings creates an in-memory settings cache with the given TTL.
func NewMemorySettings(ttl time.Duration) *MemorySettings {
	return &MemorySettings{inner: NewInMemory[[]byte](ttl)}
}

func (c *MemorySettings) Get(_ context.Context, key string) ([]byte, bool) {
	return c.inner.Get(key)
}

func (c *MemorySettings) Set(_ context.Context, key string, value []byte) {
	c.inner.Set(key, value)
}

func (c *MemorySettings) Delete(_ context.Context, key string) {
	c.inner.Delete(key)
}

// RedisSettings is the Redis-backed settings cache used when multiple
// replicas must share invalidations. Cache errors are logged and treated as
// misses; the cache must never fail a settings read.
type RedisSettings struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisSettings creates a Redis-backed settings cache.
func NewRedisSettings(addr, password string, db int, ttl time.Duration, logger *zap.Logger) *RedisSettings {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisSettings{client: client, ttl: ttl, logger: logger}
}

// Ping verifies connectivity at startup.
func (c *RedisSettings) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisSettings) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.logger.Warn("settings cache: redis get failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return val, true
}

func (c *RedisSettings) Set(ctx context.Context, key string, value []byte) {
	if err := c.client.Set(ctx, key, value, c.ttl).Err(); err != nil {
		c.logger.Warn("settings cache: redis set failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *RedisSettings) Delete(ctx context.Context, key string) {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.logger.Warn("settings cache: redis del failed", zap.String("key", key), zap.Error(err))
	}
}

// Close releases the underlying Redis connection.
func (c *RedisSettings) Close() error {
	return c.client.Close()
}
