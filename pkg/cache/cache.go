// Package cache provides a small Redis-backed cache for hot read paths.
// The service runs fine without it; callers treat a nil *Cache as disabled.
package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const countKey = "voicebank:recordings:count"

// Cache wraps a go-redis client.
type Cache struct {
	client *redis.Client
	logger *zap.Logger
}

// New creates a Redis cache client and verifies connectivity.
func New(ctx context.Context, addr, password string, db int, logger *zap.Logger) (*Cache, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	logger.Info("Redis cache connected", zap.String("addr", addr))
	return &Cache{client: rdb, logger: logger}, nil
}

// Close releases the underlying connection.
func (c *Cache) Close() error { return c.client.Close() }

// GetCount returns the cached recording count. ok is false on miss or when
// the cache is unreachable; cache trouble is never a request failure.
func (c *Cache) GetCount(ctx context.Context) (count int64, ok bool) {
	v, err := c.client.Get(ctx, countKey).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("cache get failed", zap.Error(err))
		}
		return 0, false
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// SetCount stores the recording count with a TTL.
func (c *Cache) SetCount(ctx context.Context, count int64, ttl time.Duration) {
	if err := c.client.Set(ctx, countKey, strconv.FormatInt(count, 10), ttl).Err(); err != nil {
		c.logger.Warn("cache set failed", zap.Error(err))
	}
}

// InvalidateCount drops the cached count after a new recording commits.
func (c *Cache) InvalidateCount(ctx context.Context) {
	if err := c.client.Del(ctx, countKey).Err(); err != nil {
		c.logger.Warn("cache invalidate failed", zap.Error(err))
	}
}
