// Package cache provides Redis-backed caches and locks for the analytics
// and maintenance paths.
package cache

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/licentry/licentry/internal/shared/logger"
)

// StatsCache caches serialized analytics payloads keyed by report name.
// Analytics reads dominate writes, so short TTLs keep the dashboards cheap
// without risking stale anomaly data.
type StatsCache interface {
	Get(ctx context.Context, report string) ([]byte, error)
	Set(ctx context.Context, report string, payload []byte) error
	Invalidate(ctx context.Context, report string) error
}

const (
	statsKeyPrefix = "verification:stats:"
	baseStatsTTL   = 60 * time.Second
	statsTTLJitter = 20 * time.Second // anti-stampede
)

// RedisStatsCache implements StatsCache on Redis strings
type RedisStatsCache struct {
	client *redis.Client
	logger logger.Interface
}

// NewRedisStatsCache creates a new Redis-based analytics cache
func NewRedisStatsCache(client *redis.Client, logger logger.Interface) *RedisStatsCache {
	return &RedisStatsCache{
		client: client,
		logger: logger,
	}
}

func (c *RedisStatsCache) key(report string) string {
	return statsKeyPrefix + report
}

// Get retrieves a cached payload; a nil slice means cache miss
func (c *RedisStatsCache) Get(ctx context.Context, report string) ([]byte, error) {
	payload, err := c.client.Get(ctx, c.key(report)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get stats from cache: %w", err)
	}
	return payload, nil
}

// Set stores a payload with a jittered TTL
func (c *RedisStatsCache) Set(ctx context.Context, report string, payload []byte) error {
	if err := c.client.Set(ctx, c.key(report), payload, statsTTLWithJitter()).Err(); err != nil {
		return fmt.Errorf("failed to set stats in cache: %w", err)
	}

	c.logger.Debugw("analytics payload cached",
		"report", report,
		"bytes", len(payload),
	)
	return nil
}

// Invalidate removes a cached payload
func (c *RedisStatsCache) Invalidate(ctx context.Context, report string) error {
	if err := c.client.Del(ctx, c.key(report)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate stats cache: %w", err)
	}
	return nil
}

// statsTTLWithJitter returns a randomized TTL to prevent cache stampede.
func statsTTLWithJitter() time.Duration {
	jitter := time.Duration(rand.Int64N(int64(statsTTLJitter)))
	return baseStatsTTL + jitter
}

// NopStatsCache is used when Redis is not configured. Every lookup misses.
type NopStatsCache struct{}

func (NopStatsCache) Get(ctx context.Context, report string) ([]byte, error) { return nil, nil }

func (NopStatsCache) Set(ctx context.Context, report string, payload []byte) error { return nil }

func (NopStatsCache) Invalidate(ctx context.Context, report string) error { return nil }
