package cache

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/licentry/licentry/internal/shared/logger"
)

// MaintenanceLock serializes destructive maintenance jobs across instances.
// A held lock expires on its own if the holder dies mid-job.
type MaintenanceLock interface {
	// Acquire attempts to take the named lock. The returned token must be
	// passed back to Release; an empty token means the lock is held elsewhere.
	Acquire(ctx context.Context, name string, ttl time.Duration) (string, error)
	Release(ctx context.Context, name string, token string) error
}

const lockKeyPrefix = "maintenance:lock:"

// releaseScript deletes the lock only when the caller still holds it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisMaintenanceLock implements MaintenanceLock with SET NX
type RedisMaintenanceLock struct {
	client *redis.Client
	logger logger.Interface
}

// NewRedisMaintenanceLock creates a new Redis-based maintenance lock
func NewRedisMaintenanceLock(client *redis.Client, logger logger.Interface) *RedisMaintenanceLock {
	return &RedisMaintenanceLock{
		client: client,
		logger: logger,
	}
}

func (l *RedisMaintenanceLock) key(name string) string {
	return lockKeyPrefix + name
}

// Acquire attempts to take the named lock
func (l *RedisMaintenanceLock) Acquire(ctx context.Context, name string, ttl time.Duration) (string, error) {
	token, err := newLockToken()
	if err != nil {
		return "", err
	}

	ok, err := l.client.SetNX(ctx, l.key(name), token, ttl).Result()
	if err != nil {
		return "", fmt.Errorf("failed to acquire maintenance lock: %w", err)
	}
	if !ok {
		l.logger.Debugw("maintenance lock held elsewhere", "lock", name)
		return "", nil
	}

	l.logger.Debugw("maintenance lock acquired", "lock", name, "ttl", ttl)
	return token, nil
}

// Release drops the lock if the token still matches
func (l *RedisMaintenanceLock) Release(ctx context.Context, name string, token string) error {
	if err := releaseScript.Run(ctx, l.client, []string{l.key(name)}, token).Err(); err != nil {
		return fmt.Errorf("failed to release maintenance lock: %w", err)
	}
	return nil
}

func newLockToken() (string, error) {
	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate lock token: %w", err)
	}
	return hex.EncodeToString(raw), nil
}

// NopMaintenanceLock is used when Redis is not configured. It always grants
// the lock, which is correct for single-instance deployments.
type NopMaintenanceLock struct{}

func (NopMaintenanceLock) Acquire(ctx context.Context, name string, ttl time.Duration) (string, error) {
	return "local", nil
}

func (NopMaintenanceLock) Release(ctx context.Context, name string, token string) error {
	return nil
}
