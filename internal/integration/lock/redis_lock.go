// Package lock implements the per-report import lock.
package lock

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/btc-tracker/backend/internal/application/adapter"
)

const keyPrefix = "btc-tracker:import-lock:"

// releaseScript deletes the key only while it still holds the caller's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLock is an ImportLock shared by every process using the same Redis.
// Locks expire after ttl so a crashed holder cannot block a report forever.
type RedisLock struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisLock creates a new RedisLock.
func NewRedisLock(client *redis.Client, ttl time.Duration) adapter.ImportLock {
	return &RedisLock{client: client, ttl: ttl}
}

// Acquire implements adapter.ImportLock.
func (l *RedisLock) Acquire(ctx context.Context, reportID string) (string, bool, error) {
	token := uuid.New().String()
	ok, err := l.client.SetNX(ctx, keyPrefix+reportID, token, l.ttl).Result()
	if err != nil {
		return "", false, err
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// Release implements adapter.ImportLock.
func (l *RedisLock) Release(ctx context.Context, reportID, token string) error {
	err := releaseScript.Run(ctx, l.client, []string{keyPrefix + reportID}, token).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}
