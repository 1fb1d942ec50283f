package cache

import (
	"context"
	"time"

	"github.com/Matheuscfs/tgt-contratto-mvp/internal/usecase"
	"github.com/redis/go-redis/v9"
)

// RedisConfirmationCache answers webhook replays without a database
// round trip: sessionID -> orderID. Best effort; the order table's
// unique key is the source of truth, so a cold or flushed cache only
// costs a read.
type RedisConfirmationCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisConfirmationCache(rdb *redis.Client, ttl time.Duration) *RedisConfirmationCache {
	return &RedisConfirmationCache{rdb: rdb, ttl: ttl}
}

func (c *RedisConfirmationCache) Remember(ctx context.Context, sessionID, orderID string) error {
	return c.rdb.Set(ctx, "confirm:"+sessionID, orderID, c.ttl).Err()
}

func (c *RedisConfirmationCache) Recall(ctx context.Context, sessionID string) (string, bool, error) {
	val, err := c.rdb.Get(ctx, "confirm:"+sessionID).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

var _ usecase.ConfirmationCache = (*RedisConfirmationCache)(nil)
