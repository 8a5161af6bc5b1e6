package cache

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/storesync/backend/internal/domain/store"
)

// RedisStatusCache implements store.StatusCache using Redis. Flags carry no
// TTL; they are invalidated explicitly on offboarding.
type RedisStatusCache struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisStatusCache creates a status cache on an existing Redis client
func NewRedisStatusCache(client *redis.Client) *RedisStatusCache {
	return &RedisStatusCache{
		client:    client,
		keyPrefix: "store:initial_sync:",
	}
}

func (c *RedisStatusCache) key(storeID uuid.UUID) string {
	return c.keyPrefix + storeID.String()
}

// MarkInitialSyncComplete records that a store finished its first full sync
func (c *RedisStatusCache) MarkInitialSyncComplete(ctx context.Context, storeID uuid.UUID) error {
	if err := c.client.Set(ctx, c.key(storeID), "1", 0).Err(); err != nil {
		return fmt.Errorf("failed to set initial sync flag: %w", err)
	}
	return nil
}

// InitialSyncComplete reports (known, complete)
func (c *RedisStatusCache) InitialSyncComplete(ctx context.Context, storeID uuid.UUID) (bool, bool, error) {
	val, err := c.client.Get(ctx, c.key(storeID)).Result()
	if err == redis.Nil {
		return false, false, nil
	}
	if err != nil {
		return false, false, fmt.Errorf("failed to read initial sync flag: %w", err)
	}
	return true, val == "1", nil
}

// Invalidate drops the cached flag for a store
func (c *RedisStatusCache) Invalidate(ctx context.Context, storeID uuid.UUID) error {
	return c.client.Del(ctx, c.key(storeID)).Err()
}

// Close is a no-op; the shared client is owned by the caller
func (c *RedisStatusCache) Close() error {
	return nil
}

// Ensure RedisStatusCache implements store.StatusCache
var _ store.StatusCache = (*RedisStatusCache)(nil)
