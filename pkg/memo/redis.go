package memo

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache is a [Store] backed by Redis, for sharing exact-scheduler
// memo entries across driver invocations or across replicas of
// internal/httpapi's service surface.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache wraps an existing Redis client as a [Store].
func NewRedisCache(client *redis.Client) Store {
	return &RedisCache{client: client}
}

// Get retrieves a value from Redis. A missing key is reported as a
// clean miss, not an error.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, Retryable(err)
	}
	return data, true, nil
}

// Set stores a value in Redis with the given ttl (zero means no expiry).
func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return Retryable(err)
	}
	return nil
}

// Delete removes a value from Redis.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return Retryable(err)
	}
	return nil
}

// Close closes the underlying Redis client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Ensure RedisCache implements Store.
var _ Store = (*RedisCache)(nil)
