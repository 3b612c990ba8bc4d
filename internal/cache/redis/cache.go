// Package redis provides Redis-backed adapters for the URL cache and the
// global uniqueness counter.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a thin wrapper around Redis string commands used as a read-through
// accelerator for short code resolution. A missing key is a normal condition,
// never an error.
type Cache struct {
	client *redis.Client
}

func NewCache(client *redis.Client) *Cache {
	return &Cache{
		client: client,
	}
}

// Get returns the cached value for key. The second return value reports
// whether the key was present.
func (c *Cache) Get(ctx context.Context, key string) (string, bool, error) {
	const op = "cache.redis.Cache.Get"

	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}

		return "", false, fmt.Errorf("%s: failed to get key: %w", op, err)
	}

	return val, true, nil
}

// Set stores value under key. A zero ttl stores the key without expiry;
// callers must not pass a negative ttl.
func (c *Cache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	const op = "cache.redis.Cache.Set"

	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("%s: failed to set key: %w", op, err)
	}

	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (c *Cache) Delete(ctx context.Context, key string) error {
	const op = "cache.redis.Cache.Delete"

	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("%s: failed to delete key: %w", op, err)
	}

	return nil
}
