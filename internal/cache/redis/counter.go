package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Counter issues strictly increasing values from a shared Redis key via INCR.
// Every instance of the service shares the same sequence, which is what keeps
// generated short codes collision-free across concurrent creators.
type Counter struct {
	client *redis.Client
	key    string
}

func NewCounter(client *redis.Client, key string) *Counter {
	return &Counter{
		client: client,
		key:    key,
	}
}

// Next atomically increments the counter and returns the new value.
func (c *Counter) Next(ctx context.Context) (int64, error) {
	const op = "cache.redis.Counter.Next"

	val, err := c.client.Incr(ctx, c.key).Result()
	if err != nil {
		return 0, fmt.Errorf("%s: failed to increment counter: %w", op, err)
	}

	return val, nil
}
