package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// URLCache is a time-bounded short code to original URL cache backed by Redis.
// Entries are pure performance optimizations: a lost or expired entry only
// costs an extra store read, never correctness.
type URLCache struct {
	client *goredis.Client
}

// New connects to Redis and verifies the connection with a ping.
func New(ctx context.Context, addr, password string, db int) (*URLCache, error) {
	const op = "cache.redis.New"

	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: failed to connect to redis: %w", op, err)
	}

	return &URLCache{client: client}, nil
}

// Get returns the cached original URL for the short code. The second return
// value reports whether the key was present; an absent key is not an error.
func (c *URLCache) Get(ctx context.Context, shortCode string) (string, bool, error) {
	const op = "cache.redis.URLCache.Get"

	val, err := c.client.Get(ctx, shortCode).Result()
	if err == goredis.Nil {
		return "", false, nil
	} else if err != nil {
		return "", false, fmt.Errorf("%s: failed to get cache entry: %w", op, err)
	}

	return val, true, nil
}

// Set stores the original URL under the short code with an absolute TTL,
// unconditionally overwriting any existing entry.
func (c *URLCache) Set(ctx context.Context, shortCode, originalURL string, ttl time.Duration) error {
	const op = "cache.redis.URLCache.Set"

	if err := c.client.Set(ctx, shortCode, originalURL, ttl).Err(); err != nil {
		return fmt.Errorf("%s: failed to set cache entry: %w", op, err)
	}

	return nil
}

func (c *URLCache) Close() error {
	return c.client.Close()
}
