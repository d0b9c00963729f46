// Package cache holds the Redis-backed state of the API: the per-IP token
// buckets that throttle /register and /login.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter calls sit on the request path of the credential endpoints and fail
// open, so a slow Redis must give up quickly rather than stall logins.
const (
	commandTimeout = 250 * time.Millisecond
	dialTimeout    = 2 * time.Second
)

// Cache wraps the Redis client used by the rate limiter.
type Cache struct {
	client *redis.Client
}

// New connects to the Redis server at redisURL and verifies it answers.
func New(ctx context.Context, redisURL string) (*Cache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	opt.ClientName = "storefront"
	opt.DialTimeout = dialTimeout
	opt.ReadTimeout = commandTimeout
	opt.WriteTimeout = commandTimeout
	// One script call per credential request; a small pool is plenty.
	opt.PoolSize = 8
	opt.MinIdleConns = 1
	opt.PoolTimeout = commandTimeout
	opt.ConnMaxIdleTime = 5 * time.Minute

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Cache{client: client}, nil
}

// Ping reports whether Redis is reachable, for /readyz.
func (c *Cache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}

// Close closes the Redis client.
func (c *Cache) Close() error {
	return c.client.Close()
}
