// Package redis provides the optional Redis connection behind the search
// result cache. The whole backend runs without it; an empty VERO_REDIS_URL
// simply disables caching.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"vero/internal/platform/config"
)

// Client embeds the go-redis client so cache code can use its commands
// directly while health probing stays in one place.
type Client struct {
	*redis.Client
}

// New connects to the Redis named by cfg.URL and verifies the connection
// with a ping. An empty URL returns (nil, nil): caching is off, not broken.
func New(cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if cfg.MinIdleConns > 0 {
		opts.MinIdleConns = cfg.MinIdleConns
	}
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout

	client := &Client{Client: redis.NewClient(opts)}

	// Fail at startup, not on the first cached search.
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout(cfg.DialTimeout))
	defer cancel()
	if err := client.Health(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("verify redis connection: %w", err)
	}
	return client, nil
}

// Health reports whether Redis currently answers.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}

func pingTimeout(dial time.Duration) time.Duration {
	if dial <= 0 {
		return 5 * time.Second
	}
	return dial
}
