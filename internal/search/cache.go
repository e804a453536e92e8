package search

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	platformredis "vero/internal/platform/redis"
)

const cacheKeyPrefix = "vero:search:"

// RedisCache caches finished result sets in Redis. Errors are logged and
// degrade to cache misses so Redis outages never fail a search.
type RedisCache struct {
	client *platformredis.Client
	logger *slog.Logger
	ttl    time.Duration
}

// NewRedisCache creates a result cache with the given TTL.
func NewRedisCache(client *platformredis.Client, logger *slog.Logger, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, logger: logger, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, query string, topK int) ([]Chunk, bool) {
	raw, err := c.client.Get(ctx, cacheKey(query, topK)).Bytes()
	if err != nil {
		return nil, false
	}
	var results []Chunk
	if err := json.Unmarshal(raw, &results); err != nil {
		c.logger.WarnContext(ctx, "corrupt cache entry dropped", "error", err.Error())
		return nil, false
	}
	return results, true
}

func (c *RedisCache) Set(ctx context.Context, query string, topK int, results []Chunk) {
	raw, err := json.Marshal(results)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, cacheKey(query, topK), raw, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "cache write failed", "error", err.Error())
	}
}

// cacheKey derives a stable key from the NFKC-folded query and topK, so
// equivalent Unicode spellings share an entry.
func cacheKey(query string, topK int) string {
	folded := norm.NFKC.String(strings.ToLower(strings.TrimSpace(query)))
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%d", folded, topK)))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}

var _ Cache = (*RedisCache)(nil)
