package vision

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"wildguard/models"
)

// cacheTTL bounds retention of analysis results. A re-listed image older
// than this is cheap enough to re-analyze.
const cacheTTL = 30 * 24 * time.Hour

// RedisCache stores vision results keyed by image-URL hash, with a TTL so
// the cache cannot grow without bound.
type RedisCache struct {
	rdb *redis.Client
}

// NewRedisCache creates a RedisCache.
func NewRedisCache(rdb *redis.Client) *RedisCache {
	return &RedisCache{rdb: rdb}
}

func cacheKey(hash string) string {
	return "vision:cache:" + hash
}

// Get returns the cached result for an image hash, if present.
func (c *RedisCache) Get(ctx context.Context, key string) (*models.VisionResult, bool, error) {
	data, err := c.rdb.Get(ctx, cacheKey(key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache read: %w", err)
	}

	var res models.VisionResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, false, fmt.Errorf("cache decode: %w", err)
	}
	return &res, true, nil
}

// Set stores an analysis result under the image hash.
func (c *RedisCache) Set(ctx context.Context, key string, res *models.VisionResult) error {
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.rdb.Set(ctx, cacheKey(key), data, cacheTTL).Err(); err != nil {
		return fmt.Errorf("cache write: %w", err)
	}
	return nil
}
