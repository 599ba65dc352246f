package pagecache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// indexPageKey is the fixed logical key under which the rendered landing
// page is cached.
const indexPageKey = "index_page_data"

// Cache is the cached rendering of the storefront landing page. Catalog
// mutations invalidate it; regeneration is idempotent and happens out of
// process.
type Cache interface {
	InvalidateIndex(ctx context.Context) error
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

type RedisCache struct {
	client *redis.Client
}

func (c RedisCache) InvalidateIndex(ctx context.Context) error {
	if err := c.client.Del(ctx, indexPageKey).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}
