package ingest

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/chrisbudnik/cloud-run-jumpstart/internal/logger"
)

// ExistenceCache remembers destinations that were recently confirmed to
// exist, saving a billed metadata call per request. It is advisory: any
// cache trouble degrades to a direct sink check, never to a failed
// request.
type ExistenceCache interface {
	Seen(ctx context.Context, key string) bool
	Mark(ctx context.Context, key string)
}

const existenceTTL = 5 * time.Minute

// RedisCache is a Redis-backed ExistenceCache.
type RedisCache struct {
	client *goredis.Client
	prefix string
}

func NewRedisCache(client *goredis.Client) *RedisCache {
	return &RedisCache{
		client: client,
		prefix: "table-exists:",
	}
}

func (c *RedisCache) key(id string) string {
	return c.prefix + id
}

func (c *RedisCache) Seen(ctx context.Context, id string) bool {
	n, err := c.client.Exists(ctx, c.key(id)).Result()
	if err != nil {
		logger.Warn("existence cache read failed", map[string]any{
			"table_id": id,
			"error":    err.Error(),
		})
		return false
	}
	return n > 0
}

func (c *RedisCache) Mark(ctx context.Context, id string) {
	if err := c.client.Set(ctx, c.key(id), "1", existenceTTL).Err(); err != nil {
		logger.Warn("existence cache write failed", map[string]any{
			"table_id": id,
			"error":    err.Error(),
		})
	}
}
