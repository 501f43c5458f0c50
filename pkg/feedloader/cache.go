package feedloader

import (
	"context"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	redisstore "github.com/eko/gocache/store/redis/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const minimumCacheTTL = time.Second

// PayloadCache stores raw feed payloads keyed by their URL.
type PayloadCache interface {
	Get(ctx context.Context, url string) ([]byte, bool)
	Set(ctx context.Context, url string, payload []byte, ttl time.Duration)
}

type RedisCache struct {
	Cache *cache.Cache[string]
}

func NewRedisCache(client *redis.Client) *RedisCache {
	redisStore := redisstore.NewRedis(client, store.WithExpiration(time.Minute))

	return &RedisCache{
		Cache: cache.New[string](redisStore),
	}
}

func CacheKey(url string) string {
	return "gbfsmap:feed:" + url
}

func (c *RedisCache) Get(ctx context.Context, url string) ([]byte, bool) {
	value, err := c.Cache.Get(ctx, CacheKey(url))
	if err != nil {
		return nil, false
	}
	return []byte(value), true
}

// Set expires the payload after the feed's own ttl, never less than a second.
func (c *RedisCache) Set(ctx context.Context, url string, payload []byte, ttl time.Duration) {
	if ttl < minimumCacheTTL {
		ttl = minimumCacheTTL
	}

	err := c.Cache.Set(ctx, CacheKey(url), string(payload), store.WithExpiration(ttl))
	if err != nil {
		log.Warn().Err(err).Str("url", url).Msg("Failed to cache feed payload")
	}
}
