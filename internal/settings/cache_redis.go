package settings

import (
	"context"
	"time"

	platformredis "incentra/internal/platform/redis"
)

// RedisCache decorates a Store with a read-through Redis cache. Resolution
// happens on every scoring request, so the snapshot is served from Redis and
// only falls through to the backing store on a miss. Writes invalidate the
// cached key so the next read observes the update.
type RedisCache struct {
	store  Store
	client *platformredis.Client
	ttl    time.Duration
}

// NewRedisCache wraps store with a Redis cache. A nil client disables
// caching and returns the store unchanged semantics.
func NewRedisCache(store Store, client *platformredis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{store: store, client: client, ttl: ttl}
}

func (c *RedisCache) cacheKey(key string) string {
	return "incentra:settings:" + key
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	if c.client != nil {
		doc, err := c.client.Get(ctx, c.cacheKey(key)).Bytes()
		if err == nil {
			return doc, nil
		}
		// A plain miss (redis.Nil) and a Redis failure both fall through to
		// the store; a degraded cache must never take resolution down.
	}

	doc, err := c.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if doc != nil && c.client != nil {
		_ = c.client.Set(ctx, c.cacheKey(key), doc, c.ttl).Err()
	}
	return doc, nil
}

func (c *RedisCache) Put(ctx context.Context, key string, value []byte) error {
	if err := c.store.Put(ctx, key, value); err != nil {
		return err
	}
	if c.client != nil {
		_ = c.client.Del(ctx, c.cacheKey(key)).Err()
	}
	return nil
}
