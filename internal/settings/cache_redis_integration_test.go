//go:build integration

package settings_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"incentra/internal/platform/config"
	platformredis "incentra/internal/platform/redis"
	"incentra/internal/settings"
	"incentra/pkg/testutil/containers"
)

type RedisCacheSuite struct {
	suite.Suite
	redis  *containers.RedisContainer
	client *platformredis.Client
}

func TestRedisCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisCacheSuite))
}

func (s *RedisCacheSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.redis = mgr.GetRedis(s.T())

	client, err := platformredis.New(config.RedisConfig{URL: s.redis.Addr})
	s.Require().NoError(err)
	s.client = client
}

func (s *RedisCacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisCacheSuite) TestReadThroughCachesStoreValue() {
	ctx := context.Background()
	store := settings.NewInMemoryStore()
	cache := settings.NewRedisCache(store, s.client, time.Minute)

	s.Require().NoError(store.Put(ctx, settings.KeyWeights, []byte(`{"jurisdiction":50}`)))

	// First read populates the cache.
	value, err := cache.Get(ctx, settings.KeyWeights)
	s.Require().NoError(err)
	s.JSONEq(`{"jurisdiction":50}`, string(value))

	// A direct store change is invisible until invalidation.
	s.Require().NoError(store.Put(ctx, settings.KeyWeights, []byte(`{"jurisdiction":60}`)))
	cached, err := cache.Get(ctx, settings.KeyWeights)
	s.Require().NoError(err)
	s.JSONEq(`{"jurisdiction":50}`, string(cached))
}

func (s *RedisCacheSuite) TestPutInvalidatesCache() {
	ctx := context.Background()
	store := settings.NewInMemoryStore()
	cache := settings.NewRedisCache(store, s.client, time.Minute)

	s.Require().NoError(cache.Put(ctx, settings.KeyWeights, []byte(`{"jurisdiction":50}`)))
	warm, err := cache.Get(ctx, settings.KeyWeights)
	s.Require().NoError(err)
	s.JSONEq(`{"jurisdiction":50}`, string(warm))

	s.Require().NoError(cache.Put(ctx, settings.KeyWeights, []byte(`{"jurisdiction":70}`)))
	fresh, err := cache.Get(ctx, settings.KeyWeights)
	s.Require().NoError(err)
	s.JSONEq(`{"jurisdiction":70}`, string(fresh))
}

func (s *RedisCacheSuite) TestMissingKeyReturnsNil() {
	ctx := context.Background()
	cache := settings.NewRedisCache(settings.NewInMemoryStore(), s.client, time.Minute)

	value, err := cache.Get(ctx, "unset-key")
	s.Require().NoError(err)
	s.Nil(value)
}
