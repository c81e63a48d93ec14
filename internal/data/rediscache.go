package data

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/Olshansk/eth-vs-bitcoin-price/internal/domain"
)

const redisKeyPrefix = "ethbtc:series:"

// RedisCache is the warm tier: series survive process restarts for the TTL
// window so a redeploy does not hammer the upstream. Errors degrade to cache
// misses, Redis being down must never fail a request.
type RedisCache struct {
	client redis.Cmdable
}

// NewRedisCache connects a Redis client for the given address.
func NewRedisCache(addr, password string, db int) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,

		PoolSize:     10,
		MinIdleConns: 2,

		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	return &RedisCache{client: client}
}

// NewRedisCacheWithClient wraps an existing client, used by tests with a mock.
func NewRedisCacheWithClient(client redis.Cmdable) *RedisCache {
	return &RedisCache{client: client}
}

// Get returns the cached series if the key exists and decodes.
func (c *RedisCache) Get(ctx context.Context, key string) (domain.PriceSeries, bool) {
	raw, err := c.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return domain.PriceSeries{}, false
	}
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("redis get failed, treating as miss")
		return domain.PriceSeries{}, false
	}
	var series domain.PriceSeries
	if err := json.Unmarshal(raw, &series); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("redis entry corrupt, treating as miss")
		return domain.PriceSeries{}, false
	}
	if series.Empty() {
		log.Warn().Str("key", key).Msg("redis entry has no points, treating as miss")
		return domain.PriceSeries{}, false
	}
	return series, true
}

// Set stores series under key for ttl.
func (c *RedisCache) Set(ctx context.Context, key string, series domain.PriceSeries, ttl time.Duration) error {
	raw, err := json.Marshal(series)
	if err != nil {
		return fmt.Errorf("marshal series %s: %w", key, err)
	}
	if err := c.client.Set(ctx, redisKeyPrefix+key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Ping reports whether Redis is reachable, for the health endpoint.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
