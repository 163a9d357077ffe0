package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fernetbarato/fernet-barato/api/internal/public/domain"
)

const cacheKeyPrefix = "geocode:"

// RedisCache remembers resolved addresses in Redis in front of another Locator.
type RedisCache struct {
	client *redis.Client
	next   Locator
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisCache wraps next with a Redis cache.
func NewRedisCache(client *redis.Client, next Locator, ttl time.Duration, logger *zap.Logger) *RedisCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &RedisCache{client: client, next: next, ttl: ttl, logger: logger}
}

// CacheKey returns the Redis key for an address.
func CacheKey(address string) string {
	return cacheKeyPrefix + normalize(address)
}

func (c *RedisCache) Locate(ctx context.Context, store domain.Store) (domain.Coordinates, bool, error) {
	if strings.TrimSpace(store.Address) == "" {
		return c.next.Locate(ctx, store)
	}
	key := CacheKey(store.Address)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var coords domain.Coordinates
		if jsonErr := json.Unmarshal(raw, &coords); jsonErr == nil && coords.Valid() {
			return coords, true, nil
		}
		c.logger.Warn("discarding corrupt geocode cache entry", zap.String("key", key))
	case !errors.Is(err, redis.Nil):
		// Cache outages fall through to the underlying locator.
		c.logger.Warn("geocode cache read failed", zap.String("key", key), zap.Error(err))
	}

	coords, ok, err := c.next.Locate(ctx, store)
	if err != nil || !ok {
		return coords, ok, err
	}

	if encoded, err := json.Marshal(coords); err == nil {
		if err := c.client.Set(ctx, key, encoded, c.ttl).Err(); err != nil {
			c.logger.Warn("geocode cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return coords, true, nil
}
