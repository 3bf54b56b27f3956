package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Hoossayn/hottakes-backend/internal/config"
	"github.com/redis/go-redis/v9"
)

// TTL applied to cached counters and stats. Refreshed on access so active
// profiles stay warm.
const counterTTL = time.Hour

type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache initializes Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	return &RedisCache{Client: redis.NewClient(opts)}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return c.Client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	return c.Client.Get(ctx, key).Result()
}

func (c *RedisCache) Del(ctx context.Context, keys ...string) error {
	return c.Client.Del(ctx, keys...).Err()
}

// KeyForReceivedCount generates the key for a user's inbound take count.
func (c *RedisCache) KeyForReceivedCount(username string) string {
	return fmt.Sprintf("takes:received:%s", username)
}

// KeyForStats generates the key for a user's aggregated stats blob.
func (c *RedisCache) KeyForStats(username string) string {
	return fmt.Sprintf("takes:stats:%s", username)
}

// GetCount reads a cached counter. A cache miss returns (0, false, nil).
func (c *RedisCache) GetCount(ctx context.Context, key string) (int64, bool, error) {
	val, err := c.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	} else if err != nil {
		return 0, false, err
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, nil // treat unparsable value as a miss
	}
	// refresh TTL on access
	_ = c.Client.Expire(ctx, key, counterTTL).Err()
	return n, true, nil
}

// SetCount stores a counter with the standard TTL.
func (c *RedisCache) SetCount(ctx context.Context, key string, count int64) error {
	return c.Client.Set(ctx, key, count, counterTTL).Err()
}
