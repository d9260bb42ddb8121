package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oggyb/matrimony-core/internal/config"
)

// ErrMiss is returned by GetJSON when the key is absent.
var ErrMiss = errors.New("cache miss")

const featuredVersionKey = "profiles:featured:version"

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

// SetJSON stores v encoded as JSON with the given TTL.
func (c *RedisCache) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return c.Client.Set(ctx, key, b, ttl).Err()
}

// GetJSON decodes the JSON value under key into v. Returns ErrMiss when
// the key does not exist. An entry that no longer decodes (for example one
// written before a field changed type) is dropped and reported as a miss.
func (c *RedisCache) GetJSON(ctx context.Context, key string, v any) error {
	b, err := c.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	} else if err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		if delErr := c.Client.Del(ctx, key).Err(); delErr != nil {
			return fmt.Errorf("drop undecodable %s: %w", key, delErr)
		}
		return ErrMiss
	}
	return nil
}

// KeyForFeatured generates the Redis key for the anonymous featured listing.
// The key embeds the current listing version so a bump invalidates every
// cached variant at once.
func (c *RedisCache) KeyForFeatured(ctx context.Context, limit int) (string, error) {
	version, err := c.Client.Get(ctx, featuredVersionKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}
	return fmt.Sprintf("profiles:featured:v%d:n%d", version, limit), nil
}

// InvalidateFeatured bumps the listing version. Called whenever moderation
// state or ranking flags change.
func (c *RedisCache) InvalidateFeatured(ctx context.Context) error {
	return c.Client.Incr(ctx, featuredVersionKey).Err()
}
