package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oggyb/speedy-match/internal/config"
)

// Keys holds the key templates used by the cache. Templates are fmt formats.
type Keys struct {
	// Matches is formatted with (userID uint64, language string).
	Matches string
}

// DefaultKeys are the production key templates.
var DefaultKeys = Keys{
	Matches: "speedy_match:matches:user:%d:lang:%s",
}

type RedisCache struct {
	Client *redis.Client
	keys   Keys
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
	return &RedisCache{Client: redis.NewClient(opts), keys: DefaultKeys}
}

// WithKeys returns a copy of the cache using other key templates.
func (c *RedisCache) WithKeys(keys Keys) *RedisCache {
	return &RedisCache{Client: c.Client, keys: keys}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.Client.Close()
}

// KeyForMatches generates Redis key for a user's cached match list
func (c *RedisCache) KeyForMatches(userID uint64, language string) string {
	return fmt.Sprintf(c.keys.Matches, userID, language)
}

// SetMatches stores the ordered candidate ids from a full computation.
// The previous entry is overwritten unconditionally (last write wins).
func (c *RedisCache) SetMatches(ctx context.Context, userID uint64, language string, ids []uint64, ttl time.Duration) error {
	if ids == nil {
		ids = []uint64{}
	}
	payload, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("failed to encode match ids: %w", err)
	}
	return c.Client.Set(ctx, c.KeyForMatches(userID, language), payload, ttl).Err()
}

// GetMatches returns the cached ids and whether the entry existed.
// A hit refreshes the TTL (sliding expiration). Store errors are returned as-is.
func (c *RedisCache) GetMatches(ctx context.Context, userID uint64, language string, ttl time.Duration) ([]uint64, bool, error) {
	key := c.KeyForMatches(userID, language)
	val, err := c.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil // cache miss
	} else if err != nil {
		return nil, false, err
	}

	var ids []uint64
	if err := json.Unmarshal(val, &ids); err != nil {
		return nil, false, fmt.Errorf("corrupt match cache entry %s: %w", key, err)
	}

	// refresh TTL on access
	if err := c.Client.Expire(ctx, key, ttl).Err(); err != nil {
		return nil, false, err
	}
	return ids, true, nil
}

// DeleteMatches drops the user's cached match lists for all given languages.
func (c *RedisCache) DeleteMatches(ctx context.Context, userID uint64, languages ...string) error {
	if len(languages) == 0 {
		return nil
	}
	keys := make([]string, 0, len(languages))
	for _, lang := range languages {
		keys = append(keys, c.KeyForMatches(userID, lang))
	}
	return c.Client.Del(ctx, keys...).Err()
}
