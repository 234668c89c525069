package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache is a Redis-backed ResultCache. Entries are stored as JSON with
// a server-side TTL; a SET per seed id tracks which keys to drop when
// feedback invalidates that seed.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisCache connects to Redis and returns a result cache. The
// connection is verified with a short ping so a misconfigured address
// fails at startup instead of on the first query.
func NewRedisCache(cfg RedisConfig, ttl time.Duration) (*RedisCache, error) {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	return &RedisCache{rdb: rdb, ttl: ttl}, nil
}

// Get returns the cached entry for key, or nil if absent
func (c *RedisCache) Get(ctx context.Context, key string) (*Entry, error) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, fmt.Errorf("failed to decode cached entry: %w", err)
	}
	return &entry, nil
}

// Set stores an entry under key with the cache TTL and indexes it per seed.
// The index sets expire alongside the entries they reference.
func (c *RedisCache) Set(ctx context.Context, key string, entry *Entry, seedIDs []int64) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	pipe := c.rdb.TxPipeline()
	pipe.Set(ctx, key, raw, c.ttl)
	for _, id := range seedIDs {
		indexKey := seedIndexKey(id)
		pipe.SAdd(ctx, indexKey, key)
		pipe.Expire(ctx, indexKey, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// InvalidateSeed drops every cached entry whose query included seedID
func (c *RedisCache) InvalidateSeed(ctx context.Context, seedID int64) error {
	indexKey := seedIndexKey(seedID)

	keys, err := c.rdb.SMembers(ctx, indexKey).Result()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("redis smembers failed: %w", err)
	}

	if len(keys) > 0 {
		if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("redis del failed: %w", err)
		}
	}
	if err := c.rdb.Del(ctx, indexKey).Err(); err != nil {
		return fmt.Errorf("redis del failed: %w", err)
	}
	return nil
}

// Ping checks Redis reachability, used by the health endpoint
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	return c.rdb.Close()
}
