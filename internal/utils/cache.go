package utils

import (
	"context"
	"time"

	jsoniter "github.com/json-iterator/go"
	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func GetCacheData[T any](ctx context.Context, rdb *redis.Client, cacheKey string) (*T, error) {
	val, err := rdb.Get(ctx, cacheKey).Result()
	if err == redis.Nil {
		return nil, nil // cache-miss
	} else if err != nil {
		return nil, err
	}

	var data T
	if err := json.Unmarshal([]byte(val), &data); err != nil {
		return nil, err
	}

	return &data, nil
}

func SetCacheData[T any](ctx context.Context, rdb *redis.Client, cacheKey string, data *T, expire time.Duration) error {
	bytes, err := json.Marshal(data)
	if err != nil {
		return err
	}

	return rdb.Set(ctx, cacheKey, bytes, expire).Err()
}

func DeleteCacheData(ctx context.Context, rdb *redis.Client, cacheKey string) error {
	return rdb.Del(ctx, cacheKey).Err()
}

// Cache is a read-through cache. Backend failures are logged and behave
// like a miss, so callers always fall back to the record store.
type Cache[T any] interface {
	Get(ctx context.Context, key string) (*T, bool)
	Set(ctx context.Context, key string, value *T)
	Delete(ctx context.Context, key string)
}

// NewCache uses Redis when rdb is set and an in-process cache otherwise.
func NewCache[T any](rdb *redis.Client, prefix string, ttl time.Duration) Cache[T] {
	if rdb != nil {
		return &RedisCache[T]{rdb: rdb, prefix: prefix, ttl: ttl}
	}
	return &MemoryCache[T]{store: gocache.New(ttl, 2*ttl), prefix: prefix}
}

type RedisCache[T any] struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func (c *RedisCache[T]) Get(ctx context.Context, key string) (*T, bool) {
	data, err := GetCacheData[T](ctx, c.rdb, c.prefix+key)
	if err != nil {
		log.Warn().Err(err).Str("key", c.prefix+key).Msg("cache read failed")
		return nil, false
	}
	return data, data != nil
}

func (c *RedisCache[T]) Set(ctx context.Context, key string, value *T) {
	if err := SetCacheData(ctx, c.rdb, c.prefix+key, value, c.ttl); err != nil {
		log.Warn().Err(err).Str("key", c.prefix+key).Msg("cache write failed")
	}
}

func (c *RedisCache[T]) Delete(ctx context.Context, key string) {
	if err := DeleteCacheData(ctx, c.rdb, c.prefix+key); err != nil {
		log.Warn().Err(err).Str("key", c.prefix+key).Msg("cache delete failed")
	}
}

type MemoryCache[T any] struct {
	store  *gocache.Cache
	prefix string
}

func (c *MemoryCache[T]) Get(_ context.Context, key string) (*T, bool) {
	v, ok := c.store.Get(c.prefix + key)
	if !ok {
		return nil, false
	}
	data, ok := v.(T)
	if !ok {
		return nil, false
	}
	return &data, true
}

// Set stores a copy so later mutation of value does not leak into the cache.
func (c *MemoryCache[T]) Set(_ context.Context, key string, value *T) {
	c.store.SetDefault(c.prefix+key, *value)
}

func (c *MemoryCache[T]) Delete(_ context.Context, key string) {
	c.store.Delete(c.prefix + key)
}
