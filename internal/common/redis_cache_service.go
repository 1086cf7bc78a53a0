package common

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/So-lol/ace-website-sub001/internal/logging"
	"github.com/So-lol/ace-website-sub001/internal/metrics"
	"github.com/redis/go-redis/v9"
)

const (
	redisCacheNamespace = "cache:"
	redisCacheTimeout   = 2 * time.Second
	scanBatch           = 200
)

// RedisCacheService implements CacheInterface on Redis so every instance
// sees the same pages and the same invalidations. Values come back as
// json.RawMessage; use CachedAs to read them typed.
type RedisCacheService struct {
	client  *redis.Client
	metrics *metrics.MetricsRegistry
}

// Ensure RedisCacheService implements CacheInterface
var _ CacheInterface = (*RedisCacheService)(nil)

// NewRedisCacheService shares client with the document store; Close does not
// close it.
func NewRedisCacheService(client *redis.Client, m *metrics.MetricsRegistry) *RedisCacheService {
	return &RedisCacheService{client: client, metrics: m}
}

func (r *RedisCacheService) Set(key string, value interface{}, duration time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		logging.Warn("Redis cache: failed to marshal value", "key", key, "error", err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisCacheTimeout)
	defer cancel()
	if err := r.client.Set(ctx, redisCacheNamespace+key, data, duration).Err(); err != nil {
		logging.Warn("Redis cache: failed to set key", "key", key, "error", err.Error())
	}
}

// Get treats any Redis failure as a miss.
func (r *RedisCacheService) Get(key string) (interface{}, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), redisCacheTimeout)
	defer cancel()

	data, err := r.client.Get(ctx, redisCacheNamespace+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logging.Warn("Redis cache: failed to get key", "key", key, "error", err.Error())
		}
		r.metrics.CountCache(pattern(key), false)
		return nil, false
	}
	r.metrics.CountCache(pattern(key), true)
	return json.RawMessage(data), true
}

func (r *RedisCacheService) Delete(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), redisCacheTimeout)
	defer cancel()
	if err := r.client.Del(ctx, redisCacheNamespace+key).Err(); err != nil {
		logging.Warn("Redis cache: failed to delete key", "key", key, "error", err.Error())
	}
}

func (r *RedisCacheService) GetOrSet(
	key string,
	duration time.Duration,
	loader func() (any, error),
) (interface{}, error) {
	if val, found := r.Get(key); found {
		return val, nil
	}

	val, err := loader()
	if err != nil {
		return nil, err
	}
	r.Set(key, val, duration)
	return val, nil
}

// InvalidatePrefix scans rather than using KEYS so a large cache never
// blocks the server.
func (r *RedisCacheService) InvalidatePrefix(prefix string) int {
	ctx, cancel := context.WithTimeout(context.Background(), redisCacheTimeout)
	defer cancel()

	removed := 0
	iter := r.client.Scan(ctx, 0, redisCacheNamespace+prefix+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			logging.Warn("Redis cache: failed to invalidate key", "key", iter.Val(), "error", err.Error())
			continue
		}
		removed++
	}
	if err := iter.Err(); err != nil {
		logging.Warn("Redis cache: invalidation scan failed", "prefix", prefix, "error", err.Error())
	}
	r.metrics.CountInvalidation(prefix)
	return removed
}

func (r *RedisCacheService) Close() error {
	return nil
}

// CachedAs wraps GetOrSet for callers that want a typed value back from
// either cache implementation.
func CachedAs[T any](c CacheInterface, key string, ttl time.Duration, loader func() (T, error)) (T, error) {
	var zero T
	val, err := c.GetOrSet(key, ttl, func() (any, error) { return loader() })
	if err != nil {
		return zero, err
	}
	switch v := val.(type) {
	case T:
		return v, nil
	case json.RawMessage:
		var out T
		if err := json.Unmarshal(v, &out); err != nil {
			// corrupt entry: drop it and recompute
			c.Delete(key)
			return loader()
		}
		return out, nil
	}
	return loader()
}
