package common

import (
	"strings"
	"time"

	"github.com/So-lol/ace-website-sub001/internal/metrics"
	"github.com/patrickmn/go-cache"
)

// CacheService is the in-process read cache. Keys are page paths such as
// "/leaderboard" or "/families/<id>"; mutations invalidate by path prefix.
type CacheService struct {
	cache   *cache.Cache
	metrics *metrics.MetricsRegistry
}

// Ensure CacheService implements CacheInterface
var _ CacheInterface = (*CacheService)(nil)

func NewCacheService(defaultExpiration, cleanUpInterval time.Duration, m *metrics.MetricsRegistry) *CacheService {
	c := cache.New(defaultExpiration, cleanUpInterval)
	return &CacheService{cache: c, metrics: m}
}

func (cs *CacheService) Set(key string, value interface{}, duration time.Duration) {
	cs.cache.Set(key, value, duration)
}

func (cs *CacheService) Get(key string) (interface{}, bool) {
	val, found := cs.cache.Get(key)
	cs.metrics.CountCache(pattern(key), found)
	return val, found
}

func (cs *CacheService) Delete(key string) {
	cs.cache.Delete(key)
}

func (cs *CacheService) GetOrSet(
	key string,
	duration time.Duration,
	loader func() (any, error)) (interface{}, error) {
	if val, found := cs.Get(key); found {
		return val, nil
	}

	val, err := loader()
	if err != nil {
		return nil, err
	}

	cs.Set(key, val, duration)
	return val, nil
}

func (cs *CacheService) InvalidatePrefix(prefix string) int {
	removed := 0
	for key := range cs.cache.Items() {
		if strings.HasPrefix(key, prefix) {
			cs.cache.Delete(key)
			removed++
		}
	}
	cs.metrics.CountInvalidation(prefix)
	return removed
}

// Close is a no-op for the in-memory cache
func (cs *CacheService) Close() error {
	return nil
}

// pattern keeps the first path segment so metric labels stay bounded.
func pattern(key string) string {
	trimmed := strings.TrimPrefix(key, "/")
	if i := strings.Index(trimmed, "/"); i >= 0 {
		trimmed = trimmed[:i]
	}
	return "/" + trimmed
}
