// Package ratelimit implements a fixed-window counter per key on top of the
// document store's transactions.
package ratelimit

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/So-lol/ace-website-sub001/internal/constants"
	"github.com/So-lol/ace-website-sub001/internal/docstore"
	"github.com/So-lol/ace-website-sub001/internal/logging"
	"github.com/So-lol/ace-website-sub001/internal/metrics"
	"github.com/So-lol/ace-website-sub001/internal/models/docs"
)

// ErrLimited is what callers return when Check refused a request.
var ErrLimited = errors.New("rate limit exceeded")

type Result struct {
	Success   bool `json:"success"`
	Remaining int  `json:"remaining"`
}

type Limiter struct {
	store docstore.Store
	// failOpen answers {true, 1} when the store cannot be reached;
	// otherwise such calls are refused.
	failOpen bool
	metrics  *metrics.MetricsRegistry
	now      func() time.Time
}

func NewLimiter(store docstore.Store, failOpen bool, m *metrics.MetricsRegistry) *Limiter {
	return &Limiter{store: store, failOpen: failOpen, metrics: m, now: time.Now}
}

func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.now = now
	return l
}

// Check counts one call against key. The first call past limit is still
// recorded in the bucket; later ones in the same window are not.
func (l *Limiter) Check(ctx context.Context, key string, limit int, window time.Duration) Result {
	if limit < 1 || window <= 0 || key == "" {
		l.metrics.CountRateLimit("limited")
		return Result{Success: false, Remaining: 0}
	}

	now := l.now()
	var res Result
	err := l.store.RunTransaction(ctx, constants.CollectionRateLimits, key, func(current json.RawMessage) (any, error) {
		var bucket docs.RateLimitBucket
		exists, err := docstore.Decode(current, &bucket)
		if err != nil {
			return nil, err
		}

		if !exists || !now.Before(bucket.ResetAt) {
			res = Result{Success: true, Remaining: limit - 1}
			return docs.RateLimitBucket{Key: key, Count: 1, ResetAt: now.Add(window), UpdatedAt: now}, nil
		}

		if bucket.Count >= limit {
			res = Result{Success: false, Remaining: 0}
			if bucket.Count > limit {
				return nil, nil
			}
		}

		bucket.Count++
		bucket.UpdatedAt = now
		if bucket.Count <= limit {
			res = Result{Success: true, Remaining: limit - bucket.Count}
		}
		return bucket, nil
	})

	if err != nil {
		if l.failOpen {
			l.metrics.CountRateLimit("fail_open")
			logging.Warn("Rate limiter store failure, allowing request", "key", key, "error", err.Error())
			return Result{Success: true, Remaining: 1}
		}
		l.metrics.CountRateLimit("fail_closed")
		logging.Warn("Rate limiter store failure, refusing request", "key", key, "error", err.Error())
		return Result{Success: false, Remaining: 0}
	}

	if res.Success {
		l.metrics.CountRateLimit("allowed")
	} else {
		l.metrics.CountRateLimit("limited")
	}
	return res
}
