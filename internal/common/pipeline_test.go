package common

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/So-lol/ace-website-sub001/internal/apperr"
	"github.com/So-lol/ace-website-sub001/internal/audit"
	"github.com/So-lol/ace-website-sub001/internal/auth"
	"github.com/So-lol/ace-website-sub001/internal/constants"
	"github.com/So-lol/ace-website-sub001/internal/metrics"
	"github.com/So-lol/ace-website-sub001/internal/ratelimit"
	"github.com/stretchr/testify/assert"
)

func TestPipeline_Run(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{"validation", apperr.Validation("amount must not be zero"), http.StatusBadRequest, "amount must not be zero"},
		{"not found", apperr.NotFound("Pairing"), http.StatusNotFound, "Pairing not found"},
		{"forbidden", auth.ErrForbidden, http.StatusForbidden, constants.MsgAdminRequired},
		{"unauthenticated", auth.ErrUnauthenticated, http.StatusUnauthorized, constants.MsgAuthRequired},
		{"store failure", apperr.Store("update points", errors.New("dial tcp 10.0.0.3:6379: connection refused")), http.StatusInternalServerError, constants.MsgGeneric},
		{"unclassified", errors.New("pq: relation \"users\" does not exist"), http.StatusInternalServerError, constants.MsgGeneric},
		{"rate limited", ratelimit.ErrLimited, http.StatusTooManyRequests, constants.MsgRateLimited},
		{"audit missing", fmt.Errorf("%w: timeout", audit.ErrNotRecorded), http.StatusInternalServerError, constants.MsgAuditNotWritten},
	}

	p := NewPipeline(nil, metrics.NewMetricsRegistry())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, code := p.Run(context.Background(), "test", func(context.Context) (any, error) {
				return nil, tt.err
			})
			assert.False(t, res.Success)
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.message, res.Error)
			assert.Nil(t, res.Data)
		})
	}
}

func TestPipeline_SuccessInvalidatesCache(t *testing.T) {
	cache := NewCacheService(time.Minute, time.Minute, nil)
	cache.Set("/leaderboard", "stale", time.Minute)
	cache.Set("/families/f1", "stale", time.Minute)
	cache.Set("/announcements", "fresh", time.Minute)

	p := NewPipeline(cache, nil)
	res, code := p.Run(context.Background(), "adjust_points", func(context.Context) (any, error) {
		return map[string]int{"newPoints": 15}, nil
	}, constants.CachePrefixLeaderboard, constants.CachePrefixFamilies)

	assert.True(t, res.Success)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]int{"newPoints": 15}, res.Data)

	_, found := cache.Get("/leaderboard")
	assert.False(t, found)
	_, found = cache.Get("/families/f1")
	assert.False(t, found)
	_, found = cache.Get("/announcements")
	assert.True(t, found)
}

func TestPipeline_FailureKeepsCache(t *testing.T) {
	cache := NewCacheService(time.Minute, time.Minute, nil)
	cache.Set("/leaderboard", "cached", time.Minute)

	p := NewPipeline(cache, nil)
	p.Run(context.Background(), "adjust_points", func(context.Context) (any, error) {
		return nil, apperr.Validation("a reason is required")
	}, constants.CachePrefixLeaderboard)

	_, found := cache.Get("/leaderboard")
	assert.True(t, found)
}

func TestCacheService_GetOrSet(t *testing.T) {
	cache := NewCacheService(time.Minute, time.Minute, nil)
	calls := 0
	load := func() (any, error) {
		calls++
		return calls, nil
	}

	v, err := cache.GetOrSet("/leaderboard", time.Minute, load)
	assert.NoError(t, err)
	assert.Equal(t, 1, v)
	v, _ = cache.GetOrSet("/leaderboard", time.Minute, load)
	assert.Equal(t, 1, v)

	assert.Equal(t, 1, cache.InvalidatePrefix("/leader"))
	v, _ = cache.GetOrSet("/leaderboard", time.Minute, load)
	assert.Equal(t, 2, v)

	_, err = cache.GetOrSet("/broken", time.Minute, func() (any, error) { return nil, errors.New("boom") })
	assert.Error(t, err)
}

func TestDedupeStrings(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, DedupeStrings([]string{" a", "b", "", "a", "b "}))
	assert.Equal(t, "ana@ace.org", NormalizeEmail("  Ana@ACE.org "))
}
