package common

import (
	"context"
	"errors"
	"net/http"

	"github.com/So-lol/ace-website-sub001/internal/apperr"
	"github.com/So-lol/ace-website-sub001/internal/audit"
	"github.com/So-lol/ace-website-sub001/internal/auth"
	"github.com/So-lol/ace-website-sub001/internal/constants"
	"github.com/So-lol/ace-website-sub001/internal/logging"
	"github.com/So-lol/ace-website-sub001/internal/metrics"
	"github.com/So-lol/ace-website-sub001/internal/ratelimit"
)

// Result is the tagged outcome every mutation reports to its caller:
// {success:true, data} or {success:false, error}.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// Operation is a service call that already carries its own authorization.
type Operation func(ctx context.Context) (any, error)

// Pipeline turns service outcomes into caller-safe results, and on success
// invalidates the affected read-cache pages.
type Pipeline struct {
	cache   CacheInterface
	metrics *metrics.MetricsRegistry
}

func NewPipeline(cache CacheInterface, m *metrics.MetricsRegistry) *Pipeline {
	return &Pipeline{cache: cache, metrics: m}
}

// Run executes fn and returns the result with the matching HTTP status.
func (p *Pipeline) Run(ctx context.Context, name string, fn Operation, invalidate ...constants.CachePrefix) (Result, int) {
	data, err := fn(ctx)

	if err == nil {
		p.invalidate(invalidate)
		p.metrics.CountMutation(name, "success")
		return Result{Success: true, Data: data}, http.StatusOK
	}

	// the write happened; only its audit record is missing
	if errors.Is(err, audit.ErrNotRecorded) {
		p.invalidate(invalidate)
		p.metrics.CountMutation(name, "audit_failure")
		return Result{Success: false, Error: constants.MsgAuditNotWritten}, http.StatusInternalServerError
	}

	res, code, kind := Classify(err)
	p.metrics.CountMutation(name, kind)
	if code == http.StatusInternalServerError {
		logging.Error("Mutation failed", "operation", name, "error", err.Error())
	}
	return res, code
}

// Classify maps an error onto the caller-visible message and status.
// Infrastructure detail never leaves this function.
func Classify(err error) (Result, int, string) {
	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		return Result{Error: constants.MsgAuthRequired}, http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, auth.ErrForbidden):
		return Result{Error: constants.MsgAdminRequired}, http.StatusForbidden, "forbidden"
	case errors.Is(err, ratelimit.ErrLimited):
		return Result{Error: constants.MsgRateLimited}, http.StatusTooManyRequests, "rate_limited"
	}

	kind := apperr.KindOf(err)
	if msg, ok := apperr.PublicMessage(err); ok {
		code := http.StatusBadRequest
		if kind == apperr.KindNotFound {
			code = http.StatusNotFound
		}
		return Result{Error: msg}, code, kind.String()
	}
	return Result{Error: constants.MsgGeneric}, http.StatusInternalServerError, kind.String()
}

func (p *Pipeline) invalidate(prefixes []constants.CachePrefix) {
	if p.cache == nil {
		return
	}
	for _, prefix := range prefixes {
		p.cache.InvalidatePrefix(string(prefix))
	}
}
