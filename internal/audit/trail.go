// Package audit records who did what to which target.
package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/So-lol/ace-website-sub001/internal/config"
	"github.com/So-lol/ace-website-sub001/internal/constants"
	"github.com/So-lol/ace-website-sub001/internal/docstore"
	"github.com/So-lol/ace-website-sub001/internal/logging"
	"github.com/So-lol/ace-website-sub001/internal/metrics"
	"github.com/So-lol/ace-website-sub001/internal/models/docs"
	"github.com/google/uuid"
)

// ErrNotRecorded is returned by Record under the required policy when the
// entry could not be written. The audited mutation has already happened.
var ErrNotRecorded = errors.New("audit entry not recorded")

const defaultListLimit = 50

// Actor is the admin (or user) performing the action.
type Actor struct {
	ID    string
	Email string
	Name  string
}

type Event struct {
	Actor      Actor
	Action     constants.AuditAction
	TargetType string
	TargetID   string
	Details    string
	Metadata   map[string]any
}

type Filter struct {
	TargetType string
	TargetID   string
	ActorID    string
}

type Trail struct {
	store   docstore.Store
	policy  config.AuditPolicy
	metrics *metrics.MetricsRegistry
	now     func() time.Time
}

func NewTrail(store docstore.Store, policy config.AuditPolicy, m *metrics.MetricsRegistry) *Trail {
	if policy == "" {
		policy = config.AuditBestEffort
	}
	return &Trail{store: store, policy: policy, metrics: m, now: time.Now}
}

func (t *Trail) WithClock(now func() time.Time) *Trail {
	t.now = now
	return t
}

func (t *Trail) Policy() config.AuditPolicy {
	return t.policy
}

// Record appends one entry. Under the best-effort policy a failed write is
// logged and nil is returned.
func (t *Trail) Record(ctx context.Context, e Event) error {
	entry := docs.AuditLogEntry{
		ID:         uuid.NewString(),
		ActorID:    e.Actor.ID,
		ActorEmail: e.Actor.Email,
		Action:     e.Action,
		TargetType: e.TargetType,
		TargetID:   e.TargetID,
		Details:    e.Details,
		Metadata:   e.Metadata,
		Timestamp:  t.now().UTC(),
	}

	err := t.store.Set(ctx, constants.CollectionAuditLogs, entry.ID, entry)
	if err == nil {
		return nil
	}

	t.metrics.CountAuditFailure()
	logging.Error("Failed to write audit entry",
		"action", e.Action,
		"target_type", e.TargetType,
		"target_id", e.TargetID,
		"actor_id", e.Actor.ID,
		"policy", t.policy,
		"error", err.Error(),
	)
	if t.policy == config.AuditRequired {
		return fmt.Errorf("%w: %v", ErrNotRecorded, err)
	}
	return nil
}

// List returns entries newest first. A limit <= 0 uses the default page size.
func (t *Trail) List(ctx context.Context, limit int, f Filter) ([]docs.AuditLogEntry, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	q := docstore.Query{OrderBy: "timestamp", Descending: true, Limit: limit}
	if f.TargetType != "" {
		q.Filters = append(q.Filters, docstore.Filter{Field: "targetType", Value: f.TargetType})
	}
	if f.TargetID != "" {
		q.Filters = append(q.Filters, docstore.Filter{Field: "targetId", Value: f.TargetID})
	}
	if f.ActorID != "" {
		q.Filters = append(q.Filters, docstore.Filter{Field: "actorId", Value: f.ActorID})
	}

	entries, err := docstore.FindAs[docs.AuditLogEntry](ctx, t.store, constants.CollectionAuditLogs, q)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	return entries, nil
}
