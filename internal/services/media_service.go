package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/So-lol/ace-website-sub001/internal/apperr"
	"github.com/So-lol/ace-website-sub001/internal/audit"
	"github.com/So-lol/ace-website-sub001/internal/auth"
	"github.com/So-lol/ace-website-sub001/internal/blob"
	"github.com/So-lol/ace-website-sub001/internal/constants"
	"github.com/So-lol/ace-website-sub001/internal/docstore"
	"github.com/So-lol/ace-website-sub001/internal/logging"
	"github.com/So-lol/ace-website-sub001/internal/metrics"
	"github.com/So-lol/ace-website-sub001/internal/models/docs"
	"github.com/So-lol/ace-website-sub001/internal/retention"
)

// ArchivedMedia is an archived submission with its deletion countdown.
type ArchivedMedia struct {
	docs.Submission
	DaysRemaining       int  `json:"daysRemaining"`
	EligibleForDeletion bool `json:"eligibleForDeletion"`
}

type MediaService struct {
	clock
	docs    docstore.Store
	blobs   blob.Store
	trail   *audit.Trail
	metrics *metrics.MetricsRegistry
}

func NewMediaService(store docstore.Store, blobs blob.Store, trail *audit.Trail, m *metrics.MetricsRegistry) *MediaService {
	return &MediaService{docs: store, blobs: blobs, trail: trail, metrics: m}
}

func (s *MediaService) WithClock(now func() time.Time) *MediaService {
	s.now = now
	return s
}

func (s *MediaService) ArchiveMedia(ctx context.Context, id string) (*docs.Submission, error) {
	actor, err := auth.RequireAdmin(ctx)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	sub, err := s.transition(ctx, id, func(sub *docs.Submission) error {
		if sub.IsArchived {
			return apperr.Validation("media is already archived")
		}
		sub.IsArchived = true
		sub.ArchivedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	return sub, s.trail.Record(ctx, audit.Event{
		Actor:      actorOf(actor),
		Action:     constants.ActionMediaArchived,
		TargetType: constants.TargetMedia,
		TargetID:   id,
		Details:    "Archived media",
		Metadata:   map[string]any{"archivedAt": now, "imagePath": sub.ImagePath},
	})
}

func (s *MediaService) RestoreMedia(ctx context.Context, id string) (*docs.Submission, error) {
	actor, err := auth.RequireAdmin(ctx)
	if err != nil {
		return nil, err
	}

	sub, err := s.transition(ctx, id, func(sub *docs.Submission) error {
		if !sub.IsArchived {
			return apperr.Validation("media is not archived")
		}
		sub.IsArchived = false
		sub.ArchivedAt = nil
		return nil
	})
	if err != nil {
		return nil, err
	}

	return sub, s.trail.Record(ctx, audit.Event{
		Actor:      actorOf(actor),
		Action:     constants.ActionMediaRestored,
		TargetType: constants.TargetMedia,
		TargetID:   id,
		Details:    "Restored media",
	})
}

// DeleteArchivedMedia removes an archived submission once the retention
// period has passed. The file goes first; failing to remove it does not stop
// the record from being deleted.
func (s *MediaService) DeleteArchivedMedia(ctx context.Context, id string) (*docs.Submission, error) {
	actor, err := auth.RequireAdmin(ctx)
	if err != nil {
		return nil, err
	}

	var sub docs.Submission
	if err := s.docs.Get(ctx, constants.CollectionSubmissions, id, &sub); err != nil {
		return nil, docErr("load submission", "media", err)
	}

	now := s.Now()
	if !sub.IsArchived || sub.ArchivedAt == nil {
		return nil, apperr.Validation(constants.MsgMediaNotArchived)
	}
	if !retention.EligibleForDeletion(sub.ArchivedAt, now) {
		remaining := retention.DaysRemaining(sub.ArchivedAt, now)
		return nil, apperr.Validation("media can be permanently deleted in %s", plural(remaining, "day"))
	}

	if sub.ImagePath != "" {
		existed, err := s.blobs.Delete(ctx, sub.ImagePath)
		bestEffort(s.metrics, "blob_delete", err, "submission_id", id, "path", sub.ImagePath)
		if err == nil && !existed {
			logging.Warn("Archived media had no stored file", "submission_id", id, "path", sub.ImagePath)
		}
	}

	if err := s.docs.Delete(ctx, constants.CollectionSubmissions, id); err != nil {
		return nil, apperr.Store("delete submission", err)
	}

	return &sub, s.trail.Record(ctx, audit.Event{
		Actor:      actorOf(actor),
		Action:     constants.ActionMediaDeleted,
		TargetType: constants.TargetMedia,
		TargetID:   id,
		Details:    "Permanently deleted archived media",
		Metadata: map[string]any{
			"imagePath":   sub.ImagePath,
			"imageUrl":    sub.ImageURL,
			"submitterId": sub.SubmitterID,
			"archivedAt":  sub.ArchivedAt,
		},
	})
}

// ListArchivedMedia returns archived items oldest archive first, with the
// same countdown the delete guard enforces.
func (s *MediaService) ListArchivedMedia(ctx context.Context) ([]ArchivedMedia, error) {
	if _, err := auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	subs, err := docstore.FindAs[docs.Submission](ctx, s.docs, constants.CollectionSubmissions, docstore.Query{
		Filters: []docstore.Filter{{Field: "isArchived", Value: true}},
		OrderBy: "archivedAt",
	})
	if err != nil {
		return nil, apperr.Store("list archived media", err)
	}

	now := s.Now()
	out := make([]ArchivedMedia, 0, len(subs))
	for _, sub := range subs {
		out = append(out, ArchivedMedia{
			Submission:          sub,
			DaysRemaining:       retention.DaysRemaining(sub.ArchivedAt, now),
			EligibleForDeletion: retention.EligibleForDeletion(sub.ArchivedAt, now),
		})
	}
	return out, nil
}

// transition applies change to a submission inside a document transaction.
func (s *MediaService) transition(ctx context.Context, id string, change func(*docs.Submission) error) (*docs.Submission, error) {
	var out docs.Submission
	err := s.docs.RunTransaction(ctx, constants.CollectionSubmissions, id, func(current json.RawMessage) (any, error) {
		var sub docs.Submission
		exists, err := docstore.Decode(current, &sub)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, docstore.ErrNotFound
		}
		if err := change(&sub); err != nil {
			return nil, err
		}
		sub.UpdatedAt = s.Now()
		out = sub
		return sub, nil
	})
	if err != nil {
		return nil, docErr(fmt.Sprintf("update submission %s", id), "media", err)
	}
	return &out, nil
}
