package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/So-lol/ace-website-sub001/internal/apperr"
	"github.com/So-lol/ace-website-sub001/internal/audit"
	"github.com/So-lol/ace-website-sub001/internal/auth"
	"github.com/So-lol/ace-website-sub001/internal/blob"
	"github.com/So-lol/ace-website-sub001/internal/common"
	"github.com/So-lol/ace-website-sub001/internal/constants"
	"github.com/So-lol/ace-website-sub001/internal/db/repositories"
	"github.com/So-lol/ace-website-sub001/internal/docstore"
	"github.com/So-lol/ace-website-sub001/internal/metrics"
	"github.com/So-lol/ace-website-sub001/internal/models/docs"
	gormModels "github.com/So-lol/ace-website-sub001/internal/models/gorm"
	"github.com/So-lol/ace-website-sub001/internal/ratelimit"
	"github.com/google/uuid"
)

// MaxImageBytes caps a single submission upload.
const MaxImageBytes = 10 << 20

var imageExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
	"image/gif":  "gif",
}

type SubmissionInput struct {
	Image            []byte
	ContentType      string
	BonusActivityIDs []string
}

type ReviewInput struct {
	Status constants.SubmissionStatus `json:"status"`
	// Points overrides the sum of the claimed bonus activities.
	Points *int `json:"points"`
}

// SubmissionLimit is the per-user upload throttle.
type SubmissionLimit struct {
	Limit  int
	Window time.Duration
}

type SubmissionService struct {
	clock
	docs     docstore.Store
	blobs    blob.Store
	limiter  *ratelimit.Limiter
	limit    SubmissionLimit
	pairings *repositories.PairingRepository
	points   *PointsService
	bonus    *BonusService
	trail    *audit.Trail
	metrics  *metrics.MetricsRegistry
}

func NewSubmissionService(
	store docstore.Store,
	blobs blob.Store,
	limiter *ratelimit.Limiter,
	limit SubmissionLimit,
	pairings *repositories.PairingRepository,
	points *PointsService,
	bonus *BonusService,
	trail *audit.Trail,
	m *metrics.MetricsRegistry,
) *SubmissionService {
	return &SubmissionService{
		docs:     store,
		blobs:    blobs,
		limiter:  limiter,
		limit:    limit,
		pairings: pairings,
		points:   points,
		bonus:    bonus,
		trail:    trail,
		metrics:  m,
	}
}

func (s *SubmissionService) WithClock(now func() time.Time) *SubmissionService {
	s.now = now
	return s
}

// CreateSubmission stores the caller's photo and a PENDING submission for
// the current ISO week.
func (s *SubmissionService) CreateSubmission(ctx context.Context, in SubmissionInput) (*docs.Submission, error) {
	me, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}

	if len(in.Image) == 0 {
		return nil, apperr.Validation("an image is required")
	}
	if len(in.Image) > MaxImageBytes {
		return nil, apperr.Validation("image must be at most %d MB", MaxImageBytes>>20)
	}
	contentType := in.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(in.Image)
	}
	ext, ok := imageExtensions[contentType]
	if !ok {
		return nil, apperr.Validation("unsupported image type %q", contentType)
	}

	if res := s.limiter.Check(ctx, "submission:"+me.ID, s.limit.Limit, s.limit.Window); !res.Success {
		return nil, ratelimit.ErrLimited
	}

	claimed := common.DedupeStrings(in.BonusActivityIDs)
	if len(claimed) > 0 {
		if _, err := s.claimedPoints(ctx, claimed); err != nil {
			return nil, err
		}
	}

	pairingID := ""
	if p, err := s.pairings.FindByParticipant(ctx, me.ID); err == nil {
		pairingID = p.ID
	} else if apperr.KindOf(err) != apperr.KindNotFound {
		return nil, apperr.Store("find pairing", err)
	}

	now := s.Now()
	year, week := now.ISOWeek()
	id := uuid.NewString()
	obj, err := s.blobs.Upload(ctx, in.Image, fmt.Sprintf("submissions/%d/%d/%s.%s", year, week, id, ext), contentType)
	if err != nil {
		return nil, apperr.Store("upload image", err)
	}

	sub := docs.Submission{
		ID:               id,
		SubmitterID:      me.ID,
		PairingID:        pairingID,
		ImageURL:         obj.URL,
		ImagePath:        obj.Path,
		Status:           constants.SubmissionPending,
		BonusActivityIDs: claimed,
		WeekNumber:       week,
		Year:             year,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.docs.Set(ctx, constants.CollectionSubmissions, id, sub); err != nil {
		_, derr := s.blobs.Delete(ctx, obj.Path)
		bestEffort(s.metrics, "orphan_blob_delete", derr, "path", obj.Path)
		return nil, apperr.Store("create submission", err)
	}
	return &sub, nil
}

// ReviewSubmission approves or rejects a pending submission. Approval
// credits the submitter's pairing after the status change is committed, so
// a retried review can never credit twice. The pairing is resolved before
// anything is written; a credit that fails after the commit is logged and
// flagged on the audit entry.
func (s *SubmissionService) ReviewSubmission(ctx context.Context, id string, in ReviewInput) (*docs.Submission, error) {
	actor, err := auth.RequireAdmin(ctx)
	if err != nil {
		return nil, err
	}
	if in.Status != constants.SubmissionApproved && in.Status != constants.SubmissionRejected {
		return nil, apperr.Validation("status must be %s or %s", constants.SubmissionApproved, constants.SubmissionRejected)
	}
	if in.Points != nil && *in.Points < 0 {
		return nil, apperr.Validation("points must not be negative")
	}

	var current docs.Submission
	if err := s.docs.Get(ctx, constants.CollectionSubmissions, id, &current); err != nil {
		return nil, docErr("load submission", "submission", err)
	}

	points := 0
	if in.Status == constants.SubmissionApproved {
		if in.Points != nil {
			points = *in.Points
		} else if points, err = s.claimedPoints(ctx, current.BonusActivityIDs); err != nil {
			return nil, err
		}
	}

	var pairing *gormModels.Pairing
	if in.Status == constants.SubmissionApproved && current.PairingID != "" && points > 0 {
		if pairing, err = s.pairings.Get(ctx, current.PairingID); err != nil {
			return nil, apperr.Store("load pairing", err)
		}
	}

	now := s.Now()
	var out docs.Submission
	err = s.docs.RunTransaction(ctx, constants.CollectionSubmissions, id, func(raw json.RawMessage) (any, error) {
		var sub docs.Submission
		exists, err := docstore.Decode(raw, &sub)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, docstore.ErrNotFound
		}
		if sub.Status != constants.SubmissionPending {
			return nil, apperr.Validation("submission has already been reviewed")
		}
		sub.Status = in.Status
		sub.TotalPoints = points
		sub.ReviewedBy = actor.ID
		sub.ReviewedAt = &now
		sub.UpdatedAt = now
		out = sub
		return sub, nil
	})
	if err != nil {
		return nil, docErr("review submission", "submission", err)
	}

	action := constants.ActionSubmissionRejected
	metadata := map[string]any{"points": points, "pairingId": out.PairingID, "submitterId": out.SubmitterID}
	if out.Status == constants.SubmissionApproved {
		action = constants.ActionSubmissionApproved
		if pairing != nil {
			_, _, cerr := s.points.credit(ctx, pairing.ID, pairing.FamilyID, points)
			bestEffort(s.metrics, "submission_credit", cerr, "submissionId", id, "pairingId", pairing.ID)
			if cerr != nil {
				metadata["creditFailed"] = true
			}
		}
	}

	return &out, s.trail.Record(ctx, audit.Event{
		Actor:      actorOf(actor),
		Action:     action,
		TargetType: constants.TargetMedia,
		TargetID:   id,
		Details:    fmt.Sprintf("Marked submission %s", out.Status),
		Metadata:   metadata,
	})
}

// ListSubmissions returns submissions newest first, optionally by status.
func (s *SubmissionService) ListSubmissions(ctx context.Context, status string) ([]docs.Submission, error) {
	if _, err := auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	q := docstore.Query{OrderBy: "createdAt", Descending: true}
	if status != "" {
		q.Filters = []docstore.Filter{{Field: "status", Value: status}}
	}
	list, err := docstore.FindAs[docs.Submission](ctx, s.docs, constants.CollectionSubmissions, q)
	if err != nil {
		return nil, apperr.Store("list submissions", err)
	}
	return list, nil
}

// claimedPoints sums the points of the given bonus activities, all of which
// must exist and be active.
func (s *SubmissionService) claimedPoints(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	active, err := s.bonus.find(ctx, true)
	if err != nil {
		return 0, err
	}
	byID := make(map[string]int, len(active))
	for _, b := range active {
		byID[b.ID] = b.Points
	}
	total := 0
	for _, id := range ids {
		pts, ok := byID[id]
		if !ok {
			return 0, apperr.Validation("bonus activity %s is not available", id)
		}
		total += pts
	}
	return total, nil
}
