package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/So-lol/ace-website-sub001/internal/apperr"
	"github.com/So-lol/ace-website-sub001/internal/audit"
	"github.com/So-lol/ace-website-sub001/internal/auth"
	"github.com/So-lol/ace-website-sub001/internal/constants"
	"github.com/So-lol/ace-website-sub001/internal/db/repositories"
	"github.com/So-lol/ace-website-sub001/internal/docstore"
	"github.com/So-lol/ace-website-sub001/internal/models/docs"
)

// PointsAdjustment is what AdjustPairingPoints reports back.
type PointsAdjustment struct {
	PairingID      string `json:"pairingId"`
	PreviousPoints int    `json:"previousPoints"`
	Adjustment     int    `json:"adjustment"`
	NewPoints      int    `json:"newPoints"`
}

type PointsService struct {
	clock
	pairings *repositories.PairingRepository
	docs     docstore.Store
	trail    *audit.Trail
}

func NewPointsService(pairings *repositories.PairingRepository, store docstore.Store, trail *audit.Trail) *PointsService {
	return &PointsService{pairings: pairings, docs: store, trail: trail}
}

func (s *PointsService) WithClock(now func() time.Time) *PointsService {
	s.now = now
	return s
}

// AdjustPairingPoints adds amount (possibly negative) to a pairing's total.
// The read and the write happen in one document transaction, so concurrent
// adjustments on the same pairing are never lost.
func (s *PointsService) AdjustPairingPoints(ctx context.Context, pairingID string, amount int, reason string) (*PointsAdjustment, error) {
	actor, err := auth.RequireAdmin(ctx)
	if err != nil {
		return nil, err
	}

	reason = strings.TrimSpace(reason)
	if amount == 0 {
		return nil, apperr.Validation(constants.MsgAmountZero)
	}
	if reason == "" {
		return nil, apperr.Validation(constants.MsgReasonRequired)
	}

	pairing, err := s.pairings.Get(ctx, pairingID)
	if err != nil {
		return nil, apperr.Store("load pairing", err)
	}

	previous, next, err := s.credit(ctx, pairing.ID, pairing.FamilyID, amount)
	if err != nil {
		return nil, err
	}

	action := constants.ActionPointsAdded
	verb := "Added"
	if amount < 0 {
		action = constants.ActionPointsDeducted
		verb = "Deducted"
	}
	magnitude := amount
	if magnitude < 0 {
		magnitude = -magnitude
	}

	result := &PointsAdjustment{
		PairingID:      pairing.ID,
		PreviousPoints: previous,
		Adjustment:     amount,
		NewPoints:      next,
	}
	return result, s.trail.Record(ctx, audit.Event{
		Actor:      actorOf(actor),
		Action:     action,
		TargetType: constants.TargetPairing,
		TargetID:   pairing.ID,
		Details:    fmt.Sprintf("%s %s: %s", verb, plural(magnitude, "point"), reason),
		Metadata: map[string]any{
			"previousPoints": previous,
			"adjustment":     amount,
			"newPoints":      next,
			"reason":         reason,
			"actorName":      actor.DisplayName(),
			"actorEmail":     actor.Email,
		},
	})
}

// credit moves both the total and the weekly tally of a pairing by amount
// and returns the totals before and after.
func (s *PointsService) credit(ctx context.Context, pairingID, familyID string, amount int) (int, int, error) {
	var previous, next int
	err := s.docs.RunTransaction(ctx, constants.CollectionPairingPoints, pairingID, func(current json.RawMessage) (any, error) {
		var p docs.PairingPoints
		if _, err := docstore.Decode(current, &p); err != nil {
			return nil, err
		}
		previous = p.TotalPoints
		next = previous + amount

		p.PairingID = pairingID
		p.FamilyID = familyID
		p.TotalPoints = next
		p.WeeklyPoints += amount
		p.UpdatedAt = s.Now()
		return p, nil
	})
	if err != nil {
		return 0, 0, apperr.Store("update pairing points", err)
	}
	return previous, next, nil
}

// ResetWeeklyPoints zeroes every pairing's weekly tally in one batch and
// returns how many pairings were touched.
func (s *PointsService) ResetWeeklyPoints(ctx context.Context) (int, error) {
	actor, err := auth.RequireAdmin(ctx)
	if err != nil {
		return 0, err
	}

	all, err := docstore.FindAs[docs.PairingPoints](ctx, s.docs, constants.CollectionPairingPoints, docstore.Query{})
	if err != nil {
		return 0, apperr.Store("list pairing points", err)
	}

	now := s.Now()
	batch := docstore.NewBatch()
	for _, p := range all {
		if p.WeeklyPoints == 0 {
			continue
		}
		p.WeeklyPoints = 0
		p.UpdatedAt = now
		batch.Set(constants.CollectionPairingPoints, p.PairingID, p)
	}
	if err := s.docs.Commit(ctx, batch); err != nil {
		return 0, apperr.Store("reset weekly points", err)
	}

	return batch.Len(), s.trail.Record(ctx, audit.Event{
		Actor:      actorOf(actor),
		Action:     constants.ActionWeeklyPointsReset,
		TargetType: constants.TargetPairing,
		TargetID:   "*",
		Details:    fmt.Sprintf("Reset weekly points for %s", plural(batch.Len(), "pairing")),
		Metadata:   map[string]any{"pairings": batch.Len()},
	})
}

// PointsFor returns the tally of one pairing; a pairing that never scored
// has zero of both.
func (s *PointsService) PointsFor(ctx context.Context, pairingID string) (docs.PairingPoints, error) {
	var p docs.PairingPoints
	err := s.docs.Get(ctx, constants.CollectionPairingPoints, pairingID, &p)
	if err != nil && !errors.Is(err, docstore.ErrNotFound) {
		return p, apperr.Store("load pairing points", err)
	}
	p.PairingID = pairingID
	return p, nil
}
