package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/So-lol/ace-website-sub001/internal/apperr"
	"github.com/So-lol/ace-website-sub001/internal/audit"
	"github.com/So-lol/ace-website-sub001/internal/auth"
	"github.com/So-lol/ace-website-sub001/internal/common"
	"github.com/So-lol/ace-website-sub001/internal/constants"
	"github.com/So-lol/ace-website-sub001/internal/db/repositories"
	"github.com/So-lol/ace-website-sub001/internal/docstore"
	"github.com/So-lol/ace-website-sub001/internal/metrics"
	"github.com/So-lol/ace-website-sub001/internal/models/docs"
	gormModels "github.com/So-lol/ace-website-sub001/internal/models/gorm"
)

type PairingInput struct {
	FamilyID  string   `json:"familyId"`
	MentorID  string   `json:"mentorId"`
	MenteeIDs []string `json:"menteeIds"`
}

type PersonRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type PairingView struct {
	ID           string      `json:"id"`
	FamilyID     string      `json:"familyId"`
	FamilyName   string      `json:"familyName,omitempty"`
	Mentor       PersonRef   `json:"mentor"`
	Mentees      []PersonRef `json:"mentees"`
	TotalPoints  int         `json:"totalPoints"`
	WeeklyPoints int         `json:"weeklyPoints"`
}

type PairingService struct {
	pairings *repositories.PairingRepository
	families *repositories.FamilyRepository
	users    *repositories.UserRepositoryGORM
	points   *PointsService
	docs     docstore.Store
	trail    *audit.Trail
	metrics  *metrics.MetricsRegistry
}

func NewPairingService(
	pairings *repositories.PairingRepository,
	families *repositories.FamilyRepository,
	users *repositories.UserRepositoryGORM,
	points *PointsService,
	store docstore.Store,
	trail *audit.Trail,
	m *metrics.MetricsRegistry,
) *PairingService {
	return &PairingService{
		pairings: pairings,
		families: families,
		users:    users,
		points:   points,
		docs:     store,
		trail:    trail,
		metrics:  m,
	}
}

func (s *PairingService) CreatePairing(ctx context.Context, in PairingInput) (*PairingView, error) {
	actor, err := auth.RequireAdmin(ctx)
	if err != nil {
		return nil, err
	}

	mentorID := strings.TrimSpace(in.MentorID)
	mentees := common.DedupeStrings(in.MenteeIDs)
	if mentorID == "" {
		return nil, apperr.Validation("a mentor is required")
	}
	if len(mentees) == 0 {
		return nil, apperr.Validation(constants.MsgPairingNeedsMentee)
	}
	if len(mentees) > constants.MaxMenteesPerPairing {
		return nil, apperr.Validation(constants.MsgPairingFull)
	}
	for _, id := range mentees {
		if id == mentorID {
			return nil, apperr.Validation("the mentor cannot also be a mentee")
		}
	}

	if _, err := s.families.Get(ctx, in.FamilyID); err != nil {
		return nil, apperr.Store("load family", err)
	}
	n, err := s.users.CountExisting(ctx, append([]string{mentorID}, mentees...))
	if err != nil {
		return nil, apperr.Store("check pairing users", err)
	}
	if int(n) != len(mentees)+1 {
		return nil, apperr.Validation("one or more selected users do not exist")
	}

	pairing := &gormModels.Pairing{FamilyID: in.FamilyID, MentorID: mentorID}
	if err := s.pairings.Create(ctx, pairing, mentees); err != nil {
		return nil, apperr.Store("create pairing", err)
	}

	// the tally is created lazily on first credit, so a failure here is only logged
	err = s.docs.Set(ctx, constants.CollectionPairingPoints, pairing.ID, docs.PairingPoints{
		PairingID: pairing.ID,
		FamilyID:  pairing.FamilyID,
		UpdatedAt: s.points.Now(),
	})
	bestEffort(s.metrics, "pairing_points_init", err, "pairing_id", pairing.ID)

	view, err := s.GetPairing(ctx, pairing.ID)
	if err != nil {
		return nil, err
	}
	return view, s.trail.Record(ctx, audit.Event{
		Actor:      actorOf(actor),
		Action:     constants.ActionPairingCreated,
		TargetType: constants.TargetPairing,
		TargetID:   pairing.ID,
		Details:    fmt.Sprintf("Created pairing for mentor %s", view.Mentor.Name),
		Metadata:   map[string]any{"familyId": pairing.FamilyID, "mentorId": mentorID, "menteeIds": mentees},
	})
}

// AddMentee adds one mentee; the cap of two is checked under a row lock.
func (s *PairingService) AddMentee(ctx context.Context, pairingID, menteeID string) (*PairingView, error) {
	actor, err := auth.RequireAdmin(ctx)
	if err != nil {
		return nil, err
	}

	mentee, err := s.users.GetByID(ctx, strings.TrimSpace(menteeID))
	if err != nil {
		return nil, apperr.Store("load mentee", err)
	}
	pairing, err := s.pairings.Get(ctx, pairingID)
	if err != nil {
		return nil, apperr.Store("load pairing", err)
	}
	if pairing.MentorID == mentee.ID {
		return nil, apperr.Validation("the mentor cannot also be a mentee")
	}
	if err := s.pairings.AddMentee(ctx, pairingID, mentee.ID); err != nil {
		return nil, apperr.Store("add mentee", err)
	}

	view, err := s.GetPairing(ctx, pairingID)
	if err != nil {
		return nil, err
	}
	return view, s.trail.Record(ctx, audit.Event{
		Actor:      actorOf(actor),
		Action:     constants.ActionPairingUpdated,
		TargetType: constants.TargetPairing,
		TargetID:   pairingID,
		Details:    fmt.Sprintf("Added mentee %s", mentee.Name),
		Metadata:   map[string]any{"addedMenteeId": mentee.ID},
	})
}

func (s *PairingService) RemoveMentee(ctx context.Context, pairingID, menteeID string) (*PairingView, error) {
	actor, err := auth.RequireAdmin(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := s.pairings.Get(ctx, pairingID); err != nil {
		return nil, apperr.Store("load pairing", err)
	}
	if err := s.pairings.RemoveMentee(ctx, pairingID, menteeID); err != nil {
		return nil, apperr.Store("remove mentee", err)
	}

	view, err := s.GetPairing(ctx, pairingID)
	if err != nil {
		return nil, err
	}
	return view, s.trail.Record(ctx, audit.Event{
		Actor:      actorOf(actor),
		Action:     constants.ActionPairingUpdated,
		TargetType: constants.TargetPairing,
		TargetID:   pairingID,
		Details:    "Removed a mentee",
		Metadata:   map[string]any{"removedMenteeId": menteeID},
	})
}

// DeletePairing removes the pairing, then its point tally. A tally left
// behind is logged and does not fail the delete.
func (s *PairingService) DeletePairing(ctx context.Context, id string) (map[string]string, error) {
	actor, err := auth.RequireAdmin(ctx)
	if err != nil {
		return nil, err
	}

	pairing, err := s.pairings.Get(ctx, id)
	if err != nil {
		return nil, apperr.Store("load pairing", err)
	}
	if err := s.pairings.Delete(ctx, id); err != nil {
		return nil, apperr.Store("delete pairing", err)
	}
	bestEffort(s.metrics, "pairing_points_delete", s.docs.Delete(ctx, constants.CollectionPairingPoints, id), "pairing_id", id)

	return map[string]string{"id": id}, s.trail.Record(ctx, audit.Event{
		Actor:      actorOf(actor),
		Action:     constants.ActionPairingDeleted,
		TargetType: constants.TargetPairing,
		TargetID:   id,
		Details:    "Deleted pairing",
		Metadata:   map[string]any{"familyId": pairing.FamilyID, "mentorId": pairing.MentorID},
	})
}

// GetPairing loads a pairing with its mentor, mentees, family and tally.
func (s *PairingService) GetPairing(ctx context.Context, id string) (*PairingView, error) {
	if _, err := auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	pairing, err := s.pairings.GetWithRelations(ctx, id)
	if err != nil {
		return nil, apperr.Store("load pairing", err)
	}
	tally, err := s.points.PointsFor(ctx, id)
	if err != nil {
		return nil, err
	}
	view := toPairingView(pairing, tally)
	return &view, nil
}

// ListPairings lists pairings, restricted to one family when familyID is set.
func (s *PairingService) ListPairings(ctx context.Context, familyID string) ([]PairingView, error) {
	if _, err := auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	pairings, err := s.pairings.ListByFamily(ctx, familyID)
	if err != nil {
		return nil, apperr.Store("list pairings", err)
	}
	tallies, err := docstore.FindAs[docs.PairingPoints](ctx, s.docs, constants.CollectionPairingPoints, docstore.Query{})
	if err != nil {
		return nil, apperr.Store("list pairing points", err)
	}
	byPairing := make(map[string]docs.PairingPoints, len(tallies))
	for _, t := range tallies {
		byPairing[t.PairingID] = t
	}

	out := make([]PairingView, 0, len(pairings))
	for i := range pairings {
		out = append(out, toPairingView(&pairings[i], byPairing[pairings[i].ID]))
	}
	return out, nil
}

func toPairingView(p *gormModels.Pairing, tally docs.PairingPoints) PairingView {
	view := PairingView{
		ID:           p.ID,
		FamilyID:     p.FamilyID,
		FamilyName:   p.Family.Name,
		Mentor:       PersonRef{ID: p.MentorID, Name: p.Mentor.Name, Email: p.Mentor.Email},
		Mentees:      make([]PersonRef, 0, len(p.Mentees)),
		TotalPoints:  tally.TotalPoints,
		WeeklyPoints: tally.WeeklyPoints,
	}
	for _, m := range p.Mentees {
		view.Mentees = append(view.Mentees, PersonRef{ID: m.MenteeID, Name: m.Mentee.Name, Email: m.Mentee.Email})
	}
	return view
}
