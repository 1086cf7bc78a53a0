package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/So-lol/ace-website-sub001/internal/apperr"
	"github.com/So-lol/ace-website-sub001/internal/audit"
	"github.com/So-lol/ace-website-sub001/internal/auth"
	"github.com/So-lol/ace-website-sub001/internal/common"
	"github.com/So-lol/ace-website-sub001/internal/constants"
	"github.com/So-lol/ace-website-sub001/internal/db/repositories"
	"github.com/So-lol/ace-website-sub001/internal/docstore"
	"github.com/So-lol/ace-website-sub001/internal/models/docs"
	gormModels "github.com/So-lol/ace-website-sub001/internal/models/gorm"
)

type FamilyInput struct {
	Name         string   `json:"name"`
	HeadIDs      []string `json:"familyHeadIds"`
	AuntUncleIDs []string `json:"auntUncleIds"`
}

// FamilyPatch leaves nil fields untouched.
type FamilyPatch struct {
	Name         *string   `json:"name"`
	IsArchived   *bool     `json:"isArchived"`
	HeadIDs      *[]string `json:"familyHeadIds"`
	AuntUncleIDs *[]string `json:"auntUncleIds"`
}

// FamilyView is a family with its derived membership and point totals.
type FamilyView struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	IsArchived   bool      `json:"isArchived"`
	HeadIDs      []string  `json:"familyHeadIds"`
	AuntUncleIDs []string  `json:"auntUncleIds"`
	MemberIDs    []string  `json:"memberIds"`
	MemberCount  int       `json:"memberCount"`
	TotalPoints  int       `json:"totalPoints"`
	WeeklyPoints int       `json:"weeklyPoints"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type FamilyService struct {
	families   *repositories.FamilyRepository
	users      *repositories.UserRepositoryGORM
	membership *repositories.MembershipReader
	docs       docstore.Store
	trail      *audit.Trail
}

func NewFamilyService(
	families *repositories.FamilyRepository,
	users *repositories.UserRepositoryGORM,
	membership *repositories.MembershipReader,
	store docstore.Store,
	trail *audit.Trail,
) *FamilyService {
	return &FamilyService{families: families, users: users, membership: membership, docs: store, trail: trail}
}

func (s *FamilyService) CreateFamily(ctx context.Context, in FamilyInput) (*FamilyView, error) {
	actor, err := auth.RequireAdmin(ctx)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validation(constants.MsgNameRequired)
	}
	heads := common.DedupeStrings(in.HeadIDs)
	aunts := common.DedupeStrings(in.AuntUncleIDs)
	if err := s.requireUsers(ctx, heads, aunts); err != nil {
		return nil, err
	}

	family := &gormModels.Family{Name: name}
	if err := s.families.Create(ctx, family, heads, aunts); err != nil {
		return nil, apperr.Store("create family", err)
	}

	view, err := s.view(ctx, family.ID, nil)
	if err != nil {
		return nil, err
	}
	return view, s.trail.Record(ctx, audit.Event{
		Actor:      actorOf(actor),
		Action:     constants.ActionFamilyCreated,
		TargetType: constants.TargetFamily,
		TargetID:   family.ID,
		Details:    fmt.Sprintf("Created family %q", name),
		Metadata:   map[string]any{"familyHeadIds": heads, "auntUncleIds": aunts},
	})
}

// UpdateFamily applies p. Supplying a head list also clears the legacy
// single-head column.
func (s *FamilyService) UpdateFamily(ctx context.Context, id string, p FamilyPatch) (*FamilyView, error) {
	actor, err := auth.RequireAdmin(ctx)
	if err != nil {
		return nil, err
	}

	update := repositories.FamilyUpdate{IsArchived: p.IsArchived}
	changed := []string{}
	if p.Name != nil {
		update.Name = trimmedPtr(p.Name)
		if *update.Name == "" {
			return nil, apperr.Validation(constants.MsgNameRequired)
		}
		changed = append(changed, "name")
	}
	if p.IsArchived != nil {
		changed = append(changed, "isArchived")
	}
	var heads, aunts []string
	if p.HeadIDs != nil {
		heads = common.DedupeStrings(*p.HeadIDs)
		update.HeadIDs = &heads
		changed = append(changed, "familyHeadIds")
	}
	if p.AuntUncleIDs != nil {
		aunts = common.DedupeStrings(*p.AuntUncleIDs)
		update.AuntUncleIDs = &aunts
		changed = append(changed, "auntUncleIds")
	}
	if err := s.requireUsers(ctx, heads, aunts); err != nil {
		return nil, err
	}

	if err := s.families.Update(ctx, id, update); err != nil {
		return nil, apperr.Store("update family", err)
	}

	view, err := s.view(ctx, id, nil)
	if err != nil {
		return nil, err
	}
	return view, s.trail.Record(ctx, audit.Event{
		Actor:      actorOf(actor),
		Action:     constants.ActionFamilyUpdated,
		TargetType: constants.TargetFamily,
		TargetID:   id,
		Details:    fmt.Sprintf("Updated family %q", view.Name),
		Metadata:   map[string]any{"fields": changed},
	})
}

// DeleteFamily removes the family without checking for pairings; users that
// pointed at it are detached. Pairings keep their stale family id.
func (s *FamilyService) DeleteFamily(ctx context.Context, id string) (map[string]string, error) {
	actor, err := auth.RequireAdmin(ctx)
	if err != nil {
		return nil, err
	}

	family, err := s.families.Get(ctx, id)
	if err != nil {
		return nil, apperr.Store("load family", err)
	}
	if err := s.families.Delete(ctx, id); err != nil {
		return nil, apperr.Store("delete family", err)
	}

	return map[string]string{"id": id}, s.trail.Record(ctx, audit.Event{
		Actor:      actorOf(actor),
		Action:     constants.ActionFamilyDeleted,
		TargetType: constants.TargetFamily,
		TargetID:   id,
		Details:    fmt.Sprintf("Deleted family %q", family.Name),
	})
}

func (s *FamilyService) GetFamily(ctx context.Context, id string) (*FamilyView, error) {
	if _, err := auth.RequireAuth(ctx); err != nil {
		return nil, err
	}
	return s.view(ctx, id, nil)
}

// ListFamilies returns families by name; archived ones only when asked.
func (s *FamilyService) ListFamilies(ctx context.Context, includeArchived bool) ([]FamilyView, error) {
	if _, err := auth.RequireAuth(ctx); err != nil {
		return nil, err
	}

	families, err := s.families.List(ctx, includeArchived)
	if err != nil {
		return nil, apperr.Store("list families", err)
	}
	points, err := sumPointsByFamily(ctx, s.docs)
	if err != nil {
		return nil, err
	}

	out := make([]FamilyView, 0, len(families))
	for i := range families {
		v, err := s.build(ctx, &families[i], points)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, nil
}

func (s *FamilyService) view(ctx context.Context, id string, points map[string][2]int) (*FamilyView, error) {
	family, err := s.families.Get(ctx, id)
	if err != nil {
		return nil, apperr.Store("load family", err)
	}
	if points == nil {
		if points, err = sumPointsByFamily(ctx, s.docs); err != nil {
			return nil, err
		}
	}
	return s.build(ctx, family, points)
}

func (s *FamilyService) build(ctx context.Context, family *gormModels.Family, points map[string][2]int) (*FamilyView, error) {
	src, err := s.membership.Sources(ctx, family.ID)
	if err != nil {
		return nil, apperr.Store("load family members", err)
	}
	members := MemberSet(src.HeadIDs, src.AuntUncleIDs, src.Pairings)
	totals := points[family.ID]

	return &FamilyView{
		ID:           family.ID,
		Name:         family.Name,
		IsArchived:   family.IsArchived,
		HeadIDs:      nonNil(src.HeadIDs),
		AuntUncleIDs: nonNil(src.AuntUncleIDs),
		MemberIDs:    members,
		MemberCount:  len(members),
		TotalPoints:  totals[0],
		WeeklyPoints: totals[1],
		CreatedAt:    family.CreatedAt,
		UpdatedAt:    family.UpdatedAt,
	}, nil
}

func (s *FamilyService) requireUsers(ctx context.Context, groups ...[]string) error {
	ids := []string{}
	for _, g := range groups {
		ids = append(ids, g...)
	}
	ids = common.DedupeStrings(ids)
	if len(ids) == 0 {
		return nil
	}
	n, err := s.users.CountExisting(ctx, ids)
	if err != nil {
		return apperr.Store("check family users", err)
	}
	if int(n) != len(ids) {
		return apperr.Validation("one or more selected users do not exist")
	}
	return nil
}

// sumPointsByFamily totals pairing tallies per family as [total, weekly].
func sumPointsByFamily(ctx context.Context, store docstore.Store) (map[string][2]int, error) {
	all, err := docstore.FindAs[docs.PairingPoints](ctx, store, constants.CollectionPairingPoints, docstore.Query{})
	if err != nil {
		return nil, apperr.Store("list pairing points", err)
	}
	out := map[string][2]int{}
	for _, p := range all {
		t := out[p.FamilyID]
		t[0] += p.TotalPoints
		t[1] += p.WeeklyPoints
		out[p.FamilyID] = t
	}
	return out, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
