package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/So-lol/ace-website-sub001/internal/apperr"
	"github.com/So-lol/ace-website-sub001/internal/audit"
	"github.com/So-lol/ace-website-sub001/internal/auth"
	"github.com/So-lol/ace-website-sub001/internal/constants"
	"github.com/So-lol/ace-website-sub001/internal/docstore"
	"github.com/So-lol/ace-website-sub001/internal/models/docs"
	"github.com/google/uuid"
)

type BonusActivityInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Points      int    `json:"points"`
	// IsActive defaults to true.
	IsActive *bool `json:"isActive"`
}

type BonusActivityPatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Points      *int    `json:"points"`
	IsActive    *bool   `json:"isActive"`
}

type BonusService struct {
	clock
	docs  docstore.Store
	trail *audit.Trail
}

func NewBonusService(store docstore.Store, trail *audit.Trail) *BonusService {
	return &BonusService{docs: store, trail: trail}
}

func (s *BonusService) WithClock(now func() time.Time) *BonusService {
	s.now = now
	return s
}

func (s *BonusService) CreateBonusActivity(ctx context.Context, in BonusActivityInput) (*docs.BonusActivity, error) {
	actor, err := auth.RequireAdmin(ctx)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validation(constants.MsgNameRequired)
	}
	if in.Points <= 0 {
		return nil, apperr.Validation("points must be positive")
	}

	now := s.Now()
	b := docs.BonusActivity{
		ID:          uuid.NewString(),
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Points:      in.Points,
		IsActive:    in.IsActive == nil || *in.IsActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.docs.Set(ctx, constants.CollectionBonus, b.ID, b); err != nil {
		return nil, apperr.Store("create bonus activity", err)
	}

	return &b, s.trail.Record(ctx, audit.Event{
		Actor:      actorOf(actor),
		Action:     constants.ActionBonusCreated,
		TargetType: constants.TargetBonus,
		TargetID:   b.ID,
		Details:    fmt.Sprintf("Created bonus activity %q worth %s", name, plural(b.Points, "point")),
		Metadata:   map[string]any{"points": b.Points},
	})
}

func (s *BonusService) UpdateBonusActivity(ctx context.Context, id string, p BonusActivityPatch) (*docs.BonusActivity, error) {
	actor, err := auth.RequireAdmin(ctx)
	if err != nil {
		return nil, err
	}
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return nil, apperr.Validation(constants.MsgNameRequired)
	}
	if p.Points != nil && *p.Points <= 0 {
		return nil, apperr.Validation("points must be positive")
	}

	var out docs.BonusActivity
	err = s.docs.RunTransaction(ctx, constants.CollectionBonus, id, func(current json.RawMessage) (any, error) {
		var b docs.BonusActivity
		exists, err := docstore.Decode(current, &b)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, docstore.ErrNotFound
		}
		if p.Name != nil {
			b.Name = strings.TrimSpace(*p.Name)
		}
		if p.Description != nil {
			b.Description = strings.TrimSpace(*p.Description)
		}
		if p.Points != nil {
			b.Points = *p.Points
		}
		if p.IsActive != nil {
			b.IsActive = *p.IsActive
		}
		b.UpdatedAt = s.Now()
		out = b
		return b, nil
	})
	if err != nil {
		return nil, docErr("update bonus activity", "bonus activity", err)
	}

	return &out, s.trail.Record(ctx, audit.Event{
		Actor:      actorOf(actor),
		Action:     constants.ActionBonusUpdated,
		TargetType: constants.TargetBonus,
		TargetID:   id,
		Details:    fmt.Sprintf("Updated bonus activity %q", out.Name),
		Metadata:   map[string]any{"points": out.Points, "isActive": out.IsActive},
	})
}

func (s *BonusService) DeleteBonusActivity(ctx context.Context, id string) (map[string]string, error) {
	actor, err := auth.RequireAdmin(ctx)
	if err != nil {
		return nil, err
	}

	var b docs.BonusActivity
	if err := s.docs.Get(ctx, constants.CollectionBonus, id, &b); err != nil {
		return nil, docErr("load bonus activity", "bonus activity", err)
	}
	if err := s.docs.Delete(ctx, constants.CollectionBonus, id); err != nil {
		return nil, apperr.Store("delete bonus activity", err)
	}

	return map[string]string{"id": id}, s.trail.Record(ctx, audit.Event{
		Actor:      actorOf(actor),
		Action:     constants.ActionBonusDeleted,
		TargetType: constants.TargetBonus,
		TargetID:   id,
		Details:    fmt.Sprintf("Deleted bonus activity %q", b.Name),
	})
}

// ListBonusActivities returns activities by name. Anyone signed in may list
// the active ones.
func (s *BonusService) ListBonusActivities(ctx context.Context, activeOnly bool) ([]docs.BonusActivity, error) {
	if activeOnly {
		if _, err := auth.RequireAuth(ctx); err != nil {
			return nil, err
		}
	} else if _, err := auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	return s.find(ctx, activeOnly)
}

func (s *BonusService) find(ctx context.Context, activeOnly bool) ([]docs.BonusActivity, error) {
	q := docstore.Query{OrderBy: "name"}
	if activeOnly {
		q.Filters = []docstore.Filter{{Field: "isActive", Value: true}}
	}
	list, err := docstore.FindAs[docs.BonusActivity](ctx, s.docs, constants.CollectionBonus, q)
	if err != nil {
		return nil, apperr.Store("list bonus activities", err)
	}
	return list, nil
}
