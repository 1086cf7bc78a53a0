package services

import (
	"context"
	"sort"
	"time"

	"github.com/So-lol/ace-website-sub001/internal/apperr"
	"github.com/So-lol/ace-website-sub001/internal/auth"
	"github.com/So-lol/ace-website-sub001/internal/common"
	"github.com/So-lol/ace-website-sub001/internal/constants"
	"github.com/So-lol/ace-website-sub001/internal/db/repositories"
	"github.com/So-lol/ace-website-sub001/internal/docstore"
)

const leaderboardTTL = 30 * time.Second

type LeaderboardEntry struct {
	Rank         int    `json:"rank"`
	FamilyID     string `json:"familyId"`
	Name         string `json:"name"`
	TotalPoints  int    `json:"totalPoints"`
	WeeklyPoints int    `json:"weeklyPoints"`
}

// LeaderboardService ranks active families by summed pairing points. The
// ranking is cached under /leaderboard until a point mutation invalidates it.
type LeaderboardService struct {
	families *repositories.FamilyRepository
	docs     docstore.Store
	cache    common.CacheInterface
}

func NewLeaderboardService(families *repositories.FamilyRepository, store docstore.Store, cache common.CacheInterface) *LeaderboardService {
	return &LeaderboardService{families: families, docs: store, cache: cache}
}

func (s *LeaderboardService) Leaderboard(ctx context.Context) ([]LeaderboardEntry, error) {
	if _, err := auth.RequireAuth(ctx); err != nil {
		return nil, err
	}

	return common.CachedAs(s.cache, string(constants.CachePrefixLeaderboard), leaderboardTTL, func() ([]LeaderboardEntry, error) {
		return s.compute(ctx)
	})
}

func (s *LeaderboardService) compute(ctx context.Context) ([]LeaderboardEntry, error) {
	families, err := s.families.List(ctx, false)
	if err != nil {
		return nil, apperr.Store("list families", err)
	}
	totals, err := sumPointsByFamily(ctx, s.docs)
	if err != nil {
		return nil, err
	}

	out := make([]LeaderboardEntry, 0, len(families))
	for _, f := range families {
		t := totals[f.ID]
		out = append(out, LeaderboardEntry{FamilyID: f.ID, Name: f.Name, TotalPoints: t[0], WeeklyPoints: t[1]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TotalPoints != out[j].TotalPoints {
			return out[i].TotalPoints > out[j].TotalPoints
		}
		return out[i].Name < out[j].Name
	})
	// equal totals share a rank
	for i := range out {
		if i > 0 && out[i].TotalPoints == out[i-1].TotalPoints {
			out[i].Rank = out[i-1].Rank
		} else {
			out[i].Rank = i + 1
		}
	}
	return out, nil
}
