package api

import (
	"context"
	"net/http"

	"github.com/So-lol/ace-website-sub001/internal/constants"
	"github.com/So-lol/ace-website-sub001/internal/services"
)

func (h *Handlers) ListBonusActivitiesHandler(activeOnly bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.read(w, r, func(ctx context.Context) (any, error) {
			return h.deps.Services.Bonus.ListBonusActivities(ctx, activeOnly)
		})
	}
}

func (h *Handlers) CreateBonusActivityHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in services.BonusActivityInput
		if !decodeJSON(w, r, &in) {
			return
		}
		h.mutate(w, r, "create_bonus_activity", func(ctx context.Context) (any, error) {
			return h.deps.Services.Bonus.CreateBonusActivity(ctx, in)
		}, constants.CachePrefixBonus)
	}
}

func (h *Handlers) UpdateBonusActivityHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch services.BonusActivityPatch
		if !decodeJSON(w, r, &patch) {
			return
		}
		id := urlParam(r, "id")
		h.mutate(w, r, "update_bonus_activity", func(ctx context.Context) (any, error) {
			return h.deps.Services.Bonus.UpdateBonusActivity(ctx, id, patch)
		}, constants.CachePrefixBonus)
	}
}

func (h *Handlers) DeleteBonusActivityHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := urlParam(r, "id")
		h.mutate(w, r, "delete_bonus_activity", func(ctx context.Context) (any, error) {
			return h.deps.Services.Bonus.DeleteBonusActivity(ctx, id)
		}, constants.CachePrefixBonus)
	}
}
