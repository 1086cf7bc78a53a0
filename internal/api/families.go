package api

import (
	"context"
	"net/http"

	"github.com/So-lol/ace-website-sub001/internal/auth"
	"github.com/So-lol/ace-website-sub001/internal/constants"
	"github.com/So-lol/ace-website-sub001/internal/services"
)

var familyInvalidation = []constants.CachePrefix{
	constants.CachePrefixFamilies,
	constants.CachePrefixLeaderboard,
	constants.CachePrefixAdmin,
}

// ListFamiliesHandler handles GET /api/families and GET /api/admin/families.
// Archived families are only listed for admins asking with ?archived=true.
//
// @Summary      List families
// @Tags         Families
// @Produce      json
// @Param        archived  query  bool  false  "Include archived families (admin only)"
// @Success      200  {object}  responses.APIResponse
// @Router       /api/families [get]
func (h *Handlers) ListFamiliesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		includeArchived := r.URL.Query().Get("archived") == "true"
		h.read(w, r, func(ctx context.Context) (any, error) {
			if includeArchived {
				if _, err := auth.RequireAdmin(ctx); err != nil {
					return nil, err
				}
			}
			return h.deps.Services.Families.ListFamilies(ctx, includeArchived)
		})
	}
}

// GetFamilyHandler handles GET /api/families/{id}
func (h *Handlers) GetFamilyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := urlParam(r, "id")
		h.read(w, r, func(ctx context.Context) (any, error) {
			return h.deps.Services.Families.GetFamily(ctx, id)
		})
	}
}

// CreateFamilyHandler handles POST /api/admin/families
//
// @Summary      Create a family
// @Tags         Families
// @Accept       json
// @Produce      json
// @Param        body  body  services.FamilyInput  true  "Family"
// @Success      200  {object}  common.Result
// @Failure      400  {object}  common.Result
// @Router       /api/admin/families [post]
func (h *Handlers) CreateFamilyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in services.FamilyInput
		if !decodeJSON(w, r, &in) {
			return
		}
		h.mutate(w, r, "create_family", func(ctx context.Context) (any, error) {
			return h.deps.Services.Families.CreateFamily(ctx, in)
		}, familyInvalidation...)
	}
}

func (h *Handlers) UpdateFamilyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch services.FamilyPatch
		if !decodeJSON(w, r, &patch) {
			return
		}
		id := urlParam(r, "id")
		h.mutate(w, r, "update_family", func(ctx context.Context) (any, error) {
			return h.deps.Services.Families.UpdateFamily(ctx, id, patch)
		}, familyInvalidation...)
	}
}

func (h *Handlers) DeleteFamilyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := urlParam(r, "id")
		h.mutate(w, r, "delete_family", func(ctx context.Context) (any, error) {
			return h.deps.Services.Families.DeleteFamily(ctx, id)
		}, familyInvalidation...)
	}
}
