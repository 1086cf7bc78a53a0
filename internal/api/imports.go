package api

import (
	"context"
	"net/http"

	"github.com/So-lol/ace-website-sub001/internal/constants"
	"github.com/So-lol/ace-website-sub001/internal/models/dtos/requests"
)

var importInvalidation = []constants.CachePrefix{
	constants.CachePrefixFamilies,
	constants.CachePrefixLeaderboard,
	constants.CachePrefixAdmin,
}

// ImportUsersHandler handles POST /api/admin/import/users
//
// @Summary      Bulk import users
// @Description  Each row is validated and created on its own; failures are reported as "Row N: ...".
// @Tags         Import
// @Accept       json
// @Produce      json
// @Param        body  body  requests.ImportUsersRequest  true  "Rows"
// @Success      200  {object}  common.Result
// @Router       /api/admin/import/users [post]
func (h *Handlers) ImportUsersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req requests.ImportUsersRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		h.mutate(w, r, "import_users", func(ctx context.Context) (any, error) {
			return h.deps.Services.Imports.ImportUsers(ctx, req.Rows)
		}, importInvalidation...)
	}
}

// ImportPairingsHandler handles POST /api/admin/import/pairings
func (h *Handlers) ImportPairingsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req requests.ImportPairingsRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		h.mutate(w, r, "import_pairings", func(ctx context.Context) (any, error) {
			return h.deps.Services.Imports.ImportPairings(ctx, req.Rows)
		}, importInvalidation...)
	}
}
