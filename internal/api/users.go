package api

import (
	"context"
	"net/http"

	"github.com/So-lol/ace-website-sub001/internal/constants"
	"github.com/So-lol/ace-website-sub001/internal/services"
)

// ListUsersHandler handles GET /api/admin/users?role=
//
// @Summary      List users
// @Tags         Users
// @Produce      json
// @Param        role  query  string  false  "ADMIN, MENTOR or MENTEE"
// @Success      200  {object}  responses.APIResponse
// @Failure      403  {object}  responses.APIResponse
// @Router       /api/admin/users [get]
func (h *Handlers) ListUsersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role := r.URL.Query().Get("role")
		h.read(w, r, func(ctx context.Context) (any, error) {
			return h.deps.Services.Users.ListUsers(ctx, role)
		})
	}
}

func (h *Handlers) UpdateUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch services.UserPatch
		if !decodeJSON(w, r, &patch) {
			return
		}
		id := urlParam(r, "id")
		h.mutate(w, r, "update_user", func(ctx context.Context) (any, error) {
			return h.deps.Services.Users.UpdateUser(ctx, id, patch)
		}, constants.CachePrefixAdmin, constants.CachePrefixFamilies)
	}
}

// DeleteUserHandler handles DELETE /api/admin/users/{id}. The identity
// provider account is revoked first.
func (h *Handlers) DeleteUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := urlParam(r, "id")
		h.mutate(w, r, "delete_user", func(ctx context.Context) (any, error) {
			return h.deps.Services.Users.DeleteUser(ctx, id)
		}, constants.CachePrefixAdmin, constants.CachePrefixFamilies)
	}
}
