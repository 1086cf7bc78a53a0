package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/So-lol/ace-website-sub001/internal/auth"
	"github.com/So-lol/ace-website-sub001/internal/common"
	"github.com/So-lol/ace-website-sub001/internal/constants"
	"github.com/So-lol/ace-website-sub001/internal/logging"
	"github.com/So-lol/ace-website-sub001/internal/models/dtos/requests"
	"github.com/So-lol/ace-website-sub001/internal/models/dtos/responses"
	"github.com/So-lol/ace-website-sub001/internal/services"
)

// CreateSessionHandler handles POST /api/auth/session
//
// @Summary      Start a session
// @Description  Exchanges a sign-in token for an httpOnly session cookie valid for seven days.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Success      200  {object}  responses.APIResponse
// @Failure      400  {object}  responses.APIResponse
// @Failure      401  {object}  responses.APIResponse
// @Failure      429  {object}  responses.APIResponse
// @Router       /api/auth/session [post]
func (h *Handlers) CreateSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req requests.SessionRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		idToken := strings.TrimSpace(req.IDToken)
		if idToken == "" {
			common.RespondError(w, initTime, constants.MsgInvalidBody, http.StatusBadRequest)
			return
		}

		session, err := h.deps.Provider.CreateSessionToken(r.Context(), idToken, constants.SessionMaxAge)
		if err != nil {
			logging.Debug("session exchange refused", "error", err.Error())
			common.RespondError(w, initTime, constants.MsgInvalidSession, http.StatusUnauthorized)
			return
		}

		// a valid token without a local profile must not get a cookie
		identity, ok := h.deps.Verifier.Verify(r.Context(), session)
		if !ok {
			common.RespondError(w, initTime, constants.MsgInvalidSession, http.StatusUnauthorized)
			return
		}

		http.SetCookie(w, auth.SessionCookie(session, h.deps.Config.Session.Secure))
		common.RespondSuccess(w, initTime, responses.SessionResponse{
			User:      identity,
			ExpiresIn: int(constants.SessionMaxAge.Seconds()),
		})
	}
}

// LogoutHandler handles POST /api/auth/logout. It always succeeds.
func (h *Handlers) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		http.SetCookie(w, auth.ClearSessionCookie(h.deps.Config.Session.Secure))
		common.RespondSuccess(w, initTime, map[string]bool{"signedOut": true})
	}
}

// MeHandler handles GET /api/me
func (h *Handlers) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.read(w, r, func(ctx context.Context) (any, error) {
			return auth.RequireAuth(ctx)
		})
	}
}

// UpdateMeHandler handles PATCH /api/me
func (h *Handlers) UpdateMeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch services.ProfilePatch
		if !decodeJSON(w, r, &patch) {
			return
		}
		h.mutate(w, r, "update_profile", func(ctx context.Context) (any, error) {
			return h.deps.Services.Users.UpdateOwnProfile(ctx, patch)
		}, constants.CachePrefixAdmin, constants.CachePrefixFamilies)
	}
}
