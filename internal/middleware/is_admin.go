package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/So-lol/ace-website-sub001/internal/auth"
	"github.com/So-lol/ace-website-sub001/internal/common"
	"github.com/So-lol/ace-website-sub001/internal/constants"
)

// RequireAuthMiddleware turns away requests without a verified identity.
func RequireAuthMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := auth.RequireAuth(r.Context()); err != nil {
				common.RespondError(w, time.Now(), constants.MsgAuthRequired, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// IsAdminMiddleware guards the admin route group. Services check again, so
// this only spares non-admins a trip through the handlers.
func IsAdminMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, err := auth.RequireAdmin(r.Context())
			switch {
			case errors.Is(err, auth.ErrUnauthenticated):
				common.RespondError(w, time.Now(), constants.MsgAuthRequired, http.StatusUnauthorized)
				return
			case err != nil:
				common.RespondError(w, time.Now(), constants.MsgAdminRequired, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
