package middleware

import (
	"net/http"

	"github.com/So-lol/ace-website-sub001/internal/auth"
)

// AuthMiddleware resolves the caller from the bearer header or session
// cookie. It never rejects; handlers and the gate decide what an anonymous
// request may do.
func AuthMiddleware(verifier *auth.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			credential := auth.CredentialFromRequest(r)
			if credential == "" {
				next.ServeHTTP(w, r)
				return
			}

			identity, ok := verifier.Verify(r.Context(), credential)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			ctx := auth.SetIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
