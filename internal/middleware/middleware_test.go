package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/So-lol/ace-website-sub001/internal/auth"
	"github.com/So-lol/ace-website-sub001/internal/constants"
	"github.com/So-lol/ace-website-sub001/internal/db/repositories"
	"github.com/So-lol/ace-website-sub001/internal/logging"
	"github.com/So-lol/ace-website-sub001/internal/metrics"
	"github.com/So-lol/ace-website-sub001/internal/models/dtos/responses"
	gormModels "github.com/So-lol/ace-website-sub001/internal/models/gorm"
	"github.com/So-lol/ace-website-sub001/internal/ratelimit"
	"github.com/So-lol/ace-website-sub001/internal/testsupport"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// whoami echoes the identity the chain resolved, or "anonymous".
var whoami = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	if id := auth.GetIdentity(r.Context()); id != nil {
		_, _ = w.Write([]byte(id.Email))
		return
	}
	_, _ = w.Write([]byte("anonymous"))
})

func decode(t *testing.T, rec *httptest.ResponseRecorder) responses.APIResponse {
	t.Helper()
	var body responses.APIResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestAuthMiddleware(t *testing.T) {
	gdb, _ := testsupport.NewDB(t)
	users := repositories.NewUserRepositoryGORM(gdb)
	uid := "ext-ana"
	require.NoError(t, users.Create(context.Background(), &gormModels.User{ExternalUID: &uid, Email: "ana@ace.org", Name: "Ana", Role: constants.RoleMentor}))

	provider := auth.NewJWTProvider([]byte("secret"), "ace-test", nil)
	token, err := provider.IssueToken(uid, "ana@ace.org", "Ana", time.Hour)
	require.NoError(t, err)

	handler := AuthMiddleware(auth.NewVerifier(provider, users))(whoami)

	tests := []struct {
		name    string
		prepare func(r *http.Request)
		want    string
	}{
		{"bearer header", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }, "ana@ace.org"},
		{"session cookie", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: constants.SessionCookieName, Value: token})
		}, "ana@ace.org"},
		{"garbage token", func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, "anonymous"},
		{"no credential", func(*http.Request) {}, "anonymous"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.prepare(req)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, rec.Body.String())
		})
	}
}

func TestGateMiddleware(t *testing.T) {
	admin := &auth.Identity{ID: "1", Email: "admin@ace.org", Role: constants.RoleAdmin}
	mentee := &auth.Identity{ID: "2", Email: "mentee@ace.org", Role: constants.RoleMentee}

	tests := []struct {
		name     string
		mw       func(http.Handler) http.Handler
		identity *auth.Identity
		code     int
		message  string
	}{
		{"admin route, admin", IsAdminMiddleware(), admin, http.StatusOK, ""},
		{"admin route, mentee", IsAdminMiddleware(), mentee, http.StatusForbidden, constants.MsgAdminRequired},
		{"admin route, anonymous", IsAdminMiddleware(), nil, http.StatusUnauthorized, constants.MsgAuthRequired},
		{"member route, mentee", RequireAuthMiddleware(), mentee, http.StatusOK, ""},
		{"member route, anonymous", RequireAuthMiddleware(), nil, http.StatusUnauthorized, constants.MsgAuthRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.identity != nil {
				req = req.WithContext(auth.SetIdentity(req.Context(), tt.identity))
			}
			rec := httptest.NewRecorder()
			tt.mw(whoami).ServeHTTP(rec, req)

			require.Equal(t, tt.code, rec.Code)
			if tt.message != "" {
				body := decode(t, rec)
				assert.Equal(t, string(constants.APIStatusError), body.Status)
				assert.Equal(t, tt.message, body.Message)
			}
		})
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	store, _ := testsupport.NewDocStore(t)
	limiter := ratelimit.NewLimiter(store, false, nil)
	handler := RateLimitMiddleware(limiter, "login", 2, time.Minute)(whoami)

	call := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/session", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, call("10.0.0.1:5000").Code)
	rec := call("10.0.0.1:5001")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	rec = call("10.0.0.1:5002")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Equal(t, constants.MsgRateLimited, decode(t, rec).Message)

	assert.Equal(t, http.StatusOK, call("10.0.0.2:5000").Code, "other clients have their own window")
}

func TestMetricsMiddleware(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logging.Use(zap.New(core).Sugar())
	t.Cleanup(func() { logging.Use(nil) })

	reg := metrics.NewMetricsRegistry()
	r := chi.NewRouter()
	r.Use(RequestIDMiddleware)
	r.Use(MetricsMiddleware(reg))
	r.Get("/api/families/{id}", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(RequestID(r.Context())))
	})

	req := httptest.NewRequest(http.MethodGet, "/api/families/42", nil)
	req.Header.Set("X-Request-ID", "req-abc")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, "req-abc", rec.Body.String())
	assert.Equal(t, "req-abc", rec.Header().Get("X-Request-ID"))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.HTTPRequestsTotal.WithLabelValues("/api/families/{id}", http.MethodGet, "200")))

	entries := logs.FilterMessage("HTTP request completed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-abc", fields["request_id"])
	assert.Equal(t, "/api/families/{id}", fields["endpoint"])
	assert.Equal(t, "", fields["actor_id"])
	assert.EqualValues(t, http.StatusOK, fields["status_code"])

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestNormalizeEndpoint(t *testing.T) {
	tests := map[string]string{
		"/api/families/42": "/api/families/{id}",
		"/api/admin/pairings/3f2a4c1e-8b7d-4c3a-9e2f-1a2b3c4d5e6f/points": "/api/admin/pairings/{id}/points",
		"/api/leaderboard": "/api/leaderboard",
		"/":                "/",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeEndpoint(in), in)
	}
}
