package api

import (
	"context"
	"net/http"

	"github.com/So-lol/ace-website-sub001/internal/audit"
)

const defaultAuditLimit = 100

// LeaderboardHandler handles GET /api/leaderboard
//
// @Summary      Family leaderboard
// @Description  Families ranked by total points; ties share a rank.
// @Tags         Leaderboard
// @Produce      json
// @Success      200  {object}  responses.APIResponse
// @Failure      401  {object}  responses.APIResponse
// @Router       /api/leaderboard [get]
func (h *Handlers) LeaderboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.read(w, r, func(ctx context.Context) (any, error) {
			return h.deps.Services.Leaderboard.Leaderboard(ctx)
		})
	}
}

// ListAuditLogsHandler handles GET /api/admin/audit-logs, newest first.
func (h *Handlers) ListAuditLogsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		limit := queryInt(r, "limit", defaultAuditLimit)
		filter := audit.Filter{
			TargetType: q.Get("targetType"),
			TargetID:   q.Get("targetId"),
			ActorID:    q.Get("actorId"),
		}
		h.read(w, r, func(ctx context.Context) (any, error) {
			return h.deps.Services.Audit.ListAuditLogs(ctx, limit, filter)
		})
	}
}
