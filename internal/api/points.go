package api

import (
	"context"
	"net/http"

	"github.com/So-lol/ace-website-sub001/internal/constants"
	"github.com/So-lol/ace-website-sub001/internal/models/dtos/requests"
)

var pointsInvalidation = []constants.CachePrefix{
	constants.CachePrefixLeaderboard,
	constants.CachePrefixFamilies,
	constants.CachePrefixAdmin,
}

// AdjustPointsHandler handles POST /api/admin/pairings/{id}/points
//
// @Summary      Adjust pairing points
// @Description  Adds or deducts points on a pairing and its weekly tally. A reason is required.
// @Tags         Points
// @Accept       json
// @Produce      json
// @Param        id    path  string                        true  "Pairing ID"
// @Param        body  body  requests.AdjustPointsRequest  true  "Adjustment"
// @Success      200  {object}  common.Result
// @Failure      400  {object}  common.Result
// @Failure      404  {object}  common.Result
// @Router       /api/admin/pairings/{id}/points [post]
func (h *Handlers) AdjustPointsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req requests.AdjustPointsRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		id := urlParam(r, "id")
		h.mutate(w, r, "adjust_points", func(ctx context.Context) (any, error) {
			return h.deps.Services.Points.AdjustPairingPoints(ctx, id, req.Amount, req.Reason)
		}, pointsInvalidation...)
	}
}

// ResetWeeklyPointsHandler handles POST /api/admin/points/reset-weekly
func (h *Handlers) ResetWeeklyPointsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.mutate(w, r, "reset_weekly_points", func(ctx context.Context) (any, error) {
			n, err := h.deps.Services.Points.ResetWeeklyPoints(ctx)
			return map[string]int{"reset": n}, err
		}, pointsInvalidation...)
	}
}
