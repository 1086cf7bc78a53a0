package api

import (
	"context"
	"net/http"

	"github.com/So-lol/ace-website-sub001/internal/constants"
	"github.com/So-lol/ace-website-sub001/internal/models/dtos/requests"
	"github.com/So-lol/ace-website-sub001/internal/services"
)

var pairingInvalidation = []constants.CachePrefix{
	constants.CachePrefixFamilies,
	constants.CachePrefixLeaderboard,
	constants.CachePrefixAdmin,
}

// ListPairingsHandler handles GET /api/admin/pairings, optionally narrowed
// with ?familyId=.
func (h *Handlers) ListPairingsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		familyID := r.URL.Query().Get("familyId")
		h.read(w, r, func(ctx context.Context) (any, error) {
			return h.deps.Services.Pairings.ListPairings(ctx, familyID)
		})
	}
}

func (h *Handlers) GetPairingHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := urlParam(r, "id")
		h.read(w, r, func(ctx context.Context) (any, error) {
			return h.deps.Services.Pairings.GetPairing(ctx, id)
		})
	}
}

// CreatePairingHandler handles POST /api/admin/pairings
//
// @Summary      Create a pairing
// @Description  One mentor and one or two mentees inside a family.
// @Tags         Pairings
// @Accept       json
// @Produce      json
// @Param        body  body  services.PairingInput  true  "Pairing"
// @Success      200  {object}  common.Result
// @Failure      400  {object}  common.Result
// @Router       /api/admin/pairings [post]
func (h *Handlers) CreatePairingHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in services.PairingInput
		if !decodeJSON(w, r, &in) {
			return
		}
		h.mutate(w, r, "create_pairing", func(ctx context.Context) (any, error) {
			return h.deps.Services.Pairings.CreatePairing(ctx, in)
		}, pairingInvalidation...)
	}
}

func (h *Handlers) AddMenteeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req requests.AddMenteeRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		id := urlParam(r, "id")
		h.mutate(w, r, "add_mentee", func(ctx context.Context) (any, error) {
			return h.deps.Services.Pairings.AddMentee(ctx, id, req.MenteeID)
		}, pairingInvalidation...)
	}
}

func (h *Handlers) RemoveMenteeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, menteeID := urlParam(r, "id"), urlParam(r, "menteeId")
		h.mutate(w, r, "remove_mentee", func(ctx context.Context) (any, error) {
			return h.deps.Services.Pairings.RemoveMentee(ctx, id, menteeID)
		}, pairingInvalidation...)
	}
}

func (h *Handlers) DeletePairingHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := urlParam(r, "id")
		h.mutate(w, r, "delete_pairing", func(ctx context.Context) (any, error) {
			return h.deps.Services.Pairings.DeletePairing(ctx, id)
		}, pairingInvalidation...)
	}
}
