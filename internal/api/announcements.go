package api

import (
	"context"
	"net/http"

	"github.com/So-lol/ace-website-sub001/internal/constants"
	"github.com/So-lol/ace-website-sub001/internal/services"
)

// ListAnnouncementsHandler serves both GET /api/announcements (published
// only) and GET /api/admin/announcements (drafts included).
func (h *Handlers) ListAnnouncementsHandler(publishedOnly bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.read(w, r, func(ctx context.Context) (any, error) {
			return h.deps.Services.Announcements.ListAnnouncements(ctx, publishedOnly)
		})
	}
}

// CreateAnnouncementHandler handles POST /api/admin/announcements
//
// @Summary      Create an announcement
// @Description  Publishing stamps publishedAt unless one is given.
// @Tags         Announcements
// @Accept       json
// @Produce      json
// @Param        body  body  services.AnnouncementInput  true  "Announcement"
// @Success      200  {object}  common.Result
// @Failure      400  {object}  common.Result
// @Router       /api/admin/announcements [post]
func (h *Handlers) CreateAnnouncementHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in services.AnnouncementInput
		if !decodeJSON(w, r, &in) {
			return
		}
		h.mutate(w, r, "create_announcement", func(ctx context.Context) (any, error) {
			return h.deps.Services.Announcements.CreateAnnouncement(ctx, in)
		}, constants.CachePrefixAnnouncements)
	}
}

func (h *Handlers) UpdateAnnouncementHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch services.AnnouncementPatch
		if !decodeJSON(w, r, &patch) {
			return
		}
		id := urlParam(r, "id")
		h.mutate(w, r, "update_announcement", func(ctx context.Context) (any, error) {
			return h.deps.Services.Announcements.UpdateAnnouncement(ctx, id, patch)
		}, constants.CachePrefixAnnouncements)
	}
}

func (h *Handlers) DeleteAnnouncementHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := urlParam(r, "id")
		h.mutate(w, r, "delete_announcement", func(ctx context.Context) (any, error) {
			return h.deps.Services.Announcements.DeleteAnnouncement(ctx, id)
		}, constants.CachePrefixAnnouncements)
	}
}
