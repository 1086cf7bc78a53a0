package api

import (
	"context"
	"net/http"

	"github.com/So-lol/ace-website-sub001/internal/constants"
	"github.com/spf13/afero"
)

// ListArchivedMediaHandler handles GET /api/admin/media/archived
//
// @Summary      List archived media
// @Description  Archived submissions, oldest first, with days left until they may be deleted.
// @Tags         Media
// @Produce      json
// @Success      200  {object}  responses.APIResponse
// @Router       /api/admin/media/archived [get]
func (h *Handlers) ListArchivedMediaHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.read(w, r, func(ctx context.Context) (any, error) {
			return h.deps.Services.Media.ListArchivedMedia(ctx)
		})
	}
}

func (h *Handlers) ArchiveMediaHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := urlParam(r, "id")
		h.mutate(w, r, "archive_media", func(ctx context.Context) (any, error) {
			return h.deps.Services.Media.ArchiveMedia(ctx, id)
		}, constants.CachePrefixAdmin)
	}
}

func (h *Handlers) RestoreMediaHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := urlParam(r, "id")
		h.mutate(w, r, "restore_media", func(ctx context.Context) (any, error) {
			return h.deps.Services.Media.RestoreMedia(ctx, id)
		}, constants.CachePrefixAdmin)
	}
}

// DeleteArchivedMediaHandler handles DELETE /api/admin/media/{id}. Only
// media archived for at least 30 days can go.
func (h *Handlers) DeleteArchivedMediaHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := urlParam(r, "id")
		h.mutate(w, r, "delete_archived_media", func(ctx context.Context) (any, error) {
			return h.deps.Services.Media.DeleteArchivedMedia(ctx, id)
		}, constants.CachePrefixAdmin)
	}
}

// MediaFileServer serves uploaded objects read-only from the blob store.
func (h *Handlers) MediaFileServer(prefix string) http.Handler {
	fs := afero.NewReadOnlyFs(h.deps.Infra.Blobs.FS())
	return http.StripPrefix(prefix, http.FileServer(afero.NewHttpFs(fs)))
}
