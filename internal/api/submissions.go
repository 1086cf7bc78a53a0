package api

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/So-lol/ace-website-sub001/internal/common"
	"github.com/So-lol/ace-website-sub001/internal/constants"
	"github.com/So-lol/ace-website-sub001/internal/services"
)

// CreateSubmissionHandler handles POST /api/submissions
//
// @Summary      Upload a submission
// @Description  Multipart form with an "image" file and optional "bonusActivityIds" (repeated or comma separated).
// @Tags         Submissions
// @Accept       multipart/form-data
// @Produce      json
// @Success      200  {object}  common.Result
// @Failure      400  {object}  common.Result
// @Failure      429  {object}  common.Result
// @Router       /api/submissions [post]
func (h *Handlers) CreateSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, services.MaxImageBytes+(1<<20))
		if err := r.ParseMultipartForm(services.MaxImageBytes); err != nil {
			common.RespondResult(w, http.StatusBadRequest, common.Result{Error: constants.MsgInvalidBody})
			return
		}
		defer func() { _ = r.MultipartForm.RemoveAll() }()

		in := services.SubmissionInput{BonusActivityIDs: splitIDs(r.MultipartForm.Value["bonusActivityIds"])}
		if file, _, err := r.FormFile("image"); err == nil {
			// one byte over the cap so the service can reject oversize images
			in.Image, err = io.ReadAll(io.LimitReader(file, services.MaxImageBytes+1))
			_ = file.Close()
			if err != nil {
				common.RespondResult(w, http.StatusBadRequest, common.Result{Error: constants.MsgInvalidBody})
				return
			}
		}

		h.mutate(w, r, "create_submission", func(ctx context.Context) (any, error) {
			return h.deps.Services.Submissions.CreateSubmission(ctx, in)
		}, constants.CachePrefixAdmin)
	}
}

// ListSubmissionsHandler handles GET /api/admin/submissions?status=
func (h *Handlers) ListSubmissionsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := r.URL.Query().Get("status")
		h.read(w, r, func(ctx context.Context) (any, error) {
			return h.deps.Services.Submissions.ListSubmissions(ctx, status)
		})
	}
}

// ReviewSubmissionHandler handles POST /api/admin/submissions/{id}/review.
// Approval credits the pairing once.
func (h *Handlers) ReviewSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in services.ReviewInput
		if !decodeJSON(w, r, &in) {
			return
		}
		id := urlParam(r, "id")
		h.mutate(w, r, "review_submission", func(ctx context.Context) (any, error) {
			return h.deps.Services.Submissions.ReviewSubmission(ctx, id, in)
		}, constants.CachePrefixLeaderboard, constants.CachePrefixFamilies, constants.CachePrefixAdmin)
	}
}

func splitIDs(values []string) []string {
	var ids []string
	for _, v := range values {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}
	return ids
}
