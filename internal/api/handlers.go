package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/So-lol/ace-website-sub001/internal/common"
	"github.com/So-lol/ace-website-sub001/internal/constants"
	"github.com/go-chi/chi/v5"
)

// maxJSONBody caps request bodies outside the upload endpoint.
const maxJSONBody = 1 << 20

var errEmptyBody = errors.New("empty body")

type Handlers struct {
	deps *Dependencies
}

// NewHandlers creates a new handlers instance with injected dependencies
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		deps: deps,
	}
}

// read serves a query endpoint in the APIResponse envelope.
func (h *Handlers) read(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context) (any, error)) {
	initTime := time.Now()

	data, err := fn(r.Context())
	if err != nil {
		res, code, _ := common.Classify(err)
		common.RespondError(w, initTime, res.Error, code)
		return
	}
	common.RespondSuccess(w, initTime, data)
}

// mutate runs fn through the pipeline and writes its tagged result.
func (h *Handlers) mutate(w http.ResponseWriter, r *http.Request, name string, fn common.Operation, invalidate ...constants.CachePrefix) {
	res, code := h.deps.Pipeline.Run(r.Context(), name, fn, invalidate...)
	common.RespondResult(w, code, res)
}

// decodeJSON reads a single JSON document into dst. On failure it has
// already written a 400.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	err := dec.Decode(dst)
	if errors.Is(err, io.EOF) {
		err = errEmptyBody
	}
	if err != nil {
		common.RespondResult(w, http.StatusBadRequest, common.Result{Error: constants.MsgInvalidBody})
		return false
	}
	return true
}

func urlParam(r *http.Request, name string) string {
	return chi.URLParam(r, name)
}

// queryInt parses a positive integer query value, returning def when absent
// or malformed.
func queryInt(r *http.Request, name string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || v <= 0 {
		return def
	}
	return v
}
