package common

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/So-lol/ace-website-sub001/internal/constants"
	"github.com/So-lol/ace-website-sub001/internal/logging"
	"github.com/So-lol/ace-website-sub001/internal/models/dtos/responses"
)

// RespondResult writes a pipeline result as the response body.
func RespondResult(w http.ResponseWriter, code int, res Result) {
	writeJSON(w, code, res)
}

// RespondSuccess sends a standardized JSON success response for read endpoints.
func RespondSuccess(w http.ResponseWriter, initTime time.Time, data any, statusCode ...int) {
	code := http.StatusOK
	if len(statusCode) > 0 {
		code = statusCode[0]
	}

	writeJSON(w, code, responses.APIResponse{
		Status:       string(constants.APIStatusOk),
		ResponseTime: GetResponseTime(initTime),
		Data:         data,
	})
}

// RespondError sends a standardized JSON error response. message must already
// be safe to show.
func RespondError(w http.ResponseWriter, initTime time.Time, message string, statusCode ...int) {
	code := http.StatusInternalServerError
	if len(statusCode) > 0 {
		code = statusCode[0]
	}

	writeJSON(w, code, responses.APIResponse{
		Status:       string(constants.APIStatusError),
		Message:      message,
		ResponseTime: GetResponseTime(initTime),
	})
}

// writeJSON marshals data and writes it to the HTTP response.
func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Error("JSON encode failed", "error", err.Error())
	}
}
