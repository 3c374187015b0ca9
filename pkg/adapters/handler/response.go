package handler

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/wadjakorntonsri/cv-analytics/pkg/logging"
)

// errorResponse is the body of every non-2xx JSON reply
type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	if status >= http.StatusInternalServerError {
		logging.Ctx(r.Context()).Error().Int("status", status).Str("error", msg).Msg("Request failed")
	}
	writeJSON(w, r, status, errorResponse{Error: msg})
}
