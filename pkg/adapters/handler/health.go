package handler

import "net/http"

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
	Detail   string `json:"detail,omitempty"`
}

// Health pings the store; 503 when it cannot be reached
func (h *HTTPHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.analytics.Health(r.Context()); err != nil {
		writeJSON(w, r, http.StatusServiceUnavailable, healthResponse{
			Status: "unhealthy",
			Detail: "Database error: " + err.Error(),
		})
		return
	}
	writeJSON(w, r, http.StatusOK, healthResponse{Status: "healthy", Database: "connected"})
}
