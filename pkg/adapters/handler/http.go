package handler

import (
	"net/http"
	"strconv"

	"github.com/wadjakorntonsri/cv-analytics/pkg/core/domain"
	"github.com/wadjakorntonsri/cv-analytics/pkg/core/services"
	"github.com/wadjakorntonsri/cv-analytics/pkg/ports"
)

// Service descriptor served on GET /
const (
	ServiceName    = "CV Analytics API"
	ServiceVersion = "1.0.0"
)

type HTTPHandler struct {
	tracking  ports.TrackingService
	analytics ports.AnalyticsService
}

func NewHTTPHandler(tracking ports.TrackingService, analytics ports.AnalyticsService) *HTTPHandler {
	return &HTTPHandler{tracking: tracking, analytics: analytics}
}

// Track records a visit from the request headers. The body is ignored and
// the reply is always 200 so the CV page never sees a failure.
func (h *HTTPHandler) Track(w http.ResponseWriter, r *http.Request) {
	res := h.tracking.Track(r.Context(), domain.TrackRequest{
		ForwardedFor:   r.Header.Get("X-Forwarded-For"),
		RemoteAddr:     r.RemoteAddr,
		UserAgent:      r.UserAgent(),
		Referer:        r.Referer(),
		AcceptLanguage: r.Header.Get("Accept-Language"),
	})
	writeJSON(w, r, http.StatusOK, res)
}

// Analytics returns the aggregate report
func (h *HTTPHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	report, err := h.analytics.Report(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, r, http.StatusOK, newAnalyticsResponse(report))
}

// Recent lists the newest visits, ?limit defaults to 20 and is capped at 100
func (h *HTTPHandler) Recent(w http.ResponseWriter, r *http.Request) {
	limit := services.DefaultRecentLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = n
	}

	visits, err := h.analytics.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, r, http.StatusOK, newRecentResponse(visits))
}

type rootResponse struct {
	Service   string            `json:"service"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}

func (h *HTTPHandler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, rootResponse{
		Service: ServiceName,
		Version: ServiceVersion,
		Endpoints: map[string]string{
			"track":     "POST /api/track",
			"analytics": "GET /api/analytics",
			"recent":    "GET /api/analytics/recent",
			"dashboard": "GET /analytics",
			"health":    "GET /health",
			"metrics":   "GET /metrics",
		},
	})
}
