package handler

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wadjakorntonsri/cv-analytics/pkg/config"
	"github.com/wadjakorntonsri/cv-analytics/pkg/ports"
)

// NewRouter creates and configures the main application router
func NewRouter(cfg *config.Config, tracking ports.TrackingService, analytics ports.AnalyticsService) http.Handler {
	h := NewHTTPHandler(tracking, analytics)
	mw := NewMiddleware(cfg)

	mux := http.NewServeMux()

	// Tracking, called from the CV page
	mux.HandleFunc("POST /api/track", h.Track)

	// Analytics
	mux.HandleFunc("GET /api/analytics", h.Analytics)
	mux.HandleFunc("GET /api/analytics/recent", h.Recent)
	mux.HandleFunc("GET /analytics", h.Dashboard)

	// Operations
	mux.HandleFunc("GET /health", h.Health)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /{$}", h.Root)

	return mw.Wrap(mux)
}
