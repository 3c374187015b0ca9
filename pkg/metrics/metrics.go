// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cv_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cv_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "route"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cv_db_query_duration_seconds",
			Help:    "Duration of visit store queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cv_db_query_errors_total",
			Help: "Total number of failed visit store queries",
		},
		[]string{"operation"},
	)

	VisitsTracked = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cv_visits_tracked_total",
			Help: "Track calls by outcome (tracked or error)",
		},
		[]string{"status"},
	)
)

// RecordHTTPRequest records one served request
func RecordHTTPRequest(method, route, statusCode string, d time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, statusCode).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// RecordDBQuery records one store operation
func RecordDBQuery(operation string, d time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation).Observe(d.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation).Inc()
	}
}

// RecordTrack counts a track outcome
func RecordTrack(status string) {
	VisitsTracked.WithLabelValues(status).Inc()
}
