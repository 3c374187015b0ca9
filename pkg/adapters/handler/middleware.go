package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"github.com/wadjakorntonsri/cv-analytics/pkg/config"
	"github.com/wadjakorntonsri/cv-analytics/pkg/logging"
	"github.com/wadjakorntonsri/cv-analytics/pkg/metrics"
)

// RequestIDHeader is echoed back on every response
const RequestIDHeader = "X-Request-ID"

type Middleware struct {
	cors func(http.Handler) http.Handler
}

func NewMiddleware(cfg *config.Config) *Middleware {
	return &Middleware{
		cors: cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSAllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"*"},
			AllowCredentials: true,
		}),
	}
}

// Wrap applies the full stack, outermost first: request id, CORS,
// logging and metrics, panic recovery.
func (m *Middleware) Wrap(next http.Handler) http.Handler {
	return RequestID(m.cors(Instrument(chimiddleware.Recoverer(next))))
}

// RequestID takes the caller's X-Request-ID or mints one and stores it in the context
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(logging.WithRequestID(r.Context(), id)))
	})
}

// Instrument logs each request and records its HTTP metrics. It must wrap
// the ServeMux directly (or through handlers that keep the *Request) so that
// the matched pattern is visible after serving.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)
		route := routeLabel(r)
		metrics.RecordHTTPRequest(r.Method, route, strconv.Itoa(status), elapsed)

		ev := logging.Ctx(r.Context()).Info()
		if status >= http.StatusInternalServerError {
			ev = logging.Ctx(r.Context()).Error()
		}
		ev.Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("route", route).
			Int("status", status).
			Dur("duration", elapsed).
			Int("bytes", ww.BytesWritten()).
			Msg("HTTP request")
	})
}

// routeLabel keeps metric cardinality bounded by using the mux pattern
func routeLabel(r *http.Request) string {
	if r.Pattern == "" {
		return "unmatched"
	}
	if _, path, ok := strings.Cut(r.Pattern, " "); ok {
		return path
	}
	return r.Pattern
}
