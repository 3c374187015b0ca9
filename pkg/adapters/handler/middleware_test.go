package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wadjakorntonsri/cv-analytics/pkg/logging"
	"github.com/wadjakorntonsri/cv-analytics/pkg/metrics"
)

func TestMiddlewareStack(t *testing.T) {
	mw := NewMiddleware(testConfig())

	mux := http.NewServeMux()
	mux.HandleFunc("GET /ok", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(logging.RequestID(r.Context())))
	})
	mux.HandleFunc("GET /boom", func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})
	handler := mw.Wrap(mux)

	tests := []struct {
		name           string
		method         string
		path           string
		headers        map[string]string
		expectedStatus int
		expectedOrigin string
	}{
		{
			name:           "Plain request",
			method:         http.MethodGet,
			path:           "/ok",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Allowed origin",
			method:         http.MethodGet,
			path:           "/ok",
			headers:        map[string]string{"Origin": "https://devapis.cloud"},
			expectedStatus: http.StatusOK,
			expectedOrigin: "https://devapis.cloud",
		},
		{
			name:           "Foreign origin",
			method:         http.MethodGet,
			path:           "/ok",
			headers:        map[string]string{"Origin": "https://evil.example"},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "Preflight",
			method: http.MethodOptions,
			path:   "/ok",
			headers: map[string]string{
				"Origin":                        "https://devapis.cloud",
				"Access-Control-Request-Method": http.MethodPost,
			},
			expectedStatus: http.StatusOK,
			expectedOrigin: "https://devapis.cloud",
		},
		{
			name:           "Panic recovered",
			method:         http.MethodGet,
			path:           "/boom",
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			if tt.method == http.MethodOptions {
				assert.Less(t, rr.Code, 300)
			} else {
				assert.Equal(t, tt.expectedStatus, rr.Code)
			}
			assert.Equal(t, tt.expectedOrigin, rr.Header().Get("Access-Control-Allow-Origin"))
			assert.NotEmpty(t, rr.Header().Get(RequestIDHeader))
		})
	}
}

func TestRequestID_Propagated(t *testing.T) {
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(logging.RequestID(r.Context())))
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, "req-123", rr.Header().Get(RequestIDHeader))
	assert.Equal(t, "req-123", rr.Body.String())

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, rr.Body.String(), 36, "generated ids are uuids")
	assert.Equal(t, rr.Body.String(), rr.Header().Get(RequestIDHeader))
}

func TestInstrument_RouteLabel(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})
	handler := Instrument(mux)

	before := testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues("GET", "/items/{id}", "202"))
	for _, id := range []string{"1", "2"} {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/items/"+id, nil))
	}
	after := testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues("GET", "/items/{id}", "202"))
	assert.Equal(t, 2.0, after-before)

	unmatched := testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "404"))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, unmatched+1, testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "404")))
}

func TestInstrument_LogsRequest(t *testing.T) {
	var buf bytes.Buffer
	prev := logging.Logger()
	logging.SetLogger(zerolog.New(&buf))
	t.Cleanup(func() { logging.SetLogger(prev) })

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/track", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := RequestID(Instrument(mux))

	req := httptest.NewRequest(http.MethodPost, "/api/track", nil)
	req.Header.Set(RequestIDHeader, "req-log")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "HTTP request", entry["message"])
	assert.Equal(t, "req-log", entry["request_id"])
	assert.Equal(t, "POST", entry["method"])
	assert.Equal(t, "/api/track", entry["path"])
	assert.Equal(t, float64(http.StatusOK), entry["status"])
	assert.Contains(t, entry, "duration")
}
