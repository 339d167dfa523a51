package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthHandler(t *testing.T) {
	cases := []struct {
		name   string
		ping   error
		code   int
		status string
	}{
		{"up", nil, http.StatusOK, "healthy"},
		{"db down", errors.New("no reachable servers"), http.StatusServiceUnavailable, "unhealthy"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := HealthHandler(pingerFunc(func(ctx context.Context) error { return tc.ping }))
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/health", nil))

			assert.Equal(t, tc.code, rr.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, tc.status, body["status"])
			assert.NotEmpty(t, body["timestamp"])
		})
	}
}

func TestTimeoutMiddleware(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	})

	rr := httptest.NewRecorder()
	TimeoutMiddleware(20*time.Millisecond)(slow).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Contains(t, rr.Body.String(), "Request timeout")
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
}

func TestRequestMiddlewareRecordsRouteTemplate(t *testing.T) {
	mc := NewMetricsCollector()
	r := mux.NewRouter()
	r.Use(RequestMiddleware(mc))
	r.HandleFunc("/api/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, RequestID(r.Context()))
		w.WriteHeader(http.StatusNotFound)
	})
	r.HandleFunc("/api/boom", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	for _, path := range []string{"/api/items/1", "/api/items/2", "/api/boom"} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
	}

	s := mc.Summary()
	assert.EqualValues(t, 3, s.TotalRequests)
	assert.EqualValues(t, 1, s.TotalErrors)
	require.Len(t, s.Routes, 2)
	byPath := map[string]*RouteMetrics{}
	for _, m := range s.Routes {
		byPath[m.Path] = m
	}
	require.Contains(t, byPath, "/api/items/{id}")
	assert.EqualValues(t, 2, byPath["/api/items/{id}"].Count)
	assert.EqualValues(t, 0, byPath["/api/items/{id}"].ErrorCount)
	assert.EqualValues(t, 1, byPath["/api/boom"].ErrorCount)
}

func TestRequestMiddlewareKeepsIncomingID(t *testing.T) {
	h := RequestMiddleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "abc-123", RequestID(r.Context()))
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, "abc-123", rr.Header().Get("X-Request-ID"))
}

func TestMetricsCollectorSummary(t *testing.T) {
	mc := NewMetricsCollector()
	for i := 1; i <= 10; i++ {
		mc.Record(http.MethodGet, "/api/items", http.StatusOK, time.Duration(i)*time.Millisecond)
	}
	mc.Record(http.MethodPost, "/api/upload", http.StatusOK, time.Second)

	s := mc.Summary()
	require.Len(t, s.Routes, 2)
	assert.Equal(t, "/api/upload", s.Routes[0].Path)
	items := s.Routes[1]
	assert.Equal(t, time.Millisecond, items.MinTime)
	assert.Equal(t, 10*time.Millisecond, items.MaxTime)
	assert.Equal(t, 5500*time.Microsecond, items.AvgTime)
	assert.Equal(t, 6*time.Millisecond, items.P50Time)
	assert.Equal(t, 10*time.Millisecond, items.P95Time)
	assert.Zero(t, s.ErrorRate)
}
