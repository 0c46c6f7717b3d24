package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/jobrunner/locus/internal/ports/output"
)

var _ output.MetricsCollector = (*Collector)(nil)

func TestCollectorCounters(t *testing.T) {
	c := NewCollector("test")

	c.IncQueryCount("precise", true)
	c.IncQueryCount("precise", true)
	c.IncQueryCount("bounds", false)
	c.AddIntersectionChecks("precise", 42)
	c.SetCollectionsLoaded(3)
	c.SetCollectionsReady(2)
	c.IncStorageOperations("read", true)
	c.ObserveQueryDuration("precise", 3*time.Millisecond)

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"precise success", testutil.ToFloat64(c.queryCounter.WithLabelValues("precise", "success")), 2},
		{"bounds error", testutil.ToFloat64(c.queryCounter.WithLabelValues("bounds", "error")), 1},
		{"intersection checks", testutil.ToFloat64(c.intersectionChecks.WithLabelValues("precise")), 42},
		{"collections loaded", testutil.ToFloat64(c.collectionsLoaded), 3},
		{"collections ready", testutil.ToFloat64(c.collectionsReady), 2},
		{"storage read", testutil.ToFloat64(c.storageOperations.WithLabelValues("read", "success")), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("value = %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestCollectorsAreIndependent(t *testing.T) {
	a := NewCollector("test")
	b := NewCollector("test")

	a.SetCollectionsLoaded(5)
	if got := testutil.ToFloat64(b.collectionsLoaded); got != 0 {
		t.Errorf("second collector gauge = %v, want 0", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	c := NewCollector("test")
	c.IncQueryCount("bounds", true)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `test_queries_total{mode="bounds",status="success"} 1`) {
		t.Errorf("metrics output missing query counter:\n%s", body)
	}
}

func TestMiddleware(t *testing.T) {
	c := NewCollector("test")
	handler := c.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/collections/districts", nil))

	got := testutil.ToFloat64(c.httpRequestsTotal.WithLabelValues(http.MethodGet, "/api/v1/collections/{id}", "4xx"))
	if got != 1 {
		t.Errorf("http_requests_total = %v, want 1", got)
	}
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/health", "/health"},
		{"/api/v1/collections", "/api/v1/collections"},
		{"/api/v1/collections/districts", "/api/v1/collections/{id}"},
		{"/api/v1/collections/districts/features", "/api/v1/collections/{id}/features"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := normalizePath(tt.path); got != tt.want {
				t.Errorf("normalizePath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestStatusToString(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{200, "2xx"},
		{304, "3xx"},
		{429, "4xx"},
		{503, "5xx"},
		{100, "unknown"},
	}

	for _, tt := range tests {
		if got := statusToString(tt.code); got != tt.want {
			t.Errorf("statusToString(%d) = %q, want %q", tt.code, got, tt.want)
		}
	}
}
