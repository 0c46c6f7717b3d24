package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/jobrunner/locus/internal/config"
	"github.com/jobrunner/locus/internal/domain"
	"github.com/jobrunner/locus/internal/ports/input"
)

// mockQueryService implements input.QueryService and records its calls.
type mockQueryService struct {
	response *domain.QueryResponse
	result   *domain.QueryResult
	relation domain.Relation
	err      error

	lastReq        domain.QueryRequest
	lastCollection string
	relateCalls    int
	hadDeadline    bool
}

func (m *mockQueryService) Query(ctx context.Context, req domain.QueryRequest) (*domain.QueryResponse, error) {
	m.lastReq = req
	_, m.hadDeadline = ctx.Deadline()
	if m.err != nil {
		return nil, m.err
	}
	if m.response == nil {
		return &domain.QueryResponse{Precise: req.Precise}, nil
	}
	return m.response, nil
}

func (m *mockQueryService) QueryCollection(_ context.Context, collectionID string, req domain.QueryRequest) (*domain.QueryResult, error) {
	m.lastReq = req
	m.lastCollection = collectionID
	if m.err != nil {
		return nil, m.err
	}
	if m.result == nil {
		return &domain.QueryResult{CollectionID: collectionID}, nil
	}
	return m.result, nil
}

func (m *mockQueryService) Relate(_ context.Context, _, _ domain.Geometry) (domain.Relation, error) {
	m.relateCalls++
	return m.relation, m.err
}

// mockRegistry implements input.CollectionRegistry.
type mockRegistry struct {
	collections []domain.Collection
	status      map[string]domain.CollectionStatus
}

func (m *mockRegistry) ListCollections(_ context.Context) ([]domain.Collection, error) {
	return m.collections, nil
}

func (m *mockRegistry) GetCollection(_ context.Context, id string) (*domain.Collection, error) {
	for i := range m.collections {
		if m.collections[i].ID == id {
			return &m.collections[i], nil
		}
	}
	return nil, domain.ErrCollectionNotFound
}

func (m *mockRegistry) GetCollectionStatus(_ context.Context, id string) (domain.CollectionStatus, error) {
	if s, ok := m.status[id]; ok {
		return s, nil
	}
	return "", domain.ErrCollectionNotFound
}

// mockHealth implements input.HealthChecker.
type mockHealth struct {
	healthy bool
	ready   bool
}

func (m *mockHealth) IsHealthy(_ context.Context) bool { return m.healthy }

func (m *mockHealth) IsReady(_ context.Context) bool { return m.ready }

func (m *mockHealth) GetHealthDetails(_ context.Context) input.HealthDetails {
	return input.HealthDetails{
		Healthy:           m.healthy,
		Ready:             m.ready,
		CollectionsLoaded: 2,
		CollectionsReady:  1,
		Components:        map[string]string{"storage": "ok"},
	}
}

// mockSync implements input.SyncTrigger.
type mockSync struct {
	result *input.SyncResult
	err    error
	calls  int
}

func (m *mockSync) TriggerSync(_ context.Context) (*input.SyncResult, error) {
	m.calls++
	return m.result, m.err
}

// mockExporter implements MetricsExporter and counts instrumented requests.
type mockExporter struct {
	mu       sync.Mutex
	requests int
}

func (m *mockExporter) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "locus_queries_total 1\n")
	})
}

func (m *mockExporter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		m.requests++
		m.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

// fixedDistance implements domain.DistanceCalculator.
type fixedDistance float64

func (d fixedDistance) Distance(_, _ domain.Coordinate) (float64, error) {
	return float64(d), nil
}

// latFormatter implements domain.Formatter.
type latFormatter struct{}

func (latFormatter) Format(c domain.Coordinate) string {
	return "lat=" + strconv.FormatFloat(c.Lat(), 'f', -1, 64)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testDeps bundles the mocks behind a test server.
type testDeps struct {
	query    *mockQueryService
	registry *mockRegistry
	health   *mockHealth
	sync     *mockSync
}

func newTestDeps() *testDeps {
	return &testDeps{
		query:    &mockQueryService{},
		registry: &mockRegistry{status: map[string]domain.CollectionStatus{}},
		health:   &mockHealth{healthy: true, ready: true},
		sync:     &mockSync{result: &input.SyncResult{CollectionsTotal: 2}},
	}
}

func newTestServer(d *testDeps, opts Options) *Server {
	var trigger input.SyncTrigger
	if d.sync != nil {
		trigger = d.sync
	}

	if opts.Distances == nil {
		opts.Distances = map[string]domain.DistanceCalculator{"haversine": fixedDistance(1234.5)}
	}
	if opts.Formatters == nil {
		opts.Formatters = map[string]domain.Formatter{"decimal": latFormatter{}}
	}

	return NewServer(
		config.ServerConfig{Host: "localhost", Port: 8080, MaxBodyBytes: 4096},
		d.query,
		d.registry,
		d.health,
		trigger,
		testLogger(),
		opts,
	)
}
