package application

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/jobrunner/locus/internal/domain"
	"github.com/jobrunner/locus/internal/ports/output"
)

// mockStorage implements output.ObjectStorage for testing.
type mockStorage struct {
	mu      sync.Mutex
	objects []output.StorageObject
	listErr error
	readErr map[string]error
	reads   map[string]int
}

func (m *mockStorage) List(_ context.Context) ([]output.StorageObject, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]output.StorageObject(nil), m.objects...), nil
}

func (m *mockStorage) GetReader(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.readErr[key]; err != nil {
		return nil, err
	}
	if m.reads == nil {
		m.reads = map[string]int{}
	}
	m.reads[key]++
	return io.NopCloser(strings.NewReader(key)), nil
}

func (m *mockStorage) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, obj := range m.objects {
		if obj.Key == key {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockStorage) setObjects(objects ...output.StorageObject) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects = objects
}

func (m *mockStorage) readCount(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reads[key]
}

// mockDecoder implements output.CollectionDecoder. It serves preset
// features per collection ID and fails for IDs listed in errs.
type mockDecoder struct {
	features map[string][]domain.Feature
	errs     map[string]error
}

func (m *mockDecoder) Decode(r io.Reader, collectionID string) ([]domain.Feature, error) {
	if _, err := io.ReadAll(r); err != nil {
		return nil, err
	}
	if err := m.errs[collectionID]; err != nil {
		return nil, &domain.DecodeError{Source: collectionID, Err: err}
	}
	src := m.features[collectionID]
	out := make([]domain.Feature, len(src))
	for i, f := range src {
		f.CollectionID = collectionID
		out[i] = f
	}
	return out, nil
}

// mockMetrics records calls to output.MetricsCollector.
type mockMetrics struct {
	mu                 sync.Mutex
	queries            map[string]int
	intersectionChecks map[string]int
	loaded, ready      int
	storageOps         map[string]int
}

func newMockMetrics() *mockMetrics {
	return &mockMetrics{
		queries:            map[string]int{},
		intersectionChecks: map[string]int{},
		storageOps:         map[string]int{},
	}
}

func (m *mockMetrics) IncQueryCount(mode string, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries[mode+":"+statusOf(success)]++
}

func (m *mockMetrics) ObserveQueryDuration(_ string, _ time.Duration) {}

func (m *mockMetrics) AddIntersectionChecks(mode string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.intersectionChecks[mode] += n
}

func (m *mockMetrics) SetCollectionsLoaded(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loaded = count
}

func (m *mockMetrics) SetCollectionsReady(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ready = count
}

func (m *mockMetrics) IncStorageOperations(operation string, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.storageOps[operation+":"+statusOf(success)]++
}

func (m *mockMetrics) ObserveStorageDuration(_ string, _ time.Duration) {}

func statusOf(success bool) string {
	if success {
		return "success"
	}
	return "error"
}

var errBroken = errors.New("broken document")

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func pt(lat, lng float64) domain.Coordinate {
	return domain.MustCoordinate(lat, lng)
}

// square returns a closed axis-aligned polygon.
func square(lat, lng, size float64) *domain.Polygon {
	return domain.NewPolygon(
		pt(lat, lng), pt(lat+size, lng), pt(lat+size, lng+size), pt(lat, lng+size), pt(lat, lng),
	)
}

// fixture is two collections: "districts" with two squares and a road,
// "wells" with a single point.
func fixture() *mockDecoder {
	return &mockDecoder{
		features: map[string][]domain.Feature{
			"districts": {
				{ID: "north", Name: "North", Geometry: square(10, 0, 10), Properties: map[string]interface{}{"name": "North", "pop": 10}},
				{ID: "south", Name: "South", Geometry: square(0, 0, 10), Properties: map[string]interface{}{"name": "South", "pop": 20}},
				{ID: "road", Name: "road", Geometry: domain.NewLine(pt(-5, 5), pt(25, 5)), Properties: map[string]interface{}{}},
			},
			"wells": {
				{ID: "w1", Name: "w1", Geometry: pt(50, 50), Properties: map[string]interface{}{}},
			},
		},
		errs: map[string]error{"broken": errBroken},
	}
}

func newTestRegistry(storage *mockStorage, decoder *mockDecoder, metrics output.MetricsCollector) *CollectionRegistry {
	if metrics == nil {
		metrics = &output.NoOpMetrics{}
	}
	return NewCollectionRegistry(storage, map[string]output.CollectionDecoder{
		".geojson": decoder,
	}, metrics, testLogger())
}
