package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/jobrunner/locus/internal/domain"
	"github.com/jobrunner/locus/internal/ports/output"
)

// Query modes used as metric labels.
const (
	ModeBounds  = "bounds"
	ModePrecise = "precise"
)

// ctxCheckInterval is the number of features evaluated between
// cancellation checks.
const ctxCheckInterval = 1024

// QueryService evaluates intersection queries against loaded collections.
type QueryService struct {
	registry    *CollectionRegistry
	metrics     output.MetricsCollector
	logger      *slog.Logger
	maxFeatures int
}

// QueryServiceConfig holds configuration for the query service.
type QueryServiceConfig struct {
	MaxFeatures int // Per collection result limit
}

// NewQueryService creates a new query service.
func NewQueryService(
	registry *CollectionRegistry,
	metrics output.MetricsCollector,
	logger *slog.Logger,
	cfg QueryServiceConfig,
) *QueryService {
	if cfg.MaxFeatures == 0 {
		cfg.MaxFeatures = 1000
	}

	return &QueryService{
		registry:    registry,
		metrics:     metrics,
		logger:      logger,
		maxFeatures: cfg.MaxFeatures,
	}
}

// Query evaluates the request geometry against every ready collection, or
// only req.CollectionID when set.
func (s *QueryService) Query(ctx context.Context, req domain.QueryRequest) (*domain.QueryResponse, error) {
	start := time.Now()
	mode := queryMode(req.Precise)

	if err := req.Validate(); err != nil {
		s.metrics.IncQueryCount(mode, false)
		return nil, err
	}

	var collections []readyCollection
	if req.CollectionID != "" {
		c, err := s.registry.lookup(req.CollectionID)
		if err != nil {
			s.metrics.IncQueryCount(mode, false)
			return nil, err
		}
		collections = []readyCollection{c}
	} else {
		collections = s.registry.ready()
	}

	response := &domain.QueryResponse{
		Precise: req.Precise,
		Bounds:  req.Geometry.Bounds(),
	}

	checked := 0
	for _, c := range collections {
		if err := ctx.Err(); err != nil {
			s.metrics.IncQueryCount(mode, false)
			return nil, err
		}

		result, err := s.evaluate(ctx, c, &req)
		checked += result.Checked
		if err != nil {
			s.metrics.AddIntersectionChecks(mode, checked)
			s.metrics.IncQueryCount(mode, false)
			return nil, err
		}

		if result.HasFeatures() {
			response.AddResult(*result)
		}
	}

	response.ProcessingTime = time.Since(start)
	s.metrics.AddIntersectionChecks(mode, checked)
	s.metrics.ObserveQueryDuration(mode, response.ProcessingTime)
	s.metrics.IncQueryCount(mode, true)

	s.logger.Debug("query completed",
		"mode", mode,
		"collections", len(collections),
		"checked", checked,
		"matches", response.TotalFeatures,
		"duration", response.ProcessingTime,
	)

	return response, nil
}

// QueryCollection evaluates the request geometry against one collection.
// The result is returned even when nothing matched.
func (s *QueryService) QueryCollection(ctx context.Context, collectionID string, req domain.QueryRequest) (*domain.QueryResult, error) {
	mode := queryMode(req.Precise)

	if err := req.Validate(); err != nil {
		s.metrics.IncQueryCount(mode, false)
		return nil, err
	}

	c, err := s.registry.lookup(collectionID)
	if err != nil {
		s.metrics.IncQueryCount(mode, false)
		return nil, err
	}

	result, err := s.evaluate(ctx, c, &req)
	s.metrics.AddIntersectionChecks(mode, result.Checked)
	if err != nil {
		s.metrics.IncQueryCount(mode, false)
		return nil, err
	}

	s.metrics.ObserveQueryDuration(mode, result.QueryTime)
	s.metrics.IncQueryCount(mode, true)
	return result, nil
}

// evaluate tests every feature of a collection until maxFeatures matched.
// The returned result is never nil.
func (s *QueryService) evaluate(ctx context.Context, c readyCollection, req *domain.QueryRequest) (*domain.QueryResult, error) {
	start := time.Now()

	result := &domain.QueryResult{
		CollectionID:   c.Collection.ID,
		CollectionName: c.Collection.Name,
	}

	// Whole collection outside the query envelope.
	if !c.HasBounds || !domain.IntersectsBounds(req.Geometry.Bounds(), c.Bounds) {
		result.QueryTime = time.Since(start)
		return result, nil
	}

	for i := range c.Collection.Features {
		if i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return result, err
			}
		}

		f := &c.Collection.Features[i]
		result.Checked++
		if !domain.Intersects(req.Geometry, f.Geometry, req.Precise) {
			continue
		}

		result.Features = append(result.Features, f.FilterProperties(req.Properties))

		if len(result.Features) >= s.maxFeatures {
			s.logger.Debug("max features reached", "collection", c.Collection.ID, "limit", s.maxFeatures)
			break
		}
	}

	result.QueryTime = time.Since(start)
	return result, nil
}

// Relate reports the bounds and precise relation of two shapes.
func (s *QueryService) Relate(_ context.Context, a, b domain.Geometry) (domain.Relation, error) {
	for _, g := range []domain.Geometry{a, b} {
		req := domain.QueryRequest{Geometry: g}
		if err := req.Validate(); err != nil {
			return domain.Relation{}, err
		}
	}
	return domain.Relate(a, b), nil
}

func queryMode(precise bool) string {
	if precise {
		return ModePrecise
	}
	return ModeBounds
}
