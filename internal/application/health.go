package application

import (
	"context"

	"github.com/jobrunner/locus/internal/domain"
	"github.com/jobrunner/locus/internal/ports/input"
)

// HealthService provides health check functionality.
type HealthService struct {
	registry *CollectionRegistry
}

// NewHealthService creates a new health service.
func NewHealthService(registry *CollectionRegistry) *HealthService {
	return &HealthService{
		registry: registry,
	}
}

// IsHealthy returns true if the service is healthy.
func (s *HealthService) IsHealthy(_ context.Context) bool {
	return true
}

// IsReady returns true if at least one collection is ready, or none are
// registered at all.
func (s *HealthService) IsReady(_ context.Context) bool {
	return s.registry.CollectionCount() == 0 || len(s.registry.ReadyCollectionIDs()) > 0
}

// GetHealthDetails returns detailed health information.
func (s *HealthService) GetHealthDetails(ctx context.Context) input.HealthDetails {
	storage := "ok"
	if err := s.registry.StorageError(); err != nil {
		storage = "error: " + err.Error()
	}

	return input.HealthDetails{
		Healthy:           s.IsHealthy(ctx),
		Ready:             s.IsReady(ctx),
		CollectionsLoaded: s.registry.CollectionCount(),
		CollectionsReady:  len(s.registry.ReadyCollectionIDs()),
		Components: map[string]string{
			"storage": storage,
		},
	}
}

// CollectionHealth contains health info for a single collection.
type CollectionHealth struct {
	ID     string
	Status domain.CollectionStatus
	Error  string
}

// GetCollectionHealth returns health info for all registered collections,
// including those that failed to load.
func (s *HealthService) GetCollectionHealth(ctx context.Context) []CollectionHealth {
	ids := s.registry.CollectionIDs()

	health := make([]CollectionHealth, 0, len(ids))
	for _, id := range ids {
		status, err := s.registry.GetCollectionStatus(ctx, id)
		if err != nil {
			continue
		}
		h := CollectionHealth{ID: id, Status: status}
		if loadErr := s.registry.CollectionError(id); loadErr != nil {
			h.Error = loadErr.Error()
		}
		health = append(health, h)
	}

	return health
}
