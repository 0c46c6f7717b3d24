// Package input defines the primary/driving ports of the application.
package input

import (
	"context"
	"time"

	"github.com/jobrunner/locus/internal/domain"
)

// QueryService defines the primary port for intersection queries.
type QueryService interface {
	// Query evaluates a geometry against all ready collections.
	Query(ctx context.Context, req domain.QueryRequest) (*domain.QueryResponse, error)

	// QueryCollection evaluates a geometry against one collection.
	QueryCollection(ctx context.Context, collectionID string, req domain.QueryRequest) (*domain.QueryResult, error)

	// Relate reports the bounds and precise relation of two shapes.
	Relate(ctx context.Context, a, b domain.Geometry) (domain.Relation, error)
}

// CollectionRegistry defines the primary port for collection management.
type CollectionRegistry interface {
	// ListCollections returns all registered collections.
	ListCollections(ctx context.Context) ([]domain.Collection, error)

	// GetCollection returns a specific collection by ID.
	GetCollection(ctx context.Context, id string) (*domain.Collection, error)

	// GetCollectionStatus returns the status of a collection.
	GetCollectionStatus(ctx context.Context, id string) (domain.CollectionStatus, error)
}

// SyncTrigger defines the primary port for on-demand storage reconciliation.
type SyncTrigger interface {
	// TriggerSync reconciles loaded collections with storage.
	// Returns domain.ErrRateLimited when called too often.
	TriggerSync(ctx context.Context) (*SyncResult, error)
}

// SyncResult summarizes a storage reconciliation.
type SyncResult struct {
	CollectionsAdded   int       `json:"collections_added"`
	CollectionsUpdated int       `json:"collections_updated"`
	CollectionsRemoved int       `json:"collections_removed"`
	CollectionsFailed  []string  `json:"collections_failed,omitempty"`
	CollectionsTotal   int       `json:"collections_total"`
	SyncedAt           time.Time `json:"synced_at"`
	NextScheduledAt    time.Time `json:"next_scheduled_at,omitempty"`
}

// HealthChecker defines the primary port for health checks.
type HealthChecker interface {
	// IsHealthy returns true if the service is healthy.
	IsHealthy(ctx context.Context) bool

	// IsReady returns true if the service is ready to accept requests.
	IsReady(ctx context.Context) bool

	// GetHealthDetails returns detailed health information.
	GetHealthDetails(ctx context.Context) HealthDetails
}

// HealthDetails contains detailed health information.
type HealthDetails struct {
	Healthy           bool              // Overall health status
	Ready             bool              // Ready to accept requests
	CollectionsLoaded int               // Number of loaded collections
	CollectionsReady  int               // Number of ready collections
	Components        map[string]string // Component statuses
}
