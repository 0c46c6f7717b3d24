package application

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jobrunner/locus/internal/domain"
	"github.com/jobrunner/locus/internal/ports/input"
)

// DefaultSyncCooldown is the minimum time between API-triggered syncs.
const DefaultSyncCooldown = 30 * time.Second

// SyncService manages periodic synchronization with object storage.
type SyncService struct {
	registry *CollectionRegistry
	interval time.Duration
	cooldown time.Duration
	logger   *slog.Logger

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	// Rate limiting for API triggers
	lastAPISync time.Time
	apiMutex    sync.Mutex

	// Prevents concurrent sync operations
	syncOpMutex sync.Mutex

	nextSync time.Time
	syncMu   sync.RWMutex
}

// NewSyncService creates a new sync service.
func NewSyncService(registry *CollectionRegistry, interval time.Duration, logger *slog.Logger) *SyncService {
	return &SyncService{
		registry: registry,
		interval: interval,
		cooldown: DefaultSyncCooldown,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic sync scheduler. A zero interval disables it.
func (s *SyncService) Start(ctx context.Context) {
	if s.interval <= 0 {
		s.logger.Info("periodic sync disabled")
		return
	}

	s.logger.Info("starting sync service", "interval", s.interval)

	s.wg.Add(1)
	go s.run(ctx)
}

// run is the main sync loop.
func (s *SyncService) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.setNextSync(time.Now().Add(s.interval))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("sync service stopped: context canceled")
			return
		case <-s.stopCh:
			s.logger.Info("sync service stopped")
			return
		case <-ticker.C:
			s.logger.Debug("scheduled sync triggered")
			if _, err := s.sync(ctx); err != nil {
				s.logger.Error("sync failed", "error", err)
			}
			s.setNextSync(time.Now().Add(s.interval))
		}
	}
}

// Stop gracefully stops the sync service.
func (s *SyncService) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Info("stopping sync service")
		close(s.stopCh)
	})
	s.wg.Wait()
}

// TriggerSync runs a sync on demand. Returns domain.ErrRateLimited when
// the previous trigger is more recent than the cooldown.
func (s *SyncService) TriggerSync(ctx context.Context) (*input.SyncResult, error) {
	s.apiMutex.Lock()
	defer s.apiMutex.Unlock()

	if !s.lastAPISync.IsZero() && time.Since(s.lastAPISync) < s.cooldown {
		return nil, domain.ErrRateLimited
	}
	s.lastAPISync = time.Now()

	return s.sync(ctx)
}

// sync performs one reconciliation; concurrent callers are serialized.
func (s *SyncService) sync(ctx context.Context) (*input.SyncResult, error) {
	s.syncOpMutex.Lock()
	defer s.syncOpMutex.Unlock()

	stats, err := s.registry.Sync(ctx)
	if err != nil {
		return nil, err
	}

	return &input.SyncResult{
		CollectionsAdded:   stats.Added,
		CollectionsUpdated: stats.Updated,
		CollectionsRemoved: stats.Removed,
		CollectionsFailed:  stats.Failed,
		CollectionsTotal:   s.registry.CollectionCount(),
		SyncedAt:           time.Now(),
		NextScheduledAt:    s.getNextSync(),
	}, nil
}

func (s *SyncService) setNextSync(t time.Time) {
	s.syncMu.Lock()
	defer s.syncMu.Unlock()
	s.nextSync = t
}

func (s *SyncService) getNextSync() time.Time {
	s.syncMu.RLock()
	defer s.syncMu.RUnlock()
	return s.nextSync
}

// Interval returns the sync interval.
func (s *SyncService) Interval() time.Duration {
	return s.interval
}

// Cooldown returns the minimum time between API-triggered syncs.
func (s *SyncService) Cooldown() time.Duration {
	return s.cooldown
}
