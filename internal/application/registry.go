// Package application contains the application services.
package application

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jobrunner/locus/internal/domain"
	"github.com/jobrunner/locus/internal/ports/output"
)

// CollectionRegistry manages collections loaded from object storage.
type CollectionRegistry struct {
	mu          sync.RWMutex
	collections map[string]*collectionEntry
	decoders    map[string]output.CollectionDecoder
	storage     output.ObjectStorage
	metrics     output.MetricsCollector
	logger      *slog.Logger
	listErr     error
	shadowed    map[string]bool // keys hidden by another key with the same ID
}

type collectionEntry struct {
	Collection *domain.Collection
	Status     domain.CollectionStatus
	Error      error
	Object     output.StorageObject
	Bounds     domain.Bounds
	HasBounds  bool
}

// NewCollectionRegistry creates a new collection registry. Decoders are
// keyed by lower-case file extension including the dot.
func NewCollectionRegistry(
	storage output.ObjectStorage,
	decoders map[string]output.CollectionDecoder,
	metrics output.MetricsCollector,
	logger *slog.Logger,
) *CollectionRegistry {
	return &CollectionRegistry{
		collections: make(map[string]*collectionEntry),
		decoders:    decoders,
		storage:     storage,
		metrics:     metrics,
		logger:      logger,
		shadowed:    make(map[string]bool),
	}
}

// LoadCollection loads the collection stored under key, replacing a
// previously loaded version. A failed reload keeps the entry in error state.
func (r *CollectionRegistry) LoadCollection(ctx context.Context, key string) error {
	return r.loadObject(ctx, output.StorageObject{Key: key})
}

func (r *CollectionRegistry) loadObject(ctx context.Context, obj output.StorageObject) error {
	id := DeriveCollectionID(obj.Key)
	r.logger.Info("loading collection", "id", id, "key", obj.Key)

	r.mu.Lock()
	entry, exists := r.collections[id]
	if exists && entry.Object.Key != obj.Key {
		r.mu.Unlock()
		return fmt.Errorf("collection %s already loaded from %s: %w", id, entry.Object.Key, domain.ErrInvalidInput)
	}
	if !exists {
		entry = &collectionEntry{Object: obj}
		r.collections[id] = entry
	}
	entry.Status = domain.StatusLoading
	r.mu.Unlock()
	r.updateMetrics()

	collection, err := r.readCollection(ctx, id, obj)
	if err != nil {
		r.logger.Error("failed to load collection", "id", id, "key", obj.Key, "error", err)
		r.mu.Lock()
		entry.Status = domain.StatusError
		entry.Error = err
		r.mu.Unlock()
		r.updateMetrics()
		return err
	}

	bounds, hasBounds := collection.Bounds()

	r.mu.Lock()
	entry.Collection = collection
	entry.Status = domain.StatusReady
	entry.Error = nil
	entry.Object = obj
	entry.Bounds = bounds
	entry.HasBounds = hasBounds
	r.mu.Unlock()

	r.updateMetrics()
	r.logger.Info("collection loaded", "id", id, "features", collection.FeatureCount())

	return nil
}

// readCollection fetches and decodes one storage object.
func (r *CollectionRegistry) readCollection(ctx context.Context, id string, obj output.StorageObject) (*domain.Collection, error) {
	ext := strings.ToLower(path.Ext(obj.Key))
	decoder, ok := r.decoders[ext]
	if !ok {
		return nil, fmt.Errorf("no decoder for %q: %w", ext, domain.ErrUnsupported)
	}

	start := time.Now()
	reader, err := r.storage.GetReader(ctx, obj.Key)
	r.metrics.ObserveStorageDuration("read", time.Since(start))
	r.metrics.IncStorageOperations("read", err == nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = reader.Close() }()

	features, err := decoder.Decode(reader, id)
	if err != nil {
		return nil, err
	}

	for _, f := range features {
		if err := f.Validate(); err != nil {
			return nil, fmt.Errorf("feature %s: %w", f.ID, err)
		}
	}

	return &domain.Collection{
		ID:       id,
		Name:     id,
		Key:      obj.Key,
		Size:     obj.Size,
		Features: features,
		LoadedAt: time.Now(),
	}, nil
}

// UnloadCollection removes a collection from the registry.
func (r *CollectionRegistry) UnloadCollection(_ context.Context, id string) error {
	r.logger.Info("unloading collection", "id", id)

	r.mu.Lock()
	entry, ok := r.collections[id]
	if !ok {
		r.mu.Unlock()
		return domain.ErrCollectionNotFound
	}
	entry.Status = domain.StatusUnloading
	delete(r.collections, id)
	r.mu.Unlock()

	r.updateMetrics()
	return nil
}

// ListCollections returns all loaded collections sorted by ID.
func (r *CollectionRegistry) ListCollections(_ context.Context) ([]domain.Collection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	collections := make([]domain.Collection, 0, len(r.collections))
	for _, entry := range r.collections {
		if entry.Collection != nil {
			collections = append(collections, *entry.Collection)
		}
	}

	sort.Slice(collections, func(i, j int) bool { return collections[i].ID < collections[j].ID })
	return collections, nil
}

// GetCollection returns a specific collection by ID.
func (r *CollectionRegistry) GetCollection(_ context.Context, id string) (*domain.Collection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.collections[id]
	if !ok || entry.Collection == nil {
		return nil, domain.ErrCollectionNotFound
	}

	return entry.Collection, nil
}

// GetCollectionStatus returns the status of a collection.
func (r *CollectionRegistry) GetCollectionStatus(_ context.Context, id string) (domain.CollectionStatus, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.collections[id]
	if !ok {
		return "", domain.ErrCollectionNotFound
	}

	return entry.Status, nil
}

// CollectionError returns the last load error of a collection.
func (r *CollectionRegistry) CollectionError(id string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if entry, ok := r.collections[id]; ok {
		return entry.Error
	}
	return nil
}

// IsReady returns true if a collection is ready for queries.
func (r *CollectionRegistry) IsReady(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.collections[id]
	return ok && entry.Status == domain.StatusReady
}

// CollectionIDs returns the sorted IDs of all registered collections.
func (r *CollectionRegistry) CollectionIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.collections))
	for id := range r.collections {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ReadyCollectionIDs returns the sorted IDs of all ready collections.
func (r *CollectionRegistry) ReadyCollectionIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.collections))
	for id, entry := range r.collections {
		if entry.Status == domain.StatusReady {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// readyCollection is a snapshot of a ready collection with its envelope.
type readyCollection struct {
	Collection *domain.Collection
	Bounds     domain.Bounds
	HasBounds  bool
}

// ready returns snapshots of all ready collections sorted by ID.
func (r *CollectionRegistry) ready() []readyCollection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]readyCollection, 0, len(r.collections))
	for _, entry := range r.collections {
		if entry.Status == domain.StatusReady {
			out = append(out, readyCollection{Collection: entry.Collection, Bounds: entry.Bounds, HasBounds: entry.HasBounds})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Collection.ID < out[j].Collection.ID })
	return out
}

// lookup returns the snapshot of one collection, which must be ready.
func (r *CollectionRegistry) lookup(id string) (readyCollection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.collections[id]
	if !ok {
		return readyCollection{}, domain.ErrCollectionNotFound
	}
	if entry.Status != domain.StatusReady {
		return readyCollection{}, fmt.Errorf("collection %s is %s: %w", id, entry.Status, domain.ErrNotReady)
	}
	return readyCollection{Collection: entry.Collection, Bounds: entry.Bounds, HasBounds: entry.HasBounds}, nil
}

// updateMetrics updates the metrics collector with current collection counts.
func (r *CollectionRegistry) updateMetrics() {
	r.mu.RLock()
	total := len(r.collections)
	ready := 0
	for _, entry := range r.collections {
		if entry.Status == domain.StatusReady {
			ready++
		}
	}
	r.mu.RUnlock()

	r.metrics.SetCollectionsLoaded(total)
	r.metrics.SetCollectionsReady(ready)
}

// list lists storage and remembers the outcome for health reporting.
func (r *CollectionRegistry) list(ctx context.Context) ([]output.StorageObject, error) {
	start := time.Now()
	objects, err := r.storage.List(ctx)
	r.metrics.ObserveStorageDuration("list", time.Since(start))
	r.metrics.IncStorageOperations("list", err == nil)

	r.mu.Lock()
	r.listErr = err
	r.mu.Unlock()

	return objects, err
}

// StorageError returns the error of the most recent storage listing.
func (r *CollectionRegistry) StorageError() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.listErr
}

// LoadAll loads every collection document found in storage. Individual
// load failures are logged and leave the collection in error state.
func (r *CollectionRegistry) LoadAll(ctx context.Context) error {
	r.logger.Info("loading all collections from storage")

	objects, err := r.list(ctx)
	if err != nil {
		return err
	}

	selected := r.selectObjects(objects)
	for _, id := range sortedIDs(selected) {
		if err := ctx.Err(); err != nil {
			return err
		}
		obj := selected[id]
		r.releaseMoved(ctx, id, obj.Key)
		if err := r.loadObject(ctx, obj); err != nil {
			r.logger.Error("failed to load collection", "key", obj.Key, "error", err)
		}
	}

	return nil
}

// selectObjects picks one storage object per collection ID. The key a
// collection is already loaded from wins while it is still listed;
// otherwise the lexically smallest key does. Each shadowed key is
// reported once until it stops being shadowed.
func (r *CollectionRegistry) selectObjects(objects []output.StorageObject) map[string]output.StorageObject {
	byID := make(map[string][]output.StorageObject, len(objects))
	for _, obj := range objects {
		id := DeriveCollectionID(obj.Key)
		byID[id] = append(byID[id], obj)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	selected := make(map[string]output.StorageObject, len(byID))
	shadowed := make(map[string]bool)
	for id, candidates := range byID {
		sort.Slice(candidates, func(i, j int) bool { return candidates[i].Key < candidates[j].Key })
		winner := candidates[0]
		if entry, ok := r.collections[id]; ok {
			for _, c := range candidates {
				if c.Key == entry.Object.Key {
					winner = c
					break
				}
			}
		}
		selected[id] = winner

		for _, c := range candidates {
			if c.Key == winner.Key {
				continue
			}
			shadowed[c.Key] = true
			if !r.shadowed[c.Key] {
				r.logger.Warn("ignoring object with duplicate collection ID",
					"id", id, "key", c.Key, "using", winner.Key)
			}
		}
	}
	r.shadowed = shadowed

	return selected
}

// releaseMoved unloads id when it is registered under a key other than key,
// so the collection can be loaded from its new object.
func (r *CollectionRegistry) releaseMoved(ctx context.Context, id, key string) {
	r.mu.RLock()
	var prev string
	if entry, ok := r.collections[id]; ok {
		prev = entry.Object.Key
	}
	r.mu.RUnlock()
	if prev == "" || prev == key {
		return
	}

	r.logger.Info("collection moved to another object", "id", id, "from", prev, "to", key)
	_ = r.UnloadCollection(ctx, id)
}

func sortedIDs(objects map[string]output.StorageObject) []string {
	ids := make([]string, 0, len(objects))
	for id := range objects {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// IsLoaded returns true if a collection with the given ID is registered.
func (r *CollectionRegistry) IsLoaded(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.collections[id]
	return ok
}

// CollectionCount returns the number of registered collections.
func (r *CollectionRegistry) CollectionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.collections)
}

// SyncStats contains statistics from a sync operation.
type SyncStats struct {
	Added   int
	Updated int
	Removed int
	Failed  []string
}

// Sync reconciles the registry with storage: new objects are loaded,
// changed objects reloaded, and collections whose object disappeared
// are unloaded.
func (r *CollectionRegistry) Sync(ctx context.Context) (SyncStats, error) {
	r.logger.Info("syncing collections from storage")

	objects, err := r.list(ctx)
	if err != nil {
		return SyncStats{}, err
	}

	remote := r.selectObjects(objects)
	stats := SyncStats{}

	for _, id := range sortedIDs(remote) {
		obj := remote[id]
		r.releaseMoved(ctx, id, obj.Key)
		loaded, changed := r.compare(id, obj)
		if loaded && !changed {
			r.logger.Debug("collection unchanged, skipping", "id", id)
			continue
		}

		if err := r.loadObject(ctx, obj); err != nil {
			stats.Failed = append(stats.Failed, id)
			continue
		}

		if loaded {
			stats.Updated++
			r.logger.Info("collection reloaded", "id", id)
		} else {
			stats.Added++
			r.logger.Info("new collection synced", "id", id)
		}
	}

	for _, id := range r.findCollectionsToRemove(remote) {
		r.logger.Info("removing collection not in storage", "id", id)
		if err := r.UnloadCollection(ctx, id); err != nil {
			r.logger.Error("failed to unload removed collection", "id", id, "error", err)
			continue
		}
		stats.Removed++
	}

	r.logger.Info("sync completed",
		"added", stats.Added,
		"updated", stats.Updated,
		"removed", stats.Removed,
		"failed", len(stats.Failed),
		"total", r.CollectionCount(),
	)
	return stats, nil
}

// compare reports whether id is registered and whether obj differs from
// the object it was loaded from. Entries in error state always count as
// changed so they are retried.
func (r *CollectionRegistry) compare(id string, obj output.StorageObject) (loaded, changed bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.collections[id]
	if !ok {
		return false, true
	}
	if entry.Status == domain.StatusError {
		return true, true
	}
	prev := entry.Object
	return true, prev.ETag != obj.ETag || prev.LastModified != obj.LastModified || prev.Size != obj.Size
}

// findCollectionsToRemove returns IDs that are registered but not in storage.
func (r *CollectionRegistry) findCollectionsToRemove(remote map[string]output.StorageObject) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var toRemove []string
	for id := range r.collections {
		if _, exists := remote[id]; !exists {
			toRemove = append(toRemove, id)
		}
	}
	sort.Strings(toRemove)
	return toRemove
}

// DeriveCollectionID extracts a collection ID from an object key.
func DeriveCollectionID(key string) string {
	base := path.Base(strings.ReplaceAll(key, "\\", "/"))
	return strings.TrimSuffix(base, path.Ext(base))
}
