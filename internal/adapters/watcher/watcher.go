// Package watcher reloads collections when documents change on disk.
package watcher

import (
	"context"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Event represents a debounced change to a collection document.
type Event struct {
	Path      string
	Operation Operation
}

// Operation represents the type of file operation.
type Operation int

// File operation types.
const (
	OpCreate Operation = iota
	OpModify
	OpDelete
)

// String returns the string representation of the operation.
func (o Operation) String() string {
	switch o {
	case OpCreate:
		return "create"
	case OpModify:
		return "modify"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Handler is called when a relevant file event occurs.
type Handler func(ctx context.Context, event Event) error

// Filter selects the paths the watcher reports.
type Filter func(path string) bool

// pendingEvent holds a debounced event with its operation.
type pendingEvent struct {
	timestamp time.Time
	op        Operation
}

// Watcher watches directories for collection document changes.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	handler   Handler
	filter    Filter
	logger    *slog.Logger
	paths     []string
	debounce  time.Duration
	mu        sync.Mutex
	pending   map[string]*pendingEvent
	inflight  sync.WaitGroup
}

// Config holds watcher configuration.
type Config struct {
	Paths    []string
	Debounce time.Duration
	Filter   Filter // nil reports every file
}

// New creates a new file watcher.
func New(cfg Config, handler Handler, logger *slog.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if cfg.Debounce == 0 {
		cfg.Debounce = 500 * time.Millisecond
	}
	if cfg.Filter == nil {
		cfg.Filter = func(string) bool { return true }
	}

	return &Watcher{
		fsWatcher: fsWatcher,
		handler:   handler,
		filter:    cfg.Filter,
		logger:    logger,
		paths:     cfg.Paths,
		debounce:  cfg.Debounce,
		pending:   make(map[string]*pendingEvent),
	}, nil
}

// Start starts watching the configured paths.
func (w *Watcher) Start(ctx context.Context) error {
	for _, path := range w.paths {
		if err := w.AddPath(path); err != nil {
			w.logger.Warn("failed to watch path", "path", path, "error", err)
		}
	}

	go w.eventLoop(ctx)
	go w.debounceLoop(ctx)

	return nil
}

// Stop closes the watcher and waits for running handlers.
func (w *Watcher) Stop() error {
	err := w.fsWatcher.Close()
	w.inflight.Wait()
	return err
}

// eventLoop processes fsnotify events.
func (w *Watcher) eventLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleFsEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}

// handleFsEvent records a single fsnotify event for debouncing.
func (w *Watcher) handleFsEvent(event fsnotify.Event) {
	if !w.filter(event.Name) {
		return
	}

	w.logger.Debug("file event", "path", event.Name, "op", event.Op.String())
	w.record(event.Name, fsnotifyOpToOperation(event.Op), time.Now())
}

func (w *Watcher) record(path string, op Operation, now time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()

	existing, exists := w.pending[path]
	if !exists {
		w.pending[path] = &pendingEvent{timestamp: now, op: op}
		return
	}

	existing.timestamp = now
	existing.op = mergeOperations(existing.op, op)
}

// mergeOperations folds a new operation into a pending one. A delete
// wins unless the file comes back; a recreated file is reported as
// created so it loads fresh.
func mergeOperations(pending, next Operation) Operation {
	switch {
	case pending == OpDelete && next != OpDelete:
		return OpCreate
	case next == OpDelete:
		return OpDelete
	case pending == OpCreate:
		return OpCreate
	default:
		return next
	}
}

// debounceLoop processes debounced events.
func (w *Watcher) debounceLoop(ctx context.Context) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case now := <-ticker.C:
			for _, e := range w.due(now) {
				w.dispatch(ctx, e)
			}
		}
	}
}

// due removes and returns the events quiet for longer than the debounce.
func (w *Watcher) due(now time.Time) []Event {
	w.mu.Lock()
	defer w.mu.Unlock()

	var events []Event
	for path, pending := range w.pending {
		if now.Sub(pending.timestamp) < w.debounce {
			continue
		}
		delete(w.pending, path)
		events = append(events, Event{Path: path, Operation: pending.op})
	}

	sort.Slice(events, func(i, j int) bool { return events[i].Path < events[j].Path })
	return events
}

func (w *Watcher) dispatch(ctx context.Context, e Event) {
	w.logger.Info("processing file event",
		"path", e.Path,
		"operation", e.Operation.String(),
	)

	w.inflight.Add(1)
	go func() {
		defer w.inflight.Done()
		if err := w.handler(ctx, e); err != nil {
			w.logger.Error("handler error",
				"path", e.Path,
				"operation", e.Operation.String(),
				"error", err,
			)
		}
	}()
}

// fsnotifyOpToOperation converts fsnotify.Op to our Operation type.
func fsnotifyOpToOperation(op fsnotify.Op) Operation {
	switch {
	case op.Has(fsnotify.Remove):
		return OpDelete
	case op.Has(fsnotify.Rename):
		// The file is gone from its original location
		return OpDelete
	case op.Has(fsnotify.Create):
		return OpCreate
	default:
		return OpModify
	}
}

// AddPath adds a path to watch.
func (w *Watcher) AddPath(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	if err := w.fsWatcher.Add(absPath); err != nil {
		return err
	}

	w.logger.Info("watching directory", "path", absPath)
	return nil
}

// RemovePath removes a path from watching.
func (w *Watcher) RemovePath(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	if err := w.fsWatcher.Remove(absPath); err != nil {
		return err
	}

	w.logger.Info("removed watch path", "path", absPath)
	return nil
}
