// Package app provides application initialization and wiring.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jobrunner/locus/internal/adapters/distance"
	"github.com/jobrunner/locus/internal/adapters/format"
	"github.com/jobrunner/locus/internal/adapters/geojson"
	"github.com/jobrunner/locus/internal/adapters/geopackage"
	httpAdapter "github.com/jobrunner/locus/internal/adapters/http"
	"github.com/jobrunner/locus/internal/adapters/metrics"
	"github.com/jobrunner/locus/internal/adapters/storage"
	tlsAdapter "github.com/jobrunner/locus/internal/adapters/tls"
	"github.com/jobrunner/locus/internal/adapters/watcher"
	"github.com/jobrunner/locus/internal/application"
	"github.com/jobrunner/locus/internal/config"
	"github.com/jobrunner/locus/internal/domain"
	"github.com/jobrunner/locus/internal/ports/output"
)

// App holds all application components.
type App struct {
	Config        *config.Config
	Logger        *slog.Logger
	Storage       output.ObjectStorage
	Registry      *application.CollectionRegistry
	QueryService  *application.QueryService
	HealthService *application.HealthService
	SyncService   *application.SyncService
	HTTPServer    *httpAdapter.Server
	Server        *tlsAdapter.Server
	Watcher       *watcher.Watcher
	Metrics       *metrics.Collector
}

// New creates and initializes a new application.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	var metricsCollector output.MetricsCollector = &output.NoOpMetrics{}
	if cfg.Metrics.Enabled {
		app.Metrics = metrics.NewCollector("locus")
		metricsCollector = app.Metrics
	}

	store, err := initStorage(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("initializing storage: %w", err)
	}
	app.Storage = store

	app.Registry = application.NewCollectionRegistry(
		app.Storage,
		Decoders(cfg.Storage.TempDir),
		metricsCollector,
		logger,
	)

	app.QueryService = application.NewQueryService(
		app.Registry,
		metricsCollector,
		logger,
		application.QueryServiceConfig{
			MaxFeatures: cfg.Query.MaxFeatures,
		},
	)

	app.HealthService = application.NewHealthService(app.Registry)
	app.SyncService = application.NewSyncService(app.Registry, cfg.Storage.SyncInterval, logger)

	opts := httpAdapter.Options{
		PreciseDefault: cfg.Query.PreciseDefault,
		WithGeometry:   cfg.Query.WithGeometry,
		QueryTimeout:   cfg.Query.Timeout,
		MetricsPath:    cfg.Metrics.Path,
		Distances:      Distances(),
		Formatters:     Formatters(),
	}
	if app.Metrics != nil {
		opts.Metrics = app.Metrics
	}

	app.HTTPServer = httpAdapter.NewServer(
		cfg.Server,
		app.QueryService,
		app.Registry,
		app.HealthService,
		app.SyncService,
		logger,
		opts,
	)

	// Plain HTTP also goes through the TLS adapter; it owns the listener.
	server, err := tlsAdapter.NewServer(
		tlsAdapter.Config{
			Enabled:  cfg.TLS.Enabled,
			Domains:  cfg.TLS.Domains,
			Email:    cfg.TLS.Email,
			CacheDir: cfg.TLS.CacheDir,
			Staging:  cfg.TLS.Staging,
			DNS: tlsAdapter.DNSConfig{
				SubscriptionID:    cfg.TLS.DNS.SubscriptionID,
				ResourceGroupName: cfg.TLS.DNS.ResourceGroupName,
				ClientID:          cfg.TLS.DNS.ClientID,
			},
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		app.HTTPServer,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("initializing TLS: %w", err)
	}
	app.Server = server

	if local, ok := store.(*storage.LocalStorage); ok && cfg.Watcher.Enabled {
		w, err := watcher.New(
			watcher.Config{
				Paths:    []string{cfg.Storage.LocalPath},
				Debounce: cfg.Watcher.Debounce,
				Filter:   storage.IsCollectionKey,
			},
			app.fileEventHandler(local),
			logger,
		)
		if err != nil {
			logger.Warn("failed to initialize file watcher", "error", err)
		} else {
			app.Watcher = w
		}
	}

	return app, nil
}

// Decoders returns the collection decoders keyed by file extension.
func Decoders(tempDir string) map[string]output.CollectionDecoder {
	gj := geojson.NewDecoder()
	return map[string]output.CollectionDecoder{
		".geojson": gj,
		".json":    gj,
		".gpkg":    geopackage.NewDecoder(tempDir),
	}
}

// Distances returns the distance calculators keyed by method name.
func Distances() map[string]domain.DistanceCalculator {
	return map[string]domain.DistanceCalculator{
		"haversine": distance.NewHaversine(),
		"vincenty":  distance.NewVincenty(),
	}
}

// Formatters returns the coordinate formatters keyed by format name.
func Formatters() map[string]domain.Formatter {
	return map[string]domain.Formatter{
		"decimal": format.NewDecimalDegrees(),
		"dms":     format.NewDMS(),
		"geojson": geojson.Formatter{},
	}
}

// Start loads collections, starts background workers and serves requests.
// It blocks until the server stops.
func (a *App) Start(ctx context.Context) error {
	if err := a.Registry.LoadAll(ctx); err != nil {
		a.Logger.Warn("failed to load collections", "error", err)
	}

	if a.Watcher != nil {
		if err := a.Watcher.Start(ctx); err != nil {
			a.Logger.Warn("failed to start file watcher", "error", err)
		}
	}

	a.SyncService.Start(ctx)

	if err := a.Server.ManageCertificates(ctx); err != nil {
		return err
	}

	err := a.Server.ListenAndServe(a.Config.Server.Address())
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully shuts down all components.
func (a *App) Shutdown(ctx context.Context) error {
	a.Logger.Info("shutting down application")

	a.SyncService.Stop()

	if a.Watcher != nil {
		if err := a.Watcher.Stop(); err != nil {
			a.Logger.Warn("file watcher shutdown error", "error", err)
		}
	}

	var shutdownErr error
	if err := a.Server.Shutdown(ctx); err != nil {
		a.Logger.Error("server shutdown error", "error", err)
		shutdownErr = err
	}

	collections, _ := a.Registry.ListCollections(ctx)
	for _, c := range collections {
		if err := a.Registry.UnloadCollection(ctx, c.ID); err != nil {
			a.Logger.Error("failed to unload collection", "id", c.ID, "error", err)
		}
	}

	return shutdownErr
}

// fileEventHandler reloads or unloads collections for watched files.
func (a *App) fileEventHandler(local *storage.LocalStorage) watcher.Handler {
	return func(ctx context.Context, event watcher.Event) error {
		a.Logger.Info("file event", "path", event.Path, "operation", event.Operation.String())

		key, err := local.KeyFor(event.Path)
		if err != nil {
			return err
		}

		op := event.Operation
		if op != watcher.OpDelete {
			// Editors that save by rename leave a modify event for a vanished file.
			exists, err := a.Storage.Exists(ctx, key)
			if err != nil {
				return err
			}
			if !exists {
				op = watcher.OpDelete
			}
		}

		if op == watcher.OpDelete {
			id := application.DeriveCollectionID(key)
			if err := a.Registry.UnloadCollection(ctx, id); err != nil {
				a.Logger.Warn("failed to unload deleted collection", "id", id, "error", err)
			}
			return nil
		}

		return a.Registry.LoadCollection(ctx, key)
	}
}

// initStorage initializes the appropriate storage adapter.
func initStorage(ctx context.Context, cfg config.StorageConfig) (output.ObjectStorage, error) {
	switch output.StorageType(cfg.Type) {
	case output.StorageTypeLocal:
		return storage.NewLocalStorage(cfg.LocalPath), nil

	case output.StorageTypeS3:
		return storage.NewS3Storage(ctx, storage.S3Config{
			Bucket:          cfg.S3.Bucket,
			Region:          cfg.S3.Region,
			Prefix:          cfg.S3.Prefix,
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
		})

	case output.StorageTypeAzure:
		return storage.NewAzureStorage(storage.AzureConfig{
			Container:        cfg.Azure.Container,
			AccountName:      cfg.Azure.AccountName,
			AccountKey:       cfg.Azure.AccountKey,
			ConnectionString: cfg.Azure.ConnectionString,
			Prefix:           cfg.Azure.Prefix,
		})

	case output.StorageTypeHTTP:
		return storage.NewHTTPStorage(storage.HTTPConfig{
			BaseURL:   cfg.HTTP.BaseURL,
			IndexFile: cfg.HTTP.IndexFile,
			Timeout:   cfg.HTTP.Timeout,
			Username:  cfg.HTTP.Username,
			Password:  cfg.HTTP.Password,
		}), nil

	default:
		return nil, fmt.Errorf("unknown storage type %q: %w", cfg.Type, domain.ErrInvalidInput)
	}
}
