// Package http provides the HTTP server and handlers.
package http //nolint:revive // package name conflicts with stdlib but is acceptable in this context

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/jobrunner/locus/internal/config"
	"github.com/jobrunner/locus/internal/domain"
	"github.com/jobrunner/locus/internal/ports/input"
)

// MetricsExporter serves collected metrics and instruments requests.
type MetricsExporter interface {
	Handler() http.Handler
	Middleware(next http.Handler) http.Handler
}

// Options holds optional server behavior.
type Options struct {
	PreciseDefault bool                                 // Mode used when ?precise is absent
	WithGeometry   bool                                 // Include matched shapes in query results
	Metrics        MetricsExporter                      // nil disables the metrics endpoint
	MetricsPath    string                               // default: /metrics
	Distances      map[string]domain.DistanceCalculator // keyed by ?method
	Formatters     map[string]domain.Formatter          // keyed by ?format
	QueryTimeout   time.Duration                        // 0 leaves queries unbounded
}

// Server routes API requests to the application services.
type Server struct {
	router       *mux.Router
	queryService input.QueryService
	registry     input.CollectionRegistry
	health       input.HealthChecker
	syncTrigger  input.SyncTrigger
	logger       *slog.Logger
	config       config.ServerConfig
	options      Options
}

// NewServer creates a new HTTP server. syncTrigger may be nil.
func NewServer(
	cfg config.ServerConfig,
	queryService input.QueryService,
	registry input.CollectionRegistry,
	health input.HealthChecker,
	syncTrigger input.SyncTrigger,
	logger *slog.Logger,
	opts Options,
) *Server {
	if opts.MetricsPath == "" {
		opts.MetricsPath = "/metrics"
	}

	s := &Server{
		queryService: queryService,
		registry:     registry,
		health:       health,
		syncTrigger:  syncTrigger,
		logger:       logger,
		config:       cfg,
		options:      opts,
	}

	s.router = s.setupRoutes()

	return s
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() *mux.Router {
	r := mux.NewRouter()

	// Add middleware
	if s.options.Metrics != nil {
		r.Use(s.options.Metrics.Middleware)
	}
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)

	// Add CORS middleware if configured
	if s.config.CORS.Enabled() {
		r.Use(s.corsMiddleware)
	}

	// Health endpoints
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/health/live", s.handleLiveness).Methods(http.MethodGet)
	r.HandleFunc("/health/ready", s.handleReadiness).Methods(http.MethodGet)

	// API v1. Preflight requests only match when CORS is enabled.
	api := r.PathPrefix("/api/v1").Subrouter()
	get, post := []string{http.MethodGet}, []string{http.MethodPost}
	if s.config.CORS.Enabled() {
		get = append(get, http.MethodOptions)
		post = append(post, http.MethodOptions)
	}

	// Query endpoints
	api.HandleFunc("/contains", s.handleContains).Methods(get...)
	api.HandleFunc("/query", s.handleQuery).Methods(post...)
	api.HandleFunc("/query/{collectionId}", s.handleQueryCollection).Methods(post...)
	api.HandleFunc("/relate", s.handleRelate).Methods(post...)
	api.HandleFunc("/distance", s.handleDistance).Methods(get...)

	// Collection endpoints
	api.HandleFunc("/collections", s.handleListCollections).Methods(get...)
	api.HandleFunc("/collections/{collectionId}", s.handleGetCollection).Methods(get...)
	api.HandleFunc("/collections/{collectionId}/features", s.handleGetFeatures).Methods(get...)

	// Sync endpoint (only if a sync trigger is configured)
	if s.syncTrigger != nil {
		api.HandleFunc("/sync", s.handleSync).Methods(post...)
	}

	r.HandleFunc("/openapi.json", s.handleOpenAPI).Methods(http.MethodGet)

	if s.options.Metrics != nil {
		r.Handle(s.options.MetricsPath, s.options.Metrics.Handler()).Methods(http.MethodGet)
	}

	return r
}

// Router returns the mux router.
func (s *Server) Router() *mux.Router {
	return s.router
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// loggingMiddleware logs incoming requests.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Wrap response writer to capture status code
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.statusCode,
			"duration", time.Since(start),
			"remote_addr", r.RemoteAddr,
		)
	})
}

// recoveryMiddleware recovers from panics.
func (s *Server) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				s.logger.Error("panic recovered", "error", err, "path", r.URL.Path)
				s.writeError(w, http.StatusInternalServerError, "Internal Server Error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
