// Package server provides the HTTP server and routing for folio.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/aristath/folio/internal/database"
	"github.com/aristath/folio/internal/metrics"
	analyticshandlers "github.com/aristath/folio/internal/modules/analytics/handlers"
	marketdatahandlers "github.com/aristath/folio/internal/modules/marketdata/handlers"
	optimizationhandlers "github.com/aristath/folio/internal/modules/optimization/handlers"
	"github.com/aristath/folio/internal/scheduler"
)

// JobLookup finds a registered job by name.
type JobLookup interface {
	ByName(name string) (scheduler.Job, bool)
}

// Config holds server configuration
type Config struct {
	Log       zerolog.Logger
	Port      int
	DevMode   bool
	Databases []*database.DB

	Analytics    analyticshandlers.Analyzer
	Optimization optimizationhandlers.Optimizer
	Prices       marketdatahandlers.Store

	Metrics   *metrics.Metrics
	Scheduler *scheduler.Scheduler
	Jobs      JobLookup
}

// Server represents the HTTP server
type Server struct {
	router  *chi.Mux
	server  *http.Server
	log     zerolog.Logger
	port    int
	metrics *metrics.Metrics
	system  *SystemHandlers

	analytics    *analyticshandlers.Handler
	optimization *optimizationhandlers.Handler
	prices       *marketdatahandlers.Handler
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:       chi.NewRouter(),
		log:          cfg.Log.With().Str("component", "server").Logger(),
		port:         cfg.Port,
		metrics:      cfg.Metrics,
		system:       NewSystemHandlers(cfg.Log, cfg.Databases, cfg.Scheduler, cfg.Jobs),
		analytics:    analyticshandlers.NewHandler(cfg.Analytics, cfg.Log),
		optimization: optimizationhandlers.NewHandler(cfg.Optimization, cfg.Log),
		prices:       marketdatahandlers.NewHandler(cfg.Prices, cfg.Log),
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(s.metrics.Middleware)

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.system.HandleHealth)
	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler())
	}

	s.router.Route("/api", func(r chi.Router) {
		s.analytics.RegisterRoutes(r)
		s.optimization.RegisterRoutes(r)
		s.prices.RegisterRoutes(r)

		r.Route("/system", func(r chi.Router) {
			r.Get("/status", s.system.HandleStatus)
			r.Post("/jobs/{name}", s.system.HandleRunJob)
		})
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
