// Package server provides the HTTP server and routing for the engine.
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

	"github.com/foliotracker/engine/internal/config"
	"github.com/foliotracker/engine/internal/database"
	"github.com/foliotracker/engine/internal/marketdata"
	allocationhandlers "github.com/foliotracker/engine/internal/modules/allocation/handlers"
	correlationhandlers "github.com/foliotracker/engine/internal/modules/correlation/handlers"
	ledgerhandlers "github.com/foliotracker/engine/internal/modules/ledger/handlers"
	portfoliohandlers "github.com/foliotracker/engine/internal/modules/portfolio/handlers"
	riskhandlers "github.com/foliotracker/engine/internal/modules/risk/handlers"
	simulationhandlers "github.com/foliotracker/engine/internal/modules/simulation/handlers"
	"github.com/foliotracker/engine/internal/scheduler"
)

// Handlers bundles the module handlers the server mounts
type Handlers struct {
	Portfolio   *portfoliohandlers.Handler
	Ledger      *ledgerhandlers.Handler
	Risk        *riskhandlers.Handler
	Allocation  *allocationhandlers.Handler
	Simulation  *simulationhandlers.Handler
	Correlation *correlationhandlers.Handler
}

// Config holds server configuration
type Config struct {
	Log       zerolog.Logger
	DB        *database.DB
	Cfg       *config.Config
	Handlers  Handlers
	Stream    *StreamHandler
	Scheduler *scheduler.Scheduler
	Clock     marketdata.Clock
}

// Server represents the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	db             *database.DB
	cfg            *config.Config
	handlers       Handlers
	stream         *StreamHandler
	systemHandlers *SystemHandlers
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:         chi.NewRouter(),
		log:            cfg.Log.With().Str("component", "server").Logger(),
		db:             cfg.DB,
		cfg:            cfg.Cfg,
		handlers:       cfg.Handlers,
		stream:         cfg.Stream,
		systemHandlers: NewSystemHandlers(cfg.Log, cfg.DB, cfg.Scheduler, cfg.Clock),
	}

	s.setupMiddleware(cfg.Cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.systemHandlers.HandleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/system/status", s.systemHandlers.HandleStatus)

		if s.stream != nil {
			r.Get("/stream", s.stream.ServeHTTP)
		}

		s.handlers.Portfolio.RegisterRoutes(r)
		s.handlers.Ledger.RegisterRoutes(r)
		s.handlers.Risk.RegisterRoutes(r)
		s.handlers.Allocation.RegisterRoutes(r)
		s.handlers.Simulation.RegisterRoutes(r)
		s.handlers.Correlation.RegisterRoutes(r)
	})
}

// Start begins listening for requests, blocking until shutdown
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("HTTP server starting")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("HTTP server shutting down")
	return s.server.Shutdown(ctx)
}

// Router exposes the chi router, used by tests
func (s *Server) Router() chi.Router {
	return s.router
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
