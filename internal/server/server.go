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

	"github.com/induslogic/isapa/internal/config"
	"github.com/induslogic/isapa/internal/database"
	"github.com/induslogic/isapa/internal/modules/catalog"
	"github.com/induslogic/isapa/internal/modules/corpus"
	"github.com/induslogic/isapa/internal/modules/network"
	"github.com/induslogic/isapa/internal/modules/repair"
	"github.com/induslogic/isapa/internal/modules/validation"
	"github.com/induslogic/isapa/internal/scheduler"
)

// Config holds server configuration
type Config struct {
	Port      int
	Log       zerolog.Logger
	CatalogDB *database.DB
	CorpusDB  *database.DB
	Config    *config.Config
	DevMode   bool

	Scheduler *scheduler.Scheduler

	ValidationService *validation.Service
	CatalogService    *catalog.Service
	CorpusService     *corpus.Service
	RepairEngine      *repair.Engine
	NetworkService    *network.Service
}

// Server represents the HTTP server
type Server struct {
	router *chi.Mux
	server *http.Server
	log    zerolog.Logger
	cfg    *config.Config

	catalogDB *database.DB
	corpusDB  *database.DB
	scheduler *scheduler.Scheduler

	validationService *validation.Service
	catalogService    *catalog.Service
	corpusService     *corpus.Service
	repairEngine      *repair.Engine
	networkService    *network.Service
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:            chi.NewRouter(),
		log:               cfg.Log.With().Str("component", "server").Logger(),
		cfg:               cfg.Config,
		catalogDB:         cfg.CatalogDB,
		corpusDB:          cfg.CorpusDB,
		scheduler:         cfg.Scheduler,
		validationService: cfg.ValidationService,
		catalogService:    cfg.CatalogService,
		corpusService:     cfg.CorpusService,
		repairEngine:      cfg.RepairEngine,
		networkService:    cfg.NetworkService,
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	// Recovery from panics
	s.router.Use(middleware.Recoverer)

	// Request ID
	s.router.Use(middleware.RequestID)

	// Real IP
	s.router.Use(middleware.RealIP)

	// Logging
	s.router.Use(s.loggingMiddleware)

	// Timeout
	s.router.Use(middleware.Timeout(60 * time.Second))

	// CORS
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Compress responses
	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, http.StatusNotFound, "Route not found")
	})

	// Health check
	s.router.Get("/health", s.handleHealth)

	// API routes
	s.router.Route("/api", func(r chi.Router) {
		// System
		r.Route("/system", func(r chi.Router) {
			r.Get("/status", s.handleSystemStatus)
		})

		s.setupModuleRoutes(r)
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
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
