// Package server provides the HTTP API for Kioku.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/kioku/internal/config"
	"github.com/hyperjump/kioku/internal/rag"
	"github.com/hyperjump/kioku/internal/storage"
)

// Server is the HTTP server for the Kioku API.
type Server struct {
	pipeline *rag.Pipeline
	storage  storage.Storage
	config   *config.ServerConfig
	logger   *zap.Logger
	server   *http.Server

	mu       sync.RWMutex
	defaults config.SearchConfig
}

// NewServer creates a server with the given dependencies. searchDefaults
// may later be refreshed via SetSearchDefaults (config hot-reload).
func NewServer(
	pipeline *rag.Pipeline,
	storage storage.Storage,
	cfg *config.ServerConfig,
	searchDefaults config.SearchConfig,
	logger *zap.Logger,
) *Server {
	return &Server{
		pipeline: pipeline,
		storage:  storage,
		config:   cfg,
		logger:   logger,
		defaults: searchDefaults,
	}
}

// SetSearchDefaults replaces the request defaults (top-K, list limits,
// cluster threshold). Called by the config watcher on reload.
func (s *Server) SetSearchDefaults(defaults config.SearchConfig) {
	s.mu.Lock()
	s.defaults = defaults
	s.mu.Unlock()
	s.logger.Info("search defaults updated",
		zap.Int("default_top_k", defaults.DefaultTopK),
		zap.Float64("default_cluster_threshold", defaults.DefaultClusterThreshold),
	)
}

func (s *Server) searchDefaults() config.SearchConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.defaults
}

// Router builds the chi router with all routes and middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/register", s.handleRegister)
	r.Post("/api/v1/search", s.handleSearch)
	r.Get("/api/v1/documents", s.handleDocuments)
	r.Get("/health", s.handleHealth)
	r.Get("/status", s.handleStatus)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
