package api

import (
	"context"
	"net/http"
	"time"

	"github.com/ignite/attribution-engine/internal/config"
)

// Server wraps the HTTP server and its router.
type Server struct {
	config  config.ServerConfig
	handler http.Handler
	server  *http.Server
}

// NewServer creates the API server around the given handlers. The limiter is
// optional; without it no admission control is applied.
func NewServer(cfg config.ServerConfig, h *Handlers, limiter *RateLimiter) *Server {
	return &Server{
		config:  cfg,
		handler: SetupRoutes(h, limiter, cfg.AllowedOrigins),
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
