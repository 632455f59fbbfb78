// Package server exposes classification over HTTP: an HTML form for people
// and a JSON API for programs.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/crimson-sun/taxon/internal/config"
)

// Server wraps the gin engine and its http.Server.
type Server struct {
	cfg        config.ServerConfig
	engine     *gin.Engine
	httpServer *http.Server
	logger     *slog.Logger
}

// New builds a Server with every route registered.
func New(cfg config.ServerConfig, h *Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	engine := gin.New()
	engine.MaxMultipartMemory = cfg.MaxUploadMB << 20
	SetupRoutes(engine, h, logger)

	return &Server{
		cfg:    cfg,
		engine: engine,
		logger: logger,
		httpServer: &http.Server{
			Addr:         cfg.Addr(),
			Handler:      engine,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
	}
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start listens in the background. Listen errors other than a clean
// shutdown are sent on the returned channel.
func (s *Server) Start(ctx context.Context) <-chan error {
	errc := make(chan error, 1)
	s.logger.InfoContext(ctx, "http server listening",
		"addr", s.httpServer.Addr,
		"read_timeout", s.cfg.ReadTimeout,
		"write_timeout", s.cfg.WriteTimeout,
	)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- fmt.Errorf("server: %w", err)
		}
		close(errc)
	}()
	return errc
}

// Shutdown drains in-flight requests, waiting at most the configured
// shutdown timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.InfoContext(ctx, "http server shutting down")
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	s.logger.InfoContext(ctx, "http server stopped")
	return nil
}
