package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"runbox/config"
	"runbox/engine"
)

// HealthChecker reports the execution environment's health.
type HealthChecker interface {
	Health(ctx context.Context) engine.Report
}

// Server is the REST boundary in front of the execution engine.
type Server struct {
	cfg    *config.Config
	logger *zap.Logger
	exec   engine.Executor
	health HealthChecker
	router *chi.Mux
	srv    *http.Server
}

// New creates a Server backed by the given engine.
func New(cfg *config.Config, logger *zap.Logger, eng *engine.Engine) *Server {
	return newServer(cfg, logger, eng, eng)
}

func newServer(cfg *config.Config, logger *zap.Logger, exec engine.Executor, health HealthChecker) *Server {
	s := &Server{
		cfg:    cfg,
		logger: logger,
		exec:   exec,
		health: health,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(s.logger))

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/execute", s.handleExecute)
	})
}

// Start runs the HTTP server until it is shut down. The write timeout
// leaves room for the longest permitted execution plus escalation.
func (s *Server) Start() error {
	s.srv = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Server.HTTPPort),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: s.cfg.MaxTimeout() + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}
	s.logger.Info("starting HTTP server", zap.Int("port", s.cfg.Server.HTTPPort))
	return s.srv.ListenAndServe()
}

// Stop shuts the server down gracefully, letting in-flight requests
// complete within ctx.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	s.logger.Info("stopping HTTP server")
	return s.srv.Shutdown(ctx)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}
