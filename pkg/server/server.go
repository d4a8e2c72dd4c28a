// Package server provides the flowmaker HTTP server.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"

	"mercator-hq/flowmaker/pkg/config"
	"mercator-hq/flowmaker/pkg/diagram"
	"mercator-hq/flowmaker/pkg/ratelimit"
	"mercator-hq/flowmaker/pkg/server/handlers"
	"mercator-hq/flowmaker/pkg/server/middleware"
	"mercator-hq/flowmaker/pkg/telemetry/health"
	"mercator-hq/flowmaker/pkg/telemetry/logging"
	"mercator-hq/flowmaker/pkg/telemetry/metrics"
	"mercator-hq/flowmaker/pkg/telemetry/tracing"
)

// Server is the HTTP front end of the compiler and diagram store.
type Server struct {
	config   *config.Config
	renderer handlers.Renderer
	manager  *diagram.Manager
	metrics  *metrics.Collector
	tracer   *tracing.Tracer
	checker  *health.Checker
	version  health.VersionInfo
	logger   *logging.Logger
	limiter  *ratelimit.Limiter

	httpServer   *http.Server
	shutdownChan chan struct{}
	stopOnce     sync.Once
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// Option configures a Server.
type Option func(*Server)

// WithDiagrams enables the diagram endpoints backed by m. Its storage is
// registered as a readiness check.
func WithDiagrams(m *diagram.Manager) Option {
	return func(s *Server) { s.manager = m }
}

// WithMetrics records HTTP metrics on c and serves them on the metrics path.
func WithMetrics(c *metrics.Collector) Option {
	return func(s *Server) { s.metrics = c }
}

// WithTracer opens a server span per request.
func WithTracer(t *tracing.Tracer) Option {
	return func(s *Server) { s.tracer = t }
}

// WithHealth uses checker for readiness and serves info on the version path.
func WithHealth(checker *health.Checker, info health.VersionInfo) Option {
	return func(s *Server) {
		s.checker = checker
		s.version = info
	}
}

// WithRateLimiter replaces the limiter built from server.rate_limit.
func WithRateLimiter(l *ratelimit.Limiter) Option {
	return func(s *Server) { s.limiter = l }
}

// WithLogger logs through l.
func WithLogger(l *logging.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// NewServer creates a server. Only the renderer is required; diagram
// endpoints answer 503 unless WithDiagrams is given.
func NewServer(cfg *config.Config, renderer handlers.Renderer, opts ...Option) *Server {
	s := &Server{
		config:       cfg,
		renderer:     renderer,
		limiter:      ratelimit.New(cfg.Server.RateLimit),
		shutdownChan: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logging.Default()
	}
	if s.tracer == nil {
		s.tracer = tracing.Noop()
	}
	if s.checker == nil {
		s.checker = health.New(cfg.Telemetry.Health.CheckTimeout)
	}
	if s.manager != nil {
		s.checker.RegisterPinger("storage", s.manager.Store())
	}
	return s
}

// Start listens on the configured address and serves until ctx is
// cancelled or Stop is called, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Server.ListenAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Server.ListenAddress, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled or Stop is called.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		_ = ln.Close()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.httpServer = &http.Server{
		Handler:        s.Handler(),
		ReadTimeout:    s.config.Server.ReadTimeout,
		WriteTimeout:   s.config.Server.WriteTimeout,
		IdleTimeout:    s.config.Server.IdleTimeout,
		MaxHeaderBytes: s.config.Server.MaxHeaderBytes,
	}
	httpServer := s.httpServer
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting http server", "address", ln.Addr().String())
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case err := <-errChan:
		s.setRunning(false)
		return err
	case <-s.shutdownChan:
		s.logger.Info("shutdown requested")
		return s.Shutdown(context.Background())
	}
}

// Stop asks a running Start or Serve to shut down.
func (s *Server) Stop() {
	s.stopOnce.Do(func() { close(s.shutdownChan) })
}

// Shutdown gracefully shuts down the server, waiting up to the configured
// shutdown timeout for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.RLock()
		httpServer := s.httpServer
		running := s.isRunning
		s.mu.RUnlock()
		if !running {
			return
		}

		s.logger.Info("initiating graceful shutdown", "timeout", s.config.Server.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("error during server shutdown", "error", err)
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		}

		s.setRunning(false)
		s.logger.Info("http server stopped")
	})

	return shutdownErr
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

func (s *Server) setRunning(running bool) {
	s.mu.Lock()
	s.isRunning = running
	s.mu.Unlock()
}

// Handler returns the routed handler with the middleware chain applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	api := handlers.New(s.config.Server, s.renderer, s.manager, s.logger)

	// Routes that compile are rate limited.
	limit := middleware.RateLimit(s.limiter, s.logger)

	s.route(mux, "POST /v1/render", api.Render, limit)
	s.route(mux, "GET /v1/config", api.Config)
	s.route(mux, "GET /v1/share", api.Share)
	s.route(mux, "PUT /v1/activities/{activity}/diagram", api.SaveActivityDiagram, limit)
	s.route(mux, "GET /v1/activities/{activity}/diagram", api.GetActivityDiagram)
	s.route(mux, "GET /v1/diagrams", api.ListDiagrams)
	s.route(mux, "GET /v1/diagrams/{id}", api.GetDiagram)
	s.route(mux, "DELETE /v1/diagrams/{id}", api.DeleteDiagram)

	health.Register(mux, s.config.Telemetry.Health, s.checker, s.version)

	if s.config.Telemetry.Metrics.Enabled && s.metrics != nil {
		mux.Handle("GET "+s.config.Telemetry.Metrics.Path, s.metrics.Handler())
	}

	// Recovery is outermost so panics in any middleware are caught.
	return middleware.Chain(mux,
		middleware.Recovery(s.logger),
		middleware.RequestID,
		middleware.Logging(s.logger),
	)
}

// route registers a "METHOD /path" pattern with tracing and metrics
// labelled by the path pattern. extra middleware runs inside them.
func (s *Server) route(mux *http.ServeMux, pattern string, h http.HandlerFunc, extra ...func(http.Handler) http.Handler) {
	_, path, _ := strings.Cut(pattern, " ")
	mws := append([]func(http.Handler) http.Handler{
		func(next http.Handler) http.Handler { return tracing.HTTPMiddleware(s.tracer, path, next) },
		middleware.Metrics(s.metrics, path),
	}, extra...)
	mux.Handle(pattern, middleware.Chain(h, mws...))
}
