package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"mgv-hq/ganymede/pkg/config"
	"mgv-hq/ganymede/pkg/plan"
	"mgv-hq/ganymede/pkg/telemetry/health"
	"mgv-hq/ganymede/pkg/telemetry/logging"
	"mgv-hq/ganymede/pkg/telemetry/metrics"
)

// Server is the daemon's HTTP surface: health and version probes, the
// Prometheus metrics endpoint, and read-only access to the current build
// plan.
type Server struct {
	config   *config.ServerConfig
	registry *plan.Registry

	checker     *health.Checker
	metrics     *metrics.Collector
	metricsPath string
	logger      *logging.Logger

	version   string
	commit    string
	buildTime string

	httpServer   *http.Server
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	stopOnce     sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// NewServer creates a server over the given plan registry. Health checks,
// metrics, and version info are attached with the With methods.
func NewServer(cfg *config.ServerConfig, registry *plan.Registry) *Server {
	logger, _ := logging.New(logging.Config{})

	return &Server{
		config:       cfg,
		registry:     registry,
		checker:      health.New(0),
		metricsPath:  "/metrics",
		logger:       logger,
		version:      "dev",
		shutdownChan: make(chan struct{}),
	}
}

// WithHealth replaces the server's health checker with one the caller has
// wired up, typically via RegisterCheck with the well-known check names.
func (s *Server) WithHealth(checker *health.Checker) *Server {
	if checker != nil {
		s.checker = checker
	}
	return s
}

// WithMetrics attaches a metrics collector and the path its handler is
// served on. An empty path keeps the default /metrics.
func (s *Server) WithMetrics(collector *metrics.Collector, path string) *Server {
	s.metrics = collector
	if path != "" {
		s.metricsPath = path
	}
	return s
}

// WithVersion sets the build information served on /version.
func (s *Server) WithVersion(version, commit, buildTime string) *Server {
	s.version = version
	s.commit = commit
	s.buildTime = buildTime
	return s
}

// WithLogger replaces the server's logger.
func (s *Server) WithLogger(logger *logging.Logger) *Server {
	s.logger = logger
	return s
}

// Start starts the HTTP server and blocks until the context is cancelled,
// a shutdown signal arrives, or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	s.httpServer = &http.Server{
		Addr:         s.config.ListenAddress,
		Handler:      s.setupRoutes(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting http server", "address", s.config.ListenAddress)

		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		s.logger.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
		return err
	case <-s.shutdownChan:
		s.logger.Info("shutdown requested")
		return s.Shutdown(context.Background())
	}
}

// Stop asks a blocked Start to shut down. It is safe to call from another
// goroutine and more than once.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		close(s.shutdownChan)
	})
}

// Shutdown gracefully shuts down the server, waiting up to the configured
// shutdown timeout for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		s.logger.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

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

// Handler returns the configured HTTP handler, for embedding and tests.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}

// setupRoutes configures HTTP routes and the middleware chain.
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	health.HTTPMiddleware(mux, s.checker, s.version, s.commit, s.buildTime)

	if s.metrics != nil {
		mux.Handle(s.metricsPath, s.metrics.Handler())
	}

	planHandler := NewPlanHandler(s.registry)
	mux.Handle("/plan", planHandler)
	mux.Handle("/plan/", planHandler)

	// Request ID wraps logging so the completion log line carries the id;
	// recovery stays outermost.
	var handler http.Handler = mux
	handler = LoggingMiddleware(s.logger)(handler)
	handler = RequestIDMiddleware(handler)
	handler = RecoveryMiddleware(s.logger)(handler)

	return handler
}
