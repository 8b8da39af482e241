package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"mercator-hq/llmstxt/pkg/config"
	"mercator-hq/llmstxt/pkg/content"
	"mercator-hq/llmstxt/pkg/export"
	"mercator-hq/llmstxt/pkg/runner"
	"mercator-hq/llmstxt/pkg/server/middleware"
	"mercator-hq/llmstxt/pkg/settings"
	"mercator-hq/llmstxt/pkg/telemetry/health"
)

// Runner triggers exports and reports the schedule. *runner.Runner
// implements it.
type Runner interface {
	OnManualTrigger(ctx context.Context) (export.Report, error)
	Reschedule(ctx context.Context) error
	Status() runner.Status
}

// SettingsService reads and writes the export options. *settings.Provider
// implements it.
type SettingsService interface {
	Options(ctx context.Context) (settings.Options, error)
	Save(ctx context.Context, opts settings.Options) (settings.Options, error)
}

// TypeLister lists the content types offered for export.
type TypeLister interface {
	PublicTypes(ctx context.Context) ([]content.ContentType, error)
}

// RunLister lists recorded export runs, newest first.
type RunLister interface {
	ListRuns(ctx context.Context, limit int) ([]settings.RunRecord, error)
}

// Dependencies are the components served by the admin API.
type Dependencies struct {
	Runner   Runner
	Settings SettingsService
	Types    TypeLister
	Runs     RunLister
	Health   *health.Checker

	// Metrics serves MetricsPath. Nil disables the endpoint.
	Metrics     http.Handler
	MetricsPath string

	// DocumentPath is the generated file served at /llms.txt.
	DocumentPath string

	// HistoryLimit is the default page size of /api/v1/runs.
	HistoryLimit int

	Version health.VersionInfo
}

// Server is the HTTP admin server.
type Server struct {
	config *config.ServerConfig
	deps   Dependencies
	logger *slog.Logger

	// regenerateLimit throttles POST /api/v1/regenerate. Nil means no limit.
	regenerateLimit *middleware.TokenBucket

	mu         sync.RWMutex
	httpServer *http.Server
	listener   net.Listener
	isRunning  bool

	shutdownOnce sync.Once
}

// New creates an admin server.
func New(cfg *config.ServerConfig, deps Dependencies) *Server {
	if deps.Health == nil {
		deps.Health = health.New(0)
	}
	if deps.MetricsPath == "" {
		deps.MetricsPath = config.DefaultPrometheusPath
	}
	if deps.HistoryLimit <= 0 {
		deps.HistoryLimit = config.DefaultSettingsHistoryLimit
	}

	var limit *middleware.TokenBucket
	if cfg.RegenerateBurst > 0 && cfg.RegenerateRefill > 0 {
		limit = middleware.NewTokenBucket(int64(cfg.RegenerateBurst), 1/cfg.RegenerateRefill.Seconds())
	}

	return &Server{
		config:          cfg,
		deps:            deps,
		logger:          slog.Default().With("component", "server"),
		regenerateLimit: limit,
	}
}

// Start listens on the configured address and serves until ctx is done,
// then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return errors.New("server is already running")
	}

	ln, err := net.Listen("tcp", s.config.ListenAddress)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to listen on %s: %w", s.config.ListenAddress, err)
	}

	s.listener = ln
	s.httpServer = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
	s.isRunning = true
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting admin server", "address", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	case err := <-errChan:
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
		return err
	}
}

// Shutdown stops the server, waiting up to ShutdownTimeout for in-flight
// requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.RLock()
		srv, running := s.httpServer, s.isRunning
		s.mu.RUnlock()
		if !running {
			return
		}

		shutdownCtx := ctx
		if s.config.ShutdownTimeout > 0 {
			var cancel context.CancelFunc
			shutdownCtx, cancel = context.WithTimeout(ctx, s.config.ShutdownTimeout)
			defer cancel()
		}

		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("error during server shutdown", "error", err)
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("admin server stopped")
	})

	return shutdownErr
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// IsRunning returns true while the server is serving.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}
