package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/payshield/risk-engine/internal/infrastructure/config"
)

// Server is the HTTP front of the risk engine.
type Server struct {
	cfg        *config.Config
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer assembles the router, middleware chain and http.Server. The
// prometheus registry may be nil, in which case /metrics is not registered.
func NewServer(
	cfg *config.Config,
	services Services,
	promRegistry *prometheus.Registry,
	checkers []HealthChecker,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	handler := NewHandler(services, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/fraud/evaluate", handler.HandleEvaluate)
	mux.HandleFunc("POST /api/v1/fraud/feedback", handler.HandleFeedback)
	mux.HandleFunc("GET /healthz", healthHandler(cfg.Version, checkers))
	if promRegistry != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{}))
	}

	limiters := newClientLimiters(
		cfg.Server.RateLimit.RequestsPerSecond,
		cfg.Server.RateLimit.BurstSize,
	)

	root := chain(mux,
		recoverPanics(logger),
		requestLogging(logger),
		rateLimiting(limiters),
	)

	return &Server{
		cfg:    cfg,
		logger: logger,
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:      root,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
	}
}

// Handler exposes the fully wired root handler for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run serves until ctx is cancelled, then drains in-flight requests within
// the configured shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()

	s.logger.Info("http server shutting down")
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return <-errCh
}
