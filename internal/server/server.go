package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/arloliu/grouper"
	"github.com/arloliu/grouper/internal/logging"
	"github.com/arloliu/grouper/internal/metrics"
	"github.com/arloliu/grouper/types"
)

// RosterService is the part of grouper.Service the HTTP layer depends on.
type RosterService interface {
	// Snapshot returns the current roster view.
	Snapshot() grouper.RosterSnapshot
	// ShuffleWith forms groups with the named strategy; empty selects the default.
	ShuffleWith(name string, groupCount int) ([]types.Group, error)
	// Refresh reloads the roster in the background.
	Refresh(ctx context.Context) error
}

var _ RosterService = (*grouper.Service)(nil)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for access logs and server events.
func WithLogger(logger types.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics sets the collector that records served requests.
func WithMetrics(m types.HTTPMetrics) Option {
	return func(s *Server) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithGatherer exposes the gatherer's metrics on GET /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// Server serves the grouper HTTP API and UI.
type Server struct {
	cfg               grouper.HTTPConfig
	defaultGroupCount int
	svc               RosterService
	sessions          *sessionStore
	logger            types.Logger
	metrics           types.HTTPMetrics
	gatherer          prometheus.Gatherer
	handler           http.Handler
}

// New creates a Server for svc.
//
// Parameters:
//   - cfg: Configuration; HTTP settings and the default group count are used
//   - svc: Roster service backing the handlers
//   - opts: Optional logger, metrics and gatherer
//
// Returns:
//   - *Server: Server ready to Run or to use as an http.Handler
//
// Example:
//
//	srv := server.New(cfg, svc, server.WithLogger(logger))
//	if err := srv.Run(ctx); err != nil {
//	    logger.Error("server failed", "error", err)
//	}
func New(cfg grouper.Config, svc RosterService, opts ...Option) *Server {
	grouper.SetDefaults(&cfg)

	s := &Server{
		cfg:               cfg.HTTP,
		defaultGroupCount: cfg.Grouping.DefaultGroupCount,
		svc:               svc,
		sessions:          newSessionStore(cfg.HTTP.SessionTTL),
		logger:            logging.NewNop(),
		metrics:           metrics.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.handler = s.routes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	s.handle(mux, "GET /api/people", http.HandlerFunc(s.handlePeople))
	s.handle(mux, "GET /api/users", http.HandlerFunc(s.handlePeople))
	s.handle(mux, "GET /api/groups", http.HandlerFunc(s.handleGroups))
	s.handle(mux, "POST /api/people/refresh", http.HandlerFunc(s.handleRefresh))

	s.handle(mux, "GET /{$}", http.HandlerFunc(s.handleIndex))
	s.handle(mux, "POST /shuffle", http.HandlerFunc(s.handleShuffle))
	s.handle(mux, "POST /members/toggle", http.HandlerFunc(s.handleToggleMembers))

	s.handle(mux, "GET /healthz", http.HandlerFunc(s.handleHealth))
	s.handle(mux, "GET /readyz", http.HandlerFunc(s.handleReady))

	if s.gatherer != nil {
		s.handle(mux, "GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	return mux
}

// Run listens on the configured address and serves until ctx is canceled.
//
// Returns:
//   - error: Listen or serve error; nil after a clean shutdown
func (s *Server) Run(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.cfg.Listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Listen, err)
	}

	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is canceled, then shuts down gracefully
// within the configured shutdown timeout. ln is closed on return.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	s.logger.Info("http server listening", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		s.sessions.close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("http server shutting down", "timeout", s.cfg.ShutdownTimeout)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	err := srv.Shutdown(shutdownCtx)
	s.sessions.close()
	if err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server failed: %w", err)
	}

	s.logger.Info("http server stopped")

	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, "ok\n")
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	state := s.svc.Snapshot().State
	if state != types.RosterStateLoaded {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = fmt.Fprintf(w, "%s\n", state)

		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, "ready\n")
}
