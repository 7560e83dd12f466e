// Package server exposes the geocoding lookups over HTTP.
//
// Routes:
//   - GET /geocoding?address=...                      JSON {"latitude":..,"longitude":..}
//   - GET /reverse-geocoding?latitude=...&longitude=... text/plain label
//   - GET /health                                      "OK"
//   - GET /metrics                                     Prometheus exposition
//
// Lookup errors are translated to HTTP statuses in one place, StatusFor.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Sternrassler/geocode-cache/pkg/geocode"
	"github.com/Sternrassler/geocode-cache/pkg/metrics"
)

// Lookup is the subset of geocode.Service the handlers need.
type Lookup interface {
	ForwardGeocode(ctx context.Context, address string) (geocode.Coordinates, error)
	ReverseGeocode(ctx context.Context, latitude, longitude string) (string, error)
}

// Config holds HTTP server configuration.
type Config struct {
	// Addr is the listen address (default: ":8080").
	Addr string

	// ReadTimeout bounds reading a request, headers included (default: 15s).
	ReadTimeout time.Duration

	// ShutdownTimeout bounds graceful shutdown (default: 10s).
	ShutdownTimeout time.Duration
}

// DefaultConfig returns a default server configuration.
func DefaultConfig() Config {
	return Config{
		Addr:            ":8080",
		ReadTimeout:     15 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Server is the HTTP front end. It implements suture.Service.
type Server struct {
	httpServer *http.Server
	router     chi.Router
	lookup     Lookup
	config     Config
	logger     zerolog.Logger
}

// New creates a server. It does not start listening; see Serve.
func New(cfg Config, lookup Lookup) (*Server, error) {
	if lookup == nil {
		return nil, fmt.Errorf("lookup is required")
	}
	if cfg.Addr == "" {
		return nil, fmt.Errorf("listen address is required")
	}
	if cfg.ReadTimeout <= 0 {
		return nil, fmt.Errorf("read timeout must be > 0")
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultConfig().ShutdownTimeout
	}

	s := &Server{
		lookup: lookup,
		config: cfg,
		logger: log.With().Str("component", "server").Logger(),
	}
	s.router = s.routes()
	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.router,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		IdleTimeout:       4 * cfg.ReadTimeout,
	}
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(prometheusMetrics)
		r.Get("/geocoding", s.handleForward)
		r.Get("/reverse-geocoding", s.handleReverse)
	})

	return r
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Serve listens on the configured address until ctx is cancelled, then
// shuts down gracefully. It returns ctx.Err() after a clean shutdown.
func (s *Server) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	s.logger.Info().Str("addr", s.config.Addr).Msg("HTTP server listening")

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil

	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown failed: %w", err)
		}
		<-errCh

		s.logger.Info().Msg("HTTP server stopped")
		return ctx.Err()
	}
}

// String identifies the service in supervisor logs.
func (s *Server) String() string {
	return "http-server"
}
