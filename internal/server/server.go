// Package server exposes the carving pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz     liveness and version
//	POST /v1/carve    body: encoded image; query: columns, direction, luma, format, quality, refresh
//	POST /v1/energy   body: encoded image; query: luma, format, quality, refresh
//
// Successful responses carry the encoded image. Failures are JSON
// documents of the form {"code": "...", "message": "...", "request_id": "..."}.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/seamcarve/pkg/pipeline"
)

// Defaults for Options.
const (
	DefaultMaxBodyBytes = 32 << 20
	DefaultTimeout      = 2 * time.Minute
	shutdownTimeout     = 10 * time.Second
)

// Options configures a Server.
type Options struct {
	// MaxBodyBytes caps uploaded images. Zero selects DefaultMaxBodyBytes.
	MaxBodyBytes int64

	// Timeout bounds a single carve or energy request. Zero selects DefaultTimeout.
	Timeout time.Duration

	// Workers is passed to every pipeline run. Zero means GOMAXPROCS.
	Workers int

	// MaxPixels caps width×height of uploaded images. The body limit alone
	// does not bound memory, since a small file can declare huge dimensions.
	// Zero selects pipeline.DefaultMaxPixels.
	MaxPixels int
}

// Server serves the pipeline over HTTP.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
	opts   Options
	router chi.Router
}

// New creates a server around runner.
func New(runner *pipeline.Runner, logger *log.Logger, opts Options) *Server {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxPixels <= 0 {
		opts.MaxPixels = pipeline.DefaultMaxPixels
	}
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{runner: runner, logger: logger, opts: opts}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Use(s.timeout(s.opts.Timeout))
		r.Post("/carve", s.handleCarve)
		r.Post("/energy", s.handleEnergy)
	})
	return r
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully, letting in-flight requests finish.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
