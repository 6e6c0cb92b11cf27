// Package server exposes the plate generation pipeline over HTTP.
//
// The server accepts multipart image uploads, runs the same layout and
// render stages as the CLI, and returns the plates as a zip archive. All
// caching goes through the pipeline runner, so a Redis-backed deployment
// shares layouts across replicas.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/plateworks/tavola/pkg/cache"
	"github.com/plateworks/tavola/pkg/pipeline"
)

const (
	// maxUploadBytes caps a single multipart upload (images plus metadata).
	maxUploadBytes = 256 << 20

	// shutdownTimeout bounds how long in-flight requests may run after the
	// server is asked to stop.
	shutdownTimeout = 10 * time.Second
)

// Config holds the server dependencies.
type Config struct {
	Addr   string
	Cache  cache.Cache
	Logger *log.Logger
}

// Server is the plate generation HTTP server.
type Server struct {
	cfg    Config
	runner *pipeline.Runner
	router chi.Router
}

// New creates a server with all routes registered.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	s := &Server{
		cfg:    cfg,
		runner: pipeline.NewRunner(cfg.Cache, nil, cfg.Logger),
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return s.runner.Close()
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// routes builds the router with middleware and API endpoints.
func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(s.requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/generate", s.handleGenerate)
		r.Post("/preview", s.handlePreview)
		r.Post("/headers", s.handleHeaders)
		r.Get("/formats", s.handleFormats)
	})

	return r
}

// requestID tags every request with a UUID, echoed in X-Request-ID.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		ctx := context.WithValue(r.Context(), requestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// logRequests logs one line per request with status and duration.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.cfg.Logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).Round(time.Millisecond),
			"request_id", ww.Header().Get("X-Request-ID"))
	})
}

// ctxKey is the type for context keys used in this package.
type ctxKey int

const requestIDKey ctxKey = 0
