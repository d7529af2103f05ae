// Package api serves the scheduling pipeline over HTTP.
//
// Routes:
//
//	GET    /healthz
//	POST   /v1/critical-path
//	POST   /v1/schedule              ?format=json|csv  ?strict=true
//	POST   /v1/projects
//	GET    /v1/projects
//	GET    /v1/projects/{id}
//	DELETE /v1/projects/{id}
//	POST   /v1/projects/{id}/schedule
//
// Project bodies are JSON unless the Content-Type names YAML, TOML or CSV.
// A missing start date defaults to today. With skipWeekends set, a project
// starting on a Saturday or Sunday begins on the following Monday.
// The /v1/projects routes are only mounted when the server has a store.
// Errors are returned as {"code","message"} with the status derived from the
// error code (see [StatusFor]).
package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/matzehuels/leveler/pkg/calendar"
	"github.com/matzehuels/leveler/pkg/pipeline"
	"github.com/matzehuels/leveler/pkg/store"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 8 << 20

// Options configures a Server.
type Options struct {
	Runner *pipeline.Runner
	Store  store.Store // nil disables the /v1/projects routes
	Logger *log.Logger

	// AllowedOrigins for CORS. Empty allows any origin.
	AllowedOrigins []string
}

// Server is the HTTP front end of a pipeline runner.
type Server struct {
	runner  *pipeline.Runner
	store   store.Store
	logger  *log.Logger
	origins []string

	// today returns the start date used for projects that have none.
	today func() time.Time
}

// New creates a server. A nil runner gets an uncached default runner.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	runner := opts.Runner
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, logger)
	}
	return &Server{
		runner:  runner,
		store:   opts.Store,
		logger:  logger,
		origins: opts.AllowedOrigins,
		today:   func() time.Time { return calendar.Truncate(time.Now()) },
	}
}

// Handler returns the routed handler with CORS applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer, s.requestLogger)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, errNotFound("no route for %s %s", r.Method, r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{
			Code:    "METHOD_NOT_ALLOWED",
			Message: r.Method + " not allowed on " + r.URL.Path,
		})
	})

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/critical-path", s.handleCriticalPath)
		r.Post("/schedule", s.handleSchedule)
		if s.store != nil {
			r.Route("/projects", func(r chi.Router) {
				r.Post("/", s.handleCreateProject)
				r.Get("/", s.handleListProjects)
				r.Get("/{id}", s.handleGetProject)
				r.Delete("/{id}", s.handleDeleteProject)
				r.Post("/{id}/schedule", s.handleScheduleProject)
			})
		}
	})

	origins := s.origins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	}).Handler(r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
