// Package server serves rendered scenes over HTTP.
//
// Routes:
//
//	GET    /healthz                   liveness probe
//	GET    /scenes                    list scene names
//	GET    /scenes/{scene}.{format}   render a scene (svg, png, pdf, json)
//	GET    /scenes/{scene}/live       websocket stream of redrawn SVG frames
//	GET    /states                    list stored keys
//	GET    /states/{key}              read one snapshot as JSON
//	PUT    /states/{key}              write one snapshot (JSON or TOML body)
//	DELETE /states/{key}              remove one snapshot
//
// Every scene request redraws from the store. Converted png and pdf output is
// cached by SVG hash, so unchanged state is only converted once.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/boardviz/pkg/cache"
	"github.com/matzehuels/boardviz/pkg/pipeline"
	"github.com/matzehuels/boardviz/pkg/store"
)

const (
	shutdownTimeout = 5 * time.Second
	maxBodyBytes    = 64 << 10
)

// Options configures a Server.
type Options struct {
	// PollInterval is how often live streams redraw. Defaults to one second.
	PollInterval time.Duration

	// ReadOnly rejects state writes.
	ReadOnly bool

	// KeyPrefix and Scale are defaults for scene requests.
	KeyPrefix string
	Scale     float64
}

// Server renders scenes from one store.
type Server struct {
	store  store.Store
	runner *pipeline.Runner
	logger *log.Logger
	opts   Options
	router chi.Router
}

// New creates a server. A nil cache disables artifact caching.
func New(st store.Store, c cache.Cache, logger *log.Logger, opts Options) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Second
	}
	s := &Server{
		store:  st,
		runner: pipeline.NewRunner(st, c, logger),
		logger: logger,
		opts:   opts,
	}
	s.router = s.routes()
	return s
}

// Runner exposes the pipeline runner, mainly so tests can stub conversion.
func (s *Server) Runner() *pipeline.Runner { return s.runner }

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/scenes", func(r chi.Router) {
		r.Get("/", s.handleScenes)
		r.Get("/{scene}.{format}", s.handleScene)
		r.Get("/{scene}/live", s.handleLive)
	})

	r.Route("/states", func(r chi.Router) {
		r.Get("/", s.handleKeys)
		r.Get("/{key}", s.handleGetState)
		r.Put("/{key}", s.handlePutState)
		r.Delete("/{key}", s.handleDeleteState)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
