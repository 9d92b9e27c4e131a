// Package server implements the extgraph HTTP API.
//
// The API serves the graph, layout and candidates of the current snapshot
// under every visualization mode. Filter state travels in the same query
// parameters the web UI keeps in its URL (see filter.ParseQuery), so a UI
// link and an API call describe the same view.
//
//	GET    /healthz
//	GET    /api/v1/graph?view=&contentProviders=&contentConsumers=&extensionPoints=&contentConsumersForExtensionPoint=
//	GET    /api/v1/layout?...&width=&height=
//	GET    /api/v1/render?...&format=svg|dot
//	GET    /api/v1/candidates?view=
//	GET    /api/v1/cache
//	DELETE /api/v1/cache
//	POST   /api/v1/snapshot/reload
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/extgraph/pkg/layout"
	"github.com/matzehuels/extgraph/pkg/pipeline"
	"github.com/matzehuels/extgraph/pkg/plugin"
	"github.com/matzehuels/extgraph/pkg/watch"
)

// Config configures the server.
type Config struct {
	Addr   string
	Runner *pipeline.Runner
	Logger *log.Logger

	// Defaults for requests that omit them.
	Width  float64
	Height float64
	Layout layout.Config

	// SnapshotPath is reloaded on change when Watch is set, and on
	// request through the reload endpoint. URLs are never watched.
	SnapshotPath string
	Watch        bool

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Server is the HTTP API server.
type Server struct {
	cfg    Config
	runner *pipeline.Runner
	logger *log.Logger
	router chi.Router
	server *http.Server
}

// New creates a server. A nil runner gets an empty snapshot and no byte
// cache; a nil logger uses log.Default().
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Runner == nil {
		cfg.Runner = pipeline.NewRunner(nil, nil, cfg.Logger)
	}
	if cfg.Width <= 0 {
		cfg.Width = pipeline.DefaultWidth
	}
	if cfg.Height <= 0 {
		cfg.Height = pipeline.DefaultHeight
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	cfg.Layout = cfg.Layout.WithDefaults()

	s := &Server{
		cfg:    cfg,
		runner: cfg.Runner,
		logger: cfg.Logger,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/graph", s.handleGraph)
		r.Get("/layout", s.handleLayout)
		r.Get("/render", s.handleRender)
		r.Get("/candidates", s.handleCandidates)
		r.Get("/cache", s.handleCacheStats)
		r.Delete("/cache", s.handleCacheClear)
		r.Post("/snapshot/reload", s.handleReload)
	})

	s.router = r
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully. With Watch
// set, the snapshot file is reloaded whenever it changes.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if s.cfg.Watch && s.cfg.SnapshotPath != "" && !plugin.IsURL(s.cfg.SnapshotPath) {
		w, err := s.watcher()
		if err != nil {
			return err
		}
		go func() {
			if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				s.logger.Error("snapshot watcher stopped", "error", err)
			}
		}()
		s.logger.Info("watching snapshot", "path", s.cfg.SnapshotPath)
	}

	s.server = &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		errc <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer stop()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) watcher() (*watch.Watcher, error) {
	w, err := watch.NewWatcher(watch.DefaultDebounce)
	if err != nil {
		return nil, err
	}
	if err := w.Watch(s.cfg.SnapshotPath); err != nil {
		w.Close()
		return nil, err
	}
	w.OnChange = func(ctx context.Context, path string) error {
		return s.runner.LoadSnapshot(ctx, path)
	}
	w.OnError = func(path string, err error) {
		// A half-written or broken file keeps the previous snapshot.
		s.logger.Warn("snapshot reload failed", "path", path, "error", err)
	}
	return w, nil
}
