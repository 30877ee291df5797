// Package server exposes the catalog, search, and delivery operations
// over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shelfwise/shelfwise/internal/catalog"
	"github.com/shelfwise/shelfwise/internal/dirset"
	"github.com/shelfwise/shelfwise/internal/kindle"
	"github.com/shelfwise/shelfwise/internal/logger"
	"github.com/shelfwise/shelfwise/internal/metrics"
	"github.com/shelfwise/shelfwise/internal/search"
)

// Deliverer is the delivery adapter surface the server depends on.
// *kindle.Sender satisfies it; tests substitute a fake.
type Deliverer interface {
	Validate(path string) kindle.Validation
	Deliver(ctx context.Context, path, subject string) kindle.Result
}

// Config holds server construction parameters.
type Config struct {
	Addr       string
	SearchMode string
	Threshold  int
}

// Server wires the HTTP API to the catalog store, directory set, search
// scorer, and delivery adapter.
type Server struct {
	cfg    Config
	store  *catalog.Store
	dirs   *dirset.Set
	scorer search.Scorer
	sender Deliverer
	router *chi.Mux
}

// New returns an initialized server.
func New(cfg Config, store *catalog.Store, dirs *dirset.Set, sender Deliverer) *Server {
	s := &Server{
		cfg:    cfg,
		store:  store,
		dirs:   dirs,
		scorer: search.NewScorer(cfg.SearchMode, cfg.Threshold),
		sender: sender,
	}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(accessLog)
	r.Use(metrics.HTTPMiddleware)

	r.Get("/healthz", s.handleHealthz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Post("/search", s.handleSearch)

	r.Get("/directories", s.handleDirectories)
	r.Post("/directories/add", s.handleDirAdd)
	r.Post("/directories/remove", s.handleDirRemove)
	r.Post("/directories/reset", s.handleDirReset)
	r.Post("/directories/clear", s.handleDirClear)

	r.Post("/catalog/build", s.handleCatalogBuild)
	r.Post("/catalog/dedupe", s.handleCatalogDedupe)
	r.Get("/catalog/stats", s.handleCatalogStats)

	r.Post("/validate", s.handleValidate)
	r.Post("/send", s.handleSend)

	s.router = r
	return s
}

// Router returns the underlying router, useful for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start serves until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{Addr: s.cfg.Addr, Handler: s.router}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	logger.Get().Info().Str("addr", s.cfg.Addr).Msg("server listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
