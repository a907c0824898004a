// Package admin exposes the cache administration HTTP surface: stats,
// clear, tag invalidation and the cached gallery reads.
package admin

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/citiescollective/citycache/internal/store"
)

// Options configures the admin server.
type Options struct {
	// Addr is the listen address, e.g. ":8780".
	Addr string
	// AllowedOrigins restricts CORS; empty allows no cross-origin calls.
	AllowedOrigins []string
	// Logger receives request logs; defaults to a discarding logger.
	Logger *slog.Logger
}

// Server serves the admin API over HTTP.
type Server struct {
	queries *store.Queries
	logger  *slog.Logger
	server  *http.Server
}

// NewServer constructs the admin server around a cached query layer.
func NewServer(queries *store.Queries, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	s := &Server{
		queries: queries,
		logger:  logger,
	}

	handler := s.routes()
	if len(opts.AllowedOrigins) > 0 {
		handler = cors.New(cors.Options{
			AllowedOrigins: opts.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost},
		}).Handler(handler)
	}

	s.server = &http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	r.HandleFunc("/api/cache/stats", s.handleStats).Methods(http.MethodGet)
	r.HandleFunc("/api/cache/clear", s.handleClear).Methods(http.MethodPost)
	r.HandleFunc("/api/cache/invalidate", s.handleInvalidate).Methods(http.MethodPost)
	r.HandleFunc("/api/cities/popular", s.handlePopularCities).Methods(http.MethodGet)
	r.HandleFunc("/api/cities/{id}", s.handleGetCity).Methods(http.MethodGet)
	return r
}

// Handler returns the full middleware-wrapped handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start blocks serving the admin API until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("admin server listening", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
		)
	})
}
