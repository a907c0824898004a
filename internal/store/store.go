// Package store implements the cached data-access layer for the Cities
// Collective gallery: cities, their owners, comments and likes.
//
// Read queries are memoized through the query cache and grouped by
// invalidation tag; write queries bypass the cache and invalidate the
// tags they touch.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/citiescollective/citycache/internal/cache"
	"github.com/citiescollective/citycache/internal/config"
)

// Invalidation tags shared by the read and write queries.
const (
	TagCities   = "cities"
	TagUsers    = "users"
	TagComments = "comments"
	TagLikes    = "likes"
)

// DBTX is the subset of database/sql used by the queries. Both *sql.DB
// and *sql.Tx satisfy it.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries runs the Cities Collective data-access queries against a DBTX,
// memoizing reads through the cache.
type Queries struct {
	db     DBTX
	cache  *cache.Cache
	ttls   map[string]time.Duration
	logger *slog.Logger
}

// Option customizes a Queries instance.
type Option func(*Queries)

// WithTTLOverrides replaces the per-query default TTLs, keyed by query
// name (e.g. "ListPopularCities"). An override of 0 disables caching for
// that query.
func WithTTLOverrides(ttls map[string]time.Duration) Option {
	return func(q *Queries) { q.ttls = ttls }
}

// WithLogger sets the logger used for write invalidation events.
func WithLogger(logger *slog.Logger) Option {
	return func(q *Queries) { q.logger = logger }
}

// New constructs a Queries over db, caching reads in c.
func New(db DBTX, c *cache.Cache, opts ...Option) *Queries {
	q := &Queries{
		db:     db,
		cache:  c,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Cache exposes the underlying query cache, for the admin surface.
func (q *Queries) Cache() *cache.Cache {
	return q.cache
}

// ttlFor returns the configured TTL for a query, or its default.
func (q *Queries) ttlFor(name string, def time.Duration) time.Duration {
	if ttl, ok := q.ttls[name]; ok {
		return ttl
	}
	return def
}

// Open opens the configured database and verifies connectivity.
func Open(ctx context.Context, driver config.Driver, dsn string) (*sql.DB, error) {
	var name string
	switch driver {
	case config.DriverPostgres:
		name = "pgx"
	case config.DriverSQLite:
		name = "sqlite"
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(name, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}
	if driver == config.DriverSQLite && strings.Contains(dsn, ":memory:") {
		// In-memory sqlite databases are per-connection.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s database: %w", driver, err)
	}
	return db, nil
}
