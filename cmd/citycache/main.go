// Package main implements the citycache daemon: the Cities Collective
// query cache with its admin API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/citiescollective/citycache/internal/admin"
	"github.com/citiescollective/citycache/internal/cache"
	"github.com/citiescollective/citycache/internal/cli"
	"github.com/citiescollective/citycache/internal/config"
	"github.com/citiescollective/citycache/internal/logging"
	"github.com/citiescollective/citycache/internal/store"
)

const (
	defaultConfigPath = "citycache.toml"
	shutdownTimeout   = 5 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := cli.Parse(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			_, _ = fmt.Fprintln(stdout, err.Error())
			return 0
		}
		_, _ = fmt.Fprintln(stderr, err.Error())
		return 1
	}

	logger := logging.New(logging.Options{
		Verbose: opts.Verbose,
		Writer:  stderr,
	})

	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		logger.Error("load config", "error", err)
		return 1
	}
	if opts.Addr != "" {
		cfg.AdminAddr = opts.Addr
	}

	db, err := store.Open(ctx, cfg.Driver, cfg.DSN)
	if err != nil {
		logger.Error("open database", "error", err)
		return 1
	}
	defer func() { _ = db.Close() }()

	if err := store.EnsureSchema(ctx, db); err != nil {
		logger.Error("ensure schema", "error", err)
		return 1
	}

	queryCache := cache.New(cache.Config{
		Capacity: cfg.CacheCapacity,
		Logger:   logger,
	})
	queries := store.New(db, queryCache,
		store.WithTTLOverrides(cfg.QueryTTLs),
		store.WithLogger(logger),
	)

	server := admin.NewServer(queries, admin.Options{
		Addr:           cfg.AdminAddr,
		AllowedOrigins: cfg.AllowedOrigins,
		Logger:         logger,
	})

	if cfg.SweepInterval > 0 {
		go sweep(ctx, queryCache, cfg.SweepInterval, logger)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	logger.Info("citycache started",
		"driver", cfg.Driver,
		"capacity", cfg.CacheCapacity,
		"addr", cfg.AdminAddr,
	)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("admin server", "error", err)
			return 1
		}
		return 0
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
		return 1
	}
	logger.Info("citycache stopped")
	return 0
}

// loadConfig reads the configuration at path. A missing file at the
// default path is not an error: the built-in defaults apply.
func loadConfig(path string) (config.Config, error) {
	cfg, err := config.Load(path)
	if errors.Is(err, fs.ErrNotExist) && path == defaultConfigPath {
		return config.Default(), nil
	}
	return cfg, err
}

// sweep purges expired cache entries on a fixed cadence until ctx is
// cancelled.
func sweep(ctx context.Context, c *cache.Cache, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := c.Sweep(); removed > 0 {
				logger.Debug("expired entries swept", "removed", removed)
			}
		}
	}
}
