// Package config loads and validates the citycache configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Driver identifies the database driver to open.
type Driver string

const (
	// DriverPostgres targets github.com/jackc/pgx/v5 via its stdlib adapter.
	DriverPostgres Driver = "postgres"
	// DriverSQLite targets modernc.org/sqlite.
	DriverSQLite Driver = "sqlite"
)

var validDrivers = map[Driver]struct{}{
	DriverPostgres: {},
	DriverSQLite:   {},
}

// Defaults applied when the corresponding fields are absent.
const (
	DefaultCapacity      = 1024
	DefaultTTL           = 5 * time.Minute
	DefaultSweepInterval = time.Minute
	DefaultAdminAddr     = ":8780"
	DefaultDSN           = "file:citycache.db"
)

// fileConfig mirrors the on-disk schema. Durations are strings in
// time.ParseDuration syntax ("30s", "5m").
type fileConfig struct {
	Cache    cacheSection    `toml:"cache" yaml:"cache"`
	Database databaseSection `toml:"database" yaml:"database"`
	Admin    adminSection    `toml:"admin" yaml:"admin"`
}

type cacheSection struct {
	Capacity      int               `toml:"capacity" yaml:"capacity"`
	DefaultTTL    string            `toml:"default_ttl" yaml:"default_ttl"`
	SweepInterval string            `toml:"sweep_interval" yaml:"sweep_interval"`
	TTL           map[string]string `toml:"ttl" yaml:"ttl"`
}

type databaseSection struct {
	Driver string `toml:"driver" yaml:"driver"`
	DSN    string `toml:"dsn" yaml:"dsn"`
}

type adminSection struct {
	Addr           string   `toml:"addr" yaml:"addr"`
	AllowedOrigins []string `toml:"allowed_origins" yaml:"allowed_origins"`
}

// Config is the fully-resolved configuration used by the daemon.
type Config struct {
	CacheCapacity int
	DefaultTTL    time.Duration
	// SweepInterval is the cadence of the background expiry sweeper; 0
	// disables the sweeper.
	SweepInterval time.Duration
	// QueryTTLs overrides the per-query default TTLs in the store, keyed
	// by query name (e.g. "ListPopularCities").
	QueryTTLs map[string]time.Duration

	Driver Driver
	DSN    string

	AdminAddr      string
	AllowedOrigins []string
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		CacheCapacity: DefaultCapacity,
		DefaultTTL:    DefaultTTL,
		SweepInterval: DefaultSweepInterval,
		QueryTTLs:     map[string]time.Duration{},
		Driver:        DriverSQLite,
		DSN:           DefaultDSN,
		AdminAddr:     DefaultAdminAddr,
	}
}

// Load reads, resolves and validates the configuration at path. The
// format is chosen by extension: .toml, or .yaml/.yml.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	var fc fileConfig
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if err := toml.Unmarshal(raw, &fc); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &fc); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	default:
		return Config{}, fmt.Errorf("config %s: unsupported extension %q (want .toml, .yaml or .yml)", path, ext)
	}

	return fc.resolve()
}

func (fc fileConfig) resolve() (Config, error) {
	cfg := Default()

	if fc.Cache.Capacity < 0 {
		return Config{}, errors.New("cache.capacity must not be negative")
	}
	if fc.Cache.Capacity > 0 {
		cfg.CacheCapacity = fc.Cache.Capacity
	}

	var err error
	if cfg.DefaultTTL, err = parseDuration("cache.default_ttl", fc.Cache.DefaultTTL, cfg.DefaultTTL); err != nil {
		return Config{}, err
	}
	if cfg.SweepInterval, err = parseDuration("cache.sweep_interval", fc.Cache.SweepInterval, cfg.SweepInterval); err != nil {
		return Config{}, err
	}
	for name, value := range fc.Cache.TTL {
		ttl, err := parseDuration("cache.ttl."+name, value, 0)
		if err != nil {
			return Config{}, err
		}
		cfg.QueryTTLs[name] = ttl
	}

	if fc.Database.Driver != "" {
		driver := Driver(fc.Database.Driver)
		if _, ok := validDrivers[driver]; !ok {
			return Config{}, fmt.Errorf("database.driver %q is not supported (want postgres or sqlite)", fc.Database.Driver)
		}
		cfg.Driver = driver
	}
	if fc.Database.DSN != "" {
		cfg.DSN = fc.Database.DSN
	}
	if cfg.Driver == DriverPostgres && fc.Database.DSN == "" {
		return Config{}, errors.New("database.dsn is required for the postgres driver")
	}

	if fc.Admin.Addr != "" {
		cfg.AdminAddr = fc.Admin.Addr
	}
	cfg.AllowedOrigins = fc.Admin.AllowedOrigins

	return cfg, nil
}

func parseDuration(field, value string, fallback time.Duration) (time.Duration, error) {
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative", field)
	}
	return d, nil
}
