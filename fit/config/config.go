// Package config holds the espertofit configuration: the shared core
// sections plus storage, session and catalog settings.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron"

	coreconfig "github.com/m3rciful/espertofit/core/config"
	"github.com/m3rciful/espertofit/core/database"
)

const (
	// StorageMemory keeps sessions in process memory only.
	StorageMemory = "memory"
	// StorageSQLite keeps sessions in a local SQLite file.
	StorageSQLite = "sqlite"
	// StoragePostgres keeps sessions in PostgreSQL.
	StoragePostgres = "postgres"

	defaultStoragePath   = "db.sqlite"
	defaultPruneSchedule = "@every 1h"
)

// StorageConfig selects the session backend.
type StorageConfig struct {
	Driver         string          `yaml:"driver" envconfig:"STORAGE_DRIVER"`
	Path           string          `yaml:"path" envconfig:"STORAGE_PATH"`
	Postgres       database.Config `yaml:"database"`
	SkipMigrations bool            `yaml:"skip_migrations" envconfig:"STORAGE_SKIP_MIGRATIONS"`
}

// SessionsConfig controls pruning of idle chat sessions.
type SessionsConfig struct {
	// PruneAfter is the idle age after which a session is dropped; 0 disables pruning.
	PruneAfter    time.Duration `yaml:"prune_after" envconfig:"SESSIONS_PRUNE_AFTER"`
	PruneSchedule string        `yaml:"prune_schedule" envconfig:"SESSIONS_PRUNE_SCHEDULE"`
}

// CatalogConfig points at an external catalog file. Empty means the embedded one.
type CatalogConfig struct {
	Path string `yaml:"path" envconfig:"CATALOG_PATH"`
}

// Config is the full application configuration.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Storage  StorageConfig  `yaml:"storage"`
	Sessions SessionsConfig `yaml:"sessions"`
	Catalog  CatalogConfig  `yaml:"catalog"`
}

// Load reads path, applies environment overrides and validates the result.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.Decode(path, &cfg); err != nil {
		return nil, err
	}
	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates cfg and fills defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return err
	}

	drv := strings.ToLower(strings.TrimSpace(cfg.Storage.Driver))
	if drv == "" {
		drv = StorageSQLite
	}
	switch drv {
	case StorageMemory:
	case StorageSQLite:
		if strings.TrimSpace(cfg.Storage.Path) == "" {
			cfg.Storage.Path = defaultStoragePath
		}
	case StoragePostgres:
		pg := cfg.Storage.Postgres
		if pg.Host == "" || pg.Name == "" || pg.User == "" {
			return fmt.Errorf("storage.database host, name and user are required for postgres")
		}
		if pg.Port == "" {
			cfg.Storage.Postgres.Port = "5432"
		}
	default:
		return fmt.Errorf("invalid storage.driver %q; allowed: memory, sqlite, postgres", cfg.Storage.Driver)
	}
	cfg.Storage.Driver = drv

	if cfg.Sessions.PruneAfter < 0 {
		return fmt.Errorf("sessions.prune_after must be >= 0")
	}
	if strings.TrimSpace(cfg.Sessions.PruneSchedule) == "" {
		cfg.Sessions.PruneSchedule = defaultPruneSchedule
	}
	if _, err := cron.Parse(cfg.Sessions.PruneSchedule); err != nil {
		return fmt.Errorf("invalid sessions.prune_schedule %q: %w", cfg.Sessions.PruneSchedule, err)
	}
	return nil
}

// CoreConfig exposes the embedded core configuration.
func (c *Config) CoreConfig() *coreconfig.Config {
	if c == nil {
		return nil
	}
	return &c.Config
}

// DatabaseConfig returns the connection settings for the configured
// backend, or nil when sessions live in memory.
func (c *Config) DatabaseConfig() *database.Config {
	switch c.Storage.Driver {
	case StorageSQLite:
		return &database.Config{Driver: database.DriverSQLite, Path: c.Storage.Path}
	case StoragePostgres:
		pg := c.Storage.Postgres
		pg.Driver = database.DriverPostgres
		return &pg
	default:
		return nil
	}
}
