package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/m3rciful/espertofit/core/logger"
)

func init() {
	// sqlx only knows the cgo driver name; modernc registers itself as "sqlite".
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// Connect opens the configured database, sizes the pool and verifies connectivity.
func Connect(cfg Config) (*sqlx.DB, error) {
	switch cfg.Driver {
	case DriverPostgres:
		return open(cfg, DriverPostgres, cfg.PostgresDSN(), cfg.MaxConnections)
	case DriverSQLite:
		if cfg.Path == "" {
			return nil, fmt.Errorf("db connect: sqlite path is required")
		}
		if dir := filepath.Dir(cfg.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("db connect: create sqlite dir: %w", err)
			}
		}
		// A single writer connection avoids SQLITE_BUSY between pool members.
		dsn := cfg.Path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
		return open(cfg, DriverSQLite, dsn, 1)
	default:
		return nil, fmt.Errorf("db connect: unsupported driver %q", cfg.Driver)
	}
}

func open(cfg Config, driver, dsn string, poolSize int) (*sqlx.DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	start := time.Now()
	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	took := time.Since(start)
	if err != nil {
		logger.DB.Error("db connect failed",
			slog.String("event", "db.connect"),
			slog.String("driver", driver),
			slog.String("db", target(cfg)),
			slog.Duration("duration", logger.RoundMS(took)),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("db connect: %w", err)
	}

	if poolSize > 0 {
		db.SetMaxOpenConns(poolSize)
		db.SetMaxIdleConns(poolSize)
	}

	logger.DB.Info("db connected",
		slog.String("event", "db.connect"),
		slog.String("driver", driver),
		slog.String("db", target(cfg)),
		slog.Int("pool_open", poolSize),
		slog.Duration("duration", logger.RoundMS(took)),
	)
	return db, nil
}

func target(cfg Config) string {
	if cfg.Driver == DriverSQLite {
		return cfg.Path
	}
	return cfg.Host + ":" + cfg.Port + "/" + cfg.Name
}

// WaitForPostgres tries to connect to the DB until it is ready or timeout is reached.
func WaitForPostgres(dsn string, timeout time.Duration) error {
	start := time.Now()
	var lastErr error
	for {
		db, err := sql.Open(DriverPostgres, dsn)
		if err == nil {
			err = db.Ping()
			_ = db.Close()
			if err == nil {
				return nil
			}
		}
		lastErr = err
		if time.Since(start) > timeout {
			return fmt.Errorf("timeout reached waiting for database: %w", lastErr)
		}
		time.Sleep(2 * time.Second)
	}
}
