package bootstrap

import (
	"errors"
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/jmoiron/sqlx"

	coreconfig "github.com/m3rciful/espertofit/core/config"
	coredatabase "github.com/m3rciful/espertofit/core/database"
)

func noLogger(*coreconfig.Config) error { return nil }

func TestRunWithoutDatabase(t *testing.T) {
	called := false
	res, err := Run(Options{
		Config:     &coreconfig.Config{},
		LoggerInit: noLogger,
		Connect: func(coredatabase.Config) (*sqlx.DB, error) {
			called = true
			return nil, nil
		},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if called {
		t.Fatal("connect must not run without a database config")
	}
	if res.DB != nil {
		t.Fatal("expected nil DB")
	}
	if err := res.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestRunNilConfig(t *testing.T) {
	if _, err := Run(Options{}); err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestRunConnectFailure(t *testing.T) {
	want := errors.New("refused")
	_, err := Run(Options{
		Config:     &coreconfig.Config{},
		Database:   &coredatabase.Config{Driver: coredatabase.DriverPostgres},
		LoggerInit: noLogger,
		Connect: func(coredatabase.Config) (*sqlx.DB, error) {
			return nil, want
		},
	})
	if !errors.Is(err, want) {
		t.Fatalf("expected wrapped connect error, got %v", err)
	}
}

func TestRunMigratesSQLite(t *testing.T) {
	migrations := fstest.MapFS{
		"sqlite/0001_things.up.sql":   {Data: []byte("CREATE TABLE things (id INTEGER PRIMARY KEY);")},
		"sqlite/0001_things.down.sql": {Data: []byte("DROP TABLE things;")},
	}
	var migratedWith fs.FS
	cfg := &coredatabase.Config{Driver: coredatabase.DriverSQLite, Path: t.TempDir() + "/data/bot.sqlite"}
	res, err := Run(Options{
		Config:     &coreconfig.Config{},
		Database:   cfg,
		Migrations: migrations,
		LoggerInit: noLogger,
		Migrate: func(c coredatabase.Config, m fs.FS) error {
			migratedWith = m
			return coredatabase.RunMigrations(c, m)
		},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	defer res.Close()
	if migratedWith == nil {
		t.Fatal("migrate hook not called")
	}
	var n int
	if err := res.DB.Get(&n, "SELECT COUNT(*) FROM things"); err != nil {
		t.Fatalf("query migrated table: %v", err)
	}
}
