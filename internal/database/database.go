package database

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/avast/retry-go"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/ryanpratama14/hiddengym-api/internal/config"
)

// DB wraps the PostgreSQL connection pool
type DB struct {
	*sqlx.DB
	log *slog.Logger
}

// New opens a PostgreSQL connection pool and waits for the database to
// become reachable, retrying with backoff.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*DB, error) {
	db, err := sqlx.Open("postgres", cfg.Database.GetDatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("failed to open PostgreSQL: %w", err)
	}

	db.SetMaxOpenConns(cfg.Database.MaxConns)
	db.SetMaxIdleConns(cfg.Database.MinConns)
	db.SetConnMaxLifetime(time.Hour)

	err = retry.Do(
		func() error {
			return db.PingContext(ctx)
		},
		retry.Attempts(cfg.Database.ConnRetryAttempts),
		retry.Delay(cfg.Database.ConnRetryDelay),
		retry.MaxDelay(cfg.Database.ConnRetryMaxDelay),
		retry.OnRetry(func(n uint, err error) {
			log.Warn("postgres not ready, retrying",
				slog.Uint64("attempt", uint64(n+1)),
				slog.Any("error", err))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	log.Info("connected to PostgreSQL", slog.String("database", cfg.Database.Name))
	return &DB{DB: db, log: log}, nil
}

// RunMigrations executes all .sql files in the given directory in
// lexicographic order.
func (db *DB) RunMigrations(dir string) error {
	files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return fmt.Errorf("failed to list migrations: %w", err)
	}
	sort.Strings(files)

	for _, file := range files {
		contents, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", file, err)
		}
		if _, err := db.Exec(string(contents)); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", file, err)
		}
		db.log.Info("applied migration", slog.String("file", filepath.Base(file)))
	}
	return nil
}

// Close closes the connection pool
func (db *DB) Close() error {
	if err := db.DB.Close(); err != nil {
		return fmt.Errorf("failed to close PostgreSQL: %w", err)
	}
	return nil
}
