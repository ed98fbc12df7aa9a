package postgres

import (
	"context"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"github.com/andresuchdata/warehouse-recon/internal/config"
)

// maxConcurrentTx bounds transactions opened through WithTx.
const maxConcurrentTx = 4

// DB is the run-tracking connection pool.
type DB struct {
	*sqlx.DB
	sem *semaphore.Weighted
}

// NewDB connects with the pgx driver and verifies the connection.
func NewDB(ctx context.Context, cfg *config.DatabaseConfig) (*DB, error) {
	db, err := sqlx.ConnectContext(ctx, "pgx", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s/%s: %w", cfg.Host, cfg.DBName, err)
	}

	db.SetMaxOpenConns(maxConcurrentTx + 1)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &DB{DB: db, sem: semaphore.NewWeighted(maxConcurrentTx)}, nil
}

// WithTx runs fn in a transaction, rolling back when fn fails or panics.
func (db *DB) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) (err error) {
	if err := db.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("failed to wait for a transaction slot: %w", err)
	}
	defer db.sem.Release(1)

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error().Err(rbErr).Msg("failed to roll back transaction")
			}
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Migrate applies each DDL statement in one transaction.
func (db *DB) Migrate(ctx context.Context, statements ...string) error {
	return db.WithTx(ctx, func(tx *sqlx.Tx) error {
		for _, stmt := range statements {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("failed to apply schema: %w", err)
			}
		}
		return nil
	})
}
