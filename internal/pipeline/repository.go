package pipeline

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Schema creates the run tracking table.
const Schema = `
CREATE TABLE IF NOT EXISTS recon_runs (
	id            UUID PRIMARY KEY,
	pipeline_name TEXT NOT NULL,
	start_date    DATE,
	end_date      DATE,
	status        TEXT NOT NULL,
	sources       INT NOT NULL DEFAULT 0,
	total_rows    INT NOT NULL DEFAULT 0,
	clamps        INT NOT NULL DEFAULT 0,
	fingerprint   TEXT NOT NULL DEFAULT '',
	started_at    TIMESTAMPTZ NOT NULL,
	completed_at  TIMESTAMPTZ,
	error_message TEXT NOT NULL DEFAULT ''
)`

// Repository handles database operations for pipeline tracking
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a new pipeline repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// CreatePipelineRun creates a new pipeline run record
func (r *Repository) CreatePipelineRun(ctx context.Context, run *PipelineRun) error {
	query := `
		INSERT INTO recon_runs (
			id, pipeline_name, start_date, end_date, status,
			sources, total_rows, clamps, fingerprint, started_at
		) VALUES (
			:id, :pipeline_name, :start_date, :end_date, :status,
			:sources, :total_rows, :clamps, :fingerprint, :started_at
		)
	`
	_, err := r.db.NamedExecContext(ctx, query, run)
	return err
}

// UpdatePipelineRun updates an existing pipeline run
func (r *Repository) UpdatePipelineRun(ctx context.Context, run *PipelineRun) error {
	query := `
		UPDATE recon_runs
		SET status = :status, total_rows = :total_rows, clamps = :clamps,
		    completed_at = :completed_at, error_message = :error_message
		WHERE id = :id
	`
	_, err := r.db.NamedExecContext(ctx, query, run)
	return err
}

// GetPipelineRun retrieves a pipeline run by ID
func (r *Repository) GetPipelineRun(ctx context.Context, id uuid.UUID) (*PipelineRun, error) {
	run := &PipelineRun{}
	err := r.db.GetContext(ctx, run, `SELECT * FROM recon_runs WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	return run, nil
}

// LastCompleted returns the most recent completed run with the given input
// fingerprint, or nil when there is none.
func (r *Repository) LastCompleted(ctx context.Context, fingerprint string) (*PipelineRun, error) {
	run := &PipelineRun{}
	err := r.db.GetContext(ctx, run, `
		SELECT * FROM recon_runs
		WHERE fingerprint = $1 AND status = $2
		ORDER BY started_at DESC
		LIMIT 1
	`, fingerprint, StatusCompleted)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

var _ RunTracker = (*Repository)(nil)
