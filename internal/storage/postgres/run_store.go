package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// RunStatus is the lifecycle state of an export run.
type RunStatus string

// Run states.
const (
	RunRunning   RunStatus = "running"
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

// ErrRunNotFound is returned when no export run has the requested id.
var ErrRunNotFound = errors.New("export run not found")

// ExportRun is one row of the export_runs table.
type ExportRun struct {
	ID           string
	StartedAt    time.Time
	FinishedAt   *time.Time
	Status       RunStatus
	Rows         int
	ErrorMessage *string
}

// EnsureRunSchema creates the export_runs table when it does not exist.
func (s *RecordStore) EnsureRunSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS export_runs (
	id text PRIMARY KEY,
	started_at timestamptz NOT NULL,
	finished_at timestamptz,
	status text NOT NULL,
	rows integer NOT NULL DEFAULT 0,
	error_message text
)`)
	if err != nil {
		return fmt.Errorf("create export_runs: %w", err)
	}
	return nil
}

// StartRun inserts a running export run, or resets one with the same id.
func (s *RecordStore) StartRun(ctx context.Context, runID string, startedAt time.Time) error {
	query := `
		INSERT INTO export_runs (id, started_at, status)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET started_at = EXCLUDED.started_at, status = EXCLUDED.status,
			finished_at = NULL, error_message = NULL;
	`
	if _, err := s.pool.Exec(ctx, query, runID, startedAt, RunRunning); err != nil {
		return fmt.Errorf("start export run: %w", err)
	}
	return nil
}

// CompleteRun marks a run finished with a status, row count and optional
// error message.
func (s *RecordStore) CompleteRun(
	ctx context.Context,
	runID string,
	finishedAt time.Time,
	status RunStatus,
	rows int,
	errMsg *string,
) error {
	query := `
		UPDATE export_runs
		SET finished_at = $1, status = $2, rows = $3, error_message = $4
		WHERE id = $5;
	`
	res, err := s.pool.Exec(ctx, query, finishedAt, status, rows, errMsg, runID)
	if err != nil {
		return fmt.Errorf("complete export run: %w", err)
	}
	if res.RowsAffected() == 0 {
		return fmt.Errorf("complete export run %s: %w", runID, ErrRunNotFound)
	}
	return nil
}

// GetRun retrieves a single export run by id.
func (s *RecordStore) GetRun(ctx context.Context, runID string) (ExportRun, error) {
	query := `
		SELECT id, started_at, finished_at, status, rows, error_message
		FROM export_runs
		WHERE id = $1;
	`
	var run ExportRun
	err := s.pool.QueryRow(ctx, query, runID).Scan(
		&run.ID,
		&run.StartedAt,
		&run.FinishedAt,
		&run.Status,
		&run.Rows,
		&run.ErrorMessage,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ExportRun{}, ErrRunNotFound
		}
		return ExportRun{}, fmt.Errorf("get export run: %w", err)
	}
	return run, nil
}
