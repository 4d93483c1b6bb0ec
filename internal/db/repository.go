package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/mcbagz/edSIS/internal/model"
	apperrors "github.com/mcbagz/edSIS/pkg/errors"
)

// maxStatusErrors caps the distinct error messages returned with a run status.
const maxStatusErrors = 20

// Repository is the run ledger: one row per run, one row per attempted record.
type Repository interface {
	CreateRun(ctx context.Context, runID, source string, state model.RunState, startedAt time.Time) error
	UpdateRunState(ctx context.Context, runID string, state model.RunState) error
	FinishRun(ctx context.Context, summary *model.RunSummary) error
	RecordOutcome(ctx context.Context, outcome model.RecordOutcome) error
	GetRunStatus(ctx context.Context, runID string) (*model.RunStatus, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// CreateRun inserts the run, or moves a run queued by the API into its
// first live state.
func (r *repository) CreateRun(ctx context.Context, runID, source string, state model.RunState, startedAt time.Time) error {
	query := `INSERT INTO sync_runs (run_id, source, state, started_at) VALUES (?, ?, ?, ?)
			  ON DUPLICATE KEY UPDATE source = VALUES(source), state = VALUES(state), started_at = VALUES(started_at)`
	_, err := r.db.ExecContext(ctx, query, runID, source, state, nullTime(startedAt))
	return err
}

func (r *repository) UpdateRunState(ctx context.Context, runID string, state model.RunState) error {
	query := `UPDATE sync_runs SET state = ? WHERE run_id = ?`
	_, err := r.db.ExecContext(ctx, query, state, runID)
	return err
}

func (r *repository) FinishRun(ctx context.Context, s *model.RunSummary) error {
	query := `UPDATE sync_runs SET state = ?,
				schools_attempted = ?, schools_succeeded = ?, schools_failed = ?,
				students_attempted = ?, students_succeeded = ?, students_failed = ?,
				error_message = ?, finished_at = ?
			  WHERE run_id = ?`

	var errMsg *string
	if s.Error != "" {
		errMsg = &s.Error
	}

	_, err := r.db.ExecContext(ctx, query, s.State,
		s.Schools.Attempted, s.Schools.Succeeded, s.Schools.Failed,
		s.Students.Attempted, s.Students.Succeeded, s.Students.Failed,
		errMsg, nullTime(s.FinishedAt), s.RunID)
	return err
}

func (r *repository) RecordOutcome(ctx context.Context, o model.RecordOutcome) error {
	query := `INSERT INTO sync_records (run_id, entity, natural_key, status, status_code, error_message)
			  VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, o.RunID, o.Entity, o.Key, o.Status, o.StatusCode, o.ErrorMessage)
	return err
}

// GetRunStatus reads counts from the record rows so a run in progress
// reports live numbers.
func (r *repository) GetRunStatus(ctx context.Context, runID string) (*model.RunStatus, error) {
	query := `SELECT run_id, source, state, error_message, started_at, updated_at FROM sync_runs WHERE run_id = ?`

	var status model.RunStatus
	var runErr sql.NullString
	var startedAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query, runID).Scan(
		&status.RunID, &status.Source, &status.State, &runErr, &startedAt, &status.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}
	if startedAt.Valid {
		status.StartedAt = startedAt.Time
	}
	if runErr.Valid {
		status.Errors = append(status.Errors, runErr.String)
	}

	countQuery := `SELECT entity,
		COUNT(*) as attempted,
		COUNT(CASE WHEN status = 'SUCCEEDED' THEN 1 END) as succeeded,
		COUNT(CASE WHEN status = 'FAILED' THEN 1 END) as failed
	FROM sync_records WHERE run_id = ? GROUP BY entity`

	rows, err := r.db.QueryContext(ctx, countQuery, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var entity model.EntityType
		var counts model.EntitySummary
		if err := rows.Scan(&entity, &counts.Attempted, &counts.Succeeded, &counts.Failed); err != nil {
			return nil, err
		}
		switch entity {
		case model.EntitySchools:
			status.Schools = counts
		case model.EntityStudents:
			status.Students = counts
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Get error messages for failed records
	errorQuery := `SELECT DISTINCT error_message FROM sync_records
				   WHERE run_id = ? AND status = 'FAILED' AND error_message IS NOT NULL
				   LIMIT ?`

	errRows, err := r.db.QueryContext(ctx, errorQuery, runID, maxStatusErrors)
	if err == nil {
		defer errRows.Close()
		for errRows.Next() {
			var errorMsg string
			if errRows.Scan(&errorMsg) == nil {
				status.Errors = append(status.Errors, errorMsg)
			}
		}
	}

	return &status, nil
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
