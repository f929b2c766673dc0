package syncrun

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *PostgresRepo) CreateRun(ctx context.Context, run *Run) (string, error) {
	const sql = `
		INSERT INTO sync_runs (user_id, kind, status, started_at)
		VALUES (NULLIF($1, '')::uuid, $2, $3, $4)
		RETURNING id`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var id string
	err := r.db.QueryRow(timeoutCtx, sql, run.UserID, run.Kind, run.Status, run.StartedAt).Scan(&id)
	return id, err
}

func (r *PostgresRepo) UpdateRun(ctx context.Context, run *Run) error {
	const sql = `
		UPDATE sync_runs SET
			finished_at = $1,
			status = $2,
			total = $3,
			succeeded = $4,
			failed = $5,
			skipped = $6,
			error = $7
		WHERE id = $8`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	_, err := r.db.Exec(timeoutCtx, sql, run.FinishedAt, run.Status, run.Total, run.Succeeded, run.Failed, run.Skipped, run.Error, run.ID)
	return err
}

// ListRuns returns the latest runs started by userID, newest first.
func (r *PostgresRepo) ListRuns(ctx context.Context, userID string, limit int) ([]Run, error) {
	const sql = `
		SELECT id, COALESCE(user_id::text, ''), kind, status, started_at, finished_at,
		       total, succeeded, failed, skipped, error
		FROM sync_runs
		WHERE user_id = $1
		ORDER BY started_at DESC
		LIMIT $2`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, sql, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.UserID, &run.Kind, &run.Status, &run.StartedAt, &run.FinishedAt,
			&run.Total, &run.Succeeded, &run.Failed, &run.Skipped, &run.Error); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
