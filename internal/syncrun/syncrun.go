// Package syncrun records batch job executions (metadata repair, MAL push and
// import, season refresh) so their outcome can be inspected afterwards.
package syncrun

import (
	"context"
	"log"
	"time"
)

type Kind string

const (
	KindRepair        Kind = "REPAIR"
	KindMALPush       Kind = "MAL_PUSH"
	KindMALImport     Kind = "MAL_IMPORT"
	KindSeasonRefresh Kind = "SEASON_REFRESH"
)

type Status string

const (
	StatusRunning   Status = "RUNNING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
)

type Run struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id,omitempty"`
	Kind       Kind       `json:"kind"`
	Status     Status     `json:"status"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Total      int        `json:"total"`
	Succeeded  int        `json:"succeeded"`
	Failed     int        `json:"failed"`
	Skipped    int        `json:"skipped"`
	Error      string     `json:"error,omitempty"`
}

//go:generate mockgen -source=syncrun.go -destination=mock_repository.go -package=syncrun

type Repository interface {
	CreateRun(ctx context.Context, run *Run) (string, error)
	UpdateRun(ctx context.Context, run *Run) error
	ListRuns(ctx context.Context, userID string, limit int) ([]Run, error)
}

// Track creates a RUNNING record, hands it to fn for counting and marks it
// COMPLETED or FAILED when fn returns. An empty userID is a system job. The
// record is finished with a fresh context so a cancelled job is still closed.
func Track(ctx context.Context, repo Repository, kind Kind, userID string, fn func(ctx context.Context, run *Run) error) (run *Run, err error) {
	run = &Run{
		UserID:    userID,
		Kind:      kind,
		Status:    StatusRunning,
		StartedAt: time.Now().UTC(),
	}
	id, rErr := repo.CreateRun(ctx, run)
	if rErr != nil {
		return nil, rErr
	}
	run.ID = id

	defer func() {
		now := time.Now().UTC()
		run.FinishedAt = &now
		if err != nil && run.Error == "" {
			run.Error = err.Error()
		}

		if run.Error != "" {
			run.Status = StatusFailed
		} else {
			run.Status = StatusCompleted
		}
		if updateErr := repo.UpdateRun(context.WithoutCancel(ctx), run); updateErr != nil {
			log.Printf("[syncrun] failed to update run id=%s kind=%s err=%v", run.ID, run.Kind, updateErr)
		}
		log.Printf("[syncrun] finished id=%s kind=%s status=%s total=%d succeeded=%d failed=%d skipped=%d", run.ID, run.Kind, run.Status, run.Total, run.Succeeded, run.Failed, run.Skipped)
	}()

	return run, fn(ctx, run)
}
