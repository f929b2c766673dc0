package season

import (
	"context"
	"time"

	"anitrack/internal/platform/jikan"
)

//go:generate mockgen -source=ports.go -destination=mock_ports.go -package=season

type Repository interface {
	Upsert(ctx context.Context, c Candidate) error
	List(ctx context.Context, feed Feed) ([]Candidate, error)
	Get(ctx context.Context, malID int) (Candidate, error)
	Count(ctx context.Context, feed Feed) (int, error)
	// Prune deletes rows of feed last refreshed before the cutoff.
	Prune(ctx context.Context, feed Feed, before time.Time) (int64, error)
}

// Source is the metadata API surface the refresh job pages through.
type Source interface {
	SeasonNow(ctx context.Context, page int) (jikan.Page, error)
	SeasonUpcoming(ctx context.Context, page int) (jikan.Page, error)
}
