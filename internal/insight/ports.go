package insight

import (
	"context"

	"anitrack/internal/library"
	"anitrack/internal/season"
)

//go:generate mockgen -source=ports.go -destination=mock_ports.go -package=insight

// CatalogSource supplies recommendation candidates.
type CatalogSource interface {
	List(ctx context.Context, feed season.Feed) ([]season.Candidate, error)
}

// TierWriter persists a resolved drop through the library mutation path.
type TierWriter interface {
	SetTier(ctx context.Context, userID, id string, tier library.Tier) (library.Entry, error)
}
