package library

import (
	"context"
)

//go:generate mockgen -source=ports.go -destination=mock_repository.go -package=library

// Repository defines the contract for watch-list storage.
type Repository interface {
	List(ctx context.Context, userID string) ([]Entry, error)
	Get(ctx context.Context, userID, id string) (Entry, error)
	GetByMalID(ctx context.Context, userID string, malID int) (Entry, error)
	Insert(ctx context.Context, e *Entry) error
	// Update persists e and appends the history records in one transaction.
	Update(ctx context.Context, e *Entry, h History) error
	Delete(ctx context.Context, userID, id string) error
	ListEpisodeHistory(ctx context.Context, userID string, limit int) ([]EpisodeRecord, error)
	ListTierHistory(ctx context.Context, userID string, limit int) ([]TierChangeRecord, error)
}

// Reader is the read side used by derived views. Invalidate drops whatever the
// reader holds for the user so the next read sees the latest writes.
type Reader interface {
	Entries(ctx context.Context, userID string) ([]Entry, error)
	Invalidate(userID string)
}

// Catalog resolves a malId picked from the season catalog into a new entry.
// It returns ErrNotFound when the id is not in the catalog.
type Catalog interface {
	Lookup(ctx context.Context, malID int) (NewEntry, error)
}
