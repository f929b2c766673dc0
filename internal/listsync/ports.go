package listsync

import (
	"context"

	"anitrack/internal/library"
	"anitrack/internal/platform/jikan"
	"anitrack/internal/platform/mal"
)

// Library is the slice of library.Service the adapters write through.
type Library interface {
	List(ctx context.Context, userID string) ([]library.Entry, error)
	Add(ctx context.Context, userID string, in library.NewEntry) (library.Entry, error)
	ApplyMetadata(ctx context.Context, userID, id string, m library.Metadata) (library.Entry, error)
}

type MetadataSource interface {
	GetAnime(ctx context.Context, malID int) (jikan.Anime, error)
}

// MALClient is implemented by *mal.Client.
type MALClient interface {
	Configured() bool
	AuthorizeURL(state, verifier string) string
	ExchangeCode(ctx context.Context, code, verifier string) (mal.Token, error)
	Refresh(ctx context.Context, refreshToken string) (mal.Token, error)
	ListAnime(ctx context.Context, accessToken string) ([]mal.ListItem, error)
	UpdateListStatus(ctx context.Context, accessToken string, malID int, s mal.ListStatus) (mal.ListStatus, error)
	ExportList(ctx context.Context, username string) ([]mal.ExportItem, error)
}

// TokenRepository stores one MAL token per user. Get returns ErrNotLinked
// when the user never linked an account.
type TokenRepository interface {
	Get(ctx context.Context, userID string) (mal.Token, error)
	Upsert(ctx context.Context, userID string, t mal.Token) error
	Delete(ctx context.Context, userID string) error
}
