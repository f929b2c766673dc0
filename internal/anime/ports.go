package anime

import (
	"context"

	"anitrack/internal/platform/jikan"
)

//go:generate mockgen -source=ports.go -destination=mock_ports.go -package=anime

// Source is the read-only metadata API. *jikan.Client satisfies it.
type Source interface {
	SearchAnime(ctx context.Context, q string, limit int) ([]jikan.Anime, error)
	GetAnime(ctx context.Context, malID int) (jikan.Anime, error)
	GetRecommendations(ctx context.Context, malID int) ([]jikan.Recommendation, error)
	GetThemes(ctx context.Context, malID int) (jikan.Themes, error)
	GetRelations(ctx context.Context, malID int) ([]jikan.Relation, error)
	GetCharacters(ctx context.Context, malID int) ([]jikan.CharacterRole, error)
	GetNews(ctx context.Context, malID int) ([]jikan.NewsItem, error)
	Schedules(ctx context.Context, day string, page int) (jikan.Page, error)
}
