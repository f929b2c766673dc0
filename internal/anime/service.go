package anime

import (
	"context"
	"strings"

	"anitrack/internal/platform/jikan"
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 25
)

type Service struct {
	source Source
}

func NewService(source Source) *Service {
	return &Service{source: source}
}

func (s *Service) Search(ctx context.Context, q string, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}
	items, err := s.source.SearchAnime(ctx, strings.TrimSpace(q), limit)
	if err != nil {
		return nil, err
	}
	return summarize(items), nil
}

func (s *Service) Get(ctx context.Context, malID int) (jikan.Anime, error) {
	return s.source.GetAnime(ctx, malID)
}

// Resource loads one sub-document of an anime.
func (s *Service) Resource(ctx context.Context, malID int, res Resource) (any, error) {
	switch res {
	case ResourceRecommendations:
		return s.source.GetRecommendations(ctx, malID)
	case ResourceThemes:
		return s.source.GetThemes(ctx, malID)
	case ResourceRelations:
		return s.source.GetRelations(ctx, malID)
	case ResourceCharacters:
		return s.source.GetCharacters(ctx, malID)
	case ResourceNews:
		return s.source.GetNews(ctx, malID)
	}
	return nil, ErrUnknownResource
}

func (s *Service) Schedule(ctx context.Context, day string, page int) ([]Summary, jikan.Pagination, error) {
	if page < 1 {
		page = 1
	}
	p, err := s.source.Schedules(ctx, day, page)
	if err != nil {
		return nil, jikan.Pagination{}, err
	}
	return summarize(p.Data), p.Pagination, nil
}

func summarize(items []jikan.Anime) []Summary {
	out := make([]Summary, 0, len(items))
	for _, a := range items {
		sum := Summary{
			MalID:        a.MalID,
			Title:        a.Title,
			ImageURL:     a.ImageURL(),
			Genres:       a.GenreNames(),
			EpisodeCount: a.EpisodeCount(),
			Studio:       a.Studio(),
			Score:        a.ScoreValue(),
			Season:       a.SeasonName(),
			Year:         a.YearValue(),
		}
		if day, clock, ok := a.BroadcastSlot(); ok {
			sum.BroadcastDay, sum.BroadcastAt = day, clock
		}
		out = append(out, sum)
	}
	return out
}
