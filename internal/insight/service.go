package insight

import (
	"context"
	"fmt"
	"sort"
	"time"

	"anitrack/internal/library"
	"anitrack/internal/season"
)

type Service struct {
	reader  library.Reader
	catalog CatalogSource
	writer  TierWriter
	now     func() time.Time
}

func NewService(reader library.Reader, catalog CatalogSource, writer TierWriter) *Service {
	return &Service{reader: reader, catalog: catalog, writer: writer, now: time.Now}
}

// Summary is the statistics page payload.
type Summary struct {
	Stats
	TotalEntries  int                    `json:"total_entries"`
	ByStatus      map[library.Status]int `json:"by_status"`
	MeanScore     float64                `json:"mean_score"`
	TopGenres     []GenreCount           `json:"top_genres"`
	BadgesEarned  int                    `json:"badges_earned"`
	BadgesTotal   int                    `json:"badges_total"`
	TieredEntries int                    `json:"tiered_entries"`
}

type CountdownItem struct {
	EntryID  string `json:"entry_id"`
	MalID    int    `json:"mal_id"`
	Title    string `json:"title"`
	ImageURL string `json:"image_url,omitempty"`
	Remaining
}

func (s *Service) DNA(ctx context.Context, userID string, n int) ([]GenreCount, error) {
	entries, err := s.reader.Entries(ctx, userID)
	if err != nil {
		return nil, err
	}
	return TopGenres(entries, n), nil
}

// Recommendations matches the chosen season feed against the user's top three
// genres.
func (s *Service) Recommendations(ctx context.Context, userID string, feed season.Feed, limit int) ([]Recommendation, error) {
	entries, err := s.reader.Entries(ctx, userID)
	if err != nil {
		return nil, err
	}
	top := GenreNames(TopGenres(entries, TopGenresForRecommendations))
	if len(top) == 0 {
		return []Recommendation{}, nil
	}

	candidates, err := s.catalog.List(ctx, feed)
	if err != nil {
		return nil, fmt.Errorf("load season catalog: %w", err)
	}
	return Recommend(candidates, top, entries, limit), nil
}

func (s *Service) Achievements(ctx context.Context, userID string) ([]BadgeResult, error) {
	entries, err := s.reader.Entries(ctx, userID)
	if err != nil {
		return nil, err
	}
	return Evaluate(entries), nil
}

func (s *Service) Stats(ctx context.Context, userID string) (Summary, error) {
	entries, err := s.reader.Entries(ctx, userID)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(entries), nil
}

// Summarize builds the statistics page from a library snapshot. The mean
// score only counts scored entries.
func Summarize(entries []library.Entry) Summary {
	stats := Aggregate(entries)
	sum := Summary{
		Stats:        stats,
		TotalEntries: len(entries),
		ByStatus:     make(map[library.Status]int, len(library.Statuses)),
		TopGenres:    TopGenres(entries, TopGenresForStats),
		BadgesTotal:  len(Badges),
	}
	for _, st := range library.Statuses {
		sum.ByStatus[st] = 0
	}

	var scored, total int
	for _, e := range entries {
		sum.ByStatus[e.Status]++
		if e.Score > 0 {
			scored++
			total += e.Score
		}
		if e.Rankable() && e.Tier != "" && e.Tier != library.TierUnranked {
			sum.TieredEntries++
		}
	}
	if scored > 0 {
		sum.MeanScore = float64(total) / float64(scored)
	}
	for _, b := range EvaluateStats(stats) {
		if b.Unlocked {
			sum.BadgesEarned++
		}
	}
	return sum
}

// Countdowns lists upcoming premieres and episodes for titles the user has not
// finished or dropped, soonest first.
func (s *Service) Countdowns(ctx context.Context, userID string) ([]CountdownItem, error) {
	entries, err := s.reader.Entries(ctx, userID)
	if err != nil {
		return nil, err
	}
	return Countdowns(s.now(), entries), nil
}

func Countdowns(now time.Time, entries []library.Entry) []CountdownItem {
	items := []CountdownItem{}
	for _, e := range entries {
		if e.Status == library.StatusCompleted || e.Status == library.StatusDropped {
			continue
		}
		r, ok := Countdown(now, e)
		if !ok {
			continue
		}
		items = append(items, CountdownItem{EntryID: e.ID, MalID: e.MalID, Title: e.Title, ImageURL: e.ImageURL, Remaining: r})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Remaining.Remaining < items[j].Remaining.Remaining
	})
	return items
}

func (s *Service) TierBoard(ctx context.Context, userID string) ([]TierRow, error) {
	entries, err := s.reader.Entries(ctx, userID)
	if err != nil {
		return nil, err
	}
	return BuildTierBoard(entries), nil
}

// ApplyDrop resolves a board drop and writes the resulting tier. It reports
// false without writing when the drop does not change anything.
func (s *Service) ApplyDrop(ctx context.Context, userID string, ev DropEvent) (TierMutation, bool, error) {
	entries, err := s.reader.Entries(ctx, userID)
	if err != nil {
		return TierMutation{}, false, err
	}

	m, changed, err := ReduceDrop(Rankable(entries), ev)
	if err != nil || !changed {
		return m, changed, err
	}

	if _, err := s.writer.SetTier(ctx, userID, m.ID, m.Tier); err != nil {
		return TierMutation{}, false, err
	}
	return m, true, nil
}
