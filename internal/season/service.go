package season

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"anitrack/internal/library"
	"anitrack/internal/platform/jikan"
	"anitrack/internal/syncrun"
)

// DefaultMaxPages bounds how far a refresh pages into one feed.
const DefaultMaxPages = 10

type Service struct {
	repo     Repository
	source   Source
	runs     syncrun.Repository
	maxPages int
	now      func() time.Time
}

func NewService(repo Repository, source Source, runs syncrun.Repository) *Service {
	return &Service{repo: repo, source: source, runs: runs, maxPages: DefaultMaxPages, now: time.Now}
}

func (s *Service) List(ctx context.Context, feed Feed) ([]Candidate, error) {
	return s.repo.List(ctx, feed)
}

// Lookup implements library.Catalog.
func (s *Service) Lookup(ctx context.Context, malID int) (library.NewEntry, error) {
	c, err := s.repo.Get(ctx, malID)
	if errors.Is(err, ErrNotFound) {
		return library.NewEntry{}, fmt.Errorf("%w: mal id %d is not in the season catalog", library.ErrNotFound, malID)
	}
	if err != nil {
		return library.NewEntry{}, err
	}
	return c.NewEntry(), nil
}

// Refresh replaces both feeds with the current upstream snapshot. A page that
// fails to load ends that feed early and keeps its old rows; a row that fails
// to store is logged and skipped.
func (s *Service) Refresh(ctx context.Context) (*syncrun.Run, error) {
	return syncrun.Track(ctx, s.runs, syncrun.KindSeasonRefresh, "", func(ctx context.Context, run *syncrun.Run) error {
		var failedFeeds []string
		for _, feed := range []Feed{FeedNow, FeedUpcoming} {
			if err := s.refreshFeed(ctx, feed, run); err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				failedFeeds = append(failedFeeds, fmt.Sprintf("%s: %v", feed, err))
			}
		}
		if len(failedFeeds) > 0 {
			run.Error = strings.Join(failedFeeds, "; ")
		}
		return nil
	})
}

func (s *Service) refreshFeed(ctx context.Context, feed Feed, run *syncrun.Run) error {
	refreshedAt := s.now().UTC().Truncate(time.Microsecond)
	fetch := s.source.SeasonNow
	if feed == FeedUpcoming {
		fetch = s.source.SeasonUpcoming
	}

	for page := 1; page <= s.maxPages; page++ {
		p, err := fetch(ctx, page)
		if err != nil {
			log.Printf("[season] page failed feed=%s page=%d err=%v", feed, page, err)
			return fmt.Errorf("page %d: %w", page, err)
		}

		for _, a := range p.Data {
			run.Total++
			c, ok := CandidateFromAnime(a, feed, refreshedAt)
			if !ok {
				run.Skipped++
				continue
			}
			if err := s.repo.Upsert(ctx, c); err != nil {
				run.Failed++
				log.Printf("[season] upsert failed feed=%s mal_id=%d err=%v", feed, c.MalID, err)
				continue
			}
			run.Succeeded++
		}

		if !p.Pagination.HasNextPage {
			break
		}
	}

	pruned, err := s.repo.Prune(ctx, feed, refreshedAt)
	if err != nil {
		log.Printf("[season] prune failed feed=%s err=%v", feed, err)
		return nil
	}
	log.Printf("[season] feed refreshed feed=%s pruned=%d", feed, pruned)
	return nil
}

// CandidateFromAnime normalizes an API record. Records without an id or a
// title are rejected.
func CandidateFromAnime(a jikan.Anime, feed Feed, refreshedAt time.Time) (Candidate, bool) {
	title := strings.TrimSpace(a.Title)
	if a.MalID <= 0 || title == "" {
		return Candidate{}, false
	}
	c := Candidate{
		MalID:            a.MalID,
		Title:            title,
		ImageURL:         a.ImageURL(),
		Genres:           a.GenreNames(),
		EpisodeCount:     a.EpisodeCount(),
		Feed:             feed,
		Season:           a.SeasonName(),
		Year:             a.YearValue(),
		Studio:           a.Studio(),
		AiredFrom:        a.AiredFrom(),
		Score:            a.ScoreValue(),
		YoutubeTrailerID: a.TrailerID(),
		RefreshedAt:      refreshedAt,
	}
	if day, clock, ok := a.BroadcastSlot(); ok {
		c.Broadcast = &library.Broadcast{Day: day, Time: clock}
	}
	return c, true
}
