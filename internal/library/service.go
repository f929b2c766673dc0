package library

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
)

// Service is the only write path for library entries. Every mutation derives
// the history records it implies and invalidates the reader.
type Service struct {
	repo   Repository
	reader Reader
	now    func() time.Time
}

func NewService(repo Repository, reader Reader) *Service {
	return &Service{repo: repo, reader: reader, now: time.Now}
}

// List returns the user's entries, most recently updated first.
func (s *Service) List(ctx context.Context, userID string) ([]Entry, error) {
	if s.reader != nil {
		return s.reader.Entries(ctx, userID)
	}
	return s.repo.List(ctx, userID)
}

func (s *Service) Get(ctx context.Context, userID, id string) (Entry, error) {
	return s.repo.Get(ctx, userID, id)
}

func (s *Service) GetByMalID(ctx context.Context, userID string, malID int) (Entry, error) {
	return s.repo.GetByMalID(ctx, userID, malID)
}

func (s *Service) Add(ctx context.Context, userID string, in NewEntry) (Entry, error) {
	if in.MalID <= 0 {
		return Entry{}, fmt.Errorf("%w: mal_id is required", ErrInvalidInput)
	}
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return Entry{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if in.Status == "" {
		in.Status = StatusPlanToWatch
	}
	if _, err := ParseStatus(string(in.Status)); err != nil {
		return Entry{}, err
	}
	if in.Score < 0 || in.Score > 10 {
		return Entry{}, fmt.Errorf("%w: score must be between 0 and 10", ErrInvalidInput)
	}

	if _, err := s.repo.GetByMalID(ctx, userID, in.MalID); err == nil {
		return Entry{}, ErrAlreadyExists
	} else if !errors.Is(err, ErrNotFound) {
		return Entry{}, err
	}

	e := Entry{
		UserID:           userID,
		MalID:            in.MalID,
		Title:            in.Title,
		ImageURL:         in.ImageURL,
		TotalEpisodes:    max(in.TotalEpisodes, 0),
		EpisodesWatched:  max(in.EpisodesWatched, 0),
		Status:           in.Status,
		Score:            in.Score,
		Genres:           normalizeGenres(in.Genres),
		Tier:             TierUnranked,
		Studio:           in.Studio,
		Broadcast:        in.Broadcast,
		AiredFrom:        in.AiredFrom,
		YoutubeTrailerID: in.YoutubeTrailerID,
	}
	if e.Status == StatusCompleted && e.TotalEpisodes > 0 {
		e.EpisodesWatched = e.TotalEpisodes
	}
	e.EpisodesWatched = clampEpisodes(e.EpisodesWatched, e.TotalEpisodes)
	if e.TotalEpisodes > 0 && e.EpisodesWatched == e.TotalEpisodes {
		e.Status = StatusCompleted
	}

	if err := s.repo.Insert(ctx, &e); err != nil {
		return Entry{}, err
	}
	s.invalidate(userID)
	return e, nil
}

// Update applies p to the entry and persists the result together with any
// episode or tier history it produces.
func (s *Service) Update(ctx context.Context, userID, id string, p Patch) (Entry, error) {
	cur, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return Entry{}, err
	}

	next, err := applyPatch(cur, p)
	if err != nil {
		return Entry{}, err
	}

	h := s.historyFor(cur, next)
	if err := s.repo.Update(ctx, &next, h); err != nil {
		return Entry{}, err
	}
	s.invalidate(userID)
	return next, nil
}

// Increment marks one more episode as watched.
func (s *Service) Increment(ctx context.Context, userID, id string) (Entry, error) {
	cur, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return Entry{}, err
	}
	watched := cur.EpisodesWatched + 1
	return s.Update(ctx, userID, id, Patch{EpisodesWatched: &watched})
}

// SetTier is the write used by the tier board.
func (s *Service) SetTier(ctx context.Context, userID, id string, tier Tier) (Entry, error) {
	return s.Update(ctx, userID, id, Patch{Tier: &tier})
}

func (s *Service) Remove(ctx context.Context, userID, id string) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.invalidate(userID)
	return nil
}

// ApplyMetadata refreshes catalog fields without touching anything the user
// edits. A smaller episode count re-clamps progress, which can complete the
// entry.
func (s *Service) ApplyMetadata(ctx context.Context, userID, id string, m Metadata) (Entry, error) {
	e, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return Entry{}, err
	}

	if t := strings.TrimSpace(m.Title); t != "" {
		e.Title = t
	}
	if m.ImageURL != "" {
		e.ImageURL = m.ImageURL
	}
	if m.TotalEpisodes > 0 {
		e.TotalEpisodes = m.TotalEpisodes
	}
	if g := normalizeGenres(m.Genres); len(g) > 0 {
		e.Genres = g
	}
	if m.Studio != "" {
		e.Studio = m.Studio
	}
	if m.Broadcast != nil {
		e.Broadcast = m.Broadcast
	}
	if m.AiredFrom != nil {
		e.AiredFrom = m.AiredFrom
	}
	if m.YoutubeTrailerID != "" {
		e.YoutubeTrailerID = m.YoutubeTrailerID
	}
	e.EpisodesWatched = clampEpisodes(e.EpisodesWatched, e.TotalEpisodes)
	if e.TotalEpisodes > 0 && e.EpisodesWatched == e.TotalEpisodes {
		e.Status = StatusCompleted
	}

	if err := s.repo.Update(ctx, &e, History{}); err != nil {
		return Entry{}, err
	}
	s.invalidate(userID)
	return e, nil
}

func (s *Service) EpisodeHistory(ctx context.Context, userID string, limit int) ([]EpisodeRecord, error) {
	return s.repo.ListEpisodeHistory(ctx, userID, clampLimit(limit))
}

func (s *Service) TierHistory(ctx context.Context, userID string, limit int) ([]TierChangeRecord, error) {
	return s.repo.ListTierHistory(ctx, userID, clampLimit(limit))
}

func (s *Service) invalidate(userID string) {
	if s.reader != nil {
		s.reader.Invalidate(userID)
	}
}

func (s *Service) historyFor(cur, next Entry) History {
	var h History
	now := s.now().UTC()
	if next.EpisodesWatched > cur.EpisodesWatched {
		h.Episode = &EpisodeRecord{
			UserID:    next.UserID,
			EntryID:   next.ID,
			MalID:     next.MalID,
			Title:     next.Title,
			Episode:   next.EpisodesWatched,
			Previous:  cur.EpisodesWatched,
			WatchedAt: now,
		}
	}
	if next.Tier != cur.Tier {
		h.Tier = &TierChangeRecord{
			UserID:    next.UserID,
			EntryID:   next.ID,
			MalID:     next.MalID,
			Title:     next.Title,
			FromTier:  cur.Tier,
			ToTier:    next.Tier,
			ChangedAt: now,
		}
	}
	if h.Episode != nil || h.Tier != nil {
		log.Printf("[library] history user_id=%s entry_id=%s episode=%t tier=%t", next.UserID, next.ID, h.Episode != nil, h.Tier != nil)
	}
	return h
}

// applyPatch is the pure part of Update. Order matters: status first, so that
// an explicit "completed" fills progress, then progress, which may in turn
// complete the entry, then the tier, which depends on the final status.
func applyPatch(e Entry, p Patch) (Entry, error) {
	if p.Status != nil {
		st, err := ParseStatus(string(*p.Status))
		if err != nil {
			return Entry{}, err
		}
		e.Status = st
		if st == StatusCompleted && e.TotalEpisodes > 0 && p.EpisodesWatched == nil {
			e.EpisodesWatched = e.TotalEpisodes
		}
	}

	if p.EpisodesWatched != nil {
		e.EpisodesWatched = clampEpisodes(*p.EpisodesWatched, e.TotalEpisodes)
		if e.TotalEpisodes > 0 && e.EpisodesWatched == e.TotalEpisodes {
			e.Status = StatusCompleted
		}
	}

	if p.Score != nil {
		if *p.Score < 0 || *p.Score > 10 {
			return Entry{}, fmt.Errorf("%w: score must be between 0 and 10", ErrInvalidInput)
		}
		e.Score = *p.Score
	}

	if p.Notes != nil {
		e.Notes = *p.Notes
	}

	if p.RewatchCount != nil {
		if *p.RewatchCount < 0 {
			return Entry{}, fmt.Errorf("%w: rewatch_count must not be negative", ErrInvalidInput)
		}
		e.RewatchCount = *p.RewatchCount
	}

	if p.Tier != nil {
		t, ok := ParseTier(string(*p.Tier))
		if !ok {
			return Entry{}, fmt.Errorf("%w: unknown tier %q", ErrInvalidInput, *p.Tier)
		}
		if t != TierUnranked && !e.Rankable() {
			return Entry{}, ErrNotRankable
		}
		e.Tier = t
	}

	if !e.Rankable() {
		e.Tier = TierUnranked
	}
	if e.Tier == "" {
		e.Tier = TierUnranked
	}
	return e, nil
}

func clampEpisodes(watched, total int) int {
	if watched < 0 {
		return 0
	}
	if total > 0 && watched > total {
		return total
	}
	return watched
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 200 {
		return 50
	}
	return limit
}

// normalizeGenres trims names and drops blanks and duplicates, keeping the
// first occurrence order.
func normalizeGenres(genres []string) []string {
	out := make([]string, 0, len(genres))
	seen := make(map[string]bool, len(genres))
	for _, g := range genres {
		g = strings.TrimSpace(g)
		if g == "" || seen[g] {
			continue
		}
		seen[g] = true
		out = append(out, g)
	}
	return out
}
