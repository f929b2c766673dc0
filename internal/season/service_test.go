package season

import (
	"context"
	"errors"
	"testing"
	"time"

	"anitrack/internal/library"
	"anitrack/internal/platform/jikan"
	"anitrack/internal/syncrun"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var refreshTime = time.Date(2024, 4, 10, 12, 0, 0, 123456789, time.UTC)

type testDeps struct {
	repo   *MockRepository
	source *MockSource
	runs   *syncrun.MockRepository
}

func newTestService(t *testing.T) (*Service, testDeps) {
	t.Helper()
	ctrl := gomock.NewController(t)
	d := testDeps{
		repo:   NewMockRepository(ctrl),
		source: NewMockSource(ctrl),
		runs:   syncrun.NewMockRepository(ctrl),
	}
	svc := NewService(d.repo, d.source, d.runs)
	svc.now = func() time.Time { return refreshTime }
	return svc, d
}

func anime(id int, title string) jikan.Anime {
	return jikan.Anime{MalID: id, Title: title, Genres: []jikan.Entity{{Name: "Action"}}}
}

func page(hasNext bool, items ...jikan.Anime) jikan.Page {
	return jikan.Page{Data: items, Pagination: jikan.Pagination{HasNextPage: hasNext}}
}

func expectRun(d testDeps, check func(r *syncrun.Run)) {
	d.runs.EXPECT().CreateRun(gomock.Any(), gomock.Any()).Return("run-1", nil)
	d.runs.EXPECT().UpdateRun(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, r *syncrun.Run) error {
		check(r)
		return nil
	})
}

func TestService_Refresh_PagesAndPrunes(t *testing.T) {
	svc, d := newTestService(t)
	ctx := context.Background()
	cutoff := refreshTime.Truncate(time.Microsecond)

	gomock.InOrder(
		d.source.EXPECT().SeasonNow(gomock.Any(), 1).Return(page(true, anime(1, "A"), anime(2, "B")), nil),
		d.source.EXPECT().SeasonNow(gomock.Any(), 2).Return(page(false, anime(3, "C")), nil),
	)
	d.source.EXPECT().SeasonUpcoming(gomock.Any(), 1).Return(page(false, anime(4, "D")), nil)
	d.repo.EXPECT().Upsert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, c Candidate) error {
		assert.Equal(t, cutoff, c.RefreshedAt)
		return nil
	}).Times(4)
	d.repo.EXPECT().Prune(gomock.Any(), FeedNow, cutoff).Return(int64(2), nil)
	d.repo.EXPECT().Prune(gomock.Any(), FeedUpcoming, cutoff).Return(int64(0), nil)
	expectRun(d, func(r *syncrun.Run) {
		assert.Equal(t, syncrun.StatusCompleted, r.Status)
		assert.Equal(t, syncrun.KindSeasonRefresh, r.Kind)
		assert.Empty(t, r.UserID)
	})

	run, err := svc.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, run.Total)
	assert.Equal(t, 4, run.Succeeded)
}

func TestService_Refresh_PageFailureKeepsOldRows(t *testing.T) {
	svc, d := newTestService(t)
	ctx := context.Background()

	d.source.EXPECT().SeasonNow(gomock.Any(), 1).Return(page(true, anime(1, "A")), nil)
	d.source.EXPECT().SeasonNow(gomock.Any(), 2).Return(jikan.Page{}, errors.New("jikan: 503"))
	d.source.EXPECT().SeasonUpcoming(gomock.Any(), 1).Return(page(false), nil)
	d.repo.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(nil)
	// only the healthy feed is pruned
	d.repo.EXPECT().Prune(gomock.Any(), FeedUpcoming, gomock.Any()).Return(int64(0), nil)
	expectRun(d, func(r *syncrun.Run) {
		assert.Equal(t, syncrun.StatusFailed, r.Status)
		assert.Contains(t, r.Error, "now: page 2")
	})

	run, err := svc.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, run.Succeeded)
}

func TestService_Refresh_SkipsInvalidAndCountsFailures(t *testing.T) {
	svc, d := newTestService(t)
	ctx := context.Background()

	d.source.EXPECT().SeasonNow(gomock.Any(), 1).Return(page(false, anime(0, "No id"), anime(2, "  "), anime(3, "Ok"), anime(4, "Broken")), nil)
	d.source.EXPECT().SeasonUpcoming(gomock.Any(), 1).Return(page(false), nil)
	d.repo.EXPECT().Upsert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, c Candidate) error {
		if c.MalID == 4 {
			return errors.New("db down")
		}
		return nil
	}).Times(2)
	d.repo.EXPECT().Prune(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(0), nil).Times(2)
	expectRun(d, func(r *syncrun.Run) {
		assert.Equal(t, syncrun.StatusCompleted, r.Status)
	})

	run, err := svc.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, run.Total)
	assert.Equal(t, 2, run.Skipped)
	assert.Equal(t, 1, run.Failed)
	assert.Equal(t, 1, run.Succeeded)
}

func TestService_Refresh_StopsAtMaxPages(t *testing.T) {
	svc, d := newTestService(t)
	svc.maxPages = 2
	ctx := context.Background()

	d.source.EXPECT().SeasonNow(gomock.Any(), gomock.Any()).Return(page(true), nil).Times(2)
	d.source.EXPECT().SeasonUpcoming(gomock.Any(), gomock.Any()).Return(page(true), nil).Times(2)
	d.repo.EXPECT().Prune(gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(0), nil).Times(2)
	expectRun(d, func(r *syncrun.Run) {})

	_, err := svc.Refresh(ctx)
	require.NoError(t, err)
}

func TestService_Lookup(t *testing.T) {
	ctx := context.Background()

	t.Run("converts the candidate", func(t *testing.T) {
		svc, d := newTestService(t)
		d.repo.EXPECT().Get(ctx, 52991).Return(Candidate{
			MalID: 52991, Title: "Frieren", EpisodeCount: 28, Genres: []string{"Adventure"},
			Broadcast: &library.Broadcast{Day: "Fridays", Time: "23:00"},
		}, nil)

		ne, err := svc.Lookup(ctx, 52991)
		require.NoError(t, err)
		assert.Equal(t, 52991, ne.MalID)
		assert.Equal(t, 28, ne.TotalEpisodes)
		assert.Equal(t, "Fridays", ne.Broadcast.Day)
	})

	t.Run("missing candidate maps to library not found", func(t *testing.T) {
		svc, d := newTestService(t)
		d.repo.EXPECT().Get(ctx, 7).Return(Candidate{}, ErrNotFound)

		_, err := svc.Lookup(ctx, 7)
		assert.ErrorIs(t, err, library.ErrNotFound)
	})
}

func TestCandidateFromAnime(t *testing.T) {
	day, clock := "Fridays", "23:00"
	eps := 28
	score := 9.3
	aired := time.Date(2023, 9, 29, 0, 0, 0, 0, time.UTC)
	a := jikan.Anime{
		MalID:     52991,
		Title:     " Sousou no Frieren ",
		Episodes:  &eps,
		Score:     &score,
		Aired:     jikan.Aired{From: &aired},
		Broadcast: jikan.Broadcast{Day: &day, Time: &clock},
		Studios:   []jikan.Entity{{Name: "Madhouse"}},
		Genres:    []jikan.Entity{{Name: "Adventure"}, {Name: "Drama"}},
		Images:    jikan.Images{JPG: jikan.ImageSet{ImageURL: "small.jpg", LargeImageURL: "large.jpg"}},
	}

	c, ok := CandidateFromAnime(a, FeedNow, refreshTime)
	require.True(t, ok)
	assert.Equal(t, "Sousou no Frieren", c.Title)
	assert.Equal(t, 28, c.EpisodeCount)
	assert.Equal(t, "large.jpg", c.ImageURL)
	assert.Equal(t, "Madhouse", c.Studio)
	assert.Equal(t, []string{"Adventure", "Drama"}, c.Genres)
	require.NotNil(t, c.Broadcast)
	assert.Equal(t, library.Broadcast{Day: "Fridays", Time: "23:00"}, *c.Broadcast)
	assert.Equal(t, aired, *c.AiredFrom)

	a.Broadcast.Time = nil
	c, ok = CandidateFromAnime(a, FeedNow, refreshTime)
	require.True(t, ok)
	assert.Nil(t, c.Broadcast)

	_, ok = CandidateFromAnime(jikan.Anime{Title: "x"}, FeedNow, refreshTime)
	assert.False(t, ok)
}

func TestParseFeed(t *testing.T) {
	f, ok := ParseFeed("")
	assert.True(t, ok)
	assert.Equal(t, FeedNow, f)

	f, ok = ParseFeed("upcoming")
	assert.True(t, ok)
	assert.Equal(t, FeedUpcoming, f)

	_, ok = ParseFeed("later")
	assert.False(t, ok)
}
