package insight

import (
	"context"
	"errors"
	"testing"
	"time"

	"anitrack/internal/library"
	"anitrack/internal/season"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *library.MockReader, *MockCatalogSource, *MockTierWriter) {
	t.Helper()
	ctrl := gomock.NewController(t)
	reader := library.NewMockReader(ctrl)
	catalog := NewMockCatalogSource(ctrl)
	writer := NewMockTierWriter(ctrl)
	return NewService(reader, catalog, writer), reader, catalog, writer
}

func TestService_Recommendations(t *testing.T) {
	ctx := context.Background()

	t.Run("empty library skips the catalog", func(t *testing.T) {
		svc, reader, _, _ := newTestService(t)
		reader.EXPECT().Entries(ctx, "u1").Return([]library.Entry{}, nil)

		recs, err := svc.Recommendations(ctx, "u1", season.FeedNow, DashboardRecommendations)
		require.NoError(t, err)
		assert.Empty(t, recs)
	})

	t.Run("matches the season feed", func(t *testing.T) {
		svc, reader, catalog, _ := newTestService(t)
		reader.EXPECT().Entries(ctx, "u1").Return(append(repeatGenre(5, "Action", 1), repeatGenre(2, "Romance", 50)...), nil)
		catalog.EXPECT().List(ctx, season.FeedNow).Return([]season.Candidate{
			{MalID: 900, Genres: []string{"Action"}},
			{MalID: 901, Genres: []string{"Comedy"}},
			{MalID: 1, Genres: []string{"Action", "Romance"}},
		}, nil)

		recs, err := svc.Recommendations(ctx, "u1", season.FeedNow, SeasonRecommendations)
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, 900, recs[0].MalID)
	})

	t.Run("catalog failure", func(t *testing.T) {
		svc, reader, catalog, _ := newTestService(t)
		reader.EXPECT().Entries(ctx, "u1").Return(repeatGenre(1, "Action", 1), nil)
		catalog.EXPECT().List(ctx, season.FeedUpcoming).Return(nil, errors.New("db down"))

		_, err := svc.Recommendations(ctx, "u1", season.FeedUpcoming, DashboardRecommendations)
		assert.Error(t, err)
	})
}

func TestService_ApplyDrop(t *testing.T) {
	ctx := context.Background()

	t.Run("writes a changed tier", func(t *testing.T) {
		svc, reader, _, writer := newTestService(t)
		reader.EXPECT().Entries(ctx, "u1").Return(boardFixture(), nil)
		writer.EXPECT().SetTier(ctx, "u1", "b", library.TierS).Return(library.Entry{ID: "b", Tier: library.TierS}, nil)

		m, changed, err := svc.ApplyDrop(ctx, "u1", DropEvent{SourceID: "b", TargetID: "a"})
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, TierMutation{ID: "b", Tier: library.TierS}, m)
	})

	t.Run("no-op does not write", func(t *testing.T) {
		svc, reader, _, _ := newTestService(t)
		reader.EXPECT().Entries(ctx, "u1").Return(boardFixture(), nil)

		_, changed, err := svc.ApplyDrop(ctx, "u1", DropEvent{SourceID: "b", TargetID: "B"})
		require.NoError(t, err)
		assert.False(t, changed)
	})

	t.Run("ineligible source", func(t *testing.T) {
		svc, reader, _, _ := newTestService(t)
		reader.EXPECT().Entries(ctx, "u1").Return(boardFixture(), nil)

		_, _, err := svc.ApplyDrop(ctx, "u1", DropEvent{SourceID: "p", TargetID: "S"})
		assert.ErrorIs(t, err, library.ErrNotRankable)
	})
}

func TestService_Countdowns(t *testing.T) {
	ctx := context.Background()
	svc, reader, _, _ := newTestService(t)
	svc.now = func() time.Time { return time.Date(2024, 4, 8, 0, 0, 0, 0, time.UTC) }

	reader.EXPECT().Entries(ctx, "u1").Return([]library.Entry{
		{ID: "late", Status: library.StatusWatching, Broadcast: &library.Broadcast{Day: "Fridays", Time: "22:00"}},
		{ID: "done", Status: library.StatusCompleted, Broadcast: &library.Broadcast{Day: "Mondays", Time: "23:00"}},
		{ID: "soon", Status: library.StatusWatching, Broadcast: &library.Broadcast{Day: "Mondays", Time: "23:00"}},
		{ID: "none", Status: library.StatusWatching},
	}, nil)

	items, err := svc.Countdowns(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "soon", items[0].EntryID)
	assert.Equal(t, "late", items[1].EntryID)
}

func TestSummarize(t *testing.T) {
	entries := []library.Entry{
		{Status: library.StatusCompleted, Score: 8, Tier: library.TierA, EpisodesWatched: 12, Genres: []string{"Drama"}},
		{Status: library.StatusWatching, Score: 6, Tier: library.TierUnranked, EpisodesWatched: 3},
		{Status: library.StatusPlanToWatch},
	}
	sum := Summarize(entries)
	assert.Equal(t, 3, sum.TotalEntries)
	assert.Equal(t, 15, sum.TotalEpisodes)
	assert.Equal(t, 7.0, sum.MeanScore)
	assert.Equal(t, 1, sum.ByStatus[library.StatusCompleted])
	assert.Equal(t, 0, sum.ByStatus[library.StatusDropped])
	assert.Equal(t, 1, sum.TieredEntries)
	assert.Equal(t, 9, sum.BadgesTotal)
	assert.Equal(t, 0, sum.BadgesEarned)
	assert.Equal(t, []GenreCount{{Genre: "Drama", Count: 1}}, sum.TopGenres)
}
