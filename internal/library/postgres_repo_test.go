package library

import (
	"context"
	"testing"
	"time"

	"anitrack/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresRepo_Lifecycle(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewPostgresRepo(db, 3*time.Second)
	ctx := context.Background()
	userID := testutil.CreateUser(t, db)

	e := &Entry{
		UserID:        userID,
		MalID:         52991,
		Title:         "Sousou no Frieren",
		TotalEpisodes: 28,
		Status:        StatusWatching,
		Genres:        []string{"Adventure", "Drama", "Fantasy"},
		Tier:          TierUnranked,
		Broadcast:     &Broadcast{Day: "Fridays", Time: "23:00"},
	}
	require.NoError(t, repo.Insert(ctx, e))
	require.NotEmpty(t, e.ID)

	dup := *e
	assert.ErrorIs(t, repo.Insert(ctx, &dup), ErrAlreadyExists)

	got, err := repo.GetByMalID(ctx, userID, 52991)
	require.NoError(t, err)
	assert.Equal(t, e.ID, got.ID)
	assert.Equal(t, []string{"Adventure", "Drama", "Fantasy"}, got.Genres)
	require.NotNil(t, got.Broadcast)
	assert.Equal(t, "Fridays", got.Broadcast.Day)

	now := time.Now().UTC()
	got.EpisodesWatched = 1
	got.Tier = TierS
	h := History{
		Episode: &EpisodeRecord{UserID: userID, EntryID: got.ID, MalID: got.MalID, Title: got.Title, Episode: 1, Previous: 0, WatchedAt: now},
		Tier:    &TierChangeRecord{UserID: userID, EntryID: got.ID, MalID: got.MalID, Title: got.Title, FromTier: TierUnranked, ToTier: TierS, ChangedAt: now},
	}
	require.NoError(t, repo.Update(ctx, &got, h))
	assert.NotEmpty(t, h.Episode.ID)
	assert.NotEmpty(t, h.Tier.ID)

	episodes, err := repo.ListEpisodeHistory(ctx, userID, 10)
	require.NoError(t, err)
	require.Len(t, episodes, 1)
	assert.Equal(t, 1, episodes[0].Episode)

	tiers, err := repo.ListTierHistory(ctx, userID, 10)
	require.NoError(t, err)
	require.Len(t, tiers, 1)
	assert.Equal(t, TierS, tiers[0].ToTier)

	require.NoError(t, repo.Delete(ctx, userID, got.ID))
	_, err = repo.Get(ctx, userID, got.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// history outlives the entry
	episodes, err = repo.ListEpisodeHistory(ctx, userID, 10)
	require.NoError(t, err)
	assert.Len(t, episodes, 1)
}

func TestPostgresRepo_ListScopedToUser(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewPostgresRepo(db, 3*time.Second)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db)
	bob := testutil.CreateUser(t, db)

	require.NoError(t, repo.Insert(ctx, &Entry{UserID: alice, MalID: 1, Title: "Cowboy Bebop", Status: StatusCompleted, Tier: TierUnranked}))
	require.NoError(t, repo.Insert(ctx, &Entry{UserID: bob, MalID: 1, Title: "Cowboy Bebop", Status: StatusPlanToWatch, Tier: TierUnranked}))

	entries, err := repo.List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, StatusCompleted, entries[0].Status)
	assert.NotNil(t, entries[0].Genres)
}
