package library

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachedReader(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	repo := NewMockRepository(ctrl)

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	reader := NewCachedReader(repo, time.Minute)
	reader.now = func() time.Time { return now }

	first := []Entry{{ID: "e1", Genres: []string{"Action"}}}
	second := []Entry{{ID: "e1"}, {ID: "e2"}}

	gomock.InOrder(
		repo.EXPECT().List(ctx, "u1").Return(first, nil),
		repo.EXPECT().List(ctx, "u1").Return(second, nil),
		repo.EXPECT().List(ctx, "u1").Return(second, nil),
	)

	got, err := reader.Entries(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 1)

	// callers get copies
	got[0].Genres[0] = "Mutated"
	got, err = reader.Entries(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Action", got[0].Genres[0])

	reader.Invalidate("u1")
	got, err = reader.Entries(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	now = now.Add(2 * time.Minute)
	got, err = reader.Entries(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestCachedReader_InvalidateDuringLoad(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	repo := NewMockRepository(ctrl)
	reader := NewCachedReader(repo, time.Minute)

	entered := make(chan struct{})
	release := make(chan struct{})
	gomock.InOrder(
		repo.EXPECT().List(gomock.Any(), "u1").DoAndReturn(func(context.Context, string) ([]Entry, error) {
			close(entered)
			<-release
			return []Entry{{ID: "old"}}, nil
		}),
		repo.EXPECT().List(gomock.Any(), "u1").Return([]Entry{{ID: "new"}}, nil),
	)

	type result struct {
		entries []Entry
		err     error
	}
	done := make(chan result, 1)
	go func() {
		got, err := reader.Entries(ctx, "u1")
		done <- result{got, err}
	}()

	<-entered
	reader.Invalidate("u1")
	close(release)

	first := <-done
	require.NoError(t, first.err)
	assert.Equal(t, "old", first.entries[0].ID)

	got, err := reader.Entries(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "new", got[0].ID)
}

func TestCachedReader_CopiesPointerFields(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	repo := NewMockRepository(ctrl)
	reader := NewCachedReader(repo, time.Minute)

	aired := time.Date(2024, 10, 4, 0, 0, 0, 0, time.UTC)
	repo.EXPECT().List(ctx, "u1").Return([]Entry{{
		ID:        "e1",
		Broadcast: &Broadcast{Day: "Fridays", Time: "00:26"},
		AiredFrom: &aired,
	}}, nil)

	got, err := reader.Entries(ctx, "u1")
	require.NoError(t, err)
	got[0].Broadcast.Day = "Mondays"
	*got[0].AiredFrom = aired.AddDate(1, 0, 0)

	got, err = reader.Entries(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Fridays", got[0].Broadcast.Day)
	assert.Equal(t, aired, *got[0].AiredFrom)
}
