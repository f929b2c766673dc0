package chat

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *MockRepository, *Hub) {
	t.Helper()
	ctrl := gomock.NewController(t)
	repo := NewMockRepository(ctrl)
	hub := NewHub(10)
	return NewService(repo, hub), repo, hub
}

func TestService_Post(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults the room", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		repo.EXPECT().Insert(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, m *Message) error {
			m.ID = "m1"
			return nil
		})

		m, err := svc.Post(ctx, "u1", "alice", "  ", "  hello  ")
		require.NoError(t, err)
		assert.Equal(t, "m1", m.ID)
		assert.Equal(t, DefaultRoom, m.Room)
		assert.Equal(t, "hello", m.Body)
	})

	t.Run("rejects empty and oversized bodies", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		_, err := svc.Post(ctx, "u1", "alice", "global", "   ")
		assert.ErrorIs(t, err, ErrInvalidInput)

		_, err = svc.Post(ctx, "u1", "alice", "global", strings.Repeat("あ", MaxBodyLength+1))
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestService_Recent(t *testing.T) {
	ctx := context.Background()
	svc, repo, hub := newTestService(t)

	repo.EXPECT().ListRecent(ctx, "global", 2).Return([]Message{msg("1", "global", "a"), msg("2", "global", "b")}, nil)

	got, err := svc.Recent(ctx, "global", 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Len(t, hub.History("global"), 2)

	// warm history is served without a query
	got, err = svc.Recent(ctx, "global", 2)
	require.NoError(t, err)
	assert.Equal(t, "b", got[1].Body)
}

func TestService_Deliver(t *testing.T) {
	ctx := context.Background()
	svc, repo, hub := newTestService(t)
	c := &fakeConn{}
	hub.Join("global", c, "bob")

	repo.EXPECT().Get(ctx, "m1").Return(msg("m1", "global", "hi"), nil)
	require.NoError(t, svc.Deliver(ctx, "m1"))

	require.Eventually(t, func() bool {
		last, ok := c.lastEvent()
		return ok && last.Message != nil && last.Message.Body == "hi"
	}, time.Second, 5*time.Millisecond)

	repo.EXPECT().Get(ctx, "gone").Return(Message{}, ErrNotFound)
	assert.ErrorIs(t, svc.Deliver(ctx, "gone"), ErrNotFound)
}
