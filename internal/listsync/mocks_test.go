package listsync

import (
	"context"

	"anitrack/internal/library"
	"anitrack/internal/platform/jikan"
	"anitrack/internal/platform/mal"
	"anitrack/internal/syncrun"

	"github.com/stretchr/testify/mock"
)

type mockLibrary struct {
	mock.Mock
}

func (m *mockLibrary) List(ctx context.Context, userID string) ([]library.Entry, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]library.Entry), args.Error(1)
}

func (m *mockLibrary) Add(ctx context.Context, userID string, in library.NewEntry) (library.Entry, error) {
	args := m.Called(ctx, userID, in)
	return args.Get(0).(library.Entry), args.Error(1)
}

func (m *mockLibrary) ApplyMetadata(ctx context.Context, userID, id string, md library.Metadata) (library.Entry, error) {
	args := m.Called(ctx, userID, id, md)
	return args.Get(0).(library.Entry), args.Error(1)
}

type mockMeta struct {
	mock.Mock
}

func (m *mockMeta) GetAnime(ctx context.Context, malID int) (jikan.Anime, error) {
	args := m.Called(ctx, malID)
	return args.Get(0).(jikan.Anime), args.Error(1)
}

type mockMAL struct {
	mock.Mock
}

func (m *mockMAL) Configured() bool {
	return m.Called().Bool(0)
}

func (m *mockMAL) AuthorizeURL(state, verifier string) string {
	return m.Called(state, verifier).String(0)
}

func (m *mockMAL) ExchangeCode(ctx context.Context, code, verifier string) (mal.Token, error) {
	args := m.Called(ctx, code, verifier)
	return args.Get(0).(mal.Token), args.Error(1)
}

func (m *mockMAL) Refresh(ctx context.Context, refreshToken string) (mal.Token, error) {
	args := m.Called(ctx, refreshToken)
	return args.Get(0).(mal.Token), args.Error(1)
}

func (m *mockMAL) ListAnime(ctx context.Context, accessToken string) ([]mal.ListItem, error) {
	args := m.Called(ctx, accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]mal.ListItem), args.Error(1)
}

func (m *mockMAL) UpdateListStatus(ctx context.Context, accessToken string, malID int, s mal.ListStatus) (mal.ListStatus, error) {
	args := m.Called(ctx, accessToken, malID, s)
	return args.Get(0).(mal.ListStatus), args.Error(1)
}

func (m *mockMAL) ExportList(ctx context.Context, username string) ([]mal.ExportItem, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]mal.ExportItem), args.Error(1)
}

type mockTokens struct {
	mock.Mock
}

func (m *mockTokens) Get(ctx context.Context, userID string) (mal.Token, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(mal.Token), args.Error(1)
}

func (m *mockTokens) Upsert(ctx context.Context, userID string, t mal.Token) error {
	return m.Called(ctx, userID, t).Error(0)
}

func (m *mockTokens) Delete(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

type mockRuns struct {
	mock.Mock
}

func (m *mockRuns) CreateRun(ctx context.Context, run *syncrun.Run) (string, error) {
	args := m.Called(ctx, run)
	return args.String(0), args.Error(1)
}

func (m *mockRuns) UpdateRun(ctx context.Context, run *syncrun.Run) error {
	return m.Called(ctx, run).Error(0)
}

func (m *mockRuns) ListRuns(ctx context.Context, userID string, limit int) ([]syncrun.Run, error) {
	args := m.Called(ctx, userID, limit)
	return args.Get(0).([]syncrun.Run), args.Error(1)
}
