package chat

import "context"

//go:generate mockgen -source=ports.go -destination=mock_repository.go -package=chat

type Repository interface {
	// Insert stores m, fills ID and CreatedAt and notifies NotifyChannel.
	Insert(ctx context.Context, m *Message) error
	Get(ctx context.Context, id string) (Message, error)
	// ListRecent returns the newest limit messages of room, oldest first.
	ListRecent(ctx context.Context, room string, limit int) ([]Message, error)
}
