package chat

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"
)

type Service struct {
	repo Repository
	hub  *Hub
}

func NewService(repo Repository, hub *Hub) *Service {
	return &Service{repo: repo, hub: hub}
}

// Post stores a message. Delivery to subscribers happens through the
// Listener once the insert commits.
func (s *Service) Post(ctx context.Context, userID, username, roomName, body string) (Message, error) {
	roomName, ok := NormalizeRoom(roomName)
	if !ok {
		return Message{}, fmt.Errorf("%w: room name too long", ErrInvalidInput)
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return Message{}, fmt.Errorf("%w: body is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(body) > MaxBodyLength {
		return Message{}, fmt.Errorf("%w: body exceeds %d characters", ErrInvalidInput, MaxBodyLength)
	}

	m := Message{Room: roomName, UserID: userID, Username: username, Body: body}
	if err := s.repo.Insert(ctx, &m); err != nil {
		return Message{}, err
	}
	return m, nil
}

// Recent serves the hub history when it is warm and the database otherwise.
func (s *Service) Recent(ctx context.Context, roomName string, limit int) ([]Message, error) {
	roomName, ok := NormalizeRoom(roomName)
	if !ok {
		return nil, fmt.Errorf("%w: room name too long", ErrInvalidInput)
	}
	if limit <= 0 || limit > defaultListMax {
		limit = defaultListMax
	}
	if h := s.hub.History(roomName); len(h) >= limit {
		return h[len(h)-limit:], nil
	}
	msgs, err := s.repo.ListRecent(ctx, roomName, limit)
	if err != nil {
		return nil, err
	}
	s.hub.Seed(roomName, msgs)
	return msgs, nil
}

// Deliver loads a notified message and publishes it to the hub.
func (s *Service) Deliver(ctx context.Context, id string) error {
	m, err := s.repo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("load message %s: %w", id, err)
	}
	s.hub.Publish(m)
	return nil
}
