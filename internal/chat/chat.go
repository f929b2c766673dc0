// Package chat stores room messages in Postgres and fans new rows out to
// WebSocket subscribers. Inserts notify the chat_messages channel; a single
// Listener per process turns those notifications into hub broadcasts.
package chat

import (
	"errors"
	"strings"
	"time"
)

// NotifyChannel is the Postgres channel inserts are announced on.
const NotifyChannel = "chat_messages"

const (
	DefaultRoom    = "global"
	MaxBodyLength  = 2000
	maxRoomLength  = 64
	defaultListMax = 50
)

var (
	ErrNotFound     = errors.New("chat message not found")
	ErrInvalidInput = errors.New("invalid chat input")
)

type Message struct {
	ID        string    `json:"id"`
	Room      string    `json:"room"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// Event types sent over the socket.
const (
	EventMessage = "message"
	EventJoin    = "user_join"
	EventLeave   = "user_leave"
)

type Event struct {
	Type    string    `json:"type"`
	Room    string    `json:"room"`
	User    string    `json:"user"`
	Message *Message  `json:"message,omitempty"`
	At      time.Time `json:"at"`
}

// NormalizeRoom trims the name and falls back to the global room.
func NormalizeRoom(room string) (string, bool) {
	room = strings.ToLower(strings.TrimSpace(room))
	if room == "" {
		return DefaultRoom, true
	}
	if len(room) > maxRoomLength {
		return "", false
	}
	return room, true
}
