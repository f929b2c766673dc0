package chat

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	defaultHistorySize = 50
	// sendBuffer is the queue a subscriber may fall behind by, on top of the
	// history replayed on join, before it is dropped.
	sendBuffer = 32
	writeWait  = 5 * time.Second
)

// Conn is the write side of a subscriber. *websocket.Conn satisfies it.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

type subscriber struct {
	conn Conn
	user string
	send chan []byte
}

type room struct {
	subs    map[Conn]*subscriber
	history []Message
}

// Hub tracks subscribers per room and keeps a bounded history of the last
// messages each room has seen. Every subscriber has its own writer goroutine
// and the hub only queues frames; a subscriber whose queue is full is dropped.
type Hub struct {
	mu          sync.Mutex
	rooms       map[string]*room
	historySize int
}

func NewHub(historySize int) *Hub {
	if historySize <= 0 {
		historySize = defaultHistorySize
	}
	return &Hub{
		rooms:       make(map[string]*room),
		historySize: historySize,
	}
}

// Seed primes the history of a room that has not seen traffic yet.
func (h *Hub) Seed(name string, msgs []Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r := h.roomLocked(name)
	if len(r.history) > 0 {
		return
	}
	r.history = h.trim(append([]Message(nil), msgs...))
}

// Join subscribes c to the room and queues the room history for it. It
// returns the number of history messages replayed.
func (h *Hub) Join(name string, c Conn, user string) int {
	sub := &subscriber{conn: c, user: user, send: make(chan []byte, h.historySize+sendBuffer)}

	h.mu.Lock()
	r := h.roomLocked(name)
	if old, ok := r.subs[c]; ok {
		h.removeLocked(r, old)
	}
	r.subs[c] = sub
	replayed := 0
	for _, m := range r.history {
		msg := m
		payload, err := json.Marshal(Event{Type: EventMessage, Room: name, User: m.Username, Message: &msg, At: m.CreatedAt})
		if err != nil {
			continue
		}
		sub.send <- payload
		replayed++
	}
	h.mu.Unlock()

	go h.writeLoop(name, sub)

	h.send(Event{Type: EventJoin, Room: name, User: user})
	return replayed
}

func (h *Hub) Leave(name string, c Conn) {
	var user string
	h.mu.Lock()
	if r, ok := h.rooms[name]; ok {
		if sub, ok := r.subs[c]; ok {
			user = sub.user
			h.removeLocked(r, sub)
		}
	}
	h.mu.Unlock()

	_ = c.Close()

	if user != "" {
		h.send(Event{Type: EventLeave, Room: name, User: user})
	}
}

// Publish records m in its room history and delivers it to every subscriber.
func (h *Hub) Publish(m Message) {
	h.mu.Lock()
	r := h.roomLocked(m.Room)
	r.history = h.trim(append(r.history, m))
	h.mu.Unlock()

	msg := m
	h.send(Event{Type: EventMessage, Room: m.Room, User: m.Username, Message: &msg, At: m.CreatedAt})
}

func (h *Hub) History(name string) []Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	if r, ok := h.rooms[name]; ok {
		return append([]Message(nil), r.history...)
	}
	return nil
}

// Subscribers reports how many connections the room has.
func (h *Hub) Subscribers(name string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if r, ok := h.rooms[name]; ok {
		return len(r.subs)
	}
	return 0
}

func (h *Hub) send(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Printf("[chat] marshal event failed type=%s err=%v", ev.Type, err)
		return
	}

	var lagging []Conn
	h.mu.Lock()
	if r, ok := h.rooms[ev.Room]; ok {
		for c, sub := range r.subs {
			select {
			case sub.send <- payload:
			default:
				h.removeLocked(r, sub)
				lagging = append(lagging, c)
			}
		}
	}
	h.mu.Unlock()

	for _, c := range lagging {
		log.Printf("[chat] dropping slow subscriber room=%s", ev.Room)
		_ = c.Close()
	}
}

// writeLoop drains the subscriber queue until the hub closes it or a write
// fails.
func (h *Hub) writeLoop(name string, sub *subscriber) {
	for payload := range sub.send {
		_ = sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := sub.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.mu.Lock()
			if r, ok := h.rooms[name]; ok && r.subs[sub.conn] == sub {
				h.removeLocked(r, sub)
			}
			h.mu.Unlock()
			_ = sub.conn.Close()
			return
		}
	}
}

// removeLocked unsubscribes sub and closes its queue. Callers hold h.mu.
func (h *Hub) removeLocked(r *room, sub *subscriber) {
	delete(r.subs, sub.conn)
	close(sub.send)
}

func (h *Hub) trim(history []Message) []Message {
	if len(history) > h.historySize {
		return history[len(history)-h.historySize:]
	}
	return history
}

func (h *Hub) roomLocked(name string) *room {
	r, ok := h.rooms[name]
	if !ok {
		r = &room{subs: make(map[Conn]*subscriber)}
		h.rooms[name] = r
	}
	return r
}
