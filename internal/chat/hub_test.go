package chat

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu      sync.Mutex
	frames  [][]byte
	closed  bool
	failing bool
}

func (c *fakeConn) WriteMessage(_ int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failing {
		return errors.New("broken pipe")
	}
	c.frames = append(c.frames, data)
	return nil
}

func (c *fakeConn) SetWriteDeadline(time.Time) error { return nil }

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) setFailing() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failing = true
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *fakeConn) frameCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.frames)
}

func (c *fakeConn) events(t *testing.T) []Event {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Event, 0, len(c.frames))
	for _, f := range c.frames {
		var ev Event
		require.NoError(t, json.Unmarshal(f, &ev))
		out = append(out, ev)
	}
	return out
}

func (c *fakeConn) lastEvent() (Event, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var ev Event
	if len(c.frames) == 0 {
		return ev, false
	}
	return ev, json.Unmarshal(c.frames[len(c.frames)-1], &ev) == nil
}

// waitEvents blocks until the connection's writer has flushed n frames.
func (c *fakeConn) waitEvents(t *testing.T, n int) []Event {
	t.Helper()
	require.Eventually(t, func() bool { return c.frameCount() >= n }, time.Second, 5*time.Millisecond)
	return c.events(t)
}

// stalledConn never completes a write until it is closed.
type stalledConn struct {
	once   sync.Once
	closed chan struct{}
}

func newStalledConn() *stalledConn { return &stalledConn{closed: make(chan struct{})} }

func (c *stalledConn) WriteMessage(int, []byte) error {
	<-c.closed
	return errors.New("use of closed connection")
}

func (c *stalledConn) SetWriteDeadline(time.Time) error { return nil }

func (c *stalledConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

func msg(id, room, body string) Message {
	return Message{ID: id, Room: room, Username: "alice", Body: body, CreatedAt: time.Date(2024, 4, 10, 12, 0, 0, 0, time.UTC)}
}

func TestHub_JoinReplaysHistoryAndAnnounces(t *testing.T) {
	h := NewHub(2)
	h.Publish(msg("1", "global", "a"))
	h.Publish(msg("2", "global", "b"))
	h.Publish(msg("3", "global", "c"))

	bob := &fakeConn{}
	replayed := h.Join("global", bob, "bob")
	assert.Equal(t, 2, replayed)

	evs := bob.waitEvents(t, 3)
	require.Len(t, evs, 3)
	assert.Equal(t, "b", evs[0].Message.Body)
	assert.Equal(t, "c", evs[1].Message.Body)
	assert.Equal(t, EventJoin, evs[2].Type)
	assert.Equal(t, "bob", evs[2].User)
}

func TestHub_PublishIsScopedToRoom(t *testing.T) {
	h := NewHub(10)
	a, b := &fakeConn{}, &fakeConn{}
	h.Join("one", a, "a")
	h.Join("two", b, "b")
	b.waitEvents(t, 1)

	h.Publish(msg("1", "one", "hello"))

	evs := a.waitEvents(t, 2)
	require.Len(t, evs, 2)
	assert.Equal(t, EventMessage, evs[1].Type)
	assert.Len(t, b.events(t), 1)
}

func TestHub_DropsBrokenConnections(t *testing.T) {
	h := NewHub(10)
	good, bad := &fakeConn{}, &fakeConn{}
	h.Join("global", good, "good")
	bad.setFailing()
	h.Join("global", bad, "bad")

	h.Publish(msg("1", "global", "hi"))

	require.Eventually(t, bad.isClosed, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return h.Subscribers("global") == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "hi", good.waitEvents(t, 3)[2].Message.Body)
}

func TestHub_StalledSubscriberDoesNotBlockPublish(t *testing.T) {
	h := NewHub(2)
	stuck := newStalledConn()
	t.Cleanup(func() { _ = stuck.Close() })
	h.Join("a", stuck, "stuck")

	other := &fakeConn{}
	h.Join("b", other, "other")

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 2+sendBuffer+5; i++ {
			h.Publish(msg(fmt.Sprint(i), "a", "flood"))
		}
		h.Publish(msg("x", "b", "still here"))
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked behind a stalled subscriber")
	}

	assert.Equal(t, 0, h.Subscribers("a"))
	evs := other.waitEvents(t, 2)
	assert.Equal(t, "still here", evs[1].Message.Body)
}

func TestHub_LeaveAnnounces(t *testing.T) {
	h := NewHub(10)
	a, b := &fakeConn{}, &fakeConn{}
	h.Join("global", a, "a")
	h.Join("global", b, "b")

	h.Leave("global", b)

	assert.True(t, b.isClosed())
	assert.Equal(t, 1, h.Subscribers("global"))
	require.Eventually(t, func() bool {
		last, ok := a.lastEvent()
		return ok && last.Type == EventLeave && last.User == "b"
	}, time.Second, 5*time.Millisecond)
}

func TestHub_RejoinReplacesSubscription(t *testing.T) {
	h := NewHub(10)
	c := &fakeConn{}
	h.Join("global", c, "bob")
	h.Join("global", c, "bob")
	assert.Equal(t, 1, h.Subscribers("global"))
}

func TestHub_SeedOnlyFillsEmptyRooms(t *testing.T) {
	h := NewHub(10)
	h.Seed("global", []Message{msg("1", "global", "old")})
	h.Seed("global", []Message{msg("2", "global", "ignored")})

	hist := h.History("global")
	require.Len(t, hist, 1)
	assert.Equal(t, "old", hist[0].Body)
}
