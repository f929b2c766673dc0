package library

import (
	"context"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// CachedReader keeps a per-user snapshot of the list for the derived views
// (stats, recommendations, badges, countdowns, tier board). Snapshots expire
// after TTL and are dropped on every write through Service.
type CachedReader struct {
	repo Repository
	ttl  time.Duration
	now  func() time.Time

	loads singleflight.Group

	mu      sync.Mutex
	entries map[string]snapshot
	// gen is bumped by Invalidate; a load only stores its result if the
	// generation it started under is still current.
	gen map[string]uint64
}

type snapshot struct {
	entries   []Entry
	fetchedAt time.Time
}

func NewCachedReader(repo Repository, ttl time.Duration) *CachedReader {
	return &CachedReader{
		repo:    repo,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]snapshot),
		gen:     make(map[string]uint64),
	}
}

// Entries returns a copy of the user's list, loading it on a miss.
func (c *CachedReader) Entries(ctx context.Context, userID string) ([]Entry, error) {
	c.mu.Lock()
	snap, ok := c.entries[userID]
	gen := c.gen[userID]
	c.mu.Unlock()
	if ok && (c.ttl <= 0 || c.now().Sub(snap.fetchedAt) < c.ttl) {
		return cloneEntries(snap.entries), nil
	}

	key := userID + "#" + strconv.FormatUint(gen, 10)
	v, err, _ := c.loads.Do(key, func() (any, error) {
		list, err := c.repo.List(ctx, userID)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		if c.gen[userID] == gen {
			c.entries[userID] = snapshot{entries: list, fetchedAt: c.now()}
		}
		c.mu.Unlock()
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return cloneEntries(v.([]Entry)), nil
}

func (c *CachedReader) Invalidate(userID string) {
	c.mu.Lock()
	delete(c.entries, userID)
	c.gen[userID]++
	c.mu.Unlock()
}

func cloneEntries(in []Entry) []Entry {
	out := make([]Entry, len(in))
	for i, e := range in {
		e.Genres = append([]string(nil), e.Genres...)
		if e.Broadcast != nil {
			b := *e.Broadcast
			e.Broadcast = &b
		}
		if e.AiredFrom != nil {
			t := *e.AiredFrom
			e.AiredFrom = &t
		}
		out[i] = e
	}
	return out
}
