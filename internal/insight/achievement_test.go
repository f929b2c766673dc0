package insight

import (
	"strings"
	"testing"

	"anitrack/internal/library"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unlocked(results []BadgeResult) map[string]bool {
	m := make(map[string]bool, len(results))
	for _, r := range results {
		m[r.ID] = r.Unlocked
	}
	return m
}

func TestEvaluate_TableShape(t *testing.T) {
	results := Evaluate(nil)
	require.Len(t, results, 9)
	for _, r := range results {
		assert.False(t, r.Unlocked, r.ID)
		assert.NotEmpty(t, r.Name)
	}
}

func TestEvaluate_EpisodeBoundaries(t *testing.T) {
	tests := []struct {
		watched []int
		want    map[string]bool
	}{
		{watched: []int{100}, want: map[string]bool{"episodes_100": false}},
		{watched: []int{60, 41}, want: map[string]bool{"episodes_100": true, "episodes_500": false}},
		{watched: []int{250, 250}, want: map[string]bool{"episodes_500": false}},
		{watched: []int{250, 251}, want: map[string]bool{"episodes_500": true, "episodes_1000": false}},
		{watched: []int{1001}, want: map[string]bool{"episodes_1000": true}},
	}

	for _, tt := range tests {
		entries := make([]library.Entry, len(tt.watched))
		for i, w := range tt.watched {
			entries[i] = library.Entry{EpisodesWatched: w, Status: library.StatusWatching}
		}
		got := unlocked(Evaluate(entries))
		for id, want := range tt.want {
			assert.Equal(t, want, got[id], "%s with %v", id, tt.watched)
		}
	}
}

func TestEvaluate_Counters(t *testing.T) {
	var entries []library.Entry
	for i := 0; i < 11; i++ {
		entries = append(entries, library.Entry{Status: library.StatusCompleted, Genres: []string{"Action"}})
	}
	for i := 0; i < 6; i++ {
		entries = append(entries, library.Entry{Status: library.StatusWatching, Notes: strings.Repeat("x", 11), Genres: []string{"Romance"}})
	}
	entries = append(entries,
		library.Entry{Status: library.StatusWatching, Notes: "ten chars!"},
		library.Entry{Status: library.StatusCompleted, RewatchCount: 2},
		library.Entry{Status: library.StatusDropped, RewatchCount: 2},
	)

	stats := Aggregate(entries)
	assert.Equal(t, 12, stats.Completed)
	assert.Equal(t, 6, stats.DeepNotes)
	assert.Equal(t, 4, stats.Rewatches)
	assert.Equal(t, 11, stats.Genres["Action"])

	got := unlocked(Evaluate(entries))
	assert.True(t, got["completed_10"])
	assert.False(t, got["completed_50"])
	assert.True(t, got["deep_thinker"])
	assert.True(t, got["nostalgic"])
	assert.True(t, got["action_junkie"])
	assert.True(t, got["hopeless_romantic"])
}

func TestEvaluate_GenreThresholdsAreStrict(t *testing.T) {
	entries := append(repeatGenre(10, "Action", 1), repeatGenre(5, "Romance", 100)...)
	got := unlocked(Evaluate(entries))
	assert.False(t, got["action_junkie"])
	assert.False(t, got["hopeless_romantic"])
}
