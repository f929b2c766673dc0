// Package insight derives read-only views from a user's library: genre DNA,
// season recommendations, achievement badges, episode countdowns and the tier
// board. The functions in this package are pure; Service wires them to the
// library reader and the season catalog.
package insight

import (
	"sort"

	"anitrack/internal/library"
)

// Call-site sizes for TopGenres.
const (
	TopGenresForRecommendations = 3
	TopGenresForProfile         = 5
	TopGenresForStats           = 10
)

type GenreCount struct {
	Genre string `json:"genre"`
	Count int    `json:"count"`
}

// GenreCounts counts every genre across entries, most frequent first. Ties keep
// the order in which genres were first seen.
func GenreCounts(entries []library.Entry) []GenreCount {
	counts := []GenreCount{}
	index := make(map[string]int)
	for _, e := range entries {
		for _, g := range e.Genres {
			if g == "" {
				continue
			}
			if i, ok := index[g]; ok {
				counts[i].Count++
				continue
			}
			index[g] = len(counts)
			counts = append(counts, GenreCount{Genre: g, Count: 1})
		}
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	return counts
}

// TopGenres is GenreCounts truncated to n.
func TopGenres(entries []library.Entry, n int) []GenreCount {
	counts := GenreCounts(entries)
	if n >= 0 && len(counts) > n {
		counts = counts[:n]
	}
	return counts
}

func GenreNames(counts []GenreCount) []string {
	names := make([]string, len(counts))
	for i, c := range counts {
		names[i] = c.Genre
	}
	return names
}

func genreMap(entries []library.Entry) map[string]int {
	m := make(map[string]int)
	for _, c := range GenreCounts(entries) {
		m[c.Genre] = c.Count
	}
	return m
}
