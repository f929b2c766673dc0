package insight

import (
	"math"
	"sort"

	"anitrack/internal/library"
	"anitrack/internal/season"
)

// Display sizes for Recommend.
const (
	DashboardRecommendations = 4
	SeasonRecommendations    = 6
)

// minMatchScore is exclusive.
const minMatchScore = 30

type Recommendation struct {
	season.Candidate
	MatchScore int `json:"match_score"`
}

// Recommend scores candidates by the share of topGenres they carry. Titles
// already in the library are skipped, as are repeated malIds. Results above
// the minimum score are returned best first, ties in input order, capped at
// limit when limit > 0.
func Recommend(candidates []season.Candidate, topGenres []string, lib []library.Entry, limit int) []Recommendation {
	out := []Recommendation{}

	top := make(map[string]bool, len(topGenres))
	for _, g := range topGenres {
		top[g] = true
	}
	if len(top) == 0 {
		return out
	}

	seen := make(map[int]bool, len(lib)+len(candidates))
	for _, e := range lib {
		seen[e.MalID] = true
	}

	for _, c := range candidates {
		if seen[c.MalID] {
			continue
		}
		seen[c.MalID] = true

		score := matchScore(c.Genres, top)
		if score <= minMatchScore {
			continue
		}
		out = append(out, Recommendation{Candidate: c, MatchScore: score})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MatchScore > out[j].MatchScore
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func matchScore(genres []string, top map[string]bool) int {
	matched := make(map[string]bool, len(genres))
	for _, g := range genres {
		if top[g] {
			matched[g] = true
		}
	}
	return int(math.Round(100 * float64(len(matched)) / float64(len(top))))
}
