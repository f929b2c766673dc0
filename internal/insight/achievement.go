package insight

import (
	"unicode/utf8"

	"anitrack/internal/library"
)

// deepNoteLength is the note length a note must exceed to count as deep.
const deepNoteLength = 10

// Stats are the aggregates the badge table is evaluated against.
type Stats struct {
	TotalEpisodes int            `json:"total_episodes"`
	Completed     int            `json:"completed"`
	DeepNotes     int            `json:"deep_notes"`
	Rewatches     int            `json:"rewatches"`
	Genres        map[string]int `json:"genres"`
}

func Aggregate(entries []library.Entry) Stats {
	s := Stats{Genres: genreMap(entries)}
	for _, e := range entries {
		s.TotalEpisodes += max(e.EpisodesWatched, 0)
		if e.Status == library.StatusCompleted {
			s.Completed++
		}
		if utf8.RuneCountInString(e.Notes) > deepNoteLength {
			s.DeepNotes++
		}
		s.Rewatches += max(e.RewatchCount, 0)
	}
	return s
}

type Badge struct {
	ID          string
	Name        string
	Description string
	Unlocked    func(Stats) bool
}

type BadgeResult struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Unlocked    bool   `json:"unlocked"`
}

// Badges is the fixed achievement table. Every threshold is strictly greater
// than.
var Badges = []Badge{
	{
		ID: "episodes_100", Name: "Binge Starter", Description: "Watch more than 100 episodes",
		Unlocked: func(s Stats) bool { return s.TotalEpisodes > 100 },
	},
	{
		ID: "episodes_500", Name: "Marathoner", Description: "Watch more than 500 episodes",
		Unlocked: func(s Stats) bool { return s.TotalEpisodes > 500 },
	},
	{
		ID: "episodes_1000", Name: "No Life", Description: "Watch more than 1000 episodes",
		Unlocked: func(s Stats) bool { return s.TotalEpisodes > 1000 },
	},
	{
		ID: "completed_10", Name: "Finisher", Description: "Complete more than 10 anime",
		Unlocked: func(s Stats) bool { return s.Completed > 10 },
	},
	{
		ID: "completed_50", Name: "Completionist", Description: "Complete more than 50 anime",
		Unlocked: func(s Stats) bool { return s.Completed > 50 },
	},
	{
		ID: "deep_thinker", Name: "Deep Thinker", Description: "Write more than 5 detailed notes",
		Unlocked: func(s Stats) bool { return s.DeepNotes > 5 },
	},
	{
		ID: "nostalgic", Name: "Nostalgic", Description: "Rewatch anime more than 3 times",
		Unlocked: func(s Stats) bool { return s.Rewatches > 3 },
	},
	{
		ID: "action_junkie", Name: "Action Junkie", Description: "Track more than 10 Action titles",
		Unlocked: func(s Stats) bool { return s.Genres["Action"] > 10 },
	},
	{
		ID: "hopeless_romantic", Name: "Hopeless Romantic", Description: "Track more than 5 Romance titles",
		Unlocked: func(s Stats) bool { return s.Genres["Romance"] > 5 },
	},
}

// Evaluate returns one result per badge, in table order.
func Evaluate(entries []library.Entry) []BadgeResult {
	return EvaluateStats(Aggregate(entries))
}

func EvaluateStats(s Stats) []BadgeResult {
	out := make([]BadgeResult, len(Badges))
	for i, b := range Badges {
		out[i] = BadgeResult{ID: b.ID, Name: b.Name, Description: b.Description, Unlocked: b.Unlocked(s)}
	}
	return out
}
