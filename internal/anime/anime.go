// Package anime serves browse endpoints that read straight through to the
// metadata API. Nothing here is persisted.
package anime

import (
	"errors"
	"strings"
)

var ErrUnknownResource = errors.New("unknown anime resource")

// Resource names a sub-document of an anime.
type Resource string

const (
	ResourceRecommendations Resource = "recommendations"
	ResourceThemes          Resource = "themes"
	ResourceRelations       Resource = "relations"
	ResourceCharacters      Resource = "characters"
	ResourceNews            Resource = "news"
)

var Resources = []Resource{ResourceRecommendations, ResourceThemes, ResourceRelations, ResourceCharacters, ResourceNews}

func ParseResource(s string) (Resource, error) {
	r := Resource(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Resources {
		if r == known {
			return r, nil
		}
	}
	return "", ErrUnknownResource
}

var scheduleDays = map[string]bool{
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
	"friday": true, "saturday": true, "sunday": true,
	"unknown": true, "other": true,
}

// ValidScheduleDay reports whether day is accepted by the schedules filter.
// The empty day means the whole week.
func ValidScheduleDay(day string) bool {
	return day == "" || scheduleDays[day]
}

// Summary is the compact card shown in search results and schedules.
type Summary struct {
	MalID        int      `json:"mal_id"`
	Title        string   `json:"title"`
	ImageURL     string   `json:"image_url"`
	Genres       []string `json:"genres"`
	EpisodeCount int      `json:"episode_count"`
	Studio       string   `json:"studio,omitempty"`
	Score        float64  `json:"score,omitempty"`
	Season       string   `json:"season,omitempty"`
	Year         int      `json:"year,omitempty"`
	BroadcastDay string   `json:"broadcast_day,omitempty"`
	BroadcastAt  string   `json:"broadcast_time,omitempty"`
}
