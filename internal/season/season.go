package season

import (
	"errors"
	"time"

	"anitrack/internal/library"
)

var ErrNotFound = errors.New("season candidate not found")

// Feed names the catalog a candidate was fetched from.
type Feed string

const (
	FeedNow      Feed = "now"
	FeedUpcoming Feed = "upcoming"
)

func ParseFeed(s string) (Feed, bool) {
	switch Feed(s) {
	case "", FeedNow:
		return FeedNow, true
	case FeedUpcoming:
		return FeedUpcoming, true
	}
	return "", false
}

// Candidate is a catalog title a user can add to their library.
type Candidate struct {
	MalID            int                `json:"mal_id"`
	Title            string             `json:"title"`
	ImageURL         string             `json:"image_url"`
	Genres           []string           `json:"genres"`
	EpisodeCount     int                `json:"episode_count"`
	Feed             Feed               `json:"feed"`
	Season           string             `json:"season,omitempty"`
	Year             int                `json:"year,omitempty"`
	Studio           string             `json:"studio,omitempty"`
	Broadcast        *library.Broadcast `json:"broadcast,omitempty"`
	AiredFrom        *time.Time         `json:"aired_from,omitempty"`
	Score            float64            `json:"score,omitempty"`
	YoutubeTrailerID string             `json:"youtube_trailer_id,omitempty"`
	RefreshedAt      time.Time          `json:"refreshed_at"`
}

// NewEntry converts a catalog pick into library input.
func (c Candidate) NewEntry() library.NewEntry {
	return library.NewEntry{
		MalID:            c.MalID,
		Title:            c.Title,
		ImageURL:         c.ImageURL,
		TotalEpisodes:    c.EpisodeCount,
		Genres:           c.Genres,
		Studio:           c.Studio,
		Broadcast:        c.Broadcast,
		AiredFrom:        c.AiredFrom,
		YoutubeTrailerID: c.YoutubeTrailerID,
	}
}
