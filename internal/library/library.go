package library

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNotFound      = errors.New("library entry not found")
	ErrAlreadyExists = errors.New("anime already in library")
	ErrNotRankable   = errors.New("entry cannot be ranked in its current status")
	ErrInvalidInput  = errors.New("invalid library input")
)

type Status string

const (
	StatusWatching    Status = "watching"
	StatusCompleted   Status = "completed"
	StatusOnHold      Status = "on_hold"
	StatusDropped     Status = "dropped"
	StatusPlanToWatch Status = "plan_to_watch"
)

var Statuses = []Status{StatusWatching, StatusCompleted, StatusOnHold, StatusDropped, StatusPlanToWatch}

func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Statuses {
		if st == known {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: unknown status %q", ErrInvalidInput, s)
}

type Tier string

const (
	TierS        Tier = "S"
	TierA        Tier = "A"
	TierB        Tier = "B"
	TierC        Tier = "C"
	TierD        Tier = "D"
	TierUnranked Tier = "Unranked"
)

// Tiers lists the tier rows from highest to lowest.
var Tiers = []Tier{TierS, TierA, TierB, TierC, TierD, TierUnranked}

func ParseTier(s string) (Tier, bool) {
	for _, t := range Tiers {
		if strings.EqualFold(s, string(t)) {
			return t, true
		}
	}
	return "", false
}

// Broadcast is the weekly airing slot as published by the metadata API, in
// Japan Standard Time. Day is a weekday name, optionally plural ("Mondays").
type Broadcast struct {
	Day  string `json:"day"`
	Time string `json:"time"`
}

// Entry is one tracked anime in a user's list.
type Entry struct {
	ID               string     `json:"id"`
	UserID           string     `json:"-"`
	MalID            int        `json:"mal_id"`
	Title            string     `json:"title"`
	ImageURL         string     `json:"image_url,omitempty"`
	TotalEpisodes    int        `json:"total_episodes"`
	EpisodesWatched  int        `json:"episodes_watched"`
	Status           Status     `json:"status"`
	Score            int        `json:"score"`
	Genres           []string   `json:"genres"`
	Tier             Tier       `json:"tier"`
	RewatchCount     int        `json:"rewatch_count"`
	Notes            string     `json:"notes,omitempty"`
	Studio           string     `json:"studio,omitempty"`
	Broadcast        *Broadcast `json:"broadcast,omitempty"`
	AiredFrom        *time.Time `json:"aired_from,omitempty"`
	YoutubeTrailerID string     `json:"youtube_trailer_id,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// Rankable reports whether the entry takes part in the tier board.
func (e Entry) Rankable() bool {
	return e.Status != StatusPlanToWatch && e.Status != StatusDropped
}

// NeedsMetadata reports whether the entry is missing fields the metadata API
// can fill in.
func (e Entry) NeedsMetadata() bool {
	return len(e.Genres) == 0 || e.Studio == "" || e.ImageURL == "" || e.TotalEpisodes == 0 || e.Broadcast == nil
}

// NewEntry is the input for adding an anime, from a search result or a
// season catalog pick.
type NewEntry struct {
	MalID            int
	Title            string
	ImageURL         string
	TotalEpisodes    int
	Genres           []string
	Studio           string
	Broadcast        *Broadcast
	AiredFrom        *time.Time
	YoutubeTrailerID string
	Status           Status
	// Progress carried over from an import; zero for a fresh add.
	EpisodesWatched int
	Score           int
}

// Patch carries the user-editable fields; nil means unchanged.
type Patch struct {
	EpisodesWatched *int
	Status          *Status
	Score           *int
	Notes           *string
	Tier            *Tier
	RewatchCount    *int
}

// Metadata is catalog data refreshed by the repair job. Empty values leave the
// stored field untouched.
type Metadata struct {
	Title            string
	ImageURL         string
	TotalEpisodes    int
	Genres           []string
	Studio           string
	Broadcast        *Broadcast
	AiredFrom        *time.Time
	YoutubeTrailerID string
}

// EpisodeRecord is appended whenever episodes_watched increases.
type EpisodeRecord struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	EntryID   string    `json:"entry_id"`
	MalID     int       `json:"mal_id"`
	Title     string    `json:"title"`
	Episode   int       `json:"episode"`
	Previous  int       `json:"previous"`
	WatchedAt time.Time `json:"watched_at"`
}

// TierChangeRecord is appended whenever an entry moves between tiers.
type TierChangeRecord struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	EntryID   string    `json:"entry_id"`
	MalID     int       `json:"mal_id"`
	Title     string    `json:"title"`
	FromTier  Tier      `json:"from_tier"`
	ToTier    Tier      `json:"to_tier"`
	ChangedAt time.Time `json:"changed_at"`
}

// History holds the audit records produced by a single mutation. Either field
// may be nil.
type History struct {
	Episode *EpisodeRecord
	Tier    *TierChangeRecord
}
