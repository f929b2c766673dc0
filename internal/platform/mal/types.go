package mal

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// List status values of the v2 API.
const (
	StatusWatching    = "watching"
	StatusCompleted   = "completed"
	StatusOnHold      = "on_hold"
	StatusDropped     = "dropped"
	StatusPlanToWatch = "plan_to_watch"
)

type Token struct {
	TokenType    string    `json:"token_type"`
	ExpiresIn    int       `json:"expires_in"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"-"`
}

// Expired reports whether the token is past, or within skew of, its expiry.
func (t Token) Expired(now time.Time, skew time.Duration) bool {
	return !t.ExpiresAt.IsZero() && !now.Add(skew).Before(t.ExpiresAt)
}

type Picture struct {
	Medium string `json:"medium"`
	Large  string `json:"large"`
}

type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Node struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	MainPicture Picture `json:"main_picture"`
	NumEpisodes int     `json:"num_episodes"`
	Genres      []Genre `json:"genres"`
}

type ListStatus struct {
	Status             string    `json:"status"`
	Score              int       `json:"score"`
	NumEpisodesWatched int       `json:"num_episodes_watched"`
	IsRewatching       bool      `json:"is_rewatching"`
	NumTimesRewatched  int       `json:"num_times_rewatched"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type ListItem struct {
	Node       Node       `json:"node"`
	ListStatus ListStatus `json:"list_status"`
}

type listPage struct {
	Data   []ListItem `json:"data"`
	Paging struct {
		Next string `json:"next"`
	} `json:"paging"`
}

// ExportItem is one row of the legacy public list export.
type ExportItem struct {
	AnimeID            int        `json:"anime_id"`
	AnimeTitle         flexString `json:"anime_title"`
	Status             int        `json:"status"`
	Score              int        `json:"score"`
	NumWatchedEpisodes int        `json:"num_watched_episodes"`
	AnimeNumEpisodes   int        `json:"anime_num_episodes"`
	AnimeImagePath     string     `json:"anime_image_path"`
}

// ListStatus maps the numeric export status onto the v2 names. Unknown codes
// fall back to plan_to_watch.
func (e ExportItem) ListStatus() string {
	switch e.Status {
	case 1:
		return StatusWatching
	case 2:
		return StatusCompleted
	case 3:
		return StatusOnHold
	case 4:
		return StatusDropped
	}
	return StatusPlanToWatch
}

func (e ExportItem) Title() string {
	return string(e.AnimeTitle)
}

// flexString accepts a JSON string or number. The export sends purely
// numeric titles unquoted.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	if _, err := strconv.ParseFloat(n.String(), 64); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}
