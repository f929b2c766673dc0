package jikan

import (
	"strings"
	"time"
)

// Fields the API may omit or send as null are pointers or zero-valued
// structs. Callers read them through the normalizers below.

type Entity struct {
	MalID int    `json:"mal_id"`
	Type  string `json:"type"`
	Name  string `json:"name"`
	URL   string `json:"url"`
}

type ImageSet struct {
	ImageURL      string `json:"image_url"`
	SmallImageURL string `json:"small_image_url"`
	LargeImageURL string `json:"large_image_url"`
}

type Images struct {
	JPG  ImageSet `json:"jpg"`
	WebP ImageSet `json:"webp"`
}

type Trailer struct {
	YoutubeID *string `json:"youtube_id"`
	URL       *string `json:"url"`
}

type Aired struct {
	From *time.Time `json:"from"`
	To   *time.Time `json:"to"`
}

type Broadcast struct {
	Day      *string `json:"day"`
	Time     *string `json:"time"`
	Timezone *string `json:"timezone"`
	String   *string `json:"string"`
}

type Anime struct {
	MalID          int       `json:"mal_id"`
	URL            string    `json:"url"`
	Images         Images    `json:"images"`
	Trailer        Trailer   `json:"trailer"`
	Title          string    `json:"title"`
	TitleEnglish   *string   `json:"title_english"`
	Type           *string   `json:"type"`
	Episodes       *int      `json:"episodes"`
	Status         *string   `json:"status"`
	Airing         bool      `json:"airing"`
	Aired          Aired     `json:"aired"`
	Score          *float64  `json:"score"`
	Synopsis       *string   `json:"synopsis"`
	Season         *string   `json:"season"`
	Year           *int      `json:"year"`
	Broadcast      Broadcast `json:"broadcast"`
	Studios        []Entity  `json:"studios"`
	Genres         []Entity  `json:"genres"`
	ExplicitGenres []Entity  `json:"explicit_genres"`
	Themes         []Entity  `json:"themes"`
	Demographics   []Entity  `json:"demographics"`
}

type Pagination struct {
	LastVisiblePage int  `json:"last_visible_page"`
	HasNextPage     bool `json:"has_next_page"`
	CurrentPage     int  `json:"current_page"`
	Items           struct {
		Count   int `json:"count"`
		Total   int `json:"total"`
		PerPage int `json:"per_page"`
	} `json:"items"`
}

type Page struct {
	Data       []Anime    `json:"data"`
	Pagination Pagination `json:"pagination"`
}

type Recommendation struct {
	Entry struct {
		MalID  int    `json:"mal_id"`
		URL    string `json:"url"`
		Images Images `json:"images"`
		Title  string `json:"title"`
	} `json:"entry"`
	Votes int `json:"votes"`
}

type Themes struct {
	Openings []string `json:"openings"`
	Endings  []string `json:"endings"`
}

type Relation struct {
	Relation string   `json:"relation"`
	Entry    []Entity `json:"entry"`
}

type CharacterRole struct {
	Character struct {
		MalID  int    `json:"mal_id"`
		URL    string `json:"url"`
		Images Images `json:"images"`
		Name   string `json:"name"`
	} `json:"character"`
	Role      string `json:"role"`
	Favorites int    `json:"favorites"`
}

type NewsItem struct {
	MalID          int       `json:"mal_id"`
	URL            string    `json:"url"`
	Title          string    `json:"title"`
	Date           time.Time `json:"date"`
	AuthorUsername string    `json:"author_username"`
	Comments       int       `json:"comments"`
	Excerpt        string    `json:"excerpt"`
}

// GenreNames returns the genre names in API order, never nil.
func (a Anime) GenreNames() []string {
	out := make([]string, 0, len(a.Genres))
	for _, g := range a.Genres {
		if g.Name != "" {
			out = append(out, g.Name)
		}
	}
	return out
}

// EpisodeCount is zero while the total is unknown.
func (a Anime) EpisodeCount() int {
	if a.Episodes == nil || *a.Episodes < 0 {
		return 0
	}
	return *a.Episodes
}

func (a Anime) ImageURL() string {
	if a.Images.JPG.LargeImageURL != "" {
		return a.Images.JPG.LargeImageURL
	}
	if a.Images.JPG.ImageURL != "" {
		return a.Images.JPG.ImageURL
	}
	return a.Images.WebP.ImageURL
}

// Studio is the first listed studio.
func (a Anime) Studio() string {
	for _, s := range a.Studios {
		if s.Name != "" {
			return s.Name
		}
	}
	return ""
}

// BroadcastSlot reports the weekly JST slot when both the day and the time
// are published.
func (a Anime) BroadcastSlot() (day, clock string, ok bool) {
	d := strings.TrimSpace(deref(a.Broadcast.Day))
	t := strings.TrimSpace(deref(a.Broadcast.Time))
	if d == "" || t == "" {
		return "", "", false
	}
	return d, t, true
}

func (a Anime) AiredFrom() *time.Time {
	if a.Aired.From == nil || a.Aired.From.IsZero() {
		return nil
	}
	t := a.Aired.From.UTC()
	return &t
}

func (a Anime) TrailerID() string {
	return deref(a.Trailer.YoutubeID)
}

func (a Anime) ScoreValue() float64 {
	if a.Score == nil {
		return 0
	}
	return *a.Score
}

func (a Anime) SeasonName() string {
	return deref(a.Season)
}

func (a Anime) YearValue() int {
	if a.Year == nil {
		return 0
	}
	return *a.Year
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
