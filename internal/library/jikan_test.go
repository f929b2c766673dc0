package library

import (
	"testing"

	"anitrack/internal/platform/jikan"

	"github.com/stretchr/testify/assert"
)

func TestNewEntryFromAnime(t *testing.T) {
	eps := 12
	day, clock := "Sundays", "17:00"
	a := jikan.Anime{
		MalID:     99,
		Title:     "Mob Psycho 100",
		Episodes:  &eps,
		Broadcast: jikan.Broadcast{Day: &day, Time: &clock},
		Genres:    []jikan.Entity{{Name: "Action"}, {Name: "Comedy"}},
		Studios:   []jikan.Entity{{Name: "Bones"}},
	}

	in := NewEntryFromAnime(a, StatusWatching)
	assert.Equal(t, 99, in.MalID)
	assert.Equal(t, 12, in.TotalEpisodes)
	assert.Equal(t, []string{"Action", "Comedy"}, in.Genres)
	assert.Equal(t, &Broadcast{Day: "Sundays", Time: "17:00"}, in.Broadcast)
	assert.Equal(t, "Bones", in.Studio)
	assert.Equal(t, StatusWatching, in.Status)

	m := MetadataFromAnime(jikan.Anime{MalID: 1})
	assert.Nil(t, m.Broadcast)
	assert.Equal(t, 0, m.TotalEpisodes)
}
