package library

import "anitrack/internal/platform/jikan"

// MetadataFromAnime maps a metadata API record onto the catalog fields of an
// entry. Missing fields stay empty and are ignored by ApplyMetadata.
func MetadataFromAnime(a jikan.Anime) Metadata {
	m := Metadata{
		Title:            a.Title,
		ImageURL:         a.ImageURL(),
		TotalEpisodes:    a.EpisodeCount(),
		Genres:           a.GenreNames(),
		Studio:           a.Studio(),
		AiredFrom:        a.AiredFrom(),
		YoutubeTrailerID: a.TrailerID(),
	}
	if day, clock, ok := a.BroadcastSlot(); ok {
		m.Broadcast = &Broadcast{Day: day, Time: clock}
	}
	return m
}

// NewEntryFromAnime builds add input from a metadata API record.
func NewEntryFromAnime(a jikan.Anime, status Status) NewEntry {
	m := MetadataFromAnime(a)
	return NewEntry{
		MalID:            a.MalID,
		Title:            m.Title,
		ImageURL:         m.ImageURL,
		TotalEpisodes:    m.TotalEpisodes,
		Genres:           m.Genres,
		Studio:           m.Studio,
		Broadcast:        m.Broadcast,
		AiredFrom:        m.AiredFrom,
		YoutubeTrailerID: m.YoutubeTrailerID,
		Status:           status,
	}
}
