// Package listsync moves list data between the library and outside services:
// metadata repair from Jikan, and push/import against MyAnimeList.
package listsync

import (
	"errors"

	"anitrack/internal/library"
	"anitrack/internal/platform/mal"
)

var (
	ErrNotLinked     = errors.New("myanimelist account is not linked")
	ErrInvalidState  = errors.New("unknown or expired oauth state")
	ErrNotConfigured = errors.New("myanimelist client is not configured")
)

// ToListStatus maps an entry onto the MAL my_list_status form.
func ToListStatus(e library.Entry) mal.ListStatus {
	return mal.ListStatus{
		Status:             string(e.Status),
		Score:              e.Score,
		NumEpisodesWatched: e.EpisodesWatched,
		NumTimesRewatched:  e.RewatchCount,
	}
}

// FromListItem converts an authenticated list row into library input.
func FromListItem(it mal.ListItem) library.NewEntry {
	genres := make([]string, 0, len(it.Node.Genres))
	for _, g := range it.Node.Genres {
		genres = append(genres, g.Name)
	}
	image := it.Node.MainPicture.Large
	if image == "" {
		image = it.Node.MainPicture.Medium
	}
	return library.NewEntry{
		MalID:           it.Node.ID,
		Title:           it.Node.Title,
		ImageURL:        image,
		TotalEpisodes:   it.Node.NumEpisodes,
		Genres:          genres,
		Status:          statusOf(it.ListStatus.Status),
		EpisodesWatched: it.ListStatus.NumEpisodesWatched,
		Score:           clampScore(it.ListStatus.Score),
	}
}

// FromExportItem converts a legacy export row into library input. The export
// carries no genres; a later repair fills them in.
func FromExportItem(it mal.ExportItem) library.NewEntry {
	return library.NewEntry{
		MalID:           it.AnimeID,
		Title:           it.Title(),
		ImageURL:        it.AnimeImagePath,
		TotalEpisodes:   it.AnimeNumEpisodes,
		Status:          statusOf(it.ListStatus()),
		EpisodesWatched: it.NumWatchedEpisodes,
		Score:           clampScore(it.Score),
	}
}

func statusOf(s string) library.Status {
	st, err := library.ParseStatus(s)
	if err != nil {
		return library.StatusPlanToWatch
	}
	return st
}

func clampScore(s int) int {
	return min(max(s, 0), 10)
}
