package insight

import (
	"errors"

	"anitrack/internal/library"
)

var ErrUnknownTarget = errors.New("drop target not found")

// DropEvent is a board interaction: SourceID is the dragged entry, TargetID is
// either a tier row ("S".."D", "Unranked") or another entry on the board.
type DropEvent struct {
	SourceID string `json:"source_id" validate:"required"`
	TargetID string `json:"target_id" validate:"required"`
}

// TierMutation is the write a drop resolves to.
type TierMutation struct {
	ID   string       `json:"id"`
	Tier library.Tier `json:"tier"`
}

type TierRow struct {
	Tier    library.Tier    `json:"tier"`
	Entries []library.Entry `json:"entries"`
}

// Rankable filters entries down to the ones allowed on the board.
func Rankable(entries []library.Entry) []library.Entry {
	out := make([]library.Entry, 0, len(entries))
	for _, e := range entries {
		if e.Rankable() {
			out = append(out, e)
		}
	}
	return out
}

// BuildTierBoard groups rankable entries into rows from S down to Unranked.
// Order within a row is the input order.
func BuildTierBoard(entries []library.Entry) []TierRow {
	rows := make([]TierRow, len(library.Tiers))
	index := make(map[library.Tier]int, len(library.Tiers))
	for i, t := range library.Tiers {
		rows[i] = TierRow{Tier: t, Entries: []library.Entry{}}
		index[t] = i
	}
	for _, e := range Rankable(entries) {
		i, ok := index[e.Tier]
		if !ok {
			i = index[library.TierUnranked]
		}
		rows[i].Entries = append(rows[i].Entries, e)
	}
	return rows
}

// ReduceDrop resolves ev against the board. It reports false when the entry
// already sits in the target tier.
func ReduceDrop(rankable []library.Entry, ev DropEvent) (TierMutation, bool, error) {
	var (
		source      library.Entry
		foundSource bool
	)
	for _, e := range rankable {
		if e.ID == ev.SourceID {
			source, foundSource = e, true
			break
		}
	}
	if !foundSource || !source.Rankable() {
		return TierMutation{}, false, library.ErrNotRankable
	}

	target, ok := resolveTarget(rankable, ev.TargetID)
	if !ok {
		return TierMutation{}, false, ErrUnknownTarget
	}

	current := source.Tier
	if current == "" {
		current = library.TierUnranked
	}
	if current == target {
		return TierMutation{}, false, nil
	}
	return TierMutation{ID: source.ID, Tier: target}, true, nil
}

// resolveTarget prefers entry ids; a tier row matches only on its exact name.
func resolveTarget(rankable []library.Entry, targetID string) (library.Tier, bool) {
	for _, e := range rankable {
		if e.ID != targetID || !e.Rankable() {
			continue
		}
		if e.Tier == "" {
			return library.TierUnranked, true
		}
		return e.Tier, true
	}
	for _, t := range library.Tiers {
		if string(t) == targetID {
			return t, true
		}
	}
	return "", false
}
