package insight

import (
	"testing"

	"anitrack/internal/library"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boardFixture() []library.Entry {
	return []library.Entry{
		{ID: "a", Status: library.StatusCompleted, Tier: library.TierS},
		{ID: "b", Status: library.StatusWatching, Tier: library.TierB},
		{ID: "c", Status: library.StatusOnHold, Tier: library.TierUnranked},
		{ID: "p", Status: library.StatusPlanToWatch, Tier: library.TierUnranked},
		{ID: "d", Status: library.StatusDropped, Tier: library.TierUnranked},
	}
}

func TestReduceDrop(t *testing.T) {
	tests := []struct {
		name        string
		ev          DropEvent
		wantChanged bool
		wantTier    library.Tier
		wantErr     error
	}{
		{name: "onto a tier row", ev: DropEvent{SourceID: "b", TargetID: "A"}, wantChanged: true, wantTier: library.TierA},
		{name: "onto another entry", ev: DropEvent{SourceID: "c", TargetID: "a"}, wantChanged: true, wantTier: library.TierS},
		{name: "onto the unranked row", ev: DropEvent{SourceID: "a", TargetID: "Unranked"}, wantChanged: true, wantTier: library.TierUnranked},
		{name: "own tier row is a no-op", ev: DropEvent{SourceID: "b", TargetID: "B"}},
		{name: "entry in the same tier is a no-op", ev: DropEvent{SourceID: "a", TargetID: "a"}},
		{name: "plan to watch cannot be dragged", ev: DropEvent{SourceID: "p", TargetID: "S"}, wantErr: library.ErrNotRankable},
		{name: "dropped cannot be dragged", ev: DropEvent{SourceID: "d", TargetID: "S"}, wantErr: library.ErrNotRankable},
		{name: "unknown source", ev: DropEvent{SourceID: "zz", TargetID: "S"}, wantErr: library.ErrNotRankable},
		{name: "entry off the board is not a target", ev: DropEvent{SourceID: "a", TargetID: "p"}, wantErr: ErrUnknownTarget},
		{name: "unknown target", ev: DropEvent{SourceID: "a", TargetID: "Z"}, wantErr: ErrUnknownTarget},
		{name: "entry id shadows a tier name", ev: DropEvent{SourceID: "b", TargetID: "a"}, wantChanged: true, wantTier: library.TierS},
		{name: "tier rows match case sensitively", ev: DropEvent{SourceID: "a", TargetID: "s"}, wantErr: ErrUnknownTarget},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, changed, err := ReduceDrop(boardFixture(), tt.ev)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.False(t, changed)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantChanged, changed)
			if changed {
				assert.Equal(t, TierMutation{ID: tt.ev.SourceID, Tier: tt.wantTier}, m)
			}
		})
	}
}

func TestReduceDrop_Idempotent(t *testing.T) {
	for _, e := range Rankable(boardFixture()) {
		_, changed, err := ReduceDrop(Rankable(boardFixture()), DropEvent{SourceID: e.ID, TargetID: string(e.Tier)})
		require.NoError(t, err)
		assert.False(t, changed, e.ID)
	}
}

func TestBuildTierBoard(t *testing.T) {
	rows := BuildTierBoard(boardFixture())
	require.Len(t, rows, len(library.Tiers))

	byTier := map[library.Tier][]string{}
	for _, r := range rows {
		for _, e := range r.Entries {
			byTier[r.Tier] = append(byTier[r.Tier], e.ID)
		}
	}
	assert.Equal(t, []string{"a"}, byTier[library.TierS])
	assert.Equal(t, []string{"b"}, byTier[library.TierB])
	assert.Equal(t, []string{"c"}, byTier[library.TierUnranked])
	assert.Empty(t, rows[1].Entries)
}
