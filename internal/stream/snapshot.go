package stream

import (
	"slices"

	"github.com/Faultbox/tristream/pkg/tricoord"
)

// Snapshot is an immutable view of the streaming state after one tick. It is
// safe to share between goroutines; nothing modifies it after publication.
type Snapshot struct {
	Tick        uint64                  `json:"tick"`
	PlayerKnown bool                    `json:"player_known"`
	Player      tricoord.Coord[float32] `json:"player"`
	Halfsides   int                     `json:"halfsides"`
	Altitudes   int                     `json:"altitudes"`
	PlayerChunk tricoord.TriCoord       `json:"player_chunk"`
	Control     ControlValues           `json:"control"`
	Counts      Counts                  `json:"counts"`
	InRange     []tricoord.TriCoord     `json:"in_range"`
	Generating  []tricoord.TriCoord     `json:"generating"`
	Generated   []tricoord.TriCoord     `json:"generated"`
	Failed      []tricoord.TriCoord     `json:"failed"`
	Report      TickReport              `json:"report"`
}

// State returns the lifecycle state of tc as recorded in the snapshot.
func (s *Snapshot) State(tc tricoord.TriCoord) ChunkState {
	switch {
	case contains(s.Generating, tc):
		return StateGenerating
	case contains(s.Generated, tc):
		return StateGenerated
	case contains(s.Failed, tc):
		return StateFailed
	case contains(s.InRange, tc):
		return StateInRange
	default:
		return StateUnseen
	}
}

// IsInRange reports whether tc was in range when the snapshot was taken.
func (s *Snapshot) IsInRange(tc tricoord.TriCoord) bool {
	return contains(s.InRange, tc)
}

// contains searches a sorted coordinate slice.
func contains(sorted []tricoord.TriCoord, tc tricoord.TriCoord) bool {
	_, found := slices.BinarySearchFunc(sorted, tc, compareCoords)
	return found
}
