// Package stream decides which terrain chunks must exist around the player,
// generates them in the background and tracks each chunk's lifecycle.
package stream

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/Faultbox/tristream/pkg/tricoord"
)

// ChunkState is the lifecycle state of one chunk address.
type ChunkState uint8

const (
	StateUnseen ChunkState = iota
	StateInRange
	StateGenerating
	StateGenerated
	StateFailed
)

func (s ChunkState) String() string {
	switch s {
	case StateUnseen:
		return "unseen"
	case StateInRange:
		return "in_range"
	case StateGenerating:
		return "generating"
	case StateGenerated:
		return "generated"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("ChunkState(%d)", uint8(s))
	}
}

type coordSet map[tricoord.TriCoord]struct{}

func (s coordSet) has(tc tricoord.TriCoord) bool {
	_, ok := s[tc]
	return ok
}

func (s coordSet) sorted() []tricoord.TriCoord {
	out := make([]tricoord.TriCoord, 0, len(s))
	for tc := range s {
		out = append(out, tc)
	}
	sortCoords(out)
	return out
}

func sortCoords(coords []tricoord.TriCoord) {
	slices.SortFunc(coords, compareCoords)
}

func compareCoords(a, b tricoord.TriCoord) int {
	if c := cmp.Compare(a.A, b.A); c != 0 {
		return c
	}
	if c := cmp.Compare(a.B, b.B); c != 0 {
		return c
	}
	return cmp.Compare(a.C, b.C)
}

// Registry tracks chunk addresses by lifecycle set. An address is in at most
// one of generating, generated and failed; in-range membership is independent.
// Registry is not safe for concurrent use; it belongs to the main loop.
type Registry struct {
	inRange    coordSet
	generating coordSet
	generated  coordSet
	failed     coordSet
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		inRange:    make(coordSet),
		generating: make(coordSet),
		generated:  make(coordSet),
		failed:     make(coordSet),
	}
}

// ReplaceInRange sets the in-range set to exactly coords.
func (r *Registry) ReplaceInRange(coords []tricoord.TriCoord) {
	clear(r.inRange)
	for _, tc := range coords {
		r.inRange[tc] = struct{}{}
	}
}

// MarkGenerating records that generation of tc has started.
func (r *Registry) MarkGenerating(tc tricoord.TriCoord) error {
	if s := r.lifecycle(tc); s != StateUnseen {
		return fmt.Errorf("chunk %v: cannot start generating, already %v", tc, s)
	}
	r.generating[tc] = struct{}{}
	return nil
}

// MarkGenerated moves tc from generating to generated.
func (r *Registry) MarkGenerated(tc tricoord.TriCoord) error {
	if !r.generating.has(tc) {
		return fmt.Errorf("chunk %v: marked generated but not generating (%v)", tc, r.lifecycle(tc))
	}
	delete(r.generating, tc)
	r.generated[tc] = struct{}{}
	return nil
}

// MarkFailed moves tc from generating to failed.
func (r *Registry) MarkFailed(tc tricoord.TriCoord) error {
	if !r.generating.has(tc) {
		return fmt.Errorf("chunk %v: marked failed but not generating (%v)", tc, r.lifecycle(tc))
	}
	delete(r.generating, tc)
	r.failed[tc] = struct{}{}
	return nil
}

// lifecycle ignores in-range membership.
func (r *Registry) lifecycle(tc tricoord.TriCoord) ChunkState {
	switch {
	case r.generating.has(tc):
		return StateGenerating
	case r.generated.has(tc):
		return StateGenerated
	case r.failed.has(tc):
		return StateFailed
	default:
		return StateUnseen
	}
}

// State returns the lifecycle state of tc. Addresses that are only in range
// report StateInRange.
func (r *Registry) State(tc tricoord.TriCoord) ChunkState {
	if s := r.lifecycle(tc); s != StateUnseen {
		return s
	}
	if r.inRange.has(tc) {
		return StateInRange
	}
	return StateUnseen
}

// NeedsGeneration reports whether tc is in range and has never been started.
func (r *Registry) NeedsGeneration(tc tricoord.TriCoord) bool {
	return r.inRange.has(tc) && r.lifecycle(tc) == StateUnseen
}

func (r *Registry) IsInRange(tc tricoord.TriCoord) bool    { return r.inRange.has(tc) }
func (r *Registry) IsGenerating(tc tricoord.TriCoord) bool { return r.generating.has(tc) }
func (r *Registry) IsGenerated(tc tricoord.TriCoord) bool  { return r.generated.has(tc) }
func (r *Registry) IsFailed(tc tricoord.TriCoord) bool     { return r.failed.has(tc) }

// InRange returns a sorted copy of the in-range set.
func (r *Registry) InRange() []tricoord.TriCoord { return r.inRange.sorted() }

// Generating returns a sorted copy of the generating set.
func (r *Registry) Generating() []tricoord.TriCoord { return r.generating.sorted() }

// Generated returns a sorted copy of the generated set.
func (r *Registry) Generated() []tricoord.TriCoord { return r.generated.sorted() }

// Failed returns a sorted copy of the failed set.
func (r *Registry) Failed() []tricoord.TriCoord { return r.failed.sorted() }

// Counts returns the sizes of the four sets.
func (r *Registry) Counts() Counts {
	return Counts{
		InRange:    len(r.inRange),
		Generating: len(r.generating),
		Generated:  len(r.generated),
		Failed:     len(r.failed),
	}
}

// Counts holds registry set sizes.
type Counts struct {
	InRange    int `json:"in_range"`
	Generating int `json:"generating"`
	Generated  int `json:"generated"`
	Failed     int `json:"failed"`
}
