// Package debug provides debug visualization of the chunk streaming state.
package debug

import (
	"math"

	"github.com/Faultbox/tristream/internal/stream"
	"github.com/Faultbox/tristream/pkg/tricoord"
)

// Outline colors by chunk state.
var (
	ColorGenerating     = [3]float32{1.0, 0.65, 0.0} // orange
	ColorGeneratedNear  = [3]float32{1.0, 0.0, 0.0}  // red
	ColorGeneratedFar   = [3]float32{0.0, 0.0, 1.0}  // blue
	ColorFailed         = [3]float32{0.5, 0.5, 0.5}
	ColorRadius         = [3]float32{0.0, 0.0, 0.0}
	ColorAxisX          = [3]float32{1.0, 0.0, 0.0}
	ColorAxisZ          = [3]float32{0.0, 0.0, 1.0}
	defaultCircleDetail = 64
)

// LineVertex is one end of a debug line segment.
type LineVertex struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
	R float32 `json:"r"`
	G float32 `json:"g"`
	B float32 `json:"b"`
}

// Gizmo placement.
const (
	OutlineHeight    = 0.1
	OriginAxisLength = 4
)

// Lines returns the line list for the gizmos enabled in snap.Control: the
// origin axes, and the chunk outlines with the generation circle around the
// player.
func Lines(snap *stream.Snapshot, outlines []Outline) []LineVertex {
	if snap == nil {
		return nil
	}
	var out []LineVertex
	if snap.Control.OriginGizmo {
		out = append(out, OriginAxes(OriginAxisLength)...)
	}
	if snap.Control.ChunkGizmo {
		out = append(out, OutlineLines(outlines, OutlineHeight)...)
		if snap.PlayerKnown {
			out = append(out, RadiusCircle(snap.Player, snap.Control.Radius, 0)...)
		}
	}
	return out
}

// Outline is the footprint of one tracked chunk.
type Outline struct {
	Coord   tricoord.TriCoord          `json:"coord"`
	State   string                     `json:"state"`
	InRange bool                       `json:"in_range"`
	Color   [3]float32                 `json:"color"`
	Corners [3]tricoord.Coord[float64] `json:"corners"`
}

// Outlines classifies every generating, generated and failed chunk in snap.
func Outlines(snap *stream.Snapshot) []Outline {
	if snap == nil {
		return nil
	}
	out := make([]Outline, 0, len(snap.Generating)+len(snap.Generated)+len(snap.Failed))

	for _, tc := range snap.Generating {
		out = append(out, newOutline(tc, stream.StateGenerating, snap.IsInRange(tc), ColorGenerating))
	}
	for _, tc := range snap.Generated {
		near := snap.IsInRange(tc)
		color := ColorGeneratedFar
		if near {
			color = ColorGeneratedNear
		}
		out = append(out, newOutline(tc, stream.StateGenerated, near, color))
	}
	for _, tc := range snap.Failed {
		out = append(out, newOutline(tc, stream.StateFailed, snap.IsInRange(tc), ColorFailed))
	}
	return out
}

func newOutline(tc tricoord.TriCoord, state stream.ChunkState, inRange bool, color [3]float32) Outline {
	return Outline{
		Coord:   tc,
		State:   state.String(),
		InRange: inRange,
		Color:   color,
		Corners: tricoord.Corners(tc),
	}
}

// OutlineLines returns line-list vertices for the outlines, three segments
// per chunk, at the given height.
func OutlineLines(outlines []Outline, height float32) []LineVertex {
	vertices := make([]LineVertex, 0, len(outlines)*6)
	for _, o := range outlines {
		for i := 0; i < 3; i++ {
			a, b := o.Corners[i], o.Corners[(i+1)%3]
			vertices = append(vertices,
				LineVertex{float32(a.X), height, float32(a.Z), o.Color[0], o.Color[1], o.Color[2]},
				LineVertex{float32(b.X), height, float32(b.Z), o.Color[0], o.Color[1], o.Color[2]},
			)
		}
	}
	return vertices
}

// RadiusCircle returns line-list vertices approximating the generation circle.
// segments <= 2 selects the default detail.
func RadiusCircle(center tricoord.Coord[float32], radius float32, segments int) []LineVertex {
	if segments <= 2 {
		segments = defaultCircleDetail
	}
	c := ColorRadius
	vertices := make([]LineVertex, 0, segments*2)
	point := func(i int) (float32, float32) {
		angle := 2 * math.Pi * float64(i) / float64(segments)
		return center.X + radius*float32(math.Cos(angle)), center.Z + radius*float32(math.Sin(angle))
	}
	for i := 0; i < segments; i++ {
		x0, z0 := point(i)
		x1, z1 := point(i + 1)
		vertices = append(vertices,
			LineVertex{x0, 0, z0, c[0], c[1], c[2]},
			LineVertex{x1, 0, z1, c[0], c[1], c[2]},
		)
	}
	return vertices
}

// OriginAxes returns the +X and +Z axis markers raised 2 units above the origin.
func OriginAxes(length float32) []LineVertex {
	const y = 2
	x, z := ColorAxisX, ColorAxisZ
	return []LineVertex{
		{0, y, 0, x[0], x[1], x[2]},
		{length, y, 0, x[0], x[1], x[2]},
		{0, y, 0, z[0], z[1], z[2]},
		{0, y, length, z[0], z[1], z[2]},
	}
}
