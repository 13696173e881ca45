package tricoord

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// AnchorMode selects which reference point of a chunk ChunkToWorld returns.
type AnchorMode uint8

const (
	// AnchorOrigin is the chunk mesh's local origin: on the axis of symmetry,
	// halfway between base edge and apex. Meshes are placed at this point.
	AnchorOrigin AnchorMode = iota
	// AnchorMeshCenter is the centroid of the chunk triangle.
	AnchorMeshCenter
	// AnchorCellCenter is the origin offset by half a chunk side in X and half
	// a chunk altitude in Z.
	AnchorCellCenter
)

func (m AnchorMode) String() string {
	switch m {
	case AnchorOrigin:
		return "origin"
	case AnchorMeshCenter:
		return "mesh_center"
	case AnchorCellCenter:
		return "cell_center"
	default:
		return "unknown"
	}
}

// ChunkToWorld converts a chunk address to a world-space point.
func ChunkToWorld(tc TriCoord, mode AnchorMode) Coord[float64] {
	var p Coord[float64]
	if mode == AnchorCellCenter {
		p = Coord[float64]{X: ChunkHalfSide, Z: ChunkHalfAltitude}
	}

	// Fold A into C so the address lies on the A == 0 plane. Each step along
	// A is one full side to the left.
	p.X -= float64(tc.A) * ChunkSide
	b, c := tc.B, tc.C+tc.A

	// An odd remainder of B+C is a half-side step to the right.
	parity := b + c
	p.X += float64(parity) * ChunkHalfSide

	// B and C now cancel. Each row along B is one altitude up and one
	// half-side to the left.
	p.Z += float64(b) * ChunkAltitude
	p.X -= float64(b) * ChunkHalfSide

	if mode == AnchorMeshCenter {
		p.Z += centroidOffset(tc)
	}
	return p
}

// centroidOffset is the Z distance from the origin anchor to the centroid.
func centroidOffset(tc TriCoord) float64 {
	off := ChunkHalfAltitude - ChunkApothem
	if tc.IsOdd() {
		return -off
	}
	return off
}

// MaxSteps bounds the half-side and altitude step counts a TriCoord can
// represent without overflowing its int32 components. It covers about
// ±8.6e9 world units along X and ±1.5e10 along Z.
const MaxSteps = 1 << 30

// HalfsideAltitudeToTriCoord converts a (half-side, altitude) step pair into a
// chunk address. The orientation is the parity of halfsides XOR altitudes.
// Steps outside [-MaxSteps, MaxSteps] are clamped to that range.
func HalfsideAltitudeToTriCoord(halfsides, altitudes int) TriCoord {
	halfsides = clampSteps(halfsides)
	altitudes = clampSteps(altitudes)
	parity := (halfsides ^ altitudes) & 1
	// c - a = halfsides and a + b + c = parity; the numerator is always even.
	c := (halfsides - altitudes + parity) / 2
	a := c - halfsides
	return TriCoord{A: int32(a), B: int32(altitudes), C: int32(c)}
}

func clampSteps(n int) int {
	return min(max(n, -MaxSteps), MaxSteps)
}

// stepIndex floors a step count measured in world space, saturating at
// ±MaxSteps. NaN maps to 0.
func stepIndex(v float64) int {
	switch {
	case math.IsNaN(v):
		return 0
	case v <= -MaxSteps:
		return -MaxSteps
	case v >= MaxSteps:
		return MaxSteps
	}
	return int(math.Floor(v))
}

// TriCoordToHalfsideAltitude is the inverse of HalfsideAltitudeToTriCoord.
func TriCoordToHalfsideAltitude(tc TriCoord) (halfsides, altitudes int) {
	return int(tc.C - tc.A), int(tc.B)
}

// Corners returns the footprint of a chunk in world space: the two base
// corners (left, right) followed by the apex.
func Corners(tc TriCoord) [3]Coord[float64] {
	o := ChunkToWorld(tc, AnchorOrigin)
	base, apex := o.Z+ChunkHalfAltitude, o.Z-ChunkHalfAltitude
	if tc.IsOdd() {
		base, apex = apex, base
	}
	return [3]Coord[float64]{
		{X: o.X - ChunkHalfSide, Z: base},
		{X: o.X + ChunkHalfSide, Z: base},
		{X: o.X, Z: apex},
	}
}

// WorldToTriCoord returns the chunk containing a world position. Points on a
// shared edge resolve to the chunk with the smaller half-side index.
func WorldToTriCoord(p Coord[float64]) TriCoord {
	altitudes := stepIndex(p.Z/ChunkAltitude + 0.5)
	h0 := stepIndex(p.X / ChunkHalfSide)

	best := HalfsideAltitudeToTriCoord(h0, altitudes)
	bestDist := footprintDistance(Corners(best), p)
	if next := HalfsideAltitudeToTriCoord(h0+1, altitudes); footprintDistance(Corners(next), p) < bestDist {
		best = next
	}
	return best
}

// WorldToHalfsideAltitude returns the half-side and altitude steps of the
// chunk containing a world position.
func WorldToHalfsideAltitude(p Coord[float64]) (halfsides, altitudes int) {
	return TriCoordToHalfsideAltitude(WorldToTriCoord(p))
}

// WorldRadiusToChunks returns every chunk whose footprint intersects the circle
// of the given radius around center. The result is ordered by half-side, then
// altitude, and is identical for identical inputs. A non-positive radius
// yields the chunks touching center.
func WorldRadiusToChunks(center Coord[float32], radius float32) []TriCoord {
	c := center.Float64()
	r := float64(radius)
	if !(r > 0) {
		r = 0
	}

	hMin := stepIndex((c.X-r)/ChunkHalfSide) - 1
	hMax := -stepIndex(-(c.X+r)/ChunkHalfSide) + 1
	aMin := stepIndex((c.Z-r)/ChunkAltitude) - 1
	aMax := -stepIndex(-(c.Z+r)/ChunkAltitude) + 1

	var out []TriCoord
	for h := hMin; h <= hMax; h++ {
		for alt := aMin; alt <= aMax; alt++ {
			tc := HalfsideAltitudeToTriCoord(h, alt)
			if footprintDistance(Corners(tc), c) <= r {
				out = append(out, tc)
			}
		}
	}
	if len(out) == 0 {
		out = append(out, WorldToTriCoord(c))
	}
	return out
}

// footprintDistance is 0 for points inside the triangle, otherwise the
// distance to its nearest edge.
func footprintDistance(tri [3]Coord[float64], p Coord[float64]) float64 {
	v := [3]mgl64.Vec2{vec2(tri[0]), vec2(tri[1]), vec2(tri[2])}
	q := vec2(p)

	var hasNeg, hasPos bool
	for i := range v {
		side := edgeSide(v[i], v[(i+1)%3], q)
		hasNeg = hasNeg || side < 0
		hasPos = hasPos || side > 0
	}
	if !(hasNeg && hasPos) {
		return 0
	}

	d := segmentDistance(v[0], v[1], q)
	d = math.Min(d, segmentDistance(v[1], v[2], q))
	return math.Min(d, segmentDistance(v[2], v[0], q))
}

func vec2(c Coord[float64]) mgl64.Vec2 {
	return mgl64.Vec2{c.X, c.Z}
}

// edgeSide is positive when p lies to the left of the directed edge a->b.
func edgeSide(a, b, p mgl64.Vec2) float64 {
	e := b.Sub(a)
	return mgl64.Vec2{-e.Y(), e.X()}.Dot(p.Sub(a))
}

func segmentDistance(a, b, p mgl64.Vec2) float64 {
	e := b.Sub(a)
	t := mgl64.Clamp(p.Sub(a).Dot(e)/e.Dot(e), 0, 1)
	return p.Sub(a.Add(e.Mul(t))).Len()
}
