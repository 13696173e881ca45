// Package tricoord implements the triangular chunk lattice: three-axis chunk
// addresses, their conversion to and from world space, and area queries.
//
// World space is the XZ plane (Y up). A chunk is an equilateral triangle of
// ChunkSide world units. Chunks whose coordinates sum to 0 are "even" and have
// their base edge toward +Z; chunks summing to 1 are "odd" and have their base
// edge toward -Z. Two addresses that differ only in orientation tile the plane
// without gaps.
package tricoord

import "fmt"

// Lattice geometry. These values define the meaning of every TriCoord; changing
// them invalidates all addresses produced with the old values.
const (
	TriSide         = 1.0
	TriHalfSide     = TriSide / 2
	TriAltitude     = 0.8660254037844386 * TriSide // sqrt(3)/2
	TriHalfAltitude = TriAltitude / 2
	TriApothem      = TriAltitude / 3

	ChunkSide         = 16
	ChunkHalfSide     = ChunkSide * TriHalfSide
	ChunkAltitude     = ChunkSide * TriAltitude
	ChunkHalfAltitude = ChunkAltitude / 2
	ChunkApothem      = ChunkAltitude / 3

	// HeightFieldSize is the number of lattice samples along each side of a
	// chunk's height field: one per half-side step plus the closing edge.
	HeightFieldSize = 2*ChunkSide + 1

	// TrianglesPerChunk is the number of unit triangles in one chunk.
	TrianglesPerChunk = ChunkSide * ChunkSide
)

// TriangularNumber returns 1 + 2 + ... + n, the number of points in a
// triangle with n points per side. It is 0 for n <= 0.
func TriangularNumber(n int) int {
	if n <= 0 {
		return 0
	}
	return n * (n + 1) / 2
}

// LatticePointsPerChunk is the number of distinct unit-triangle corners in a
// chunk, i.e. the mesh vertex count if vertices were welded.
func LatticePointsPerChunk() int {
	return TriangularNumber(ChunkSide + 1)
}

// Number is the set of numeric kinds a Coord can carry.
type Number interface {
	~int | ~int16 | ~int32 | ~int64 | ~float32 | ~float64
}

// Coord is a point on the XZ plane, either in world units or in lattice steps.
type Coord[T Number] struct {
	X T `json:"x"`
	Z T `json:"z"`
}

// Float64 converts the coordinate to float64 components.
func (c Coord[T]) Float64() Coord[float64] {
	return Coord[float64]{X: float64(c.X), Z: float64(c.Z)}
}

// TriCoord addresses one triangular chunk. The components are not independent:
// valid addresses satisfy A+B+C ∈ {0, 1}, and the sum is the orientation.
type TriCoord struct {
	A int32 `json:"a"`
	B int32 `json:"b"`
	C int32 `json:"c"`
}

// New returns the address (a, b, c).
func New(a, b, c int32) TriCoord {
	return TriCoord{A: a, B: b, C: c}
}

// Sum returns A+B+C.
func (t TriCoord) Sum() int32 {
	return t.A + t.B + t.C
}

// IsOdd reports whether the chunk points toward +Z (base edge toward -Z).
func (t TriCoord) IsOdd() bool {
	return t.Sum() != 0
}

// Valid reports whether the address lies on the lattice.
func (t TriCoord) Valid() bool {
	s := t.Sum()
	return s == 0 || s == 1
}

// Neighbors returns the three chunks sharing an edge with t: the two beside it
// in its row, then the one across its base edge. Even chunks step +1 along one
// axis, odd chunks step -1.
func (t TriCoord) Neighbors() [3]TriCoord {
	d := int32(1)
	if t.IsOdd() {
		d = -1
	}
	return [3]TriCoord{
		{A: t.A + d, B: t.B, C: t.C},
		{A: t.A, B: t.B, C: t.C + d},
		{A: t.A, B: t.B + d, C: t.C},
	}
}

func (t TriCoord) String() string {
	return fmt.Sprintf("(%d, %d, %d)", t.A, t.B, t.C)
}
