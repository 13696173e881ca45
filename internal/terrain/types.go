// Package terrain provides chunk height fields and flat-shaded chunk meshes for
// the triangular lattice.
package terrain

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/tristream/pkg/tricoord"
)

// Noise values produced by a Sampler lie in [NoiseMin, NoiseMax].
const (
	NoiseMin = 0.0
	NoiseMax = 1.0
)

// Vertex represents a chunk mesh vertex.
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	Color    mgl32.Vec4
}

// Mesh holds one chunk's triangle list. Vertices are not shared between
// triangles, so VertexCount == IndexCount == 3 * TriangleCount.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
	Bounds   Bounds
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int { return len(m.Vertices) }

// IndexCount returns the number of indices.
func (m *Mesh) IndexCount() int { return len(m.Indices) }

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int { return len(m.Indices) / 3 }

// UniquePositions returns the number of distinct vertex positions. A chunk
// mesh repeats every shared corner, so this is tricoord.LatticePointsPerChunk
// for a full chunk.
func (m *Mesh) UniquePositions() int {
	seen := make(map[mgl32.Vec3]struct{}, tricoord.LatticePointsPerChunk())
	for i := range m.Vertices {
		seen[m.Vertices[i].Position] = struct{}{}
	}
	return len(seen)
}

// Bounds holds the axis-aligned bounding box of a mesh in local space.
type Bounds struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// HeightRange is the world-space height interval noise values are mapped onto.
type HeightRange struct {
	Min float32
	Max float32
}

// DefaultHeightRange returns the standard 0..100 height interval.
func DefaultHeightRange() HeightRange {
	return HeightRange{Min: 0, Max: 100}
}

// Map linearly remaps a noise value to a world height.
func (r HeightRange) Map(v float32) float32 {
	return r.Min + (v-NoiseMin)*(r.Max-r.Min)/(NoiseMax-NoiseMin)
}

// ChunkData is a finished chunk: its address, the world-space anchor its mesh
// is placed at, and the mesh itself.
type ChunkData struct {
	Coord  tricoord.TriCoord
	Anchor tricoord.Coord[float64]
	Mesh   *Mesh
}
