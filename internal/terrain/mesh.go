package terrain

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/tristream/pkg/tricoord"
)

// rowLayout describes how mesh rows walk the height field. Even chunks start
// at their base edge (last field row) and step toward the apex; odd chunks are
// mirrored and start at the first field row.
type rowLayout struct {
	start int
	step  int
	order [3]int // vertex order used for the face normal and the index winding
}

var (
	evenLayout = rowLayout{start: tricoord.HeightFieldSize - 1, step: -2, order: [3]int{0, 1, 2}}
	oddLayout  = rowLayout{start: 0, step: 2, order: [3]int{1, 0, 2}}
)

func layoutFor(tc tricoord.TriCoord) rowLayout {
	if tc.IsOdd() {
		return oddLayout
	}
	return evenLayout
}

// TrianglesInRow returns the number of unit triangles in mesh row row.
func TrianglesInRow(row int) int {
	return 2*(tricoord.ChunkSide-row-1) + 1
}

// BuildChunkMesh builds the flat-shaded mesh of chunk tc from its height field.
// Positions are local to the chunk's origin anchor.
func BuildChunkMesh(tc tricoord.TriCoord, field *HeightField, heights HeightRange) (*Mesh, error) {
	if field == nil || field.Size() != tricoord.HeightFieldSize {
		size := 0
		if field != nil {
			size = field.Size()
		}
		return nil, fmt.Errorf("%w: got %d, want %d", ErrFieldSize, size, tricoord.HeightFieldSize)
	}

	layout := layoutFor(tc)
	vertexCount := tricoord.TrianglesPerChunk * 3
	vertices := make([]Vertex, 0, vertexCount)
	indices := make([]uint32, 0, vertexCount)

	bounds := Bounds{
		Min: mgl32.Vec3{1e10, 1e10, 1e10},
		Max: mgl32.Vec3{-1e10, -1e10, -1e10},
	}

	for row := 0; row < tricoord.ChunkSide; row++ {
		r0 := layout.start + layout.step*row
		r1 := r0 + layout.step

		for col := 0; col < TrianglesInRow(row); col++ {
			c := row + col

			// Even columns point away from the row's starting edge, odd
			// columns fill the gaps between them.
			var grid [3][2]int
			if col%2 == 0 {
				grid = [3][2]int{{r0, c}, {r0, c + 2}, {r1, c + 1}}
			} else {
				grid = [3][2]int{{r0, c + 1}, {r1, c + 2}, {r1, c}}
			}

			var tri [3]mgl32.Vec3
			for i, g := range grid {
				p, err := vertexAt(field, g[0], g[1], heights)
				if err != nil {
					return nil, fmt.Errorf("chunk %v row %d col %d: %w", tc, row, col, err)
				}
				tri[i] = p
				updateBounds(&bounds, p)
			}

			a, b, d := tri[layout.order[0]], tri[layout.order[1]], tri[layout.order[2]]
			normal := normalize(b.Sub(a).Cross(d.Sub(a)))

			base := uint32(len(vertices))
			for _, p := range tri {
				vertices = append(vertices, Vertex{Position: p, Normal: normal, Color: vertexColor(p)})
			}
			indices = append(indices,
				base+uint32(layout.order[0]),
				base+uint32(layout.order[1]),
				base+uint32(layout.order[2]),
			)
		}
	}

	return &Mesh{
		Vertices: vertices,
		Indices:  indices,
		Bounds:   bounds,
	}, nil
}

func vertexAt(field *HeightField, row, col int, heights HeightRange) (mgl32.Vec3, error) {
	v, err := field.At(row, col)
	if err != nil {
		return mgl32.Vec3{}, err
	}
	x, z := LocalPosition(row, col)
	return mgl32.Vec3{x, heights.Map(v), z}, nil
}

// vertexColor tints vertices by their local XZ position.
func vertexColor(p mgl32.Vec3) mgl32.Vec4 {
	return mgl32.Vec4{
		max(1-p.Z(), 0),
		max(1-p.X(), 0),
		max(1+p.X(), 0),
		1,
	}
}

func updateBounds(b *Bounds, p mgl32.Vec3) {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
}

func normalize(v mgl32.Vec3) mgl32.Vec3 {
	if v.Len() < 0.0001 {
		return mgl32.Vec3{0, 1, 0}
	}
	return v.Normalize()
}
