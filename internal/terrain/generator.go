package terrain

import (
	"errors"
	"fmt"

	"github.com/Faultbox/tristream/pkg/tricoord"
)

// ErrInvalidCoord is returned for an address that is not on the lattice.
var ErrInvalidCoord = errors.New("terrain: invalid chunk address")

// GenerateChunk samples, meshes and anchors chunk tc.
func GenerateChunk(tc tricoord.TriCoord, sampler *Sampler, heights HeightRange) (*ChunkData, error) {
	if !tc.Valid() {
		return nil, fmt.Errorf("%w: %v sums to %d", ErrInvalidCoord, tc, tc.Sum())
	}
	mesh, err := BuildChunkMesh(tc, sampler.Sample(tc), heights)
	if err != nil {
		return nil, fmt.Errorf("build chunk %v: %w", tc, err)
	}
	return &ChunkData{
		Coord:  tc,
		Anchor: tricoord.ChunkToWorld(tc, tricoord.AnchorOrigin),
		Mesh:   mesh,
	}, nil
}

// Generator binds a sampler and a height range so chunks can be produced from
// their address alone. It is safe for concurrent use.
type Generator struct {
	sampler *Sampler
	heights HeightRange
}

// NewGenerator creates a generator.
func NewGenerator(noise NoiseConfig, heights HeightRange) *Generator {
	return &Generator{sampler: NewSampler(noise), heights: heights}
}

// Generate produces the chunk at tc.
func (g *Generator) Generate(tc tricoord.TriCoord) (*ChunkData, error) {
	return GenerateChunk(tc, g.sampler, g.heights)
}
