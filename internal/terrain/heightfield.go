package terrain

import (
	"errors"
	"fmt"

	"github.com/Faultbox/tristream/pkg/tricoord"
)

var (
	// ErrFieldSize is returned when a height field does not have the
	// HeightFieldSize x HeightFieldSize shape a chunk mesh needs.
	ErrFieldSize = errors.New("terrain: height field has wrong size")

	// ErrOutOfWindow is returned for a sample index outside the field.
	ErrOutOfWindow = errors.New("terrain: sample outside height field")
)

// HeightField is a square grid of noise samples in [NoiseMin, NoiseMax],
// stored row-major. Row r and column c correspond to the chunk-local position
// x = (c - ChunkSide) * TriHalfSide, z = (r - ChunkSide) * TriHalfAltitude.
type HeightField struct {
	size    int
	samples []float32
}

// NewHeightField returns a zeroed field of size x size samples.
func NewHeightField(size int) *HeightField {
	if size < 0 {
		size = 0
	}
	return &HeightField{size: size, samples: make([]float32, size*size)}
}

// NewChunkHeightField returns a zeroed field sized for one chunk.
func NewChunkHeightField() *HeightField {
	return NewHeightField(tricoord.HeightFieldSize)
}

// Size returns the number of samples along one side.
func (f *HeightField) Size() int { return f.size }

// Samples returns the backing row-major slice.
func (f *HeightField) Samples() []float32 { return f.samples }

// At returns the sample at (row, col).
func (f *HeightField) At(row, col int) (float32, error) {
	if !f.inside(row, col) {
		return 0, fmt.Errorf("%w: (%d, %d) in %dx%d", ErrOutOfWindow, row, col, f.size, f.size)
	}
	return f.samples[row*f.size+col], nil
}

// Set stores v at (row, col).
func (f *HeightField) Set(row, col int, v float32) error {
	if !f.inside(row, col) {
		return fmt.Errorf("%w: (%d, %d) in %dx%d", ErrOutOfWindow, row, col, f.size, f.size)
	}
	f.samples[row*f.size+col] = v
	return nil
}

func (f *HeightField) inside(row, col int) bool {
	return row >= 0 && col >= 0 && row < f.size && col < f.size
}

// at skips bounds checks; callers have validated the field size.
func (f *HeightField) at(row, col int) float32 {
	return f.samples[row*f.size+col]
}

// LocalPosition returns the chunk-local XZ position of sample (row, col).
func LocalPosition(row, col int) (x, z float32) {
	x = float32(col-tricoord.ChunkSide) * tricoord.TriHalfSide
	z = float32(row-tricoord.ChunkSide) * tricoord.TriHalfAltitude
	return x, z
}

func clampf(v, min, max float32) float32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
