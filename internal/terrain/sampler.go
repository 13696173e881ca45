package terrain

import (
	"github.com/ojrac/opensimplex-go"

	"github.com/Faultbox/tristream/pkg/tricoord"
)

// NoiseScale converts world units to noise space. One chunk side spans 0.05
// noise units.
const NoiseScale = 0.05 / tricoord.ChunkSide

// NoiseConfig holds the parameters of the blended noise function.
type NoiseConfig struct {
	Seed        int64   `yaml:"seed"`
	Octaves     int     `yaml:"octaves"`
	Persistence float64 `yaml:"persistence"`
	Lacunarity  float64 `yaml:"lacunarity"`
}

// DefaultNoiseConfig returns the standard noise parameters.
func DefaultNoiseConfig() NoiseConfig {
	return NoiseConfig{
		Seed:        0,
		Octaves:     6,
		Persistence: 0.5,
		Lacunarity:  2.0,
	}
}

// Sampler evaluates terrain noise. It holds no mutable state and may be used
// from many goroutines at once.
type Sampler struct {
	cfg    NoiseConfig
	base   opensimplex.Noise
	ridged opensimplex.Noise
	fbm    opensimplex.Noise
}

// NewSampler creates a sampler. Non-positive octave counts fall back to the
// defaults, as do non-positive persistence and lacunarity.
func NewSampler(cfg NoiseConfig) *Sampler {
	def := DefaultNoiseConfig()
	if cfg.Octaves <= 0 {
		cfg.Octaves = def.Octaves
	}
	if cfg.Persistence <= 0 {
		cfg.Persistence = def.Persistence
	}
	if cfg.Lacunarity <= 0 {
		cfg.Lacunarity = def.Lacunarity
	}
	return &Sampler{
		cfg:    cfg,
		base:   opensimplex.New(cfg.Seed),
		ridged: opensimplex.New(cfg.Seed + 1),
		fbm:    opensimplex.New(cfg.Seed + 2),
	}
}

// Config returns the effective noise parameters.
func (s *Sampler) Config() NoiseConfig { return s.cfg }

// Eval returns the noise value at a point in noise space, in [NoiseMin, NoiseMax].
// Plain simplex and ridged multifractal noise are blended with a fractal
// Brownian motion control signal.
func (s *Sampler) Eval(x, z float64) float32 {
	a := s.base.Eval2(x, z)
	b := s.ridgedMulti(x, z)
	t := (s.fractal(x, z) + 1) / 2
	v := a + (b-a)*t
	return clampf(float32((v+1)/2), NoiseMin, NoiseMax)
}

// fractal is octave-summed simplex noise normalised to [-1, 1].
func (s *Sampler) fractal(x, z float64) float64 {
	total, amp, maxVal, freq := 0.0, 1.0, 0.0, 1.0
	for i := 0; i < s.cfg.Octaves; i++ {
		total += s.fbm.Eval2(x*freq, z*freq) * amp
		maxVal += amp
		amp *= s.cfg.Persistence
		freq *= s.cfg.Lacunarity
	}
	return total / maxVal
}

// ridgedMulti folds each octave around zero so creases form ridges, weighting
// every octave by the previous one. The result is scaled to [-1, 1].
func (s *Sampler) ridgedMulti(x, z float64) float64 {
	total, maxVal, freq, amp, weight := 0.0, 0.0, 1.0, 1.0, 1.0
	for i := 0; i < s.cfg.Octaves; i++ {
		n := 1 - abs64(s.ridged.Eval2(x*freq, z*freq))
		n *= n * weight
		weight = min(max(n*2, 0), 1)
		total += n * amp
		maxVal += amp
		amp *= s.cfg.Persistence
		freq *= s.cfg.Lacunarity
	}
	return total/maxVal*2 - 1
}

// Sample fills a chunk height field for tc. Sample positions are taken from the
// global lattice, so a grid point shared by two chunks gets the same value in
// both.
func (s *Sampler) Sample(tc tricoord.TriCoord) *HeightField {
	f := NewChunkHeightField()
	h, alt := tricoord.TriCoordToHalfsideAltitude(tc)
	gx0 := h*tricoord.ChunkSide - tricoord.ChunkSide
	gz0 := alt*2*tricoord.ChunkSide - tricoord.ChunkSide

	for row := 0; row < f.size; row++ {
		nz := float64(gz0+row) * tricoord.TriHalfAltitude * NoiseScale
		for col := 0; col < f.size; col++ {
			nx := float64(gx0+col) * tricoord.TriHalfSide * NoiseScale
			f.samples[row*f.size+col] = s.Eval(nx, nz)
		}
	}
	return f
}

func abs64(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
