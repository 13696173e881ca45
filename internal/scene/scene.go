// Package scene places generated terrain chunks as entities with a material.
package scene

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/tristream/internal/terrain"
	"github.com/Faultbox/tristream/pkg/tricoord"
)

// ErrUnknownMaterial is returned when a chunk is spawned with a material key
// that was never registered.
var ErrUnknownMaterial = errors.New("scene: unknown material")

// Material describes the surface a terrain chunk is drawn with.
type Material struct {
	Name        string     `json:"name"`
	BaseColor   mgl32.Vec4 `json:"base_color"`
	Metallic    float32    `json:"metallic"`
	Roughness   float32    `json:"roughness"`
	Reflectance float32    `json:"reflectance"`
}

// DefaultMaterials returns the built-in materials: a polished metal "shiny"
// and a matte "my_mat".
func DefaultMaterials() []Material {
	grey := mgl32.Vec4{0.5, 0.5, 0.5, 1}
	return []Material{
		{Name: "shiny", BaseColor: grey, Metallic: 1, Roughness: 0, Reflectance: 1},
		{Name: "my_mat", BaseColor: grey, Metallic: 0, Roughness: 1, Reflectance: 0},
	}
}

// Entity is one placed terrain chunk.
type Entity struct {
	ID        uint32
	Name      string
	Coord     tricoord.TriCoord
	Transform mgl32.Mat4
	Position  mgl32.Vec3
	Material  string
	Mesh      *terrain.Mesh
}

// Scene holds placed chunks. It is safe for concurrent use so inspection
// tools can read it while the main loop spawns.
type Scene struct {
	mu        sync.RWMutex
	materials map[string]Material
	entities  map[tricoord.TriCoord]*Entity
	nextID    uint32
	log       *zap.Logger
}

// New creates a scene with the given materials registered.
func New(log *zap.Logger, materials ...Material) *Scene {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Scene{
		materials: make(map[string]Material, len(materials)),
		entities:  make(map[tricoord.TriCoord]*Entity),
		log:       log,
	}
	for _, m := range materials {
		s.materials[m.Name] = m
	}
	return s
}

// Material looks up a material by key.
func (s *Scene) Material(name string) (Material, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.materials[name]
	return m, ok
}

// MaterialNames returns the registered material keys, sorted.
func (s *Scene) MaterialNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.materialNames()
}

func (s *Scene) materialNames() []string {
	names := make([]string, 0, len(s.materials))
	for name := range s.materials {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetMaterial switches every placed chunk to material. The scene is left
// unchanged when the key is unknown.
func (s *Scene) SetMaterial(material string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.materials[material]; !ok {
		return fmt.Errorf("%w %q, have %v", ErrUnknownMaterial, material, s.materialNames())
	}
	for _, e := range s.entities {
		e.Material = material
	}
	s.log.Debug("changed terrain material",
		zap.String("material", material),
		zap.Int("entities", len(s.entities)))
	return nil
}

// Spawn places chunk at its anchor on the ground plane using material.
func (s *Scene) Spawn(chunk *terrain.ChunkData, material string) error {
	if chunk == nil || chunk.Mesh == nil {
		return errors.New("scene: spawn without mesh")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.materials[material]; !ok {
		return fmt.Errorf("%w %q for chunk %v", ErrUnknownMaterial, material, chunk.Coord)
	}
	if _, ok := s.entities[chunk.Coord]; ok {
		return fmt.Errorf("scene: chunk %v already spawned", chunk.Coord)
	}

	pos := mgl32.Vec3{float32(chunk.Anchor.X), 0, float32(chunk.Anchor.Z)}
	s.nextID++
	e := &Entity{
		ID:        s.nextID,
		Name:      "TerrainMesh",
		Coord:     chunk.Coord,
		Transform: mgl32.Translate3D(pos.X(), pos.Y(), pos.Z()),
		Position:  pos,
		Material:  material,
		Mesh:      chunk.Mesh,
	}
	s.entities[chunk.Coord] = e

	s.log.Debug("spawned chunk",
		zap.Uint32("id", e.ID),
		zap.Stringer("coord", chunk.Coord),
		zap.String("material", material))
	return nil
}

// Entity returns a copy of the entity placed for tc.
func (s *Scene) Entity(tc tricoord.TriCoord) (Entity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entities[tc]
	if !ok {
		return Entity{}, false
	}
	return *e, true
}

// Len returns the number of placed chunks.
func (s *Scene) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entities)
}

// TriangleCount returns the total triangles across all placed chunks.
func (s *Scene) TriangleCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, e := range s.entities {
		n += e.Mesh.TriangleCount()
	}
	return n
}
