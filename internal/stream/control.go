package stream

import (
	"math"
	"sync"
)

// MaxRadius is the largest generation radius Control accepts.
const MaxRadius = 400

// ControlValues is a point-in-time copy of the runtime controls.
type ControlValues struct {
	Radius      float32 `json:"radius"`
	Active      bool    `json:"active"`
	Material    string  `json:"material"`
	OriginGizmo bool    `json:"origin_gizmo"`
	ChunkGizmo  bool    `json:"chunk_gizmo"`
}

// ControlUpdate changes any subset of the controls. Nil fields are left alone.
type ControlUpdate struct {
	Active      *bool    `json:"active,omitempty"`
	Radius      *float32 `json:"radius,omitempty"`
	Material    *string  `json:"material,omitempty"`
	OriginGizmo *bool    `json:"origin_gizmo,omitempty"`
	ChunkGizmo  *bool    `json:"chunk_gizmo,omitempty"`
}

// Control holds the runtime-tunable streaming parameters. It is safe for
// concurrent use: the debug server writes while the main loop reads.
type Control struct {
	mu sync.RWMutex
	v  ControlValues
}

// NewControl creates controls with the given initial values.
func NewControl(v ControlValues) *Control {
	v.Radius = clampRadius(v.Radius)
	return &Control{v: v}
}

// Values returns a copy of all controls.
func (c *Control) Values() ControlValues {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.v
}

// Radius returns the generation radius in world units.
func (c *Control) Radius() float32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.v.Radius
}

// Active reports whether new chunks may be dispatched.
func (c *Control) Active() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.v.Active
}

// Material returns the selected material key.
func (c *Control) Material() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.v.Material
}

// SetRadius sets the generation radius, clamped to [0, MaxRadius].
func (c *Control) SetRadius(r float32) {
	c.mu.Lock()
	c.v.Radius = clampRadius(r)
	c.mu.Unlock()
}

// SetActive toggles dispatch.
func (c *Control) SetActive(active bool) {
	c.mu.Lock()
	c.v.Active = active
	c.mu.Unlock()
}

// SetMaterial selects the material key used for spawned chunks.
func (c *Control) SetMaterial(m string) {
	c.mu.Lock()
	c.v.Material = m
	c.mu.Unlock()
}

// Apply updates the controls atomically and returns the new values.
func (c *Control) Apply(u ControlUpdate) ControlValues {
	c.mu.Lock()
	defer c.mu.Unlock()
	if u.Active != nil {
		c.v.Active = *u.Active
	}
	if u.Radius != nil {
		c.v.Radius = clampRadius(*u.Radius)
	}
	if u.Material != nil {
		c.v.Material = *u.Material
	}
	if u.OriginGizmo != nil {
		c.v.OriginGizmo = *u.OriginGizmo
	}
	if u.ChunkGizmo != nil {
		c.v.ChunkGizmo = *u.ChunkGizmo
	}
	return c.v
}

func clampRadius(r float32) float32 {
	if math.IsNaN(float64(r)) || r < 0 {
		return 0
	}
	if r > MaxRadius {
		return MaxRadius
	}
	return r
}
