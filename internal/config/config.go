// Package config handles terrain streaming configuration loading and management.
package config

import (
	"fmt"
	"time"

	"github.com/Faultbox/tristream/internal/stream"
)

// Config holds all session settings.
type Config struct {
	Terrain TerrainConfig `yaml:"terrain"`
	Session SessionConfig `yaml:"session"`
	Debug   DebugConfig   `yaml:"debug"`
	Journal JournalConfig `yaml:"journal"`
	Logging LoggingConfig `yaml:"logging"`
}

// TerrainConfig holds chunk generation settings.
type TerrainConfig struct {
	GenRadius   float32 `yaml:"gen_radius"` // World units around the player
	Active      bool    `yaml:"active"`
	Seed        int64   `yaml:"seed"`
	Octaves     int     `yaml:"octaves"`
	Persistence float64 `yaml:"persistence"`
	Lacunarity  float64 `yaml:"lacunarity"`
	HeightMin   float32 `yaml:"height_min"`
	HeightMax   float32 `yaml:"height_max"`
	Workers     int     `yaml:"workers"` // 0 = one per CPU
}

// SessionConfig holds the headless session driver settings.
type SessionConfig struct {
	TickRate    int     `yaml:"tick_rate"` // Ticks per second
	Ticks       int     `yaml:"ticks"`     // 0 = run until interrupted
	StartX      float32 `yaml:"start_x"`
	StartZ      float32 `yaml:"start_z"`
	WalkSpeed   float32 `yaml:"walk_speed"`   // World units per second
	WalkHeading float32 `yaml:"walk_heading"` // Degrees, 0 = +X, 90 = +Z
}

// DebugConfig holds the debug server settings.
type DebugConfig struct {
	Listen       string        `yaml:"listen"` // Empty disables the server
	PushInterval time.Duration `yaml:"push_interval"`
	Material     string        `yaml:"material"`
	OriginGizmo  bool          `yaml:"origin_gizmo"`
	ChunkGizmo   bool          `yaml:"chunk_gizmo"`
}

// JournalConfig holds lifecycle journal settings.
type JournalConfig struct {
	Dir string `yaml:"dir"` // Empty disables the journal
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Terrain: TerrainConfig{
			GenRadius:   20,
			Active:      true,
			Seed:        0,
			Octaves:     6,
			Persistence: 0.5,
			Lacunarity:  2.0,
			HeightMin:   0,
			HeightMax:   100,
			Workers:     0,
		},
		Session: SessionConfig{
			TickRate:    30,
			Ticks:       0,
			WalkSpeed:   4,
			WalkHeading: 0,
		},
		Debug: DebugConfig{
			Listen:       "",
			PushInterval: 250 * time.Millisecond,
			Material:     "my_mat",
			OriginGizmo:  true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	switch {
	case c.Terrain.GenRadius < 0 || c.Terrain.GenRadius > stream.MaxRadius:
		return fmt.Errorf("terrain.gen_radius %v outside [0, %d]", c.Terrain.GenRadius, stream.MaxRadius)
	case c.Terrain.HeightMax < c.Terrain.HeightMin:
		return fmt.Errorf("terrain.height_max %v below height_min %v", c.Terrain.HeightMax, c.Terrain.HeightMin)
	case c.Terrain.Workers < 0:
		return fmt.Errorf("terrain.workers %d is negative", c.Terrain.Workers)
	case c.Session.TickRate <= 0:
		return fmt.Errorf("session.tick_rate %d must be positive", c.Session.TickRate)
	case c.Session.Ticks < 0:
		return fmt.Errorf("session.ticks %d is negative", c.Session.Ticks)
	case c.Debug.PushInterval <= 0:
		return fmt.Errorf("debug.push_interval %v must be positive", c.Debug.PushInterval)
	}
	return nil
}
