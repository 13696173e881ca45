package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Faultbox/tristream/internal/stream"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Test terrain defaults
	if cfg.Terrain.GenRadius != 20 {
		t.Errorf("expected gen radius 20, got %v", cfg.Terrain.GenRadius)
	}
	if !cfg.Terrain.Active {
		t.Error("expected generation to be active by default")
	}
	if cfg.Terrain.HeightMin != 0 || cfg.Terrain.HeightMax != 100 {
		t.Errorf("expected heights 0..100, got %v..%v", cfg.Terrain.HeightMin, cfg.Terrain.HeightMax)
	}
	if cfg.Terrain.Octaves != 6 {
		t.Errorf("expected 6 octaves, got %d", cfg.Terrain.Octaves)
	}

	// Test session defaults
	if cfg.Session.TickRate != 30 {
		t.Errorf("expected tick rate 30, got %d", cfg.Session.TickRate)
	}

	// Test debug defaults
	if cfg.Debug.Listen != "" {
		t.Errorf("expected debug server disabled, got %s", cfg.Debug.Listen)
	}
	if cfg.Debug.Material != "my_mat" {
		t.Errorf("expected material 'my_mat', got %s", cfg.Debug.Material)
	}
	if !cfg.Debug.OriginGizmo || cfg.Debug.ChunkGizmo {
		t.Errorf("expected origin gizmo on and chunk gizmo off, got %+v", cfg.Debug)
	}

	// Test logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "tristream.yaml")

	yamlContent := `
terrain:
  gen_radius: 64
  active: false
  seed: 1234
  height_max: 40
  workers: 3

session:
  tick_rate: 60
  ticks: 500
  walk_speed: 12.5
  walk_heading: 90

debug:
  listen: "127.0.0.1:8088"
  push_interval: 100ms
  material: "shiny"

journal:
  dir: "journal"

logging:
  level: "debug"
  log_file: "terrain.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Terrain.GenRadius != 64 {
		t.Errorf("expected gen radius 64, got %v", cfg.Terrain.GenRadius)
	}
	if cfg.Terrain.Active {
		t.Error("expected active to be false")
	}
	if cfg.Terrain.Seed != 1234 {
		t.Errorf("expected seed 1234, got %d", cfg.Terrain.Seed)
	}
	if cfg.Terrain.HeightMax != 40 || cfg.Terrain.HeightMin != 0 {
		t.Errorf("expected heights 0..40, got %v..%v", cfg.Terrain.HeightMin, cfg.Terrain.HeightMax)
	}
	if cfg.Terrain.Octaves != 6 {
		t.Errorf("expected octaves to keep default 6, got %d", cfg.Terrain.Octaves)
	}
	if cfg.Session.Ticks != 500 || cfg.Session.WalkSpeed != 12.5 || cfg.Session.WalkHeading != 90 {
		t.Errorf("unexpected session %+v", cfg.Session)
	}
	if cfg.Debug.PushInterval != 100*time.Millisecond {
		t.Errorf("expected push interval 100ms, got %v", cfg.Debug.PushInterval)
	}
	if cfg.Debug.Listen != "127.0.0.1:8088" || cfg.Debug.Material != "shiny" {
		t.Errorf("unexpected debug %+v", cfg.Debug)
	}
	if cfg.Journal.Dir != "journal" {
		t.Errorf("expected journal dir 'journal', got %s", cfg.Journal.Dir)
	}
	if cfg.Logging.LogFile != "terrain.log" {
		t.Errorf("expected log file 'terrain.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
terrain:
  gen_radius: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/tristream.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative radius", func(c *Config) { c.Terrain.GenRadius = -1 }},
		{"radius too large", func(c *Config) { c.Terrain.GenRadius = stream.MaxRadius + 1 }},
		{"inverted heights", func(c *Config) { c.Terrain.HeightMin, c.Terrain.HeightMax = 10, 5 }},
		{"negative workers", func(c *Config) { c.Terrain.Workers = -2 }},
		{"zero tick rate", func(c *Config) { c.Session.TickRate = 0 }},
		{"negative ticks", func(c *Config) { c.Session.Ticks = -1 }},
		{"zero push interval", func(c *Config) { c.Debug.PushInterval = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "tristream.yaml")
	if err := os.WriteFile(configPath, []byte("terrain:\n  gen_radius: 8\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find tristream.yaml in current directory")
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tristream.yaml")
	cfg := Default()
	cfg.Terrain.Seed = 99
	cfg.Debug.Listen = ":9000"

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("loadFromFile() error = %v", err)
	}
	if loaded.Terrain.Seed != 99 || loaded.Debug.Listen != ":9000" {
		t.Errorf("saved values not restored: %+v", loaded)
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "radius flag",
			setup: func() { *flagRadius = 55 },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Terrain.GenRadius != 55 {
					t.Errorf("expected radius 55, got %v", cfg.Terrain.GenRadius)
				}
			},
			teardown: func() { *flagRadius = 0 },
		},
		{
			name:  "inactive flag",
			setup: func() { *flagInactive = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Terrain.Active {
					t.Error("expected generation to start paused")
				}
			},
			teardown: func() { *flagInactive = false },
		},
		{
			name: "listen and journal flags",
			setup: func() {
				*flagListen = "127.0.0.1:0"
				*flagJournal = "/tmp/j"
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Debug.Listen != "127.0.0.1:0" || cfg.Journal.Dir != "/tmp/j" {
					t.Errorf("unexpected debug/journal %+v %+v", cfg.Debug, cfg.Journal)
				}
			},
			teardown: func() {
				*flagListen = ""
				*flagJournal = ""
			},
		},
		{
			name: "seed, workers and ticks flags",
			setup: func() {
				*flagSeed = 7
				*flagWorkers = 2
				*flagTicks = 10
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Terrain.Seed != 7 || cfg.Terrain.Workers != 2 || cfg.Session.Ticks != 10 {
					t.Errorf("unexpected overrides %+v %+v", cfg.Terrain, cfg.Session)
				}
			},
			teardown: func() {
				*flagSeed = 0
				*flagWorkers = 0
				*flagTicks = 0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)

			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "tristream.yaml")

	yamlContent := `
terrain:
  gen_radius: 30
  seed: 5
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagRadius = 80
	defer func() {
		*flagConfig = ""
		*flagRadius = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Radius should be from flag (80), not file (30)
	if cfg.Terrain.GenRadius != 80 {
		t.Errorf("expected radius 80 from flag, got %v", cfg.Terrain.GenRadius)
	}

	// Seed should be from file since no flag override
	if cfg.Terrain.Seed != 5 {
		t.Errorf("expected seed 5 from file, got %d", cfg.Terrain.Seed)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "tristream.yaml")
	if err := os.WriteFile(configPath, []byte("session:\n  tick_rate: 0\n"), 0644); err != nil {
		t.Fatal(err)
	}
	*flagConfig = configPath
	defer func() { *flagConfig = "" }()

	if _, err := Load(); err == nil {
		t.Error("expected Load to reject tick_rate 0")
	}
}

func TestLoadFromFileUnknownKey(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "tristream.yaml")
	if err := os.WriteFile(configPath, []byte("terrain:\n  gen_raduis: 10\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error for misspelled key, got nil")
	}
}

func TestLoadFromFileEmpty(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "tristream.yaml")
	if err := os.WriteFile(configPath, nil, 0644); err != nil {
		t.Fatal(err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("expected empty file to load, got %v", err)
	}
	if cfg.Terrain.GenRadius != Default().Terrain.GenRadius {
		t.Errorf("expected defaults to survive, got radius %v", cfg.Terrain.GenRadius)
	}
}

func TestLoadFromEnv(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "from-env.yaml")
	if err := os.WriteFile(configPath, []byte("terrain:\n  seed: 77\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvConfig, configPath)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Terrain.Seed != 77 {
		t.Errorf("expected seed 77 from %s, got %d", EnvConfig, cfg.Terrain.Seed)
	}
}

func TestSaveToLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)

	cfg := Default()
	for i := 0; i < 2; i++ {
		if err := cfg.SaveTo(path); err != nil {
			t.Fatalf("SaveTo() error = %v", err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != FileName {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("expected only %s, got %v", FileName, names)
	}
}
