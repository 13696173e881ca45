package config

import "flag"

var (
	flagConfig   = flag.String("config", "", "Path to config file")
	flagDebug    = flag.Bool("debug", false, "Enable debug logging")
	flagRadius   = flag.Float64("radius", 0, "Generation radius in world units")
	flagSeed     = flag.Int64("seed", 0, "Noise seed")
	flagWorkers  = flag.Int("workers", 0, "Generation workers (0 = one per CPU)")
	flagTicks    = flag.Int("ticks", 0, "Number of ticks to run (0 = until interrupted)")
	flagListen   = flag.String("listen", "", "Debug server address, e.g. 127.0.0.1:8088")
	flagJournal  = flag.String("journal", "", "Directory for the lifecycle journal")
	flagInactive = flag.Bool("inactive", false, "Start with chunk generation paused")
	flagWriteTo  = flag.String("write-config", "", "Write the effective config to this path and exit")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// WriteConfigPath returns the path given with -write-config, if any.
func WriteConfigPath() string {
	return *flagWriteTo
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagRadius > 0 {
		cfg.Terrain.GenRadius = float32(*flagRadius)
	}
	if *flagSeed != 0 {
		cfg.Terrain.Seed = *flagSeed
	}
	if *flagWorkers > 0 {
		cfg.Terrain.Workers = *flagWorkers
	}
	if *flagTicks > 0 {
		cfg.Session.Ticks = *flagTicks
	}
	if *flagListen != "" {
		cfg.Debug.Listen = *flagListen
	}
	if *flagJournal != "" {
		cfg.Journal.Dir = *flagJournal
	}
	if *flagInactive {
		cfg.Terrain.Active = false
	}
}
