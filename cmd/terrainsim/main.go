// terrainsim drives a headless terrain streaming session: a scripted walker
// moves across the lattice while chunks are generated around it.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Faultbox/tristream/internal/config"
	"github.com/Faultbox/tristream/internal/logger"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if path := config.WriteConfigPath(); path != "" {
		if err := cfg.SaveTo(path); err != nil {
			fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("wrote %s\n", path)
		return
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== tristream terrain session ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := newSession(cfg, logger.Log)
	if err != nil {
		logger.Error("failed to create session", zap.Error(err))
		os.Exit(1)
	}

	sum, err := s.run(ctx)
	if err != nil {
		logger.Error("session error", zap.Error(err))
		os.Exit(1)
	}

	fmt.Printf("ticks=%d generated=%d failed=%d spawned=%d triangles=%d\n",
		sum.Ticks, sum.Generated, sum.Failed, sum.Spawned, sum.Triangles)
	logger.Info("session finished normally")
}
