package main

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/tristream/internal/config"
	"github.com/Faultbox/tristream/internal/debugsrv"
	"github.com/Faultbox/tristream/internal/journal"
	"github.com/Faultbox/tristream/internal/scene"
	"github.com/Faultbox/tristream/internal/stream"
	"github.com/Faultbox/tristream/internal/terrain"
	"github.com/Faultbox/tristream/internal/workpool"
	"github.com/Faultbox/tristream/pkg/tricoord"
)

// walker moves in a straight line at constant speed.
type walker struct {
	start tricoord.Coord[float32]
	dirX  float32
	dirZ  float32
	speed float32 // world units per second
}

func newWalker(cfg config.SessionConfig) walker {
	rad := float64(cfg.WalkHeading) * math.Pi / 180
	return walker{
		start: tricoord.Coord[float32]{X: cfg.StartX, Z: cfg.StartZ},
		dirX:  float32(math.Cos(rad)),
		dirZ:  float32(math.Sin(rad)),
		speed: cfg.WalkSpeed,
	}
}

// at returns the position after elapsed seconds.
func (w walker) at(elapsed float64) tricoord.Coord[float32] {
	d := w.speed * float32(elapsed)
	return tricoord.Coord[float32]{X: w.start.X + w.dirX*d, Z: w.start.Z + w.dirZ*d}
}

// summary is printed when a session ends.
type summary struct {
	Ticks     int
	Generated int
	Failed    int
	Spawned   int
	Triangles int
}

type session struct {
	cfg     *config.Config
	log     *zap.Logger
	pool    *workpool.Pool
	sched   *stream.Scheduler
	scene   *scene.Scene
	journal *journal.Writer
	debug   debugServer
	walker  walker
}

// debugServer is the part of *debugsrv.Server the session drives.
type debugServer interface {
	ListenAndServe(ctx context.Context) error
}

func newSession(cfg *config.Config, log *zap.Logger) (*session, error) {
	gen := terrain.NewGenerator(
		terrain.NoiseConfig{
			Seed:        cfg.Terrain.Seed,
			Octaves:     cfg.Terrain.Octaves,
			Persistence: cfg.Terrain.Persistence,
			Lacunarity:  cfg.Terrain.Lacunarity,
		},
		terrain.HeightRange{Min: cfg.Terrain.HeightMin, Max: cfg.Terrain.HeightMax},
	)

	sc := scene.New(log.Named("scene"), scene.DefaultMaterials()...)
	if _, ok := sc.Material(cfg.Debug.Material); !ok {
		return nil, fmt.Errorf("debug.material %q is not one of %v", cfg.Debug.Material, sc.MaterialNames())
	}

	s := &session{
		cfg:    cfg,
		log:    log,
		pool:   workpool.New(cfg.Terrain.Workers, log.Named("workpool")),
		scene:  sc,
		walker: newWalker(cfg.Session),
	}

	opts := stream.Options{
		Generator: gen,
		Pool:      s.pool,
		Spawner:   s.scene,
		Logger:    log.Named("stream"),
		Control: stream.NewControl(stream.ControlValues{
			Radius:      cfg.Terrain.GenRadius,
			Active:      cfg.Terrain.Active,
			Material:    cfg.Debug.Material,
			OriginGizmo: cfg.Debug.OriginGizmo,
			ChunkGizmo:  cfg.Debug.ChunkGizmo,
		}),
	}

	if cfg.Journal.Dir != "" {
		w, err := journal.Create(cfg.Journal.Dir)
		if err != nil {
			return nil, err
		}
		s.journal = w
		opts.Journal = w
		log.Info("journal enabled", zap.String("path", w.Path()))
	}

	sched, err := stream.NewScheduler(opts)
	if err != nil {
		s.closeJournal()
		return nil, err
	}
	s.sched = sched

	if cfg.Debug.Listen != "" {
		s.debug = debugsrv.New(debugsrv.Config{
			Addr:         cfg.Debug.Listen,
			PushInterval: cfg.Debug.PushInterval,
		}, sched, sched.Control(), log.Named("debugsrv"))
	}
	return s, nil
}

// run ticks until the configured tick count is reached, ctx is cancelled or
// the debug server fails, then waits for outstanding chunks.
func (s *session) run(ctx context.Context) (summary, error) {
	defer s.closeJournal()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var srvErr chan error
	if s.debug != nil {
		srvErr = make(chan error, 1)
		go func() { srvErr <- s.debug.ListenAndServe(ctx) }()
	}

	tickRate := s.cfg.Session.TickRate
	ticker := time.NewTicker(time.Second / time.Duration(tickRate))
	defer ticker.Stop()

	var sum summary
	var runErr error
	ticks := s.cfg.Session.Ticks

loop:
	for ticks == 0 || sum.Ticks < ticks {
		select {
		case <-ctx.Done():
			break loop
		case err := <-srvErr:
			srvErr = nil
			if err != nil {
				runErr = fmt.Errorf("debug server: %w", err)
				break loop
			}
			continue
		case <-ticker.C:
		}

		pos := s.walker.at(float64(sum.Ticks) / float64(tickRate))
		rep := s.sched.Tick(pos, true)
		sum.Ticks++
		sum.Generated += rep.Finalized
		sum.Failed += rep.Failed

		if sum.Ticks%tickRate == 0 {
			s.log.Info("streaming",
				zap.Int("tick", sum.Ticks),
				zap.Float32("x", pos.X),
				zap.Float32("z", pos.Z),
				zap.Int("in_range", rep.InRange),
				zap.Int("pending", rep.Pending),
				zap.Int("generated", sum.Generated))
		}
	}

	rep := s.sched.Drain()
	sum.Generated += rep.Finalized
	sum.Failed += rep.Failed
	sum.Spawned = s.scene.Len()
	sum.Triangles = s.scene.TriangleCount()

	cancel()
	if srvErr != nil {
		if err := <-srvErr; err != nil && runErr == nil {
			runErr = fmt.Errorf("debug server: %w", err)
		}
	}
	return sum, runErr
}

func (s *session) closeJournal() {
	if s.journal == nil {
		return
	}
	if err := s.journal.Close(); err != nil {
		s.log.Warn("journal close failed", zap.Error(err))
	}
	s.journal = nil
}
