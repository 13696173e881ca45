package stream

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/tristream/internal/journal"
	"github.com/Faultbox/tristream/internal/terrain"
	"github.com/Faultbox/tristream/internal/workpool"
	"github.com/Faultbox/tristream/pkg/tricoord"
)

// ChunkGenerator produces a finished chunk from its address. Implementations
// are called from worker goroutines and must be safe for concurrent use.
type ChunkGenerator interface {
	Generate(tc tricoord.TriCoord) (*terrain.ChunkData, error)
}

// Spawner receives every successfully generated chunk on the main loop.
type Spawner interface {
	Spawn(chunk *terrain.ChunkData, material string) error
}

// MaterialChanger is implemented by spawners that can switch the material of
// chunks they already placed.
type MaterialChanger interface {
	SetMaterial(material string) error
}

// EventRecorder receives lifecycle events. *journal.Writer implements it.
type EventRecorder interface {
	Record(e journal.Event) error
}

// TickReport summarises what one tick did.
type TickReport struct {
	InRange    int `json:"in_range"`
	Dispatched int `json:"dispatched"`
	Finalized  int `json:"finalized"`
	Failed     int `json:"failed"`
	Pending    int `json:"pending"`
}

// Options configures a Scheduler. Generator is required; a nil Pool gets one
// worker per CPU and a nil Control starts active with a radius of 20.
type Options struct {
	Generator ChunkGenerator
	Pool      *workpool.Pool
	Control   *Control
	Spawner   Spawner
	Journal   EventRecorder
	Logger    *zap.Logger
}

type pendingChunk struct {
	task    *workpool.Task[*terrain.ChunkData]
	started time.Time
}

// Scheduler runs the per-tick streaming cycle. Tick must be called from a
// single goroutine; Snapshot may be called from any goroutine.
type Scheduler struct {
	reg     *Registry
	ctl     *Control
	gen     ChunkGenerator
	pool    *workpool.Pool
	spawner Spawner
	events  EventRecorder
	log     *zap.Logger

	tick     uint64
	material string // last material handed to the spawner
	pending map[tricoord.TriCoord]*pendingChunk
	order   []tricoord.TriCoord // dispatch order of pending, for stable polling

	player      tricoord.Coord[float32]
	playerKnown bool

	snap atomic.Pointer[Snapshot]
	now  func() time.Time
}

// NewScheduler creates a scheduler with an empty registry.
func NewScheduler(opts Options) (*Scheduler, error) {
	if opts.Generator == nil {
		return nil, errors.New("stream: scheduler needs a generator")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Pool == nil {
		opts.Pool = workpool.New(0, opts.Logger)
	}
	if opts.Control == nil {
		opts.Control = NewControl(ControlValues{Radius: 20, Active: true})
	}

	s := &Scheduler{
		reg:     NewRegistry(),
		ctl:     opts.Control,
		gen:     opts.Generator,
		pool:    opts.Pool,
		spawner: opts.Spawner,
		events:  opts.Journal,
		log:      opts.Logger,
		material: opts.Control.Material(),
		pending:  make(map[tricoord.TriCoord]*pendingChunk),
		now:      time.Now,
	}
	s.publish(TickReport{})
	return s, nil
}

// Registry returns the scheduler's registry. It must only be used from the
// goroutine calling Tick.
func (s *Scheduler) Registry() *Registry { return s.reg }

// Control returns the runtime controls.
func (s *Scheduler) Control() *Control { return s.ctl }

// Pending returns the number of outstanding generation tasks.
func (s *Scheduler) Pending() int { return len(s.pending) }

// Snapshot returns the state published by the most recent tick.
func (s *Scheduler) Snapshot() *Snapshot { return s.snap.Load() }

// Tick runs one streaming cycle. A material change since the previous tick is
// applied to already placed chunks first. When known is false the player
// position is unavailable: the in-range set is kept and nothing new is
// dispatched, but finished tasks are still collected.
func (s *Scheduler) Tick(pos tricoord.Coord[float32], known bool) TickReport {
	s.tick++
	var rep TickReport
	s.syncMaterial()

	if known {
		s.player, s.playerKnown = pos, true
		s.reg.ReplaceInRange(tricoord.WorldRadiusToChunks(pos, s.ctl.Radius()))
		if s.ctl.Active() {
			rep.Dispatched = s.dispatch()
		}
	} else {
		s.log.Debug("player position unknown, skipping dispatch", zap.Uint64("tick", s.tick))
	}

	rep.Finalized, rep.Failed = s.collect()
	rep.InRange = s.reg.Counts().InRange
	rep.Pending = len(s.pending)

	s.publish(rep)
	return rep
}

// syncMaterial re-skins placed chunks when the selected material changed.
func (s *Scheduler) syncMaterial() {
	m := s.ctl.Material()
	if m == s.material {
		return
	}
	s.material = m
	mc, ok := s.spawner.(MaterialChanger)
	if !ok {
		return
	}
	if err := mc.SetMaterial(m); err != nil {
		s.log.Warn("terrain material change failed", zap.String("material", m), zap.Error(err))
		return
	}
	s.log.Info("terrain material changed", zap.String("material", m), zap.Uint64("tick", s.tick))
}

func (s *Scheduler) dispatch() int {
	n := 0
	for _, tc := range s.reg.InRange() {
		if !s.reg.NeedsGeneration(tc) {
			continue
		}
		if err := s.reg.MarkGenerating(tc); err != nil {
			s.log.Error("registry rejected dispatch", zap.Error(err))
			continue
		}

		coord := tc
		gen := s.gen
		s.pending[tc] = &pendingChunk{
			task: workpool.Go(s.pool, func() (*terrain.ChunkData, error) {
				return gen.Generate(coord)
			}),
			started: s.now(),
		}
		s.order = append(s.order, tc)
		s.record(journal.Event{Kind: journal.KindDispatched, Coord: tc})
		n++
	}
	if n > 0 {
		s.log.Debug("dispatched chunks", zap.Uint64("tick", s.tick), zap.Int("count", n))
	}
	return n
}

// collect polls every pending task once and finalizes the finished ones.
func (s *Scheduler) collect() (finalized, failed int) {
	kept := s.order[:0]
	for _, tc := range s.order {
		p := s.pending[tc]
		chunk, done, err := p.task.Poll()
		if !done {
			kept = append(kept, tc)
			continue
		}
		delete(s.pending, tc)
		elapsed := s.now().Sub(p.started)

		if err == nil && (chunk == nil || chunk.Mesh == nil) {
			err = fmt.Errorf("generator returned no mesh for %v", tc)
		}
		if err != nil {
			s.fail(tc, elapsed, err)
			failed++
			continue
		}
		s.finalize(tc, chunk, elapsed)
		finalized++
	}
	clear(s.order[len(kept):])
	s.order = kept
	return finalized, failed
}

func (s *Scheduler) fail(tc tricoord.TriCoord, elapsed time.Duration, cause error) {
	s.log.Error("chunk generation failed",
		zap.Stringer("coord", tc),
		zap.Duration("elapsed", elapsed),
		zap.Error(cause))
	if err := s.reg.MarkFailed(tc); err != nil {
		s.log.Error("registry rejected failure", zap.Error(err))
	}
	s.record(journal.Event{Kind: journal.KindFailed, Coord: tc, Duration: elapsed, Error: cause.Error()})
}

func (s *Scheduler) finalize(tc tricoord.TriCoord, chunk *terrain.ChunkData, elapsed time.Duration) {
	if s.spawner != nil {
		if err := s.spawner.Spawn(chunk, s.material); err != nil {
			s.log.Warn("chunk spawn failed", zap.Stringer("coord", tc), zap.Error(err))
			s.record(journal.Event{Kind: journal.KindSpawnFailed, Coord: tc, Error: err.Error()})
		}
	}
	if err := s.reg.MarkGenerated(tc); err != nil {
		s.log.Error("registry rejected completion", zap.Error(err))
		return
	}
	s.log.Debug("chunk generated",
		zap.Stringer("coord", tc),
		zap.Duration("elapsed", elapsed),
		zap.Int("triangles", chunk.Mesh.TriangleCount()))
	s.record(journal.Event{Kind: journal.KindGenerated, Coord: tc, Duration: elapsed})
}

func (s *Scheduler) record(e journal.Event) {
	if s.events == nil {
		return
	}
	e.Tick = s.tick
	if err := s.events.Record(e); err != nil {
		s.log.Warn("journal write failed", zap.Error(err))
	}
}

// Drain waits for every dispatched task and finalizes them. It must be called
// from the goroutine calling Tick.
func (s *Scheduler) Drain() TickReport {
	s.pool.Wait()
	s.syncMaterial()
	var rep TickReport
	rep.Finalized, rep.Failed = s.collect()
	rep.InRange = s.reg.Counts().InRange
	rep.Pending = len(s.pending)
	s.publish(rep)
	return rep
}

func (s *Scheduler) publish(rep TickReport) {
	snap := &Snapshot{
		Tick:        s.tick,
		PlayerKnown: s.playerKnown,
		Player:      s.player,
		Control:     s.ctl.Values(),
		Counts:      s.reg.Counts(),
		InRange:     s.reg.InRange(),
		Generating:  s.reg.Generating(),
		Generated:   s.reg.Generated(),
		Failed:      s.reg.Failed(),
		Report:      rep,
	}
	if s.playerKnown {
		p := s.player.Float64()
		snap.PlayerChunk = tricoord.WorldToTriCoord(p)
		snap.Halfsides, snap.Altitudes = tricoord.TriCoordToHalfsideAltitude(snap.PlayerChunk)
	}
	s.snap.Store(snap)
}
