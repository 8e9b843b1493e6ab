// Package game owns the simulated world: agent storage, the per-tick update
// phases, restart and the read-only agent views handed to renderers.
package game

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/boids/components"
	"github.com/pthm-cable/boids/config"
	"github.com/pthm-cable/boids/systems"
	"github.com/pthm-cable/boids/telemetry"
)

// Options configures a World beyond the simulation config.
type Options struct {
	Seed      int64
	Logger    *slog.Logger // nil = slog.Default()
	LogStats  bool         // log each telemetry window
	OutputDir string       // CSV output directory (empty = disabled)

	// SnapshotDir, if set, receives a JSON snapshot on every bookmark.
	SnapshotDir string

	// StatsCallback, if set, receives every flushed telemetry window.
	StatsCallback func(telemetry.FlockStats)
}

// AgentView is a read-only copy of one agent as of the last completed tick.
type AgentView struct {
	ID       uint32
	Kind     components.Kind
	Position r2.Vec
	Velocity r2.Vec
	Rotation float64 // sprite rotation, atan2(vy, vx) + 90°

	VisionRange     float64
	SeparationRange float64

	Debug     components.Debug
	Forces    systems.Forces // per-rule vectors before accumulation, and the capped sum
	Neighbors int32
}

// World holds the complete simulation state.
type World struct {
	cfg    *config.Config
	rules  systems.Rulebook
	logger *slog.Logger
	rng    *rand.Rand
	seed   int64

	// Agent storage
	ecs    *ecs.World
	mapper *ecs.Map5[components.Position, components.Velocity, components.Agent, components.Steering, components.Debug]
	filter *ecs.Filter5[components.Position, components.Velocity, components.Agent, components.Steering, components.Debug]
	byID   map[uint32]ecs.Entity

	// Per-tick buffers
	grid      *systems.SpatialHashGrid
	snapshot  systems.Snapshot
	entities  []ecs.Entity // parallel to snapshot.Agents
	positions []r2.Vec
	results   []systems.Result
	views     []AgentView
	stale     bool // views need rebuilding from storage

	pool  *workerPool
	perf  *telemetry.PerfCollector
	stats *statsRecorder

	// State
	nextID       uint32
	tick         int32
	numBoids     int
	numPredators int
}

// NewWorld validates cfg, creates the world and spawns the configured population.
// Derived config values are recomputed first, so cfg may be edited in code beforehand.
func NewWorld(cfg *config.Config, opts Options) (*World, error) {
	cfg.ComputeDerived()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	grid, err := systems.NewSpatialHashGrid(cfg.Derived.CellSize, cfg.Derived.BucketCount)
	if err != nil {
		return nil, fmt.Errorf("creating spatial grid: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	w := &World{
		cfg:      cfg,
		rules:    systems.RulebookFromConfig(cfg),
		logger:   logger,
		rng:      rand.New(rand.NewSource(opts.Seed)),
		seed:     opts.Seed,
		grid:     grid,
		pool:     newWorkerPool(cfg.Parallel.Workers),
		perf:     telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
	}
	w.snapshot.Grid = grid

	w.stats, err = newStatsRecorder(cfg, opts, logger)
	if err != nil {
		return nil, err
	}

	w.Restart()
	return w, nil
}

// Config returns the configuration the world was built with.
func (w *World) Config() *config.Config { return w.cfg }

// Rules returns the active rulebook. Changes made through the pointer apply from the next tick.
func (w *World) Rules() *systems.Rulebook { return &w.rules }

// Perf returns the per-phase timing collector.
func (w *World) Perf() *telemetry.PerfCollector { return w.perf }

// Seed returns the RNG seed the world was created with.
func (w *World) Seed() int64 { return w.seed }

// TickCount returns the number of ticks since the last restart.
func (w *World) TickCount() int32 { return w.tick }

// Counts returns the live boid and predator counts.
func (w *World) Counts() (boids, predators int) { return w.numBoids, w.numPredators }

// Tick advances the simulation by the configured physics dt.
func (w *World) Tick() {
	w.Step(w.cfg.Physics.DT)
}

// Agents returns the agent views as of the last completed tick, in storage
// order. The slice is reused by the next tick; copy it to keep it.
func (w *World) Agents() []AgentView {
	if w.stale {
		w.rebuildViews()
	}
	return w.views
}

// Agent returns the view of a single agent.
func (w *World) Agent(id uint32) (AgentView, bool) {
	e, ok := w.byID[id]
	if !ok {
		return AgentView{}, false
	}
	pos, vel, agent, steer, dbg := w.mapper.Get(e)
	return w.view(pos, vel, agent, steer, dbg), true
}

// SetDebug replaces an agent's debug overlay flags.
func (w *World) SetDebug(id uint32, d components.Debug) bool {
	e, ok := w.byID[id]
	if !ok {
		return false
	}
	_, _, _, _, dbg := w.mapper.Get(e)
	*dbg = d
	w.stale = true
	return true
}

// Close stops the worker pool and flushes telemetry output.
func (w *World) Close() error {
	w.pool.stop()
	return w.stats.close()
}

func (w *World) view(pos *components.Position, vel *components.Velocity, agent *components.Agent,
	steer *components.Steering, dbg *components.Debug) AgentView {
	params := w.rules.Params(agent.Kind)
	v := r2.Vec(*vel)
	return AgentView{
		ID:              agent.ID,
		Kind:            agent.Kind,
		Position:        r2.Vec(*pos),
		Velocity:        v,
		Rotation:        systems.SpriteRotation(v),
		VisionRange:     params.VisionRange,
		SeparationRange: params.SeparationRange,
		Debug:           *dbg,
		Forces: systems.Forces{
			Flee:         steer.Flee,
			Separation:   steer.Separation,
			Alignment:    steer.Alignment,
			Cohesion:     steer.Cohesion,
			Chase:        steer.Chase,
			Acceleration: steer.Acceleration,
		},
		Neighbors: steer.Neighbors,
	}
}

// rebuildViews reads every agent back from storage.
func (w *World) rebuildViews() {
	w.views = w.views[:0]
	query := w.filter.Query()
	for query.Next() {
		pos, vel, agent, steer, dbg := query.Get()
		w.views = append(w.views, w.view(pos, vel, agent, steer, dbg))
	}
	w.stale = false
}
