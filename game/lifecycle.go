package game

import (
	"math"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/boids/components"
	"github.com/pthm-cable/boids/telemetry"
)

// Restart discards every agent and respawns the configured population at
// random positions with random headings. Agent ids start again from zero.
func (w *World) Restart() {
	w.reset(0)

	for i := 0; i < w.cfg.Population.Boids; i++ {
		w.spawnRandom(components.KindBoid)
	}
	for i := 0; i < w.cfg.Population.Predators; i++ {
		w.spawnRandom(components.KindPredator)
	}
	w.applyDebugSelection()

	w.logger.Info("world restarted",
		"boids", w.numBoids,
		"predators", w.numPredators,
		"width", w.rules.Bounds.Width,
		"height", w.rules.Bounds.Height,
	)
}

// Spawn adds one agent and returns its id. It is visible to queries from the next tick.
// A zero vel has no direction to clamp, so the agent gets a random heading at
// its kind's minimum speed instead.
func (w *World) Spawn(kind components.Kind, pos, vel r2.Vec) uint32 {
	if vel == (r2.Vec{}) {
		minSpeed := w.rules.Params(kind).MinSpeed
		vel = w.randomVelocity(minSpeed, minSpeed)
	}
	id := w.nextID
	w.nextID++
	w.spawnWithID(id, kind, pos, vel)
	return id
}

// Snapshot dumps every agent for offline inspection. bm and stats describe
// what triggered it and may be nil.
func (w *World) Snapshot(bm *telemetry.Bookmark, stats *telemetry.FlockStats) *telemetry.Snapshot {
	agents := w.Agents()
	s := &telemetry.Snapshot{
		Version:     telemetry.SnapshotVersion,
		RNGSeed:     w.seed,
		Tick:        w.tick,
		WorldWidth:  w.rules.Bounds.Width,
		WorldHeight: w.rules.Bounds.Height,
		Bookmark:    bm,
		Stats:       stats,
		Agents:      make([]telemetry.AgentState, 0, len(agents)),
	}
	for i := range agents {
		a := &agents[i]
		s.Agents = append(s.Agents, telemetry.NewAgentState(a.ID, a.Kind, a.Position, a.Velocity, a.Forces.Acceleration, a.Neighbors))
	}
	return s
}

// reset drops all agents and starts a fresh agent store.
func (w *World) reset(tick int32) {
	w.ecs = ecs.NewWorld()
	w.mapper = ecs.NewMap5[
		components.Position, components.Velocity, components.Agent,
		components.Steering, components.Debug,
	](w.ecs)
	w.filter = ecs.NewFilter5[
		components.Position, components.Velocity, components.Agent,
		components.Steering, components.Debug,
	](w.ecs)
	w.byID = make(map[uint32]ecs.Entity)

	w.nextID = 0
	w.tick = tick
	w.numBoids = 0
	w.numPredators = 0
	w.grid.Clear()
	w.views = w.views[:0]
	w.stale = true
	w.stats.reset(tick)
}

// spawnRandom places an agent uniformly inside the world, heading in a
// random direction at a speed within its kind's range.
func (w *World) spawnRandom(kind components.Kind) uint32 {
	params := w.rules.Params(kind)
	b := &w.rules.Bounds

	pos := r2.Vec{X: w.rng.Float64() * b.Width, Y: w.rng.Float64() * b.Height}
	return w.Spawn(kind, pos, w.randomVelocity(params.MinSpeed, params.MaxSpeed))
}

// randomVelocity draws a uniform heading and a speed in [lo, hi].
func (w *World) randomVelocity(lo, hi float64) r2.Vec {
	heading := w.rng.Float64() * 2 * math.Pi
	speed := lo + w.rng.Float64()*(hi-lo)
	return r2.Vec{X: math.Cos(heading) * speed, Y: math.Sin(heading) * speed}
}

func (w *World) spawnWithID(id uint32, kind components.Kind, pos, vel r2.Vec) {
	p := components.Position(pos)
	v := components.Velocity(vel)
	agent := components.Agent{ID: id, Kind: kind}
	steer := components.Steering{}
	dbg := components.Debug{}

	w.byID[id] = w.mapper.NewEntity(&p, &v, &agent, &steer, &dbg)
	if kind == components.KindPredator {
		w.numPredators++
	} else {
		w.numBoids++
	}
	w.stale = true
}

// applyDebugSelection turns on every overlay for the lowest-id boid and
// predator when the config asks for it.
func (w *World) applyDebugSelection() {
	if w.cfg.Debug.Boid {
		if id, ok := w.FirstOfKind(components.KindBoid); ok {
			w.SetDebug(id, components.AllDebug())
		}
	}
	if w.cfg.Debug.Predator {
		if id, ok := w.FirstOfKind(components.KindPredator); ok {
			w.SetDebug(id, components.AllDebug())
		}
	}
}
