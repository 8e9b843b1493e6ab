package game

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/boids/components"
	"github.com/pthm-cable/boids/systems"
	"github.com/pthm-cable/boids/telemetry"
)

// Step advances the simulation by dt seconds.
//
// Every agent observes the same state: positions and velocities are copied
// into a snapshot, the grid is rebuilt from it, all updates are computed
// against it and only then written back.
func (w *World) Step(dt float64) {
	w.perf.StartTick()

	w.perf.StartPhase(telemetry.PhaseSnapshot)
	w.takeSnapshot()

	w.perf.StartPhase(telemetry.PhaseSpatialGrid)
	w.grid.Rebuild(w.positions)

	w.perf.StartPhase(telemetry.PhaseSteering)
	w.computeResults(dt)

	w.perf.StartPhase(telemetry.PhaseApply)
	w.applyResults()
	w.tick++

	w.perf.StartPhase(telemetry.PhaseTelemetry)
	w.flushTelemetry()

	w.perf.EndTick(len(w.snapshot.Agents))
}

// takeSnapshot copies every agent's state into the read-only tick snapshot.
func (w *World) takeSnapshot() {
	snap := &w.snapshot
	snap.Agents = snap.Agents[:0]
	snap.Predators = snap.Predators[:0]
	w.entities = w.entities[:0]
	w.positions = w.positions[:0]

	query := w.filter.Query()
	for query.Next() {
		pos, vel, agent, _, _ := query.Get()
		if agent.Kind == components.KindPredator {
			snap.Predators = append(snap.Predators, int32(len(snap.Agents)))
		}
		snap.Agents = append(snap.Agents, systems.AgentState{
			ID:   agent.ID,
			Kind: agent.Kind,
			Pos:  r2.Vec(*pos),
			Vel:  r2.Vec(*vel),
		})
		w.entities = append(w.entities, query.Entity())
		w.positions = append(w.positions, r2.Vec(*pos))
	}
}

// computeResults runs every agent update, in parallel for large populations.
func (w *World) computeResults(dt float64) {
	n := len(w.snapshot.Agents)
	if cap(w.results) < n {
		w.results = make([]systems.Result, n)
	}
	w.results = w.results[:n]
	if n == 0 {
		return
	}

	if n < w.cfg.Parallel.Threshold || w.pool.size < 2 {
		w.computeChunk(0, n, &w.pool.scratches[0], dt)
		return
	}
	w.computeParallel(n, dt)
}

// computeChunk updates agents [i0, i1) against the snapshot.
func (w *World) computeChunk(i0, i1 int, scratch *systems.Perception, dt float64) {
	for i := i0; i < i1; i++ {
		w.results[i] = w.rules.Update(w.snapshot.Agents[i], &w.snapshot, scratch, dt)
	}
}

// applyResults writes results back to storage and refreshes the views.
func (w *World) applyResults() {
	w.views = w.views[:0]
	samples := w.stats.samples[:0]

	for i, e := range w.entities {
		res := &w.results[i]
		pos, vel, agent, steer, dbg := w.mapper.Get(e)

		*pos = components.Position(res.Pos)
		*vel = components.Velocity(res.Vel)
		*steer = components.Steering{
			Flee:         res.Forces.Flee,
			Separation:   res.Forces.Separation,
			Alignment:    res.Forces.Alignment,
			Cohesion:     res.Forces.Cohesion,
			Chase:        res.Forces.Chase,
			Acceleration: res.Forces.Acceleration,
			Neighbors:    res.Neighbors,
		}

		w.views = append(w.views, w.view(pos, vel, agent, steer, dbg))
		samples = append(samples, telemetry.AgentSample{
			Kind:         agent.Kind,
			Velocity:     res.Vel,
			Acceleration: res.Forces.Acceleration,
			Neighbors:    res.Neighbors,
		})
	}

	w.stats.samples = samples
	w.stale = false
}
