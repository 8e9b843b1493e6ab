package systems

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/boids/components"
	"github.com/pthm-cable/boids/config"
)

// Rulebook bundles everything an agent update needs besides the tick snapshot.
type Rulebook struct {
	Boid     KindParams
	Predator KindParams
	Rules    Rules
	Bounds   Bounds

	// PredatorBruteForceMax is the largest predator count that is scanned
	// linearly instead of through the grid.
	PredatorBruteForceMax int
}

// RulebookFromConfig builds a Rulebook from a loaded config.
func RulebookFromConfig(cfg *config.Config) Rulebook {
	return Rulebook{
		Boid:                  ParamsFromConfig(cfg.Boid),
		Predator:              ParamsFromConfig(cfg.Predator),
		Rules:                 RulesFromConfig(cfg.Rules),
		Bounds:                BoundsFromConfig(cfg),
		PredatorBruteForceMax: cfg.Population.PredatorBruteForceMax,
	}
}

// Params returns the tunables for a kind.
func (rb *Rulebook) Params(k components.Kind) *KindParams {
	if k == components.KindPredator {
		return &rb.Predator
	}
	return &rb.Boid
}

// Snapshot is the read-only state every agent observes during one tick.
type Snapshot struct {
	Agents    []AgentState
	Grid      *SpatialHashGrid
	Predators []int32 // indices of predators in Agents
}

// Perception holds one agent's visible neighbours, split by kind.
// Reuse a Perception across agents to avoid allocations; it is not safe for concurrent use.
type Perception struct {
	Boids      []Neighbor
	Predators  []Neighbor
	candidates []int32
}

// Gather fills p with every agent other than self within vision of self.
func (p *Perception) Gather(self AgentState, snap *Snapshot, vision float64, bruteForcePredators bool) {
	p.Boids = p.Boids[:0]
	p.Predators = p.Predators[:0]
	visionSq := vision * vision

	p.candidates = snap.Grid.QueryInto(p.candidates[:0], self.Pos, vision)
	for _, idx := range p.candidates {
		other := &snap.Agents[idx]
		if other.Kind == components.KindPredator && bruteForcePredators {
			continue
		}
		p.consider(self, idx, other, visionSq)
	}

	if bruteForcePredators {
		for _, idx := range snap.Predators {
			p.consider(self, idx, &snap.Agents[idx], visionSq)
		}
	}
}

func (p *Perception) consider(self AgentState, idx int32, other *AgentState, visionSq float64) {
	if other.ID == self.ID {
		return
	}
	delta := Between(self.Pos, other.Pos)
	distSq := r2.Norm2(delta)
	if distSq > visionSq {
		return
	}
	n := Neighbor{Index: idx, Pos: other.Pos, Vel: other.Vel, Delta: delta, DistSq: distSq}
	if other.Kind == components.KindPredator {
		p.Predators = append(p.Predators, n)
	} else {
		p.Boids = append(p.Boids, n)
	}
}

// Result is the outcome of one agent update.
type Result struct {
	Pos       r2.Vec
	Vel       r2.Vec
	Forces    Forces
	Neighbors int32 // visible agents of the same kind
}

// Update runs one agent's full tick against the snapshot: perception,
// steering, accumulation, containment and integration. It only reads snap.
func (rb *Rulebook) Update(self AgentState, snap *Snapshot, p *Perception, dt float64) Result {
	params := rb.Params(self.Kind)
	brute := len(snap.Predators) <= rb.PredatorBruteForceMax
	p.Gather(self, snap, params.VisionRange, brute)

	var forces Forces
	var own int
	switch self.Kind {
	case components.KindPredator:
		forces = SteerPredator(self, p.Boids, p.Predators, params, rb.Rules)
		own = len(p.Predators)
	default:
		forces = SteerBoid(self, p.Boids, p.Predators, params, rb.Rules)
		own = len(p.Boids)
	}

	pos, vel := Integrate(self.Pos, self.Vel, forces.Acceleration, params, &rb.Bounds, dt)
	return Result{Pos: pos, Vel: vel, Forces: forces, Neighbors: int32(own)}
}
