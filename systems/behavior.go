package systems

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/boids/components"
	"github.com/pthm-cable/boids/config"
)

// KindParams holds the tunables for one agent kind.
type KindParams struct {
	VisionRange     float64
	SeparationRange float64
	MaxAcceleration float64
	MinSpeed        float64
	MaxSpeed        float64

	FleeMultiplier       float64
	ChaseMultiplier      float64
	SeparationMultiplier float64
	AlignmentMultiplier  float64
	CohesionMultiplier   float64

	EdgeTurnSpeed       float64
	GravityAcceleration float64
}

// ParamsFromConfig converts a config table into KindParams.
func ParamsFromConfig(a config.AgentConfig) KindParams {
	return KindParams{
		VisionRange:          a.VisionRange,
		SeparationRange:      a.SeparationRange,
		MaxAcceleration:      a.MaxAcceleration,
		MinSpeed:             a.MinSpeed,
		MaxSpeed:             a.MaxSpeed,
		FleeMultiplier:       a.FleeMultiplier,
		ChaseMultiplier:      a.ChaseMultiplier,
		SeparationMultiplier: a.SeparationMultiplier,
		AlignmentMultiplier:  a.AlignmentMultiplier,
		CohesionMultiplier:   a.CohesionMultiplier,
		EdgeTurnSpeed:        a.EdgeTurnSpeed,
		GravityAcceleration:  a.GravityAcceleration,
	}
}

// SeparationWeighting selects how neighbours inside the separation range push.
type SeparationWeighting uint8

const (
	// SeparationSum sums the raw inverted displacements.
	SeparationSum SeparationWeighting = iota
	// SeparationInverseDistance scales each push by (range/distance)², so
	// closer neighbours push harder. At the range edge it matches SeparationSum.
	SeparationInverseDistance
)

// AlignmentMode selects what "average heading" means.
type AlignmentMode uint8

const (
	// AlignmentVelocity steers toward the mean neighbour velocity.
	AlignmentVelocity AlignmentMode = iota
	// AlignmentHeading steers toward the mean neighbour direction at the agent's own speed.
	AlignmentHeading
)

// Rules selects the force formula variants.
type Rules struct {
	Separation SeparationWeighting
	Alignment  AlignmentMode
}

// RulesFromConfig converts the rules section of the config.
func RulesFromConfig(c config.RulesConfig) Rules {
	var r Rules
	if c.Separation == config.SeparationInverseDistance {
		r.Separation = SeparationInverseDistance
	}
	if c.Alignment == config.AlignmentHeading {
		r.Alignment = AlignmentHeading
	}
	return r
}

// AgentState is the read-only view of one agent for a tick.
type AgentState struct {
	ID   uint32
	Kind components.Kind
	Pos  r2.Vec
	Vel  r2.Vec
}

// Neighbor is a visible agent with its displacement precomputed.
type Neighbor struct {
	Index  int32  // index into the tick snapshot
	Pos    r2.Vec
	Vel    r2.Vec
	Delta  r2.Vec // Pos minus the observer's position
	DistSq float64
}

// Forces holds every steering vector for one agent and tick, already scaled by
// its multiplier, plus the capped sum.
type Forces struct {
	Flee         r2.Vec
	Separation   r2.Vec
	Alignment    r2.Vec
	Cohesion     r2.Vec
	Chase        r2.Vec
	Acceleration r2.Vec
}

// FleeForce sums the inverted displacements to every predator.
func FleeForce(predators []Neighbor) r2.Vec {
	var total r2.Vec
	for _, n := range predators {
		total = r2.Add(total, n.Delta)
	}
	return Invert(total)
}

// SeparationForce pushes away from every neighbour within sepRange.
func SeparationForce(neighbors []Neighbor, sepRange float64, w SeparationWeighting) r2.Vec {
	sepSq := sepRange * sepRange
	var total r2.Vec
	for _, n := range neighbors {
		if n.DistSq > sepSq {
			continue
		}
		switch w {
		case SeparationInverseDistance:
			if n.DistSq == 0 {
				continue
			}
			total = r2.Add(total, r2.Scale(sepSq/n.DistSq, n.Delta))
		default:
			total = r2.Add(total, n.Delta)
		}
	}
	return Invert(total)
}

// AlignmentForce steers toward the average heading of the neighbours outside sepRange.
func AlignmentForce(vel r2.Vec, neighbors []Neighbor, sepRange float64, mode AlignmentMode) r2.Vec {
	sepSq := sepRange * sepRange
	var total r2.Vec
	count := 0
	for _, n := range neighbors {
		if n.DistSq <= sepSq {
			continue
		}
		if mode == AlignmentHeading {
			total = r2.Add(total, Unit(n.Vel))
		} else {
			total = r2.Add(total, n.Vel)
		}
		count++
	}
	if count == 0 {
		return r2.Vec{}
	}
	avg := r2.Scale(1/float64(count), total)
	if mode == AlignmentHeading {
		avg = r2.Scale(Magnitude(vel), Unit(avg))
	}
	return Between(vel, avg)
}

// CohesionForce steers toward the centroid of the neighbours outside sepRange.
func CohesionForce(pos r2.Vec, neighbors []Neighbor, sepRange float64) r2.Vec {
	sepSq := sepRange * sepRange
	var total r2.Vec
	count := 0
	for _, n := range neighbors {
		if n.DistSq <= sepSq {
			continue
		}
		total = r2.Add(total, n.Pos)
		count++
	}
	if count == 0 {
		return r2.Vec{}
	}
	return Between(pos, r2.Scale(1/float64(count), total))
}

// ChaseForce points from pos to the centroid of the visible prey.
func ChaseForce(pos r2.Vec, prey []Neighbor) r2.Vec {
	if len(prey) == 0 {
		return r2.Vec{}
	}
	var total r2.Vec
	for _, n := range prey {
		total = r2.Add(total, n.Pos)
	}
	return Between(pos, r2.Scale(1/float64(len(prey)), total))
}

// SteerBoid computes a boid's forces. Priority: flee, separation, alignment, cohesion.
func SteerBoid(self AgentState, boids, predators []Neighbor, p *KindParams, rules Rules) Forces {
	if len(boids) == 0 && len(predators) == 0 {
		return Forces{}
	}

	f := Forces{
		Flee:       r2.Scale(p.FleeMultiplier, FleeForce(predators)),
		Separation: r2.Scale(p.SeparationMultiplier, SeparationForce(boids, p.SeparationRange, rules.Separation)),
		Alignment:  r2.Scale(p.AlignmentMultiplier, AlignmentForce(self.Vel, boids, p.SeparationRange, rules.Alignment)),
		Cohesion:   r2.Scale(p.CohesionMultiplier, CohesionForce(self.Pos, boids, p.SeparationRange)),
	}

	acc := NewAccumulator(p.MaxAcceleration)
	acc.Add(f.Flee)
	acc.Add(f.Separation)
	acc.Add(f.Alignment)
	acc.Add(f.Cohesion)
	f.Acceleration = acc.Value()
	return f
}

// SteerPredator computes a predator's forces. Priority: chase, separation.
// Separation only considers other predators.
func SteerPredator(self AgentState, boids, predators []Neighbor, p *KindParams, rules Rules) Forces {
	if len(boids) == 0 && len(predators) == 0 {
		return Forces{}
	}

	f := Forces{
		Chase:      r2.Scale(p.ChaseMultiplier, ChaseForce(self.Pos, boids)),
		Separation: r2.Scale(p.SeparationMultiplier, SeparationForce(predators, p.SeparationRange, rules.Separation)),
	}

	acc := NewAccumulator(p.MaxAcceleration)
	acc.Add(f.Chase)
	acc.Add(f.Separation)
	f.Acceleration = acc.Value()
	return f
}

// Integrate advances one agent by dt given its capped steering acceleration.
//
// The previous velocity is clamped to the speed range before this tick's
// acceleration is applied, then gravity and containment act, and the position
// moves with the integrated velocity. The stored velocity is clamped again so
// the speed range holds between ticks.
func Integrate(pos, vel, accel r2.Vec, p *KindParams, b *Bounds, dt float64) (r2.Vec, r2.Vec) {
	vel = ClampMagnitude(vel, p.MinSpeed, p.MaxSpeed)
	accel.Y += p.GravityAcceleration
	vel = b.Contain(pos, vel, p.EdgeTurnSpeed, dt)

	vel = r2.Add(vel, r2.Scale(dt, accel))
	pos = r2.Add(pos, r2.Scale(dt, vel))
	pos = b.Wrap(pos)

	return pos, ClampMagnitude(vel, p.MinSpeed, p.MaxSpeed)
}
