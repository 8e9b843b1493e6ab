// Package components defines ECS components for the simulation.
package components

import "gonum.org/v1/gonum/spatial/r2"

// Kind identifies which rule set drives an agent.
type Kind uint8

const (
	KindBoid Kind = iota
	KindPredator
)

// String returns the kind name used in logs and telemetry.
func (k Kind) String() string {
	switch k {
	case KindBoid:
		return "boid"
	case KindPredator:
		return "predator"
	default:
		return "unknown"
	}
}

// Position represents an agent's world position.
type Position r2.Vec

// Velocity represents an agent's velocity in world units per second.
type Velocity r2.Vec

// Agent holds identity. ID is unique among live agents since the last restart.
type Agent struct {
	ID   uint32
	Kind Kind
}

// Steering holds the force vectors computed during the last tick.
// They are kept for inspection only; nothing reads them back into the update.
type Steering struct {
	Flee         r2.Vec
	Separation   r2.Vec
	Alignment    r2.Vec
	Cohesion     r2.Vec
	Chase        r2.Vec
	Acceleration r2.Vec // capped sum before gravity
	Neighbors    int32  // visible agents of the agent's own kind
}

// Debug selects which overlays a renderer should draw for an agent.
type Debug struct {
	Vision     bool
	Separation bool
	Alignment  bool
	Cohesion   bool
	Chase      bool
}

// Any reports whether at least one overlay is enabled.
func (d Debug) Any() bool {
	return d.Vision || d.Separation || d.Alignment || d.Cohesion || d.Chase
}

// AllDebug returns a Debug with every overlay enabled.
func AllDebug() Debug {
	return Debug{Vision: true, Separation: true, Alignment: true, Cohesion: true, Chase: true}
}
