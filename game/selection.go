package game

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/boids/components"
)

// AgentAt returns the agent closest to p within radius, if any.
func (w *World) AgentAt(p r2.Vec, radius float64) (uint32, bool) {
	var (
		closest uint32
		found   bool
	)
	best := radius * radius

	query := w.filter.Query()
	for query.Next() {
		pos, _, agent, _, _ := query.Get()
		d := r2.Sub(r2.Vec(*pos), p)
		if dist := r2.Norm2(d); dist <= best {
			best = dist
			closest = agent.ID
			found = true
		}
	}
	return closest, found
}

// FirstOfKind returns the lowest live id of the given kind.
func (w *World) FirstOfKind(kind components.Kind) (uint32, bool) {
	var (
		first uint32
		found bool
	)
	query := w.filter.Query()
	for query.Next() {
		_, _, agent, _, _ := query.Get()
		if agent.Kind != kind {
			continue
		}
		if !found || agent.ID < first {
			first = agent.ID
			found = true
		}
	}
	return first, found
}
