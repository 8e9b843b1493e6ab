package game

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/boids/components"
)

func TestAgentAt(t *testing.T) {
	w := newTestWorld(t, testConfig(), Options{})
	a := w.Spawn(components.KindBoid, r2.Vec{X: 100, Y: 100}, r2.Vec{X: 10})
	b := w.Spawn(components.KindPredator, r2.Vec{X: 110, Y: 100}, r2.Vec{X: 10})

	tests := []struct {
		name   string
		p      r2.Vec
		radius float64
		wantID uint32
		wantOK bool
	}{
		{"exact hit", r2.Vec{X: 100, Y: 100}, 5, a, true},
		{"closer to second", r2.Vec{X: 108, Y: 100}, 20, b, true},
		{"out of range", r2.Vec{X: 500, Y: 500}, 20, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := w.AgentAt(tt.p, tt.radius)
			if ok != tt.wantOK || (ok && id != tt.wantID) {
				t.Errorf("AgentAt = (%d, %v), want (%d, %v)", id, ok, tt.wantID, tt.wantOK)
			}
		})
	}
}

func TestFirstOfKind(t *testing.T) {
	w := newTestWorld(t, testConfig(), Options{})

	if _, ok := w.FirstOfKind(components.KindBoid); ok {
		t.Fatal("empty world should have no boids")
	}

	w.Spawn(components.KindPredator, r2.Vec{X: 10, Y: 10}, r2.Vec{X: 10})
	boid := w.Spawn(components.KindBoid, r2.Vec{X: 20, Y: 20}, r2.Vec{X: 10})
	w.Spawn(components.KindBoid, r2.Vec{X: 30, Y: 30}, r2.Vec{X: 10})

	id, ok := w.FirstOfKind(components.KindBoid)
	if !ok || id != boid {
		t.Errorf("FirstOfKind(boid) = (%d, %v), want (%d, true)", id, ok, boid)
	}
}
