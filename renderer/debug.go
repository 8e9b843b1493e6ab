package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/boids/camera"
	"github.com/pthm-cable/boids/game"
	"github.com/pthm-cable/boids/systems"
)

// Overlay colours, shared with the overlay legend.
var (
	VisionColor          = rl.Green
	SeparationColor      = rl.Red
	SeparationForceColor = rl.White
	AlignmentColor       = rl.Red
	CohesionColor        = rl.Green
	ChaseColor           = rl.Orange
	FleeColor            = rl.Yellow
)

// DebugRenderer draws range circles and steering vectors for agents with debug flags set.
type DebugRenderer struct {
	// ForceScale maps a force equal to the agent's maximum acceleration to
	// this fraction of its vision range.
	ForceScale float64
}

// NewDebugRenderer creates a debug renderer.
func NewDebugRenderer() *DebugRenderer {
	return &DebugRenderer{ForceScale: 1}
}

// Draw renders overlays for every agent whose debug flags ask for them.
// Force lines are scaled by the kind's acceleration cap from rules.
func (r *DebugRenderer) Draw(cam *camera.Camera, agents []game.AgentView, rules *systems.Rulebook) {
	for i := range agents {
		a := &agents[i]
		if !a.Debug.Any() {
			continue
		}

		if a.Debug.Vision {
			r.circle(cam, a.Position, a.VisionRange, VisionColor)
		}
		if a.Debug.Separation {
			r.circle(cam, a.Position, a.SeparationRange, SeparationColor)
		}

		scale := 0.0
		if m := rules.Params(a.Kind).MaxAcceleration; m > 0 {
			scale = r.ForceScale * a.VisionRange / m
		}
		if a.Debug.Separation {
			r.force(cam, a.Position, a.Forces.Separation, scale, SeparationForceColor)
		}
		if a.Debug.Alignment {
			r.force(cam, a.Position, a.Forces.Alignment, scale, AlignmentColor)
		}
		if a.Debug.Cohesion {
			r.force(cam, a.Position, a.Forces.Cohesion, scale, CohesionColor)
		}
		if a.Debug.Chase {
			r.force(cam, a.Position, a.Forces.Chase, scale, ChaseColor)
			r.force(cam, a.Position, a.Forces.Flee, scale, FleeColor)
		}
	}
}

func (r *DebugRenderer) circle(cam *camera.Camera, center r2.Vec, radius float64, color rl.Color) {
	sx, sy := cam.WorldToScreen(float32(center.X), float32(center.Y))
	rl.DrawCircleLinesV(rl.Vector2{X: sx, Y: sy}, cam.ScaleLength(float32(radius)), color)
}

func (r *DebugRenderer) force(cam *camera.Camera, from, f r2.Vec, scale float64, color rl.Color) {
	if f == (r2.Vec{}) || scale == 0 {
		return
	}
	to := r2.Add(from, r2.Scale(scale, f))
	sx, sy := cam.WorldToScreen(float32(from.X), float32(from.Y))
	ex, ey := cam.WorldToScreen(float32(to.X), float32(to.Y))
	rl.DrawLineEx(rl.Vector2{X: sx, Y: sy}, rl.Vector2{X: ex, Y: ey}, 2, color)
}
