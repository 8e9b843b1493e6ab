package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/boids/camera"
	"github.com/pthm-cable/boids/components"
	"github.com/pthm-cable/boids/game"
)

// Agent sprite sizes in world units (tip-to-base length, half base width).
const (
	boidLength    = 14
	boidHalfWidth = 5
	predLength    = 24
	predHalfWidth = 9
)

var (
	boidColor          = rl.Color{R: 124, G: 129, B: 196, A: 255}
	predatorColor      = rl.White
	predatorDebugColor = rl.Red
)

// AgentRenderer draws agents as triangles pointing along their velocity.
type AgentRenderer struct{}

// NewAgentRenderer creates a new agent renderer.
func NewAgentRenderer() *AgentRenderer {
	return &AgentRenderer{}
}

// Draw renders every visible agent.
func (r *AgentRenderer) Draw(cam *camera.Camera, agents []game.AgentView) {
	for i := range agents {
		a := &agents[i]
		x, y := float32(a.Position.X), float32(a.Position.Y)

		length, halfWidth, color := float32(boidLength), float32(boidHalfWidth), boidColor
		if a.Kind == components.KindPredator {
			length, halfWidth, color = predLength, predHalfWidth, predatorColor
			if a.Debug.Vision {
				color = predatorDebugColor
			}
		}

		if !cam.IsVisible(x, y, length) {
			continue
		}
		sx, sy := cam.WorldToScreen(x, y)
		tip, left, right := triangle(sx, sy, float32(a.Rotation), cam.ScaleLength(length), cam.ScaleLength(halfWidth))
		rl.DrawTriangle(tip, left, right, color)
	}
}

// triangle returns the corners of a sprite centered on (cx, cy) that points
// up at rotation 0 and turns clockwise on screen, in counter-clockwise order.
func triangle(cx, cy, rotation, length, halfWidth float32) (tip, left, right rl.Vector2) {
	sin, cos := math.Sincos(float64(rotation))
	s, c := float32(sin), float32(cos)
	rotate := func(x, y float32) rl.Vector2 {
		return rl.Vector2{X: cx + x*c - y*s, Y: cy + x*s + y*c}
	}
	return rotate(0, -length/2), rotate(-halfWidth, length/2), rotate(halfWidth, length/2)
}
