package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/boids/camera"
)

// GridColor is the colour of the spatial hash cell lines.
var GridColor = rl.Color{R: 255, G: 255, B: 255, A: 24}

// GridRenderer draws the spatial hash cell lines over the world.
type GridRenderer struct {
	cellSize       float32
	worldW, worldH float32
}

// NewGridRenderer creates a grid overlay for the given cell size.
func NewGridRenderer(cellSize, worldW, worldH float32) *GridRenderer {
	return &GridRenderer{
		cellSize: cellSize,
		worldW:   worldW,
		worldH:   worldH,
	}
}

// Draw renders the cell lines that fall inside the world.
func (g *GridRenderer) Draw(cam *camera.Camera) {
	if g.cellSize <= 0 {
		return
	}
	for x := float32(0); x <= g.worldW; x += g.cellSize {
		sx, sy := cam.WorldToScreen(x, 0)
		ex, ey := cam.WorldToScreen(x, g.worldH)
		rl.DrawLineV(rl.Vector2{X: sx, Y: sy}, rl.Vector2{X: ex, Y: ey}, GridColor)
	}
	for y := float32(0); y <= g.worldH; y += g.cellSize {
		sx, sy := cam.WorldToScreen(0, y)
		ex, ey := cam.WorldToScreen(g.worldW, y)
		rl.DrawLineV(rl.Vector2{X: sx, Y: sy}, rl.Vector2{X: ex, Y: ey}, GridColor)
	}
}
