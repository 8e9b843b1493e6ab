// Package renderer draws the world, its agents and debug overlays with raylib.
package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/boids/camera"
)

// BackgroundColor fills everything outside and inside the world.
var BackgroundColor = rl.Color{R: 50, G: 53, B: 89, A: 255}

// MarginColor outlines the turn margin inside the world.
var MarginColor = rl.Color{R: 70, G: 74, B: 115, A: 255}

// BackgroundRenderer clears the frame and outlines the world and its turn margin.
type BackgroundRenderer struct {
	worldW, worldH float32
	margin         float32

	borderColor rl.Color
	marginColor rl.Color
}

// NewBackgroundRenderer creates a background for a world of the given size.
// margin <= 0 hides the margin outline.
func NewBackgroundRenderer(worldW, worldH, margin float32) *BackgroundRenderer {
	return &BackgroundRenderer{
		worldW:      worldW,
		worldH:      worldH,
		margin:      margin,
		borderColor: rl.Color{R: 90, G: 95, B: 140, A: 255},
		marginColor: MarginColor,
	}
}

// Draw clears the screen and draws the world outlines through cam.
func (b *BackgroundRenderer) Draw(cam *camera.Camera) {
	rl.ClearBackground(BackgroundColor)

	b.drawRect(cam, 0, 0, b.worldW, b.worldH, b.borderColor)
	if b.margin > 0 {
		b.drawRect(cam, b.margin, b.margin, b.worldW-2*b.margin, b.worldH-2*b.margin, b.marginColor)
	}
}

func (b *BackgroundRenderer) drawRect(cam *camera.Camera, x, y, w, h float32, color rl.Color) {
	sx, sy := cam.WorldToScreen(x, y)
	rl.DrawRectangleLinesEx(rl.Rectangle{
		X:      sx,
		Y:      sy,
		Width:  cam.ScaleLength(w),
		Height: cam.ScaleLength(h),
	}, 1, color)
}
