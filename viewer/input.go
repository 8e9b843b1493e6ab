package viewer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/boids/components"
	"github.com/pthm-cable/boids/ui"
)

// handleInput processes keyboard and mouse input.
func (v *Viewer) handleInput() {
	v.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		v.paused = !v.paused
	}
	if rl.IsKeyPressed(rl.KeyR) {
		v.restart()
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && v.stepsPerUpdate > 1 {
		v.stepsPerUpdate--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && v.stepsPerUpdate < maxStepsPerUpdate {
		v.stepsPerUpdate++
	}

	if rl.IsKeyPressed(rl.KeyD) {
		v.toggleFirstBoidDebug()
	}
	if rl.IsKeyPressed(rl.KeyF) {
		v.following = !v.following
		v.followSelected()
	}
	if rl.IsKeyPressed(rl.KeyTab) {
		v.tuning.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyF1) {
		v.overlayPanel.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyF2) {
		v.showPerf = !v.showPerf
	}

	v.handleOverlayKeys()
	v.handleCameraInput()
	v.handleSelection()
}

// handleOverlayKeys toggles overlays and pushes agent overlay changes to
// every debugged agent.
func (v *Viewer) handleOverlayKeys() {
	for key := rl.GetKeyPressed(); key != 0; key = rl.GetKeyPressed() {
		id, _, ok := v.overlays.HandleKeyPress(key)
		if !ok {
			continue
		}
		if desc, _ := v.overlays.Get(id); desc.Category == ui.CategoryAgent {
			v.applyDebugFlags()
		}
	}
}

// toggleFirstBoidDebug flips debug overlays on the lowest-id boid.
func (v *Viewer) toggleFirstBoidDebug() {
	id, ok := v.world.FirstOfKind(components.KindBoid)
	if !ok {
		return
	}
	v.setDebugged(id, !v.debugged[id])
}

// handleResize checks for window resize and propagates new dimensions.
func (v *Viewer) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == v.screenWidth && h == v.screenHeight {
		return
	}
	v.screenWidth = w
	v.screenHeight = h

	v.camera.Resize(w, h)
	v.inspector.SetPosition(int32(w)-inspectorWidth-10, 10)
	v.tuning.SetPosition(int32(w)-tuningWidth-10, 10)
}

// handleCameraInput processes camera pan/zoom controls.
func (v *Viewer) handleCameraInput() {
	// Pan speed scales inversely with zoom for natural feel
	panSpeed := float32(8.0) / v.camera.Zoom

	if rl.IsKeyDown(rl.KeyRight) {
		v.camera.Pan(panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		v.camera.Pan(-panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		v.camera.Pan(0, panSpeed)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		v.camera.Pan(0, -panSpeed)
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		mouse := rl.GetMousePosition()
		v.camera.ZoomAt(1+wheel*0.1, mouse.X, mouse.Y)
	}
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		v.camera.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		v.camera.ZoomBy(0.8)
	}

	if rl.IsKeyPressed(rl.KeyHome) {
		v.camera.Reset()
	}
}

// handleSelection picks the agent under a left click and drops it on a right click.
// The selected agent is debugged for as long as it stays selected.
func (v *Viewer) handleSelection() {
	if rl.IsMouseButtonPressed(rl.MouseButtonRight) {
		v.deselect()
		return
	}
	if !rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		return
	}

	mouse := rl.GetMousePosition()
	if v.tuning.Contains(mouse.X, mouse.Y) {
		return
	}

	wx, wy := v.camera.ScreenToWorld(mouse.X, mouse.Y)
	radius := float64(selectRadius / v.camera.Zoom)
	id, ok := v.world.AgentAt(r2.Vec{X: float64(wx), Y: float64(wy)}, radius)
	if !ok {
		return
	}
	v.deselect()
	v.selected = id
	v.hasSelected = true
	v.setDebugged(id, true)
}

func (v *Viewer) deselect() {
	if !v.hasSelected {
		return
	}
	v.setDebugged(v.selected, false)
	v.hasSelected = false
}
