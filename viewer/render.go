package viewer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/boids/renderer"
	"github.com/pthm-cable/boids/ui"
)

// Draw renders one frame.
func (v *Viewer) Draw() {
	rl.BeginDrawing()
	defer rl.EndDrawing()

	if v.overlays.IsEnabled(ui.OverlayBounds) {
		v.background.Draw(v.camera)
	} else {
		rl.ClearBackground(renderer.BackgroundColor)
	}
	if v.overlays.IsEnabled(ui.OverlayGrid) {
		v.grid.Draw(v.camera)
	}

	agents := v.world.Agents()
	v.agents.Draw(v.camera, agents)
	v.debug.Draw(v.camera, agents, v.world.Rules())

	v.drawUI()
}

func (v *Viewer) drawUI() {
	v.hud.Draw(v.hudData())

	if v.overlayPanel.IsVisible() {
		v.overlayPanel.Draw(v.overlays, len(v.debugged))
	} else if v.showPerf {
		v.perfPanel.Draw(v.world.Perf().Stats())
	}

	if v.tuning.IsVisible() {
		if v.tuning.Draw(v.world.Rules()) {
			v.restart()
		}
	} else if v.hasSelected {
		if agent, ok := v.world.Agent(v.selected); ok {
			v.inspector.Draw(ui.InspectorData{Agent: agent, Params: v.world.Rules().Params(agent.Kind)})
		}
	}

	v.hud.DrawControls(int32(v.screenHeight), controlsLegend)
}
