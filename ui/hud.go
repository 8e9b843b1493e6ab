package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/boids/telemetry"
)

// HUDData is everything the top-left status block shows.
type HUDData struct {
	Title        string
	BoidCount    int
	PredCount    int
	Tick         int32
	Speed        int
	FPS          int32
	Paused       bool
	Polarization float64 // from the last telemetry window
	MeanSpeed    float64
	Zoom         float32
}

// Lines returns the status rows below the title.
func (d HUDData) Lines() []string {
	state := "Running"
	if d.Paused {
		state = "PAUSED"
	}
	return []string{
		fmt.Sprintf("Boids: %d | Predators: %d", d.BoidCount, d.PredCount),
		fmt.Sprintf("Tick: %d | Speed: %dx | FPS: %d | Zoom: %.2f", d.Tick, d.Speed, d.FPS, d.Zoom),
		fmt.Sprintf("Polarization: %.2f | Mean speed: %.1f", d.Polarization, d.MeanSpeed),
		state,
	}
}

// HUD draws the status block and the key legend.
type HUD struct {
	theme Theme
}

// NewHUD creates a HUD with the default theme.
func NewHUD() *HUD {
	return &HUD{theme: DefaultTheme()}
}

// Draw renders data in the top-left corner.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)
	lines := data.Lines()
	y := int32(35)
	for i, line := range lines {
		color := h.theme.LabelColor
		if i == len(lines)-1 {
			color = h.theme.SectionHeader
		}
		rl.DrawText(line, 10, y, 16, color)
		y += 20
	}
}

// DrawControls renders the key legend along the bottom edge.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// phaseColors tints each tick phase in the perf panel's stacked bar.
var phaseColors = [telemetry.NumPhases]rl.Color{
	telemetry.PhaseSnapshot:    {R: 120, G: 160, B: 220, A: 255},
	telemetry.PhaseSpatialGrid: {R: 110, G: 200, B: 140, A: 255},
	telemetry.PhaseSteering:    {R: 230, G: 170, B: 80, A: 255},
	telemetry.PhaseApply:       {R: 200, G: 110, B: 200, A: 255},
	telemetry.PhaseTelemetry:   {R: 170, G: 170, B: 170, A: 255},
}

// PerfPanel shows tick timing: a stacked bar of phase shares and one row per phase.
type PerfPanel struct {
	theme Theme
	x, y  int32
	width int32
}

// NewPerfPanel creates a perf panel at (x, y).
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{theme: DefaultTheme(), x: x, y: y, width: 260}
}

// Draw renders stats.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	th := &p.theme
	x, y := p.x, p.y

	rl.DrawText("Tick Phases", x, y, 16, rl.White)
	y += 20
	rl.DrawText(fmt.Sprintf("Tick: %s  p95 %s (%.0f TPS)", stats.AvgTickDuration, stats.P95TickDuration, stats.TicksPerSecond),
		x, y, 14, th.SectionHeader)
	y += 16
	rl.DrawText(fmt.Sprintf("%.2fM agent updates/s", stats.AgentUpdatesPerSecond/1e6), x, y, th.FontSize, th.LabelColor)
	y += 16

	rl.DrawRectangle(x, y, p.width, th.BarHeight, th.BarBg)
	segX := float32(x)
	for _, phase := range telemetry.Phases {
		w := float32(p.width) * float32(stats.PhasePct[phase]) / 100
		rl.DrawRectangle(int32(segX), y, int32(w+0.5), th.BarHeight, phaseColors[phase])
		segX += w
	}
	y += th.BarHeight + 4

	for _, phase := range telemetry.Phases {
		rl.DrawRectangle(x, y+2, 8, 8, phaseColors[phase])
		rl.DrawText(fmt.Sprintf("%-14s %10s %5.1f%%", phase, stats.PhaseAvg[phase], stats.PhasePct[phase]),
			x+12, y, th.FontSize, phaseTextColor(stats.PhasePct[phase]))
		y += 14
	}
}

// phaseTextColor flags phases that dominate the tick.
func phaseTextColor(pct float64) rl.Color {
	switch {
	case pct > 50:
		return rl.Red
	case pct > 25:
		return rl.Orange
	}
	return rl.LightGray
}
