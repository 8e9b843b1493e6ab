package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/boids/systems"
)

// TunableParam is one live-editable float on a KindParams.
type TunableParam struct {
	Label    string
	Min, Max float32
	Field    func(*systems.KindParams) *float64
}

// BoidTunables lists the boid parameters exposed by the tuning panel.
var BoidTunables = []TunableParam{
	{Label: "Separation", Min: 0, Max: 1, Field: func(p *systems.KindParams) *float64 { return &p.SeparationMultiplier }},
	{Label: "Alignment", Min: 0, Max: 1, Field: func(p *systems.KindParams) *float64 { return &p.AlignmentMultiplier }},
	{Label: "Cohesion", Min: 0, Max: 0.02, Field: func(p *systems.KindParams) *float64 { return &p.CohesionMultiplier }},
	{Label: "Flee", Min: 0, Max: 5, Field: func(p *systems.KindParams) *float64 { return &p.FleeMultiplier }},
	{Label: "Vision range", Min: 10, Max: 300, Field: func(p *systems.KindParams) *float64 { return &p.VisionRange }},
	{Label: "Max speed", Min: 100, Max: 1000, Field: func(p *systems.KindParams) *float64 { return &p.MaxSpeed }},
}

// PredatorTunables lists the predator parameters exposed by the tuning panel.
var PredatorTunables = []TunableParam{
	{Label: "Chase", Min: 0, Max: 2, Field: func(p *systems.KindParams) *float64 { return &p.ChaseMultiplier }},
	{Label: "Separation", Min: 0, Max: 1, Field: func(p *systems.KindParams) *float64 { return &p.SeparationMultiplier }},
	{Label: "Max speed", Min: 100, Max: 1000, Field: func(p *systems.KindParams) *float64 { return &p.MaxSpeed }},
}

// TuningPanel edits rulebook parameters with raygui sliders.
type TuningPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
}

// NewTuningPanel creates a hidden tuning panel.
func NewTuningPanel(x, y, width int32) *TuningPanel {
	return &TuningPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (t *TuningPanel) SetPosition(x, y int32) {
	t.x = x
	t.y = y
}

// Toggle switches panel visibility.
func (t *TuningPanel) Toggle() bool {
	t.visible = !t.visible
	return t.visible
}

// IsVisible returns whether the panel is shown.
func (t *TuningPanel) IsVisible() bool {
	return t.visible
}

// Contains reports whether a screen point lies over the visible panel.
func (t *TuningPanel) Contains(x, y float32) bool {
	if !t.visible {
		return false
	}
	return rl.CheckCollisionPointRec(rl.Vector2{X: x, Y: y}, t.bounds())
}

// Draw renders the sliders, writing edits into rules.
// It reports whether the restart button was pressed.
func (t *TuningPanel) Draw(rules *systems.Rulebook) (restart bool) {
	if !t.visible {
		return false
	}

	r := t.renderer
	b := t.bounds()
	r.DrawPanel(t.x, t.y, t.width, int32(b.Height))

	padding := float32(r.Theme.Padding)
	x := float32(t.x) + padding
	y := float32(t.y) + padding
	sliderW := float32(t.width) - padding*2 - 60

	rl.DrawText("Tuning", int32(x), int32(y), 16, rl.White)
	y += 24

	y = t.drawGroup("Boid", BoidTunables, &rules.Boid, x, y, sliderW)
	y = t.drawGroup("Predator", PredatorTunables, &rules.Predator, x, y, sliderW)

	return gui.Button(rl.Rectangle{X: x, Y: y, Width: 120, Height: 26}, "Restart")
}

func (t *TuningPanel) drawGroup(title string, params []TunableParam, kp *systems.KindParams, x, y, sliderW float32) float32 {
	theme := t.renderer.Theme
	rl.DrawText(title, int32(x), int32(y), theme.HeaderFontSize, theme.SectionHeader)
	y += 18

	for _, p := range params {
		field := p.Field(kp)
		rl.DrawText(p.Label, int32(x), int32(y), theme.FontSize, theme.LabelColor)
		y += 14
		v := gui.SliderBar(
			rl.Rectangle{X: x, Y: y, Width: sliderW, Height: 16},
			"", "",
			float32(*field), p.Min, p.Max,
		)
		rl.DrawText(fmt.Sprintf("%.4g", *field), int32(x+sliderW+8), int32(y+2), theme.FontSize, theme.ValueColor)
		if v != float32(*field) {
			*field = float64(v)
			kp.SeparationRange = min(kp.SeparationRange, kp.VisionRange)
			kp.MinSpeed = min(kp.MinSpeed, kp.MaxSpeed)
		}
		y += 22
	}
	return y + 6
}

func (t *TuningPanel) bounds() rl.Rectangle {
	rows := len(BoidTunables) + len(PredatorTunables)
	h := float32(t.renderer.Theme.Padding)*2 + 24 + 2*24 + float32(rows)*36 + 32
	return rl.Rectangle{X: float32(t.x), Y: float32(t.y), Width: float32(t.width), Height: h}
}
