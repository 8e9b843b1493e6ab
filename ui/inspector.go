package ui

import (
	"fmt"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/boids/components"
	"github.com/pthm-cable/boids/game"
	"github.com/pthm-cable/boids/systems"
)

// InspectorData holds what the inspector shows for the selected agent.
type InspectorData struct {
	Agent  game.AgentView
	Params *systems.KindParams
}

// Inspector renders the agent inspection panel.
type Inspector struct {
	renderer *Renderer
	panel    PanelDescriptor
	x, y     int32
}

// NewInspector creates a new inspector panel.
func NewInspector(x, y, width int32) *Inspector {
	return &Inspector{
		renderer: NewRenderer(),
		panel:    AgentPanel(width),
		x:        x,
		y:        y,
	}
}

// SetPosition updates the inspector position.
func (ins *Inspector) SetPosition(x, y int32) {
	ins.x = x
	ins.y = y
}

// Draw renders the inspector panel for the given data and returns the bottom Y.
func (ins *Inspector) Draw(data InspectorData) int32 {
	r := ins.renderer
	padding := r.Theme.Padding
	width := ins.panel.Width
	contentWidth := width - padding*2

	height := padding*2 + r.Theme.LineHeight + 4
	for _, sd := range ins.panel.Sections {
		height += r.SectionHeight(sd, &data)
	}
	r.DrawPanel(ins.x, ins.y, width, height)

	y := ins.y + padding
	rl.DrawText(ins.panel.Title, ins.x+padding, y, 16, rl.White)
	y += r.Theme.LineHeight + 4

	for _, sd := range ins.panel.Sections {
		y = r.DrawSection(ins.x+padding, y, sd, &data, contentWidth)
	}
	return y
}

// AgentPanel describes the inspector layout for an agent.
func AgentPanel(width int32) PanelDescriptor {
	return PanelDescriptor{
		ID:    "agent",
		Title: "Agent",
		Width: width,
		Sections: []SectionDescriptor{
			{
				ID:    "identity",
				Title: "Identity",
				Fields: []FieldDescriptor{
					{ID: "id", Label: "ID", Widget: WidgetText, TextGetter: func(d any) string {
						return fmt.Sprintf("%d", inspected(d).Agent.ID)
					}},
					{ID: "kind", Label: "Kind", Widget: WidgetText, TextGetter: func(d any) string {
						return inspected(d).Agent.Kind.String()
					}},
					{ID: "neighbors", Label: "Neighbors", Widget: WidgetText, Format: "%.0f", Getter: func(d any) float32 {
						return float32(inspected(d).Agent.Neighbors)
					}},
				},
			},
			{
				ID:    "motion",
				Title: "Motion",
				Fields: []FieldDescriptor{
					{ID: "position", Label: "Position", Widget: WidgetText, TextGetter: func(d any) string {
						p := inspected(d).Agent.Position
						return fmt.Sprintf("%.1f, %.1f", p.X, p.Y)
					}},
					{ID: "heading", Label: "Heading", Widget: WidgetText, Format: "%.0f°", Getter: func(d any) float32 {
						return float32(systems.Angle(inspected(d).Agent.Velocity) * 180 / math.Pi)
					}},
					{ID: "speed", Label: "Speed", Widget: WidgetBar, Getter: func(d any) float32 {
						data := inspected(d)
						return speedFraction(data.Agent.Velocity.X, data.Agent.Velocity.Y, data.Params.MaxSpeed)
					}, Range: DefaultRange()},
				},
			},
			{
				ID:    "forces",
				Title: "Forces (fraction of max accel)",
				Fields: []FieldDescriptor{
					forceField("flee", "Flee", func(f systems.Forces) (float64, float64) { return f.Flee.X, f.Flee.Y },
						func(k components.Kind) bool { return k == components.KindBoid }),
					forceField("chase", "Chase", func(f systems.Forces) (float64, float64) { return f.Chase.X, f.Chase.Y },
						func(k components.Kind) bool { return k == components.KindPredator }),
					forceField("separation", "Separation", func(f systems.Forces) (float64, float64) { return f.Separation.X, f.Separation.Y }, nil),
					forceField("alignment", "Alignment", func(f systems.Forces) (float64, float64) { return f.Alignment.X, f.Alignment.Y }, nil),
					forceField("cohesion", "Cohesion", func(f systems.Forces) (float64, float64) { return f.Cohesion.X, f.Cohesion.Y }, nil),
					forceField("total", "Total", func(f systems.Forces) (float64, float64) { return f.Acceleration.X, f.Acceleration.Y }, nil),
				},
			},
			{
				ID:    "debug",
				Title: "Debug",
				Fields: []FieldDescriptor{
					{ID: "overlays", Label: "Overlays", Widget: WidgetText, TextGetter: func(d any) string {
						if inspected(d).Agent.Debug.Any() {
							return "on"
						}
						return "off"
					}},
				},
			},
		},
	}
}

// forceField shows one steering vector as a fraction of the kind's acceleration cap.
func forceField(id, label string, pick func(systems.Forces) (float64, float64), only func(components.Kind) bool) FieldDescriptor {
	fd := FieldDescriptor{
		ID:     id,
		Label:  label,
		Widget: WidgetBar,
		Range:  DefaultRange(),
		Getter: func(d any) float32 {
			data := inspected(d)
			x, y := pick(data.Agent.Forces)
			return speedFraction(x, y, data.Params.MaxAcceleration)
		},
	}
	if only != nil {
		fd.Visible = func(d any) bool { return only(inspected(d).Agent.Kind) }
	}
	return fd
}

func inspected(d any) *InspectorData {
	return d.(*InspectorData)
}

// speedFraction returns |(x, y)| / limit, or 0 for a non-positive limit.
func speedFraction(x, y, limit float64) float32 {
	if limit <= 0 {
		return 0
	}
	return float32(math.Hypot(x, y) / limit)
}
