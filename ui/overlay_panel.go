package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const swatchSize = 8

// OverlayPanel lists every overlay with its key, its state and the colours
// it draws with, so the panel doubles as the debug colour legend.
type OverlayPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
}

// NewOverlayPanel creates a hidden overlay panel.
func NewOverlayPanel(x, y, width int32) *OverlayPanel {
	return &OverlayPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// IsVisible returns whether the panel is shown.
func (p *OverlayPanel) IsVisible() bool { return p.visible }

// Toggle flips visibility and returns the new state.
func (p *OverlayPanel) Toggle() bool {
	p.visible = !p.visible
	return p.visible
}

// Height returns the panel height for the given registry.
func (p *OverlayPanel) Height(overlays *OverlayRegistry) int32 {
	theme := p.renderer.Theme
	rows := 2 // title and debugged-count footer
	for _, cat := range overlays.Categories() {
		rows += len(overlays.ByCategory(cat)) + 1
	}
	return int32(rows)*theme.LineHeight + theme.Padding*2
}

// Draw renders the panel. debugged is the number of agents the agent
// overlays currently apply to. It returns the y below the panel.
func (p *OverlayPanel) Draw(overlays *OverlayRegistry, debugged int) int32 {
	if !p.visible {
		return p.y
	}

	r := p.renderer
	theme := r.Theme
	r.DrawPanel(p.x, p.y, p.width, p.Height(overlays))

	x := p.x + theme.Padding
	y := p.y + theme.Padding
	rl.DrawText("Overlays", x, y, theme.HeaderFontSize+4, rl.White)
	y += theme.LineHeight

	for _, category := range overlays.Categories() {
		rl.DrawText(categoryLabel(category), x, y, theme.HeaderFontSize, theme.SectionHeader)
		y += theme.LineHeight
		for _, desc := range overlays.ByCategory(category) {
			p.drawRow(x, y, desc, overlays.IsEnabled(desc.ID))
			y += theme.LineHeight
		}
	}

	footer := "No agent debugged: click one or press D"
	if debugged > 0 {
		footer = fmt.Sprintf("%d agent(s) debugged", debugged)
	}
	rl.DrawText(footer, x, y, theme.FontSize, theme.LabelColor)
	return p.y + p.Height(overlays)
}

func (p *OverlayPanel) drawRow(x, y int32, desc OverlayDescriptor, enabled bool) {
	theme := p.renderer.Theme
	innerW := p.width - theme.Padding*2

	// One swatch per colour; dimmed when the overlay is off.
	for i, c := range desc.Swatches {
		c.A = 255
		if !enabled {
			c = rl.ColorAlpha(c, 0.25)
		}
		rl.DrawRectangle(x+int32(i)*(swatchSize+2), y+2, swatchSize, swatchSize, c)
	}

	nameColor := theme.LabelColor
	if enabled {
		nameColor = rl.White
	}
	rl.DrawText(desc.Name, x+2*(swatchSize+2)+4, y, theme.FontSize, nameColor)

	if desc.KeyLabel != "" {
		keyText := "[" + desc.KeyLabel + "]"
		keyWidth := rl.MeasureText(keyText, theme.FontSize)
		rl.DrawText(keyText, x+innerW-keyWidth, y, theme.FontSize, theme.ValueColor)
	}
}
