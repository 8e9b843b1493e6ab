package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Renderer draws panels and descriptor rows in one Theme.
type Renderer struct {
	Theme Theme
}

// NewRenderer creates a renderer with the default theme.
func NewRenderer() *Renderer {
	return &Renderer{Theme: DefaultTheme()}
}

// DrawPanel fills a bordered panel background.
func (r *Renderer) DrawPanel(x, y, width, height int32) {
	rl.DrawRectangle(x, y, width, height, r.Theme.PanelBg)
	rl.DrawRectangleLines(x, y, width, height, r.Theme.PanelBorder)
}

// DrawSection draws the section title and its visible rows, returning the Y
// below the section. A hidden section draws nothing.
func (r *Renderer) DrawSection(x, y int32, sd SectionDescriptor, data any, width int32) int32 {
	if !shown(sd.Visible, data) {
		return y
	}
	th := &r.Theme
	if sd.Title != "" {
		rl.DrawText(sd.Title, x, y, th.HeaderFontSize, th.SectionHeader)
		y += th.LineHeight
	}
	for _, fd := range sd.Fields {
		if !shown(fd.Visible, data) {
			continue
		}
		r.drawField(x, y, fd, data, width)
		y += r.fieldHeight(fd)
	}
	return y + sectionGap
}

// SectionHeight is the height DrawSection would use for data.
func (r *Renderer) SectionHeight(sd SectionDescriptor, data any) int32 {
	if !shown(sd.Visible, data) {
		return 0
	}
	h := int32(sectionGap)
	if sd.Title != "" {
		h += r.Theme.LineHeight
	}
	for _, fd := range sd.Fields {
		if shown(fd.Visible, data) {
			h += r.fieldHeight(fd)
		}
	}
	return h
}

const (
	sectionGap  = 4
	spacerSize  = 6
	valueColumn = 50 // room right of a bar for its number
)

func (r *Renderer) fieldHeight(fd FieldDescriptor) int32 {
	switch fd.Widget {
	case WidgetBar:
		return r.Theme.LineHeight + 2
	case WidgetSpacer:
		return spacerSize
	}
	return r.Theme.LineHeight
}

func (r *Renderer) drawField(x, y int32, fd FieldDescriptor, data any, width int32) {
	th := &r.Theme
	switch fd.Widget {
	case WidgetText:
		rl.DrawText(fd.Label+":", x, y, th.FontSize, th.LabelColor)
		rl.DrawText(fieldText(fd, data), x+th.LabelWidth, y, th.FontSize, th.ValueColor)

	case WidgetBar:
		value := fieldValue(fd, data)
		ratio := normalize(value, fd.Range.Min, fd.Range.Max)
		barX := x + th.LabelWidth
		barW := width - th.LabelWidth - valueColumn

		fill := th.BarFill
		if ratio >= 1 {
			fill = th.BarSaturated
		}
		rl.DrawText(fd.Label+":", x, y, th.FontSize, th.LabelColor)
		rl.DrawRectangle(barX, y+2, barW, th.BarHeight, th.BarBg)
		rl.DrawRectangle(barX, y+2, int32(float32(barW)*ratio), th.BarHeight, fill)
		rl.DrawText(fmt.Sprintf("%.2f", value), barX+barW+5, y, th.FontSize, th.ValueColor)
	}
}

func shown(visible func(any) bool, data any) bool {
	return visible == nil || visible(data)
}

// fieldText prefers TextGetter, then formats Getter with Format.
func fieldText(fd FieldDescriptor, data any) string {
	switch {
	case fd.TextGetter != nil:
		return fd.TextGetter(data)
	case fd.Getter != nil:
		return fmt.Sprintf(fd.Format, fd.Getter(data))
	}
	return ""
}

func fieldValue(fd FieldDescriptor, data any) float32 {
	if fd.Getter == nil {
		return 0
	}
	return fd.Getter(data)
}

// normalize maps value into [0, 1] over [lo, hi]; an empty range maps to 0.
func normalize(value, lo, hi float32) float32 {
	if hi <= lo {
		return 0
	}
	return min(max((value-lo)/(hi-lo), 0), 1)
}
