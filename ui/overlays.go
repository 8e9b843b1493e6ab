package ui

import (
	"slices"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/boids/components"
	"github.com/pthm-cable/boids/renderer"
)

// OverlayID uniquely identifies an overlay.
type OverlayID string

// Overlay IDs.
const (
	OverlayVision     OverlayID = "vision"
	OverlaySeparation OverlayID = "separation"
	OverlayAlignment  OverlayID = "alignment"
	OverlayCohesion   OverlayID = "cohesion"
	OverlayChase      OverlayID = "chase"
	OverlayGrid       OverlayID = "grid"
	OverlayBounds     OverlayID = "bounds"
)

// Overlay categories.
const (
	CategoryAgent = "agent" // applied to the debugged agents' flags
	CategoryWorld = "world"
)

// OverlayDescriptor defines an overlay that can be toggled.
type OverlayDescriptor struct {
	ID       OverlayID
	Name     string
	Key      int32  // toggle key (0 = none)
	KeyLabel string // e.g. "V"
	Category string

	// Swatches are the colours the overlay draws with, shown in the legend.
	Swatches []rl.Color
}

// defaultOverlays mirrors what renderer.DebugRenderer, GridRenderer and
// BackgroundRenderer draw.
var defaultOverlays = []OverlayDescriptor{
	{OverlayVision, "Vision range", rl.KeyV, "V", CategoryAgent, []rl.Color{renderer.VisionColor}},
	{OverlaySeparation, "Separation", rl.KeyS, "S", CategoryAgent, []rl.Color{renderer.SeparationColor, renderer.SeparationForceColor}},
	{OverlayAlignment, "Alignment", rl.KeyA, "A", CategoryAgent, []rl.Color{renderer.AlignmentColor}},
	{OverlayCohesion, "Cohesion", rl.KeyC, "C", CategoryAgent, []rl.Color{renderer.CohesionColor}},
	{OverlayChase, "Chase / flee", rl.KeyH, "H", CategoryAgent, []rl.Color{renderer.ChaseColor, renderer.FleeColor}},
	{OverlayGrid, "Spatial grid", rl.KeyG, "G", CategoryWorld, []rl.Color{renderer.GridColor}},
	{OverlayBounds, "Bounds", rl.KeyB, "B", CategoryWorld, []rl.Color{renderer.MarginColor}},
}

// OverlayRegistry tracks which overlays are on.
type OverlayRegistry struct {
	descriptors []OverlayDescriptor // registration order
	enabled     map[OverlayID]bool
}

// NewOverlayRegistry creates a registry with the default overlays.
// Agent overlays start on so that debugged agents show everything.
func NewOverlayRegistry() *OverlayRegistry {
	reg := &OverlayRegistry{enabled: make(map[OverlayID]bool)}
	for _, desc := range defaultOverlays {
		reg.Register(desc)
		reg.enabled[desc.ID] = desc.Category == CategoryAgent
	}
	reg.enabled[OverlayBounds] = true
	return reg
}

// Register adds a disabled overlay. Registering an existing ID replaces its descriptor.
func (r *OverlayRegistry) Register(desc OverlayDescriptor) {
	if i := r.index(desc.ID); i >= 0 {
		r.descriptors[i] = desc
		return
	}
	r.descriptors = append(r.descriptors, desc)
	r.enabled[desc.ID] = false
}

// Toggle flips an overlay and returns its new state. Unknown IDs report false.
func (r *OverlayRegistry) Toggle(id OverlayID) bool {
	if r.index(id) < 0 {
		return false
	}
	r.enabled[id] = !r.enabled[id]
	return r.enabled[id]
}

// SetEnabled sets an overlay's state. Unknown IDs are ignored.
func (r *OverlayRegistry) SetEnabled(id OverlayID, enabled bool) {
	if r.index(id) >= 0 {
		r.enabled[id] = enabled
	}
}

// IsEnabled returns whether an overlay is on.
func (r *OverlayRegistry) IsEnabled(id OverlayID) bool {
	return r.enabled[id]
}

// Get returns an overlay descriptor by ID.
func (r *OverlayRegistry) Get(id OverlayID) (OverlayDescriptor, bool) {
	if i := r.index(id); i >= 0 {
		return r.descriptors[i], true
	}
	return OverlayDescriptor{}, false
}

// ByCategory returns the overlays of one category in registration order.
func (r *OverlayRegistry) ByCategory(category string) []OverlayDescriptor {
	var result []OverlayDescriptor
	for _, desc := range r.descriptors {
		if desc.Category == category {
			result = append(result, desc)
		}
	}
	return result
}

// Categories returns the categories in order of first registration.
func (r *OverlayRegistry) Categories() []string {
	var cats []string
	for _, desc := range r.descriptors {
		if !slices.Contains(cats, desc.Category) {
			cats = append(cats, desc.Category)
		}
	}
	return cats
}

// HandleKeyPress toggles the overlay bound to key.
// It returns the overlay, its new state and whether any overlay matched.
func (r *OverlayRegistry) HandleKeyPress(key int32) (OverlayID, bool, bool) {
	for _, desc := range r.descriptors {
		if desc.Key != 0 && desc.Key == key {
			return desc.ID, r.Toggle(desc.ID), true
		}
	}
	return "", false, false
}

// DebugFlags returns the agent debug flags selected by the agent overlays.
func (r *OverlayRegistry) DebugFlags() components.Debug {
	return components.Debug{
		Vision:     r.enabled[OverlayVision],
		Separation: r.enabled[OverlaySeparation],
		Alignment:  r.enabled[OverlayAlignment],
		Cohesion:   r.enabled[OverlayCohesion],
		Chase:      r.enabled[OverlayChase],
	}
}

func (r *OverlayRegistry) index(id OverlayID) int {
	return slices.IndexFunc(r.descriptors, func(d OverlayDescriptor) bool { return d.ID == id })
}

// categoryLabel returns a display label for a category.
func categoryLabel(category string) string {
	switch category {
	case CategoryAgent:
		return "Debugged agents"
	case CategoryWorld:
		return "World"
	default:
		return category
	}
}
