package ui

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/boids/components"
)

func TestOverlayRegistry_Defaults(t *testing.T) {
	reg := NewOverlayRegistry()

	if got := reg.DebugFlags(); got != components.AllDebug() {
		t.Errorf("default debug flags = %+v, want all enabled", got)
	}
	if reg.IsEnabled(OverlayGrid) {
		t.Error("grid overlay should start disabled")
	}
	if !reg.IsEnabled(OverlayBounds) {
		t.Error("bounds overlay should start enabled")
	}
	if cats := reg.Categories(); len(cats) != 2 || cats[0] != CategoryAgent || cats[1] != CategoryWorld {
		t.Errorf("categories = %v", cats)
	}
}

func TestOverlayRegistry_HandleKeyPress(t *testing.T) {
	tests := []struct {
		name      string
		key       int32
		wantID    OverlayID
		wantState bool
		wantHit   bool
	}{
		{"grid on", rl.KeyG, OverlayGrid, true, true},
		{"vision off", rl.KeyV, OverlayVision, false, true},
		{"unbound key", rl.KeyZ, "", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewOverlayRegistry()
			id, state, hit := reg.HandleKeyPress(tt.key)
			if id != tt.wantID || state != tt.wantState || hit != tt.wantHit {
				t.Errorf("HandleKeyPress = (%q, %v, %v), want (%q, %v, %v)",
					id, state, hit, tt.wantID, tt.wantState, tt.wantHit)
			}
		})
	}
}

func TestOverlayRegistry_DebugFlagsFollowToggles(t *testing.T) {
	reg := NewOverlayRegistry()
	reg.Toggle(OverlayAlignment)
	reg.SetEnabled(OverlayChase, false)

	want := components.AllDebug()
	want.Alignment = false
	want.Chase = false
	if got := reg.DebugFlags(); got != want {
		t.Errorf("DebugFlags = %+v, want %+v", got, want)
	}
}

func TestOverlayRegistry_Register(t *testing.T) {
	reg := NewOverlayRegistry()
	reg.Register(OverlayDescriptor{ID: "trails", Name: "Trails", Key: rl.KeyT, Category: CategoryWorld})

	if reg.IsEnabled("trails") {
		t.Error("registered overlay should start disabled")
	}
	if id, on, ok := reg.HandleKeyPress(rl.KeyT); !ok || id != "trails" || !on {
		t.Errorf("HandleKeyPress(T) = (%q, %v, %v), want (trails, true, true)", id, on, ok)
	}
	if n := len(reg.ByCategory(CategoryWorld)); n != 3 {
		t.Errorf("world overlays = %d, want 3", n)
	}

	// Re-registering replaces the descriptor in place.
	reg.Register(OverlayDescriptor{ID: OverlayGrid, Name: "Cells", Key: rl.KeyG, Category: CategoryWorld})
	if desc, _ := reg.Get(OverlayGrid); desc.Name != "Cells" {
		t.Errorf("grid name = %q, want Cells", desc.Name)
	}
	if n := len(reg.ByCategory(CategoryWorld)); n != 3 {
		t.Errorf("world overlays after replace = %d, want 3", n)
	}

	if reg.Toggle("missing") {
		t.Error("toggling an unknown overlay should report false")
	}
	reg.SetEnabled("missing", true)
	if reg.IsEnabled("missing") {
		t.Error("SetEnabled should ignore unknown overlays")
	}
}

func TestDefaultOverlays_HaveSwatches(t *testing.T) {
	for _, desc := range NewOverlayRegistry().ByCategory(CategoryAgent) {
		if len(desc.Swatches) == 0 {
			t.Errorf("%s has no legend swatch", desc.ID)
		}
		if desc.Key == 0 {
			t.Errorf("%s has no toggle key", desc.ID)
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		value, lo, hi, want float32
	}{
		{0.5, 0, 1, 0.5},
		{-1, 0, 1, 0},
		{3, 0, 2, 1},
		{5, 0, 10, 0.5},
		{1, 1, 1, 0},
	}
	for _, tt := range tests {
		if got := normalize(tt.value, tt.lo, tt.hi); got != tt.want {
			t.Errorf("normalize(%v, %v, %v) = %v, want %v", tt.value, tt.lo, tt.hi, got, tt.want)
		}
	}
}

func TestSectionHeight_SkipsHiddenFields(t *testing.T) {
	r := NewRenderer()
	lh := r.Theme.LineHeight
	hidden := func(any) bool { return false }

	sd := SectionDescriptor{
		Title: "S",
		Fields: []FieldDescriptor{
			{Widget: WidgetText},
			{Widget: WidgetBar},
			{Widget: WidgetBar, Visible: hidden},
			{Widget: WidgetSpacer},
		},
	}
	want := 4 + lh + lh + (lh + 2) + 6
	if got := r.SectionHeight(sd, nil); got != want {
		t.Errorf("SectionHeight = %d, want %d", got, want)
	}

	sd.Visible = hidden
	if got := r.SectionHeight(sd, nil); got != 0 {
		t.Errorf("hidden section height = %d, want 0", got)
	}
}
