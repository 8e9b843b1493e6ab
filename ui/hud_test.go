package ui

import (
	"strings"
	"testing"
)

func TestHUDData_Lines(t *testing.T) {
	tests := []struct {
		name   string
		data   HUDData
		counts string
		state  string
	}{
		{"running", HUDData{BoidCount: 600, PredCount: 2}, "Boids: 600 | Predators: 2", "Running"},
		{"paused", HUDData{Paused: true}, "Boids: 0 | Predators: 0", "PAUSED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := tt.data.Lines()
			if len(lines) != 4 {
				t.Fatalf("got %d lines, want 4", len(lines))
			}
			if lines[0] != tt.counts {
				t.Errorf("counts line = %q, want %q", lines[0], tt.counts)
			}
			if lines[3] != tt.state {
				t.Errorf("state line = %q, want %q", lines[3], tt.state)
			}
		})
	}
}

func TestHUDData_LinesFormatPolarization(t *testing.T) {
	lines := HUDData{Polarization: 0.876, MeanSpeed: 412.34}.Lines()
	if !strings.Contains(lines[2], "Polarization: 0.88") || !strings.Contains(lines[2], "Mean speed: 412.3") {
		t.Errorf("flock line = %q", lines[2])
	}
}

func TestPhaseTextColor(t *testing.T) {
	if phaseTextColor(60) != phaseTextColor(99) || phaseTextColor(60) == phaseTextColor(30) {
		t.Error("phases over half the tick should share the alarm colour")
	}
	if phaseTextColor(10) == phaseTextColor(30) {
		t.Error("minor phases should not use the warning colour")
	}
}
