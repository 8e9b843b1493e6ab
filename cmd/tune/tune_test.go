package main

import (
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pthm-cable/boids/config"
	"github.com/pthm-cable/boids/telemetry"
)

func TestParamVector_NormalizeRoundTrip(t *testing.T) {
	pv := NewParamVector()
	raw := pv.ExtractFromConfig(config.Default())

	back := pv.Denormalize(pv.Normalize(raw))
	for i := range raw {
		if math.Abs(back[i]-raw[i]) > 1e-9 {
			t.Errorf("%s: got %v after round trip, want %v", pv.Specs[i].Name, back[i], raw[i])
		}
	}
}

func TestParamVector_ApplyToConfigClamps(t *testing.T) {
	pv := NewParamVector()
	cfg := config.Default()

	values := make([]float64, pv.Dim())
	for i, spec := range pv.Specs {
		values[i] = spec.Max + 100
	}
	pv.ApplyToConfig(cfg, values)

	got := pv.ExtractFromConfig(cfg)
	for i, spec := range pv.Specs {
		want := spec.Max
		if spec.Name == "boid_separation_range" {
			want = min(spec.Max, cfg.Boid.VisionRange)
		}
		if got[i] != want {
			t.Errorf("%s = %v, want %v", spec.Name, got[i], want)
		}
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("clamped config should validate: %v", err)
	}
}

func TestParamVector_SeparationStaysInsideVision(t *testing.T) {
	pv := NewParamVector()
	cfg := config.Default()

	values := pv.ExtractFromConfig(cfg)
	for i, spec := range pv.Specs {
		switch spec.Name {
		case "boid_vision":
			values[i] = 30
		case "boid_separation_range":
			values[i] = 50
		}
	}
	pv.ApplyToConfig(cfg, values)

	if cfg.Boid.SeparationRange > cfg.Boid.VisionRange {
		t.Errorf("separation range %v exceeds vision range %v", cfg.Boid.SeparationRange, cfg.Boid.VisionRange)
	}
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name    string
		windows []telemetry.FlockStats
		want    Metrics
	}{
		{"empty", nil, Metrics{}},
		{
			"warmup only",
			[]telemetry.FlockStats{{PolarizationMean: 0.2, NeighborsMean: 2}},
			Metrics{Polarization: 0.2, Neighbors: 2},
		},
		{
			"skips warmup",
			[]telemetry.FlockStats{
				{PolarizationMean: 0, NeighborsMean: 0},
				{PolarizationMean: 0, NeighborsMean: 0},
				{PolarizationMean: 0.6, NeighborsMean: 4},
				{PolarizationMean: 0.8, NeighborsMean: 6},
			},
			Metrics{Polarization: 0.7, Neighbors: 5},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := summarize(tt.windows)
			if math.Abs(got.Polarization-tt.want.Polarization) > 1e-9 || math.Abs(got.Neighbors-tt.want.Neighbors) > 1e-9 {
				t.Errorf("summarize = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestComputeFitness(t *testing.T) {
	fe := NewFitnessEvaluator(NewParamVector(), 1, nil, config.Default(), Targets{Polarization: 0.8, Neighbors: 10})

	tests := []struct {
		name string
		m    Metrics
		want float64
	}{
		{"on target", Metrics{Polarization: 0.8, Neighbors: 10}, 0},
		{"polarization off", Metrics{Polarization: 0.5, Neighbors: 10}, 0.09},
		{"neighbors off", Metrics{Polarization: 0.8, Neighbors: 5}, 0.25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fe.computeFitness(tt.m); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("computeFitness = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	if got := formatDuration(90 * time.Second); got != "1m30s" {
		t.Errorf("formatDuration(90s) = %q", got)
	}
	if got := formatDuration(3725 * time.Second); got != "1h02m05s" {
		t.Errorf("formatDuration(3725s) = %q", got)
	}
}

func TestTuneLog_HeaderFollowsSpecs(t *testing.T) {
	pv := NewParamVector()
	path := filepath.Join(t.TempDir(), "tune_log.csv")

	l, err := newTuneLog(path, pv.Specs)
	if err != nil {
		t.Fatalf("newTuneLog: %v", err)
	}
	values := pv.ExtractFromConfig(config.Default())
	if err := l.Record(1, 0.25, Metrics{Polarization: 0.7, Neighbors: 6}, values); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want header + 1", len(rows))
	}
	if want := 4 + pv.Dim(); len(rows[0]) != want || len(rows[1]) != want {
		t.Errorf("columns = %d/%d, want %d", len(rows[0]), len(rows[1]), want)
	}
	if rows[0][4] != pv.Specs[0].Name {
		t.Errorf("first param column = %q, want %q", rows[0][4], pv.Specs[0].Name)
	}
	if rows[1][0] != "1" || rows[1][1] != "0.250000" || rows[1][2] != "0.7000" {
		t.Errorf("row = %v", rows[1])
	}
}

func TestProgress(t *testing.T) {
	p := newProgress(10)
	if p.eta(time.Minute) != 0 {
		t.Error("eta before any evaluation should be 0")
	}

	p.record(0.5, []float64{1})
	p.record(0.8, []float64{2})
	p.record(0.2, []float64{3})

	if p.evals != 3 || p.bestFitness != 0.2 || p.best[0] != 3 {
		t.Errorf("progress = %+v", p)
	}
	// 3 evals in 30s leaves 7 at 10s each.
	if got := p.eta(30 * time.Second); got != 70*time.Second {
		t.Errorf("eta = %v, want 70s", got)
	}
}
