package main

import (
	"github.com/pthm-cable/boids/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name  string  // Human-readable name
	Path  string  // Config path for logging
	Min   float64 // Lower bound
	Max   float64 // Upper bound
	Field func(*config.Config) *float64
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Flocking multipliers
			{Name: "boid_separation", Path: "boid.separation_multiplier", Min: 0, Max: 1,
				Field: func(c *config.Config) *float64 { return &c.Boid.SeparationMultiplier }},
			{Name: "boid_alignment", Path: "boid.alignment_multiplier", Min: 0, Max: 1,
				Field: func(c *config.Config) *float64 { return &c.Boid.AlignmentMultiplier }},
			{Name: "boid_cohesion", Path: "boid.cohesion_multiplier", Min: 0, Max: 0.05,
				Field: func(c *config.Config) *float64 { return &c.Boid.CohesionMultiplier }},
			{Name: "boid_flee", Path: "boid.flee_multiplier", Min: 0, Max: 5,
				Field: func(c *config.Config) *float64 { return &c.Boid.FleeMultiplier }},
			// Perception
			{Name: "boid_vision", Path: "boid.vision_range", Min: 20, Max: 200,
				Field: func(c *config.Config) *float64 { return &c.Boid.VisionRange }},
			{Name: "boid_separation_range", Path: "boid.separation_range", Min: 5, Max: 60,
				Field: func(c *config.Config) *float64 { return &c.Boid.SeparationRange }},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// ExtractFromConfig reads the current parameter values from cfg.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = *spec.Field(cfg)
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig writes clamped parameter values into cfg.
// The separation range is kept inside the vision range so the result validates.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	for i, v := range pv.Clamp(values) {
		*pv.Specs[i].Field(cfg) = v
	}
	cfg.Boid.SeparationRange = min(cfg.Boid.SeparationRange, cfg.Boid.VisionRange)
	cfg.ComputeDerived()
}
