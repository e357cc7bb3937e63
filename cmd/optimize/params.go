package main

import (
	"github.com/pthm-cable/shoal/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value

	field func(*config.SteeringConfig) *float64
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
// Defaults are read from base so the search starts at the loaded config.
func NewParamVector(base *config.Config) *ParamVector {
	pv := &ParamVector{
		Specs: []ParamSpec{
			// Flocking weights
			{Name: "separation_weight", Path: "steering.separation_weight", Min: 0.2, Max: 4.0,
				field: func(s *config.SteeringConfig) *float64 { return &s.SeparationWeight }},
			{Name: "alignment_weight", Path: "steering.alignment_weight", Min: 0.1, Max: 4.0,
				field: func(s *config.SteeringConfig) *float64 { return &s.AlignmentWeight }},
			{Name: "cohesion_weight", Path: "steering.cohesion_weight", Min: 0.1, Max: 4.0,
				field: func(s *config.SteeringConfig) *float64 { return &s.CohesionWeight }},
			// Mass interactions
			{Name: "avoid_range_factor", Path: "steering.avoid_range_factor", Min: 0.1, Max: 1.0,
				field: func(s *config.SteeringConfig) *float64 { return &s.AvoidRangeFactor }},
			{Name: "avoid_repulsion", Path: "steering.avoid_repulsion", Min: 1, Max: 50,
				field: func(s *config.SteeringConfig) *float64 { return &s.AvoidRepulsion }},
			{Name: "chase_strength", Path: "steering.chase_strength", Min: 0, Max: 2.0,
				field: func(s *config.SteeringConfig) *float64 { return &s.ChaseStrength }},
			// Wandering
			{Name: "wander_chance", Path: "steering.wander_chance", Min: 0, Max: 0.2,
				field: func(s *config.SteeringConfig) *float64 { return &s.WanderChance }},
			{Name: "wander_strength", Path: "steering.wander_strength", Min: 0, Max: 1.0,
				field: func(s *config.SteeringConfig) *float64 { return &s.WanderStrength }},
		},
	}
	for i := range pv.Specs {
		spec := &pv.Specs[i]
		spec.Default = clampTo(*spec.field(&base.Steering), spec.Min, spec.Max)
	}
	return pv
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
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
		clamped[i] = clampTo(v[i], spec.Min, spec.Max)
	}
	return clamped
}

// ApplyToConfig writes clamped parameter values into cfg.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)
	for i, spec := range pv.Specs {
		*spec.field(&cfg.Steering) = clamped[i]
	}
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = *spec.field(&cfg.Steering)
	}
	return v
}

func clampTo(x, lo, hi float64) float64 {
	return min(max(x, lo), hi)
}
