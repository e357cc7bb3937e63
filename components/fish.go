// Package components defines ECS components for the simulation.
package components

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/shoal/config"
	"github.com/pthm-cable/shoal/vec"
)

// ColorState tags what a fish did last tick. Only debug rendering reads it.
type ColorState uint8

const (
	ColorDefault ColorState = iota
	ColorShoaling
	ColorWandering
	ColorAvoiding
	ColorChasing
)

// String returns the tag name.
func (c ColorState) String() string {
	switch c {
	case ColorShoaling:
		return "shoaling"
	case ColorWandering:
		return "wandering"
	case ColorAvoiding:
		return "avoiding"
	case ColorChasing:
		return "chasing"
	default:
		return "default"
	}
}

// Detail levels used by the renderer.
const (
	DetailFlat   = 1 // flat triangle
	DetailFilled = 2 // curved body, fill only
	DetailFull   = 3 // curved body, fill and outline
)

// Factors are the per-unit-mass multipliers for the derived constants.
type Factors struct {
	MaxSpeed        float64
	MaxForce        float64
	SeparationRange float64
	LookRange       float64
	BodyLength      float64
}

// DefaultFactors returns the factors used when no config is supplied.
func DefaultFactors() Factors {
	return Factors{
		MaxSpeed:        12,
		MaxForce:        0.1,
		SeparationRange: 30,
		LookRange:       200,
		BodyLength:      20,
	}
}

// FactorsFromConfig returns the factors from the fish config section.
func FactorsFromConfig(cfg *config.Config) Factors {
	f := cfg.Fish
	return Factors{
		MaxSpeed:        f.MaxSpeedFactor,
		MaxForce:        f.MaxForceFactor,
		SeparationRange: f.SeparationRangeFactor,
		LookRange:       f.LookRangeFactor,
		BodyLength:      f.BodyLengthFactor,
	}
}

// Fish holds all per-agent state.
type Fish struct {
	ID   uint32
	Mass float64

	// Derived from mass at creation, never changed afterwards
	MaxSpeed        float64
	MaxForce        float64
	SeparationRange float64
	LookRange       float64
	BodyLength      float64
	BodyBase        float64

	Location     vec.Vec2
	Velocity     vec.Vec2
	Acceleration vec.Vec2 // force accumulator, zeroed by integration
	Heading      float64  // radians, last non-zero velocity direction
	WanderBias   vec.Vec2

	Color       ColorState
	DetailLevel int

	// Diagnostics for the debug overlay, reset every tick
	Avoiding []ecs.Entity
	Chasing  []ecs.Entity
	Shoaling []ecs.Entity
}

// NewFish creates a fish of the given mass. Mass must be positive.
func NewFish(id uint32, mass float64, f Factors) Fish {
	bodyLength := f.BodyLength * mass
	return Fish{
		ID:              id,
		Mass:            mass,
		MaxSpeed:        f.MaxSpeed * mass,
		MaxForce:        f.MaxForce / mass,
		SeparationRange: f.SeparationRange * mass,
		LookRange:       f.LookRange * mass,
		BodyLength:      bodyLength,
		BodyBase:        0.5 * bodyLength,
		DetailLevel:     DetailFull,
	}
}

// ApplyForce adds force to the acceleration accumulator.
func (f *Fish) ApplyForce(force vec.Vec2) {
	f.Acceleration.Add(force)
}

// ResetDiagnostics clears the per-tick neighbor lists, keeping capacity.
func (f *Fish) ResetDiagnostics() {
	f.Avoiding = f.Avoiding[:0]
	f.Chasing = f.Chasing[:0]
	f.Shoaling = f.Shoaling[:0]
}

// Direction returns the heading the body is drawn along.
func (f *Fish) Direction() float64 {
	if f.Velocity.IsZero() {
		return f.Heading
	}
	return f.Velocity.Angle()
}
