package systems

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/shoal/components"
	"github.com/pthm-cable/shoal/config"
	"github.com/pthm-cable/shoal/vec"
)

// Bounds represents the simulation bounds.
type Bounds struct {
	Width, Height float64
}

// Contains reports whether p lies inside the bounds (edges included).
func (b Bounds) Contains(p vec.Vec2) bool {
	return p.X >= 0 && p.X <= b.Width && p.Y >= 0 && p.Y <= b.Height
}

// BoundaryPolicy decides what happens when a fish leaves the bounds.
// Exactly one policy is active per simulation.
type BoundaryPolicy uint8

const (
	// PolicyClamp moves the fish back inside by at least one unit.
	PolicyClamp BoundaryPolicy = iota
	// PolicyBounce clamps and reflects the crossing velocity component.
	PolicyBounce
	// PolicyTeleport relocates fish found far outside to a random safe spot.
	PolicyTeleport
)

// ParseBoundaryPolicy maps a config name to a policy.
func ParseBoundaryPolicy(name string) (BoundaryPolicy, error) {
	switch name {
	case config.BoundaryClamp, "":
		return PolicyClamp, nil
	case config.BoundaryBounce:
		return PolicyBounce, nil
	case config.BoundaryTeleport:
		return PolicyTeleport, nil
	}
	return PolicyClamp, fmt.Errorf("unknown boundary policy %q", name)
}

// String returns the config name of the policy.
func (p BoundaryPolicy) String() string {
	switch p {
	case PolicyBounce:
		return config.BoundaryBounce
	case PolicyTeleport:
		return config.BoundaryTeleport
	default:
		return config.BoundaryClamp
	}
}

// PhysicsParams holds integration and boundary constants.
type PhysicsParams struct {
	MinVelocity      float64
	DefaultVelocity  float64
	Policy           BoundaryPolicy
	BounceDamping    float64
	TeleportDistance float64
	TeleportDamping  float64
	SafeMargin       float64 // teleport targets keep this far from edges
}

// PhysicsParamsFromConfig reads fish and boundary settings.
func PhysicsParamsFromConfig(cfg *config.Config) (PhysicsParams, error) {
	policy, err := ParseBoundaryPolicy(cfg.Boundary.Policy)
	if err != nil {
		return PhysicsParams{}, err
	}
	return PhysicsParams{
		MinVelocity:      cfg.Fish.MinVelocity,
		DefaultVelocity:  cfg.Fish.DefaultVelocity,
		Policy:           policy,
		BounceDamping:    cfg.Boundary.BounceDamping,
		TeleportDistance: cfg.Boundary.TeleportDistance,
		TeleportDamping:  cfg.Boundary.TeleportDamping,
		SafeMargin:       cfg.Boundary.Distance,
	}, nil
}

// PhysicsSystem integrates velocity and position.
type PhysicsSystem struct {
	params PhysicsParams
	bounds Bounds
	rng    *rand.Rand
}

// NewPhysicsSystem creates a new physics system.
func NewPhysicsSystem(bounds Bounds, params PhysicsParams, rng *rand.Rand) *PhysicsSystem {
	return &PhysicsSystem{
		params: params,
		bounds: bounds,
		rng:    rng,
	}
}

// SetBounds updates the world bounds after a resize.
func (s *PhysicsSystem) SetBounds(b Bounds) {
	s.bounds = b
}

// Bounds returns the current world bounds.
func (s *PhysicsSystem) Bounds() Bounds {
	return s.bounds
}

// Params returns the active parameters.
func (s *PhysicsSystem) Params() PhysicsParams {
	return s.params
}

// Update integrates every entity in order.
func (s *PhysicsSystem) Update(entities []ecs.Entity, fishMap *ecs.Map1[components.Fish]) {
	for _, e := range entities {
		f := fishMap.Get(e)
		if f == nil {
			continue
		}
		s.Integrate(f)
	}
}

// Integrate applies the accumulated acceleration, moves the fish and
// zeroes the accumulator. Afterwards MinVelocity <= |v| <= MaxSpeed.
func (s *PhysicsSystem) Integrate(f *components.Fish) {
	f.Velocity.Add(f.Acceleration)
	s.enforceSpeed(f)

	f.Location.Add(f.Velocity)
	f.Acceleration = vec.Zero()

	switch s.params.Policy {
	case PolicyBounce:
		s.bounce(f)
	case PolicyTeleport:
		s.teleport(f)
	default:
		s.clamp(f)
	}

	// Policies may damp or reflect velocity.
	s.enforceSpeed(f)
	f.Heading = f.Velocity.Angle()
}

// enforceSpeed limits velocity to MaxSpeed and resets stalled fish to the
// default speed along their current direction (or heading when at rest).
func (s *PhysicsSystem) enforceSpeed(f *components.Fish) {
	f.Velocity.Limit(f.MaxSpeed)

	if f.Velocity.Magnitude() >= s.params.MinVelocity {
		return
	}
	speed := math.Min(s.params.DefaultVelocity, f.MaxSpeed)
	if f.Velocity.IsZero() {
		f.Velocity = vec.FromAngle(f.Heading, speed)
		return
	}
	f.Velocity.SetMagnitude(speed)
}

func (s *PhysicsSystem) clamp(f *components.Fish) {
	w, h := s.bounds.Width, s.bounds.Height
	if f.Location.X < 0 {
		f.Location.X = math.Min(1, w)
	} else if f.Location.X > w {
		f.Location.X = math.Max(w-1, 0)
	}
	if f.Location.Y < 0 {
		f.Location.Y = math.Min(1, h)
	} else if f.Location.Y > h {
		f.Location.Y = math.Max(h-1, 0)
	}
}

func (s *PhysicsSystem) bounce(f *components.Fish) {
	if f.Location.X < 0 || f.Location.X > s.bounds.Width {
		f.Velocity.X *= -s.params.BounceDamping
	}
	if f.Location.Y < 0 || f.Location.Y > s.bounds.Height {
		f.Velocity.Y *= -s.params.BounceDamping
	}
	s.clamp(f)
}

func (s *PhysicsSystem) teleport(f *components.Fish) {
	td := s.params.TeleportDistance
	p := f.Location
	if p.X >= -td && p.X <= s.bounds.Width+td && p.Y >= -td && p.Y <= s.bounds.Height+td {
		return
	}
	f.Location = vec.New(
		s.safeCoord(s.bounds.Width),
		s.safeCoord(s.bounds.Height),
	)
	f.Velocity.Mul(s.params.TeleportDamping)
	f.WanderBias = vec.Zero()
}

// safeCoord picks a random coordinate at least SafeMargin from both edges.
func (s *PhysicsSystem) safeCoord(extent float64) float64 {
	margin := s.params.SafeMargin
	if extent <= 2*margin {
		return extent / 2
	}
	return margin + s.rng.Float64()*(extent-2*margin)
}
