package systems

import (
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/shoal/components"
	"github.com/pthm-cable/shoal/config"
	"github.com/pthm-cable/shoal/vec"
)

// Mass ratios separating the three neighbor groups.
const (
	biggerRatio  = 2.0
	smallerRatio = 0.5
)

// SteeringParams holds the tunable constants for all behaviors.
type SteeringParams struct {
	SeparationWeight float64
	AlignmentWeight  float64
	CohesionWeight   float64
	ViewAngle        float64

	AvoidRangeFactor float64
	AvoidRepulsion   float64

	ChaseStrength    float64
	ChaseMinDistance float64
	ChaseMaxDistance float64

	WanderChance   float64
	WanderStrength float64
	WanderTurnRate float64

	FollowWeight    float64
	FollowSlowRange float64

	BoundaryDistance        float64
	BoundaryForceMultiplier float64
}

// SteeringParamsFromConfig reads steering and boundary settings.
func SteeringParamsFromConfig(cfg *config.Config) SteeringParams {
	s := cfg.Steering
	return SteeringParams{
		SeparationWeight:        s.SeparationWeight,
		AlignmentWeight:         s.AlignmentWeight,
		CohesionWeight:          s.CohesionWeight,
		ViewAngle:               s.ViewAngle,
		AvoidRangeFactor:        s.AvoidRangeFactor,
		AvoidRepulsion:          s.AvoidRepulsion,
		ChaseStrength:           s.ChaseStrength,
		ChaseMinDistance:        s.ChaseMinDistance,
		ChaseMaxDistance:        s.ChaseMaxDistance,
		WanderChance:            s.WanderChance,
		WanderStrength:          s.WanderStrength,
		WanderTurnRate:          s.WanderTurnRate,
		FollowWeight:            s.FollowWeight,
		FollowSlowRange:         s.FollowSlowRange,
		BoundaryDistance:        cfg.Boundary.Distance,
		BoundaryForceMultiplier: cfg.Boundary.ForceMultiplier,
	}
}

// Pointer is the follow target supplied by input.
type Pointer struct {
	Position vec.Vec2
	Active   bool
}

// MassGroups partitions neighbors by mass relative to one fish.
type MassGroups struct {
	Bigger  []Neighbor
	Similar []Neighbor
	Smaller []Neighbor
}

// Reset empties all groups, keeping capacity.
func (m *MassGroups) Reset() {
	m.Bigger = m.Bigger[:0]
	m.Similar = m.Similar[:0]
	m.Smaller = m.Smaller[:0]
}

// Categorize resets m and sorts neighbors into it.
// A neighbor exactly twice or half as heavy counts as similar.
func (m *MassGroups) Categorize(selfMass float64, neighbors []Neighbor) {
	m.Reset()
	for _, n := range neighbors {
		switch {
		case n.Mass > selfMass*biggerRatio:
			m.Bigger = append(m.Bigger, n)
		case n.Mass < selfMass*smallerRatio:
			m.Smaller = append(m.Smaller, n)
		default:
			m.Similar = append(m.Similar, n)
		}
	}
}

// CategorizeByMass returns a fresh partition of neighbors.
func CategorizeByMass(selfMass float64, neighbors []Neighbor) MassGroups {
	var m MassGroups
	m.Categorize(selfMass, neighbors)
	return m
}

// VisibleNeighbors appends to dst the candidates inside the view cone of f,
// skipping self. The cone is centered on the direction of travel; a view
// angle of 2*Pi or more sees everything.
func VisibleNeighbors(dst []Neighbor, self ecs.Entity, f *components.Fish, candidates []Neighbor, viewAngle float64) []Neighbor {
	fullCircle := viewAngle >= 2*math.Pi
	half := viewAngle / 2
	dir := f.Direction()

	for _, n := range candidates {
		if n.E == self {
			continue
		}
		if !fullCircle {
			offset := n.Location.Minus(f.Location)
			if !offset.IsZero() && math.Abs(normalizeAngle(offset.Angle()-dir)) >= half {
				continue
			}
		}
		dst = append(dst, n)
	}
	return dst
}

// steerTowards returns the classic steering force desired - velocity,
// limited to maxForce.
func steerTowards(f *components.Fish, desired vec.Vec2) vec.Vec2 {
	return desired.Minus(f.Velocity).Limited(f.MaxForce)
}

// Separation pushes away from neighbors closer than SeparationRange,
// weighting each by inverse distance.
func Separation(f *components.Fish, neighbors []Neighbor) vec.Vec2 {
	var sum vec.Vec2
	count := 0
	rangeSq := f.SeparationRange * f.SeparationRange
	for _, n := range neighbors {
		if n.DistSq == 0 || n.DistSq >= rangeSq {
			continue
		}
		d := math.Sqrt(n.DistSq)
		away := f.Location.Minus(n.Location)
		away.Normalize().Div(d)
		sum.Add(away)
		count++
	}
	if count == 0 {
		return vec.Zero()
	}
	sum.Div(float64(count))
	// Balanced neighbors cancel out
	if sum.IsZero() {
		return vec.Zero()
	}
	sum.SetMagnitude(f.MaxSpeed)
	return steerTowards(f, sum)
}

// Alignment steers towards the average heading of neighbors.
func Alignment(f *components.Fish, neighbors []Neighbor) vec.Vec2 {
	if len(neighbors) == 0 {
		return vec.Zero()
	}
	var avg vec.Vec2
	for _, n := range neighbors {
		avg.Add(n.Velocity)
	}
	avg.Div(float64(len(neighbors)))
	if avg.IsZero() {
		return vec.Zero()
	}
	avg.Limit(f.MaxSpeed)
	return steerTowards(f, avg)
}

// Cohesion steers towards the centroid of neighbors.
func Cohesion(f *components.Fish, neighbors []Neighbor) vec.Vec2 {
	if len(neighbors) == 0 {
		return vec.Zero()
	}
	var centroid vec.Vec2
	for _, n := range neighbors {
		centroid.Add(n.Location)
	}
	centroid.Div(float64(len(neighbors)))
	desired := centroid.Minus(f.Location)
	if desired.IsZero() {
		return vec.Zero()
	}
	desired.SetMagnitude(f.MaxSpeed)
	return steerTowards(f, desired)
}

// Shoal applies the weighted sum of separation, alignment and cohesion
// over similar-mass neighbors.
func Shoal(f *components.Fish, similar []Neighbor, p SteeringParams) {
	if len(similar) == 0 {
		return
	}
	sep := Separation(f, similar)
	ali := Alignment(f, similar)
	coh := Cohesion(f, similar)

	f.ApplyForce(sep.Times(p.SeparationWeight))
	f.ApplyForce(ali.Times(p.AlignmentWeight))
	f.ApplyForce(coh.Times(p.CohesionWeight))

	f.Color = components.ColorShoaling
	for _, n := range similar {
		f.Shoaling = append(f.Shoaling, n.E)
	}
}

// Wander drifts the fish along a slowly rotating bias vector. The bias is
// added straight to velocity, bypassing the force accumulator.
func Wander(f *components.Fish, rng *rand.Rand, p SteeringParams) {
	strength := p.WanderStrength * f.MaxSpeed
	if f.WanderBias.IsZero() || rng.Float64() < p.WanderChance {
		f.WanderBias = vec.FromAngle(rng.Float64()*2*math.Pi, strength)
	} else {
		f.WanderBias.Rotate((rng.Float64()*2 - 1) * p.WanderTurnRate)
	}
	f.Velocity.Add(f.WanderBias)
	f.Color = components.ColorWandering
}

// Boundaries pushes the fish inwards when it is within BoundaryDistance of
// an edge. The push grows linearly as the fish gets closer to (or past) it.
func Boundaries(f *components.Fish, bounds Bounds, p SteeringParams) {
	dist := p.BoundaryDistance
	if dist <= 0 {
		return
	}
	maxPush := f.MaxForce * p.BoundaryForceMultiplier

	var force vec.Vec2
	if d := f.Location.X; d < dist {
		force.X += maxPush * (dist - d) / dist
	}
	if d := bounds.Width - f.Location.X; d < dist {
		force.X -= maxPush * (dist - d) / dist
	}
	if d := f.Location.Y; d < dist {
		force.Y += maxPush * (dist - d) / dist
	}
	if d := bounds.Height - f.Location.Y; d < dist {
		force.Y -= maxPush * (dist - d) / dist
	}
	if !force.IsZero() {
		f.ApplyForce(force)
	}
}

// Avoid pushes away from every bigger neighbor within rangeDist, in
// proportion to the raw displacement.
func Avoid(f *components.Fish, bigger []Neighbor, rangeDist, repulsion float64) {
	rangeSq := rangeDist * rangeDist
	for _, n := range bigger {
		if n.DistSq > rangeSq {
			continue
		}
		f.ApplyForce(f.Location.Minus(n.Location).Times(repulsion))
		f.Avoiding = append(f.Avoiding, n.E)
		f.Color = components.ColorAvoiding
	}
}

// Chase pulls towards every smaller neighbor with an inverse-square force.
// Distance is clamped to [ChaseMinDistance, ChaseMaxDistance].
func Chase(f *components.Fish, smaller []Neighbor, p SteeringParams) {
	for _, n := range smaller {
		toward := n.Location.Minus(f.Location)
		if toward.IsZero() {
			continue
		}
		d := clampFloat(math.Sqrt(n.DistSq), p.ChaseMinDistance, p.ChaseMaxDistance)
		strength := p.ChaseStrength * f.Mass * n.Mass / (d * d)
		f.ApplyForce(toward.WithMagnitude(strength))
		f.Chasing = append(f.Chasing, n.E)
		f.Color = components.ColorChasing
	}
}

// Seek steers towards target, slowing down inside slowRange.
func Seek(f *components.Fish, target vec.Vec2, weight, slowRange float64) {
	desired := target.Minus(f.Location)
	d := desired.Magnitude()
	if d == 0 {
		return
	}
	speed := f.MaxSpeed
	if slowRange > 0 && d < slowRange {
		speed *= d / slowRange
	}
	desired.SetMagnitude(speed)
	f.ApplyForce(steerTowards(f, desired).Times(weight))
}

// FlockSystem accumulates steering forces for each fish.
// It keeps scratch buffers between calls and is not safe for concurrent use.
type FlockSystem struct {
	params SteeringParams
	rng    *rand.Rand

	candidates []Neighbor
	visible    []Neighbor
	groups     MassGroups
}

// NewFlockSystem creates a flock system.
func NewFlockSystem(params SteeringParams, rng *rand.Rand) *FlockSystem {
	return &FlockSystem{
		params:     params,
		rng:        rng,
		candidates: make([]Neighbor, 0, 64),
		visible:    make([]Neighbor, 0, 64),
	}
}

// Params returns the active steering parameters.
func (s *FlockSystem) Params() SteeringParams {
	return s.params
}

// SetParams replaces the steering parameters.
func (s *FlockSystem) SetParams(p SteeringParams) {
	s.params = p
}

// Steer runs every behavior for one fish in a fixed order:
// classify, shoal or wander, boundaries, avoid, chase, follow.
func (s *FlockSystem) Steer(e ecs.Entity, f *components.Fish, grid *SpatialGrid, bounds Bounds, pointer Pointer) {
	f.ResetDiagnostics()
	f.Color = components.ColorDefault

	s.candidates = grid.QueryInto(s.candidates[:0], f.Location, f.LookRange)
	s.visible = VisibleNeighbors(s.visible[:0], e, f, s.candidates, s.params.ViewAngle)
	s.groups.Categorize(f.Mass, s.visible)

	if len(s.groups.Similar) > 0 {
		Shoal(f, s.groups.Similar, s.params)
	} else {
		Wander(f, s.rng, s.params)
	}

	Boundaries(f, bounds, s.params)

	if len(s.groups.Bigger) > 0 {
		Avoid(f, s.groups.Bigger, s.params.AvoidRangeFactor*f.LookRange, s.params.AvoidRepulsion)
	}
	if len(s.groups.Smaller) > 0 {
		Chase(f, s.groups.Smaller, s.params)
	}

	if pointer.Active {
		Seek(f, pointer.Position, s.params.FollowWeight, s.params.FollowSlowRange)
	}
}

// Update steers every entity in order. Fish missing from fishMap are skipped.
func (s *FlockSystem) Update(entities []ecs.Entity, fishMap *ecs.Map1[components.Fish], grid *SpatialGrid, bounds Bounds, pointer Pointer) {
	for _, e := range entities {
		f := fishMap.Get(e)
		if f == nil {
			continue
		}
		s.Steer(e, f, grid, bounds, pointer)
	}
}
