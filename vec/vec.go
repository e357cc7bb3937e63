// Package vec provides 2D vector arithmetic for the simulation.
//
// Mutating operations use pointer receivers and return the receiver so calls
// can be chained. Pure operations use value receivers and return a new vector.
package vec

import (
	"errors"
	"log/slog"
	"math"
	"sync/atomic"
)

// ErrDivisionByZero is returned by DivStrict when the divisor is zero.
var ErrDivisionByZero = errors.New("vec: division by zero")

// divByZero counts ignored divisions by zero across the process.
var divByZero atomic.Uint64

// DivisionByZeroCount returns how many divisions by zero were ignored by Div
// and DividedBy since process start.
func DivisionByZeroCount() uint64 {
	return divByZero.Load()
}

func flagDivisionByZero(v Vec2) {
	divByZero.Add(1)
	slog.Debug("vec_division_by_zero", "x", v.X, "y", v.Y)
}

// Vec2 is a 2D vector.
type Vec2 struct {
	X, Y float64
}

// New returns a vector with the given components.
func New(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

// FromAngle returns a vector of the given magnitude pointing at angle (radians).
func FromAngle(angle, magnitude float64) Vec2 {
	return Vec2{X: math.Cos(angle) * magnitude, Y: math.Sin(angle) * magnitude}
}

// Zero returns the zero vector.
func Zero() Vec2 {
	return Vec2{}
}

// Mutating operations

// Add adds o to v.
func (v *Vec2) Add(o Vec2) *Vec2 {
	v.X += o.X
	v.Y += o.Y
	return v
}

// Sub subtracts o from v.
func (v *Vec2) Sub(o Vec2) *Vec2 {
	v.X -= o.X
	v.Y -= o.Y
	return v
}

// Mul scales v by s.
func (v *Vec2) Mul(s float64) *Vec2 {
	v.X *= s
	v.Y *= s
	return v
}

// Div divides v by s. A zero divisor leaves v unchanged and is recorded
// (see DivisionByZeroCount) instead of producing Inf or NaN components.
func (v *Vec2) Div(s float64) *Vec2 {
	if s == 0 {
		flagDivisionByZero(*v)
		return v
	}
	v.X /= s
	v.Y /= s
	return v
}

// Normalize scales v to unit length. The zero vector stays zero.
func (v *Vec2) Normalize() *Vec2 {
	m := v.Magnitude()
	if m == 0 {
		return v
	}
	v.X /= m
	v.Y /= m
	return v
}

// SetMagnitude keeps the direction of v and sets its length to m.
func (v *Vec2) SetMagnitude(m float64) *Vec2 {
	return v.Normalize().Mul(m)
}

// SetAngle keeps the length of v and points it at angle (radians).
func (v *Vec2) SetAngle(angle float64) *Vec2 {
	m := v.Magnitude()
	v.X = math.Cos(angle) * m
	v.Y = math.Sin(angle) * m
	return v
}

// Rotate rotates v by angle radians (counter-clockwise in a y-up frame).
func (v *Vec2) Rotate(angle float64) *Vec2 {
	sin, cos := math.Sincos(angle)
	x := v.X*cos - v.Y*sin
	y := v.X*sin + v.Y*cos
	v.X, v.Y = x, y
	return v
}

// Limit clamps the magnitude of v to max. Shorter vectors are unchanged.
func (v *Vec2) Limit(max float64) *Vec2 {
	mSq := v.MagnitudeSquared()
	if mSq > max*max && mSq > 0 {
		v.Mul(max / math.Sqrt(mSq))
	}
	return v
}

// Lerp moves v towards o by fraction t.
func (v *Vec2) Lerp(o Vec2, t float64) *Vec2 {
	v.X += (o.X - v.X) * t
	v.Y += (o.Y - v.Y) * t
	return v
}

// Set overwrites v with o.
func (v *Vec2) Set(o Vec2) *Vec2 {
	*v = o
	return v
}

// Pure operations

// Plus returns v + o.
func (v Vec2) Plus(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Minus returns v - o.
func (v Vec2) Minus(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

// Times returns v * s.
func (v Vec2) Times(s float64) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

// DividedBy returns v / s. A zero divisor returns v unchanged and is recorded
// like Div.
func (v Vec2) DividedBy(s float64) Vec2 {
	v.Div(s)
	return v
}

// SafeDiv returns v / s, or def when s is zero.
func (v Vec2) SafeDiv(s float64, def Vec2) Vec2 {
	if s == 0 {
		return def
	}
	return Vec2{X: v.X / s, Y: v.Y / s}
}

// DivStrict returns v / s, or ErrDivisionByZero when s is zero.
func (v Vec2) DivStrict(s float64) (Vec2, error) {
	if s == 0 {
		return v, ErrDivisionByZero
	}
	return Vec2{X: v.X / s, Y: v.Y / s}, nil
}

// Normalized returns the unit vector in the direction of v.
func (v Vec2) Normalized() Vec2 {
	v.Normalize()
	return v
}

// WithMagnitude returns v scaled to length m.
func (v Vec2) WithMagnitude(m float64) Vec2 {
	v.SetMagnitude(m)
	return v
}

// WithAngle returns v rotated to point at angle, keeping its length.
func (v Vec2) WithAngle(angle float64) Vec2 {
	v.SetAngle(angle)
	return v
}

// Rotated returns v rotated by angle radians.
func (v Vec2) Rotated(angle float64) Vec2 {
	v.Rotate(angle)
	return v
}

// Limited returns v with its magnitude clamped to max.
func (v Vec2) Limited(max float64) Vec2 {
	v.Limit(max)
	return v
}

// Lerped returns the point a fraction t of the way from v to o.
func (v Vec2) Lerped(o Vec2, t float64) Vec2 {
	v.Lerp(o, t)
	return v
}

// Copy returns a copy of v.
func (v Vec2) Copy() Vec2 {
	return v
}

// Queries

// Magnitude returns the length of v.
func (v Vec2) Magnitude() float64 {
	return math.Hypot(v.X, v.Y)
}

// MagnitudeSquared returns the squared length of v.
func (v Vec2) MagnitudeSquared() float64 {
	return v.X*v.X + v.Y*v.Y
}

// Angle returns the heading of v in radians, in (-Pi, Pi].
func (v Vec2) Angle() float64 {
	return math.Atan2(v.Y, v.X)
}

// AngleBetween returns the unsigned angle between v and o in [0, Pi].
// Zero vectors yield 0.
func (v Vec2) AngleBetween(o Vec2) float64 {
	denom := v.Magnitude() * o.Magnitude()
	if denom == 0 {
		return 0
	}
	c := v.Dot(o) / denom
	if c > 1 {
		c = 1
	} else if c < -1 {
		c = -1
	}
	return math.Acos(c)
}

// Dot returns the dot product of v and o.
func (v Vec2) Dot(o Vec2) float64 {
	return v.X*o.X + v.Y*o.Y
}

// Cross returns the z component of the 3D cross product of v and o.
func (v Vec2) Cross(o Vec2) float64 {
	return v.X*o.Y - v.Y*o.X
}

// Distance returns the Euclidean distance between v and o.
func (v Vec2) Distance(o Vec2) float64 {
	return math.Hypot(v.X-o.X, v.Y-o.Y)
}

// DistanceSquared returns the squared distance between v and o.
func (v Vec2) DistanceSquared(o Vec2) float64 {
	dx := v.X - o.X
	dy := v.Y - o.Y
	return dx*dx + dy*dy
}

// Equals reports whether v and o have identical components.
func (v Vec2) Equals(o Vec2) bool {
	return v.X == o.X && v.Y == o.Y
}

// ApproxEquals reports whether v and o differ by at most eps per component.
func (v Vec2) ApproxEquals(o Vec2, eps float64) bool {
	return math.Abs(v.X-o.X) <= eps && math.Abs(v.Y-o.Y) <= eps
}

// IsZero reports whether v is the zero vector.
func (v Vec2) IsZero() bool {
	return v.X == 0 && v.Y == 0
}
