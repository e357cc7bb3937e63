package game

import "time"

// SlowMotionState is the easing state of slow motion.
type SlowMotionState int

const (
	Steady SlowMotionState = iota
	Decelerating
	Accelerating
)

func (s SlowMotionState) String() string {
	switch s {
	case Decelerating:
		return "decelerating"
	case Accelerating:
		return "accelerating"
	default:
		return "steady"
	}
}

// SlowMotion eases the tick interval and trail alpha between normal and
// slowed values, one step per tick.
type SlowMotion struct {
	state SlowMotionState

	normalTick, slowTick   time.Duration
	normalTrail, slowTrail float64

	steps int
	step  int // 0 = normal, steps = fully slowed
}

// NewSlowMotion creates a slow motion controller at normal speed.
func NewSlowMotion(normalTick, slowTick time.Duration, normalTrail, slowTrail float64, steps int) *SlowMotion {
	if steps < 1 {
		steps = 1
	}
	return &SlowMotion{
		normalTick:  normalTick,
		slowTick:    slowTick,
		normalTrail: normalTrail,
		slowTrail:   slowTrail,
		steps:       steps,
	}
}

// Set starts easing toward slowed (true) or normal (false) speed.
func (s *SlowMotion) Set(enabled bool) {
	switch {
	case enabled && s.step < s.steps:
		s.state = Decelerating
	case !enabled && s.step > 0:
		s.state = Accelerating
	default:
		s.state = Steady
	}
}

// Toggle reverses the current target.
func (s *SlowMotion) Toggle() {
	s.Set(!s.Enabled())
}

// Enabled reports whether slow motion is the current target.
func (s *SlowMotion) Enabled() bool {
	switch s.state {
	case Decelerating:
		return true
	case Accelerating:
		return false
	default:
		return s.step == s.steps
	}
}

// Step advances the easing by one tick.
func (s *SlowMotion) Step() {
	switch s.state {
	case Decelerating:
		s.step++
		if s.step >= s.steps {
			s.step = s.steps
			s.state = Steady
		}
	case Accelerating:
		s.step--
		if s.step <= 0 {
			s.step = 0
			s.state = Steady
		}
	}
}

// State returns the easing state.
func (s *SlowMotion) State() SlowMotionState { return s.state }

// Progress returns how far into slow motion the easing is, in [0, 1].
func (s *SlowMotion) Progress() float64 {
	return float64(s.step) / float64(s.steps)
}

// TickInterval returns the current interval between ticks.
func (s *SlowMotion) TickInterval() time.Duration {
	p := s.Progress()
	return s.normalTick + time.Duration(float64(s.slowTick-s.normalTick)*p)
}

// TrailAlpha returns the current trail opacity.
func (s *SlowMotion) TrailAlpha() float64 {
	p := s.Progress()
	return s.normalTrail + (s.slowTrail-s.normalTrail)*p
}
