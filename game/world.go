package game

import (
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/shoal/components"
	"github.com/pthm-cable/shoal/config"
	"github.com/pthm-cable/shoal/vec"
)

// populationChange is a queued change applied between ticks.
type populationChange struct {
	target int // desired agent count, -1 to keep
	detail int // detail level to stamp, 0 to keep
}

// World owns the fish arena and the ordered agent list.
type World struct {
	Width, Height float64

	ecs     *ecs.World
	fishMap *ecs.Map1[components.Fish]
	filter  *ecs.Filter1[components.Fish]

	// agents preserves creation order; truncation removes from the end.
	agents []ecs.Entity
	nextID uint32

	pending []populationChange

	rng     *rand.Rand
	factors components.Factors
	massMin float64
	massMax float64
	minVel  float64
	detail  int
}

// NewWorld creates an empty world.
func NewWorld(width, height float64, cfg *config.Config, rng *rand.Rand) *World {
	w := ecs.NewWorld()
	return &World{
		Width:   width,
		Height:  height,
		ecs:     w,
		fishMap: ecs.NewMap1[components.Fish](w),
		filter:  ecs.NewFilter1[components.Fish](w),
		rng:     rng,
		factors: components.FactorsFromConfig(cfg),
		massMin: cfg.Fish.MassMin,
		massMax: cfg.Fish.MassMax,
		minVel:  cfg.Fish.MinVelocity,
		detail:  components.DetailFull,
	}
}

// Len returns the number of live agents.
func (w *World) Len() int { return len(w.agents) }

// Entities returns the ordered agent list. The slice is owned by the world.
func (w *World) Entities() []ecs.Entity { return w.agents }

// FishMap returns the component mapper.
func (w *World) FishMap() *ecs.Map1[components.Fish] { return w.fishMap }

// Fish returns the component for e, or nil if e is no longer alive.
func (w *World) Fish(e ecs.Entity) *components.Fish {
	if !w.ecs.Alive(e) {
		return nil
	}
	return w.fishMap.Get(e)
}

// DetailLevel returns the level stamped on every agent.
func (w *World) DetailLevel() int { return w.detail }

// sampleMass draws a right-skewed mass from the product of four uniforms.
func (w *World) sampleMass() float64 {
	u := w.rng.Float64() * w.rng.Float64() * w.rng.Float64() * w.rng.Float64()
	return w.massMin + (w.massMax-w.massMin)*u
}

// Spawn creates one agent immediately. Only call between ticks.
func (w *World) Spawn() ecs.Entity {
	f := components.NewFish(w.nextID, w.sampleMass(), w.factors)
	w.nextID++

	f.Location = vec.New(w.rng.Float64()*w.Width, w.rng.Float64()*w.Height)
	speed := max(w.rng.Float64()*f.MaxSpeed, w.minVel)
	angle := w.rng.Float64() * 2 * math.Pi
	f.Velocity = vec.FromAngle(angle, min(speed, f.MaxSpeed))
	f.Heading = angle
	f.DetailLevel = w.detail

	e := w.fishMap.NewEntity(&f)
	w.agents = append(w.agents, e)
	return e
}

// truncate removes agents from the end of the ordered list until n remain.
func (w *World) truncate(n int) int {
	removed := 0
	for len(w.agents) > n {
		last := len(w.agents) - 1
		w.ecs.RemoveEntity(w.agents[last])
		w.agents = w.agents[:last]
		removed++
	}
	return removed
}

// setDetail stamps the detail level on every agent.
func (w *World) setDetail(level int) {
	w.detail = level
	q := w.filter.Query()
	for q.Next() {
		q.Get().DetailLevel = level
	}
}

// QueuePopulation schedules a change of agent count and detail level for the
// next commit. A negative target keeps the count, a zero detail keeps the level.
func (w *World) QueuePopulation(target, detail int) {
	w.pending = append(w.pending, populationChange{target: target, detail: detail})
}

// Pending returns the number of queued changes.
func (w *World) Pending() int { return len(w.pending) }

// Commit applies queued changes in order and returns how many agents were
// spawned and removed.
func (w *World) Commit() (spawned, removed int) {
	for _, c := range w.pending {
		if c.detail > 0 {
			w.detail = c.detail
		}
		if c.target >= 0 {
			removed += w.truncate(c.target)
			for len(w.agents) < c.target {
				w.Spawn()
				spawned++
			}
		}
		if c.detail > 0 {
			w.setDetail(c.detail)
		}
	}
	w.pending = w.pending[:0]
	return spawned, removed
}

// Resize changes the world bounds. Agents outside are handled by the
// boundary policy on the next tick.
func (w *World) Resize(width, height float64) {
	w.Width, w.Height = width, height
}

// Clear removes every agent and pending change.
func (w *World) Clear() {
	w.truncate(0)
	w.pending = w.pending[:0]
}
