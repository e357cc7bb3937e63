package telemetry

// FlockSample is the world state sampled when a window closes.
type FlockSample struct {
	Count       int
	Tier        string
	DetailLevel int

	Speeds []float64
	Masses []float64
	VX, VY []float64

	Shoaling  int
	Wandering int
	Avoiding  int
	Chasing   int

	DivByZero uint64
}

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDurationTicks int64
	dt                  float64

	windowStartTick int64

	// Event counters for the current window
	spawned     int
	removed     int
	tierChanges int
	fps         []float64
}

// NewCollector creates a new stats collector.
// windowDurationSec is the window length in simulation seconds and dt the
// seconds per tick.
func NewCollector(windowDurationSec, dt float64) *Collector {
	ticksPerWindow := int64(1)
	if dt > 0 {
		ticksPerWindow = int64(windowDurationSec / dt)
	}
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}
	return &Collector{
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// RecordSpawn records n fish added by a population commit.
func (c *Collector) RecordSpawn(n int) {
	c.spawned += n
}

// RecordRemove records n fish removed by a population commit.
func (c *Collector) RecordRemove(n int) {
	c.removed += n
}

// RecordTierChange records a quality tier transition.
func (c *Collector) RecordTierChange() {
	c.tierChanges++
}

// RecordFPS records one frame rate sample.
func (c *Collector) RecordFPS(fps float64) {
	c.fps = append(c.fps, fps)
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int64) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int64, s FlockSample) WindowStats {
	speed := ComputeDistribution(s.Speeds)
	mass := ComputeDistribution(s.Masses)
	fps := ComputeDistribution(c.fps)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * c.dt,

		FishCount:   s.Count,
		Tier:        s.Tier,
		DetailLevel: s.DetailLevel,

		Spawned:     c.spawned,
		Removed:     c.removed,
		TierChanges: c.tierChanges,

		FPSMean: fps.Mean,
		FPSP10:  fps.P10,
		FPSP50:  fps.P50,

		SpeedMean: speed.Mean,
		SpeedStd:  speed.Std,
		SpeedP10:  speed.P10,
		SpeedP50:  speed.P50,
		SpeedP90:  speed.P90,

		MassMean:     mass.Mean,
		Polarization: Polarization(s.VX, s.VY),

		DivByZero: s.DivByZero,
	}
	if s.Count > 0 {
		n := float64(s.Count)
		stats.ShoalingFrac = float64(s.Shoaling) / n
		stats.WanderingFrac = float64(s.Wandering) / n
		stats.AvoidingFrac = float64(s.Avoiding) / n
		stats.ChasingFrac = float64(s.Chasing) / n
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.spawned = 0
	c.removed = 0
	c.tierChanges = 0
	c.fps = c.fps[:0]

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int64 {
	return c.windowDurationTicks
}
