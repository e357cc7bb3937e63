package game

import (
	"log/slog"

	"github.com/pthm-cable/shoal/components"
	"github.com/pthm-cable/shoal/telemetry"
	"github.com/pthm-cable/shoal/vec"
)

// flushTelemetry checks if the stats window should be flushed and writes it.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.tick) {
		return
	}

	stats := g.collector.Flush(g.tick, g.sampleFlock())
	perfStats := g.perf.Stats()

	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := g.output.WriteTelemetry(stats); err != nil {
		slog.Error("failed to write telemetry", "error", err)
	}
	if err := g.output.WritePerf(perfStats, stats.WindowEndTick); err != nil {
		slog.Error("failed to write perf", "error", err)
	}
}

// sampleFlock collects per-fish values for the window statistics.
func (g *Game) sampleFlock() telemetry.FlockSample {
	n := g.world.Len()
	s := telemetry.FlockSample{
		Count:       n,
		Tier:        g.quality.Tier().String(),
		DetailLevel: g.world.DetailLevel(),
		Speeds:      make([]float64, 0, n),
		Masses:      make([]float64, 0, n),
		VX:          make([]float64, 0, n),
		VY:          make([]float64, 0, n),
		DivByZero:   vec.DivisionByZeroCount(),
	}

	q := g.world.filter.Query()
	for q.Next() {
		f := q.Get()
		s.Speeds = append(s.Speeds, f.Velocity.Magnitude())
		s.Masses = append(s.Masses, f.Mass)
		s.VX = append(s.VX, f.Velocity.X)
		s.VY = append(s.VY, f.Velocity.Y)

		switch f.Color {
		case components.ColorShoaling:
			s.Shoaling++
		case components.ColorWandering:
			s.Wandering++
		}
		// A fish can avoid and chase in the same tick
		if len(f.Avoiding) > 0 {
			s.Avoiding++
		}
		if len(f.Chasing) > 0 {
			s.Chasing++
		}
	}
	return s
}
