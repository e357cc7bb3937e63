package telemetry

import (
	"math"
	"testing"
)

func TestCollectorWindow(t *testing.T) {
	c := NewCollector(1.0, 0.1)
	if c.WindowDurationTicks() != 10 {
		t.Fatalf("WindowDurationTicks = %d, want 10", c.WindowDurationTicks())
	}
	if c.ShouldFlush(9) {
		t.Error("should not flush before the window ends")
	}
	if !c.ShouldFlush(10) {
		t.Error("should flush at the window end")
	}
}

func TestCollectorFlush(t *testing.T) {
	c := NewCollector(1.0, 0.1)
	c.RecordSpawn(5)
	c.RecordSpawn(2)
	c.RecordRemove(3)
	c.RecordTierChange()
	for _, fps := range []float64{30, 40, 50} {
		c.RecordFPS(fps)
	}

	stats := c.Flush(10, FlockSample{
		Count:       4,
		Tier:        "medium",
		DetailLevel: 2,
		Speeds:      []float64{1, 2, 3, 4},
		Masses:      []float64{1, 1, 1, 1},
		VX:          []float64{1, 1, 1, 1},
		VY:          []float64{0, 0, 0, 0},
		Shoaling:    2,
		Wandering:   1,
		Chasing:     1,
	})

	if stats.WindowStartTick != 0 || stats.WindowEndTick != 10 {
		t.Errorf("window = [%d, %d], want [0, 10]", stats.WindowStartTick, stats.WindowEndTick)
	}
	if math.Abs(stats.SimTimeSec-1.0) > 1e-9 {
		t.Errorf("sim time = %v, want 1.0", stats.SimTimeSec)
	}
	if stats.Spawned != 7 || stats.Removed != 3 || stats.TierChanges != 1 {
		t.Errorf("event counts = %d/%d/%d, want 7/3/1", stats.Spawned, stats.Removed, stats.TierChanges)
	}
	if stats.FPSMean != 40 {
		t.Errorf("fps mean = %v, want 40", stats.FPSMean)
	}
	if stats.SpeedMean != 2.5 {
		t.Errorf("speed mean = %v, want 2.5", stats.SpeedMean)
	}
	if stats.Polarization != 1 {
		t.Errorf("polarization = %v, want 1", stats.Polarization)
	}
	if stats.ShoalingFrac != 0.5 || stats.WanderingFrac != 0.25 || stats.ChasingFrac != 0.25 || stats.AvoidingFrac != 0 {
		t.Errorf("unexpected behavior fractions: %+v", stats)
	}

	// Counters reset for the next window
	next := c.Flush(20, FlockSample{})
	if next.WindowStartTick != 10 {
		t.Errorf("next window start = %d, want 10", next.WindowStartTick)
	}
	if next.Spawned != 0 || next.Removed != 0 || next.TierChanges != 0 || next.FPSMean != 0 {
		t.Errorf("counters not reset: %+v", next)
	}
}

func TestCollectorTinyWindow(t *testing.T) {
	c := NewCollector(0.001, 0.1)
	if c.WindowDurationTicks() != 1 {
		t.Errorf("WindowDurationTicks = %d, want at least 1", c.WindowDurationTicks())
	}
}
