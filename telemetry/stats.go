package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated flock statistics for a time window.
type WindowStats struct {
	WindowStartTick int64   `csv:"-"`
	WindowEndTick   int64   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Population and quality at window end
	FishCount   int    `csv:"fish"`
	Tier        string `csv:"tier"`
	DetailLevel int    `csv:"detail_level"`

	// Events during window
	Spawned     int `csv:"spawned"`
	Removed     int `csv:"removed"`
	TierChanges int `csv:"tier_changes"`

	// Frame rate over the window
	FPSMean float64 `csv:"fps_mean"`
	FPSP10  float64 `csv:"fps_p10"`
	FPSP50  float64 `csv:"fps_p50"`

	// Speed distribution (sampled at window end)
	SpeedMean float64 `csv:"speed_mean"`
	SpeedStd  float64 `csv:"speed_std"`
	SpeedP10  float64 `csv:"speed_p10"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`

	MassMean float64 `csv:"mass_mean"`

	// Polarization is |mean unit heading|: 1 = all aligned, ~0 = disordered
	Polarization float64 `csv:"polarization"`

	// Fraction of fish per behavior tag
	ShoalingFrac  float64 `csv:"shoaling_frac"`
	WanderingFrac float64 `csv:"wandering_frac"`
	AvoidingFrac  float64 `csv:"avoiding_frac"`
	ChasingFrac   float64 `csv:"chasing_frac"`

	DivByZero uint64 `csv:"div_by_zero"`
}

// Distribution summarizes a sample.
type Distribution struct {
	Mean, Std     float64
	P10, P50, P90 float64
}

// Percentile calculates the p-th percentile of a sorted slice with linear
// interpolation. p should be in [0, 1]. Returns 0 if the slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}
	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeDistribution returns the mean, population standard deviation and
// percentiles of values. values is not modified.
func ComputeDistribution(values []float64) Distribution {
	if len(values) == 0 {
		return Distribution{}
	}
	mean, std := stat.PopMeanStdDev(values, nil)

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	return Distribution{
		Mean: mean,
		Std:  std,
		P10:  Percentile(sorted, 0.10),
		P50:  Percentile(sorted, 0.50),
		P90:  Percentile(sorted, 0.90),
	}
}

// Polarization returns the magnitude of the mean unit heading vector.
// Zero-length headings are ignored.
func Polarization(vx, vy []float64) float64 {
	n := min(len(vx), len(vy))
	ux := make([]float64, 0, n)
	uy := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		m := math.Hypot(vx[i], vy[i])
		if m == 0 {
			continue
		}
		ux = append(ux, vx[i]/m)
		uy = append(uy, vy[i]/m)
	}
	if len(ux) == 0 {
		return 0
	}
	return math.Hypot(floats.Sum(ux), floats.Sum(uy)) / float64(len(ux))
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_start", s.WindowStartTick),
		slog.Int64("window_end", s.WindowEndTick),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("fish", s.FishCount),
		slog.String("tier", s.Tier),
		slog.Int("detail_level", s.DetailLevel),
		slog.Int("spawned", s.Spawned),
		slog.Int("removed", s.Removed),
		slog.Int("tier_changes", s.TierChanges),
		slog.Float64("fps_mean", s.FPSMean),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_std", s.SpeedStd),
		slog.Float64("mass_mean", s.MassMean),
		slog.Float64("polarization", s.Polarization),
		slog.Float64("shoaling_frac", s.ShoalingFrac),
		slog.Float64("wandering_frac", s.WanderingFrac),
		slog.Float64("avoiding_frac", s.AvoidingFrac),
		slog.Float64("chasing_frac", s.ChasingFrac),
		slog.Uint64("div_by_zero", s.DivByZero),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"fish", s.FishCount,
		"tier", s.Tier,
		"detail_level", s.DetailLevel,
		"spawned", s.Spawned,
		"removed", s.Removed,
		"tier_changes", s.TierChanges,
		"fps_mean", s.FPSMean,
		"fps_p10", s.FPSP10,
		"speed_mean", s.SpeedMean,
		"speed_p50", s.SpeedP50,
		"polarization", s.Polarization,
		"shoaling_frac", s.ShoalingFrac,
		"wandering_frac", s.WanderingFrac,
		"avoiding_frac", s.AvoidingFrac,
		"chasing_frac", s.ChasingFrac,
		"div_by_zero", s.DivByZero,
	)
}
