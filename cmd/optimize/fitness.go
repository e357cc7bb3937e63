package main

import (
	"fmt"
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/shoal/config"
	"github.com/pthm-cable/shoal/game"
	"github.com/pthm-cable/shoal/telemetry"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params      *ParamVector
	maxTicks    int64
	fish        int
	seeds       []int64
	baseConfig  *config.Config
	statsWindow float64

	mu          sync.Mutex
	lastQuality float64 // quality from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int64, fish int, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		fish:        fish,
		seeds:       seeds,
		baseConfig:  baseCfg,
		statsWindow: 2.0,
	}
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Fitness is the negative mean flock quality over all seeds.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg, err := fe.configFor(x)
	if err != nil {
		// Outside the valid config space
		return 0
	}

	// One game per goroutine, nothing shared but the read-only config
	qualities := make([]float64, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			windows, err := runSimulation(cfg, s, fe.fish, fe.maxTicks, fe.statsWindow, "")
			if err != nil {
				return
			}
			qualities[idx] = computeQuality(windows)
		}(i, seed)
	}
	wg.Wait()

	q := stat.Mean(qualities, nil)
	fe.mu.Lock()
	fe.lastQuality = q
	fe.mu.Unlock()
	return -q
}

// configFor returns a validated copy of the base config with x applied.
func (fe *FitnessEvaluator) configFor(x []float64) (*config.Config, error) {
	cfg := fe.baseConfig.Clone()
	fe.params.ApplyToConfig(cfg, x)
	if err := cfg.Recompute(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// runSimulation executes a single headless run and returns its stats windows.
// A non-empty outputDir also writes the run's CSV telemetry.
func runSimulation(cfg *config.Config, seed int64, fish int, maxTicks int64, statsWindow float64, outputDir string) ([]telemetry.WindowStats, error) {
	var windows []telemetry.WindowStats
	g, err := game.New(cfg, game.Options{
		Seed:           seed,
		Headless:       true,
		OutputDir:      outputDir,
		StatsWindowSec: statsWindow,
		StatsCallback: func(stats telemetry.WindowStats) {
			windows = append(windows, stats)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("creating game: %w", err)
	}
	defer g.Dispose()

	g.Initialize(0, 0, fish)
	g.Start()
	for g.TickCount() < maxTicks {
		g.Tick()
	}
	return windows, nil
}

// Quality component weights.
const (
	qualityWeightPolarization = 0.35
	qualityWeightShoaling     = 0.30
	qualityWeightStability    = 0.20
	qualityWeightSpeed        = 0.15

	qualityWarmupWindows = 2 // skip first N windows while schools form
	targetSpeed          = 6.0
)

// computeQuality scores flock behavior in [0, 1] from window stats: aligned,
// mostly shoaling, stable over time and not stalled.
func computeQuality(windows []telemetry.WindowStats) float64 {
	if len(windows) <= qualityWarmupWindows {
		return 0
	}
	valid := windows[qualityWarmupWindows:]

	pol := make([]float64, len(valid))
	shoal := make([]float64, len(valid))
	speed := make([]float64, len(valid))
	for i, w := range valid {
		pol[i] = w.Polarization
		shoal[i] = w.ShoalingFrac
		speed[i] = w.SpeedMean
	}

	polMean, polStd := stat.MeanStdDev(pol, nil)
	stability := 1.0
	if polMean > 0 && len(pol) >= 2 {
		cv := polStd / polMean
		stability = math.Exp(-cv * cv)
	}

	// Peaks at targetSpeed, falls off for stalled or frantic flocks
	speedErr := (stat.Mean(speed, nil) - targetSpeed) / targetSpeed
	speedScore := math.Exp(-speedErr * speedErr / 0.25)

	quality := qualityWeightPolarization*polMean +
		qualityWeightShoaling*stat.Mean(shoal, nil) +
		qualityWeightStability*stability +
		qualityWeightSpeed*speedScore

	return min(max(quality, 0), 1)
}
