package game

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/shoal/config"
)

// Tier is an adaptive quality level.
type Tier int

const (
	TierLow Tier = iota
	TierMedium
	TierHigh
)

func (t Tier) String() string {
	switch t {
	case TierLow:
		return "low"
	case TierMedium:
		return "medium"
	case TierHigh:
		return "high"
	default:
		return fmt.Sprintf("tier(%d)", int(t))
	}
}

// ParseTier converts a tier name. Empty means high.
func ParseTier(name string) (Tier, error) {
	switch name {
	case "low":
		return TierLow, nil
	case "medium":
		return TierMedium, nil
	case "high", "":
		return TierHigh, nil
	default:
		return TierHigh, fmt.Errorf("unknown quality tier %q", name)
	}
}

// QualityController selects a tier from a rolling window of FPS samples.
type QualityController struct {
	enabled   bool
	size      int
	lowFPS    float64
	mediumFPS float64
	tiers     [3]config.QualityTier

	window []float64
	tier   Tier
	mean   float64
}

// NewQualityController creates a controller starting at the configured tier.
func NewQualityController(cfg config.QualityConfig) (*QualityController, error) {
	initial, err := ParseTier(cfg.Initial)
	if err != nil {
		return nil, err
	}
	size := cfg.WindowSize
	if size < 1 {
		size = 1
	}
	return &QualityController{
		enabled:   cfg.Enabled,
		size:      size,
		lowFPS:    cfg.LowFPS,
		mediumFPS: cfg.MediumFPS,
		tiers:     [3]config.QualityTier{cfg.Low, cfg.Medium, cfg.High},
		window:    make([]float64, 0, size),
		tier:      initial,
	}, nil
}

// Classify maps a mean FPS to a tier.
func (q *QualityController) Classify(meanFPS float64) Tier {
	switch {
	case meanFPS < q.lowFPS:
		return TierLow
	case meanFPS < q.mediumFPS:
		return TierMedium
	default:
		return TierHigh
	}
}

// Sample records one FPS measurement. It reports whether the tier changed.
// Once the window is full the oldest sample is dropped on each call; a tier
// change empties the window so the next change needs a full new window.
func (q *QualityController) Sample(fps float64) bool {
	if !q.enabled {
		return false
	}
	if len(q.window) == q.size {
		copy(q.window, q.window[1:])
		q.window = q.window[:q.size-1]
	}
	q.window = append(q.window, fps)
	if len(q.window) < q.size {
		return false
	}

	q.mean = stat.Mean(q.window, nil)
	next := q.Classify(q.mean)
	if next == q.tier {
		return false
	}
	q.tier = next
	q.window = q.window[:0]
	return true
}

// Tier returns the current tier.
func (q *QualityController) Tier() Tier { return q.tier }

// Settings returns the fish ceiling and detail level of the current tier.
func (q *QualityController) Settings() config.QualityTier { return q.tiers[q.tier] }

// MeanFPS returns the mean of the last full window.
func (q *QualityController) MeanFPS() float64 { return q.mean }

// Samples returns how many samples are in the current window.
func (q *QualityController) Samples() int { return len(q.window) }

// WindowFill returns how full the sample window is, in [0, 1].
func (q *QualityController) WindowFill() float64 {
	return float64(len(q.window)) / float64(q.size)
}
