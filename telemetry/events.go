// Package telemetry provides performance timing, flock statistics and CSV output.
package telemetry

import (
	"log/slog"
	"strconv"
)

// EventType identifies quality and control events.
type EventType string

const (
	EventTierChanged         EventType = "tier_changed"
	EventPopulationCommitted EventType = "population_committed"
	EventSlowMotion          EventType = "slow_motion"
)

// Event is one row of quality.csv.
type Event struct {
	Tick        int64     `csv:"tick"`
	Type        EventType `csv:"type"`
	From        string    `csv:"from"`
	To          string    `csv:"to"`
	MeanFPS     float64   `csv:"mean_fps"`
	FishCount   int       `csv:"fish"`
	DetailLevel int       `csv:"detail_level"`
}

// NewTierChangeEvent creates an event for a quality tier transition.
func NewTierChangeEvent(tick int64, from, to string, meanFPS float64, fishMax, detail int) Event {
	return Event{
		Tick:        tick,
		Type:        EventTierChanged,
		From:        from,
		To:          to,
		MeanFPS:     meanFPS,
		FishCount:   fishMax,
		DetailLevel: detail,
	}
}

// NewPopulationEvent creates an event for a committed population change.
func NewPopulationEvent(tick int64, before, after, detail int) Event {
	return Event{
		Tick:        tick,
		Type:        EventPopulationCommitted,
		FishCount:   after,
		DetailLevel: detail,
		From:        strconv.Itoa(before),
		To:          strconv.Itoa(after),
	}
}

// NewSlowMotionEvent creates an event for a slow motion toggle.
func NewSlowMotionEvent(tick int64, enabled bool) Event {
	from, to := "on", "off"
	if enabled {
		from, to = "off", "on"
	}
	return Event{
		Tick: tick,
		Type: EventSlowMotion,
		From: from,
		To:   to,
	}
}

// LogEvent logs the event using slog.
func (e Event) LogEvent() {
	slog.Info(string(e.Type),
		"tick", e.Tick,
		"from", e.From,
		"to", e.To,
		"mean_fps", e.MeanFPS,
		"fish", e.FishCount,
		"detail_level", e.DetailLevel,
	)
}
