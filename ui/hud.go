package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/shoal/game"
	"github.com/pthm-cable/shoal/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title      string
	Fish       int
	Tier       string
	Detail     int
	Tick       int64
	FPS        float64
	MeanFPS    float64
	Running    bool
	SlowMotion string
	Debug      bool
	Follow     bool

	WindowFill   float64 // quality sample window, [0, 1]
	SlowProgress float64 // slow motion easing, [0, 1]
}

// HUDDataFrom snapshots the game state for the HUD.
func HUDDataFrom(g *game.Game) HUDData {
	sm := g.SlowMotion()
	slow := "off"
	switch {
	case sm.State() != game.Steady:
		slow = sm.State().String()
	case sm.Enabled():
		slow = "on"
	}
	return HUDData{
		Title:      g.Config().Screen.Title,
		Fish:       g.World().Len(),
		Tier:       g.Quality().Tier().String(),
		Detail:     g.World().DetailLevel(),
		Tick:       g.TickCount(),
		FPS:        g.FPS(),
		MeanFPS:    g.Quality().MeanFPS(),
		Running:    g.Running(),
		SlowMotion: slow,
		Debug:      g.Debug(),
		Follow:     g.FollowActive(),

		WindowFill:   g.Quality().WindowFill(),
		SlowProgress: sm.Progress(),
	}
}

// hudLines formats the HUD body below the title.
func hudLines(d HUDData) []string {
	status := "Running"
	if !d.Running {
		status = "PAUSED"
	}
	return []string{
		fmt.Sprintf("Fish: %d | Tier: %s | Detail: %d", d.Fish, d.Tier, d.Detail),
		fmt.Sprintf("Tick: %d | FPS: %.0f (avg %.0f)", d.Tick, d.FPS, d.MeanFPS),
		fmt.Sprintf("%s | Slow motion: %s | Follow: %s", status, d.SlowMotion, onOff(d.Follow)),
	}
}

// hudBar is a labelled [0, 1] gauge under the HUD text.
type hudBar struct {
	Label string
	Value float32
}

func hudBars(d HUDData) []hudBar {
	return []hudBar{
		{Label: "Quality win", Value: float32(d.WindowFill)},
		{Label: "Slow-mo", Value: float32(d.SlowProgress)},
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{renderer: NewRenderer()}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	y := int32(35)
	for i, line := range hudLines(data) {
		color := rl.LightGray
		if i == 2 && !data.Running {
			color = rl.Yellow
		}
		rl.DrawText(line, 10, y, 16, color)
		y += 20
	}
	for _, b := range hudBars(data) {
		y = h.renderer.DrawBar(10, y, b.Label, b.Value, hudBarWidth)
	}
}

const hudBarWidth = 260

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// perfRow is one line of the perf panel.
type perfRow struct {
	Phase string
	Avg   time.Duration
	Pct   float64
	Level int // 0 normal, 1 warm, 2 hot
}

// perfRows orders phases by tick order and grades their share of the tick.
func perfRows(s telemetry.PerfStats) []perfRow {
	rows := make([]perfRow, 0, len(telemetry.Phases))
	for _, phase := range telemetry.Phases {
		avg, ok := s.PhaseAvg[phase]
		if !ok {
			continue
		}
		pct := s.PhasePct[phase]
		level := 0
		if pct > 40 {
			level = 2
		} else if pct > 20 {
			level = 1
		}
		rows = append(rows, perfRow{Phase: phase, Avg: avg, Pct: pct, Level: level})
	}
	return rows
}

// PerfPanel renders the tick phase timing panel.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y, width int32) *PerfPanel {
	return &PerfPanel{renderer: NewRenderer(), x: x, y: y, width: width}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(s telemetry.PerfStats) {
	r := p.renderer
	pad := r.Theme.Padding
	rows := perfRows(s)
	height := int32(len(rows)+3)*r.Theme.LineHeight + pad*2

	r.DrawPanel(p.x, p.y, p.width, height)
	x := p.x + pad
	y := r.DrawSectionHeader(x, p.y+pad, "Tick Performance")
	y = r.DrawLabelValue(x, y, "Tick", s.AvgTickDuration.Round(time.Microsecond).String())
	y = r.DrawLabelValue(x, y, "Ticks/s", fmt.Sprintf("%.0f", s.TicksPerSecond))

	for _, row := range rows {
		color := r.Theme.LabelColor
		switch row.Level {
		case 2:
			color = r.Theme.HotColor
		case 1:
			color = r.Theme.WarnColor
		}
		rl.DrawText(
			fmt.Sprintf("%-14s %8s %5.1f%%", row.Phase, row.Avg.Round(time.Microsecond), row.Pct),
			x, y, r.Theme.FontSize, color,
		)
		y += r.Theme.LineHeight
	}
}
