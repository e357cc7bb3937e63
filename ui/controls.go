package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/shoal/game"
	"github.com/pthm-cable/shoal/systems"
)

// weightSlider describes one steering parameter exposed in the panel.
type weightSlider struct {
	Label    string
	Min, Max float32
	Field    func(*systems.SteeringParams) *float64
}

var weightSliders = []weightSlider{
	{"Separation", 0, 5, func(p *systems.SteeringParams) *float64 { return &p.SeparationWeight }},
	{"Alignment", 0, 5, func(p *systems.SteeringParams) *float64 { return &p.AlignmentWeight }},
	{"Cohesion", 0, 5, func(p *systems.SteeringParams) *float64 { return &p.CohesionWeight }},
	{"Follow", 0, 5, func(p *systems.SteeringParams) *float64 { return &p.FollowWeight }},
	{"Chase", 0, 2, func(p *systems.SteeringParams) *float64 { return &p.ChaseStrength }},
	{"Avoid", 0, 50, func(p *systems.SteeringParams) *float64 { return &p.AvoidRepulsion }},
}

// setWeight writes a slider value into p and reports whether it changed.
func setWeight(p *systems.SteeringParams, s weightSlider, v float32) bool {
	f := s.Field(p)
	nv := float64(min(max(v, s.Min), s.Max))
	if float32(*f) == float32(nv) {
		return false
	}
	*f = nv
	return true
}

func toggleText(on bool, onText, offText string) string {
	if on {
		return onText
	}
	return offText
}

// ControlsPanel renders the raygui control panel.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		visible:  true,
	}
}

// SetPosition updates the panel position.
func (c *ControlsPanel) SetPosition(x, y int32) {
	c.x = x
	c.y = y
}

// IsVisible returns whether the panel is shown.
func (c *ControlsPanel) IsVisible() bool {
	return c.visible
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// Draw renders the panel and applies any interaction to the game.
func (c *ControlsPanel) Draw(g *game.Game) {
	if !c.visible {
		return
	}

	r := c.renderer
	pad := r.Theme.Padding
	inner := float32(c.width - pad*2)
	height := int32(len(weightSliders))*38 + 110 + pad*2
	r.DrawPanel(c.x, c.y, c.width, height)

	x := float32(c.x + pad)
	y := float32(r.DrawSectionHeader(c.x+pad, c.y+pad, "Controls"))

	half := (inner - 10) / 2
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: half, Height: 26}, toggleText(g.Debug(), "Debug: on", "Debug: off")) {
		g.ToggleDebugVisualization()
	}
	if gui.Button(rl.Rectangle{X: x + half + 10, Y: y, Width: half, Height: 26}, toggleText(g.SlowMotion().Enabled(), "Slow-mo: on", "Slow-mo: off")) {
		g.ToggleSlowMotion()
	}
	y += 34

	if gui.Button(rl.Rectangle{X: x, Y: y, Width: half, Height: 26}, toggleText(g.Running(), "Pause", "Resume")) {
		if g.Running() {
			g.Stop()
		} else {
			g.Start()
		}
	}
	if gui.Button(rl.Rectangle{X: x + half + 10, Y: y, Width: half, Height: 26}, "Reset weights") {
		g.SetSteeringParams(systems.SteeringParamsFromConfig(g.Config()))
	}
	y += 40

	params := g.SteeringParams()
	changed := false
	for _, s := range weightSliders {
		cur := float32(*s.Field(&params))
		rl.DrawText(fmt.Sprintf("%s  %.2f", s.Label, cur), int32(x), int32(y), r.Theme.FontSize, r.Theme.LabelColor)
		y += 14
		v := gui.SliderBar(
			rl.Rectangle{X: x, Y: y, Width: inner, Height: 16},
			"", "",
			cur, s.Min, s.Max,
		)
		if setWeight(&params, s, v) {
			changed = true
		}
		y += 24
	}
	if changed {
		g.SetSteeringParams(params)
	}
}
