package renderer

import (
	"fmt"
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/shoal/camera"
	"github.com/pthm-cable/shoal/components"
	"github.com/pthm-cable/shoal/config"
	"github.com/pthm-cable/shoal/systems"
	"github.com/pthm-cable/shoal/vec"
)

// Style holds the colors and proportions used to draw the flock.
type Style struct {
	TrailAlpha float64

	Background Color
	Fish       Color
	Shoal      Color
	Avoid      Color
	Chase      Color
	Outline    Color
	Grid       Color
	Highlight  Color

	// BodyWidthFactor is the body half-width as a fraction of body length.
	BodyWidthFactor float64
}

// StyleFromConfig builds a Style from the render config section.
func StyleFromConfig(cfg *config.Config) Style {
	r := cfg.Render
	return Style{
		TrailAlpha:      r.TrailAlpha,
		Background:      ColorFrom(r.Background),
		Fish:            ColorFrom(r.FishColor),
		Shoal:           ColorFrom(r.ShoalColor),
		Avoid:           ColorFrom(r.AvoidColor),
		Chase:           ColorFrom(r.ChaseColor),
		Outline:         ColorFrom(r.OutlineColor),
		Grid:            ColorFrom(r.GridColor),
		Highlight:       ColorFrom(r.HighlightColor),
		BodyWidthFactor: r.BodyWidthFactor,
	}
}

// Scene is everything the renderer needs for one frame.
type Scene struct {
	Fish []*components.Fish
	// Lookup resolves neighbor entities for the debug overlay.
	Lookup func(ecs.Entity) *components.Fish

	Grid    *systems.SpatialGrid
	Debug   bool
	Pointer vec.Vec2

	// TrailAlpha overrides Style.TrailAlpha when positive.
	TrailAlpha float64
}

// Renderer draws scenes into an off-screen buffer and blits it to the canvas.
type Renderer struct {
	canvas Canvas
	buffer Buffer
	cam    *camera.Camera
	style  Style

	width, height int

	// Stats from the last Draw
	drawn  int
	culled int
}

// NewRenderer creates a renderer with an off-screen buffer matching the
// canvas size.
func NewRenderer(canvas Canvas, cam *camera.Camera, style Style) (*Renderer, error) {
	if canvas == nil {
		return nil, ErrSurfaceUnavailable
	}
	w, h := canvas.Width(), canvas.Height()
	buf, err := canvas.NewBuffer(w, h)
	if err != nil {
		return nil, fmt.Errorf("creating off-screen buffer: %w", err)
	}
	if buf == nil {
		return nil, ErrSurfaceUnavailable
	}
	if cam == nil {
		cam = camera.New(float64(w), float64(h), float64(w), float64(h))
	}
	return &Renderer{
		canvas: canvas,
		buffer: buf,
		cam:    cam,
		style:  style,
		width:  w,
		height: h,
	}, nil
}

// Resize resizes the off-screen buffer.
func (r *Renderer) Resize(w, h int) error {
	if r.buffer == nil {
		return ErrSurfaceUnavailable
	}
	if err := r.buffer.Resize(w, h); err != nil {
		return fmt.Errorf("resizing buffer: %w", err)
	}
	r.width, r.height = w, h
	return nil
}

// Release frees the off-screen buffer. The renderer is unusable afterwards.
func (r *Renderer) Release() {
	if r.buffer != nil {
		r.buffer.Release()
		r.buffer = nil
	}
}

// Drawn returns how many fish were drawn by the last Draw.
func (r *Renderer) Drawn() int { return r.drawn }

// Culled returns how many fish were skipped as off-screen by the last Draw.
func (r *Renderer) Culled() int { return r.culled }

// Draw renders one frame and blits it.
func (r *Renderer) Draw(s Scene) {
	if r.buffer == nil {
		return
	}
	buf := r.buffer
	buf.Begin()

	trail := r.style.TrailAlpha
	if s.TrailAlpha > 0 {
		trail = s.TrailAlpha
	}
	buf.SetFillColor(r.style.Background.WithAlpha(trail))
	buf.FillRect(0, 0, float64(r.width), float64(r.height))

	r.drawn, r.culled = 0, 0
	for _, f := range s.Fish {
		if !r.cam.IsVisible(f.Location.X, f.Location.Y, f.BodyLength) {
			r.culled++
			continue
		}
		r.drawFish(buf, f, s.Debug)
		r.drawn++
	}

	if s.Debug {
		r.drawGrid(buf, s.Grid)
		r.drawFocus(buf, s)
	}

	buf.End()
	r.canvas.Blit(buf)
}

// Present blits the last rendered frame without drawing a new one.
func (r *Renderer) Present() {
	if r.buffer != nil {
		r.canvas.Blit(r.buffer)
	}
}

// fishColor picks the body color; behavior tags only show in debug mode.
func (r *Renderer) fishColor(f *components.Fish, debug bool) Color {
	if !debug {
		return r.style.Fish
	}
	switch f.Color {
	case components.ColorShoaling:
		return r.style.Shoal
	case components.ColorAvoiding:
		return r.style.Avoid
	case components.ColorChasing:
		return r.style.Chase
	default:
		return r.style.Fish
	}
}

// bodyPoints returns the nose, tail and side offset of a fish in screen space.
func (r *Renderer) bodyPoints(f *components.Fish) (nose, tail, side vec.Vec2) {
	dir := vec.FromAngle(f.Direction(), 1)
	perp := vec.New(-dir.Y, dir.X)
	half := f.BodyBase
	halfWidth := f.BodyLength * r.style.BodyWidthFactor

	nose = r.toScreen(f.Location.Plus(dir.Times(half)))
	tail = r.toScreen(f.Location.Minus(dir.Times(half)))
	side = perp.Times(halfWidth * r.cam.Zoom)
	return nose, tail, side
}

func (r *Renderer) toScreen(p vec.Vec2) vec.Vec2 {
	x, y := r.cam.WorldToScreen(p.X, p.Y)
	return vec.New(x, y)
}

func (r *Renderer) drawFish(s Surface, f *components.Fish, debug bool) {
	nose, tail, side := r.bodyPoints(f)
	s.SetFillColor(r.fishColor(f, debug))
	s.BeginPath()

	if f.DetailLevel <= components.DetailFlat {
		s.MoveTo(nose.X, nose.Y)
		s.LineTo(tail.X+side.X, tail.Y+side.Y)
		s.LineTo(tail.X-side.X, tail.Y-side.Y)
		s.ClosePath()
		s.Fill()
		return
	}

	// A quadratic from nose to tail passes through mid + control/2, so the
	// control points sit at twice the side offset from the body center.
	mid := nose.Lerped(tail, 0.5)
	s.MoveTo(nose.X, nose.Y)
	s.QuadraticTo(mid.X+2*side.X, mid.Y+2*side.Y, tail.X, tail.Y)
	s.QuadraticTo(mid.X-2*side.X, mid.Y-2*side.Y, nose.X, nose.Y)
	s.ClosePath()
	s.Fill()

	if f.DetailLevel >= components.DetailFull {
		s.SetStrokeColor(r.style.Outline)
		s.SetLineWidth(1)
		s.Stroke()
	}
}

// drawGrid shades occupied cells by occupancy and prints grid statistics.
func (r *Renderer) drawGrid(s Surface, g *systems.SpatialGrid) {
	if g == nil {
		return
	}
	size := g.CellSize()
	maxOcc := g.MaxCellOccupancy()
	g.ForEachCell(func(key systems.CellKey, bucket []systems.Neighbor) {
		x0, y0 := r.cam.WorldToScreen(float64(key.X)*size, float64(key.Y)*size)
		side := size * r.cam.Zoom

		shade := r.style.Grid
		if maxOcc > 0 {
			shade = shade.WithAlpha(float64(shade.A) / 255 * float64(len(bucket)) / float64(maxOcc))
		}
		s.SetFillColor(shade)
		s.FillRect(x0, y0, side, side)

		s.SetStrokeColor(r.style.Grid)
		s.SetLineWidth(1)
		s.BeginPath()
		s.MoveTo(x0, y0)
		s.LineTo(x0+side, y0)
		s.LineTo(x0+side, y0+side)
		s.LineTo(x0, y0+side)
		s.ClosePath()
		s.Stroke()
	})

	s.SetFillColor(r.style.Highlight)
	s.FillText(fmt.Sprintf("grid %.0fpx  cells %d  fish %d  max/cell %d",
		size, g.OccupiedCells(), g.AgentCount(), maxOcc), 10, float64(r.height)-24, 14)
}

// nearest returns the fish closest to p, or nil.
func nearest(fish []*components.Fish, p vec.Vec2) *components.Fish {
	var best *components.Fish
	bestDist := math.Inf(1)
	for _, f := range fish {
		if d := f.Location.DistanceSquared(p); d < bestDist {
			best, bestDist = f, d
		}
	}
	return best
}

// drawFocus draws the look range of the fish nearest the pointer and lines to
// the neighbors it is reacting to.
func (r *Renderer) drawFocus(s Surface, sc Scene) {
	f := nearest(sc.Fish, sc.Pointer)
	if f == nil {
		return
	}
	center := r.toScreen(f.Location)

	s.SetStrokeColor(r.style.Highlight)
	s.SetLineWidth(1)
	r.circle(s, center, f.LookRange*r.cam.Zoom)
	s.Stroke()

	if sc.Lookup == nil {
		return
	}
	r.links(s, center, f.Shoaling, sc.Lookup, r.style.Shoal)
	r.links(s, center, f.Avoiding, sc.Lookup, r.style.Avoid)
	r.links(s, center, f.Chasing, sc.Lookup, r.style.Chase)
}

func (r *Renderer) links(s Surface, from vec.Vec2, to []ecs.Entity, lookup func(ecs.Entity) *components.Fish, c Color) {
	if len(to) == 0 {
		return
	}
	s.SetStrokeColor(c)
	s.BeginPath()
	for _, e := range to {
		n := lookup(e)
		if n == nil {
			continue
		}
		p := r.toScreen(n.Location)
		s.MoveTo(from.X, from.Y)
		s.LineTo(p.X, p.Y)
	}
	s.Stroke()
}

const circleSegments = 32

// circle builds a closed polygon approximating a circle.
func (r *Renderer) circle(s Surface, c vec.Vec2, radius float64) {
	s.BeginPath()
	s.MoveTo(c.X+radius, c.Y)
	for i := 1; i < circleSegments; i++ {
		a := 2 * math.Pi * float64(i) / circleSegments
		s.LineTo(c.X+radius*math.Cos(a), c.Y+radius*math.Sin(a))
	}
	s.ClosePath()
}
