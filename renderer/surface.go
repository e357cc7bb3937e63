// Package renderer draws the flock onto an immediate-mode 2D surface through
// a double-buffered pipeline.
package renderer

import (
	"errors"

	"github.com/pthm-cable/shoal/config"
)

// ErrSurfaceUnavailable is returned when no drawing surface or off-screen
// buffer can be obtained.
var ErrSurfaceUnavailable = errors.New("renderer: drawing surface unavailable")

// Color is an 8-bit RGBA color.
type Color struct {
	R, G, B, A uint8
}

// ColorFrom converts a config color.
func ColorFrom(c config.RGBA) Color {
	return Color{R: c[0], G: c[1], B: c[2], A: c[3]}
}

// WithAlpha returns the color with alpha set from a 0..1 fraction.
func (c Color) WithAlpha(a float64) Color {
	a = max(0, min(1, a))
	c.A = uint8(a*255 + 0.5)
	return c
}

// Surface is an immediate-mode 2D raster surface. Paths are built with
// BeginPath/MoveTo/LineTo/QuadraticTo/ClosePath and drawn with Fill or Stroke.
type Surface interface {
	Width() int
	Height() int

	SetFillColor(c Color)
	SetStrokeColor(c Color)
	SetLineWidth(w float64)

	FillRect(x, y, w, h float64)

	BeginPath()
	MoveTo(x, y float64)
	LineTo(x, y float64)
	QuadraticTo(cx, cy, x, y float64)
	ClosePath()
	Fill()
	Stroke()

	FillText(text string, x, y float64, size int)
}

// Buffer is an off-screen surface. Drawing calls are only valid between
// Begin and End.
type Buffer interface {
	Surface
	Begin()
	End()
	Resize(w, h int) error
	Release()
}

// Canvas is the visible surface.
type Canvas interface {
	Surface
	// NewBuffer allocates an off-screen buffer of the given size.
	NewBuffer(w, h int) (Buffer, error)
	// Blit copies the buffer contents to the visible surface.
	Blit(b Buffer)
}
