package renderer

import (
	"fmt"
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// surface implements Surface on top of raylib's immediate-mode drawing.
// Draw calls go to whatever target raylib currently has bound.
type surface struct {
	fill      color.RGBA
	stroke    color.RGBA
	lineWidth float32
	segments  int

	// Current path as a list of subpaths
	subpaths [][]rl.Vector2
	closed   []bool
}

func newSurface(curveSegments int) surface {
	if curveSegments < 1 {
		curveSegments = 8
	}
	return surface{lineWidth: 1, segments: curveSegments}
}

func toRL(c Color) color.RGBA {
	return rl.NewColor(c.R, c.G, c.B, c.A)
}

func (s *surface) SetFillColor(c Color)   { s.fill = toRL(c) }
func (s *surface) SetStrokeColor(c Color) { s.stroke = toRL(c) }
func (s *surface) SetLineWidth(w float64) { s.lineWidth = float32(w) }

func (s *surface) FillRect(x, y, w, h float64) {
	rl.DrawRectangleRec(rl.NewRectangle(float32(x), float32(y), float32(w), float32(h)), s.fill)
}

func (s *surface) BeginPath() {
	s.subpaths = s.subpaths[:0]
	s.closed = s.closed[:0]
}

func (s *surface) MoveTo(x, y float64) {
	s.subpaths = append(s.subpaths, []rl.Vector2{rl.NewVector2(float32(x), float32(y))})
	s.closed = append(s.closed, false)
}

func (s *surface) LineTo(x, y float64) {
	if len(s.subpaths) == 0 {
		s.MoveTo(x, y)
		return
	}
	i := len(s.subpaths) - 1
	s.subpaths[i] = append(s.subpaths[i], rl.NewVector2(float32(x), float32(y)))
}

// QuadraticTo flattens the curve into line segments.
func (s *surface) QuadraticTo(cx, cy, x, y float64) {
	if len(s.subpaths) == 0 {
		s.MoveTo(cx, cy)
	}
	i := len(s.subpaths) - 1
	last := s.subpaths[i][len(s.subpaths[i])-1]
	x0, y0 := float64(last.X), float64(last.Y)
	for step := 1; step <= s.segments; step++ {
		t := float64(step) / float64(s.segments)
		u := 1 - t
		px := u*u*x0 + 2*u*t*cx + t*t*x
		py := u*u*y0 + 2*u*t*cy + t*t*y
		s.subpaths[i] = append(s.subpaths[i], rl.NewVector2(float32(px), float32(py)))
	}
}

func (s *surface) ClosePath() {
	if n := len(s.closed); n > 0 {
		s.closed[n-1] = true
	}
}

// Fill draws each subpath as a triangle fan from its first point.
func (s *surface) Fill() {
	for _, pts := range s.subpaths {
		if len(pts) < 3 {
			continue
		}
		a := pts[0]
		for i := 1; i+1 < len(pts); i++ {
			b, c := pts[i], pts[i+1]
			// raylib expects counter-clockwise winding on screen
			if cross(a, b, c) > 0 {
				b, c = c, b
			}
			rl.DrawTriangle(a, b, c, s.fill)
		}
	}
}

func cross(a, b, c rl.Vector2) float32 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

func (s *surface) Stroke() {
	for i, pts := range s.subpaths {
		for j := 1; j < len(pts); j++ {
			rl.DrawLineEx(pts[j-1], pts[j], s.lineWidth, s.stroke)
		}
		if s.closed[i] && len(pts) > 2 {
			rl.DrawLineEx(pts[len(pts)-1], pts[0], s.lineWidth, s.stroke)
		}
	}
}

func (s *surface) FillText(text string, x, y float64, size int) {
	rl.DrawText(text, int32(x), int32(y), int32(size), s.fill)
}

// RaylibCanvas draws to the raylib window. Drawing calls must happen between
// rl.BeginDrawing and rl.EndDrawing.
type RaylibCanvas struct {
	surface
}

// NewRaylibCanvas returns a canvas for the current raylib window.
// Returns ErrSurfaceUnavailable if no window is open.
func NewRaylibCanvas(curveSegments int) (*RaylibCanvas, error) {
	if !rl.IsWindowReady() {
		return nil, ErrSurfaceUnavailable
	}
	return &RaylibCanvas{surface: newSurface(curveSegments)}, nil
}

func (c *RaylibCanvas) Width() int  { return rl.GetScreenWidth() }
func (c *RaylibCanvas) Height() int { return rl.GetScreenHeight() }

// NewBuffer allocates a render texture of the given size.
func (c *RaylibCanvas) NewBuffer(w, h int) (Buffer, error) {
	b := &RaylibBuffer{surface: newSurface(c.segments)}
	if err := b.Resize(w, h); err != nil {
		return nil, err
	}
	return b, nil
}

// Blit draws the buffer texture at the window origin.
func (c *RaylibCanvas) Blit(b Buffer) {
	rb, ok := b.(*RaylibBuffer)
	if !ok || !rb.loaded {
		return
	}
	tex := rb.target.Texture
	// Render textures are stored upside down
	src := rl.NewRectangle(0, 0, float32(tex.Width), -float32(tex.Height))
	rl.DrawTextureRec(tex, src, rl.NewVector2(0, 0), rl.White)
}

// RaylibBuffer is an off-screen render texture.
type RaylibBuffer struct {
	surface
	target rl.RenderTexture2D
	loaded bool
	w, h   int
}

func (b *RaylibBuffer) Width() int  { return b.w }
func (b *RaylibBuffer) Height() int { return b.h }

// Begin binds the texture as the raylib draw target.
func (b *RaylibBuffer) Begin() {
	if b.loaded {
		rl.BeginTextureMode(b.target)
	}
}

// End restores the default draw target.
func (b *RaylibBuffer) End() {
	if b.loaded {
		rl.EndTextureMode()
	}
}

// Resize reallocates the texture. Contents are cleared.
func (b *RaylibBuffer) Resize(w, h int) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("%w: invalid buffer size %dx%d", ErrSurfaceUnavailable, w, h)
	}
	if b.loaded && b.w == w && b.h == h {
		return nil
	}
	b.Release()
	target := rl.LoadRenderTexture(int32(w), int32(h))
	if target.ID == 0 {
		return fmt.Errorf("%w: render texture %dx%d", ErrSurfaceUnavailable, w, h)
	}
	b.target = target
	b.loaded = true
	b.w, b.h = w, h

	rl.BeginTextureMode(b.target)
	rl.ClearBackground(rl.Blank)
	rl.EndTextureMode()
	return nil
}

// Release unloads the texture.
func (b *RaylibBuffer) Release() {
	if b.loaded {
		rl.UnloadRenderTexture(b.target)
		b.loaded = false
	}
}
