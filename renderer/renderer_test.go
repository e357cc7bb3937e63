package renderer

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/shoal/camera"
	"github.com/pthm-cable/shoal/components"
	"github.com/pthm-cable/shoal/config"
	"github.com/pthm-cable/shoal/systems"
	"github.com/pthm-cable/shoal/vec"
)

// recorder is a Surface that logs every call.
type recorder struct {
	w, h int
	ops  []string
}

func (r *recorder) Width() int  { return r.w }
func (r *recorder) Height() int { return r.h }
func (r *recorder) log(format string, args ...any) {
	r.ops = append(r.ops, fmt.Sprintf(format, args...))
}
func (r *recorder) SetFillColor(c Color) { r.log("fillColor %v", c) }
func (r *recorder) SetStrokeColor(c Color) { r.log("strokeColor %v", c) }
func (r *recorder) SetLineWidth(w float64) { r.log("lineWidth") }
func (r *recorder) FillRect(x, y, w, h float64) { r.log("fillRect %.0f %.0f %.0f %.0f", x, y, w, h) }
func (r *recorder) BeginPath() { r.log("beginPath") }
func (r *recorder) MoveTo(x, y float64) { r.log("moveTo") }
func (r *recorder) LineTo(x, y float64) { r.log("lineTo") }
func (r *recorder) QuadraticTo(cx, cy, x, y float64) { r.log("quadTo") }
func (r *recorder) ClosePath() { r.log("closePath") }
func (r *recorder) Fill() { r.log("fill") }
func (r *recorder) Stroke() { r.log("stroke") }
func (r *recorder) FillText(s string, x, y float64, size int) { r.log("text %s", s) }

func (r *recorder) count(prefix string) int {
	n := 0
	for _, op := range r.ops {
		if op == prefix || strings.HasPrefix(op, prefix+" ") {
			n++
		}
	}
	return n
}

type testBuffer struct {
	recorder
	begun, ended int
	released     bool
}

func (b *testBuffer) Begin() { b.begun++ }
func (b *testBuffer) End()   { b.ended++ }
func (b *testBuffer) Resize(w, h int) error {
	b.w, b.h = w, h
	return nil
}
func (b *testBuffer) Release() { b.released = true }

type testCanvas struct {
	recorder
	buffer    *testBuffer
	bufferErr error
	blits     int
}

func (c *testCanvas) NewBuffer(w, h int) (Buffer, error) {
	if c.bufferErr != nil {
		return nil, c.bufferErr
	}
	c.buffer = &testBuffer{recorder: recorder{w: w, h: h}}
	return c.buffer, nil
}

func (c *testCanvas) Blit(b Buffer) { c.blits++ }

func newTestRenderer(t *testing.T) (*Renderer, *testCanvas) {
	t.Helper()
	canvas := &testCanvas{recorder: recorder{w: 800, h: 600}}
	r, err := NewRenderer(canvas, nil, StyleFromConfig(config.Default()))
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	return r, canvas
}

func testFish(x, y float64, detail int) *components.Fish {
	f := components.NewFish(1, 1.0, components.DefaultFactors())
	f.Location = vec.New(x, y)
	f.Velocity = vec.New(1, 0)
	f.DetailLevel = detail
	return &f
}

func TestNewRendererSurfaceUnavailable(t *testing.T) {
	if _, err := NewRenderer(nil, nil, Style{}); !errors.Is(err, ErrSurfaceUnavailable) {
		t.Errorf("nil canvas: got %v, want ErrSurfaceUnavailable", err)
	}

	canvas := &testCanvas{
		recorder:  recorder{w: 800, h: 600},
		bufferErr: fmt.Errorf("no texture: %w", ErrSurfaceUnavailable),
	}
	if _, err := NewRenderer(canvas, nil, Style{}); !errors.Is(err, ErrSurfaceUnavailable) {
		t.Errorf("buffer failure: got %v, want ErrSurfaceUnavailable", err)
	}
}

func TestDrawDetailLevels(t *testing.T) {
	tests := []struct {
		name    string
		detail  int
		quads   int
		lines   int
		strokes int
	}{
		{"flat triangle", components.DetailFlat, 0, 2, 0},
		{"filled curve", components.DetailFilled, 2, 0, 0},
		{"curve with outline", components.DetailFull, 2, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, canvas := newTestRenderer(t)
			r.Draw(Scene{Fish: []*components.Fish{testFish(400, 300, tt.detail)}})

			buf := canvas.buffer
			if got := buf.count("quadTo"); got != tt.quads {
				t.Errorf("quadTo calls = %d, want %d", got, tt.quads)
			}
			if got := buf.count("lineTo"); got != tt.lines {
				t.Errorf("lineTo calls = %d, want %d", got, tt.lines)
			}
			if got := buf.count("stroke"); got != tt.strokes {
				t.Errorf("stroke calls = %d, want %d", got, tt.strokes)
			}
			if got := buf.count("fill"); got != 1 {
				t.Error("fish body was not filled")
			}
		})
	}
}

func TestDrawFrameSequence(t *testing.T) {
	r, canvas := newTestRenderer(t)
	r.Draw(Scene{TrailAlpha: 0.5})

	buf := canvas.buffer
	if buf.begun != 1 || buf.ended != 1 {
		t.Errorf("begin/end = %d/%d, want 1/1", buf.begun, buf.ended)
	}
	if canvas.blits != 1 {
		t.Errorf("blits = %d, want 1", canvas.blits)
	}
	if len(buf.ops) < 2 || buf.ops[1] != "fillRect 0 0 800 600" {
		t.Fatalf("expected trail fill first, got %v", buf.ops)
	}
	want := ColorFrom(config.Default().Render.Background).WithAlpha(0.5)
	if buf.ops[0] != fmt.Sprintf("fillColor %v", want) {
		t.Errorf("trail color op = %q, want alpha 0.5 background", buf.ops[0])
	}
	if len(canvas.ops) != 0 {
		t.Errorf("canvas drawn directly: %v", canvas.ops)
	}
}

func TestDrawCulling(t *testing.T) {
	r, _ := newTestRenderer(t)
	fish := []*components.Fish{
		testFish(400, 300, components.DetailFull),
		testFish(-5, 300, components.DetailFull),  // body overlaps the left edge
		testFish(-500, 300, components.DetailFull), // far outside
		testFish(400, 2000, components.DetailFull),
	}
	r.Draw(Scene{Fish: fish})
	if r.Drawn() != 2 || r.Culled() != 2 {
		t.Errorf("drawn/culled = %d/%d, want 2/2", r.Drawn(), r.Culled())
	}
}

func TestDrawDebugOverlay(t *testing.T) {
	world := ecs.NewWorld()
	fishMap := ecs.NewMap1[components.Fish](world)

	a := components.NewFish(1, 1.0, components.DefaultFactors())
	a.Location = vec.New(100, 100)
	a.Velocity = vec.New(1, 0)
	b := components.NewFish(2, 1.0, components.DefaultFactors())
	b.Location = vec.New(120, 100)
	b.Velocity = vec.New(1, 0)
	ea := fishMap.NewEntity(&a)
	eb := fishMap.NewEntity(&b)
	fa, fb := fishMap.Get(ea), fishMap.Get(eb)
	fa.Shoaling = append(fa.Shoaling, eb)

	grid := systems.NewSpatialGrid(100)
	grid.UpdateGrid([]ecs.Entity{ea, eb}, fishMap)

	r, canvas := newTestRenderer(t)
	r.Draw(Scene{
		Fish:    []*components.Fish{fa, fb},
		Lookup:  fishMap.Get,
		Grid:    grid,
		Debug:   true,
		Pointer: vec.New(95, 100),
	})

	buf := canvas.buffer
	if buf.count("text grid 100px  cells 1  fish 2  max/cell 2") != 1 {
		t.Errorf("grid statistics missing: %v", buf.ops)
	}
	// trail + one occupied cell
	if got := buf.count("fillRect"); got != 2 {
		t.Errorf("fillRect calls = %d, want 2", got)
	}

	without, canvas2 := newTestRenderer(t)
	without.Draw(Scene{Fish: []*components.Fish{fa, fb}, Grid: grid})
	if buf.count("moveTo") <= canvas2.buffer.count("moveTo") {
		t.Error("debug overlay did not add any paths")
	}
	if canvas2.buffer.count("text") != 0 {
		t.Error("statistics drawn without debug flag")
	}
}

func TestResizeAndRelease(t *testing.T) {
	cam := camera.New(800, 600, 800, 600)
	canvas := &testCanvas{recorder: recorder{w: 800, h: 600}}
	r, err := NewRenderer(canvas, cam, Style{})
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}

	if err := r.Resize(1024, 768); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if canvas.buffer.w != 1024 || canvas.buffer.h != 768 {
		t.Errorf("buffer size = %dx%d, want 1024x768", canvas.buffer.w, canvas.buffer.h)
	}

	r.Release()
	if !canvas.buffer.released {
		t.Error("buffer not released")
	}
	if err := r.Resize(10, 10); !errors.Is(err, ErrSurfaceUnavailable) {
		t.Errorf("Resize after Release: got %v, want ErrSurfaceUnavailable", err)
	}
	r.Draw(Scene{})
	if canvas.blits != 0 {
		t.Error("Draw after Release blitted")
	}
}

func TestColorWithAlpha(t *testing.T) {
	c := Color{R: 1, G: 2, B: 3, A: 255}
	tests := []struct {
		alpha float64
		want  uint8
	}{
		{0, 0},
		{0.25, 64},
		{1, 255},
		{2, 255},
		{-1, 0},
	}
	for _, tt := range tests {
		if got := c.WithAlpha(tt.alpha).A; got != tt.want {
			t.Errorf("WithAlpha(%v).A = %d, want %d", tt.alpha, got, tt.want)
		}
	}
}
