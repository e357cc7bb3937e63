package input

import (
	"errors"
	"testing"

	"github.com/pthm-cable/shoal/camera"
)

type fakeDevice struct {
	mx, my      float64
	down, moved bool
	wheel       float64
	touches     [][2]float64
	pressed     map[Key]bool
	held        map[Key]bool
	resized     bool
	w, h        int
	fullscreen  int
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{pressed: map[Key]bool{}, held: map[Key]bool{}, w: 800, h: 600}
}

func (d *fakeDevice) MousePosition() (float64, float64) { return d.mx, d.my }
func (d *fakeDevice) MouseDown() bool { return d.down }
func (d *fakeDevice) MouseMoved() bool { return d.moved }
func (d *fakeDevice) WheelMove() float64 { return d.wheel }
func (d *fakeDevice) TouchCount() int { return len(d.touches) }
func (d *fakeDevice) TouchPosition(i int) (float64, float64) { return d.touches[i][0], d.touches[i][1] }
func (d *fakeDevice) KeyPressed(k Key) bool { return d.pressed[k] }
func (d *fakeDevice) KeyDown(k Key) bool { return d.held[k] }
func (d *fakeDevice) Resized() bool { return d.resized }
func (d *fakeDevice) ScreenSize() (int, int) { return d.w, d.h }
func (d *fakeDevice) ToggleFullscreen() { d.fullscreen++ }

// endFrame clears per-frame edges.
func (d *fakeDevice) endFrame() {
	d.pressed = map[Key]bool{}
	d.moved = false
	d.wheel = 0
	d.resized = false
}

type fakeController struct {
	target      [2]float64
	targets     int
	follow      bool
	followCalls int
	debug       int
	slowmo      int
	running     bool
	resizes     [][2]int
	resizeErr   error
	cam         *camera.Camera
}

func (c *fakeController) SetTargetPosition(x, y float64) {
	c.target = [2]float64{x, y}
	c.targets++
}
func (c *fakeController) SetFollowActive(active bool) {
	c.follow = active
	c.followCalls++
}
func (c *fakeController) ToggleDebugVisualization() { c.debug++ }
func (c *fakeController) ToggleSlowMotion() { c.slowmo++ }
func (c *fakeController) Resize(w, h int) error {
	c.resizes = append(c.resizes, [2]int{w, h})
	return c.resizeErr
}
func (c *fakeController) Start() { c.running = true }
func (c *fakeController) Stop() { c.running = false }
func (c *fakeController) Running() bool { return c.running }
func (c *fakeController) Camera() *camera.Camera { return c.cam }

func newTestSource() (*Source, *fakeDevice, *fakeController) {
	dev := newFakeDevice()
	ctl := &fakeController{running: true, cam: camera.New(800, 600, 1600, 1200)}
	return NewSource(dev, ctl), dev, ctl
}

func TestMouseFollow(t *testing.T) {
	src, dev, ctl := newTestSource()

	dev.mx, dev.my, dev.moved = 100, 50, true
	src.Poll()
	if ctl.target != [2]float64{100, 50} {
		t.Errorf("target = %v, want (100, 50)", ctl.target)
	}
	if ctl.follow || ctl.followCalls != 0 {
		t.Errorf("follow = %v after %d calls, want no follow on hover", ctl.follow, ctl.followCalls)
	}

	dev.endFrame()
	dev.down = true
	src.Poll()
	src.Poll()
	if !ctl.follow || ctl.followCalls != 1 {
		t.Errorf("follow = %v after %d calls, want one activation", ctl.follow, ctl.followCalls)
	}

	dev.down = false
	src.Poll()
	if ctl.follow || ctl.followCalls != 2 {
		t.Errorf("follow = %v after %d calls, want release", ctl.follow, ctl.followCalls)
	}
}

func TestIdleMouseKeepsTarget(t *testing.T) {
	src, _, ctl := newTestSource()
	src.Poll()
	if ctl.targets != 0 {
		t.Errorf("target set %d times without movement", ctl.targets)
	}
}

func TestTouchGestures(t *testing.T) {
	src, dev, ctl := newTestSource()

	dev.touches = [][2]float64{{10, 20}}
	src.Poll()
	if ctl.target != [2]float64{10, 20} || !ctl.follow {
		t.Fatalf("single touch: target %v follow %v", ctl.target, ctl.follow)
	}

	dev.touches = [][2]float64{{10, 20}, {30, 40}}
	src.Poll()
	src.Poll()
	if ctl.slowmo != 1 {
		t.Errorf("slow motion toggled %d times for one two-finger tap, want 1", ctl.slowmo)
	}

	dev.touches = [][2]float64{{10, 20}, {30, 40}, {50, 60}}
	src.Poll()
	if ctl.debug != 1 {
		t.Errorf("debug toggled %d times, want 1", ctl.debug)
	}

	dev.touches = nil
	src.Poll()
	if ctl.follow {
		t.Error("follow still active after touches ended")
	}
}

func TestKeyToggles(t *testing.T) {
	tests := []struct {
		key   Key
		check func(*fakeController, *fakeDevice) bool
	}{
		{KeyD, func(c *fakeController, _ *fakeDevice) bool { return c.debug == 1 }},
		{KeyS, func(c *fakeController, _ *fakeDevice) bool { return c.slowmo == 1 }},
		{KeySpace, func(c *fakeController, _ *fakeDevice) bool { return !c.running }},
		{KeyF11, func(_ *fakeController, d *fakeDevice) bool { return d.fullscreen == 1 }},
	}
	for _, tt := range tests {
		src, dev, ctl := newTestSource()
		dev.pressed[tt.key] = true
		src.Poll()
		if !tt.check(ctl, dev) {
			t.Errorf("key %d: toggle not applied", tt.key)
		}
	}
}

func TestCameraKeys(t *testing.T) {
	src, dev, ctl := newTestSource()
	cam := ctl.cam
	x0 := cam.X

	dev.held[KeyRight] = true
	src.Poll()
	if cam.X <= x0 {
		t.Errorf("camera X = %v, want > %v after panning right", cam.X, x0)
	}

	dev.held = map[Key]bool{}
	z0 := cam.Zoom
	dev.wheel = 1
	src.Poll()
	if cam.Zoom <= z0 {
		t.Errorf("zoom = %v, want > %v after wheel up", cam.Zoom, z0)
	}

	dev.endFrame()
	dev.pressed[KeyHome] = true
	src.Poll()
	if cam.X != 800 || cam.Y != 600 {
		t.Errorf("camera = (%v, %v) after reset, want world centre", cam.X, cam.Y)
	}
}

func TestResizePropagation(t *testing.T) {
	src, dev, ctl := newTestSource()

	// Same size reports are ignored
	dev.resized = true
	src.Poll()
	if len(ctl.resizes) != 0 {
		t.Fatalf("resized %d times without a size change", len(ctl.resizes))
	}

	dev.w, dev.h = 1024, 768
	src.Poll()
	if len(ctl.resizes) != 1 || ctl.resizes[0] != [2]int{1024, 768} {
		t.Errorf("resizes = %v, want [[1024 768]]", ctl.resizes)
	}

	ctl.resizeErr = errors.New("boom")
	dev.w = 640
	if err := src.Poll(); !errors.Is(err, ctl.resizeErr) {
		t.Errorf("Poll error = %v, want wrapped resize error", err)
	}
}

func TestClose(t *testing.T) {
	src, dev, ctl := newTestSource()
	dev.down = true
	src.Poll()

	src.Close()
	if ctl.follow {
		t.Error("follow not released on close")
	}

	calls := ctl.followCalls
	dev.pressed[KeyD] = true
	src.Poll()
	src.Close()
	if ctl.debug != 0 || ctl.followCalls != calls {
		t.Error("closed source still forwarded events")
	}
}
