// Package input turns mouse, touch and keyboard state into the pointer and
// toggle events the simulation understands.
package input

import (
	"fmt"

	"github.com/pthm-cable/shoal/camera"
)

// Key identifies a physical key independent of the windowing library.
type Key int

const (
	KeySpace Key = iota
	KeyD
	KeyS
	KeyF11
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyEqual
	KeyMinus
	KeyHome
)

// Device reports the raw input state for the current frame.
type Device interface {
	MousePosition() (x, y float64)
	MouseDown() bool
	MouseMoved() bool
	WheelMove() float64

	TouchCount() int
	TouchPosition(i int) (x, y float64)

	KeyPressed(k Key) bool
	KeyDown(k Key) bool

	// Resized reports whether the window size changed this frame.
	Resized() bool
	ScreenSize() (width, height int)
	ToggleFullscreen()
}

// Controller receives the normalized events. *game.Game implements it.
type Controller interface {
	SetTargetPosition(x, y float64)
	SetFollowActive(active bool)
	ToggleDebugVisualization()
	ToggleSlowMotion()
	Resize(width, height int) error
	Start()
	Stop()
	Running() bool
	Camera() *camera.Camera
}

// Gesture touch counts.
const (
	slowMotionTouches = 2
	debugTouches      = 3
)

// Source polls a Device once per frame and forwards events to a Controller.
type Source struct {
	dev Device
	ctl Controller

	following  bool
	lastTouch  int
	lastWidth  int
	lastHeight int
	closed     bool
}

// NewSource creates a source bound to a controller.
func NewSource(dev Device, ctl Controller) *Source {
	w, h := dev.ScreenSize()
	return &Source{dev: dev, ctl: ctl, lastWidth: w, lastHeight: h}
}

// Poll processes one frame of input. It returns an error only when
// propagating a resize fails.
func (s *Source) Poll() error {
	if s.closed {
		return nil
	}

	if err := s.handleResize(); err != nil {
		return err
	}
	if s.dev.KeyPressed(KeyF11) {
		s.dev.ToggleFullscreen()
	}
	if s.dev.KeyPressed(KeySpace) {
		if s.ctl.Running() {
			s.ctl.Stop()
		} else {
			s.ctl.Start()
		}
	}
	if s.dev.KeyPressed(KeyD) {
		s.ctl.ToggleDebugVisualization()
	}
	if s.dev.KeyPressed(KeyS) {
		s.ctl.ToggleSlowMotion()
	}

	s.handlePointer()
	s.handleCamera()
	return nil
}

// handleResize checks for window resize and propagates new dimensions.
func (s *Source) handleResize() error {
	if !s.dev.Resized() {
		return nil
	}
	w, h := s.dev.ScreenSize()
	if w == s.lastWidth && h == s.lastHeight {
		return nil
	}
	s.lastWidth, s.lastHeight = w, h
	if err := s.ctl.Resize(w, h); err != nil {
		return fmt.Errorf("resizing to %dx%d: %w", w, h, err)
	}
	return nil
}

// handlePointer maps touch and mouse to target position and follow state.
// Touch wins over the mouse when both are present.
func (s *Source) handlePointer() {
	touches := s.dev.TouchCount()
	if touches > 0 {
		x, y := s.dev.TouchPosition(0)
		s.ctl.SetTargetPosition(x, y)

		// Multi-finger taps fire once when the count rises
		if touches != s.lastTouch {
			switch touches {
			case slowMotionTouches:
				s.ctl.ToggleSlowMotion()
			case debugTouches:
				s.ctl.ToggleDebugVisualization()
			}
		}
		s.lastTouch = touches
		s.setFollow(true)
		return
	}
	s.lastTouch = 0

	if s.dev.MouseMoved() || s.dev.MouseDown() {
		x, y := s.dev.MousePosition()
		s.ctl.SetTargetPosition(x, y)
	}
	s.setFollow(s.dev.MouseDown())
}

func (s *Source) setFollow(active bool) {
	if active == s.following {
		return
	}
	s.following = active
	s.ctl.SetFollowActive(active)
}

// handleCamera processes camera pan and zoom controls.
func (s *Source) handleCamera() {
	cam := s.ctl.Camera()
	if cam == nil {
		return
	}

	// Pan speed scales inversely with zoom
	panSpeed := 8.0 / cam.Zoom
	if s.dev.KeyDown(KeyRight) {
		cam.Pan(panSpeed, 0)
	}
	if s.dev.KeyDown(KeyLeft) {
		cam.Pan(-panSpeed, 0)
	}
	if s.dev.KeyDown(KeyDown) {
		cam.Pan(0, panSpeed)
	}
	if s.dev.KeyDown(KeyUp) {
		cam.Pan(0, -panSpeed)
	}

	if wheel := s.dev.WheelMove(); wheel != 0 {
		cam.ZoomBy(1 + wheel*0.1)
	}
	if s.dev.KeyPressed(KeyEqual) {
		cam.ZoomBy(1.25)
	}
	if s.dev.KeyPressed(KeyMinus) {
		cam.ZoomBy(0.8)
	}
	if s.dev.KeyPressed(KeyHome) {
		cam.Reset()
	}
}

// Close releases the pointer and drops the controller; later polls do nothing.
func (s *Source) Close() {
	if s.closed {
		return
	}
	if s.following {
		s.ctl.SetFollowActive(false)
	}
	s.closed = true
	s.ctl = nil
}
