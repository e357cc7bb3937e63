package input

import rl "github.com/gen2brain/raylib-go/raylib"

var raylibKeys = map[Key]int32{
	KeySpace: rl.KeySpace,
	KeyD:     rl.KeyD,
	KeyS:     rl.KeyS,
	KeyF11:   rl.KeyF11,
	KeyLeft:  rl.KeyLeft,
	KeyRight: rl.KeyRight,
	KeyUp:    rl.KeyUp,
	KeyDown:  rl.KeyDown,
	KeyEqual: rl.KeyEqual,
	KeyMinus: rl.KeyMinus,
	KeyHome:  rl.KeyHome,
}

// keypad aliases for zoom
var raylibAlt = map[Key]int32{
	KeyEqual: rl.KeyKpAdd,
	KeyMinus: rl.KeyKpSubtract,
}

// RaylibDevice reads input from the raylib window. The window must be open.
type RaylibDevice struct{}

func (RaylibDevice) MousePosition() (x, y float64) {
	p := rl.GetMousePosition()
	return float64(p.X), float64(p.Y)
}

func (RaylibDevice) MouseDown() bool { return rl.IsMouseButtonDown(rl.MouseButtonLeft) }

func (RaylibDevice) MouseMoved() bool {
	d := rl.GetMouseDelta()
	return d.X != 0 || d.Y != 0
}

func (RaylibDevice) WheelMove() float64 { return float64(rl.GetMouseWheelMove()) }

func (RaylibDevice) TouchCount() int { return int(rl.GetTouchPointCount()) }

func (RaylibDevice) TouchPosition(i int) (x, y float64) {
	p := rl.GetTouchPosition(int32(i))
	return float64(p.X), float64(p.Y)
}

func (RaylibDevice) KeyPressed(k Key) bool {
	if alt, ok := raylibAlt[k]; ok && rl.IsKeyPressed(alt) {
		return true
	}
	return rl.IsKeyPressed(raylibKeys[k])
}

func (RaylibDevice) KeyDown(k Key) bool { return rl.IsKeyDown(raylibKeys[k]) }

func (RaylibDevice) Resized() bool { return rl.IsWindowResized() }

func (RaylibDevice) ScreenSize() (width, height int) {
	return rl.GetScreenWidth(), rl.GetScreenHeight()
}

func (RaylibDevice) ToggleFullscreen() { rl.ToggleFullscreen() }
