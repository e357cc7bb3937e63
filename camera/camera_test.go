package camera

import (
	"math"
	"testing"
)

func TestNew(t *testing.T) {
	cam := New(1280, 720, 2560, 1440)

	// Should be centered on world
	if cam.X != 1280 || cam.Y != 720 {
		t.Errorf("expected camera at (1280, 720), got (%f, %f)", cam.X, cam.Y)
	}
	if cam.Zoom != 1.0 {
		t.Errorf("expected zoom 1.0, got %f", cam.Zoom)
	}
}

func TestIdentityWhenWorldMatchesViewport(t *testing.T) {
	cam := New(800, 600, 800, 600)

	points := []struct{ x, y float64 }{{0, 0}, {400, 300}, {799, 1}, {123.5, 456.25}}
	for _, p := range points {
		sx, sy := cam.WorldToScreen(p.x, p.y)
		if math.Abs(sx-p.x) > 1e-9 || math.Abs(sy-p.y) > 1e-9 {
			t.Errorf("WorldToScreen(%v, %v) = (%v, %v), want identity", p.x, p.y, sx, sy)
		}
	}
}

func TestWorldToScreenCentered(t *testing.T) {
	cam := New(1280, 720, 2560, 1440)

	// Camera center should map to screen center
	sx, sy := cam.WorldToScreen(1280, 720)
	if math.Abs(sx-640) > 0.01 || math.Abs(sy-360) > 0.01 {
		t.Errorf("expected screen center (640, 360), got (%f, %f)", sx, sy)
	}
}

func TestScreenToWorldRoundtrip(t *testing.T) {
	cam := New(1280, 720, 2560, 1440)
	cam.SetZoom(2)
	cam.Pan(-300, 120)

	testCases := []struct{ sx, sy float64 }{
		{640, 360},  // center
		{100, 100},  // top-left
		{1200, 600}, // near bottom-right
	}

	for _, tc := range testCases {
		wx, wy := cam.ScreenToWorld(tc.sx, tc.sy)
		sx, sy := cam.WorldToScreen(wx, wy)
		if math.Abs(sx-tc.sx) > 0.01 || math.Abs(sy-tc.sy) > 0.01 {
			t.Errorf("roundtrip failed: (%f,%f) -> (%f,%f) -> (%f,%f)",
				tc.sx, tc.sy, wx, wy, sx, sy)
		}
	}
}

func TestPanStaysInWorld(t *testing.T) {
	cam := New(1280, 720, 2560, 1440)

	cam.Pan(-5000, -5000)
	minX, minY, _, _ := cam.VisibleWorldBounds()
	if minX != 0 || minY != 0 {
		t.Errorf("expected view clamped to top-left, got min (%f, %f)", minX, minY)
	}

	cam.Pan(10000, 10000)
	_, _, maxX, maxY := cam.VisibleWorldBounds()
	if maxX != 2560 || maxY != 1440 {
		t.Errorf("expected view clamped to bottom-right, got max (%f, %f)", maxX, maxY)
	}
}

func TestZoomClamp(t *testing.T) {
	cam := New(1280, 720, 2560, 1440)

	// MinZoom should be max(1280/2560, 720/1440) = 0.5
	if cam.MinZoom != 0.5 {
		t.Errorf("expected MinZoom 0.5, got %f", cam.MinZoom)
	}

	cam.SetZoom(0.1) // Below min
	if cam.Zoom != 0.5 {
		t.Errorf("expected zoom clamped to 0.5, got %f", cam.Zoom)
	}

	cam.SetZoom(10.0) // Above max
	if cam.Zoom != 4.0 {
		t.Errorf("expected zoom clamped to 4.0, got %f", cam.Zoom)
	}
}

func TestMinZoomPreventsDeadSpace(t *testing.T) {
	cam := New(800, 600, 1600, 800)

	// MinZoom should be max(800/1600, 600/800) = 0.75
	if math.Abs(cam.MinZoom-0.75) > 0.001 {
		t.Errorf("expected MinZoom 0.75, got %f", cam.MinZoom)
	}

	cam.SetZoom(cam.MinZoom)
	visibleH := cam.ViewportH / cam.Zoom
	if math.Abs(visibleH-cam.WorldH) > 0.01 {
		t.Errorf("at min zoom, visible height %f should equal world height %f", visibleH, cam.WorldH)
	}
}

func TestIsVisible(t *testing.T) {
	cam := New(1280, 720, 2560, 1440)

	// Visible range in world coords: (640, 360) to (1920, 1080)
	tests := []struct {
		name   string
		x, y   float64
		margin float64
		want   bool
	}{
		{"center", 1280, 720, 10, true},
		{"far outside", 2400, 1300, 10, false},
		{"edge with large margin", 600, 720, 100, true},
		{"just outside left", 620, 720, 10, false},
		{"body overlapping top", 1280, 355, 10, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cam.IsVisible(tt.x, tt.y, tt.margin); got != tt.want {
				t.Errorf("IsVisible(%v, %v, %v) = %v, want %v", tt.x, tt.y, tt.margin, got, tt.want)
			}
		})
	}
}

func TestResizeKeepsWorldCentered(t *testing.T) {
	cam := New(800, 600, 800, 600)
	cam.Resize(1024, 768)
	if cam.Zoom < cam.MinZoom {
		t.Errorf("zoom %f below min %f after resize", cam.Zoom, cam.MinZoom)
	}

	cam.SetWorld(1024, 768)
	if cam.X != 512 || cam.Y != 384 || cam.Zoom != 1.0 {
		t.Errorf("expected identity camera after SetWorld, got (%f, %f) zoom %f", cam.X, cam.Y, cam.Zoom)
	}
}

func TestReset(t *testing.T) {
	cam := New(1280, 720, 2560, 1440)
	cam.X = 500
	cam.Y = 500
	cam.Zoom = 2.5

	cam.Reset()

	if cam.X != 1280 || cam.Y != 720 {
		t.Errorf("expected position (1280, 720), got (%f, %f)", cam.X, cam.Y)
	}
	if cam.Zoom != 1.0 {
		t.Errorf("expected zoom 1.0, got %f", cam.Zoom)
	}
}
