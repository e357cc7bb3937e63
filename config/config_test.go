package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") failed: %v", err)
	}

	if cfg.Derived.WorldW != float64(cfg.Screen.Width) || cfg.Derived.WorldH != float64(cfg.Screen.Height) {
		t.Errorf("world should default to screen size, got %vx%v", cfg.Derived.WorldW, cfg.Derived.WorldH)
	}
	if cfg.Steering.SeparationWeight != 1.4 || cfg.Steering.AlignmentWeight != 1.2 || cfg.Steering.CohesionWeight != 1.0 {
		t.Errorf("unexpected shoal weights: %+v", cfg.Steering)
	}
	if cfg.Boundary.Distance != 50 || cfg.Boundary.ForceMultiplier != 3 {
		t.Errorf("unexpected boundary defaults: %+v", cfg.Boundary)
	}
	if cfg.Boundary.Policy != BoundaryClamp {
		t.Errorf("default boundary policy = %q, want %q", cfg.Boundary.Policy, BoundaryClamp)
	}
	if cfg.Quality.WindowSize != 10 {
		t.Errorf("quality window = %d, want 10", cfg.Quality.WindowSize)
	}
	if cfg.Derived.TickInterval <= 0 || cfg.Derived.TickInterval > 20*time.Millisecond {
		t.Errorf("unexpected tick interval %v", cfg.Derived.TickInterval)
	}
	if cfg.Derived.TicksPerWindow < 1 {
		t.Errorf("TicksPerWindow = %d, want >= 1", cfg.Derived.TicksPerWindow)
	}
}

func TestLoadOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "override.yaml")
	data := []byte("world:\n  width: 800\n  height: 600\nboundary:\n  policy: bounce\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Derived.WorldW != 800 || cfg.Derived.WorldH != 600 {
		t.Errorf("world = %vx%v, want 800x600", cfg.Derived.WorldW, cfg.Derived.WorldH)
	}
	if cfg.Boundary.Policy != BoundaryBounce {
		t.Errorf("policy = %q, want bounce", cfg.Boundary.Policy)
	}
	// Untouched sections keep defaults
	if cfg.Boundary.Distance != 50 {
		t.Errorf("boundary distance = %v, want default 50", cfg.Boundary.Distance)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad policy", "boundary:\n  policy: wrap\n"},
		{"zero cell", "grid:\n  cell_size: 0\n"},
		{"inverted mass", "fish:\n  mass_min: 2\n  mass_max: 1\n"},
		{"inverted agents", "simulation:\n  min_agents: 50\n  max_agents: 10\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "cfg.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestClampAgents(t *testing.T) {
	cfg := Default()
	cfg.Simulation.MinAgents = 10
	cfg.Simulation.MaxAgents = 100

	tests := []struct{ in, want int }{
		{-5, 10}, {0, 10}, {10, 10}, {50, 50}, {100, 100}, {5000, 100},
	}
	for _, tt := range tests {
		if got := cfg.ClampAgents(tt.in); got != tt.want {
			t.Errorf("ClampAgents(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestWriteYAMLRoundtrip(t *testing.T) {
	cfg := Default()
	cfg.Steering.CohesionWeight = 0.75

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Steering.CohesionWeight != 0.75 {
		t.Errorf("cohesion weight = %v, want 0.75", loaded.Steering.CohesionWeight)
	}
}

func TestRecompute(t *testing.T) {
	cfg := Default()
	cfg.Simulation.TickInterval = 0.05
	cfg.World.Width = 400
	if err := cfg.Recompute(); err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	if cfg.Derived.TickInterval != 50*time.Millisecond {
		t.Errorf("TickInterval = %v, want 50ms", cfg.Derived.TickInterval)
	}
	if cfg.Derived.WorldW != 400 {
		t.Errorf("WorldW = %v, want 400", cfg.Derived.WorldW)
	}

	cfg.Grid.CellSize = 0
	if err := cfg.Recompute(); err == nil {
		t.Error("expected error for zero cell size")
	}
}
