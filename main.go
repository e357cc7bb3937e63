package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/shoal/config"
	"github.com/pthm-cable/shoal/game"
	"github.com/pthm-cable/shoal/input"
	"github.com/pthm-cable/shoal/renderer"
	"github.com/pthm-cable/shoal/ui"
)

const controlsLegend = "[Drag] Follow  [D] Debug  [S] Slow-mo  [Space] Pause  [Tab] Panel  [Arrows/Wheel] Camera  [Home] Reset view"

type flags struct {
	configPath  string
	headless    bool
	logStats    bool
	statsWindow float64
	outputDir   string
	seed        int64
	maxTicks    int
	fish        int
}

func main() {
	var f flags
	flag.StringVar(&f.configPath, "config", "", "Path to config.yaml (empty = use defaults)")
	flag.BoolVar(&f.headless, "headless", false, "Run without graphics")
	flag.BoolVar(&f.logStats, "log-stats", false, "Output stats via slog")
	flag.Float64Var(&f.statsWindow, "stats-window", 0, "Stats window size in seconds (0 = use config)")
	flag.StringVar(&f.outputDir, "output-dir", "", "Output directory for CSV logs and config snapshot")
	flag.Int64Var(&f.seed, "seed", 0, "RNG seed (0 = config, then time-based)")
	flag.IntVar(&f.maxTicks, "max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	flag.IntVar(&f.fish, "fish", 0, "Initial fish count (0 = use config)")
	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(f); err != nil {
		slog.Error("shoal failed", "error", err)
		os.Exit(1)
	}
}

func run(f flags) error {
	if err := config.Init(f.configPath); err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg := config.Cfg()

	count := f.fish

	opts := game.Options{
		Seed:           f.seed,
		Headless:       f.headless,
		OutputDir:      f.outputDir,
		LogStats:       f.logStats,
		StatsWindowSec: f.statsWindow,
	}

	if f.headless {
		return runHeadless(cfg, opts, count, f.maxTicks)
	}
	return runWindow(cfg, opts, count, f.maxTicks)
}

// runHeadless ticks as fast as possible without raylib.
func runHeadless(cfg *config.Config, opts game.Options, count, maxTicks int) error {
	g, err := game.New(cfg, opts)
	if err != nil {
		return err
	}
	defer g.Dispose()

	g.Initialize(0, 0, count)
	g.Start()

	slog.Info("starting headless simulation",
		"seed", g.Seed(),
		"fish", g.World().Len(),
		"max_ticks", maxTicks,
	)

	for g.Running() {
		g.Tick()
		if maxTicks > 0 && g.TickCount() >= int64(maxTicks) {
			slog.Info("max ticks reached", "tick", g.TickCount())
			break
		}
	}
	return nil
}

// runWindow opens a raylib window and drives the game once per frame.
func runWindow(cfg *config.Config, opts game.Options, count, maxTicks int) error {
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), cfg.Screen.Title)
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	canvas, err := renderer.NewRaylibCanvas(cfg.Render.CurveSegments)
	if err != nil {
		return err
	}
	opts.Canvas = canvas

	g, err := game.New(cfg, opts)
	if err != nil {
		return err
	}
	defer g.Dispose()

	g.Initialize(0, 0, count)
	g.Start()

	// Closed before Dispose so no events reach a stopped game
	src := input.NewSource(input.RaylibDevice{}, g)
	defer src.Close()

	hud := ui.NewHUD()
	controls := ui.NewControlsPanel(int32(rl.GetScreenWidth())-250, 10, 240)
	perfPanel := ui.NewPerfPanel(10, 110, 260)

	for !rl.WindowShouldClose() {
		if err := src.Poll(); err != nil {
			return err
		}
		if rl.IsKeyPressed(rl.KeyTab) {
			controls.Toggle()
		}
		if rl.IsWindowResized() {
			controls.SetPosition(int32(rl.GetScreenWidth())-250, 10)
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.Black)

		g.Frame(time.Duration(float64(rl.GetFrameTime()) * float64(time.Second)))

		hud.Draw(ui.HUDDataFrom(g))
		if g.Debug() {
			perfPanel.Draw(g.PerfStats())
		}
		controls.Draw(g)
		hud.DrawControls(int32(rl.GetScreenHeight()), controlsLegend)

		rl.EndDrawing()

		if maxTicks > 0 && g.TickCount() >= int64(maxTicks) {
			break
		}
	}
	return nil
}
