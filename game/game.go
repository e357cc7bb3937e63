// Package game wires the flock world, the simulation loop, adaptive quality
// and rendering into one Game value driven by the host once per frame.
package game

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/pthm-cable/shoal/camera"
	"github.com/pthm-cable/shoal/components"
	"github.com/pthm-cable/shoal/config"
	"github.com/pthm-cable/shoal/renderer"
	"github.com/pthm-cable/shoal/systems"
	"github.com/pthm-cable/shoal/telemetry"
	"github.com/pthm-cable/shoal/vec"
)

// Options configures a Game beyond the loaded config.
type Options struct {
	Seed int64 // 0 = use config seed, then time-based

	// Canvas is the visible surface. Required unless Headless is set.
	Canvas   renderer.Canvas
	Headless bool

	OutputDir      string  // CSV logs and config snapshot; empty disables
	LogStats       bool    // log window stats via slog
	StatsWindowSec float64 // 0 = use config

	// StatsCallback, if set, receives every flushed stats window.
	StatsCallback func(telemetry.WindowStats)
}

// Game holds the complete simulation state.
type Game struct {
	cfg  *config.Config
	rng  *rand.Rand
	seed int64

	world   *World
	grid    *systems.SpatialGrid
	flock   *systems.FlockSystem
	physics *systems.PhysicsSystem

	cam      *camera.Camera
	renderer *renderer.Renderer
	scene    []*components.Fish

	quality *QualityController
	slowmo  *SlowMotion

	perf          *telemetry.PerfCollector
	collector     *telemetry.Collector
	output        *telemetry.OutputManager
	statsCallback func(telemetry.WindowStats)
	statsWindow   float64
	logStats      bool

	running     bool
	accumulator time.Duration
	tick        int64
	lastFPS     float64

	// Pointer state in world coordinates
	pointer vec.Vec2
	follow  bool
	debug   bool
}

// New creates a game. It fails with renderer.ErrSurfaceUnavailable when a
// canvas is required but missing or its buffer cannot be created.
func New(cfg *config.Config, opts Options) (*Game, error) {
	if cfg == nil {
		cfg = config.Cfg()
	}

	seed := opts.Seed
	if seed == 0 {
		seed = cfg.Simulation.Seed
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	physParams, err := systems.PhysicsParamsFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("physics config: %w", err)
	}
	quality, err := NewQualityController(cfg.Quality)
	if err != nil {
		return nil, fmt.Errorf("quality config: %w", err)
	}

	w, h := cfg.Derived.WorldW, cfg.Derived.WorldH
	bounds := systems.Bounds{Width: w, Height: h}

	g := &Game{
		cfg:     cfg,
		rng:     rng,
		seed:    seed,
		world:   NewWorld(w, h, cfg, rng),
		grid:    systems.NewSpatialGrid(cfg.Grid.CellSize),
		flock:   systems.NewFlockSystem(systems.SteeringParamsFromConfig(cfg), rng),
		physics: systems.NewPhysicsSystem(bounds, physParams, rng),
		cam:     camera.New(float64(cfg.Screen.Width), float64(cfg.Screen.Height), w, h),
		quality: quality,
		slowmo: NewSlowMotion(
			cfg.Derived.TickInterval, cfg.Derived.SlowTickInterval,
			cfg.Render.TrailAlpha, cfg.SlowMotion.TrailAlpha,
			cfg.SlowMotion.TransitionSteps,
		),
		perf:          telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		statsCallback: opts.StatsCallback,
		logStats:      opts.LogStats,
	}

	if !opts.Headless {
		r, err := renderer.NewRenderer(opts.Canvas, g.cam, renderer.StyleFromConfig(cfg))
		if err != nil {
			return nil, fmt.Errorf("creating renderer: %w", err)
		}
		g.renderer = r
		g.cam.Resize(float64(opts.Canvas.Width()), float64(opts.Canvas.Height()))
	}

	g.statsWindow = cfg.Telemetry.StatsWindow
	if opts.StatsWindowSec > 0 {
		g.statsWindow = opts.StatsWindowSec
	}
	g.collector = telemetry.NewCollector(g.statsWindow, cfg.Simulation.TickInterval)

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		g.Dispose()
		return nil, fmt.Errorf("creating output manager: %w", err)
	}
	g.output = output
	if err := g.output.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
	}

	return g, nil
}

// Initialize resets the world to the given size with count agents. A zero
// size keeps the current world size. A count of zero or less uses
// simulation.initial_fish; the count is clamped to the configured agent bounds.
func (g *Game) Initialize(width, height float64, count int) *World {
	if width <= 0 || height <= 0 {
		width, height = g.world.Width, g.world.Height
	}
	g.world.Clear()
	g.applyBounds(width, height)

	settings := g.quality.Settings()
	g.world.setDetail(settings.DetailLevel)
	if count <= 0 {
		count = g.cfg.Simulation.InitialFish
	}
	n := g.cfg.ClampAgents(count)
	for range n {
		g.world.Spawn()
	}
	g.tick = 0
	g.accumulator = 0
	g.collector = telemetry.NewCollector(g.statsWindow, g.cfg.Simulation.TickInterval)
	g.collector.RecordSpawn(n)

	slog.Info("simulation_started",
		"seed", g.seed,
		"fish", n,
		"width", width,
		"height", height,
		"tier", g.quality.Tier().String(),
		"policy", g.physics.Params().Policy.String(),
	)
	return g.world
}

// applyBounds propagates world dimensions to every subsystem.
func (g *Game) applyBounds(width, height float64) {
	g.world.Resize(width, height)
	g.grid.Resize(width, height)
	g.physics.SetBounds(systems.Bounds{Width: width, Height: height})
	g.cam.SetWorld(width, height)
}

// Start enables ticking.
func (g *Game) Start() {
	g.running = true
	g.accumulator = 0
}

// Stop prevents further ticks until Start is called again.
func (g *Game) Stop() {
	g.running = false
}

// Running reports whether the game is ticking.
func (g *Game) Running() bool { return g.running }

// Frame is called once per display refresh with the time since the previous
// call. It runs at most one tick; frames without a tick re-present the last
// rendered buffer.
func (g *Game) Frame(elapsed time.Duration) {
	if g.running {
		if elapsed > 0 {
			g.lastFPS = float64(time.Second) / float64(elapsed)
			g.perf.RecordFrame(elapsed)
		}
		g.accumulator += elapsed
		if g.accumulator >= g.slowmo.TickInterval() {
			g.accumulator = 0
			g.Tick()
			return
		}
	}
	if g.renderer != nil {
		g.renderer.Present()
	}
}

// Tick runs one simulation step: commit queued population changes, rebuild
// the grid, steer, integrate, render and sample quality.
func (g *Game) Tick() {
	if !g.running {
		return
	}
	g.perf.StartTick()

	g.perf.StartPhase(telemetry.PhasePopulation)
	g.commitPopulation()

	entities := g.world.Entities()
	fishMap := g.world.FishMap()

	g.perf.StartPhase(telemetry.PhaseSpatialGrid)
	g.grid.UpdateGrid(entities, fishMap)

	g.perf.StartPhase(telemetry.PhaseSteering)
	g.flock.Update(entities, fishMap, g.grid, g.physics.Bounds(), systems.Pointer{
		Position: g.pointer,
		Active:   g.follow,
	})

	g.perf.StartPhase(telemetry.PhasePhysics)
	g.physics.Update(entities, fishMap)

	g.perf.StartPhase(telemetry.PhaseRender)
	g.draw()

	g.perf.StartPhase(telemetry.PhaseTelemetry)
	g.sampleQuality()
	g.tick++
	g.flushTelemetry()

	g.perf.EndTick()
	g.slowmo.Step()
}

// sampleQuality feeds the last frame rate to the quality controller and
// queues a population change on a tier transition.
func (g *Game) sampleQuality() {
	if g.lastFPS <= 0 {
		return
	}
	g.collector.RecordFPS(g.lastFPS)

	from := g.quality.Tier()
	if !g.quality.Sample(g.lastFPS) {
		return
	}
	settings := g.quality.Settings()
	g.world.QueuePopulation(g.cfg.ClampAgents(settings.FishMax), settings.DetailLevel)
	g.collector.RecordTierChange()

	ev := telemetry.NewTierChangeEvent(g.tick, from.String(), g.quality.Tier().String(),
		g.quality.MeanFPS(), settings.FishMax, settings.DetailLevel)
	ev.LogEvent()
	if err := g.output.WriteEvent(ev); err != nil {
		slog.Error("failed to write quality event", "error", err)
	}
}

// commitPopulation applies queued population changes. Runs before any
// simulation work in a tick.
func (g *Game) commitPopulation() {
	if g.world.Pending() == 0 {
		return
	}
	before := g.world.Len()
	spawned, removed := g.world.Commit()
	g.collector.RecordSpawn(spawned)
	g.collector.RecordRemove(removed)

	ev := telemetry.NewPopulationEvent(g.tick, before, g.world.Len(), g.world.DetailLevel())
	ev.LogEvent()
	if err := g.output.WriteEvent(ev); err != nil {
		slog.Error("failed to write population event", "error", err)
	}
}

// draw renders the current world if a renderer is attached.
func (g *Game) draw() {
	if g.renderer == nil {
		return
	}
	g.scene = g.scene[:0]
	for _, e := range g.world.Entities() {
		g.scene = append(g.scene, g.world.fishMap.Get(e))
	}
	g.renderer.Draw(renderer.Scene{
		Fish:       g.scene,
		Lookup:     g.world.Fish,
		Grid:       g.grid,
		Debug:      g.debug,
		Pointer:    g.pointer,
		TrailAlpha: g.slowmo.TrailAlpha(),
	})
}

// Resize changes the viewport and the world to the new surface size.
func (g *Game) Resize(width, height int) error {
	w, h := float64(width), float64(height)
	g.cam.Resize(w, h)
	g.applyBounds(w, h)
	if g.renderer != nil {
		if err := g.renderer.Resize(width, height); err != nil {
			return fmt.Errorf("resizing renderer: %w", err)
		}
	}
	return nil
}

// SetTargetPosition sets the pointer position in screen coordinates.
func (g *Game) SetTargetPosition(x, y float64) {
	wx, wy := g.cam.ScreenToWorld(x, y)
	g.pointer = vec.New(wx, wy)
}

// SetFollowActive turns pointer following on or off.
func (g *Game) SetFollowActive(active bool) {
	g.follow = active
}

// SetDebugVisualization turns the debug overlay on or off.
func (g *Game) SetDebugVisualization(on bool) {
	g.debug = on
}

// ToggleDebugVisualization flips the debug overlay.
func (g *Game) ToggleDebugVisualization() {
	g.debug = !g.debug
}

// SetSlowMotion eases toward slowed or normal speed.
func (g *Game) SetSlowMotion(on bool) {
	if on == g.slowmo.Enabled() {
		return
	}
	g.slowmo.Set(on)

	ev := telemetry.NewSlowMotionEvent(g.tick, on)
	ev.LogEvent()
	if err := g.output.WriteEvent(ev); err != nil {
		slog.Error("failed to write slow motion event", "error", err)
	}
}

// ToggleSlowMotion flips the slow motion target.
func (g *Game) ToggleSlowMotion() {
	g.SetSlowMotion(!g.slowmo.Enabled())
}

// Dispose stops the game and releases the render buffer and output files.
func (g *Game) Dispose() {
	g.Stop()
	if g.renderer != nil {
		g.renderer.Release()
		g.renderer = nil
	}
	if err := g.output.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
	g.output = nil
}

// SetSteeringParams replaces the steering weights and constants.
func (g *Game) SetSteeringParams(p systems.SteeringParams) {
	g.flock.SetParams(p)
}

// SteeringParams returns the active steering parameters.
func (g *Game) SteeringParams() systems.SteeringParams {
	return g.flock.Params()
}

// Accessors used by the UI and tools.

func (g *Game) World() *World { return g.world }
func (g *Game) Grid() *systems.SpatialGrid { return g.grid }
func (g *Game) Camera() *camera.Camera { return g.cam }
func (g *Game) Quality() *QualityController { return g.quality }
func (g *Game) SlowMotion() *SlowMotion { return g.slowmo }
func (g *Game) Config() *config.Config { return g.cfg }
func (g *Game) TickCount() int64 { return g.tick }
func (g *Game) Seed() int64 { return g.seed }
func (g *Game) FPS() float64 { return g.lastFPS }
func (g *Game) Debug() bool { return g.debug }
func (g *Game) FollowActive() bool { return g.follow }
func (g *Game) Pointer() vec.Vec2 { return g.pointer }
func (g *Game) PerfStats() telemetry.PerfStats { return g.perf.Stats() }
