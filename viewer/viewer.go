// Package viewer runs the windowed simulation: it owns the raylib frame loop,
// turns input into world commands and draws the world each frame.
package viewer

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/boids/camera"
	"github.com/pthm-cable/boids/components"
	"github.com/pthm-cable/boids/config"
	"github.com/pthm-cable/boids/game"
	"github.com/pthm-cable/boids/renderer"
	"github.com/pthm-cable/boids/telemetry"
	"github.com/pthm-cable/boids/ui"
)

const (
	maxStepsPerUpdate = 10
	selectRadius      = 20 // screen pixels
	inspectorWidth    = 280
	tuningWidth       = 260
)

const controlsLegend = "[Space] Pause  [,/.] Speed  [R] Restart  [D] Debug boid  [F] Follow  [Tab] Tuning  [F1] Overlays  [F2] Perf  [Click] Inspect"

// Viewer wraps a World with a camera, renderers and panels.
// It must be created after rl.InitWindow.
type Viewer struct {
	world *game.World
	cfg   *config.Config

	camera       *camera.Camera
	background   *renderer.BackgroundRenderer
	agents       *renderer.AgentRenderer
	debug        *renderer.DebugRenderer
	grid         *renderer.GridRenderer
	screenWidth  float32
	screenHeight float32

	overlays     *ui.OverlayRegistry
	hud          *ui.HUD
	overlayPanel *ui.OverlayPanel
	perfPanel    *ui.PerfPanel
	inspector    *ui.Inspector
	tuning       *ui.TuningPanel
	showPerf     bool

	paused         bool
	stepsPerUpdate int

	// Agents whose debug flags follow the agent overlays
	debugged    map[uint32]bool
	selected    uint32
	hasSelected bool
	following   bool // camera tracks the selected agent

	lastStats telemetry.FlockStats
}

// New creates the world described by cfg and opts and a viewer around it.
// opts.StatsCallback still receives every window.
func New(cfg *config.Config, opts game.Options, stepsPerUpdate int) (*Viewer, error) {
	v := &Viewer{
		cfg:            cfg,
		overlays:       ui.NewOverlayRegistry(),
		hud:            ui.NewHUD(),
		overlayPanel:   ui.NewOverlayPanel(10, 120, 240),
		perfPanel:      ui.NewPerfPanel(10, 120),
		stepsPerUpdate: max(min(stepsPerUpdate, maxStepsPerUpdate), 1),
		debugged:       make(map[uint32]bool),
	}

	callback := opts.StatsCallback
	opts.StatsCallback = func(stats telemetry.FlockStats) {
		v.lastStats = stats
		if callback != nil {
			callback(stats)
		}
	}

	world, err := game.NewWorld(cfg, opts)
	if err != nil {
		return nil, err
	}
	v.world = world

	v.screenWidth = float32(rl.GetScreenWidth())
	v.screenHeight = float32(rl.GetScreenHeight())

	worldW, worldH := float32(cfg.Derived.WorldW), float32(cfg.Derived.WorldH)
	v.camera = camera.New(v.screenWidth, v.screenHeight, worldW, worldH, cfg.World.Boundary == config.BoundaryWrap)
	margin := float32(cfg.World.Margin)
	if cfg.World.Boundary == config.BoundaryWrap {
		margin = 0
	}
	v.background = renderer.NewBackgroundRenderer(worldW, worldH, margin)
	v.agents = renderer.NewAgentRenderer()
	v.debug = renderer.NewDebugRenderer()
	v.grid = renderer.NewGridRenderer(float32(cfg.Derived.CellSize), worldW, worldH)

	v.inspector = ui.NewInspector(int32(v.screenWidth)-inspectorWidth-10, 10, inspectorWidth)
	v.tuning = ui.NewTuningPanel(int32(v.screenWidth)-tuningWidth-10, 10, tuningWidth)

	v.syncDebugged()
	return v, nil
}

// World returns the simulated world.
func (v *Viewer) World() *game.World { return v.world }

// Run drives the frame loop until the window closes or maxTicks is reached (0 = unlimited).
func (v *Viewer) Run(maxTicks int32) {
	for !rl.WindowShouldClose() {
		v.Update()
		v.Draw()

		if maxTicks > 0 && v.world.TickCount() >= maxTicks {
			return
		}
	}
}

// Update handles input and advances the simulation.
func (v *Viewer) Update() {
	v.world.Perf().RecordFrame()
	v.handleInput()

	if v.paused {
		return
	}
	for i := 0; i < v.stepsPerUpdate; i++ {
		v.world.Tick()
	}
	v.followSelected()
}

// followSelected centres the camera on the selected agent while following.
func (v *Viewer) followSelected() {
	if !v.following || !v.hasSelected {
		return
	}
	if a, ok := v.world.Agent(v.selected); ok {
		v.camera.Follow(float32(a.Position.X), float32(a.Position.Y))
	}
}

// Close releases the world.
func (v *Viewer) Close() error {
	return v.world.Close()
}

// restart respawns the population, keeping tuned rules.
func (v *Viewer) restart() {
	v.world.Restart()
	v.hasSelected = false
	v.lastStats = telemetry.FlockStats{}
	clear(v.debugged)
	v.syncDebugged()
}

// syncDebugged adopts agents the world flagged on restart and applies the
// current overlay selection to every debugged agent.
func (v *Viewer) syncDebugged() {
	for _, a := range v.world.Agents() {
		if a.Debug.Any() {
			v.debugged[a.ID] = true
		}
	}
	v.applyDebugFlags()
}

func (v *Viewer) applyDebugFlags() {
	flags := v.overlays.DebugFlags()
	for id := range v.debugged {
		if !v.world.SetDebug(id, flags) {
			delete(v.debugged, id)
		}
	}
}

// setDebugged adds or removes an agent from the debugged set.
func (v *Viewer) setDebugged(id uint32, on bool) {
	if on {
		v.debugged[id] = true
		v.world.SetDebug(id, v.overlays.DebugFlags())
		return
	}
	delete(v.debugged, id)
	v.world.SetDebug(id, components.Debug{})
}

func (v *Viewer) hudData() ui.HUDData {
	boids, preds := v.world.Counts()
	return ui.HUDData{
		Title:        fmt.Sprintf("Boids (seed %d)", v.world.Seed()),
		BoidCount:    boids,
		PredCount:    preds,
		Tick:         v.world.TickCount(),
		Speed:        v.stepsPerUpdate,
		FPS:          rl.GetFPS(),
		Paused:       v.paused,
		Polarization: v.lastStats.PolarizationMean,
		MeanSpeed:    v.lastStats.SpeedMean,
		Zoom:         v.camera.Zoom,
	}
}
