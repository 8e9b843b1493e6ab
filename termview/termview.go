// Package termview draws the flock in a terminal with tcell, for machines
// without a display. Each cell shows the last agent that falls into it.
package termview

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/gdamore/tcell/v2"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/boids/components"
	"github.com/pthm-cable/boids/config"
	"github.com/pthm-cable/boids/game"
	"github.com/pthm-cable/boids/telemetry"
)

const (
	frameInterval     = 16 * time.Millisecond // ~60 FPS
	maxStepsPerUpdate = 10
)

var (
	backgroundColor = tcell.NewRGBColor(50, 53, 89)
	boidColor       = tcell.NewRGBColor(124, 129, 196)
	statusColor     = tcell.NewRGBColor(200, 200, 200)
)

// headingGlyphs are indexed by heading octant, clockwise from +x with y pointing down.
var headingGlyphs = [8]rune{'→', '↘', '↓', '↙', '←', '↖', '↑', '↗'}

// View runs a World against a tcell screen.
type View struct {
	world  *game.World
	screen tcell.Screen
	cfg    *config.Config

	paused         bool
	stepsPerUpdate int
	lastStats      telemetry.FlockStats
}

// New opens the terminal and creates the world described by cfg and opts.
func New(cfg *config.Config, opts game.Options, stepsPerUpdate int) (*View, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("creating screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("initializing screen: %w", err)
	}
	v, err := NewWithScreen(screen, cfg, opts, stepsPerUpdate)
	if err != nil {
		screen.Fini()
		return nil, err
	}
	return v, nil
}

// NewWithScreen creates a view on an already initialized screen.
// opts.StatsCallback still receives every window.
func NewWithScreen(screen tcell.Screen, cfg *config.Config, opts game.Options, stepsPerUpdate int) (*View, error) {
	v := &View{
		screen:         screen,
		cfg:            cfg,
		stepsPerUpdate: max(min(stepsPerUpdate, maxStepsPerUpdate), 1),
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
	return v, nil
}

// World returns the simulated world.
func (v *View) World() *game.World { return v.world }

// Run ticks and redraws until ctx is done, the user quits, or maxTicks is reached (0 = unlimited).
func (v *View) Run(ctx context.Context, maxTicks int32) {
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	stop := make(chan struct{})
	defer close(stop)
	go v.pollEvents(eventChan, stop)

	for {
		select {
		case <-ctx.Done():
			return

		case ev := <-eventChan:
			if !v.handleEvent(ev) {
				return
			}

		case <-ticker.C:
			v.update()
			v.draw()
			if maxTicks > 0 && v.world.TickCount() >= maxTicks {
				return
			}
		}
	}
}

// pollEvents forwards screen events until the screen is finalized or stop
// is closed. The stop case keeps the poller from blocking on a full channel
// once Run has returned.
func (v *View) pollEvents(events chan<- tcell.Event, stop <-chan struct{}) {
	for {
		ev := v.screen.PollEvent()
		if ev == nil {
			return // screen finalized
		}
		select {
		case events <- ev:
		case <-stop:
			return
		}
	}
}

// Close restores the terminal and releases the world.
func (v *View) Close() error {
	v.screen.Fini()
	return v.world.Close()
}

func (v *View) update() {
	if v.paused {
		return
	}
	for i := 0; i < v.stepsPerUpdate; i++ {
		v.world.Tick()
	}
}

// handleEvent applies one input event and reports whether to keep running.
func (v *View) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return false
			case ' ':
				v.paused = !v.paused
			case 'r', 'R':
				v.world.Restart()
				v.lastStats = telemetry.FlockStats{}
			case ',':
				v.stepsPerUpdate = max(v.stepsPerUpdate-1, 1)
			case '.':
				v.stepsPerUpdate = min(v.stepsPerUpdate+1, maxStepsPerUpdate)
			}
		}

	case *tcell.EventResize:
		v.screen.Sync()
	}
	return true
}

// draw renders the world into every row but the last, which holds the status line.
func (v *View) draw() {
	bg := tcell.StyleDefault.Background(backgroundColor)
	v.screen.SetStyle(bg)
	v.screen.Clear()

	cols, rows := v.screen.Size()
	fieldRows := rows - 1
	if cols <= 0 || fieldRows <= 0 {
		v.screen.Show()
		return
	}

	worldW, worldH := v.cfg.Derived.WorldW, v.cfg.Derived.WorldH
	agents := v.world.Agents()

	// Predators go last so they stay visible inside dense flocks.
	for pass := range 2 {
		for i := range agents {
			a := &agents[i]
			if (a.Kind == components.KindPredator) != (pass == 1) {
				continue
			}
			x, y, ok := cellFor(a.Position, worldW, worldH, cols, fieldRows)
			if !ok {
				continue
			}
			v.screen.SetContent(x, y, glyphFor(*a), nil, bg.Foreground(colorFor(*a)))
		}
	}

	v.drawStatus(rows-1, cols)
	v.screen.Show()
}

func (v *View) drawStatus(row, cols int) {
	boids, preds := v.world.Counts()
	state := "running"
	if v.paused {
		state = "PAUSED"
	}
	text := fmt.Sprintf(" tick %d | boids %d | predators %d | polarization %.2f | speed %dx | %s | [space] pause [r] restart [,/.] speed [q] quit",
		v.world.TickCount(), boids, preds, v.lastStats.PolarizationMean, v.stepsPerUpdate, state)

	style := tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(statusColor)
	x := 0
	for _, r := range text {
		if x >= cols {
			break
		}
		v.screen.SetContent(x, row, r, nil, style)
		x++
	}
	for ; x < cols; x++ {
		v.screen.SetContent(x, row, ' ', nil, style)
	}
}

// cellFor maps a world position onto a cols×rows character grid.
func cellFor(p r2.Vec, worldW, worldH float64, cols, rows int) (x, y int, ok bool) {
	if p.X < 0 || p.Y < 0 || p.X >= worldW || p.Y >= worldH {
		return 0, 0, false
	}
	x = int(p.X / worldW * float64(cols))
	y = int(p.Y / worldH * float64(rows))
	return min(x, cols-1), min(y, rows-1), true
}

// glyphFor returns an arrow for boids and a block for predators.
func glyphFor(a game.AgentView) rune {
	if a.Kind == components.KindPredator {
		return '█'
	}
	return headingGlyph(a.Velocity)
}

// headingGlyph picks the arrow closest to the direction of vel.
func headingGlyph(vel r2.Vec) rune {
	if vel == (r2.Vec{}) {
		return '·'
	}
	angle := math.Atan2(vel.Y, vel.X)
	octant := int(math.Round(angle/(math.Pi/4))) & 7
	return headingGlyphs[octant]
}

func colorFor(a game.AgentView) tcell.Color {
	if a.Kind != components.KindPredator {
		return boidColor
	}
	if a.Debug.Vision {
		return tcell.ColorRed
	}
	return tcell.ColorWhite
}
