package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/boids/config"
	"github.com/pthm-cable/boids/game"
	"github.com/pthm-cable/boids/termview"
	"github.com/pthm-cable/boids/viewer"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	tui := flag.Bool("tui", false, "Render in the terminal instead of a window")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	snapshotDir := flag.String("snapshot-dir", "", "Directory for bookmark snapshot files")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	stepsPerUpdate := flag.Int("steps-per-update", 1, "Simulation ticks per frame in windowed mode")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	if *tui {
		// stdout belongs to the terminal view
		logger = slog.New(slog.DiscardHandler)
	}
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// Use config stats window if not overridden by CLI
	if *statsWindow > 0 {
		cfg.Telemetry.StatsWindow = *statsWindow
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	opts := game.Options{
		Seed:        rngSeed,
		Logger:      logger,
		LogStats:    *logStats,
		OutputDir:   *outputDir,
		SnapshotDir: *snapshotDir,
	}

	if *headless {
		if err := runHeadless(cfg, opts, int32(*maxTicks)); err != nil {
			slog.Error("simulation failed", "error", err)
			os.Exit(1)
		}
		return
	}

	if *tui {
		if err := runTerminal(cfg, opts, *stepsPerUpdate, int32(*maxTicks)); err != nil {
			// the logger is discarded in this mode
			fmt.Fprintln(os.Stderr, "terminal view failed:", err)
			os.Exit(1)
		}
		return
	}

	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Boids")
	defer rl.CloseWindow()
	rl.SetWindowState(rl.FlagWindowResizable)
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	v, err := viewer.New(cfg, opts, *stepsPerUpdate)
	if err != nil {
		slog.Error("failed to create world", "error", err)
		return
	}
	defer func() {
		if err := v.Close(); err != nil {
			slog.Error("failed to close world", "error", err)
		}
	}()

	v.Run(int32(*maxTicks))
}

// runHeadless ticks the world without graphics until maxTicks or an interrupt.
func runHeadless(cfg *config.Config, opts game.Options, maxTicks int32) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	w, err := game.NewWorld(cfg, opts)
	if err != nil {
		return err
	}

	slog.Info("starting headless simulation",
		"seed", opts.Seed,
		"stats_window", cfg.Telemetry.StatsWindow,
		"max_ticks", maxTicks,
	)

	for ctx.Err() == nil {
		w.Tick()

		if maxTicks > 0 && w.TickCount() >= maxTicks {
			slog.Info("max ticks reached", "tick", w.TickCount())
			break
		}
	}
	return w.Close()
}

// runTerminal draws the simulation with tcell until the user quits or maxTicks is reached.
func runTerminal(cfg *config.Config, opts game.Options, stepsPerUpdate int, maxTicks int32) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	v, err := termview.New(cfg, opts, stepsPerUpdate)
	if err != nil {
		return err
	}
	v.Run(ctx, maxTicks)
	return v.Close()
}
