package main

import (
	"log/slog"
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/boids/config"
	"github.com/pthm-cable/boids/game"
	"github.com/pthm-cable/boids/telemetry"
)

// Targets are the flock statistics a tuned config should produce.
type Targets struct {
	Polarization float64 // window-mean polarization in [0, 1]
	Neighbors    float64 // mean visible flockmates per boid
}

// warmupWindows are skipped while the random spawn settles into flocks.
const warmupWindows = 2

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	maxTicks   int32
	seeds      []int64
	baseConfig *config.Config
	targets    Targets
	logger     *slog.Logger

	mu          sync.Mutex
	lastMetrics Metrics // from the most recent Evaluate call
}

// Metrics summarises the measured flock behaviour of one evaluation.
type Metrics struct {
	Polarization float64
	Neighbors    float64
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int32, seeds []int64, baseCfg *config.Config, targets Targets) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		maxTicks:   maxTicks,
		seeds:      seeds,
		baseConfig: baseCfg,
		targets:    targets,
		logger:     slog.New(slog.DiscardHandler),
	}
}

// LastMetrics returns the averaged metrics of the most recent evaluation.
func (fe *FitnessEvaluator) LastMetrics() Metrics {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastMetrics
}

// Evaluate computes fitness for a raw parameter vector (lower = better).
// Every seed runs concurrently on its own world.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]Metrics, len(fe.seeds))
	errs := make([]error, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx], errs[idx] = fe.runSimulation(x, s)
		}(i, seed)
	}
	wg.Wait()

	pol := make([]float64, 0, len(results))
	nbr := make([]float64, 0, len(results))
	for i, m := range results {
		if errs[i] != nil {
			fe.logger.Warn("evaluation failed", "seed", fe.seeds[i], "error", errs[i])
			return math.Inf(1)
		}
		pol = append(pol, m.Polarization)
		nbr = append(nbr, m.Neighbors)
	}

	avg := Metrics{Polarization: stat.Mean(pol, nil), Neighbors: stat.Mean(nbr, nil)}
	fe.mu.Lock()
	fe.lastMetrics = avg
	fe.mu.Unlock()

	return fe.computeFitness(avg)
}

// runSimulation executes a single headless run and averages its post-warmup windows.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) (Metrics, error) {
	cfg := fe.baseConfig.Clone()
	cfg.Parallel.Workers = 1 // seeds already run concurrently
	fe.params.ApplyToConfig(cfg, x)

	var windows []telemetry.FlockStats
	w, err := game.NewWorld(cfg, game.Options{
		Seed:   seed,
		Logger: fe.logger,
		StatsCallback: func(stats telemetry.FlockStats) {
			windows = append(windows, stats)
		},
	})
	if err != nil {
		return Metrics{}, err
	}
	defer w.Close()

	for w.TickCount() < fe.maxTicks {
		w.Tick()
	}
	return summarize(windows), nil
}

// summarize averages the window-mean polarization and neighbour count
// over the windows after warmup.
func summarize(windows []telemetry.FlockStats) Metrics {
	if len(windows) > warmupWindows {
		windows = windows[warmupWindows:]
	}
	if len(windows) == 0 {
		return Metrics{}
	}
	pol := make([]float64, len(windows))
	nbr := make([]float64, len(windows))
	for i, w := range windows {
		pol[i] = w.PolarizationMean
		nbr[i] = w.NeighborsMean
	}
	return Metrics{Polarization: stat.Mean(pol, nil), Neighbors: stat.Mean(nbr, nil)}
}

// computeFitness is the squared error against the targets, with the
// neighbour error taken relative to its target so both terms are unitless.
func (fe *FitnessEvaluator) computeFitness(m Metrics) float64 {
	dp := m.Polarization - fe.targets.Polarization
	dn := m.Neighbors - fe.targets.Neighbors
	if fe.targets.Neighbors > 0 {
		dn /= fe.targets.Neighbors
	}
	return dp*dp + dn*dn
}
