// Package main tunes the boid flocking parameters with CMA-ES so that a
// headless run reaches target polarization and neighbourhood size.
package main

import (
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/boids/config"
)

type options struct {
	configPath string
	outputDir  string
	maxTicks   int
	seeds      int
	maxEvals   int
	population int
	targets    Targets
}

func parseFlags() options {
	var o options
	flag.StringVar(&o.configPath, "config", "", "Base config YAML file (empty = use defaults)")
	flag.StringVar(&o.outputDir, "output", "", "Output directory for tune_log.csv and best_config.yaml")
	flag.IntVar(&o.maxTicks, "max-ticks", 3000, "Simulation length per evaluation in ticks")
	flag.IntVar(&o.seeds, "seeds", 3, "Number of seeds per evaluation")
	flag.IntVar(&o.maxEvals, "max-evals", 200, "Maximum number of evaluations")
	flag.IntVar(&o.population, "population", 0, "CMA-ES population size (0 = 4 + 3 ln n)")
	flag.Float64Var(&o.targets.Polarization, "target-polarization", 0.8, "Target window-mean polarization")
	flag.Float64Var(&o.targets.Neighbors, "target-neighbors", 8, "Target mean visible flockmates per boid")
	flag.Parse()
	return o
}

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	if err := run(parseFlags()); err != nil {
		slog.Error("tuning failed", "error", err)
		os.Exit(1)
	}
}

func run(o options) error {
	if o.outputDir == "" {
		return errors.New("-output is required")
	}
	if err := os.MkdirAll(o.outputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	baseCfg, err := config.Load(o.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	params := NewParamVector()
	evalSeeds := make([]int64, o.seeds)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}
	evaluator := NewFitnessEvaluator(params, int32(o.maxTicks), evalSeeds, baseCfg, o.targets)

	tlog, err := newTuneLog(filepath.Join(o.outputDir, "tune_log.csv"), params.Specs)
	if err != nil {
		return err
	}
	defer tlog.Close()

	popSize := o.population
	if popSize == 0 {
		popSize = 4 + int(3*math.Log(float64(params.Dim())))
	}

	progress := newProgress(o.maxEvals)
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			values := params.Clamp(params.Denormalize(x))
			fitness := evaluator.Evaluate(values)
			metrics := evaluator.LastMetrics()

			progress.record(fitness, values)
			if err := tlog.Record(progress.evals, fitness, metrics, values); err != nil {
				slog.Warn("failed to write tune log", "error", err)
			}
			progress.log(fitness, metrics)
			return fitness
		},
	}

	slog.Info("starting CMA-ES tuning",
		"params", params.Dim(),
		"population", popSize,
		"max_evals", o.maxEvals,
		"seeds", o.seeds,
		"ticks", o.maxTicks,
		"target_polarization", o.targets.Polarization,
		"target_neighbors", o.targets.Neighbors,
	)

	// Seeds already run in parallel inside each evaluation.
	settings := &optimize.Settings{FuncEvaluations: o.maxEvals}
	method := &optimize.CmaEsChol{InitStepSize: 0.3, Population: popSize}

	result, err := optimize.Minimize(problem, params.Normalize(params.ExtractFromConfig(baseCfg)), settings, method)
	if err != nil {
		slog.Info("optimization ended", "reason", err)
	}

	best := progress.best
	if best == nil && result != nil {
		best = params.Clamp(params.Denormalize(result.X))
	}
	if best == nil {
		return errors.New("no evaluation completed")
	}

	attrs := []any{"evals", progress.evals, "elapsed", formatDuration(time.Since(progress.start)), "fitness", progress.bestFitness}
	for i, spec := range params.Specs {
		attrs = append(attrs, spec.Path, best[i])
	}
	slog.Info("tuning complete", attrs...)

	bestCfg := baseCfg.Clone()
	params.ApplyToConfig(bestCfg, best)
	path := filepath.Join(o.outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(path); err != nil {
		return fmt.Errorf("writing best config: %w", err)
	}
	slog.Info("best config saved", "path", path)
	return nil
}

// progress tracks the best evaluation so far and the time left.
type progress struct {
	maxEvals    int
	evals       int
	start       time.Time
	bestFitness float64
	best        []float64
}

func newProgress(maxEvals int) *progress {
	return &progress{maxEvals: maxEvals, start: time.Now(), bestFitness: math.Inf(1)}
}

func (p *progress) record(fitness float64, values []float64) {
	p.evals++
	if fitness < p.bestFitness {
		p.bestFitness = fitness
		p.best = values
	}
}

// eta extrapolates the mean evaluation time over the remaining evaluations.
func (p *progress) eta(elapsed time.Duration) time.Duration {
	if p.evals == 0 {
		return 0
	}
	return time.Duration(max(p.maxEvals-p.evals, 0)) * (elapsed / time.Duration(p.evals))
}

func (p *progress) log(fitness float64, m Metrics) {
	elapsed := time.Since(p.start)
	slog.Info("eval",
		"n", p.evals,
		"fitness", fitness,
		"polarization", m.Polarization,
		"neighbors", m.Neighbors,
		"best", p.bestFitness,
		"elapsed", formatDuration(elapsed),
		"eta", formatDuration(p.eta(elapsed)),
	)
}

// tuneLog appends one CSV row per evaluation. Its parameter columns follow the
// ParamSpec table, so it is written with encoding/csv rather than a fixed struct.
type tuneLog struct {
	f *os.File
	w *csv.Writer
}

func newTuneLog(path string, specs []ParamSpec) (*tuneLog, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating tune log: %w", err)
	}
	header := []string{"eval", "fitness", "polarization", "neighbors"}
	for _, spec := range specs {
		header = append(header, spec.Name)
	}
	l := &tuneLog{f: f, w: csv.NewWriter(f)}
	if err := l.write(header); err != nil {
		f.Close()
		return nil, err
	}
	return l, nil
}

// Record writes one evaluation and flushes it so the log survives an interrupt.
func (l *tuneLog) Record(eval int, fitness float64, m Metrics, values []float64) error {
	row := []string{
		strconv.Itoa(eval),
		strconv.FormatFloat(fitness, 'f', 6, 64),
		strconv.FormatFloat(m.Polarization, 'f', 4, 64),
		strconv.FormatFloat(m.Neighbors, 'f', 3, 64),
	}
	for _, v := range values {
		row = append(row, strconv.FormatFloat(v, 'f', 6, 64))
	}
	return l.write(row)
}

func (l *tuneLog) write(row []string) error {
	if err := l.w.Write(row); err != nil {
		return err
	}
	l.w.Flush()
	return l.w.Error()
}

func (l *tuneLog) Close() error {
	l.w.Flush()
	return errors.Join(l.w.Error(), l.f.Close())
}

// formatDuration formats a duration as 1h02m05s, or 1m30s below an hour.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second
	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}
