package telemetry

import (
	"log/slog"
	"slices"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Phase is one timed section of a simulation step.
type Phase uint8

// Step phases in execution order.
const (
	PhaseSnapshot Phase = iota
	PhaseSpatialGrid
	PhaseSteering
	PhaseApply
	PhaseTelemetry
	NumPhases
)

var phaseNames = [NumPhases]string{"snapshot", "spatial_grid", "steering", "apply", "telemetry"}

func (p Phase) String() string {
	if p < NumPhases {
		return phaseNames[p]
	}
	return "unknown"
}

// Phases lists the step phases in execution order.
var Phases = []Phase{PhaseSnapshot, PhaseSpatialGrid, PhaseSteering, PhaseApply, PhaseTelemetry}

// noPhase marks that no phase is running.
const noPhase = NumPhases

// PerfSample holds timing data for a single tick.
type PerfSample struct {
	Tick   time.Duration
	Agents int
	Phases [NumPhases]time.Duration
}

// PerfCollector keeps per-phase tick timings over a rolling window.
// It is not safe for concurrent use; the world drives it from the tick goroutine.
type PerfCollector struct {
	samples []PerfSample // ring buffer
	next    int
	count   int

	current    PerfSample
	tickStart  time.Time
	phaseStart time.Time
	phase      Phase

	lastFrame     time.Time
	frameDuration time.Duration

	now func() time.Time // clock; time.Now outside tests
}

// NewPerfCollector creates a collector averaging over windowSize ticks (60 if < 1).
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		samples: make([]PerfSample, windowSize),
		phase:   noPhase,
		now:     time.Now,
	}
}

// StartTick begins timing a tick.
func (p *PerfCollector) StartTick() {
	p.tickStart = p.now()
	p.current = PerfSample{}
	p.phase = noPhase
}

// StartPhase ends the running phase, if any, and starts timing phase.
func (p *PerfCollector) StartPhase(phase Phase) {
	now := p.now()
	p.endPhase(now)
	p.phaseStart = now
	p.phase = phase
}

// EndTick closes the tick that updated the given number of agents and records it.
func (p *PerfCollector) EndTick(agents int) {
	now := p.now()
	p.endPhase(now)
	p.current.Tick = now.Sub(p.tickStart)
	p.current.Agents = agents

	p.samples[p.next] = p.current
	p.next = (p.next + 1) % len(p.samples)
	p.count = min(p.count+1, len(p.samples))
}

func (p *PerfCollector) endPhase(now time.Time) {
	if p.phase < NumPhases {
		p.current.Phases[p.phase] += now.Sub(p.phaseStart)
	}
	p.phase = noPhase
}

// RecordFrame marks the start of a rendered frame.
func (p *PerfCollector) RecordFrame() {
	now := p.now()
	if !p.lastFrame.IsZero() {
		p.frameDuration = now.Sub(p.lastFrame)
	}
	p.lastFrame = now
}

// PerfStats aggregates the samples in the window.
type PerfStats struct {
	Ticks           int
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration
	P95TickDuration time.Duration

	PhaseAvg [NumPhases]time.Duration
	PhasePct [NumPhases]float64 // share of the average tick

	TicksPerSecond        float64
	AgentUpdatesPerSecond float64

	FrameDuration time.Duration // windowed mode only
	FPS           float64
}

// Stats computes statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	out := PerfStats{Ticks: p.count, FrameDuration: p.frameDuration}
	if p.frameDuration > 0 {
		out.FPS = float64(time.Second) / float64(p.frameDuration)
	}
	if p.count == 0 {
		return out
	}

	ticks := make([]float64, p.count)
	var agents int
	for i, s := range p.samples[:p.count] {
		ticks[i] = float64(s.Tick)
		agents += s.Agents
		for ph, d := range s.Phases {
			out.PhaseAvg[ph] += d
		}
	}
	n := time.Duration(p.count)
	for ph := range out.PhaseAvg {
		out.PhaseAvg[ph] /= n
	}

	slices.Sort(ticks)
	out.AvgTickDuration = time.Duration(stat.Mean(ticks, nil))
	out.MinTickDuration = time.Duration(ticks[0])
	out.MaxTickDuration = time.Duration(ticks[len(ticks)-1])
	out.P95TickDuration = time.Duration(stat.Quantile(0.95, stat.Empirical, ticks, nil))

	if out.AvgTickDuration > 0 {
		for ph, d := range out.PhaseAvg {
			out.PhasePct[ph] = float64(d) / float64(out.AvgTickDuration) * 100
		}
		out.TicksPerSecond = float64(time.Second) / float64(out.AvgTickDuration)
		out.AgentUpdatesPerSecond = out.TicksPerSecond * float64(agents) / float64(p.count)
	}
	return out
}

// LogStats logs the window summary at info level.
func (s PerfStats) LogStats(logger *slog.Logger) {
	logger.Info("perf", "perf", s)
}

// LogValue implements slog.LogValuer.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.AvgTickDuration.Microseconds()),
		slog.Int64("p95_tick_us", s.P95TickDuration.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTickDuration.Microseconds()),
		slog.Int("ticks_per_sec", int(s.TicksPerSecond)),
		slog.Int("agent_updates_per_sec", int(s.AgentUpdatesPerSecond)),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Int("fps", int(s.FPS)))
	}
	for _, ph := range Phases {
		if pct := s.PhasePct[ph]; pct > 0.1 {
			attrs = append(attrs, slog.Float64(ph.String()+"_pct", float64(int(pct*10))/10))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is the perf.csv row.
type PerfStatsCSV struct {
	WindowEnd      int32   `csv:"window_end"`
	AvgTickUS      int64   `csv:"avg_tick_us"`
	MinTickUS      int64   `csv:"min_tick_us"`
	P95TickUS      int64   `csv:"p95_tick_us"`
	MaxTickUS      int64   `csv:"max_tick_us"`
	TicksPerSec    float64 `csv:"ticks_per_sec"`
	AgentUpdates   float64 `csv:"agent_updates_per_sec"`
	FPS            float64 `csv:"fps"`
	SnapshotPct    float64 `csv:"snapshot_pct"`
	SpatialGridPct float64 `csv:"spatial_grid_pct"`
	SteeringPct    float64 `csv:"steering_pct"`
	ApplyPct       float64 `csv:"apply_pct"`
	TelemetryPct   float64 `csv:"telemetry_pct"`
}

// ToCSV flattens s into a perf.csv row for the window ending at windowEnd.
func (s PerfStats) ToCSV(windowEnd int32) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:      windowEnd,
		AvgTickUS:      s.AvgTickDuration.Microseconds(),
		MinTickUS:      s.MinTickDuration.Microseconds(),
		P95TickUS:      s.P95TickDuration.Microseconds(),
		MaxTickUS:      s.MaxTickDuration.Microseconds(),
		TicksPerSec:    s.TicksPerSecond,
		AgentUpdates:   s.AgentUpdatesPerSecond,
		FPS:            s.FPS,
		SnapshotPct:    s.PhasePct[PhaseSnapshot],
		SpatialGridPct: s.PhasePct[PhaseSpatialGrid],
		SteeringPct:    s.PhasePct[PhaseSteering],
		ApplyPct:       s.PhasePct[PhaseApply],
		TelemetryPct:   s.PhasePct[PhaseTelemetry],
	}
}
