package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/boids/components"
)

// AgentSample is the per-agent input to flock statistics.
type AgentSample struct {
	Kind         components.Kind
	Velocity     r2.Vec
	Acceleration r2.Vec
	Neighbors    int32
}

// FlockStats holds aggregated statistics for a time window.
type FlockStats struct {
	WindowStartTick int32   `csv:"-" json:"window_start"`
	WindowEndTick   int32   `csv:"window_end" json:"window_end"`
	SimTimeSec      float64 `csv:"sim_time" json:"sim_time"`

	// Population counts at window end
	Boids     int `csv:"boids" json:"boids"`
	Predators int `csv:"predators" json:"predators"`

	// Speed distribution (sampled at window end)
	SpeedMean         float64 `csv:"speed_mean" json:"speed_mean"`
	SpeedStd          float64 `csv:"speed_std" json:"speed_std"`
	PredatorSpeedMean float64 `csv:"predator_speed_mean" json:"predator_speed_mean"`

	// Alignment: 1 = every boid heading the same way, ~0 = disordered
	Polarization     float64 `csv:"polarization" json:"polarization"`
	PolarizationMean float64 `csv:"polarization_window_mean" json:"polarization_window_mean"`

	// Boid neighbourhood sizes (sampled at window end)
	NeighborsMean float64 `csv:"neighbors_mean" json:"neighbors_mean"`
	NeighborsP50  float64 `csv:"neighbors_p50" json:"neighbors_p50"`
	NeighborsP90  float64 `csv:"neighbors_p90" json:"neighbors_p90"`
	IsolatedFrac  float64 `csv:"isolated_frac" json:"isolated_frac"`

	// Applied steering magnitude, all agents
	AccelMean float64 `csv:"accel_mean" json:"accel_mean"`
}

// Polarization returns |Σ v̂| / n over the boids in samples.
func Polarization(samples []AgentSample) float64 {
	var sum r2.Vec
	var n int
	for i := range samples {
		s := &samples[i]
		if s.Kind != components.KindBoid {
			continue
		}
		n++
		if m := r2.Norm(s.Velocity); m > 0 {
			sum = r2.Add(sum, r2.Scale(1/m, s.Velocity))
		}
	}
	if n == 0 {
		return 0
	}
	return r2.Norm(sum) / float64(n)
}

// ComputeFlockStats fills the instantaneous fields of a FlockStats from one tick's samples.
// Window bounds and PolarizationMean are left to the Collector.
func ComputeFlockStats(samples []AgentSample) FlockStats {
	var out FlockStats

	speeds := make([]float64, 0, len(samples))
	neighbors := make([]float64, 0, len(samples))
	var predSpeed, accelSum float64
	var isolated int

	for i := range samples {
		s := &samples[i]
		accelSum += r2.Norm(s.Acceleration)
		if s.Kind == components.KindPredator {
			out.Predators++
			predSpeed += r2.Norm(s.Velocity)
			continue
		}
		out.Boids++
		speeds = append(speeds, r2.Norm(s.Velocity))
		neighbors = append(neighbors, float64(s.Neighbors))
		if s.Neighbors == 0 {
			isolated++
		}
	}

	if len(samples) > 0 {
		out.AccelMean = accelSum / float64(len(samples))
	}
	if out.Predators > 0 {
		out.PredatorSpeedMean = predSpeed / float64(out.Predators)
	}
	if out.Boids == 0 {
		return out
	}

	out.SpeedMean, out.SpeedStd = meanStd(speeds)
	out.Polarization = Polarization(samples)
	out.IsolatedFrac = float64(isolated) / float64(out.Boids)

	sort.Float64s(neighbors)
	out.NeighborsMean = stat.Mean(neighbors, nil)
	out.NeighborsP50 = stat.Quantile(0.5, stat.Empirical, neighbors, nil)
	out.NeighborsP90 = stat.Quantile(0.9, stat.Empirical, neighbors, nil)

	return out
}

// meanStd returns the mean and sample standard deviation, with std 0 for fewer than two values.
func meanStd(x []float64) (mean, std float64) {
	if len(x) < 2 {
		return stat.Mean(x, nil), 0
	}
	mean, std = stat.MeanStdDev(x, nil)
	if math.IsNaN(std) {
		std = 0
	}
	return mean, std
}

// LogStats logs the window using logger.
func (s FlockStats) LogStats(logger *slog.Logger) {
	logger.Info("stats",
		"tick", s.WindowEndTick,
		"boids", s.Boids,
		"predators", s.Predators,
		"speed_mean", math.Round(s.SpeedMean*10)/10,
		"speed_std", math.Round(s.SpeedStd*10)/10,
		"polarization", math.Round(s.Polarization*1000)/1000,
		"neighbors_mean", math.Round(s.NeighborsMean*10)/10,
		"neighbors_p90", s.NeighborsP90,
		"isolated_frac", math.Round(s.IsolatedFrac*1000)/1000,
	)
}
