package telemetry

// Collector tracks stats windows and accumulates per-tick flock measures within them.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float64

	// Current window tracking
	windowStartTick int32

	polarizationSum float64
	ticksRecorded   int
}

// NewCollector creates a new stats collector.
// windowDurationSec is the window length in simulation seconds and dt the
// seconds per tick.
func NewCollector(windowDurationSec, dt float64) *Collector {
	ticksPerWindow := int32(1)
	if dt > 0 {
		ticksPerWindow = max(int32(windowDurationSec/dt), 1)
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// Record adds one tick's samples to the current window.
func (c *Collector) Record(samples []AgentSample) {
	c.polarizationSum += Polarization(samples)
	c.ticksRecorded++
}

// ShouldFlush reports whether the current window is complete at currentTick.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush closes the current window, sampling distributions from samples,
// and starts a new one at currentTick.
func (c *Collector) Flush(currentTick int32, samples []AgentSample) FlockStats {
	stats := ComputeFlockStats(samples)
	stats.WindowStartTick = c.windowStartTick
	stats.WindowEndTick = currentTick
	stats.SimTimeSec = float64(currentTick) * c.dt
	if c.ticksRecorded > 0 {
		stats.PolarizationMean = c.polarizationSum / float64(c.ticksRecorded)
	}

	c.Reset(currentTick)
	return stats
}

// Reset discards the current window and starts a new one at tick.
func (c *Collector) Reset(tick int32) {
	c.windowStartTick = tick
	c.polarizationSum = 0
	c.ticksRecorded = 0
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
