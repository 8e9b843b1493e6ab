package game

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/boids/config"
	"github.com/pthm-cable/boids/telemetry"
)

// statsRecorder owns the telemetry sinks of a World.
type statsRecorder struct {
	logger      *slog.Logger
	logStats    bool
	callback    func(telemetry.FlockStats)
	snapshotDir string

	collector *telemetry.Collector
	bookmarks *telemetry.BookmarkDetector
	output    *telemetry.OutputManager // nil when disabled

	samples []telemetry.AgentSample // filled by the apply phase
}

func newStatsRecorder(cfg *config.Config, opts Options, logger *slog.Logger) (*statsRecorder, error) {
	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := output.WriteConfig(cfg); err != nil {
		output.Close()
		return nil, fmt.Errorf("writing config: %w", err)
	}

	return &statsRecorder{
		logger:      logger,
		logStats:    opts.LogStats,
		callback:    opts.StatsCallback,
		snapshotDir: opts.SnapshotDir,
		collector:   telemetry.NewCollector(cfg.Telemetry.StatsWindow, cfg.Physics.DT),
		bookmarks:   telemetry.NewBookmarkDetector(10),
		output:      output,
	}, nil
}

func (r *statsRecorder) reset(tick int32) {
	r.collector.Reset(tick)
	r.bookmarks.Reset()
	r.samples = r.samples[:0]
}

func (r *statsRecorder) close() error {
	return r.output.Close()
}

// flushTelemetry records the tick and, at window boundaries, emits stats,
// perf and bookmarks to every configured sink.
func (w *World) flushTelemetry() {
	r := w.stats
	r.collector.Record(r.samples)
	if !r.collector.ShouldFlush(w.tick) {
		return
	}

	stats := r.collector.Flush(w.tick, r.samples)
	perfStats := w.perf.Stats()

	if r.callback != nil {
		r.callback(stats)
	}

	if r.logStats {
		stats.LogStats(r.logger)
		perfStats.LogStats(r.logger)
	}

	if err := r.output.WriteStats(stats); err != nil {
		r.logger.Error("failed to write stats", "error", err)
	}
	if err := r.output.WritePerf(perfStats, stats.WindowEndTick); err != nil {
		r.logger.Error("failed to write perf", "error", err)
	}

	for _, bm := range r.bookmarks.Check(stats) {
		if r.logStats {
			bm.LogBookmark(r.logger)
		}
		if err := r.output.WriteBookmark(bm); err != nil {
			r.logger.Error("failed to write bookmark", "error", err)
		}
		if r.snapshotDir != "" {
			path, err := telemetry.SaveSnapshot(w.Snapshot(&bm, &stats), r.snapshotDir)
			if err != nil {
				r.logger.Error("failed to save snapshot", "error", err)
				continue
			}
			r.logger.Info("snapshot saved", "path", path, "bookmark", string(bm.Type))
		}
	}
}
