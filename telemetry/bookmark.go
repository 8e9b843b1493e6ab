package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkFlockFormed    BookmarkType = "flock_formed"
	BookmarkFlockScattered BookmarkType = "flock_scattered"
	BookmarkCrowding       BookmarkType = "crowding"
	BookmarkSteadyFlock    BookmarkType = "steady_flock"
)

// Polarization thresholds for ordered and disordered flocks.
const (
	orderedPolarization    = 0.8
	disorderedPolarization = 0.4
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type" json:"type"`
	Tick        int32        `csv:"tick" json:"tick"`
	Description string       `csv:"description" json:"description"`
}

// LogBookmark logs the bookmark using logger.
func (b Bookmark) LogBookmark(logger *slog.Logger) {
	logger.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting moments in the flock's behaviour.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []FlockStats
	historySize int
	historyIdx  int
	historyFull bool

	last         *FlockStats
	steadyCount  int // consecutive windows with steady polarization
	steadyReport bool
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5 // minimum for steady flock detection
	}
	return &BookmarkDetector{
		history:     make([]FlockStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats FlockStats) []Bookmark {
	var bookmarks []Bookmark

	if bd.last != nil {
		if b := bd.checkFlockFormed(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkFlockScattered(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkCrowding(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkSteadyFlock(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	bd.addToHistory(stats)
	last := stats
	bd.last = &last

	return bookmarks
}

// Reset forgets all history, for use after a restart.
func (bd *BookmarkDetector) Reset() {
	bd.historyIdx = 0
	bd.historyFull = false
	bd.last = nil
	bd.steadyCount = 0
	bd.steadyReport = false
}

func (bd *BookmarkDetector) addToHistory(stats FlockStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []FlockStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

func (bd *BookmarkDetector) checkFlockFormed(stats FlockStats) *Bookmark {
	prev := bd.last.Polarization
	if prev >= disorderedPolarization || stats.Polarization < orderedPolarization {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkFlockFormed,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Polarization rose from %.2f to %.2f", prev, stats.Polarization),
	}
}

func (bd *BookmarkDetector) checkFlockScattered(stats FlockStats) *Bookmark {
	prev := bd.last.Polarization
	if prev < orderedPolarization || stats.Polarization >= disorderedPolarization {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkFlockScattered,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Polarization fell from %.2f to %.2f", prev, stats.Polarization),
	}
}

func (bd *BookmarkDetector) checkCrowding(stats FlockStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var total float64
	for _, h := range history {
		total += h.NeighborsMean
	}
	avg := total / float64(len(history))
	if avg == 0 {
		return nil
	}

	if stats.NeighborsMean > avg*2.0 && stats.NeighborsMean >= 5 {
		return &Bookmark{
			Type:        BookmarkCrowding,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Mean neighbors %.1f is %.1fx average (%.1f)", stats.NeighborsMean, stats.NeighborsMean/avg, avg),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkSteadyFlock(stats FlockStats) *Bookmark {
	if stats.Polarization < orderedPolarization {
		bd.steadyCount = 0
		bd.steadyReport = false
		return nil
	}

	bd.steadyCount++
	if bd.steadyCount < 5 || bd.steadyReport {
		return nil
	}
	bd.steadyReport = true // once per ordered stretch
	return &Bookmark{
		Type:        BookmarkSteadyFlock,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Flock ordered (polarization %.2f) for %d windows", stats.Polarization, bd.steadyCount),
	}
}
