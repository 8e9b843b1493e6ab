// Package systems provides the per-tick simulation rules: the spatial index,
// the force accumulator, the steering rules and boundary containment.
package systems

import (
	"errors"
	"iter"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Errors returned by NewSpatialHashGrid.
var (
	ErrInvalidCellSize    = errors.New("spatial grid: cell size must be positive")
	ErrInvalidBucketCount = errors.New("spatial grid: bucket count must be positive")
)

// Large odd multipliers used to scatter neighbouring cells across buckets.
const (
	hashPrimeX = 92837111
	hashPrimeY = 689287499
)

// SpatialHashGrid indexes points by square cell using a fixed-size hash table.
//
// Rebuild lays all indices out in one dense slice ordered by bucket (a counting
// sort), so the members of bucket b are dense[offsets[b]:offsets[b+1]].
// Queries return a superset of the points in range: whole cells are returned,
// and cells that collide in the table share a bucket. Callers must re-check
// exact distances.
//
// The grid stores indices into the slice passed to the last Rebuild and is only
// valid until those positions change. Queries are safe for concurrent use; Rebuild is not.
type SpatialHashGrid struct {
	cellSize float64
	buckets  int
	offsets  []int32 // len buckets+1; trailing guard entry equals len(dense)
	dense    []int32
	bucketOf []int   // scratch, bucket of each point during Rebuild
}

// NewSpatialHashGrid creates an empty grid with square cells of the given edge
// length and a table of bucketCount buckets.
func NewSpatialHashGrid(cellSize float64, bucketCount int) (*SpatialHashGrid, error) {
	if !(cellSize > 0) || math.IsInf(cellSize, 0) {
		return nil, ErrInvalidCellSize
	}
	if bucketCount <= 0 {
		return nil, ErrInvalidBucketCount
	}
	return &SpatialHashGrid{
		cellSize: cellSize,
		buckets:  bucketCount,
		offsets:  make([]int32, bucketCount+1),
	}, nil
}

// CellSize returns the cell edge length.
func (g *SpatialHashGrid) CellSize() float64 { return g.cellSize }

// BucketCount returns the hash table size.
func (g *SpatialHashGrid) BucketCount() int { return g.buckets }

// Len returns the number of points indexed by the last Rebuild.
func (g *SpatialHashGrid) Len() int { return len(g.dense) }

// Dense returns the bucket-ordered point indices. The slice is owned by the grid.
func (g *SpatialHashGrid) Dense() []int32 { return g.dense }

// Offsets returns the bucket start offsets plus the trailing guard. The slice is owned by the grid.
func (g *SpatialHashGrid) Offsets() []int32 { return g.offsets }

// Clear empties the grid.
func (g *SpatialHashGrid) Clear() {
	clear(g.offsets)
	g.dense = g.dense[:0]
}

// Rebuild replaces the index with the given positions. Index i in query
// results refers to positions[i].
func (g *SpatialHashGrid) Rebuild(positions []r2.Vec) {
	n := len(positions)
	clear(g.offsets)
	if cap(g.dense) < n {
		g.dense = make([]int32, n)
		g.bucketOf = make([]int, n)
	}
	g.dense = g.dense[:n]
	g.bucketOf = g.bucketOf[:n]

	// Pass 1: count points per bucket
	for i, p := range positions {
		b := g.bucket(g.cellCoord(p.X), g.cellCoord(p.Y))
		g.bucketOf[i] = b
		g.offsets[b]++
	}

	// Pass 2: running sum, so offsets[b] is the end of bucket b
	var sum int32
	for b := range g.offsets {
		sum += g.offsets[b]
		g.offsets[b] = sum
	}

	// Pass 3: scatter, decrementing each end down to the bucket start.
	// Walking backwards keeps points within a bucket in input order.
	for i := n - 1; i >= 0; i-- {
		b := g.bucketOf[i]
		g.offsets[b]--
		g.dense[g.offsets[b]] = int32(i)
	}
}

// QueryInto appends the indices of every point in the cells overlapping the
// square [center-radius, center+radius] to dst and returns the extended slice.
// Reuse dst across calls to avoid allocations.
func (g *SpatialHashGrid) QueryInto(dst []int32, center r2.Vec, radius float64) []int32 {
	g.forEachBucket(center, radius, func(b int) bool {
		dst = append(dst, g.dense[g.offsets[b]:g.offsets[b+1]]...)
		return true
	})
	return dst
}

// Query lazily yields the same candidates as QueryInto.
func (g *SpatialHashGrid) Query(center r2.Vec, radius float64) iter.Seq[int32] {
	return func(yield func(int32) bool) {
		g.forEachBucket(center, radius, func(b int) bool {
			for _, idx := range g.dense[g.offsets[b]:g.offsets[b+1]] {
				if !yield(idx) {
					return false
				}
			}
			return true
		})
	}
}

// forEachBucket calls fn once per distinct non-empty bucket touched by the
// query square, stopping early when fn returns false.
func (g *SpatialHashGrid) forEachBucket(center r2.Vec, radius float64, fn func(b int) bool) {
	if len(g.dense) == 0 {
		return
	}
	if radius < 0 {
		radius = 0
	}

	minX := math.Floor((center.X - radius) / g.cellSize)
	maxX := math.Floor((center.X + radius) / g.cellSize)
	minY := math.Floor((center.Y - radius) / g.cellSize)
	maxY := math.Floor((center.Y + radius) / g.cellSize)

	// A sweep covering at least as many cells as there are buckets (or a
	// non-finite one) is answered with the whole table.
	if cells := (maxX - minX + 1) * (maxY - minY + 1); !(cells < float64(g.buckets)) {
		for b := 0; b < g.buckets; b++ {
			if g.offsets[b] != g.offsets[b+1] && !fn(b) {
				return
			}
		}
		return
	}

	seen := newBucketSet(int(maxX-minX+1)*int(maxY-minY+1), g.buckets)
	for cy := int(minY); cy <= int(maxY); cy++ {
		for cx := int(minX); cx <= int(maxX); cx++ {
			b := g.bucket(cx, cy)
			if g.offsets[b] == g.offsets[b+1] || !seen.add(b) {
				continue
			}
			if !fn(b) {
				return
			}
		}
	}
}

// smallSweep is the largest sweep deduplicated by scanning a fixed array;
// it covers the usual 3x3 and 4x4 neighbourhoods without allocating.
const smallSweep = 16

// bucketSet records the buckets one query has visited. It lives on the
// query's stack, which keeps concurrent queries independent. Sweeps larger
// than smallSweep use a bitset over the table when the table is at most 64
// words per cell, and a map otherwise, so marking stays linear in the sweep.
type bucketSet struct {
	small [smallSweep]int
	n     int
	bits  []uint64
	large map[int]struct{}
}

func newBucketSet(cells, buckets int) bucketSet {
	var s bucketSet
	switch {
	case cells <= smallSweep:
	case buckets <= 64*64*cells:
		s.bits = make([]uint64, (buckets+63)/64)
	default:
		s.large = make(map[int]struct{}, cells)
	}
	return s
}

// add marks b and reports whether it was new.
func (s *bucketSet) add(b int) bool {
	switch {
	case s.bits != nil:
		word, mask := b/64, uint64(1)<<(b%64)
		if s.bits[word]&mask != 0 {
			return false
		}
		s.bits[word] |= mask
		return true
	case s.large != nil:
		if _, ok := s.large[b]; ok {
			return false
		}
		s.large[b] = struct{}{}
		return true
	}
	for _, x := range s.small[:s.n] {
		if x == b {
			return false
		}
	}
	s.small[s.n] = b
	s.n++
	return true
}

// Bucket returns the bucket a position falls into.
func (g *SpatialHashGrid) Bucket(p r2.Vec) int {
	return g.bucket(g.cellCoord(p.X), g.cellCoord(p.Y))
}

func (g *SpatialHashGrid) cellCoord(v float64) int {
	return int(math.Floor(v / g.cellSize))
}

// bucket hashes integer cell coordinates into [0, buckets).
func (g *SpatialHashGrid) bucket(cx, cy int) int {
	h := (cx * hashPrimeX) ^ (cy * hashPrimeY)
	h %= g.buckets
	if h < 0 {
		h = -h
	}
	return h
}
