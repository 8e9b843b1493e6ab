package systems

import (
	"errors"
	"math/rand"
	"slices"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func randomPositions(rng *rand.Rand, n int, lo, hi float64) []r2.Vec {
	out := make([]r2.Vec, n)
	for i := range out {
		out[i] = r2.Vec{X: lo + rng.Float64()*(hi-lo), Y: lo + rng.Float64()*(hi-lo)}
	}
	return out
}

func mustGrid(t testing.TB, cellSize float64, buckets int) *SpatialHashGrid {
	t.Helper()
	g, err := NewSpatialHashGrid(cellSize, buckets)
	if err != nil {
		t.Fatalf("NewSpatialHashGrid: %v", err)
	}
	return g
}

func TestNewSpatialHashGridRejectsInvalid(t *testing.T) {
	if _, err := NewSpatialHashGrid(0, 10); !errors.Is(err, ErrInvalidCellSize) {
		t.Errorf("cell size 0: got %v, want ErrInvalidCellSize", err)
	}
	if _, err := NewSpatialHashGrid(-3, 10); !errors.Is(err, ErrInvalidCellSize) {
		t.Errorf("cell size -3: got %v, want ErrInvalidCellSize", err)
	}
	if _, err := NewSpatialHashGrid(10, 0); !errors.Is(err, ErrInvalidBucketCount) {
		t.Errorf("bucket count 0: got %v, want ErrInvalidBucketCount", err)
	}
}

func TestSpatialHashGrid_EmptyQueries(t *testing.T) {
	g := mustGrid(t, 10, 16)

	// Never built
	if got := g.QueryInto(nil, r2.Vec{X: 5, Y: 5}, 100); len(got) != 0 {
		t.Errorf("unbuilt grid returned %d candidates", len(got))
	}

	// Built from nothing
	g.Rebuild(nil)
	if got := g.QueryInto(nil, r2.Vec{}, 50); len(got) != 0 {
		t.Errorf("empty grid returned %d candidates", len(got))
	}
	for range g.Query(r2.Vec{}, 50) {
		t.Fatal("empty grid yielded a candidate")
	}
	if g.Len() != 0 {
		t.Errorf("Len = %d, want 0", g.Len())
	}
}

func TestSpatialHashGrid_NoFalseNegatives(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	tests := []struct {
		name     string
		cellSize float64
		buckets  int
		n        int
	}{
		{"few buckets many collisions", 25, 7, 400},
		{"bucket per agent", 40, 1200, 400},
		{"small cells", 5, 97, 300},
		{"single bucket", 30, 1, 50},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g := mustGrid(t, tc.cellSize, tc.buckets)
			pts := randomPositions(rng, tc.n, -300, 700)
			g.Rebuild(pts)

			var buf []int32
			for q := 0; q < 200; q++ {
				center := r2.Vec{X: -350 + rng.Float64()*1100, Y: -350 + rng.Float64()*1100}
				radius := rng.Float64() * 2 * tc.cellSize
				if q%10 == 0 {
					radius = 0
				}

				buf = g.QueryInto(buf[:0], center, radius)
				found := make(map[int32]bool, len(buf))
				for _, idx := range buf {
					if found[idx] {
						t.Fatalf("index %d returned twice", idx)
					}
					found[idx] = true
				}

				for i, p := range pts {
					if distanceSq(p, center) <= radius*radius && !found[int32(i)] {
						t.Fatalf("point %d at %v within %v of %v was not returned", i, p, radius, center)
					}
				}
			}
		})
	}
}

func TestSpatialHashGrid_PointOnQueryRadius(t *testing.T) {
	g := mustGrid(t, 10, 64)
	pts := []r2.Vec{{X: 20, Y: 0}, {X: 0, Y: 0}}
	g.Rebuild(pts)

	got := g.QueryInto(nil, r2.Vec{X: 0, Y: 0}, 20)
	if !slices.Contains(got, 0) {
		t.Errorf("point exactly at the query radius missing from %v", got)
	}
}

func TestSpatialHashGrid_RebuildLayout(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	g := mustGrid(t, 20, 13)
	pts := randomPositions(rng, 250, -100, 400)
	g.Rebuild(pts)

	offsets := g.Offsets()
	if len(offsets) != g.BucketCount()+1 {
		t.Fatalf("len(offsets) = %d, want %d", len(offsets), g.BucketCount()+1)
	}
	if offsets[0] != 0 || int(offsets[len(offsets)-1]) != len(pts) {
		t.Fatalf("offsets span [%d, %d], want [0, %d]", offsets[0], offsets[len(offsets)-1], len(pts))
	}

	seen := make([]bool, len(pts))
	for b := 0; b < g.BucketCount(); b++ {
		if offsets[b] > offsets[b+1] {
			t.Fatalf("offsets not monotonic at bucket %d", b)
		}
		prev := int32(-1)
		for _, idx := range g.Dense()[offsets[b]:offsets[b+1]] {
			if got := g.Bucket(pts[idx]); got != b {
				t.Errorf("point %d stored in bucket %d, hashes to %d", idx, b, got)
			}
			if idx <= prev {
				t.Errorf("bucket %d not in input order: %d after %d", b, idx, prev)
			}
			prev = idx
			seen[idx] = true
		}
	}
	for i, ok := range seen {
		if !ok {
			t.Errorf("point %d missing from dense table", i)
		}
	}
}

func TestSpatialHashGrid_RebuildIdempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	g := mustGrid(t, 30, 50)
	pts := randomPositions(rng, 300, 0, 1000)

	g.Rebuild(pts)
	dense := slices.Clone(g.Dense())
	offsets := slices.Clone(g.Offsets())

	g.Rebuild(pts)
	if !slices.Equal(dense, g.Dense()) {
		t.Error("dense table changed between identical rebuilds")
	}
	if !slices.Equal(offsets, g.Offsets()) {
		t.Error("offset table changed between identical rebuilds")
	}
}

func TestSpatialHashGrid_RebuildShrinks(t *testing.T) {
	g := mustGrid(t, 10, 8)
	g.Rebuild(randomPositions(rand.New(rand.NewSource(1)), 100, 0, 100))
	g.Rebuild([]r2.Vec{{X: 1, Y: 1}})

	if g.Len() != 1 {
		t.Fatalf("Len = %d, want 1", g.Len())
	}
	got := g.QueryInto(nil, r2.Vec{X: 1, Y: 1}, 500)
	if !slices.Equal(got, []int32{0}) {
		t.Errorf("query after shrink = %v, want [0]", got)
	}
}

func TestSpatialHashGrid_ZeroRangeSingleCell(t *testing.T) {
	// Cells (0,0) and (1,0) must land in different buckets for this test to mean anything.
	g := mustGrid(t, 10, 1000)
	if g.bucket(0, 0) == g.bucket(1, 0) {
		t.Skip("cells collide for this bucket count")
	}
	pts := []r2.Vec{{X: 2, Y: 2}, {X: 8, Y: 9}, {X: 12, Y: 2}}
	g.Rebuild(pts)

	got := g.QueryInto(nil, r2.Vec{X: 5, Y: 5}, 0)
	slices.Sort(got)
	if !slices.Equal(got, []int32{0, 1}) {
		t.Errorf("zero-range query = %v, want [0 1]", got)
	}
}

func TestSpatialHashGrid_NegativeCoordinatesFloor(t *testing.T) {
	g := mustGrid(t, 10, 1000)
	if got, want := g.Bucket(r2.Vec{X: -1, Y: -1}), g.bucket(-1, -1); got != want {
		t.Errorf("bucket of (-1,-1) = %d, want cell (-1,-1) bucket %d", got, want)
	}
	if got, want := g.Bucket(r2.Vec{X: 9.99, Y: 0}), g.bucket(0, 0); got != want {
		t.Errorf("bucket of (9.99,0) = %d, want cell (0,0) bucket %d", got, want)
	}
}

func TestSpatialHashGrid_HashInRange(t *testing.T) {
	for _, buckets := range []int{1, 2, 7, 1800} {
		g := mustGrid(t, 1, buckets)
		for cx := -50; cx <= 50; cx += 7 {
			for cy := -50; cy <= 50; cy += 3 {
				if b := g.bucket(cx, cy); b < 0 || b >= buckets {
					t.Fatalf("bucket(%d,%d) = %d outside [0,%d)", cx, cy, b, buckets)
				}
			}
		}
	}
}

func TestSpatialHashGrid_QueryMatchesQueryInto(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	g := mustGrid(t, 15, 31)
	g.Rebuild(randomPositions(rng, 200, 0, 300))

	center := r2.Vec{X: 150, Y: 150}
	want := g.QueryInto(nil, center, 40)
	var got []int32
	for idx := range g.Query(center, 40) {
		got = append(got, idx)
	}
	if !slices.Equal(got, want) {
		t.Errorf("Query yielded %d candidates, QueryInto %d", len(got), len(want))
	}

	// Early termination
	n := 0
	for range g.Query(center, 40) {
		n++
		if n == 3 {
			break
		}
	}
	if len(want) >= 3 && n != 3 {
		t.Errorf("break after 3 yielded %d", n)
	}
}

func TestSpatialHashGrid_HugeRangeReturnsAll(t *testing.T) {
	g := mustGrid(t, 1, 16)
	pts := randomPositions(rand.New(rand.NewSource(2)), 64, 0, 1000)
	g.Rebuild(pts)

	got := g.QueryInto(nil, r2.Vec{}, 1e12)
	if len(got) != len(pts) {
		t.Errorf("huge range returned %d of %d points", len(got), len(pts))
	}
}

func TestBucketSet(t *testing.T) {
	tests := []struct {
		name           string
		cells, buckets int
		wantBits       bool
		wantMap        bool
	}{
		{"3x3 sweep", 9, 100, false, false},
		{"wide sweep, small table", 40, 1000, true, false},
		{"wide sweep, huge table", 20, 4096*20 + 1, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newBucketSet(tt.cells, tt.buckets)
			if (s.bits != nil) != tt.wantBits || (s.large != nil) != tt.wantMap {
				t.Fatalf("bits=%v map=%v, want bits=%v map=%v", s.bits != nil, s.large != nil, tt.wantBits, tt.wantMap)
			}
			for _, b := range []int{0, 7, 63, 64, tt.buckets - 1} {
				if !s.add(b) {
					t.Errorf("first add(%d) = false", b)
				}
				if s.add(b) {
					t.Errorf("second add(%d) = true", b)
				}
			}
		})
	}
}

func TestSpatialHashGrid_WideSweepYieldsEachPointOnce(t *testing.T) {
	pts := randomPositions(rand.New(rand.NewSource(11)), 500, 0, 300)
	center := r2.Vec{X: 150, Y: 150}

	tests := []struct {
		name    string
		buckets int
		radius  float64
	}{
		{"bitset", 97, 35},   // 8x8 cells into 97 buckets
		{"map", 110_000, 20}, // 5x5 cells, table too large for a bitset
		{"small", 7, 4},      // 2x2 cells
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := mustGrid(t, 10, tt.buckets)
			g.Rebuild(pts)

			got := g.QueryInto(nil, center, tt.radius)
			seen := make(map[int32]bool, len(got))
			for _, idx := range got {
				if seen[idx] {
					t.Fatalf("index %d returned twice", idx)
				}
				seen[idx] = true
			}
			for i, p := range pts {
				if r2.Norm(r2.Sub(p, center)) <= tt.radius && !seen[int32(i)] {
					t.Errorf("point %d at %v missing", i, p)
				}
			}
		})
	}
}

func BenchmarkRebuild(b *testing.B) {
	pts := randomPositions(rand.New(rand.NewSource(1)), 2000, 0, 1920)
	g := mustGrid(b, 130, 6000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		g.Rebuild(pts)
	}
}

func BenchmarkQuery(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	pts := randomPositions(rng, 2000, 0, 1920)
	g := mustGrid(b, 130, 6000)
	g.Rebuild(pts)
	buf := make([]int32, 0, 256)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf = g.QueryInto(buf[:0], pts[i%len(pts)], 130)
	}
}
