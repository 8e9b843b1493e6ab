package systems

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

const eps = 1e-9

func vecNear(a, b r2.Vec, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol
}

func TestAccumulator(t *testing.T) {
	tests := []struct {
		name      string
		max       float64
		requests  []r2.Vec
		want      r2.Vec
		wantSpent float64
	}{
		{
			name:      "under budget sums everything",
			max:       10,
			requests:  []r2.Vec{{X: 3}, {Y: 4}},
			want:      r2.Vec{X: 3, Y: 4},
			wantSpent: 7,
		},
		{
			name:      "crossing request partially applied",
			max:       10,
			requests:  []r2.Vec{{X: 6}, {Y: 8}},
			want:      r2.Vec{X: 6, Y: 4},
			wantSpent: 10,
		},
		{
			name:      "later requests dropped",
			max:       5,
			requests:  []r2.Vec{{X: 5}, {Y: 100}, {X: -3}},
			want:      r2.Vec{X: 5},
			wantSpent: 5,
		},
		{
			name:      "single oversized request capped",
			max:       2,
			requests:  []r2.Vec{{X: 3, Y: 4}},
			want:      r2.Vec{X: 1.2, Y: 1.6},
			wantSpent: 2,
		},
		{
			name:      "magnitudes not vector sum",
			max:       10,
			requests:  []r2.Vec{{X: 6}, {X: -6}},
			want:      r2.Vec{X: 2},
			wantSpent: 10,
		},
		{
			name:      "zero budget drops all",
			max:       0,
			requests:  []r2.Vec{{X: 1}},
			want:      r2.Vec{},
			wantSpent: 0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			acc := NewAccumulator(tc.max)
			for _, r := range tc.requests {
				acc.Add(r)
			}
			if !vecNear(acc.Value(), tc.want, eps) {
				t.Errorf("Value = %v, want %v", acc.Value(), tc.want)
			}
			if math.Abs(acc.Spent()-tc.wantSpent) > eps {
				t.Errorf("Spent = %v, want %v", acc.Spent(), tc.wantSpent)
			}
		})
	}
}

func TestAccumulator_ZeroRequestAtBudget(t *testing.T) {
	acc := NewAccumulator(1)
	acc.Add(r2.Vec{X: 1})
	acc.Add(r2.Vec{})
	acc.Add(r2.Vec{})

	v := acc.Value()
	if math.IsNaN(v.X) || math.IsNaN(v.Y) {
		t.Fatalf("zero request produced NaN: %v", v)
	}
	if !vecNear(v, r2.Vec{X: 1}, eps) {
		t.Errorf("Value = %v, want (1,0)", v)
	}

	empty := NewAccumulator(0)
	empty.Add(r2.Vec{})
	if v := empty.Value(); v != (r2.Vec{}) {
		t.Errorf("zero budget zero request = %v", v)
	}
}

func TestAccumulator_BudgetNeverExceeded(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 500; trial++ {
		maxMag := rng.Float64() * 100
		acc := NewAccumulator(maxMag)
		n := 1 + rng.Intn(6)
		for i := 0; i < n; i++ {
			acc.Add(r2.Vec{X: rng.NormFloat64() * 50, Y: rng.NormFloat64() * 50})
		}
		if acc.Spent() > maxMag+1e-9 {
			t.Fatalf("trial %d: spent %v over budget %v", trial, acc.Spent(), maxMag)
		}
		if m := Magnitude(acc.Value()); m > maxMag+1e-9 {
			t.Fatalf("trial %d: |value| %v over budget %v", trial, m, maxMag)
		}
	}
}

func TestAccumulator_PriorityOrder(t *testing.T) {
	// Shrinking the last request never changes what the first one got.
	first := r2.Vec{X: 7}
	for _, lastMag := range []float64{100, 10, 3, 0} {
		acc := NewAccumulator(10)
		acc.Add(first)
		acc.Add(r2.Vec{Y: lastMag})
		if got := acc.Value().X; math.Abs(got-7) > eps {
			t.Errorf("last=%v: first request contribution = %v, want 7", lastMag, got)
		}
		if got, want := acc.Value().Y, math.Min(lastMag, 3); math.Abs(got-want) > eps {
			t.Errorf("last=%v: last request contribution = %v, want %v", lastMag, got, want)
		}
	}
}
