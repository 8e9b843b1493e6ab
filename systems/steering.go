package systems

import "gonum.org/v1/gonum/spatial/r2"

// Accumulator combines steering requests under a single magnitude budget.
//
// Requests are honoured in the order they are added: each one spends its full
// magnitude from the budget, the request that crosses the budget is partially
// applied, and every later request is dropped. The budget is a sum of request
// magnitudes, not the magnitude of the summed vector.
type Accumulator struct {
	maxMagnitude float64
	spent        float64
	value        r2.Vec
}

// NewAccumulator returns an empty accumulator with the given budget.
func NewAccumulator(maxMagnitude float64) Accumulator {
	return Accumulator{maxMagnitude: maxMagnitude}
}

// Add offers a request to the accumulator.
func (a *Accumulator) Add(request r2.Vec) {
	if a.spent >= a.maxMagnitude {
		return
	}
	magnitude := r2.Norm(request)
	if magnitude == 0 {
		return
	}

	a.spent += magnitude
	a.value = r2.Add(a.value, request)

	if a.spent > a.maxMagnitude {
		excess := a.spent - a.maxMagnitude
		a.value = r2.Sub(a.value, r2.Scale(excess/magnitude, request))
		a.spent -= excess
	}
}

// Value returns the capped sum of the accepted requests.
func (a *Accumulator) Value() r2.Vec { return a.value }

// Spent returns the budget consumed so far.
func (a *Accumulator) Spent() float64 { return a.spent }

// Remaining returns the unspent budget.
func (a *Accumulator) Remaining() float64 { return max(a.maxMagnitude-a.spent, 0) }
