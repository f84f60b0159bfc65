package budget

import (
	"math"
	"sort"
)

// conformalPredictor maintains a calibration ring buffer of observed
// nonconformity scores (here, simply observed durations) for one bucket and
// produces a split-conformal upper bound at a target miscoverage alpha: the
// ceil((1-alpha)*(n+1))-th order statistic of the calibration set, the
// standard split-conformal quantile.
type conformalPredictor struct {
	window    []float64
	capacity  int
	alpha     float64
}

func newConformalPredictor(capacity int, alpha float64) *conformalPredictor {
	return &conformalPredictor{capacity: capacity, alpha: alpha}
}

// Observe folds one more calibration sample (an observed phase duration, in
// microseconds) into the ring buffer.
func (c *conformalPredictor) Observe(v float64) {
	c.window = append(c.window, v)
	if len(c.window) > c.capacity {
		c.window = c.window[len(c.window)-c.capacity:]
	}
}

// UpperBound returns the split-conformal upper bound q_hat and whether the
// calibration set is large enough to be meaningful (at least 10 samples).
func (c *conformalPredictor) UpperBound() (qHat float64, ready bool) {
	n := len(c.window)
	if n < 10 {
		return 0, false
	}
	sorted := append([]float64(nil), c.window...)
	sort.Float64s(sorted)

	rank := int(math.Ceil((1 - c.alpha) * float64(n+1)))
	if rank < 1 {
		rank = 1
	}
	if rank > n {
		rank = n
	}
	return sorted[rank-1], true
}
