package stats

import (
	"math"

	"stocksim/internal/simulation"
)

// corruptPathDrawdown is the total-loss proxy assigned to paths containing
// non-finite or non-positive prices.
const corruptPathDrawdown = 1.0

// pathMaxDrawdown returns the maximum peak-to-trough decline along a single
// path as a fraction of the peak, in [0,1]. A path containing any
// non-finite or non-positive price gets the sentinel 1.0 instead of
// propagating NaN into the aggregate.
func pathMaxDrawdown(path []float64) float64 {
	runningMax := math.Inf(-1)
	maxDrawdown := 0.0

	for _, price := range path {
		if price <= 0 || math.IsInf(price, 0) || math.IsNaN(price) {
			return corruptPathDrawdown
		}
		if price > runningMax {
			runningMax = price
		}
		if runningMax > 0 {
			dd := (runningMax - price) / runningMax
			if dd > maxDrawdown {
				maxDrawdown = dd
			}
		}
	}

	if maxDrawdown < 0 {
		return 0
	}
	if maxDrawdown > 1 {
		return 1
	}
	return maxDrawdown
}

// drawdownStats computes the per-path average maximum drawdown and the
// worst maximum drawdown across all paths. The average is the headline
// metric; the across-paths maximum is kept separate as a worse-case view.
func drawdownStats(paths simulation.PathMatrix) (average, worst float64) {
	if len(paths) == 0 {
		return 0, 0
	}
	var sum float64
	for _, path := range paths {
		dd := pathMaxDrawdown(path)
		sum += dd
		if dd > worst {
			worst = dd
		}
	}
	return sum / float64(len(paths)), worst
}
