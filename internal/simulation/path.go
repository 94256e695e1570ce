package simulation

import (
	"fmt"
	"math"
)

// SimulatePath generates a single trajectory starting from an explicit
// initial price, independent of the price the model was constructed with.
// It returns the path without the initial price (length steps).
//
// When the primary simulation fails, a simplified GBM path built from the
// default parameters is returned instead and fallback is true, so callers
// can always distinguish a degraded result from a real one.
func (m *Model) SimulatePath(initialPrice float64, steps int, dt float64) (path []float64, fallback bool, err error) {
	if initialPrice <= 0 {
		return nil, false, fmt.Errorf("initial price must be positive, got %v", initialPrice)
	}
	if steps < 1 {
		return nil, false, fmt.Errorf("steps must be at least 1, got %d", steps)
	}
	if dt <= 0 {
		dt = 1.0 / TradingDaysPerYear
	}

	single := *m
	single.initialPrice = initialPrice
	matrix, simErr := single.Simulate(1, steps, dt)
	if simErr == nil {
		return matrix[0][1:], false, nil
	}

	// Degraded mode: a plain GBM walk with default daily parameters.
	mu := DefaultDrift / TradingDaysPerYear
	sigma := DefaultVolatility / math.Sqrt(TradingDaysPerYear)
	path = make([]float64, steps)
	price := initialPrice
	for i := range path {
		price *= math.Exp((mu - 0.5*sigma*sigma) + sigma*m.rng.NormFloat64())
		path[i] = price
	}
	return path, true, nil
}
