// Package simulation implements the Monte Carlo price-path engine.
//
// The package provides three stochastic process variants behind a single
// Model type selected at construction:
//
//  1. GBM: pure geometric Brownian motion with constant drift and volatility
//  2. Jump: GBM augmented with compound-Poisson log-normal jumps
//  3. Hybrid: diffusion plus jumps plus an autoregressive volatility
//     clustering recursion with a hard volatility floor
//
// Model parameters are either calibrated from a historical close series by
// the Calibrator or supplied by the caller; explicit overrides win
// field-by-field over calibrated values. All variants use multiplicative
// exponential-form updates, so every simulated price is strictly positive
// whenever the initial price is.
//
// # Usage Example
//
//	params := simulation.DefaultParameters()
//	model, err := simulation.NewModel(simulation.ModelGBM, 100.0, params)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	matrix, err := model.Simulate(1000, 252, 1.0/252)
package simulation
