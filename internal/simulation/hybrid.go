package simulation

import "math"

// simulateHybrid fills the matrix with diffusion+jump+volatility-clustering
// paths. Each path carries an instantaneous volatility state that follows a
// GARCH-like mean-reverting recursion around the base volatility:
//
//	vol = kappa*vol + (1-kappa)*base + N(0, 0.05), floored at 0.05
//
// The diffusion term uses the current instantaneous vol. Jumps arrive with
// the same discretized Poisson probability as the jump variant but are
// applied additively in log space; the two application forms are distinct on
// purpose and must not be unified.
func (m *Model) simulateHybrid(matrix PathMatrix, steps int, dt float64) {
	jumpProb := jumpProbability(m.jump.Intensity, dt)
	sqrtDt := math.Sqrt(dt)

	for i := range matrix {
		row := matrix[i]
		vol := m.volatility
		for t := 1; t <= steps; t++ {
			volShock := m.rng.NormFloat64() * VolShockSigma
			vol = m.volClustering*vol + (1-m.volClustering)*m.volatility + volShock
			if vol < MinVolatility {
				vol = MinVolatility
			}

			var jumpSize float64
			if m.rng.Float64() < jumpProb {
				jumpSize = m.jump.Mean + m.jump.Sigma*m.rng.NormFloat64()
			}

			z := m.rng.NormFloat64()
			row[t] = row[t-1] * math.Exp((m.drift-0.5*vol*vol)*dt+vol*sqrtDt*z+jumpSize)
		}
	}
}
