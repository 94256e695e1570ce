package simulation

import "math"

// simulateGBM fills the matrix with pure-diffusion paths:
//
//	S[t] = S[t-1] * exp((mu - sigma^2/2)*dt + sigma*sqrt(dt)*Z)
//
// The multiplicative exponential update keeps every price strictly positive.
func (m *Model) simulateGBM(matrix PathMatrix, steps int, dt float64) {
	driftTerm := (m.drift - 0.5*m.volatility*m.volatility) * dt
	diffusion := m.volatility * math.Sqrt(dt)

	for i := range matrix {
		row := matrix[i]
		for t := 1; t <= steps; t++ {
			z := m.rng.NormFloat64()
			row[t] = row[t-1] * math.Exp(driftTerm+diffusion*z)
		}
	}
}
