package simulation

import "math"

// simulateJump fills the matrix with jump-diffusion paths. Each step a jump
// arrives with probability 1-exp(-lambda*dt); when it does, the price is
// multiplied by (1+J) where J = exp(N(mean, sigma)) - 1, so the jump factor
// is log-normal and the price stays strictly positive. Jump occurrence and
// size are independent per path and per step.
func (m *Model) simulateJump(matrix PathMatrix, steps int, dt float64) {
	driftTerm := (m.drift - 0.5*m.volatility*m.volatility) * dt
	diffusion := m.volatility * math.Sqrt(dt)
	jumpProb := jumpProbability(m.jump.Intensity, dt)

	for i := range matrix {
		row := matrix[i]
		for t := 1; t <= steps; t++ {
			z := m.rng.NormFloat64()
			next := row[t-1] * math.Exp(driftTerm+diffusion*z)

			if m.rng.Float64() < jumpProb {
				j := math.Exp(m.jump.Mean+m.jump.Sigma*m.rng.NormFloat64()) - 1
				next *= 1 + j
			}
			row[t] = next
		}
	}
}
