package simulation

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"
)

// ModelType identifies a process variant. The set is closed: models are
// dispatched by tag at construction time, not through subtyping.
type ModelType string

const (
	// ModelGBM is pure diffusion (geometric Brownian motion).
	ModelGBM ModelType = "gbm"
	// ModelJump is diffusion plus compound-Poisson jumps.
	ModelJump ModelType = "jump"
	// ModelHybrid is diffusion plus jumps plus volatility clustering.
	ModelHybrid ModelType = "hybrid"
)

// ParseModelType maps a model-type token to a ModelType. The legacy alias
// "combined" resolves to ModelHybrid.
func ParseModelType(s string) (ModelType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "gbm":
		return ModelGBM, nil
	case "jump":
		return ModelJump, nil
	case "hybrid", "combined":
		return ModelHybrid, nil
	default:
		return "", fmt.Errorf("unknown model type %q (want gbm, jump or hybrid)", s)
	}
}

// String returns the model type token.
func (t ModelType) String() string {
	return string(t)
}

// Model is a fully parameterized process variant bound to an initial price.
// The hybrid variant composes the same JumpParameters struct the jump
// variant uses; the two share data, not behavior.
type Model struct {
	typ           ModelType
	initialPrice  float64
	drift         float64
	volatility    float64
	jump          JumpParameters // jump and hybrid variants
	volClustering float64        // hybrid variant only
	rng           *rand.Rand
}

// Option configures a Model at construction time.
type Option func(*Model)

// WithRand injects a deterministic random source, used by tests.
func WithRand(rng *rand.Rand) Option {
	return func(m *Model) {
		m.rng = rng
	}
}

// NewModel constructs the variant identified by typ with the given initial
// price and parameters. It validates the initial price and parameter
// invariants up front so Simulate cannot produce degenerate paths.
func NewModel(typ ModelType, initialPrice float64, params ModelParameters, opts ...Option) (*Model, error) {
	if _, err := ParseModelType(string(typ)); err != nil {
		return nil, err
	}
	if initialPrice <= 0 {
		return nil, fmt.Errorf("initial price must be positive, got %v", initialPrice)
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid model parameters: %w", err)
	}

	m := &Model{
		typ:           typ,
		initialPrice:  initialPrice,
		drift:         params.Drift,
		volatility:    params.Volatility,
		jump:          params.Jump(),
		volClustering: params.VolClustering,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.rng == nil {
		m.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return m, nil
}

// Type returns the variant tag.
func (m *Model) Type() ModelType {
	return m.typ
}

// InitialPrice returns the price every path starts from.
func (m *Model) InitialPrice() float64 {
	return m.initialPrice
}

// Parameters returns the full parameter set the model was built with.
func (m *Model) Parameters() ModelParameters {
	return ModelParameters{
		Drift:         m.drift,
		Volatility:    m.volatility,
		JumpIntensity: m.jump.Intensity,
		JumpMean:      m.jump.Mean,
		JumpSigma:     m.jump.Sigma,
		VolClustering: m.volClustering,
	}
}

// Simulate generates a (paths, steps+1) matrix of strictly positive prices.
// dt is the step size in years. Paths are independent; no state is shared
// across rows within a call.
func (m *Model) Simulate(paths, steps int, dt float64) (PathMatrix, error) {
	if paths < 1 {
		return nil, fmt.Errorf("paths must be at least 1, got %d", paths)
	}
	if steps < 1 {
		return nil, fmt.Errorf("steps must be at least 1, got %d", steps)
	}
	if dt <= 0 {
		return nil, fmt.Errorf("dt must be positive, got %v", dt)
	}

	matrix := NewPathMatrix(paths, steps, m.initialPrice)
	switch m.typ {
	case ModelGBM:
		m.simulateGBM(matrix, steps, dt)
	case ModelJump:
		m.simulateJump(matrix, steps, dt)
	case ModelHybrid:
		m.simulateHybrid(matrix, steps, dt)
	default:
		return nil, fmt.Errorf("unknown model type %q", m.typ)
	}
	return matrix, nil
}

// jumpProbability is the discretized Poisson-arrival probability of at
// least one jump within a step of size dt.
func jumpProbability(intensity, dt float64) float64 {
	return 1 - math.Exp(-intensity*dt)
}
