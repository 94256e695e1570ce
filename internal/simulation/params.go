package simulation

import (
	"fmt"
)

// Default model parameters, used whenever calibration is skipped or degrades.
const (
	DefaultDrift         = 0.08
	DefaultVolatility    = 0.20
	DefaultJumpIntensity = 10.0
	DefaultJumpMean      = -0.01
	DefaultJumpSigma     = 0.02
	DefaultVolClustering = 0.85
)

// TradingDaysPerYear is the fixed day count used for annualization.
const TradingDaysPerYear = 252

// Hybrid variant constants.
const (
	// VolShockSigma is the fixed noise scale of the clustering recursion.
	VolShockSigma = 0.05
	// MinVolatility floors instantaneous volatility so paths never degenerate.
	MinVolatility = 0.05
)

// JumpParameters describes the compound-Poisson jump component shared by the
// jump-diffusion and hybrid variants. The hybrid model composes (does not
// extend) this struct, keeping jump calibration single-sourced.
type JumpParameters struct {
	Intensity float64 `json:"jump_intensity"` // expected jumps per year
	Mean      float64 `json:"jump_mean"`      // mean of the log jump size
	Sigma     float64 `json:"jump_sigma"`     // std dev of the log jump size
}

// ModelParameters is the full parameter set for any process variant.
// Immutable once handed to a model; construct a new value per run.
type ModelParameters struct {
	Drift         float64 `json:"drift"`
	Volatility    float64 `json:"volatility"`
	JumpIntensity float64 `json:"jump_intensity"`
	JumpMean      float64 `json:"jump_mean"`
	JumpSigma     float64 `json:"jump_sigma"`
	VolClustering float64 `json:"vol_clustering"`
}

// DefaultParameters returns the documented default parameter set.
func DefaultParameters() ModelParameters {
	return ModelParameters{
		Drift:         DefaultDrift,
		Volatility:    DefaultVolatility,
		JumpIntensity: DefaultJumpIntensity,
		JumpMean:      DefaultJumpMean,
		JumpSigma:     DefaultJumpSigma,
		VolClustering: DefaultVolClustering,
	}
}

// Jump extracts the jump component of the parameter set.
func (p ModelParameters) Jump() JumpParameters {
	return JumpParameters{Intensity: p.JumpIntensity, Mean: p.JumpMean, Sigma: p.JumpSigma}
}

// Validate checks the parameter invariants common to all variants.
func (p ModelParameters) Validate() error {
	if p.Volatility < 0 {
		return fmt.Errorf("volatility must be non-negative, got %v", p.Volatility)
	}
	if p.JumpIntensity < 0 {
		return fmt.Errorf("jump intensity must be non-negative, got %v", p.JumpIntensity)
	}
	if p.JumpSigma < 0 {
		return fmt.Errorf("jump sigma must be non-negative, got %v", p.JumpSigma)
	}
	if p.VolClustering < 0 || p.VolClustering > 1 {
		return fmt.Errorf("vol clustering must be in [0,1], got %v", p.VolClustering)
	}
	return nil
}

// Overrides carries caller-supplied parameter values. A nil field leaves the
// calibrated (or default) value untouched; a set field wins.
type Overrides struct {
	Drift         *float64 `json:"drift,omitempty"`
	Volatility    *float64 `json:"volatility,omitempty" validate:"omitempty,gte=0"`
	JumpIntensity *float64 `json:"jump_intensity,omitempty" validate:"omitempty,gte=0"`
	JumpMean      *float64 `json:"jump_mean,omitempty"`
	JumpSigma     *float64 `json:"jump_sigma,omitempty" validate:"omitempty,gte=0"`
	VolClustering *float64 `json:"vol_clustering,omitempty" validate:"omitempty,gte=0,lte=1"`
}

// Apply merges the overrides onto base field-by-field and returns the result.
func (o Overrides) Apply(base ModelParameters) ModelParameters {
	if o.Drift != nil {
		base.Drift = *o.Drift
	}
	if o.Volatility != nil {
		base.Volatility = *o.Volatility
	}
	if o.JumpIntensity != nil {
		base.JumpIntensity = *o.JumpIntensity
	}
	if o.JumpMean != nil {
		base.JumpMean = *o.JumpMean
	}
	if o.JumpSigma != nil {
		base.JumpSigma = *o.JumpSigma
	}
	if o.VolClustering != nil {
		base.VolClustering = *o.VolClustering
	}
	return base
}

// IsEmpty reports whether no override field is set.
func (o Overrides) IsEmpty() bool {
	return o.Drift == nil && o.Volatility == nil && o.JumpIntensity == nil &&
		o.JumpMean == nil && o.JumpSigma == nil && o.VolClustering == nil
}
