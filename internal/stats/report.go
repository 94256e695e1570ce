package stats

// Percentiles is the final-price percentile ladder. Values are monotone
// non-decreasing with rank by construction.
type Percentiles struct {
	P1  float64 `json:"p1"`
	P5  float64 `json:"p5"`
	P10 float64 `json:"p10"`
	P25 float64 `json:"p25"`
	P50 float64 `json:"p50"`
	P75 float64 `json:"p75"`
	P90 float64 `json:"p90"`
	P95 float64 `json:"p95"`
	P99 float64 `json:"p99"`
}

// Ladder returns the percentile values in rank order.
func (p Percentiles) Ladder() []float64 {
	return []float64{p.P1, p.P5, p.P10, p.P25, p.P50, p.P75, p.P90, p.P95, p.P99}
}

// AdvancedStats holds the higher-moment and hypothesis-test block. All
// fields are present only when the engine computed them.
type AdvancedStats struct {
	Skewness      float64 `json:"skewness"`
	Kurtosis      float64 `json:"kurtosis"` // excess kurtosis
	TStat         float64 `json:"t_stat"`
	PValue        float64 `json:"p_value"`
	NormalityStat float64 `json:"normality_stat"`
	NormalityP    float64 `json:"normality_p"`
	NormalityTest string  `json:"normality_test"`
}

// Report is the full statistics report for one simulation. Derived purely
// from a path matrix and an initial price; every numeric field is finite.
type Report struct {
	InitialPrice float64 `json:"initial_price"`
	TotalPaths   int     `json:"total_paths"`
	ValidPaths   int     `json:"valid_paths"` // paths with a usable final price

	MeanFinalPrice   float64     `json:"mean_final_price"`
	MedianFinalPrice float64     `json:"median_final_price"`
	StdFinalPrice    float64     `json:"std_final_price"`
	MinFinalPrice    float64     `json:"min_final_price"`
	MaxFinalPrice    float64     `json:"max_final_price"`
	Percentiles      Percentiles `json:"percentiles"`

	ExpectedReturn   float64 `json:"expected_return"` // percent
	MedianReturn     float64 `json:"median_return"`   // percent
	ReturnVolatility float64 `json:"return_volatility"`

	VaR95 float64 `json:"var_95"` // dollar loss at 95% confidence
	VaR99 float64 `json:"var_99"`

	ProbProfit        float64 `json:"prob_profit"` // ProbProfit+ProbLoss == 100
	ProbLoss          float64 `json:"prob_loss"`
	ProbUp10Percent   float64 `json:"prob_up_10percent"`
	ProbUp20Percent   float64 `json:"prob_up_20percent"`
	ProbDown10Percent float64 `json:"prob_down_10percent"`
	ProbDown20Percent float64 `json:"prob_down_20percent"`

	SharpeRatio  float64 `json:"sharpe_ratio"`
	SortinoRatio float64 `json:"sortino_ratio"`

	// MaxDrawdown is the mean of per-path maximum drawdowns; MaxDrawdownWorst
	// is the maximum across paths. Both constrained to [0,1].
	MaxDrawdown      float64 `json:"max_drawdown"`
	MaxDrawdownWorst float64 `json:"max_drawdown_worst"`

	ReturnCILower float64 `json:"return_ci_lower"`
	ReturnCIUpper float64 `json:"return_ci_upper"`

	HasAdvancedStats bool           `json:"has_advanced_stats"`
	Advanced         *AdvancedStats `json:"advanced,omitempty"`
}
