package stats

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"stocksim/internal/simulation"
)

// Fatal input conditions. Everything else is sanitized, never surfaced.
var (
	ErrEmptyPathMatrix     = errors.New("path matrix is empty")
	ErrInvalidInitialPrice = errors.New("initial price must be positive")
	ErrNoValidFinalPrices  = errors.New("no valid final prices in path matrix")
)

// sortinoFloor replaces the downside deviation when no losing path exists.
const sortinoFloor = 0.001

// Engine computes statistics reports from path matrices.
type Engine struct {
	logger   *slog.Logger
	advanced bool
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithAdvancedStats toggles the higher-moment/hypothesis block. When off,
// the corresponding report fields are nil.
func WithAdvancedStats(enabled bool) EngineOption {
	return func(e *Engine) {
		e.advanced = enabled
	}
}

// NewEngine creates a statistics engine. Advanced statistics are enabled by
// default. A nil logger falls back to slog.Default.
func NewEngine(logger *slog.Logger, opts ...EngineOption) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{logger: logger, advanced: true}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Calculate derives the full report from a path matrix and initial price.
// It fails only on an empty matrix or a non-positive initial price; numeric
// degeneracy inside the matrix is absorbed, and every numeric field of the
// returned report is finite.
func (e *Engine) Calculate(paths simulation.PathMatrix, initialPrice float64) (*Report, error) {
	if paths.NumPaths() == 0 || paths.NumSteps() < 0 {
		return nil, ErrEmptyPathMatrix
	}
	if initialPrice <= 0 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidInitialPrice, initialPrice)
	}

	finals := validFinalPrices(paths)
	if len(finals) == 0 {
		return nil, fmt.Errorf("%w: %d paths, all degenerate", ErrNoValidFinalPrices, paths.NumPaths())
	}
	if len(finals) < paths.NumPaths() {
		e.logger.Warn("excluded degenerate final prices from statistics",
			"total_paths", paths.NumPaths(),
			"valid_paths", len(finals),
		)
	}

	sorted := append([]float64(nil), finals...)
	sort.Float64s(sorted)

	report := &Report{
		InitialPrice: initialPrice,
		TotalPaths:   paths.NumPaths(),
		ValidPaths:   len(finals),

		MeanFinalPrice:   stat.Mean(finals, nil),
		MedianFinalPrice: percentile(sorted, 50),
		StdFinalPrice:    stat.PopStdDev(finals, nil),
		MinFinalPrice:    sorted[0],
		MaxFinalPrice:    sorted[len(sorted)-1],
		Percentiles: Percentiles{
			P1:  percentile(sorted, 1),
			P5:  percentile(sorted, 5),
			P10: percentile(sorted, 10),
			P25: percentile(sorted, 25),
			P50: percentile(sorted, 50),
			P75: percentile(sorted, 75),
			P90: percentile(sorted, 90),
			P95: percentile(sorted, 95),
			P99: percentile(sorted, 99),
		},
	}

	report.ExpectedReturn = (report.MeanFinalPrice/initialPrice - 1) * 100
	report.MedianReturn = (report.MedianFinalPrice/initialPrice - 1) * 100

	// Dollar-loss framing: VaR99 >= VaR95 follows from the percentile ladder.
	report.VaR95 = initialPrice - report.Percentiles.P5
	report.VaR99 = initialPrice - report.Percentiles.P1

	profit := 0
	up10, up20, down10, down20 := 0, 0, 0, 0
	for _, price := range finals {
		if price > initialPrice {
			profit++
		}
		if price > initialPrice*1.1 {
			up10++
		}
		if price > initialPrice*1.2 {
			up20++
		}
		if price < initialPrice*0.9 {
			down10++
		}
		if price < initialPrice*0.8 {
			down20++
		}
	}
	n := float64(len(finals))
	report.ProbProfit = float64(profit) / n * 100
	// Ties count as loss so the two probabilities always sum to exactly 100.
	report.ProbLoss = 100 - report.ProbProfit
	report.ProbUp10Percent = float64(up10) / n * 100
	report.ProbUp20Percent = float64(up20) / n * 100
	report.ProbDown10Percent = float64(down10) / n * 100
	report.ProbDown20Percent = float64(down20) / n * 100

	// Percent returns per valid path drive the risk-adjusted block.
	returns := make([]float64, len(finals))
	for i, price := range finals {
		returns[i] = (price/initialPrice - 1) * 100
	}
	report.ReturnVolatility = stat.PopStdDev(returns, nil)

	if report.ReturnVolatility > 0 {
		report.SharpeRatio = report.ExpectedReturn / report.ReturnVolatility
	}

	var downside []float64
	for _, r := range returns {
		if r < 0 {
			downside = append(downside, r)
		}
	}
	downsideDev := sortinoFloor
	if len(downside) > 0 {
		if dd := stat.PopStdDev(downside, nil); dd > 0 {
			downsideDev = dd
		}
	}
	report.SortinoRatio = report.ExpectedReturn / downsideDev

	report.MaxDrawdown, report.MaxDrawdownWorst = drawdownStats(paths)

	if len(finals) > 1 {
		stderr := report.ReturnVolatility / math.Sqrt(n)
		report.ReturnCILower = report.ExpectedReturn - 1.96*stderr
		report.ReturnCIUpper = report.ExpectedReturn + 1.96*stderr
	} else {
		// Degenerate point interval for a single valid path.
		report.ReturnCILower = report.ExpectedReturn
		report.ReturnCIUpper = report.ExpectedReturn
	}

	if e.advanced {
		report.Advanced = advancedStats(returns)
		// Degenerate samples yield no block; the flag tracks the block and
		// never claims availability without it.
		report.HasAdvancedStats = report.Advanced != nil
	}

	sanitize(report)
	return report, nil
}

// validFinalPrices extracts final prices, dropping non-finite and
// non-positive entries.
func validFinalPrices(paths simulation.PathMatrix) []float64 {
	finals := make([]float64, 0, paths.NumPaths())
	for _, price := range paths.FinalPrices() {
		if price > 0 && !math.IsInf(price, 0) && !math.IsNaN(price) {
			finals = append(finals, price)
		}
	}
	return finals
}

// percentile computes the p-th percentile of sorted data, interpolating
// linearly between closest ranks: rank = p/100*(n-1). stat.Quantile's
// LinInterp kind is a different estimator (rank = p*n) and produces a
// different ladder, so this stays hand-rolled.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// sanitize enforces the always-finite invariant on every scalar field as a
// final backstop. Advanced fields are dropped rather than zeroed when
// non-finite, preserving the "absent, not zero" contract.
func sanitize(r *Report) {
	clean := func(f *float64) {
		if math.IsNaN(*f) || math.IsInf(*f, 0) {
			*f = 0
		}
	}
	for _, f := range []*float64{
		&r.MeanFinalPrice, &r.MedianFinalPrice, &r.StdFinalPrice,
		&r.MinFinalPrice, &r.MaxFinalPrice,
		&r.Percentiles.P1, &r.Percentiles.P5, &r.Percentiles.P10,
		&r.Percentiles.P25, &r.Percentiles.P50, &r.Percentiles.P75,
		&r.Percentiles.P90, &r.Percentiles.P95, &r.Percentiles.P99,
		&r.ExpectedReturn, &r.MedianReturn, &r.ReturnVolatility,
		&r.VaR95, &r.VaR99,
		&r.ProbProfit, &r.ProbLoss,
		&r.ProbUp10Percent, &r.ProbUp20Percent,
		&r.ProbDown10Percent, &r.ProbDown20Percent,
		&r.SharpeRatio, &r.SortinoRatio,
		&r.MaxDrawdown, &r.MaxDrawdownWorst,
		&r.ReturnCILower, &r.ReturnCIUpper,
	} {
		clean(f)
	}

	if r.Advanced != nil {
		for _, f := range []float64{
			r.Advanced.Skewness, r.Advanced.Kurtosis,
			r.Advanced.TStat, r.Advanced.PValue,
			r.Advanced.NormalityStat, r.Advanced.NormalityP,
		} {
			if math.IsNaN(f) || math.IsInf(f, 0) {
				r.Advanced = nil
				r.HasAdvancedStats = false
				break
			}
		}
	}
}
