package simulation

import (
	"log/slog"
	"math"
)

// jumpZScore is the threshold, in standard deviations of the full return
// sample, above which a daily return is flagged as a jump event.
const jumpZScore = 3.0

// Calibrator estimates model parameters from a historical close series.
// Degenerate input never fails calibration: the documented defaults are
// substituted and the degradation is reported to the caller.
type Calibrator struct {
	logger *slog.Logger
}

// NewCalibrator creates a calibrator. A nil logger falls back to slog.Default.
func NewCalibrator(logger *slog.Logger) *Calibrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Calibrator{logger: logger}
}

// LogReturns computes log returns from consecutive closes. Pairs containing
// a non-positive price are skipped rather than producing NaN or Inf.
func LogReturns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] <= 0 || closes[i] <= 0 {
			continue
		}
		returns = append(returns, math.Log(closes[i]/closes[i-1]))
	}
	return returns
}

// CalibrateDriftVolatility estimates annualized drift and volatility from
// daily closes. It requires at least two usable closes; on degenerate input
// it returns the defaults (0.08, 0.20) with degraded=true.
func (c *Calibrator) CalibrateDriftVolatility(closes []float64) (drift, volatility float64, degraded bool) {
	returns := LogReturns(closes)
	if len(returns) < 1 {
		c.logger.Warn("insufficient data for calibration, using defaults",
			"closes", len(closes),
			"usable_returns", len(returns),
		)
		return DefaultDrift, DefaultVolatility, true
	}

	mean, std := meanStd(returns)
	drift = mean * TradingDaysPerYear
	volatility = std * math.Sqrt(TradingDaysPerYear)

	if math.IsNaN(drift) || math.IsInf(drift, 0) || math.IsNaN(volatility) || math.IsInf(volatility, 0) {
		c.logger.Warn("calibration produced non-finite parameters, using defaults",
			"drift", drift,
			"volatility", volatility,
		)
		return DefaultDrift, DefaultVolatility, true
	}

	c.logger.Debug("calibrated drift and volatility",
		"drift", drift,
		"volatility", volatility,
		"returns", len(returns),
	)
	return drift, volatility, false
}

// CalibrateJumpParameters estimates jump intensity, mean and sigma from a
// daily log-return sample. Returns whose magnitude exceeds jumpZScore
// standard deviations of the full sample are flagged as jump events;
// intensity is the flagged count divided by the sample span in years. When
// no events are flagged the documented defaults are returned with
// degraded=true instead of dividing by zero.
func (c *Calibrator) CalibrateJumpParameters(returns []float64) (intensity, mean, sigma float64, degraded bool) {
	if len(returns) < 2 {
		return DefaultJumpIntensity, DefaultJumpMean, DefaultJumpSigma, true
	}

	_, std := meanStd(returns)
	if std <= 0 || math.IsNaN(std) || math.IsInf(std, 0) {
		return DefaultJumpIntensity, DefaultJumpMean, DefaultJumpSigma, true
	}

	var events []float64
	for _, r := range returns {
		if math.Abs(r) > jumpZScore*std {
			events = append(events, r)
		}
	}
	if len(events) == 0 {
		c.logger.Debug("no jump events flagged, using default jump parameters",
			"returns", len(returns),
		)
		return DefaultJumpIntensity, DefaultJumpMean, DefaultJumpSigma, true
	}

	spanYears := float64(len(returns)) / TradingDaysPerYear
	intensity = float64(len(events)) / spanYears

	mean, sigma = meanStd(events)
	if sigma == 0 {
		// A single flagged event has no spread; keep the default width.
		sigma = DefaultJumpSigma
	}

	c.logger.Debug("calibrated jump parameters",
		"intensity", intensity,
		"jump_mean", mean,
		"jump_sigma", sigma,
		"events", len(events),
	)
	return intensity, mean, sigma, false
}

// Calibrate runs both calibration passes and merges the result with the
// defaults. The degraded flag is true when either pass fell back.
func (c *Calibrator) Calibrate(closes []float64) (ModelParameters, bool) {
	params := DefaultParameters()

	drift, vol, driftDegraded := c.CalibrateDriftVolatility(closes)
	params.Drift = drift
	params.Volatility = vol

	intensity, jumpMean, jumpSigma, jumpDegraded := c.CalibrateJumpParameters(LogReturns(closes))
	params.JumpIntensity = intensity
	params.JumpMean = jumpMean
	params.JumpSigma = jumpSigma

	return params, driftDegraded || jumpDegraded
}

// meanStd returns the sample mean and population standard deviation.
func meanStd(xs []float64) (mean, std float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))

	var ss float64
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	std = math.Sqrt(ss / float64(len(xs)))
	return mean, std
}
