package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Sample-size thresholds selecting the normality test method.
const (
	shapiroMaxSamples   = 5000  // below: Shapiro-Wilk
	dagostinoMaxSamples = 30000 // up to: D'Agostino-Pearson; above: Anderson-Darling
)

// advancedStats computes the higher-moment block over the percent-return
// sample. Returns nil when the sample is too small for the tests to be
// meaningful; callers must leave the report fields absent in that case.
func advancedStats(returns []float64) *AdvancedStats {
	n := len(returns)
	if n < 3 {
		return nil
	}

	adv := &AdvancedStats{
		Skewness: stat.Skew(returns, nil),
		Kurtosis: stat.ExKurtosis(returns, nil),
	}

	// One-sample t-test of the mean return against zero.
	m := stat.Mean(returns, nil)
	sd := math.Sqrt(stat.Variance(returns, nil))
	if sd > 0 {
		adv.TStat = m / (sd / math.Sqrt(float64(n)))
		tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 1)}
		adv.PValue = 2 * tDist.Survival(math.Abs(adv.TStat))
	} else {
		adv.TStat = 0
		adv.PValue = 1
	}

	var ok bool
	switch {
	case n < shapiroMaxSamples:
		adv.NormalityStat, adv.NormalityP, ok = shapiroWilk(returns)
		adv.NormalityTest = "Shapiro-Wilk"
	case n <= dagostinoMaxSamples:
		adv.NormalityStat, adv.NormalityP, ok = dagostinoPearson(returns)
		adv.NormalityTest = "D'Agostino-Pearson"
	default:
		adv.NormalityStat, adv.NormalityP, ok = andersonDarling(returns)
		adv.NormalityTest = "Anderson-Darling"
	}
	if !ok {
		return nil
	}
	return adv
}
