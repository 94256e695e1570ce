package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// shapiroWilk computes the Shapiro-Wilk W statistic and an approximate
// p-value using Royston's AS R94 normalizing transformation. Suitable for
// small samples (3 <= n < 5000).
func shapiroWilk(x []float64) (w, p float64, ok bool) {
	n := len(x)
	if n < 3 {
		return 0, 0, false
	}

	sorted := append([]float64(nil), x...)
	sort.Float64s(sorted)

	// Expected normal order statistics via Blom scores.
	m := make([]float64, n)
	var ssM float64
	for i := 0; i < n; i++ {
		m[i] = distuv.UnitNormal.Quantile((float64(i+1) - 0.375) / (float64(n) + 0.25))
		ssM += m[i] * m[i]
	}

	// Royston's polynomial-corrected weights for the two tail coefficients.
	rsn := 1 / math.Sqrt(float64(n))
	an := m[n-1]/math.Sqrt(ssM) +
		rsn*(0.221157+rsn*(-0.147981+rsn*(-2.071190+rsn*(4.434685+rsn*-2.706056))))

	a := make([]float64, n)
	var phi float64
	if n > 5 {
		an1 := m[n-2]/math.Sqrt(ssM) +
			rsn*(0.042981+rsn*(-0.293762+rsn*(-1.752461+rsn*(5.682633+rsn*-3.582633))))
		phi = (ssM - 2*m[n-1]*m[n-1] - 2*m[n-2]*m[n-2]) /
			(1 - 2*an*an - 2*an1*an1)
		a[n-1], a[0] = an, -an
		a[n-2], a[1] = an1, -an1
		for i := 2; i < n-2; i++ {
			a[i] = m[i] / math.Sqrt(phi)
		}
	} else {
		phi = (ssM - 2*m[n-1]*m[n-1]) / (1 - 2*an*an)
		a[n-1], a[0] = an, -an
		for i := 1; i < n-1; i++ {
			a[i] = m[i] / math.Sqrt(phi)
		}
	}

	var meanX float64
	for _, v := range sorted {
		meanX += v
	}
	meanX /= float64(n)

	var num, den float64
	for i, v := range sorted {
		num += a[i] * v
		den += (v - meanX) * (v - meanX)
	}
	if den <= 0 {
		// Zero-spread sample; the test is undefined.
		return 0, 0, false
	}
	w = num * num / den
	if w > 1 {
		w = 1
	}

	// P-value via Royston's transformation to approximate normality.
	switch {
	case n == 3:
		const pi6, stqr = 1.90985931710274, 1.04719755119660
		p = pi6 * (math.Asin(math.Sqrt(w)) - stqr)
		p = math.Max(0, math.Min(1, p))
	case n <= 11:
		fn := float64(n)
		g := -2.273 + 0.459*fn
		mu := 0.5440 + fn*(-0.39978+fn*(0.025054+fn*-0.0006714))
		sigma := math.Exp(1.3822 + fn*(-0.77857+fn*(0.062767+fn*-0.0020322)))
		z := (-math.Log(g-math.Log(1-w)) - mu) / sigma
		p = distuv.UnitNormal.Survival(z)
	default:
		ln := math.Log(float64(n))
		mu := -1.5861 + ln*(-0.31082+ln*(-0.083751+ln*0.0038915))
		sigma := math.Exp(-0.4803 + ln*(-0.082676+ln*0.0030302))
		z := (math.Log(1-w) - mu) / sigma
		p = distuv.UnitNormal.Survival(z)
	}
	return w, p, true
}

// dagostinoPearson computes the omnibus K^2 statistic combining the
// skewness and kurtosis z-scores, with a chi-squared(2) p-value. Intended
// for medium samples; requires n >= 20.
func dagostinoPearson(x []float64) (k2, p float64, ok bool) {
	n := float64(len(x))
	if n < 20 {
		return 0, 0, false
	}

	var mu float64
	for _, v := range x {
		mu += v
	}
	mu /= n
	var m2, m3, m4 float64
	for _, v := range x {
		d := v - mu
		m2 += d * d
		m3 += d * d * d
		m4 += d * d * d * d
	}
	m2 /= n
	m3 /= n
	m4 /= n
	if m2 <= 0 {
		return 0, 0, false
	}

	// Skewness z-score (D'Agostino).
	b1 := m3 / math.Pow(m2, 1.5)
	y := b1 * math.Sqrt((n+1)*(n+3)/(6*(n-2)))
	beta2 := 3 * (n*n + 27*n - 70) * (n + 1) * (n + 3) /
		((n - 2) * (n + 5) * (n + 7) * (n + 9))
	w2 := -1 + math.Sqrt(2*(beta2-1))
	delta := 1 / math.Sqrt(0.5*math.Log(w2))
	alpha := math.Sqrt(2 / (w2 - 1))
	ya := y / alpha
	zSkew := delta * math.Log(ya+math.Sqrt(ya*ya+1))

	// Kurtosis z-score (Anscombe-Glynn).
	b2 := m4 / (m2 * m2)
	eb2 := 3 * (n - 1) / (n + 1)
	varb2 := 24 * n * (n - 2) * (n - 3) / ((n + 1) * (n + 1) * (n + 3) * (n + 5))
	xk := (b2 - eb2) / math.Sqrt(varb2)
	sqrtBeta1 := 6 * (n*n - 5*n + 2) / ((n + 7) * (n + 9)) *
		math.Sqrt(6*(n+3)*(n+5)/(n*(n-2)*(n-3)))
	bigA := 6 + 8/sqrtBeta1*(2/sqrtBeta1+math.Sqrt(1+4/(sqrtBeta1*sqrtBeta1)))
	term := (1 - 2/bigA) / (1 + xk*math.Sqrt(2/(bigA-4)))
	zKurt := ((1 - 2/(9*bigA)) - math.Cbrt(term)) / math.Sqrt(2/(9*bigA))

	k2 = zSkew*zSkew + zKurt*zKurt
	chi2 := distuv.ChiSquared{K: 2}
	p = chi2.Survival(k2)
	return k2, p, true
}

// Anderson-Darling critical values for the normal case with unknown mean
// and variance, at the 15/10/5/2.5/1 percent significance levels.
var (
	adCriticalBase      = []float64{0.576, 0.656, 0.787, 0.918, 1.092}
	adSignificanceLevel = []float64{15, 10, 5, 2.5, 1}
)

// andersonDarling computes the A^2 statistic against a normal distribution
// with estimated mean and variance. Large samples only. The p-value is
// bucketed: the first critical value the statistic exceeds determines the
// reported significance, zero when none is exceeded.
func andersonDarling(x []float64) (a2, p float64, ok bool) {
	n := len(x)
	if n < 8 {
		return 0, 0, false
	}

	sorted := append([]float64(nil), x...)
	sort.Float64s(sorted)

	var mu float64
	for _, v := range sorted {
		mu += v
	}
	mu /= float64(n)
	var ss float64
	for _, v := range sorted {
		ss += (v - mu) * (v - mu)
	}
	sd := math.Sqrt(ss / float64(n-1))
	if sd <= 0 {
		return 0, 0, false
	}

	const tiny = 1e-300
	fn := float64(n)
	sum := 0.0
	for i := 0; i < n; i++ {
		lo := distuv.UnitNormal.CDF((sorted[i] - mu) / sd)
		hi := distuv.UnitNormal.CDF((sorted[n-1-i] - mu) / sd)
		sum += (2*float64(i) + 1) * (math.Log(math.Max(lo, tiny)) + math.Log(math.Max(1-hi, tiny)))
	}
	a2 = -fn - sum/fn

	adjust := 1 + 4/fn - 25/(fn*fn)
	p = 0
	for i, base := range adCriticalBase {
		if a2 > base/adjust {
			p = adSignificanceLevel[i] / 100
			break
		}
	}
	return a2, p, true
}
