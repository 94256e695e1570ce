package simulation

import (
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogReturns(t *testing.T) {
	tests := []struct {
		name   string
		closes []float64
		want   []float64
	}{
		{
			name:   "too few closes",
			closes: []float64{100},
			want:   nil,
		},
		{
			name:   "flat series",
			closes: []float64{100, 100, 100},
			want:   []float64{0, 0},
		},
		{
			name:   "doubling",
			closes: []float64{100, 200},
			want:   []float64{math.Log(2)},
		},
		{
			name:   "non-positive prices skipped",
			closes: []float64{100, -5, 100, 110},
			want:   []float64{math.Log(1.1)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LogReturns(tt.closes)
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.InDelta(t, tt.want[i], got[i], 1e-12)
			}
		})
	}
}

func TestCalibrateDriftVolatility(t *testing.T) {
	c := NewCalibrator(slog.Default())

	t.Run("insufficient data returns documented defaults", func(t *testing.T) {
		drift, vol, degraded := c.CalibrateDriftVolatility([]float64{100})
		assert.True(t, degraded)
		assert.Equal(t, 0.08, drift)
		assert.Equal(t, 0.20, vol)
	})

	t.Run("non-positive prices return defaults", func(t *testing.T) {
		drift, vol, degraded := c.CalibrateDriftVolatility([]float64{-1, 0})
		assert.True(t, degraded)
		assert.Equal(t, DefaultDrift, drift)
		assert.Equal(t, DefaultVolatility, vol)
	})

	t.Run("constant growth has zero volatility", func(t *testing.T) {
		closes := []float64{100, 101, 102.01, 103.0301}
		drift, vol, degraded := c.CalibrateDriftVolatility(closes)
		assert.False(t, degraded)
		assert.InDelta(t, math.Log(1.01)*TradingDaysPerYear, drift, 1e-9)
		assert.InDelta(t, 0, vol, 1e-9)
	})

	t.Run("annualization uses 252 trading days", func(t *testing.T) {
		// Alternating +10%/-10% moves: mean and std of log returns are known.
		closes := []float64{100, 110, 99, 108.9, 98.01}
		returns := LogReturns(closes)
		require.Len(t, returns, 4)

		var mean float64
		for _, r := range returns {
			mean += r
		}
		mean /= float64(len(returns))
		var ss float64
		for _, r := range returns {
			ss += (r - mean) * (r - mean)
		}
		wantVol := math.Sqrt(ss/float64(len(returns))) * math.Sqrt(252)

		drift, vol, degraded := c.CalibrateDriftVolatility(closes)
		assert.False(t, degraded)
		assert.InDelta(t, mean*252, drift, 1e-9)
		assert.InDelta(t, wantVol, vol, 1e-9)
	})
}

func TestCalibrateJumpParameters(t *testing.T) {
	c := NewCalibrator(slog.Default())

	t.Run("no flagged events returns defaults", func(t *testing.T) {
		returns := make([]float64, 100)
		for i := range returns {
			if i%2 == 0 {
				returns[i] = 0.001
			} else {
				returns[i] = -0.001
			}
		}
		intensity, mean, sigma, degraded := c.CalibrateJumpParameters(returns)
		assert.True(t, degraded)
		assert.Equal(t, 10.0, intensity)
		assert.Equal(t, -0.01, mean)
		assert.Equal(t, 0.02, sigma)
	})

	t.Run("too few returns", func(t *testing.T) {
		_, _, _, degraded := c.CalibrateJumpParameters([]float64{0.01})
		assert.True(t, degraded)
	})

	t.Run("outlier beyond three sigma is flagged", func(t *testing.T) {
		returns := make([]float64, 0, 101)
		for i := 0; i < 100; i++ {
			if i%2 == 0 {
				returns = append(returns, 0.001)
			} else {
				returns = append(returns, -0.001)
			}
		}
		returns = append(returns, -0.50) // crash day

		intensity, mean, sigma, degraded := c.CalibrateJumpParameters(returns)
		assert.False(t, degraded)

		// One event over a 101-day span.
		wantIntensity := 1.0 / (101.0 / 252.0)
		assert.InDelta(t, wantIntensity, intensity, 1e-9)
		assert.InDelta(t, -0.50, mean, 1e-9)
		// Single event falls back to the default jump width.
		assert.Equal(t, DefaultJumpSigma, sigma)
	})

	t.Run("zero spread sample returns defaults", func(t *testing.T) {
		_, _, _, degraded := c.CalibrateJumpParameters([]float64{0.01, 0.01, 0.01})
		assert.True(t, degraded)
	})
}

func TestCalibrate(t *testing.T) {
	c := NewCalibrator(nil)

	t.Run("degenerate input yields full default set", func(t *testing.T) {
		params, degraded := c.Calibrate([]float64{100})
		assert.True(t, degraded)
		assert.Equal(t, DefaultParameters(), params)
	})

	t.Run("valid input replaces drift and volatility", func(t *testing.T) {
		closes := []float64{100, 110, 99, 108.9, 98.01, 105, 101}
		params, _ := c.Calibrate(closes)
		assert.NotEqual(t, DefaultDrift, params.Drift)
		assert.Greater(t, params.Volatility, 0.0)
		assert.Equal(t, DefaultVolClustering, params.VolClustering)
	})
}
