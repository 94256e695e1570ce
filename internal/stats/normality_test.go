package stats

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func normalSample(n int, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = rng.NormFloat64()
	}
	return xs
}

func skewedSample(n int, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	xs := make([]float64, n)
	for i := range xs {
		// Log-normal draws are heavily right-skewed.
		xs[i] = math.Exp(rng.NormFloat64() * 1.5)
	}
	return xs
}

func TestShapiroWilk(t *testing.T) {
	t.Run("too few samples", func(t *testing.T) {
		_, _, ok := shapiroWilk([]float64{1, 2})
		assert.False(t, ok)
	})

	t.Run("zero spread sample", func(t *testing.T) {
		_, _, ok := shapiroWilk([]float64{5, 5, 5, 5, 5})
		assert.False(t, ok)
	})

	t.Run("normal sample scores high W", func(t *testing.T) {
		w, p, ok := shapiroWilk(normalSample(200, 1))
		require.True(t, ok)
		assert.Greater(t, w, 0.95)
		assert.LessOrEqual(t, w, 1.0)
		assert.Greater(t, p, 0.01)
	})

	t.Run("skewed sample rejected", func(t *testing.T) {
		w, p, ok := shapiroWilk(skewedSample(200, 2))
		require.True(t, ok)
		assert.Less(t, w, 0.9)
		assert.Less(t, p, 0.01)
	})

	t.Run("small sample branch", func(t *testing.T) {
		w, p, ok := shapiroWilk(normalSample(8, 3))
		require.True(t, ok)
		assert.Greater(t, w, 0.0)
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 1.0)
	})
}

func TestDagostinoPearson(t *testing.T) {
	t.Run("too few samples", func(t *testing.T) {
		_, _, ok := dagostinoPearson(normalSample(10, 4))
		assert.False(t, ok)
	})

	t.Run("normal sample not rejected", func(t *testing.T) {
		k2, p, ok := dagostinoPearson(normalSample(5000, 5))
		require.True(t, ok)
		assert.GreaterOrEqual(t, k2, 0.0)
		assert.Greater(t, p, 0.01)
	})

	t.Run("skewed sample rejected", func(t *testing.T) {
		k2, p, ok := dagostinoPearson(skewedSample(5000, 6))
		require.True(t, ok)
		assert.Greater(t, k2, 10.0)
		assert.Less(t, p, 0.001)
	})
}

func TestAndersonDarling(t *testing.T) {
	t.Run("normal sample below loosest critical value", func(t *testing.T) {
		a2, p, ok := andersonDarling(normalSample(2000, 7))
		require.True(t, ok)
		assert.Less(t, a2, 1.0)
		// Bucketed p-value: zero means no critical value was exceeded.
		assert.Contains(t, []float64{0, 0.15, 0.10}, p)
	})

	t.Run("skewed sample strongly rejected", func(t *testing.T) {
		a2, p, ok := andersonDarling(skewedSample(2000, 8))
		require.True(t, ok)
		assert.Greater(t, a2, 1.092)
		assert.Equal(t, 0.15, p) // first bucket exceeded wins
	})

	t.Run("zero spread sample", func(t *testing.T) {
		xs := make([]float64, 50)
		_, _, ok := andersonDarling(xs)
		assert.False(t, ok)
	})
}

func TestAdvancedStatsMethodSelection(t *testing.T) {
	t.Run("tiny sample yields nil", func(t *testing.T) {
		assert.Nil(t, advancedStats([]float64{1, 2}))
	})

	t.Run("small sample uses Shapiro-Wilk", func(t *testing.T) {
		adv := advancedStats(normalSample(500, 9))
		require.NotNil(t, adv)
		assert.Equal(t, "Shapiro-Wilk", adv.NormalityTest)
	})

	t.Run("medium sample uses D'Agostino-Pearson", func(t *testing.T) {
		adv := advancedStats(normalSample(6000, 10))
		require.NotNil(t, adv)
		assert.Equal(t, "D'Agostino-Pearson", adv.NormalityTest)
	})

	t.Run("large sample uses Anderson-Darling", func(t *testing.T) {
		adv := advancedStats(normalSample(31000, 11))
		require.NotNil(t, adv)
		assert.Equal(t, "Anderson-Darling", adv.NormalityTest)
	})

	t.Run("t statistic direction", func(t *testing.T) {
		xs := normalSample(1000, 12)
		for i := range xs {
			xs[i] += 5 // strong positive mean shift
		}
		adv := advancedStats(xs)
		require.NotNil(t, adv)
		assert.Greater(t, adv.TStat, 10.0)
		assert.Less(t, adv.PValue, 1e-6)
	})
}
