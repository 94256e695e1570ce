package simulation

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseModelType(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		want    ModelType
		wantErr bool
	}{
		{"gbm", "gbm", ModelGBM, false},
		{"jump", "jump", ModelJump, false},
		{"hybrid", "hybrid", ModelHybrid, false},
		{"combined alias", "combined", ModelHybrid, false},
		{"uppercase", "GBM", ModelGBM, false},
		{"padded", " jump ", ModelJump, false},
		{"unknown", "heston", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseModelType(tt.token)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewModelValidation(t *testing.T) {
	tests := []struct {
		name         string
		typ          ModelType
		initialPrice float64
		mutate       func(*ModelParameters)
		wantErr      string
	}{
		{"zero initial price", ModelGBM, 0, nil, "initial price"},
		{"negative initial price", ModelGBM, -5, nil, "initial price"},
		{"negative volatility", ModelGBM, 100, func(p *ModelParameters) { p.Volatility = -0.1 }, "volatility"},
		{"negative jump intensity", ModelJump, 100, func(p *ModelParameters) { p.JumpIntensity = -1 }, "jump intensity"},
		{"negative jump sigma", ModelJump, 100, func(p *ModelParameters) { p.JumpSigma = -0.1 }, "jump sigma"},
		{"vol clustering above one", ModelHybrid, 100, func(p *ModelParameters) { p.VolClustering = 1.5 }, "vol clustering"},
		{"unknown type", ModelType("heston"), 100, nil, "unknown model type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := DefaultParameters()
			if tt.mutate != nil {
				tt.mutate(&params)
			}
			_, err := NewModel(tt.typ, tt.initialPrice, params)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSimulateInvariants(t *testing.T) {
	const (
		paths        = 200
		steps        = 50
		dt           = 1.0 / 252
		initialPrice = 100.0
	)

	for _, typ := range []ModelType{ModelGBM, ModelJump, ModelHybrid} {
		t.Run(string(typ), func(t *testing.T) {
			model, err := NewModel(typ, initialPrice, DefaultParameters(),
				WithRand(rand.New(rand.NewSource(42))))
			require.NoError(t, err)

			matrix, err := model.Simulate(paths, steps, dt)
			require.NoError(t, err)
			require.Equal(t, paths, matrix.NumPaths())
			require.Equal(t, steps, matrix.NumSteps())

			for i, row := range matrix {
				assert.Equal(t, initialPrice, row[0], "path %d column 0", i)
				for t2, price := range row {
					if !(price > 0) || math.IsInf(price, 0) || math.IsNaN(price) {
						t.Fatalf("path %d step %d: price %v is not strictly positive and finite", i, t2, price)
					}
				}
			}
		})
	}
}

func TestSimulateArgumentValidation(t *testing.T) {
	model, err := NewModel(ModelGBM, 100, DefaultParameters())
	require.NoError(t, err)

	_, err = model.Simulate(0, 10, 1.0/252)
	assert.ErrorContains(t, err, "paths")

	_, err = model.Simulate(10, 0, 1.0/252)
	assert.ErrorContains(t, err, "steps")

	_, err = model.Simulate(10, 10, 0)
	assert.ErrorContains(t, err, "dt")
}

func TestSimulateDeterministicWithSeed(t *testing.T) {
	for _, typ := range []ModelType{ModelGBM, ModelJump, ModelHybrid} {
		t.Run(string(typ), func(t *testing.T) {
			run := func() PathMatrix {
				model, err := NewModel(typ, 50, DefaultParameters(),
					WithRand(rand.New(rand.NewSource(7))))
				require.NoError(t, err)
				matrix, err := model.Simulate(20, 30, 1.0/252)
				require.NoError(t, err)
				return matrix
			}
			assert.Equal(t, run(), run())
		})
	}
}

func TestGBMZeroVolatilityIsDeterministicDrift(t *testing.T) {
	params := DefaultParameters()
	params.Volatility = 0
	params.Drift = 0.10

	model, err := NewModel(ModelGBM, 100, params, WithRand(rand.New(rand.NewSource(1))))
	require.NoError(t, err)

	const dt = 1.0 / 252
	matrix, err := model.Simulate(3, 10, dt)
	require.NoError(t, err)

	for _, row := range matrix {
		for t2 := 1; t2 <= 10; t2++ {
			want := 100 * math.Exp(0.10*dt*float64(t2))
			assert.InDelta(t, want, row[t2], 1e-9)
		}
	}
}

func TestHybridVolatilityFloorKeepsPathsMoving(t *testing.T) {
	// With base volatility 0 the clustering recursion would collapse to the
	// shock term alone; the floor keeps instantaneous vol at or above 0.05,
	// so paths still diffuse.
	params := DefaultParameters()
	params.Volatility = 0
	params.JumpIntensity = 0

	model, err := NewModel(ModelHybrid, 100, params, WithRand(rand.New(rand.NewSource(3))))
	require.NoError(t, err)

	matrix, err := model.Simulate(10, 40, 1.0/252)
	require.NoError(t, err)

	moved := false
	for _, row := range matrix {
		for t2 := 1; t2 < len(row); t2++ {
			if row[t2] != row[t2-1] {
				moved = true
			}
			assert.Greater(t, row[t2], 0.0)
		}
	}
	assert.True(t, moved, "floored volatility should still produce diffusion")
}

func TestJumpProbability(t *testing.T) {
	assert.InDelta(t, 0, jumpProbability(0, 1.0/252), 1e-12)
	assert.InDelta(t, 1-math.Exp(-10.0/252), jumpProbability(10, 1.0/252), 1e-12)
	// Bounded by 1 even for extreme intensities.
	assert.LessOrEqual(t, jumpProbability(1e6, 1), 1.0)
}

func TestSimulatePath(t *testing.T) {
	model, err := NewModel(ModelGBM, 100, DefaultParameters(),
		WithRand(rand.New(rand.NewSource(11))))
	require.NoError(t, err)

	t.Run("explicit initial price, no fallback", func(t *testing.T) {
		path, fallback, err := model.SimulatePath(250, 20, 1.0/252)
		require.NoError(t, err)
		assert.False(t, fallback)
		require.Len(t, path, 20)
		for _, price := range path {
			assert.Greater(t, price, 0.0)
		}
	})

	t.Run("model initial price untouched", func(t *testing.T) {
		_, _, err := model.SimulatePath(250, 5, 1.0/252)
		require.NoError(t, err)
		assert.Equal(t, 100.0, model.InitialPrice())
	})

	t.Run("invalid initial price", func(t *testing.T) {
		_, _, err := model.SimulatePath(0, 20, 1.0/252)
		assert.Error(t, err)
	})

	t.Run("invalid steps", func(t *testing.T) {
		_, _, err := model.SimulatePath(100, 0, 1.0/252)
		assert.Error(t, err)
	})
}

func TestOverridesApply(t *testing.T) {
	base := DefaultParameters()

	t.Run("empty overrides change nothing", func(t *testing.T) {
		assert.Equal(t, base, Overrides{}.Apply(base))
		assert.True(t, Overrides{}.IsEmpty())
	})

	t.Run("set fields win field-by-field", func(t *testing.T) {
		drift := 0.12
		sigma := 0.35
		o := Overrides{Drift: &drift, Volatility: &sigma}
		assert.False(t, o.IsEmpty())

		got := o.Apply(base)
		assert.Equal(t, 0.12, got.Drift)
		assert.Equal(t, 0.35, got.Volatility)
		assert.Equal(t, base.JumpIntensity, got.JumpIntensity)
		assert.Equal(t, base.VolClustering, got.VolClustering)
	})
}
