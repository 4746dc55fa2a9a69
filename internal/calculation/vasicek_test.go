package calculation

import (
	"math"
	"math/rand"
	"testing"

	"github.com/rpgo/shortrate-visualizer/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded(seed int64) *int64 { return &seed }

func TestSimulateVasicek_ShapeAndStart(t *testing.T) {
	p := domain.VasicekParams{A: 0.1, B: 0.05, Sigma: 0.02, R0: 0.04}
	g := domain.SimulationGrid{Horizon: 2, Steps: 200, Paths: 25, Seed: seeded(7)}

	ps, err := SimulateVasicek(p, g)
	require.NoError(t, err)

	assert.Equal(t, 25, ps.NumPaths())
	assert.Equal(t, 201, ps.NumPoints())
	assert.Equal(t, 0.0, ps.Times[0])
	assert.Equal(t, 2.0, ps.Times[200])
	for j, path := range ps.Paths {
		require.Len(t, path, 201, "path %d", j)
		assert.Equal(t, 0.04, path[0], "path %d must start at r0", j)
	}
}

func TestSimulateVasicek_StepByStepRecurrence(t *testing.T) {
	p := domain.VasicekParams{A: 0.5, B: 0.03, Sigma: 0.01, R0: 0.05}
	g := domain.SimulationGrid{Horizon: 1, Steps: 252, Paths: 1, Seed: seeded(42)}

	ps, err := SimulateVasicek(p, g)
	require.NoError(t, err)
	require.Len(t, ps.Paths, 1)

	path := ps.Paths[0]
	require.Len(t, path, 253)
	assert.Equal(t, 0.05, path[0])

	rng := rand.New(rand.NewSource(42))
	dt := 1.0 / 252
	prev := 0.05
	for i := 1; i < len(path); i++ {
		z := rng.NormFloat64()
		want := prev + p.A*(p.B-prev)*dt + p.Sigma*math.Sqrt(dt)*z
		assert.InDelta(t, want, path[i], 1e-15, "step %d", i)
		prev = path[i]
	}
}

func TestSimulateVasicek_Deterministic(t *testing.T) {
	p := domain.VasicekParams{A: 0.3, B: 0.04, Sigma: 0.015, R0: 0.02}
	g := domain.SimulationGrid{Horizon: 5, Steps: 100, Paths: 10, Seed: seeded(2024)}

	first, err := SimulateVasicek(p, g)
	require.NoError(t, err)
	second, err := SimulateVasicek(p, g)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSimulateVasicek_UnseededUsesSeedFunc(t *testing.T) {
	orig := seedFunc
	defer SetSeedFunc(orig)
	calls := 0
	SetSeedFunc(func() int64 { calls++; return 99 })

	p := domain.VasicekParams{A: 0.3, B: 0.04, Sigma: 0.015, R0: 0.02}
	g := domain.SimulationGrid{Horizon: 1, Steps: 10, Paths: 2}

	unseeded, err := SimulateVasicek(p, g)
	require.NoError(t, err)
	seededRun, err := SimulateVasicek(p, g.WithSeed(99))
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, seededRun, unseeded)
}

func TestPath_NilGeneratorUsesSeedFunc(t *testing.T) {
	orig := seedFunc
	defer SetSeedFunc(orig)
	SetSeedFunc(func() int64 { return 5 })

	g := domain.SimulationGrid{Horizon: 1, Steps: 12}

	vp := domain.VasicekParams{A: 0.3, B: 0.04, Sigma: 0.015, R0: 0.02}
	got, err := VasicekPath(vp, g, nil)
	require.NoError(t, err)
	want, err := VasicekPath(vp, g, rand.New(rand.NewSource(5)))
	require.NoError(t, err)
	assert.Equal(t, want, got)

	cp := domain.CIRParams{Kappa: 0.5, Theta: 0.03, Sigma: 0.05, R0: 0.02}
	got, err = CIRPath(cp, g, nil)
	require.NoError(t, err)
	want, err = CIRPath(cp, g, rand.New(rand.NewSource(5)))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSimulateVasicek_ZeroVolatilityIsDeterministicDecay(t *testing.T) {
	p := domain.VasicekParams{A: 1, B: 0.03, Sigma: 0, R0: 0.05}
	g := domain.SimulationGrid{Horizon: 1, Steps: 4, Paths: 3, Seed: seeded(1)}

	ps, err := SimulateVasicek(p, g)
	require.NoError(t, err)
	for _, path := range ps.Paths {
		assert.Equal(t, ps.Paths[0], path)
	}
	// r1 = 0.05 + 1*(0.03-0.05)*0.25
	assert.InDelta(t, 0.045, ps.Paths[0][1], 1e-15)
}

func TestSimulateVasicek_Validation(t *testing.T) {
	valid := domain.VasicekParams{A: 0.1, B: 0.05, Sigma: 0.02, R0: 0.05}
	grid := domain.SimulationGrid{Horizon: 1, Steps: 10, Paths: 1}

	tests := []struct {
		name    string
		params  domain.VasicekParams
		grid    domain.SimulationGrid
		wantErr error
	}{
		{"zero horizon", valid, domain.SimulationGrid{Horizon: 0, Steps: 10, Paths: 1}, domain.ErrInvalidHorizon},
		{"negative horizon", valid, domain.SimulationGrid{Horizon: -1, Steps: 10, Paths: 1}, domain.ErrInvalidHorizon},
		{"zero steps", valid, domain.SimulationGrid{Horizon: 1, Steps: 0, Paths: 1}, domain.ErrInvalidSteps},
		{"zero paths", valid, domain.SimulationGrid{Horizon: 1, Steps: 10, Paths: 0}, domain.ErrInvalidPaths},
		{"negative sigma", domain.VasicekParams{A: 0.1, B: 0.05, Sigma: -0.01, R0: 0.05}, grid, domain.ErrNegativeVolatility},
		{"nan r0", domain.VasicekParams{A: 0.1, B: 0.05, Sigma: 0.01, R0: math.NaN()}, grid, domain.ErrInvalidParameter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ps, err := SimulateVasicek(tt.params, tt.grid)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, ps)
		})
	}
}

func TestVasicekPath_MatchesMultiPathFirstPath(t *testing.T) {
	p := domain.VasicekParams{A: 0.2, B: 0.05, Sigma: 0.02, R0: 0.03}
	g := domain.SimulationGrid{Horizon: 1, Steps: 50, Paths: 3, Seed: seeded(11)}

	ps, err := SimulateVasicek(p, g)
	require.NoError(t, err)
	single, err := VasicekPath(p, g, rand.New(rand.NewSource(11)))
	require.NoError(t, err)

	assert.Equal(t, ps.Paths[0], single)
}

func TestVasicekMoments_Initial(t *testing.T) {
	p := domain.VasicekParams{A: 0.5, B: 0.03, Sigma: 0.01, R0: 0.05}
	mc, err := VasicekMoments(p, 1, 252)
	require.NoError(t, err)

	require.Equal(t, 253, mc.Len())
	assert.Equal(t, 0.0, mc.Points[0].Time)
	assert.Equal(t, 0.05, mc.Points[0].Mean)
	assert.Equal(t, 0.0, mc.Points[0].Variance)
	assert.Equal(t, 1.0, mc.Points[252].Time)
}

func TestVasicekMoments_Formulas(t *testing.T) {
	p := domain.VasicekParams{A: 0.5, B: 0.03, Sigma: 0.01, R0: 0.05}
	mc, err := VasicekMoments(p, 2, 8)
	require.NoError(t, err)

	for _, pt := range mc.Points {
		wantMean := p.B + (p.R0-p.B)*math.Exp(-p.A*pt.Time)
		wantVar := p.Sigma * p.Sigma / (2 * p.A) * (1 - math.Exp(-2*p.A*pt.Time))
		assert.InDelta(t, wantMean, pt.Mean, 1e-15, "t=%g", pt.Time)
		assert.InDelta(t, wantVar, pt.Variance, 1e-15, "t=%g", pt.Time)
	}
}

func TestVasicekMoments_LongRunMean(t *testing.T) {
	p := domain.VasicekParams{A: 0.5, B: 0.03, Sigma: 0.01, R0: 0.05}
	mc, err := VasicekMoments(p, 200, 100)
	require.NoError(t, err)

	last := mc.Points[mc.Len()-1]
	assert.InDelta(t, p.B, last.Mean, 1e-12)
	assert.InDelta(t, p.Sigma*p.Sigma/(2*p.A), last.Variance, 1e-12)
}

func TestVasicekMoments_ZeroReversionIsDiffusionLimit(t *testing.T) {
	p := domain.VasicekParams{A: 0, B: 0.03, Sigma: 0.02, R0: 0.05}
	mc, err := VasicekMoments(p, 3, 3)
	require.NoError(t, err)

	for _, pt := range mc.Points {
		assert.Equal(t, 0.05, pt.Mean)
		assert.InDelta(t, 0.0004*pt.Time, pt.Variance, 1e-15)
		assert.False(t, math.IsNaN(pt.Variance))
	}
}

func TestVasicekMoments_NegativeReversionHasPositiveVariance(t *testing.T) {
	p := domain.VasicekParams{A: -0.1, B: 0.03, Sigma: 0.02, R0: 0.05}
	mc, err := VasicekMoments(p, 5, 10)
	require.NoError(t, err)
	for _, pt := range mc.Points[1:] {
		assert.Greater(t, pt.Variance, 0.0)
	}
}

func TestVasicekMoments_Validation(t *testing.T) {
	p := domain.VasicekParams{A: 0.5, B: 0.03, Sigma: 0.01, R0: 0.05}

	_, err := VasicekMoments(p, 0, 10)
	assert.ErrorIs(t, err, domain.ErrInvalidHorizon)

	_, err = VasicekMoments(p, 1, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidSteps)

	p.Sigma = -1
	_, err = VasicekMoments(p, 1, 10)
	assert.ErrorIs(t, err, domain.ErrNegativeVolatility)
}
