package calculation

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/rpgo/shortrate-visualizer/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vasicekRequest(seed int64) Request {
	return Request{
		Model:   domain.ModelVasicek,
		Vasicek: &domain.VasicekParams{A: 0.1, B: 0.05, Sigma: 0.02, R0: 0.05},
		Grid:    domain.SimulationGrid{Horizon: 2, Steps: 200, Paths: 50, Seed: &seed},
	}
}

func cirRequest(seed int64) Request {
	return Request{
		Model: domain.ModelCIR,
		CIR:   &domain.CIRParams{Kappa: 0.5, Theta: 0.03, Sigma: 0.05, R0: 0.02},
		Grid:  domain.SimulationGrid{Horizon: 5, Steps: 100, Paths: 20, Seed: &seed},
	}
}

func TestEngineRun_Vasicek(t *testing.T) {
	engine := NewEngine()
	res, err := engine.Run(context.Background(), vasicekRequest(42))
	require.NoError(t, err)

	assert.Equal(t, domain.ModelVasicek, res.Model)
	require.NotNil(t, res.Vasicek)
	assert.Nil(t, res.CIR)
	assert.Nil(t, res.FellerMet)

	// paths, analytic and sample curves share the grid
	assert.Equal(t, 201, res.Paths.NumPoints())
	assert.Equal(t, 201, res.Analytic.Len())
	assert.Equal(t, 201, res.Sample.Len())
	for i, tm := range res.Paths.Times {
		assert.Equal(t, tm, res.Analytic.Points[i].Time)
	}
	assert.NotEmpty(t, res.Terminal.Histogram)
	assert.LessOrEqual(t, len(res.Terminal.Histogram), domain.DefaultHistogramBins)

	direct, err := SimulateVasicek(*res.Vasicek, res.Grid)
	require.NoError(t, err)
	assert.Equal(t, direct, res.Paths)
}

func TestEngineRun_RecordsResolvedSeed(t *testing.T) {
	orig := seedFunc
	defer SetSeedFunc(orig)
	SetSeedFunc(func() int64 { return 1234 })

	req := vasicekRequest(0)
	req.Grid.Seed = nil
	res, err := NewEngine().Run(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, res.Grid.Seed)
	assert.Equal(t, int64(1234), *res.Grid.Seed)

	replay, err := NewEngine().Run(context.Background(), vasicekRequest(1234))
	require.NoError(t, err)
	assert.Equal(t, replay.Paths, res.Paths)
}

func TestEngineRun_CIRFellerWarning(t *testing.T) {
	var buf bytes.Buffer
	engine := NewEngine()
	engine.SetLogger(NewSlogLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))))

	req := cirRequest(1)
	req.CIR = &domain.CIRParams{Kappa: 0.1, Theta: 0.01, Sigma: 0.5, R0: 0.01}
	res, err := engine.Run(context.Background(), req)
	require.NoError(t, err)

	require.NotNil(t, res.FellerMet)
	assert.False(t, *res.FellerMet)
	assert.Contains(t, buf.String(), "Feller condition violated")
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Equal(t, 0.0, res.Terminal.NegativeShare)
}

func TestEngineRun_CIRFellerSatisfied(t *testing.T) {
	res, err := NewEngine().Run(context.Background(), cirRequest(2))
	require.NoError(t, err)
	require.NotNil(t, res.FellerMet)
	assert.True(t, *res.FellerMet)
	assert.Equal(t, 0.02, res.Analytic.Points[0].Mean)
}

func TestEngineRun_Validation(t *testing.T) {
	engine := NewEngine()

	_, err := engine.Run(context.Background(), Request{Model: "hull-white", Grid: domain.SimulationGrid{Horizon: 1, Steps: 1, Paths: 1}})
	assert.ErrorIs(t, err, domain.ErrUnknownModel)

	_, err = engine.Run(context.Background(), Request{Model: domain.ModelCIR, Grid: domain.SimulationGrid{Horizon: 1, Steps: 1, Paths: 1}})
	assert.ErrorIs(t, err, domain.ErrInvalidParameter)

	req := vasicekRequest(1)
	req.Grid.Paths = 0
	_, err = engine.Run(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrInvalidPaths)
}

func TestEngineRun_DivergentScheme(t *testing.T) {
	// a*dt = 1000 makes every step overshoot b by a growing factor
	req := Request{
		Model:   domain.ModelVasicek,
		Vasicek: &domain.VasicekParams{A: 1000, B: 0.03, Sigma: 0.01, R0: 0.05},
		Grid:    domain.SimulationGrid{Horizon: 200, Steps: 200, Paths: 5, Seed: seeded(1)},
	}
	var err error
	require.NotPanics(t, func() { _, err = NewEngine().Run(context.Background(), req) })
	require.ErrorIs(t, err, domain.ErrDiverged)
	assert.Contains(t, err.Error(), "reduce dt")

	_, err = NewEngine().Compare(context.Background(), vasicekRequest(1), req)
	assert.ErrorIs(t, err, domain.ErrDiverged)
}

func TestEngineRun_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewEngine().Run(ctx, vasicekRequest(1))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngineCompare(t *testing.T) {
	engine := NewEngine()
	results, err := engine.Compare(context.Background(), vasicekRequest(1), cirRequest(2), vasicekRequest(3))
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, domain.ModelVasicek, results[0].Model)
	assert.Equal(t, domain.ModelCIR, results[1].Model)
	assert.Equal(t, int64(3), *results[2].Grid.Seed)

	single, err := engine.Run(context.Background(), cirRequest(2))
	require.NoError(t, err)
	assert.Equal(t, single.Paths, results[1].Paths)
}

func TestEngineCompare_PropagatesError(t *testing.T) {
	bad := cirRequest(1)
	bad.Grid.Horizon = -1
	_, err := NewEngine().Compare(context.Background(), vasicekRequest(1), bad)
	assert.ErrorIs(t, err, domain.ErrInvalidHorizon)
	assert.Contains(t, err.Error(), "request 1 (cir)")
}

func TestEngineMoments(t *testing.T) {
	engine := NewEngine()
	mc, err := engine.Moments(cirRequest(1))
	require.NoError(t, err)
	assert.Equal(t, 101, mc.Len())

	_, err = engine.Moments(Request{Model: domain.ModelVasicek})
	assert.ErrorIs(t, err, domain.ErrInvalidParameter)
}

func TestRequestFromConfiguration(t *testing.T) {
	cfg := domain.ExampleConfiguration()
	req, err := RequestFromConfiguration(cfg)
	require.NoError(t, err)

	assert.Equal(t, domain.ModelVasicek, req.Model)
	assert.NotNil(t, req.Vasicek)
	assert.Nil(t, req.CIR)
	assert.Equal(t, 200, req.Grid.Steps)
	assert.Equal(t, 50, req.Grid.Paths)
	assert.Equal(t, domain.DefaultHistogramBins, req.HistogramBins)

	cfg.Model = "CIR"
	req, err = RequestFromConfiguration(cfg)
	require.NoError(t, err)
	assert.Equal(t, domain.ModelCIR, req.Model)
	assert.NotNil(t, req.CIR)
}

func TestSetLoggerNil(t *testing.T) {
	e := NewEngine()
	e.SetLogger(nil)
	assert.IsType(t, NopLogger{}, e.Logger)
}
