package calculation

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/rpgo/shortrate-visualizer/internal/domain"
)

// stepFunc advances the rate by one Euler-Maruyama step given the step size,
// its square root and a standard normal draw.
type stepFunc func(r, dt, sqdt, z float64) float64

// eulerPath fills one path of N+1 points starting at r0.
func eulerPath(r0 float64, g domain.SimulationGrid, rng *rand.Rand, step stepFunc) []float64 {
	dt := g.Dt()
	sqdt := math.Sqrt(dt)
	r := make([]float64, g.Steps+1)
	r[0] = r0
	for i := 1; i <= g.Steps; i++ {
		r[i] = step(r[i-1], dt, sqdt, rng.NormFloat64())
	}
	return r
}

// eulerPaths draws M paths sequentially from one generator, path after path,
// so a fixed seed always consumes draws in the same order. A path that leaves
// the finite range fails the run with ErrDiverged.
func eulerPaths(ctx context.Context, r0 float64, g domain.SimulationGrid, rng *rand.Rand, step stepFunc) (*domain.PathSet, error) {
	ps := &domain.PathSet{
		Times: g.Times(),
		Paths: make([][]float64, g.Paths),
	}
	for j := 0; j < g.Paths; j++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ps.Paths[j] = eulerPath(r0, g, rng, step)
		if i := firstNonFinite(ps.Paths[j]); i >= 0 {
			return nil, fmt.Errorf("%w: path %d reached %v at t=%g; reduce dt (currently %g) or the mean-reversion speed",
				domain.ErrDiverged, j, ps.Paths[j][i], ps.Times[i], g.Dt())
		}
	}
	return ps, nil
}

// firstNonFinite returns the index of the first NaN or infinite value, or -1.
func firstNonFinite(path []float64) int {
	for i, v := range path {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return i
		}
	}
	return -1
}

// momentCurve evaluates mean/variance functions on the N+1 point grid.
func momentCurve(horizon float64, steps int, mean, variance func(t float64) float64) *domain.MomentCurve {
	times := domain.TimeGrid(horizon, steps)
	mc := &domain.MomentCurve{Points: make([]domain.MomentPoint, len(times))}
	for i, t := range times {
		mc.Points[i] = domain.MomentPoint{Time: t, Mean: mean(t), Variance: variance(t)}
	}
	return mc
}

// oneMinusExp returns 1 - e^(-x), accurate for small x and exactly +0 at x = 0.
func oneMinusExp(x float64) float64 {
	if x == 0 {
		return 0
	}
	return -math.Expm1(-x)
}
