package calculation

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/rpgo/shortrate-visualizer/internal/domain"
)

// vasicekStep is r + a(b - r)dt + sigma sqrt(dt) Z.
func vasicekStep(p domain.VasicekParams) stepFunc {
	return func(r, dt, sqdt, z float64) float64 {
		return r + p.A*(p.B-r)*dt + p.Sigma*sqdt*z
	}
}

// VasicekPath simulates a single Vasicek path on the grid using rng.
// Grid.Paths and Grid.Seed are ignored. A nil rng is seeded from fresh entropy.
func VasicekPath(p domain.VasicekParams, g domain.SimulationGrid, rng *rand.Rand) ([]float64, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("vasicek parameters: %w", err)
	}
	if err := domain.ValidateHorizon(g.Horizon, g.Steps); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = newRand(seedFunc())
	}
	return eulerPath(p.R0, g, rng, vasicekStep(p)), nil
}

// SimulateVasicek produces Grid.Paths independent Euler-Maruyama paths of the
// Vasicek model. With a fixed Grid.Seed the output is bit-identical across calls.
func SimulateVasicek(p domain.VasicekParams, g domain.SimulationGrid) (*domain.PathSet, error) {
	return simulateVasicek(context.Background(), p, g, newRand(resolveSeed(g.Seed)))
}

func simulateVasicek(ctx context.Context, p domain.VasicekParams, g domain.SimulationGrid, rng *rand.Rand) (*domain.PathSet, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("vasicek parameters: %w", err)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return eulerPaths(ctx, p.R0, g, rng, vasicekStep(p))
}

// VasicekMoments returns the analytic mean and variance of r_t on the N+1
// point grid over [0, horizon].
//
//	E[r_t]   = b + (r0 - b) e^(-a t)
//	Var[r_t] = sigma^2/(2a) (1 - e^(-2 a t))   a != 0
//	Var[r_t] = sigma^2 t                        a == 0
func VasicekMoments(p domain.VasicekParams, horizon float64, steps int) (*domain.MomentCurve, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("vasicek parameters: %w", err)
	}
	if err := domain.ValidateHorizon(horizon, steps); err != nil {
		return nil, err
	}
	s2 := p.Sigma * p.Sigma
	mean := func(t float64) float64 {
		// r0 e^(-at) + b (1 - e^(-at)), exact at t = 0
		return p.R0*math.Exp(-p.A*t) + p.B*oneMinusExp(p.A*t)
	}
	variance := func(t float64) float64 {
		if p.A == 0 {
			return s2 * t
		}
		return s2 / (2 * p.A) * oneMinusExp(2*p.A*t)
	}
	return momentCurve(horizon, steps, mean, variance), nil
}
