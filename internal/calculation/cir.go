package calculation

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/rpgo/shortrate-visualizer/internal/domain"
)

// cirStep is the full-truncation Euler step: the diffusion uses max(r, 0) and
// the updated rate is floored at zero.
func cirStep(p domain.CIRParams) stepFunc {
	return func(r, dt, sqdt, z float64) float64 {
		rp := math.Max(r, 0)
		next := r + p.Kappa*(p.Theta-r)*dt + p.Sigma*math.Sqrt(rp)*sqdt*z
		return math.Max(next, 0)
	}
}

// CIRPath simulates a single CIR path on the grid using rng.
// Grid.Paths and Grid.Seed are ignored. A nil rng is seeded from fresh entropy.
func CIRPath(p domain.CIRParams, g domain.SimulationGrid, rng *rand.Rand) ([]float64, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("cir parameters: %w", err)
	}
	if err := domain.ValidateHorizon(g.Horizon, g.Steps); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = newRand(seedFunc())
	}
	return eulerPath(p.R0, g, rng, cirStep(p)), nil
}

// SimulateCIR produces Grid.Paths independent paths of the CIR model using
// the full-truncation Euler scheme. Paths never go below zero, including when
// the Feller condition is violated.
func SimulateCIR(p domain.CIRParams, g domain.SimulationGrid) (*domain.PathSet, error) {
	return simulateCIR(context.Background(), p, g, newRand(resolveSeed(g.Seed)))
}

func simulateCIR(ctx context.Context, p domain.CIRParams, g domain.SimulationGrid, rng *rand.Rand) (*domain.PathSet, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("cir parameters: %w", err)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return eulerPaths(ctx, p.R0, g, rng, cirStep(p))
}

// CIRMoments returns the closed-form CIR mean and variance on the N+1 point
// grid over [0, horizon].
//
//	E[r_t]   = theta + (r0 - theta) e^(-kappa t)
//	Var[r_t] = r0 sigma^2/kappa (e^(-kappa t) - e^(-2 kappa t))
//	         + theta sigma^2/(2 kappa) (1 - e^(-kappa t))^2
func CIRMoments(p domain.CIRParams, horizon float64, steps int) (*domain.MomentCurve, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("cir parameters: %w", err)
	}
	if err := domain.ValidateHorizon(horizon, steps); err != nil {
		return nil, err
	}
	s2 := p.Sigma * p.Sigma
	mean := func(t float64) float64 {
		return p.R0*math.Exp(-p.Kappa*t) + p.Theta*oneMinusExp(p.Kappa*t)
	}
	variance := func(t float64) float64 {
		e := math.Exp(-p.Kappa * t)
		oneMinus := oneMinusExp(p.Kappa * t)
		return p.R0*(s2/p.Kappa)*e*oneMinus + p.Theta*(s2/(2*p.Kappa))*oneMinus*oneMinus
	}
	return momentCurve(horizon, steps, mean, variance), nil
}
