package domain

import (
	"fmt"
	"math"
)

// SimulationGrid describes the time discretization and path count of a run.
// A nil Seed means fresh entropy is drawn for every run.
type SimulationGrid struct {
	Horizon float64 `yaml:"horizon" json:"horizon"` // T in years
	Steps   int     `yaml:"steps" json:"steps"`     // N
	Paths   int     `yaml:"paths" json:"paths"`     // M
	Seed    *int64  `yaml:"seed,omitempty" json:"seed,omitempty"`
}

// MaxGridSteps bounds the step count derived from a step size.
const MaxGridSteps = math.MaxInt32

// GridFromStepSize builds a grid from a step size instead of a step count,
// using ceil(T/dt) steps so the grid still ends exactly at T. A dt larger than
// T gives a single step.
func GridFromStepSize(horizon, dt float64, paths int, seed *int64) (SimulationGrid, error) {
	if !isFinite(dt) || dt <= 0 {
		return SimulationGrid{}, fmt.Errorf("%w: dt must be positive, got %v", ErrInvalidSteps, dt)
	}
	if !isFinite(horizon) || horizon <= 0 {
		return SimulationGrid{}, fmt.Errorf("%w: T=%v", ErrInvalidHorizon, horizon)
	}
	n := math.Ceil(horizon/dt - 1e-9)
	if n > MaxGridSteps {
		return SimulationGrid{}, fmt.Errorf("%w: T/dt=%g exceeds %d steps", ErrInvalidSteps, horizon/dt, MaxGridSteps)
	}
	steps := int(n)
	if steps < 1 {
		steps = 1
	}
	return SimulationGrid{Horizon: horizon, Steps: steps, Paths: paths, Seed: seed}, nil
}

// Validate checks T > 0, N >= 1 and M >= 1.
func (g SimulationGrid) Validate() error {
	if err := ValidateHorizon(g.Horizon, g.Steps); err != nil {
		return err
	}
	if g.Paths < 1 {
		return fmt.Errorf("%w: M=%d", ErrInvalidPaths, g.Paths)
	}
	return nil
}

// ValidateHorizon checks the time axis shared by paths and moment curves.
func ValidateHorizon(horizon float64, steps int) error {
	if !isFinite(horizon) || horizon <= 0 {
		return fmt.Errorf("%w: T=%v", ErrInvalidHorizon, horizon)
	}
	if steps < 1 {
		return fmt.Errorf("%w: N=%d", ErrInvalidSteps, steps)
	}
	return nil
}

// Dt returns the step size T/N.
func (g SimulationGrid) Dt() float64 {
	return g.Horizon / float64(g.Steps)
}

// Times returns the N+1 grid points from 0 to T inclusive.
func (g SimulationGrid) Times() []float64 {
	return TimeGrid(g.Horizon, g.Steps)
}

// TimeGrid returns steps+1 equally spaced points from 0 to horizon. The last
// point is pinned to horizon so it does not drift by accumulated rounding.
func TimeGrid(horizon float64, steps int) []float64 {
	times := make([]float64, steps+1)
	dt := horizon / float64(steps)
	for i := range times {
		times[i] = float64(i) * dt
	}
	times[steps] = horizon
	return times
}

// WithSeed returns a copy of the grid using the given seed.
func (g SimulationGrid) WithSeed(seed int64) SimulationGrid {
	g.Seed = &seed
	return g
}
