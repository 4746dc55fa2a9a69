package domain

import "errors"

// Validation errors returned by the simulators and moment calculators.
var (
	ErrInvalidHorizon     = errors.New("horizon must be positive and finite")
	ErrInvalidSteps       = errors.New("invalid step count")
	ErrInvalidPaths       = errors.New("path count must be at least 1")
	ErrNegativeVolatility = errors.New("volatility cannot be negative")
	ErrInvalidParameter   = errors.New("invalid model parameter")
	ErrUnknownModel       = errors.New("unknown short-rate model")
	ErrDiverged           = errors.New("euler scheme diverged")
)
