package domain

import (
	"fmt"
	"math"
	"strings"
)

// Model identifies a one-factor short-rate model.
type Model string

const (
	ModelVasicek Model = "vasicek"
	ModelCIR     Model = "cir"
)

// ParseModel resolves a user supplied model name. "cox-ingersoll-ross" is accepted for CIR.
func ParseModel(name string) (Model, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "vasicek", "ou":
		return ModelVasicek, nil
	case "cir", "cox-ingersoll-ross":
		return ModelCIR, nil
	default:
		return "", fmt.Errorf("%w: %q (expected vasicek or cir)", ErrUnknownModel, name)
	}
}

// DisplayName returns the human readable model name used in reports.
func (m Model) DisplayName() string {
	switch m {
	case ModelVasicek:
		return "Vasicek"
	case ModelCIR:
		return "Cox-Ingersoll-Ross"
	default:
		return string(m)
	}
}

// VasicekParams holds the parameters of dr = a(b - r)dt + sigma dW.
type VasicekParams struct {
	A     float64 `yaml:"a" json:"a"`         // speed of mean reversion
	B     float64 `yaml:"b" json:"b"`         // long-run mean
	Sigma float64 `yaml:"sigma" json:"sigma"` // volatility
	R0    float64 `yaml:"r0" json:"r0"`       // initial short rate
}

// Validate checks the numeric preconditions of the Vasicek model.
func (p VasicekParams) Validate() error {
	if err := checkFinite(named{"a", p.A}, named{"b", p.B}, named{"sigma", p.Sigma}, named{"r0", p.R0}); err != nil {
		return err
	}
	if p.Sigma < 0 {
		return fmt.Errorf("%w: sigma=%v", ErrNegativeVolatility, p.Sigma)
	}
	return nil
}

// CIRParams holds the parameters of dr = kappa(theta - r)dt + sigma sqrt(r) dW.
type CIRParams struct {
	Kappa float64 `yaml:"kappa" json:"kappa"` // speed of mean reversion
	Theta float64 `yaml:"theta" json:"theta"` // long-run mean
	Sigma float64 `yaml:"sigma" json:"sigma"` // volatility
	R0    float64 `yaml:"r0" json:"r0"`       // initial short rate
}

// Validate checks the numeric preconditions of the CIR model.
// Violating the Feller condition is not an error.
func (p CIRParams) Validate() error {
	if err := checkFinite(named{"kappa", p.Kappa}, named{"theta", p.Theta}, named{"sigma", p.Sigma}, named{"r0", p.R0}); err != nil {
		return err
	}
	if p.Sigma < 0 {
		return fmt.Errorf("%w: sigma=%v", ErrNegativeVolatility, p.Sigma)
	}
	if p.Kappa <= 0 {
		return fmt.Errorf("%w: kappa must be positive, got %v", ErrInvalidParameter, p.Kappa)
	}
	if p.Theta < 0 {
		return fmt.Errorf("%w: theta cannot be negative, got %v", ErrInvalidParameter, p.Theta)
	}
	if p.R0 < 0 {
		return fmt.Errorf("%w: r0 cannot be negative, got %v", ErrInvalidParameter, p.R0)
	}
	return nil
}

// FellerSatisfied reports whether 2*kappa*theta >= sigma^2, under which the
// continuous-time process stays strictly positive.
func (p CIRParams) FellerSatisfied() bool {
	return 2*p.Kappa*p.Theta >= p.Sigma*p.Sigma
}

// FellerRatio returns 2*kappa*theta / sigma^2. Values >= 1 satisfy the condition.
func (p CIRParams) FellerRatio() float64 {
	if p.Sigma == 0 {
		return math.Inf(1)
	}
	return 2 * p.Kappa * p.Theta / (p.Sigma * p.Sigma)
}

type named struct {
	name  string
	value float64
}

func checkFinite(values ...named) error {
	for _, v := range values {
		if !isFinite(v.value) {
			return fmt.Errorf("%w: %s must be finite, got %v", ErrInvalidParameter, v.name, v.value)
		}
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
