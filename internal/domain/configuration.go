package domain

import "fmt"

// Configuration is the run file: one model, its parameters, the grid and
// output preferences.
type Configuration struct {
	Model   Model          `yaml:"model" json:"model"`
	Vasicek *VasicekParams `yaml:"vasicek,omitempty" json:"vasicek,omitempty"`
	CIR     *CIRParams     `yaml:"cir,omitempty" json:"cir,omitempty"`
	Grid    GridSettings   `yaml:"grid" json:"grid"`
	Output  OutputSettings `yaml:"output" json:"output"`
}

// GridSettings is the user-facing grid description. Exactly one of Steps or
// Dt should be set; Steps wins when both are.
type GridSettings struct {
	Horizon float64 `yaml:"horizon" json:"horizon"`
	Steps   int     `yaml:"steps,omitempty" json:"steps,omitempty"`
	Dt      float64 `yaml:"dt,omitempty" json:"dt,omitempty"`
	Paths   int     `yaml:"paths" json:"paths"`
	Seed    *int64  `yaml:"seed,omitempty" json:"seed,omitempty"`
}

// ToGrid resolves the settings into a SimulationGrid.
func (gs GridSettings) ToGrid() (SimulationGrid, error) {
	if gs.Steps == 0 && gs.Dt > 0 {
		return GridFromStepSize(gs.Horizon, gs.Dt, gs.Paths, gs.Seed)
	}
	g := SimulationGrid{Horizon: gs.Horizon, Steps: gs.Steps, Paths: gs.Paths, Seed: gs.Seed}
	if err := g.Validate(); err != nil {
		return SimulationGrid{}, err
	}
	return g, nil
}

// OutputSettings controls exported artifacts.
type OutputSettings struct {
	Directory     string   `yaml:"directory,omitempty" json:"directory,omitempty"`
	Formats       []string `yaml:"formats,omitempty" json:"formats,omitempty"`
	Precision     int      `yaml:"precision,omitempty" json:"precision,omitempty"` // decimals in CSV; 0 keeps full precision
	HistogramBins int      `yaml:"histogram_bins,omitempty" json:"histogram_bins,omitempty"`
}

// DefaultHistogramBins matches the bin cap of the terminal-rate histogram.
const DefaultHistogramBins = 40

// Bins returns the configured histogram bin count or the default.
func (o OutputSettings) Bins() int {
	if o.HistogramBins > 0 {
		return o.HistogramBins
	}
	return DefaultHistogramBins
}

// ValidateModel checks that the parameter block for the selected model is
// present and valid.
func (c *Configuration) ValidateModel() error {
	model, err := ParseModel(string(c.Model))
	if err != nil {
		return err
	}
	c.Model = model
	switch model {
	case ModelVasicek:
		if c.Vasicek == nil {
			return fmt.Errorf("vasicek parameters are required for model %q", model)
		}
		return c.Vasicek.Validate()
	case ModelCIR:
		if c.CIR == nil {
			return fmt.Errorf("cir parameters are required for model %q", model)
		}
		return c.CIR.Validate()
	}
	return nil
}

// ExampleConfiguration returns the defaults of the interactive visualizer.
func ExampleConfiguration() *Configuration {
	seed := int64(42)
	return &Configuration{
		Model:   ModelVasicek,
		Vasicek: &VasicekParams{A: 0.10, B: 0.05, Sigma: 0.02, R0: 0.05},
		CIR:     &CIRParams{Kappa: 0.5, Theta: 0.03, Sigma: 0.05, R0: 0.02},
		Grid:    GridSettings{Horizon: 2.0, Dt: 0.01, Paths: 50, Seed: &seed},
		Output: OutputSettings{
			Directory:     "out",
			Formats:       []string{"csv", "moments-csv", "html"},
			HistogramBins: DefaultHistogramBins,
		},
	}
}
