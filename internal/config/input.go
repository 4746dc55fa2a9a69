package config

import (
	"fmt"
	"os"

	"github.com/rpgo/shortrate-visualizer/internal/domain"
	"gopkg.in/yaml.v3"
)

// InputParser handles parsing of run files
type InputParser struct{}

// NewInputParser creates a new input parser
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadFromFile loads a run configuration from a YAML (or JSON) file
func (ip *InputParser) LoadFromFile(filename string) (*domain.Configuration, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return ip.Parse(data)
}

// Parse decodes and validates a run configuration
func (ip *InputParser) Parse(data []byte) (*domain.Configuration, error) {
	var config domain.Configuration
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := ip.ValidateConfiguration(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// ValidateConfiguration validates the loaded configuration
func (ip *InputParser) ValidateConfiguration(config *domain.Configuration) error {
	if config.Model == "" {
		return fmt.Errorf("model is required")
	}

	// Normalizes the model name as a side effect
	if err := config.ValidateModel(); err != nil {
		return fmt.Errorf("model parameters: %w", err)
	}

	if err := ip.validateGrid(&config.Grid); err != nil {
		return fmt.Errorf("grid validation failed: %w", err)
	}

	if err := ip.validateOutput(&config.Output); err != nil {
		return fmt.Errorf("output validation failed: %w", err)
	}

	return nil
}

// validateGrid validates grid settings
func (ip *InputParser) validateGrid(grid *domain.GridSettings) error {
	if grid.Steps < 0 {
		return fmt.Errorf("%w: steps=%d", domain.ErrInvalidSteps, grid.Steps)
	}
	if grid.Dt < 0 {
		return fmt.Errorf("%w: dt=%v", domain.ErrInvalidSteps, grid.Dt)
	}
	if grid.Steps == 0 && grid.Dt == 0 {
		return fmt.Errorf("%w: either steps or dt must be set", domain.ErrInvalidSteps)
	}
	if _, err := grid.ToGrid(); err != nil {
		return err
	}
	return nil
}

// validateOutput validates output settings
func (ip *InputParser) validateOutput(output *domain.OutputSettings) error {
	if output.Precision < 0 || output.Precision > 17 {
		return fmt.Errorf("precision must be between 0 and 17, got %d", output.Precision)
	}
	if output.HistogramBins < 0 {
		return fmt.Errorf("histogram bins cannot be negative")
	}
	return nil
}

// SaveConfiguration writes a run configuration as YAML
func SaveConfiguration(config *domain.Configuration, filename string) error {
	b, err := MarshalConfiguration(config)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, b, 0644)
}

// MarshalConfiguration encodes a run configuration as YAML
func MarshalConfiguration(config *domain.Configuration) ([]byte, error) {
	b, err := yaml.Marshal(config)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal configuration: %w", err)
	}
	return b, nil
}
