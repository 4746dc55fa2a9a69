package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides, e.g. RATESIM_SERVER_ADDR.
const EnvPrefix = "RATESIM"

// Settings holds application settings, as opposed to the per-run Configuration.
type Settings struct {
	Server  ServerSettings  `mapstructure:"server"  yaml:"server"`
	Logging LoggingSettings `mapstructure:"logging" yaml:"logging"`
	Output  OutputDefaults  `mapstructure:"output"  yaml:"output"`
}

// ServerSettings configures the interactive HTTP visualizer.
type ServerSettings struct {
	Addr        string   `mapstructure:"addr"         yaml:"addr"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
	MaxPaths    int      `mapstructure:"max_paths"    yaml:"max_paths"` // upper bound on M per request
	MaxSteps    int      `mapstructure:"max_steps"    yaml:"max_steps"` // upper bound on N per request
}

// LoggingSettings holds logging settings.
type LoggingSettings struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// OutputDefaults holds defaults for exported artifacts.
type OutputDefaults struct {
	Directory string `mapstructure:"directory" yaml:"directory"`
}

// LoadSettings reads settings from ./ratesim.yaml or ~/.ratesim/ratesim.yaml
// when present, then applies RATESIM_<SECTION>_<KEY> environment overrides.
func LoadSettings() (*Settings, error) {
	v := newViper()
	v.SetConfigName("ratesim")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath(filepath.Join(homeDir(), ".ratesim"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading settings file: %w", err)
		}
		// not found: defaults + env
	}
	return decodeSettings(v)
}

// LoadSettingsFromFile reads settings from a specific file path.
func LoadSettingsFromFile(path string) (*Settings, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading settings file %s: %w", path, err)
	}
	return decodeSettings(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decodeSettings(v *viper.Viper) (*Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("error unmarshaling settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// setDefaults sets defaults for all settings.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.max_paths", 500)
	v.SetDefault("server.max_steps", 10000)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("output.directory", "out")
}

// Validate checks the settings for values the server cannot work with.
func (s *Settings) Validate() error {
	if s.Server.MaxPaths < 1 {
		return fmt.Errorf("server.max_paths must be at least 1, got %d", s.Server.MaxPaths)
	}
	if s.Server.MaxSteps < 1 {
		return fmt.Errorf("server.max_steps must be at least 1, got %d", s.Server.MaxSteps)
	}
	switch strings.ToLower(s.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", s.Logging.Format)
	}
	if _, err := ParseLevel(s.Logging.Level); err != nil {
		return err
	}
	return nil
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
