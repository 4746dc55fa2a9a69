// ratesim simulates and visualizes one-factor short-rate models (Vasicek and
// Cox-Ingersoll-Ross).
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/rpgo/shortrate-visualizer/internal/calculation"
	"github.com/rpgo/shortrate-visualizer/internal/config"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app carries what PersistentPreRunE prepares for the subcommands.
type app struct {
	settings *config.Settings
	logger   *slog.Logger
	engine   *calculation.Engine
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "ratesim",
		Short: "Short-rate model simulator and visualizer",
		Long: `ratesim simulates Vasicek and Cox-Ingersoll-Ross short-rate paths with the
Euler-Maruyama scheme, overlays the closed-form mean and variance, and exports
the results as CSV, JSON, HTML or a ZIP bundle. "ratesim serve" starts the
interactive visualizer.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().String("settings", "", "settings file (default: ./ratesim.yaml or ~/.ratesim/ratesim.yaml)")
	root.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")
	root.PersistentFlags().String("log-format", "", "log format override (text, json)")

	root.AddCommand(
		newSimulateCmd(a),
		newMomentsCmd(a),
		newCompareCmd(a),
		newReportCmd(a),
		newServeCmd(a),
		newInitCmd(),
		newVersionCmd(),
	)
	return root
}

// setup loads settings, applies flag overrides and builds the logger and engine.
func (a *app) setup(cmd *cobra.Command) error {
	var err error
	settingsFile, _ := cmd.Flags().GetString("settings")
	if settingsFile != "" {
		a.settings, err = config.LoadSettingsFromFile(settingsFile)
	} else {
		a.settings, err = config.LoadSettings()
	}
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		a.settings.Logging.Level = lvl
	}
	if format, _ := cmd.Flags().GetString("log-format"); format != "" {
		a.settings.Logging.Format = format
	}
	a.logger, err = a.settings.Logging.NewLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	a.engine = calculation.NewEngine()
	a.engine.SetLogger(calculation.NewSlogLogger(a.logger))
	return nil
}
