package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/rpgo/shortrate-visualizer/internal/calculation"
	"github.com/rpgo/shortrate-visualizer/internal/domain"
	"github.com/rpgo/shortrate-visualizer/internal/output"
)

// addModelFlags registers the model, parameter and grid flags shared by
// simulate, moments and compare. Unset parameters take the example defaults
// of the selected model.
func addModelFlags(fs *pflag.FlagSet) {
	fs.String("model", "vasicek", "short-rate model (vasicek, cir)")
	fs.Float64("a", 0, "Vasicek speed of mean reversion")
	fs.Float64("b", 0, "Vasicek long-run mean")
	fs.Float64("kappa", 0, "CIR speed of mean reversion")
	fs.Float64("theta", 0, "CIR long-run mean")
	fs.Float64("sigma", 0, "volatility")
	fs.Float64("r0", 0, "initial short rate")
	fs.Float64("horizon", 0, "time horizon T in years")
	fs.Int("steps", 0, "number of time steps N (overrides --dt)")
	fs.Float64("dt", 0, "time step size")
	fs.Int("paths", 0, "number of simulated paths M")
	fs.Int64("seed", 0, "random seed (omit for fresh entropy)")
	fs.Int("bins", domain.DefaultHistogramBins, "histogram bins for r(T)")
}

// configFromFlags builds a run configuration from the example defaults and
// the flags the user actually set.
func configFromFlags(fs *pflag.FlagSet) (*domain.Configuration, error) {
	cfg := domain.ExampleConfiguration()
	cfg.Grid.Seed = nil

	name, _ := fs.GetString("model")
	model, err := domain.ParseModel(name)
	if err != nil {
		return nil, err
	}
	cfg.Model = model

	setFloat := func(flag string, dst *float64) {
		if fs.Changed(flag) {
			*dst, _ = fs.GetFloat64(flag)
		}
	}
	switch model {
	case domain.ModelVasicek:
		setFloat("a", &cfg.Vasicek.A)
		setFloat("b", &cfg.Vasicek.B)
		setFloat("sigma", &cfg.Vasicek.Sigma)
		setFloat("r0", &cfg.Vasicek.R0)
	case domain.ModelCIR:
		setFloat("kappa", &cfg.CIR.Kappa)
		setFloat("theta", &cfg.CIR.Theta)
		setFloat("sigma", &cfg.CIR.Sigma)
		setFloat("r0", &cfg.CIR.R0)
	}

	setFloat("horizon", &cfg.Grid.Horizon)
	setFloat("dt", &cfg.Grid.Dt)
	if fs.Changed("steps") {
		cfg.Grid.Steps, _ = fs.GetInt("steps")
	}
	if fs.Changed("paths") {
		cfg.Grid.Paths, _ = fs.GetInt("paths")
	}
	if fs.Changed("seed") {
		seed, _ := fs.GetInt64("seed")
		cfg.Grid.Seed = &seed
	}
	cfg.Output.HistogramBins, _ = fs.GetInt("bins")
	return cfg, nil
}

// writeOutput writes data to path, or to the command's stdout when path is empty.
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", path)
	return nil
}

func newSimulateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Simulate short-rate paths",
		Example: `  ratesim simulate --model vasicek --a 0.5 --b 0.03 --sigma 0.01 --r0 0.05 --horizon 1 --steps 252 --paths 1 --seed 42
  ratesim simulate --model cir --paths 500 --format console`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFromFlags(cmd.Flags())
			if err != nil {
				return err
			}
			req, err := calculation.RequestFromConfiguration(cfg)
			if err != nil {
				return err
			}
			result, err := a.engine.Run(cmd.Context(), req)
			if err != nil {
				return err
			}

			format, _ := cmd.Flags().GetString("format")
			precision, _ := cmd.Flags().GetInt("precision")
			f := output.GetFormatterByName(format, output.Options{Precision: precision})
			if f == nil {
				return fmt.Errorf("%w: %q. Try one of: %s", output.ErrUnsupportedFormat, format, strings.Join(output.AvailableFormatterNames(), ", "))
			}
			data, err := f.Format(result)
			if err != nil {
				return err
			}
			out, _ := cmd.Flags().GetString("out")
			return writeOutput(cmd, out, data)
		},
	}
	addModelFlags(cmd.Flags())
	cmd.Flags().String("format", "csv", "output format (csv, moments-csv, json, console, html)")
	cmd.Flags().Int("precision", 0, "decimals in CSV output (0 = full precision)")
	cmd.Flags().StringP("out", "o", "", "output file (default: stdout)")
	return cmd
}

func newMomentsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "moments",
		Short: "Print the analytic mean and variance curve",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFromFlags(cmd.Flags())
			if err != nil {
				return err
			}
			req, err := calculation.RequestFromConfiguration(cfg)
			if err != nil {
				return err
			}
			curve, err := a.engine.Moments(req)
			if err != nil {
				return err
			}

			format, _ := cmd.Flags().GetString("format")
			precision, _ := cmd.Flags().GetInt("precision")
			var data []byte
			switch output.NormalizeFormatName(format) {
			case "csv", "moments-csv":
				data, err = output.MomentsCSV{Precision: precision}.FormatCurve(curve)
			case "json":
				data, err = json.MarshalIndent(curve, "", "  ")
			case "console":
				every, _ := cmd.Flags().GetInt("every")
				data = output.FormatMomentTable(curve, every)
			default:
				return fmt.Errorf("%w: %q. Try one of: csv, json, console", output.ErrUnsupportedFormat, format)
			}
			if err != nil {
				return err
			}
			out, _ := cmd.Flags().GetString("out")
			return writeOutput(cmd, out, data)
		},
	}
	addModelFlags(cmd.Flags())
	cmd.Flags().String("format", "console", "output format (csv, json, console)")
	cmd.Flags().Int("precision", 0, "decimals in CSV output (0 = full precision)")
	cmd.Flags().Int("every", 10, "print every n-th point in console format")
	cmd.Flags().StringP("out", "o", "", "output file (default: stdout)")
	return cmd
}

func newCompareCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Run Vasicek and CIR side by side on the same grid",
		Long: `Runs both models concurrently on the same grid and seed, using the example
parameters unless overridden by a run file, and prints a console summary for each.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var cfg *domain.Configuration
			if path, _ := cmd.Flags().GetString("config"); path != "" {
				loaded, err := loadRunFile(path)
				if err != nil {
					return err
				}
				cfg = loaded
			} else {
				cfg = domain.ExampleConfiguration()
			}
			if fs := cmd.Flags(); fs.Changed("seed") {
				seed, _ := fs.GetInt64("seed")
				cfg.Grid.Seed = &seed
			}
			if cfg.Vasicek == nil || cfg.CIR == nil {
				return fmt.Errorf("compare needs both vasicek and cir parameter blocks")
			}

			var reqs []calculation.Request
			for _, m := range []domain.Model{domain.ModelVasicek, domain.ModelCIR} {
				c := *cfg
				c.Model = m
				req, err := calculation.RequestFromConfiguration(&c)
				if err != nil {
					return err
				}
				reqs = append(reqs, req)
			}
			results, err := a.engine.Compare(cmd.Context(), reqs...)
			if err != nil {
				return err
			}
			for i, res := range results {
				if i > 0 {
					fmt.Fprintln(cmd.OutOrStdout())
				}
				data, err := output.ConsoleFormatter{}.Format(res)
				if err != nil {
					return err
				}
				if _, err := cmd.OutOrStdout().Write(data); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringP("config", "c", "", "run file providing both parameter blocks and the grid")
	cmd.Flags().Int64("seed", 0, "random seed shared by both runs")
	return cmd
}
