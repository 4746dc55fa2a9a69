package main

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rpgo/shortrate-visualizer/internal/calculation"
	"github.com/rpgo/shortrate-visualizer/internal/config"
	"github.com/rpgo/shortrate-visualizer/internal/domain"
	"github.com/rpgo/shortrate-visualizer/internal/output"
)

func loadRunFile(path string) (*domain.Configuration, error) {
	cfg, err := config.NewInputParser().LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load run file: %w", err)
	}
	return cfg, nil
}

func newReportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Run a YAML run file and write its artifacts",
		Example: `  ratesim init --out run.yaml
  ratesim report --config run.yaml --format all --zip`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			cfg, err := loadRunFile(path)
			if err != nil {
				return err
			}

			dir, _ := cmd.Flags().GetString("dir")
			if dir == "" {
				dir = cfg.Output.Directory
			}
			if dir == "" {
				dir = a.settings.Output.Directory
			}
			formats := cfg.Output.Formats
			if cmd.Flags().Changed("format") {
				formats, _ = cmd.Flags().GetStringSlice("format")
			}
			if len(formats) == 0 {
				formats = []string{"all"}
			}
			opts := output.OptionsFromSettings(cfg.Output)
			// Fail on unknown formats before simulating.
			if _, err := output.ResolveFormats(formats, opts); err != nil {
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

			files, err := output.GenerateReport(result, dir, formats, opts)
			if err != nil {
				return err
			}
			if zipped, _ := cmd.Flags().GetBool("zip"); zipped {
				// Record the resolved seed so the bundled run file replays this run.
				run := *cfg
				run.Grid.Seed = result.Grid.Seed
				var buf bytes.Buffer
				if err := output.WriteBundle(&buf, result, &run, opts); err != nil {
					return err
				}
				name := filepath.Join(dir, fmt.Sprintf("%s_bundle.zip", result.Model))
				if err := os.WriteFile(name, buf.Bytes(), 0644); err != nil {
					return err
				}
				files = append(files, name)
			}

			for _, f := range files {
				fmt.Fprintln(cmd.OutOrStdout(), f)
			}
			a.logger.Info("report written", "model", result.Model, "dir", dir, "files", len(files))
			return nil
		},
	}
	cmd.Flags().StringP("config", "c", "", "run file (YAML)")
	cmd.Flags().String("dir", "", "output directory (default: run file output.directory, then settings)")
	cmd.Flags().StringSlice("format", nil, "formats to write (all, csv, moments-csv, html, json, console)")
	cmd.Flags().Bool("zip", false, "also write a ZIP bundle with every artifact and the run file")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write an example run file",
		// Needs no settings.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			out, _ := cmd.Flags().GetString("out")
			force, _ := cmd.Flags().GetBool("force")
			if !force {
				if _, err := os.Stat(out); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", out)
				} else if !errors.Is(err, fs.ErrNotExist) {
					return err
				}
			}
			if err := config.SaveConfiguration(domain.ExampleConfiguration(), out); err != nil {
				return fmt.Errorf("failed to write run file: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringP("out", "o", "run.yaml", "path of the run file to create")
	cmd.Flags().Bool("force", false, "overwrite an existing file")
	return cmd
}
