package output

import (
	"archive/zip"
	"fmt"
	"io"
	"time"

	"github.com/rpgo/shortrate-visualizer/internal/config"
	"github.com/rpgo/shortrate-visualizer/internal/domain"
)

// BundleEntries lists the files of a ZIP bundle in archive order.
var BundleEntries = []string{"paths.csv", "moments.csv", "report.html", "result.json", "run.yaml"}

// WriteBundle writes every artifact of a run plus the run file that
// reproduces it into a single ZIP archive. When run is nil the run file is
// derived from the result.
func WriteBundle(w io.Writer, result *domain.SimulationResult, run *domain.Configuration, opts Options) error {
	if result == nil {
		return fmt.Errorf("no result to bundle")
	}
	if run == nil {
		run = RunFile(result, opts)
	}
	runYAML, err := config.MarshalConfiguration(run)
	if err != nil {
		return fmt.Errorf("failed to marshal run file: %w", err)
	}

	render := map[string]func() ([]byte, error){
		"paths.csv":   func() ([]byte, error) { return PathsCSV{Precision: opts.Precision}.Format(result) },
		"moments.csv": func() ([]byte, error) { return MomentsCSV{Precision: opts.Precision}.Format(result) },
		"report.html": func() ([]byte, error) { return HTMLFormatter{}.Format(result) },
		"result.json": func() ([]byte, error) { return JSONFormatter{}.Format(result) },
		"run.yaml":    func() ([]byte, error) { return runYAML, nil },
	}

	zw := zip.NewWriter(w)
	now := time.Now()
	for _, name := range BundleEntries {
		data, err := render[name]()
		if err != nil {
			return fmt.Errorf("bundle %s: %w", name, err)
		}
		fw, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: now})
		if err != nil {
			return err
		}
		if _, err := fw.Write(data); err != nil {
			return err
		}
	}
	return zw.Close()
}

// RunFile rebuilds the run file of a finished simulation. The resolved seed
// is recorded so the bundle replays exactly.
func RunFile(result *domain.SimulationResult, opts Options) *domain.Configuration {
	return &domain.Configuration{
		Model:   result.Model,
		Vasicek: result.Vasicek,
		CIR:     result.CIR,
		Grid: domain.GridSettings{
			Horizon: result.Grid.Horizon,
			Steps:   result.Grid.Steps,
			Paths:   result.Grid.Paths,
			Seed:    result.Grid.Seed,
		},
		Output: domain.OutputSettings{
			Formats:       []string{"csv", "moments-csv", "html"},
			Precision:     opts.Precision,
			HistogramBins: opts.HistogramBins,
		},
	}
}
