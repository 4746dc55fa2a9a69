package output

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/rpgo/shortrate-visualizer/internal/domain"
)

// PathsCSV exports simulated paths: one row per time step, columns
// t, path_1 .. path_M.
type PathsCSV struct {
	Precision int
}

func (c PathsCSV) Name() string      { return "csv" }
func (c PathsCSV) Extension() string { return "csv" }

func (c PathsCSV) Format(result *domain.SimulationResult) ([]byte, error) {
	if result == nil || result.Paths == nil {
		return nil, fmt.Errorf("no simulated paths to export")
	}
	return c.FormatPaths(result.Paths)
}

// FormatPaths writes a PathSet without the surrounding result.
func (c PathsCSV) FormatPaths(ps *domain.PathSet) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	header := make([]string, 0, ps.NumPaths()+1)
	header = append(header, "t")
	for j := range ps.Paths {
		header = append(header, fmt.Sprintf("path_%d", j+1))
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	row := make([]string, ps.NumPaths()+1)
	for i, t := range ps.Times {
		row[0] = formatFloat(t, c.Precision)
		for j, path := range ps.Paths {
			row[j+1] = formatFloat(path[i], c.Precision)
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// MomentsCSV exports the analytic curve with the +/-1 standard deviation band.
type MomentsCSV struct {
	Precision int
}

func (c MomentsCSV) Name() string      { return "moments-csv" }
func (c MomentsCSV) Extension() string { return "csv" }

func (c MomentsCSV) Format(result *domain.SimulationResult) ([]byte, error) {
	if result == nil || result.Analytic == nil {
		return nil, fmt.Errorf("no analytic moments to export")
	}
	return c.FormatCurve(result.Analytic)
}

// FormatCurve writes a MomentCurve without the surrounding result.
func (c MomentsCSV) FormatCurve(mc *domain.MomentCurve) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{"t", "analytic_mean", "analytic_variance", "analytic_plus_1sd", "analytic_minus_1sd"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	lower, upper := mc.Band(1)
	for i, p := range mc.Points {
		row := []string{
			formatFloat(p.Time, c.Precision),
			formatFloat(p.Mean, c.Precision),
			formatFloat(p.Variance, c.Precision),
			formatFloat(upper[i], c.Precision),
			formatFloat(lower[i], c.Precision),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
