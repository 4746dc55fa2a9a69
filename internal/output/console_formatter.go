package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/rpgo/shortrate-visualizer/internal/domain"
	"github.com/rpgo/shortrate-visualizer/pkg/rate"
)

// ConsoleFormatter provides a plain-text run summary via the formatter interface.
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string      { return "console" }
func (c ConsoleFormatter) Extension() string { return "txt" }

func (c ConsoleFormatter) Format(result *domain.SimulationResult) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("no result to format")
	}
	var buf bytes.Buffer
	title := strings.ToUpper(result.Model.DisplayName()) + " SHORT-RATE SIMULATION"
	fmt.Fprintln(&buf, title)
	fmt.Fprintln(&buf, strings.Repeat("=", len(title)))

	fmt.Fprintln(&buf, "Parameters:")
	for _, row := range ParameterRows(result) {
		fmt.Fprintf(&buf, "  %-16s %s\n", row.Label, row.Value)
	}
	g := result.Grid
	fmt.Fprintf(&buf, "Grid: T=%g years, N=%d steps (dt=%g), M=%d paths", g.Horizon, g.Steps, g.Dt(), g.Paths)
	if g.Seed != nil {
		fmt.Fprintf(&buf, ", seed=%d", *g.Seed)
	}
	fmt.Fprintln(&buf)
	if result.FellerMet != nil {
		if *result.FellerMet {
			fmt.Fprintln(&buf, "Feller condition: satisfied (2*kappa*theta >= sigma^2)")
		} else {
			fmt.Fprintln(&buf, "Feller condition: VIOLATED, paths may touch zero")
		}
	}

	fmt.Fprintln(&buf)
	fmt.Fprintln(&buf, "Terminal distribution r(T):")
	for _, row := range SummaryRows(result) {
		fmt.Fprintf(&buf, "  %-22s %s\n", row.Label, row.Value)
	}
	return buf.Bytes(), nil
}

// Row is a label/value pair shared by the console and HTML renderings.
type Row struct {
	Label string
	Value string
}

// ParameterRows lists the model parameters as display rows.
func ParameterRows(result *domain.SimulationResult) []Row {
	switch {
	case result.Vasicek != nil:
		p := result.Vasicek
		return []Row{
			{"a (speed)", fmt.Sprintf("%g", p.A)},
			{"b (long-run)", FormatRate(p.B)},
			{"sigma", FormatRate(p.Sigma)},
			{"r0", FormatRate(p.R0)},
		}
	case result.CIR != nil:
		p := result.CIR
		return []Row{
			{"kappa (speed)", fmt.Sprintf("%g", p.Kappa)},
			{"theta (long-run)", FormatRate(p.Theta)},
			{"sigma", FormatRate(p.Sigma)},
			{"r0", FormatRate(p.R0)},
		}
	}
	return nil
}

// SummaryRows compares the analytic and sampled moments at the horizon and
// lists the terminal percentiles.
func SummaryRows(result *domain.SimulationResult) []Row {
	ts := result.Terminal
	rows := make([]Row, 0, 14)
	if result.Analytic != nil && result.Analytic.Len() > 0 {
		last := result.Analytic.Points[result.Analytic.Len()-1]
		rows = append(rows,
			Row{"Analytic mean", FormatRate(last.Mean)},
			Row{"Simulated mean", FormatRate(ts.Mean)},
		)
		if rate.IsRepresentable(ts.Mean) && rate.IsRepresentable(last.Mean) {
			rows = append(rows, Row{"Mean gap", rate.Spread(rate.NewRate(ts.Mean), rate.NewRate(last.Mean))})
		}
		rows = append(rows,
			Row{"Analytic std dev", FormatRate(last.StdDev())},
			Row{"Simulated std dev", FormatRate(ts.StdDev)},
		)
	}
	rows = append(rows,
		Row{"Min", FormatRate(ts.Min)},
		Row{"P10", FormatRate(ts.Percentiles.P10)},
		Row{"P25", FormatRate(ts.Percentiles.P25)},
		Row{"Median", FormatRate(ts.Percentiles.P50)},
		Row{"P75", FormatRate(ts.Percentiles.P75)},
		Row{"P90", FormatRate(ts.Percentiles.P90)},
		Row{"Max", FormatRate(ts.Max)},
		Row{"Paths below zero", FormatShare(ts.NegativeShare)},
	)
	return rows
}

// FormatMomentTable renders an analytic curve as a text table, printing every
// n-th point plus the horizon.
func FormatMomentTable(mc *domain.MomentCurve, every int) []byte {
	var buf bytes.Buffer
	if mc == nil || mc.Len() == 0 {
		return buf.Bytes()
	}
	if every < 1 {
		every = 1
	}
	fmt.Fprintf(&buf, "%10s  %10s  %10s  %10s  %10s\n", "t", "mean", "std dev", "+1 sd", "-1 sd")
	lower, upper := mc.Band(1)
	last := mc.Len() - 1
	for i, p := range mc.Points {
		if i%every != 0 && i != last {
			continue
		}
		fmt.Fprintf(&buf, "%10.4f  %10s  %10s  %10s  %10s\n", p.Time, FormatRate(p.Mean), FormatRate(p.StdDev()), FormatRate(upper[i]), FormatRate(lower[i]))
	}
	return buf.Bytes()
}
