package output

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"

	"github.com/rpgo/shortrate-visualizer/internal/domain"
)

// maxChartPaths caps the paths drawn in the browser; exports keep all of them.
const maxChartPaths = 200

// previewRows and previewPaths bound the preview table.
const (
	previewRows  = 10
	previewPaths = 10
)

// HTMLFormatter produces a self-contained HTML report.
type HTMLFormatter struct{}

func (h HTMLFormatter) Name() string      { return "html" }
func (h HTMLFormatter) Extension() string { return "html" }

//go:embed templates/report.html.tmpl
var htmlTemplateSource string

var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"pct": FormatRate,
	"json": func(v any) (template.JS, error) {
		b, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return template.JS(b), nil
	},
}).Parse(htmlTemplateSource))

func (h HTMLFormatter) Format(result *domain.SimulationResult) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("no result to format")
	}
	var buf bytes.Buffer
	if err := RenderPage(&buf, NewPage(result)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Page is the template data for both the static report and the interactive
// visualizer served over HTTP.
type Page struct {
	Title          string
	Result         *domain.SimulationResult
	FellerViolated bool
	Parameters     []Row
	Summary        []Row
	Chart          ChartData
	Preview        Preview
	Interactive    bool
	Form           FormValues
	Error          string
	Query          template.URL // encoded run parameters for download links
}

// ChartData is serialized to JSON for chart.js.
type ChartData struct {
	Times      []float64   `json:"times"`
	Paths      [][]float64 `json:"paths"`
	Mean       []float64   `json:"mean"`
	Upper      []float64   `json:"upper"`
	Lower      []float64   `json:"lower"`
	SampleMean []float64   `json:"sample_mean"`
	HistLabels []string    `json:"hist_labels"`
	HistCounts []int       `json:"hist_counts"`
}

// Preview is the head of the paths table.
type Preview struct {
	Header []string
	Rows   [][]string
}

// FormValues echoes the sidebar inputs of the interactive page.
type FormValues struct {
	Model   string
	A       string
	B       string
	SigmaV  string
	R0V     string
	Kappa   string
	Theta   string
	SigmaC  string
	R0C     string
	Horizon string
	Dt      string
	Paths   string
	Seed    string
	UseSeed bool
}

// NewPage builds the report data for a result. A nil result yields an empty
// page that only shows the form.
func NewPage(result *domain.SimulationResult) *Page {
	page := &Page{Title: "Short-Rate Model Visualizer"}
	if result == nil {
		return page
	}
	page.Result = result
	page.Title = result.Model.DisplayName() + " short-rate simulation"
	page.FellerViolated = result.FellerMet != nil && !*result.FellerMet
	page.Parameters = ParameterRows(result)
	page.Summary = SummaryRows(result)
	page.Chart = newChartData(result)
	page.Preview = newPreview(result.Paths)
	return page
}

// RenderPage executes the report template.
func RenderPage(w io.Writer, page *Page) error {
	return htmlTemplate.Execute(w, page)
}

func newChartData(result *domain.SimulationResult) ChartData {
	var cd ChartData
	if ps := result.Paths; ps != nil {
		cd.Times = ps.Times
		n := min(ps.NumPaths(), maxChartPaths)
		cd.Paths = ps.Paths[:n]
	}
	if mc := result.Analytic; mc != nil {
		cd.Mean = make([]float64, mc.Len())
		for i, p := range mc.Points {
			cd.Mean[i] = p.Mean
		}
		cd.Lower, cd.Upper = mc.Band(1)
	}
	if sm := result.Sample; sm != nil {
		cd.SampleMean = make([]float64, sm.Len())
		for i, p := range sm.Points {
			cd.SampleMean[i] = p.Mean
		}
	}
	for _, b := range result.Terminal.Histogram {
		cd.HistLabels = append(cd.HistLabels, FormatRate((b.Lower+b.Upper)/2))
		cd.HistCounts = append(cd.HistCounts, b.Count)
	}
	return cd
}

func newPreview(ps *domain.PathSet) Preview {
	var pv Preview
	if ps == nil {
		return pv
	}
	cols := min(ps.NumPaths(), previewPaths)
	pv.Header = append(pv.Header, "t")
	for j := 0; j < cols; j++ {
		pv.Header = append(pv.Header, fmt.Sprintf("path_%d", j+1))
	}
	rows := min(ps.NumPoints(), previewRows)
	for i := 0; i < rows; i++ {
		row := make([]string, 0, cols+1)
		row = append(row, formatFloat(ps.Times[i], 4))
		for j := 0; j < cols; j++ {
			row = append(row, formatFloat(ps.Paths[j][i], 6))
		}
		pv.Rows = append(pv.Rows, row)
	}
	return pv
}
