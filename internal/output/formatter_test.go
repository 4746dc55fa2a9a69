package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpgo/shortrate-visualizer/internal/domain"
)

func TestNormalizeFormatName(t *testing.T) {
	assert.Equal(t, "csv", NormalizeFormatName("paths"))
	assert.Equal(t, "csv", NormalizeFormatName(" Paths-CSV "))
	assert.Equal(t, "moments-csv", NormalizeFormatName("analytic-csv"))
	assert.Equal(t, "console", NormalizeFormatName("text"))
	assert.Equal(t, "html", NormalizeFormatName("HTML"))
}

func TestGetFormatterByName(t *testing.T) {
	f := GetFormatterByName("paths", Options{Precision: 3})
	require.NotNil(t, f)
	assert.Equal(t, PathsCSV{Precision: 3}, f)
	assert.Nil(t, GetFormatterByName("pdf", Options{}))
	assert.Equal(t, []string{"console", "csv", "html", "json", "moments-csv"}, AvailableFormatterNames())
}

func TestResolveFormats(t *testing.T) {
	fs, err := ResolveFormats([]string{"csv", "all", "paths"}, Options{})
	require.NoError(t, err)
	assert.Len(t, fs, 5)
	assert.Equal(t, "csv", fs[0].Name())

	_, err = ResolveFormats([]string{"pdf"}, Options{})
	require.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.Contains(t, err.Error(), "moments-csv")
}

func TestPathsCSV(t *testing.T) {
	res := buildTestResult(t)
	out, err := PathsCSV{}.Format(res)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 6) // header + N+1 rows
	assert.Equal(t, []string{"t", "path_1", "path_2", "path_3"}, records[0])
	assert.Equal(t, []string{"0", "0.05", "0.05", "0.05"}, records[1])
	assert.Equal(t, "1", records[5][0])
}

func TestPathsCSV_Precision(t *testing.T) {
	res := buildTestResult(t)
	out, err := PathsCSV{Precision: 4}.Format(res)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	assert.Equal(t, "0.0000,0.0500,0.0500,0.0500", lines[1])
	assert.Equal(t, "0.2500", strings.Split(lines[2], ",")[0])
}

func TestMomentsCSV(t *testing.T) {
	res := buildTestResult(t)
	out, err := MomentsCSV{}.Format(res)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 6)
	assert.Equal(t, []string{"t", "analytic_mean", "analytic_variance", "analytic_plus_1sd", "analytic_minus_1sd"}, records[0])
	assert.Equal(t, []string{"0", "0.05", "0", "0.05", "0.05"}, records[1])
}

func TestCSV_MissingData(t *testing.T) {
	_, err := PathsCSV{}.Format(&domain.SimulationResult{})
	assert.Error(t, err)
	_, err = MomentsCSV{}.Format(nil)
	assert.Error(t, err)
}

func TestJSONFormatter(t *testing.T) {
	res := buildTestResult(t)
	out, err := JSONFormatter{}.Format(res)
	require.NoError(t, err)

	var decoded domain.SimulationResult
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, domain.ModelVasicek, decoded.Model)
	require.NotNil(t, decoded.Grid.Seed)
	assert.Equal(t, int64(7), *decoded.Grid.Seed)
	assert.Equal(t, 3, decoded.Paths.NumPaths())
}

func TestConsoleFormatter(t *testing.T) {
	res := buildTestResult(t)
	out, err := ConsoleFormatter{}.Format(res)
	require.NoError(t, err)
	content := string(out)
	assert.Contains(t, content, "VASICEK SHORT-RATE SIMULATION")
	assert.Regexp(t, `r0\s+5\.000%`, content)
	assert.Contains(t, content, "seed=7")
	assert.Contains(t, content, "Median")
	assert.NotContains(t, content, "Feller")
}

func TestConsoleFormatter_FellerViolation(t *testing.T) {
	res := buildCIRResult(t, domain.CIRParams{Kappa: 0.1, Theta: 0.01, Sigma: 0.2, R0: 0.01})
	out, err := ConsoleFormatter{}.Format(res)
	require.NoError(t, err)
	assert.Contains(t, string(out), "Feller condition: VIOLATED")
}

func TestHTMLFormatter(t *testing.T) {
	res := buildTestResult(t)
	out, err := HTMLFormatter{}.Format(res)
	require.NoError(t, err)
	content := string(out)
	assert.Contains(t, content, "<title>Vasicek short-rate simulation</title>")
	assert.Contains(t, content, `<canvas id="paths">`)
	assert.Contains(t, content, `"hist_counts"`)
	assert.NotContains(t, content, `name="kappa"`)
	assert.NotContains(t, content, "Feller condition violated")
}

func TestRenderPage_Interactive(t *testing.T) {
	page := NewPage(nil)
	page.Interactive = true
	page.Form = FormValues{Model: "cir", Kappa: "0.5"}
	page.Error = "sigma must be >= 0 <b>"

	var buf bytes.Buffer
	require.NoError(t, RenderPage(&buf, page))
	content := buf.String()
	assert.Contains(t, content, `name="kappa" value="0.5"`)
	assert.Contains(t, content, `<option value="cir" selected>`)
	assert.Contains(t, content, "sigma must be &gt;= 0 &lt;b&gt;")
	assert.NotContains(t, content, "<canvas")
}

func TestRenderPage_FellerWarning(t *testing.T) {
	res := buildCIRResult(t, domain.CIRParams{Kappa: 0.1, Theta: 0.01, Sigma: 0.2, R0: 0.01})
	page := NewPage(res)
	assert.True(t, page.FellerViolated)
	var buf bytes.Buffer
	require.NoError(t, RenderPage(&buf, page))
	assert.Contains(t, buf.String(), "Feller condition violated")
}

func TestNewChartData_CapsPaths(t *testing.T) {
	res := buildTestResult(t)
	cd := newChartData(res)
	assert.Len(t, cd.Paths, 3)
	assert.Len(t, cd.Mean, 5)
	assert.Len(t, cd.Upper, 5)
	assert.Len(t, cd.SampleMean, 5)
	assert.Equal(t, len(res.Terminal.Histogram), len(cd.HistCounts))
}

func TestFormatMomentTable(t *testing.T) {
	res := buildTestResult(t)
	out := string(FormatMomentTable(res.Analytic, 2))
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4) // header + t=0, t=0.5, t=1
	assert.Contains(t, lines[1], "5.000%")
	assert.True(t, strings.HasPrefix(strings.TrimSpace(lines[3]), "1.0000"))
	assert.Empty(t, FormatMomentTable(nil, 1))
}
