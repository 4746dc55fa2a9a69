package output_test

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpgo/shortrate-visualizer/internal/calculation"
	"github.com/rpgo/shortrate-visualizer/internal/config"
	"github.com/rpgo/shortrate-visualizer/internal/domain"
	"github.com/rpgo/shortrate-visualizer/internal/output"
)

func runExample(t *testing.T) *domain.SimulationResult {
	t.Helper()
	cfg := domain.ExampleConfiguration()
	cfg.Grid.Paths = 5
	req, err := calculation.RequestFromConfiguration(cfg)
	require.NoError(t, err)
	res, err := calculation.NewEngine().Run(context.Background(), req)
	require.NoError(t, err)
	return res
}

func TestGenerateReport_All(t *testing.T) {
	res := runExample(t)
	dir := filepath.Join(t.TempDir(), "nested", "out")

	files, err := output.GenerateReport(res, dir, []string{"all"}, output.Options{Precision: 6})
	require.NoError(t, err)
	require.Len(t, files, 5)

	for _, name := range []string{"vasicek_paths.csv", "vasicek_moments.csv", "vasicek_report.html", "vasicek_result.json", "vasicek_summary.txt"} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Positive(t, info.Size(), name)
	}
}

func TestGenerateReport_UnknownFormat(t *testing.T) {
	res := runExample(t)
	dir := t.TempDir()
	_, err := output.GenerateReport(res, dir, []string{"csv", "xlsx"}, output.Options{})
	require.ErrorIs(t, err, output.ErrUnsupportedFormat)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "nothing is written when a format is unknown")
}

func TestWriteBundle(t *testing.T) {
	res := runExample(t)
	var buf bytes.Buffer
	require.NoError(t, output.WriteBundle(&buf, res, nil, output.Options{HistogramBins: 25}))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	var names []string
	contents := map[string][]byte{}
	for _, f := range zr.File {
		names = append(names, f.Name)
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		contents[f.Name] = data
	}
	assert.Equal(t, output.BundleEntries, names)

	// The bundled run file replays the exact run.
	run, err := config.NewInputParser().Parse(contents["run.yaml"])
	require.NoError(t, err)
	assert.Equal(t, 25, run.Output.HistogramBins)
	req, err := calculation.RequestFromConfiguration(run)
	require.NoError(t, err)
	replay, err := calculation.NewEngine().Run(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, res.Paths, replay.Paths)
}

func TestWriteBundle_NilResult(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, output.WriteBundle(&buf, nil, nil, output.Options{}))
}
