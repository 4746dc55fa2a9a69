package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rpgo/shortrate-visualizer/internal/domain"
)

// artifactBase names the file each formatter writes.
var artifactBase = map[string]string{
	"csv":         "paths",
	"moments-csv": "moments",
	"html":        "report",
	"json":        "result",
	"console":     "summary",
}

// ArtifactName returns the file name for a formatter's output,
// e.g. "vasicek_paths.csv".
func ArtifactName(result *domain.SimulationResult, f Formatter) string {
	base, ok := artifactBase[f.Name()]
	if !ok {
		base = f.Name()
	}
	return fmt.Sprintf("%s_%s.%s", result.Model, base, f.Extension())
}

// WriteFormatted runs a formatter and writes its output into dir.
func WriteFormatted(f Formatter, result *domain.SimulationResult, dir string) (string, error) {
	data, err := f.Format(result)
	if err != nil {
		return "", fmt.Errorf("%s formatter: %w", f.Name(), err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	filename := filepath.Join(dir, ArtifactName(result, f))
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", err
	}
	return filename, nil
}

// ResolveFormats expands "all" and validates every name, preserving order and
// dropping duplicates.
func ResolveFormats(formats []string, opts Options) ([]Formatter, error) {
	var out []Formatter
	seen := map[string]bool{}
	add := func(f Formatter) {
		if !seen[f.Name()] {
			seen[f.Name()] = true
			out = append(out, f)
		}
	}
	for _, name := range formats {
		if NormalizeFormatName(name) == "all" {
			for _, f := range builtInFormatters(opts) {
				add(f)
			}
			continue
		}
		f := GetFormatterByName(name, opts)
		if f == nil {
			return nil, fmt.Errorf("%w: %q. Try one of: %s (aliases: %s)", ErrUnsupportedFormat, name, strings.Join(AvailableFormatterNames(), ", "), strings.Join(AvailableFormatAliases(), ", "))
		}
		add(f)
	}
	return out, nil
}

// GenerateReport writes the requested formats into dir and returns the
// written file names.
func GenerateReport(result *domain.SimulationResult, dir string, formats []string, opts Options) ([]string, error) {
	fs, err := ResolveFormats(formats, opts)
	if err != nil {
		return nil, err
	}
	files := make([]string, 0, len(fs))
	for _, f := range fs {
		name, err := WriteFormatted(f, result, dir)
		if err != nil {
			return files, err
		}
		files = append(files, name)
	}
	return files, nil
}
