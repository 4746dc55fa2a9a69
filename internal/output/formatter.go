package output

import (
	"errors"
	"sort"
	"strings"

	"github.com/rpgo/shortrate-visualizer/internal/domain"
)

// ErrUnsupportedFormat is returned for unknown format names.
var ErrUnsupportedFormat = errors.New("unsupported output format")

// Formatter defines a pluggable output formatter that returns a byte slice.
// Implementations should be pure (no side effects besides deterministic formatting).
type Formatter interface {
	Format(result *domain.SimulationResult) ([]byte, error)
	// Name returns a short identifier for logging / debugging.
	Name() string
	// Extension returns the file extension without the dot.
	Extension() string
}

// Options tunes the built-in formatters.
type Options struct {
	Precision     int // decimals for CSV values; 0 keeps full float precision
	HistogramBins int // recorded in bundled run files
}

// OptionsFromSettings extracts formatter options from run-file output settings.
func OptionsFromSettings(s domain.OutputSettings) Options {
	return Options{Precision: s.Precision, HistogramBins: s.HistogramBins}
}

// builtInFormatters returns the available formatters configured with opts.
func builtInFormatters(opts Options) []Formatter {
	return []Formatter{
		ConsoleFormatter{},
		PathsCSV{Precision: opts.Precision},
		MomentsCSV{Precision: opts.Precision},
		HTMLFormatter{},
		JSONFormatter{},
	}
}

// GetFormatterByName fetches a registered formatter, resolving aliases.
func GetFormatterByName(name string, opts Options) Formatter {
	n := NormalizeFormatName(name)
	for _, f := range builtInFormatters(opts) {
		if f.Name() == n {
			return f
		}
	}
	return nil
}

// aliasMap provides user-friendly synonyms for format names.
var aliasMap = map[string]string{
	"paths":        "csv",
	"paths-csv":    "csv",
	"moments":      "moments-csv",
	"analytic-csv": "moments-csv",
	"text":         "console",
	"txt":          "console",
	"html-report":  "html",
	"json-pretty":  "json",
}

// NormalizeFormatName lowers and resolves aliases.
func NormalizeFormatName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if mapped, ok := aliasMap[n]; ok {
		return mapped
	}
	return n
}

// AvailableFormatterNames returns the canonical formatter names.
func AvailableFormatterNames() []string {
	fs := builtInFormatters(Options{})
	names := make([]string, 0, len(fs))
	for _, f := range fs {
		names = append(names, f.Name())
	}
	sort.Strings(names)
	return names
}

// AvailableFormatAliases returns the supported alias keys.
func AvailableFormatAliases() []string {
	keys := make([]string, 0, len(aliasMap))
	for k := range aliasMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
