package output

import (
	"strconv"

	"github.com/rpgo/shortrate-visualizer/pkg/rate"
	"github.com/shopspring/decimal"
)

// formatFloat renders a CSV value. With precision > 0 the value is rounded
// through decimal so output is stable across platforms.
func formatFloat(v float64, precision int) string {
	if precision > 0 && rate.IsRepresentable(v) {
		return rate.NewRate(v).FormatFixed(int32(precision))
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// FormatRate formats a rate fraction as a percentage, e.g. 0.05 -> "5.000%".
func FormatRate(v float64) string {
	if !rate.IsRepresentable(v) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return rate.NewRate(v).String()
}

// FormatShare formats a fraction in [0, 1] as a percentage with 1 decimal.
func FormatShare(v float64) string {
	return decimal.NewFromFloat(v).Mul(decimal.NewFromInt(100)).StringFixed(1) + "%"
}
