package calculation

import (
	"math"
	"sort"

	"github.com/rpgo/shortrate-visualizer/internal/domain"
)

// SampleMoments computes the cross-path mean and population variance at every
// grid point, for comparison against the analytic curve.
func SampleMoments(ps *domain.PathSet) *domain.MomentCurve {
	mc := &domain.MomentCurve{Points: make([]domain.MomentPoint, len(ps.Times))}
	for i, t := range ps.Times {
		mean, variance := meanVariance(ps.Row(i))
		mc.Points[i] = domain.MomentPoint{Time: t, Mean: mean, Variance: variance}
	}
	return mc
}

// SummarizeTerminal describes the distribution of r(T) across paths.
func SummarizeTerminal(ps *domain.PathSet, bins int) domain.TerminalSummary {
	values := ps.Terminal()
	if len(values) == 0 {
		return domain.TerminalSummary{}
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	mean, variance := meanVariance(sorted)
	negatives := 0
	for _, v := range sorted {
		if v < 0 {
			negatives++
		}
	}

	return domain.TerminalSummary{
		Mean:          mean,
		StdDev:        math.Sqrt(variance),
		Min:           sorted[0],
		Max:           sorted[len(sorted)-1],
		Percentiles:   calculatePercentiles(sorted),
		NegativeShare: float64(negatives) / float64(len(sorted)),
		Histogram:     Histogram(sorted, bins),
	}
}

// calculatePercentiles uses the nearest-rank index q*n on ascending values.
func calculatePercentiles(sorted []float64) domain.Percentiles {
	return domain.Percentiles{
		P10: percentile(sorted, 0.10),
		P25: percentile(sorted, 0.25),
		P50: percentile(sorted, 0.50),
		P75: percentile(sorted, 0.75),
		P90: percentile(sorted, 0.90),
	}
}

func percentile(sorted []float64, q float64) float64 {
	idx := int(q * float64(len(sorted)))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// Histogram buckets values into at most bins equal-width bins spanning
// [min, max]. The maximum value lands in the last bin. NaN and infinite
// values are not counted.
func Histogram(values []float64, bins int) []domain.HistogramBin {
	if bins < 1 {
		bins = domain.DefaultHistogramBins
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	n := 0
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
		n++
	}
	if n == 0 {
		return nil
	}
	if hi == lo {
		return []domain.HistogramBin{{Lower: lo, Upper: hi, Count: n}}
	}

	// scale before subtracting so hi-lo cannot overflow
	scale := float64(bins)
	width := hi/scale - lo/scale
	out := make([]domain.HistogramBin, bins)
	for i := range out {
		out[i].Lower = lo + float64(i)*width
		out[i].Upper = lo + float64(i+1)*width
	}
	out[bins-1].Upper = hi
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		idx := int((v/scale - lo/scale) / width * scale)
		if idx < 0 {
			idx = 0
		}
		if idx >= bins {
			idx = bins - 1
		}
		out[idx].Count++
	}
	return out
}

func meanVariance(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return mean, ss / float64(len(values))
}
