package domain

import "math"

// PathSet holds M simulated short-rate paths over a shared time grid.
// Paths[j][i] is the rate of path j at Times[i].
type PathSet struct {
	Times []float64   `json:"times"`
	Paths [][]float64 `json:"paths"`
}

// NumPaths returns M.
func (ps *PathSet) NumPaths() int { return len(ps.Paths) }

// NumPoints returns N+1.
func (ps *PathSet) NumPoints() int { return len(ps.Times) }

// Terminal returns the value of every path at the horizon.
func (ps *PathSet) Terminal() []float64 {
	out := make([]float64, len(ps.Paths))
	for j, p := range ps.Paths {
		out[j] = p[len(p)-1]
	}
	return out
}

// Row returns the rates of all paths at time index i.
func (ps *PathSet) Row(i int) []float64 {
	out := make([]float64, len(ps.Paths))
	for j, p := range ps.Paths {
		out[j] = p[i]
	}
	return out
}

// MomentPoint is the analytic mean and variance of r_t at a single time.
type MomentPoint struct {
	Time     float64 `json:"t"`
	Mean     float64 `json:"mean"`
	Variance float64 `json:"variance"`
}

// StdDev returns sqrt(Variance), treating tiny negative round-off as zero.
func (mp MomentPoint) StdDev() float64 {
	if mp.Variance <= 0 {
		return 0
	}
	return math.Sqrt(mp.Variance)
}

// MomentCurve is an ordered sequence of moment points over a time grid.
type MomentCurve struct {
	Points []MomentPoint `json:"points"`
}

// Len returns the number of points.
func (mc *MomentCurve) Len() int { return len(mc.Points) }

// Band returns mean - k*sd and mean + k*sd for every point.
func (mc *MomentCurve) Band(k float64) (lower, upper []float64) {
	lower = make([]float64, len(mc.Points))
	upper = make([]float64, len(mc.Points))
	for i, p := range mc.Points {
		sd := p.StdDev()
		lower[i] = p.Mean - k*sd
		upper[i] = p.Mean + k*sd
	}
	return lower, upper
}

// Percentiles of the short rate at the horizon.
type Percentiles struct {
	P10 float64 `json:"p10"`
	P25 float64 `json:"p25"`
	P50 float64 `json:"p50"`
	P75 float64 `json:"p75"`
	P90 float64 `json:"p90"`
}

// HistogramBin is one equal-width bucket of the terminal distribution.
type HistogramBin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// TerminalSummary describes the simulated distribution of r(T).
type TerminalSummary struct {
	Mean          float64        `json:"mean"`
	StdDev        float64        `json:"std_dev"`
	Min           float64        `json:"min"`
	Max           float64        `json:"max"`
	Percentiles   Percentiles    `json:"percentiles"`
	NegativeShare float64        `json:"negative_share"` // fraction of paths ending below zero
	Histogram     []HistogramBin `json:"histogram"`
}

// SimulationResult is everything produced for one model run.
type SimulationResult struct {
	Model     Model           `json:"model"`
	Vasicek   *VasicekParams  `json:"vasicek,omitempty"`
	CIR       *CIRParams      `json:"cir,omitempty"`
	Grid      SimulationGrid  `json:"grid"`
	Paths     *PathSet        `json:"paths"`
	Analytic  *MomentCurve    `json:"analytic"`
	Sample    *MomentCurve    `json:"sample"`
	Terminal  TerminalSummary `json:"terminal"`
	FellerMet *bool           `json:"feller_met,omitempty"` // CIR only
}

// InitialRate returns r0 of whichever model produced the result.
func (r *SimulationResult) InitialRate() float64 {
	if r.CIR != nil {
		return r.CIR.R0
	}
	if r.Vasicek != nil {
		return r.Vasicek.R0
	}
	return 0
}

// LongRunMean returns b (Vasicek) or theta (CIR).
func (r *SimulationResult) LongRunMean() float64 {
	if r.CIR != nil {
		return r.CIR.Theta
	}
	if r.Vasicek != nil {
		return r.Vasicek.B
	}
	return 0
}
