package api

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/rpgo/shortrate-visualizer/internal/calculation"
	"github.com/rpgo/shortrate-visualizer/internal/domain"
	"github.com/rpgo/shortrate-visualizer/internal/output"
)

// ErrLimitExceeded is returned when a request asks for more work than the
// server allows.
var ErrLimitExceeded = errors.New("request exceeds server limits")

// RunRequest is the body for POST /api/v1/simulate and /api/v1/moments.
type RunRequest struct {
	Model         string                `json:"model"`
	Vasicek       *domain.VasicekParams `json:"vasicek,omitempty"`
	CIR           *domain.CIRParams     `json:"cir,omitempty"`
	Horizon       float64               `json:"horizon"`
	Steps         int                   `json:"steps,omitempty"`
	Dt            float64               `json:"dt,omitempty"`
	Paths         int                   `json:"paths"`
	Seed          *int64                `json:"seed,omitempty"`
	HistogramBins int                   `json:"histogram_bins,omitempty"`
	OmitPaths     bool                  `json:"omit_paths,omitempty"` // drop raw paths from the response
}

// toRequest validates the model name and grid and applies server limits.
func (rr RunRequest) toRequest(limits limits) (calculation.Request, error) {
	model, err := domain.ParseModel(rr.Model)
	if err != nil {
		return calculation.Request{}, err
	}
	gs := domain.GridSettings{Horizon: rr.Horizon, Steps: rr.Steps, Dt: rr.Dt, Paths: rr.Paths, Seed: rr.Seed}
	if gs.Steps == 0 && gs.Dt == 0 {
		return calculation.Request{}, fmt.Errorf("%w: either steps or dt must be set", domain.ErrInvalidSteps)
	}
	grid, err := gs.ToGrid()
	if err != nil {
		return calculation.Request{}, err
	}
	if err := limits.check(grid); err != nil {
		return calculation.Request{}, err
	}
	req := calculation.Request{Model: model, Grid: grid, HistogramBins: rr.HistogramBins}
	switch model {
	case domain.ModelVasicek:
		req.Vasicek = rr.Vasicek
	case domain.ModelCIR:
		req.CIR = rr.CIR
	}
	return req, req.Validate()
}

type limits struct {
	maxPaths int
	maxSteps int
}

func (l limits) check(g domain.SimulationGrid) error {
	if l.maxPaths > 0 && g.Paths > l.maxPaths {
		return fmt.Errorf("%w: %d paths requested, at most %d allowed", ErrLimitExceeded, g.Paths, l.maxPaths)
	}
	if l.maxSteps > 0 && g.Steps > l.maxSteps {
		return fmt.Errorf("%w: %d steps requested, at most %d allowed", ErrLimitExceeded, g.Steps, l.maxSteps)
	}
	return nil
}

// defaultForm returns the sidebar values shown on first visit.
func defaultForm() output.FormValues {
	cfg := domain.ExampleConfiguration()
	f := output.FormValues{
		Model:   string(cfg.Model),
		A:       ftoa(cfg.Vasicek.A),
		B:       ftoa(cfg.Vasicek.B),
		SigmaV:  ftoa(cfg.Vasicek.Sigma),
		R0V:     ftoa(cfg.Vasicek.R0),
		Kappa:   ftoa(cfg.CIR.Kappa),
		Theta:   ftoa(cfg.CIR.Theta),
		SigmaC:  ftoa(cfg.CIR.Sigma),
		R0C:     ftoa(cfg.CIR.R0),
		Horizon: ftoa(cfg.Grid.Horizon),
		Dt:      ftoa(cfg.Grid.Dt),
		Paths:   strconv.Itoa(cfg.Grid.Paths),
	}
	if cfg.Grid.Seed != nil {
		f.UseSeed = true
		f.Seed = strconv.FormatInt(*cfg.Grid.Seed, 10)
	}
	return f
}

// formFromQuery overlays query parameters on the defaults.
func formFromQuery(q url.Values) output.FormValues {
	f := defaultForm()
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(q.Get(key)); v != "" {
			*dst = v
		}
	}
	set(&f.Model, "model")
	set(&f.A, "a")
	set(&f.B, "b")
	set(&f.SigmaV, "sigma_v")
	set(&f.R0V, "r0_v")
	set(&f.Kappa, "kappa")
	set(&f.Theta, "theta")
	set(&f.SigmaC, "sigma_c")
	set(&f.R0C, "r0_c")
	set(&f.Horizon, "horizon")
	set(&f.Dt, "dt")
	set(&f.Paths, "paths")
	set(&f.Seed, "seed")
	// An explicit form submission carries the checkbox only when ticked.
	if q.Has("model") {
		f.UseSeed = q.Get("use_seed") != ""
	}
	return f
}

// runRequestFromForm converts sidebar values into a RunRequest. Only the
// parameters of the selected model are parsed.
func runRequestFromForm(f output.FormValues) (RunRequest, error) {
	p := &formParser{}
	rr := RunRequest{Model: f.Model}
	model, err := domain.ParseModel(f.Model)
	if err != nil {
		return rr, err
	}
	switch model {
	case domain.ModelVasicek:
		rr.Vasicek = &domain.VasicekParams{
			A:     p.float("a", f.A),
			B:     p.float("b", f.B),
			Sigma: p.float("sigma", f.SigmaV),
			R0:    p.float("r0", f.R0V),
		}
	case domain.ModelCIR:
		rr.CIR = &domain.CIRParams{
			Kappa: p.float("kappa", f.Kappa),
			Theta: p.float("theta", f.Theta),
			Sigma: p.float("sigma", f.SigmaC),
			R0:    p.float("r0", f.R0C),
		}
	}
	rr.Horizon = p.float("horizon", f.Horizon)
	rr.Dt = p.float("dt", f.Dt)
	rr.Paths = p.int("paths", f.Paths)
	if f.UseSeed {
		seed := p.int64("seed", f.Seed)
		rr.Seed = &seed
	}
	return rr, p.err
}

// queryFor encodes a finished run so download links replay it exactly.
func queryFor(f output.FormValues, result *domain.SimulationResult) url.Values {
	q := url.Values{}
	q.Set("model", string(result.Model))
	switch {
	case result.Vasicek != nil:
		q.Set("a", f.A)
		q.Set("b", f.B)
		q.Set("sigma_v", f.SigmaV)
		q.Set("r0_v", f.R0V)
	case result.CIR != nil:
		q.Set("kappa", f.Kappa)
		q.Set("theta", f.Theta)
		q.Set("sigma_c", f.SigmaC)
		q.Set("r0_c", f.R0C)
	}
	q.Set("horizon", f.Horizon)
	q.Set("dt", f.Dt)
	q.Set("paths", f.Paths)
	q.Set("use_seed", "1")
	if result.Grid.Seed != nil {
		q.Set("seed", strconv.FormatInt(*result.Grid.Seed, 10))
	}
	return q
}

// formParser collects the first conversion error.
type formParser struct {
	err error
}

func (p *formParser) float(name, s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("%w: %s must be a number, got %q", domain.ErrInvalidParameter, name, s)
	}
	return v
}

func (p *formParser) int(name, s string) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("%w: %s must be an integer, got %q", domain.ErrInvalidParameter, name, s)
	}
	return v
}

func (p *formParser) int64(name, s string) int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("%w: %s must be an integer, got %q", domain.ErrInvalidParameter, name, s)
	}
	return v
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
