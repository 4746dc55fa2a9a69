package calculation

import (
	"context"
	"fmt"

	"github.com/rpgo/shortrate-visualizer/internal/domain"
	"golang.org/x/sync/errgroup"
)

// Request describes a single model run.
type Request struct {
	Model         domain.Model
	Vasicek       *domain.VasicekParams
	CIR           *domain.CIRParams
	Grid          domain.SimulationGrid
	HistogramBins int
}

// RequestFromConfiguration builds a Request from a validated run file.
func RequestFromConfiguration(cfg *domain.Configuration) (Request, error) {
	if err := cfg.ValidateModel(); err != nil {
		return Request{}, err
	}
	grid, err := cfg.Grid.ToGrid()
	if err != nil {
		return Request{}, err
	}
	req := Request{Model: cfg.Model, Grid: grid, HistogramBins: cfg.Output.Bins()}
	switch cfg.Model {
	case domain.ModelVasicek:
		req.Vasicek = cfg.Vasicek
	case domain.ModelCIR:
		req.CIR = cfg.CIR
	}
	return req, nil
}

// Validate checks that the parameter block matching Model is present and valid.
func (r Request) Validate() error {
	switch r.Model {
	case domain.ModelVasicek:
		if r.Vasicek == nil {
			return fmt.Errorf("%w: vasicek parameters missing", domain.ErrInvalidParameter)
		}
		if err := r.Vasicek.Validate(); err != nil {
			return fmt.Errorf("vasicek parameters: %w", err)
		}
	case domain.ModelCIR:
		if r.CIR == nil {
			return fmt.Errorf("%w: cir parameters missing", domain.ErrInvalidParameter)
		}
		if err := r.CIR.Validate(); err != nil {
			return fmt.Errorf("cir parameters: %w", err)
		}
	default:
		return fmt.Errorf("%w: %q", domain.ErrUnknownModel, r.Model)
	}
	return r.Grid.Validate()
}

// Engine orchestrates simulation, analytic moments and summary statistics.
type Engine struct {
	Logger Logger
}

// NewEngine creates an engine with a no-op logger.
func NewEngine() *Engine {
	return &Engine{Logger: NopLogger{}}
}

// SetLogger sets the logger. If nil is provided, a no-op logger is used.
func (e *Engine) SetLogger(l Logger) {
	if l == nil {
		e.Logger = NopLogger{}
		return
	}
	e.Logger = l
}

// Run simulates the requested model and computes its analytic overlay. The
// returned result's grid carries the seed actually used, so an unseeded run
// can be replayed.
func (e *Engine) Run(ctx context.Context, req Request) (*domain.SimulationResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	seed := resolveSeed(req.Grid.Seed)
	grid := req.Grid.WithSeed(seed)
	rng := newRand(seed)
	e.Logger.Debugf("running %s: T=%g N=%d M=%d dt=%g seed=%d", req.Model, grid.Horizon, grid.Steps, grid.Paths, grid.Dt(), seed)

	result := &domain.SimulationResult{Model: req.Model, Grid: grid}
	var err error
	switch req.Model {
	case domain.ModelVasicek:
		p := *req.Vasicek
		result.Vasicek = &p
		if result.Paths, err = simulateVasicek(ctx, p, grid, rng); err != nil {
			return nil, err
		}
		if result.Analytic, err = VasicekMoments(p, grid.Horizon, grid.Steps); err != nil {
			return nil, err
		}
	case domain.ModelCIR:
		p := *req.CIR
		result.CIR = &p
		feller := p.FellerSatisfied()
		result.FellerMet = &feller
		if !feller {
			e.Logger.Warnf("Feller condition violated (2*kappa*theta=%g < sigma^2=%g); paths are floored at zero", 2*p.Kappa*p.Theta, p.Sigma*p.Sigma)
		}
		if result.Paths, err = simulateCIR(ctx, p, grid, rng); err != nil {
			return nil, err
		}
		if result.Analytic, err = CIRMoments(p, grid.Horizon, grid.Steps); err != nil {
			return nil, err
		}
	}

	bins := req.HistogramBins
	if bins <= 0 {
		bins = domain.DefaultHistogramBins
	}
	result.Sample = SampleMoments(result.Paths)
	result.Terminal = SummarizeTerminal(result.Paths, bins)

	e.Logger.Infof("%s run complete: %d paths x %d points, mean r(T)=%.6f", req.Model, result.Paths.NumPaths(), result.Paths.NumPoints(), result.Terminal.Mean)
	return result, nil
}

// Compare runs independent requests concurrently and returns their results in
// request order. The first failure cancels the remaining runs.
func (e *Engine) Compare(ctx context.Context, reqs ...Request) ([]*domain.SimulationResult, error) {
	results := make([]*domain.SimulationResult, len(reqs))
	g, ctx := errgroup.WithContext(ctx)
	for i, req := range reqs {
		g.Go(func() error {
			res, err := e.Run(ctx, req)
			if err != nil {
				return fmt.Errorf("request %d (%s): %w", i, req.Model, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Moments computes only the analytic curve for the requested model.
func (e *Engine) Moments(req Request) (*domain.MomentCurve, error) {
	switch req.Model {
	case domain.ModelVasicek:
		if req.Vasicek == nil {
			return nil, fmt.Errorf("%w: vasicek parameters missing", domain.ErrInvalidParameter)
		}
		return VasicekMoments(*req.Vasicek, req.Grid.Horizon, req.Grid.Steps)
	case domain.ModelCIR:
		if req.CIR == nil {
			return nil, fmt.Errorf("%w: cir parameters missing", domain.ErrInvalidParameter)
		}
		return CIRMoments(*req.CIR, req.Grid.Horizon, req.Grid.Steps)
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownModel, req.Model)
	}
}
