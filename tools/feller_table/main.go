package main

import (
	"context"
	"fmt"

	"github.com/rpgo/shortrate-visualizer/internal/calculation"
	"github.com/rpgo/shortrate-visualizer/internal/domain"
	"github.com/rpgo/shortrate-visualizer/pkg/rate"
)

func main() {
	engine := calculation.NewEngine()
	seed := int64(42)
	grid := domain.SimulationGrid{Horizon: 5, Steps: 500, Paths: 2000, Seed: &seed}

	base := domain.CIRParams{Kappa: 0.5, Theta: 0.03, R0: 0.02}
	fmt.Printf("CIR kappa=%g theta=%s r0=%s, T=%g N=%d M=%d\n", base.Kappa, rate.NewRate(base.Theta), rate.NewRate(base.R0), grid.Horizon, grid.Steps, grid.Paths)
	fmt.Printf("%8s  %8s  %7s  %12s  %10s  %10s\n", "sigma", "ratio", "feller", "zero at T", "mean r(T)", "analytic")

	for _, sigma := range []float64{0.02, 0.05, 0.10, 0.15, 0.20, 0.30} {
		p := base
		p.Sigma = sigma
		res, err := engine.Run(context.Background(), calculation.Request{Model: domain.ModelCIR, CIR: &p, Grid: grid})
		if err != nil {
			panic(err)
		}
		zeros := 0
		for _, v := range res.Paths.Terminal() {
			if v == 0 {
				zeros++
			}
		}
		analytic := res.Analytic.Points[res.Analytic.Len()-1].Mean
		fmt.Printf("%8s  %8.3f  %7t  %11.1f%%  %10s  %10s\n",
			rate.NewRate(sigma), p.FellerRatio(), p.FellerSatisfied(),
			100*float64(zeros)/float64(grid.Paths),
			rate.NewRate(res.Terminal.Mean), rate.NewRate(analytic))
	}
}
