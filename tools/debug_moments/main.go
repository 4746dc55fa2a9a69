package main

import (
	"context"
	"fmt"
	"math"
	"os"

	calc "github.com/rpgo/shortrate-visualizer/internal/calculation"
	"github.com/rpgo/shortrate-visualizer/internal/config"
)

// Prints the gap between the Euler sample moments and the closed form along
// the grid of a run file, to judge discretization bias.
func main() {
	if len(os.Args) < 2 {
		fmt.Println("usage: debug_moments <run-file>")
		return
	}
	p := config.NewInputParser()
	cfg, err := p.LoadFromFile(os.Args[1])
	if err != nil {
		panic(err)
	}
	req, err := calc.RequestFromConfiguration(cfg)
	if err != nil {
		panic(err)
	}
	res, err := calc.NewEngine().Run(context.Background(), req)
	if err != nil {
		panic(err)
	}

	n := res.Analytic.Len()
	every := max(1, n/20)
	fmt.Printf("%s, %d paths, seed %d\n", res.Model.DisplayName(), res.Grid.Paths, *res.Grid.Seed)
	fmt.Printf("%8s  %12s  %12s  %12s  %12s\n", "t", "mean", "mean gap", "sd", "sd gap")
	var worst float64
	for i := 0; i < n; i++ {
		a, s := res.Analytic.Points[i], res.Sample.Points[i]
		gap := s.Mean - a.Mean
		worst = math.Max(worst, math.Abs(gap))
		if i%every != 0 && i != n-1 {
			continue
		}
		fmt.Printf("%8.4f  %12.6f  %+12.6f  %12.6f  %+12.6f\n", a.Time, a.Mean, gap, a.StdDev(), s.StdDev()-a.StdDev())
	}
	fmt.Printf("largest |mean gap|: %.6f\n", worst)
}
