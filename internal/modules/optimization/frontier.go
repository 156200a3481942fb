package optimization

import (
	"context"
	"math"
	"runtime"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// frontierCeiling keeps the last frontier target just under the best asset's
// return. The ceiling never drops below the min-volatility return.
const frontierCeiling = 0.99

// frontierSolution is one solved frontier target.
type frontierSolution struct {
	target  float64
	weights []float64
	ret     float64
	vol     float64
	ok      bool
}

// Frontier sweeps points targets linearly spaced from the min-volatility
// portfolio's return to 0.99 x max(μ), or to the min-volatility return when
// that is higher. Each target is solved independently on a bounded worker
// pool. Targets that fail to solve are skipped; the rest come back in target
// order.
func Frontier(ctx context.Context, solver Solver, model *RiskModel, points int, log zerolog.Logger) ([]FrontierPoint, error) {
	if points <= 0 {
		points = DefaultFrontierPoints
	}

	minVol, err := solver.SolveMinVariance(model.Cov)
	if err != nil {
		return nil, err
	}
	minRet, _, _ := model.Performance(minVol, 0)
	ceiling := math.Max(minRet, model.MaxReturn()*frontierCeiling)
	targets := linspace(minRet, ceiling, points)

	solutions := make([]frontierSolution, len(targets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, target := range targets {
		i, target := i, target
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			w, err := solver.SolveTargetReturn(model.Mu, model.Cov, target)
			if err != nil {
				log.Debug().Err(err).Float64("target", target).Msg("Skipping frontier point")
				return nil
			}
			ret, vol, _ := model.Performance(w, 0)
			solutions[i] = frontierSolution{target: target, weights: w, ret: ret, vol: vol, ok: true}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]FrontierPoint, 0, len(solutions))
	for _, s := range solutions {
		if !s.ok {
			continue
		}
		out = append(out, FrontierPoint{Risk: pct(s.vol), Return: pct(s.ret)})
	}
	return out, nil
}

// linspace returns n evenly spaced values from start to stop inclusive.
func linspace(start, stop float64, n int) []float64 {
	if n == 1 {
		return []float64{start}
	}
	out := make([]float64, n)
	step := (stop - start) / float64(n-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	out[n-1] = stop
	return out
}
