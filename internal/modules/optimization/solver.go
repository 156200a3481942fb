package optimization

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/aristath/folio/internal/domain"
	"github.com/aristath/folio/pkg/formulas"
)

// Solver names accepted by NewSolver.
const (
	SolverActiveSet = "active_set"
	SolverPenalty   = "penalty"
)

// CleanCutoff is the weight below which an allocation is dropped.
const CleanCutoff = 1e-4

// Solver finds long-only, fully-invested portfolios (w >= 0, sum(w) = 1).
type Solver interface {
	// SolveMinVariance minimizes w'Σw.
	SolveMinVariance(cov mat.Symmetric) ([]float64, error)
	// SolveTargetReturn minimizes w'Σw subject to μ'w >= target.
	SolveTargetReturn(mu []float64, cov mat.Symmetric, target float64) ([]float64, error)
	// SolveMaxSharpe maximizes (μ'w - rf) / sqrt(w'Σw).
	SolveMaxSharpe(mu []float64, cov mat.Symmetric, riskFree float64) ([]float64, error)
}

// NewSolver returns the named solver; an empty name selects the active-set solver.
func NewSolver(name string) (Solver, error) {
	switch name {
	case "", SolverActiveSet:
		return NewActiveSetSolver(), nil
	case SolverPenalty:
		return NewPenaltySolver(), nil
	default:
		return nil, fmt.Errorf("unknown solver %q", name)
	}
}

// CleanWeights zeroes weights below CleanCutoff (and any negative noise)
// and renormalizes the rest to sum to 1.
func CleanWeights(w []float64) []float64 {
	out := make([]float64, len(w))
	sum := 0.0
	for i, v := range w {
		if v < CleanCutoff || math.IsNaN(v) {
			continue
		}
		out[i] = v
		sum += v
	}
	if sum <= 0 {
		return out
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

// recoverSolve runs fn and turns a panic inside it into ErrSolverFailure.
func recoverSolve(op string, fn func() ([]float64, error)) (w []float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			w = nil
			err = fmt.Errorf("%w: %s: %v", domain.ErrSolverFailure, op, r)
		}
	}()
	return fn()
}

// checkProblem validates dimensions shared by every solve.
func checkProblem(mu []float64, cov mat.Symmetric) (int, error) {
	if cov == nil {
		return 0, fmt.Errorf("%w: nil covariance", domain.ErrInsufficientData)
	}
	n := cov.SymmetricDim()
	if n == 0 {
		return 0, fmt.Errorf("%w: empty problem", domain.ErrInsufficientData)
	}
	if mu != nil && len(mu) != n {
		return 0, fmt.Errorf("%w: %d expected returns for %d assets", domain.ErrSolverFailure, len(mu), n)
	}
	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			if v := cov.At(i, j); math.IsNaN(v) || math.IsInf(v, 0) {
				return 0, fmt.Errorf("%w: non-finite covariance", domain.ErrSolverFailure)
			}
		}
	}
	return n, nil
}

// excessReturns returns mu - rf and an error when no asset beats rf.
func excessReturns(mu []float64, riskFree float64) ([]float64, error) {
	excess := make([]float64, len(mu))
	best := math.Inf(-1)
	for i, m := range mu {
		excess[i] = m - riskFree
		best = math.Max(best, excess[i])
	}
	if best <= 0 {
		return nil, fmt.Errorf("%w: no asset has an expected return above the risk-free rate", domain.ErrInfeasible)
	}
	return excess, nil
}

// checkTarget rejects targets outside [min(μ), max(μ)].
func checkTarget(mu []float64, target float64) error {
	lo, hi := formulas.Min(mu), formulas.Max(mu)
	tol := 1e-9 * math.Max(1, math.Abs(hi))
	if target < lo-tol || target > hi+tol {
		return fmt.Errorf("%w: target return %.4f outside [%.4f, %.4f]", domain.ErrInfeasible, target, lo, hi)
	}
	return nil
}

// minVarianceMeets returns the min-variance weights when their expected
// return already reaches target. The return constraint is then inactive.
func minVarianceMeets(s Solver, mu []float64, cov mat.Symmetric, target float64) ([]float64, bool) {
	w, err := s.SolveMinVariance(cov)
	if err != nil {
		return nil, false
	}
	tol := 1e-9 * math.Max(1, math.Abs(target))
	return w, floats.Dot(mu, w) >= target-tol
}

// normalize rescales y to sum to 1.
func normalize(y []float64) ([]float64, error) {
	sum := 0.0
	for _, v := range y {
		sum += v
	}
	if sum <= 0 || math.IsNaN(sum) {
		return nil, fmt.Errorf("%w: degenerate solution", domain.ErrSolverFailure)
	}
	out := make([]float64, len(y))
	for i, v := range y {
		out[i] = v / sum
	}
	return out, nil
}

func uniform(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 1 / float64(n)
	}
	return w
}

func single() []float64 {
	return []float64{1}
}
