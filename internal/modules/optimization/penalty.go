package optimization

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"github.com/aristath/folio/internal/domain"
)

// PenaltySolver minimizes a penalised objective on weights projected onto
// w >= 0 with BFGS, falling back to Nelder-Mead when BFGS fails. It is an
// approximate solver: equality constraints hold only up to the penalty.
type PenaltySolver struct {
	PenaltyWeight float64
}

// NewPenaltySolver creates a new penalty solver.
func NewPenaltySolver() *PenaltySolver {
	return &PenaltySolver{PenaltyWeight: 1000}
}

// SolveMinVariance minimizes w'Σw.
func (s *PenaltySolver) SolveMinVariance(cov mat.Symmetric) ([]float64, error) {
	return recoverSolve("min variance", func() ([]float64, error) {
		n, err := checkProblem(nil, cov)
		if err != nil {
			return nil, err
		}
		if n == 1 {
			return single(), nil
		}

		problem := optimize.Problem{
			Func: func(x []float64) float64 {
				w := project(x)
				return quadForm(cov, w) + s.budgetPenalty(w)
			},
			Grad: func(grad, x []float64) {
				w := project(x)
				quadGrad(grad, cov, w)
				s.addBudgetGrad(grad, w)
				maskGrad(grad, x)
			},
		}
		return s.minimize(problem, n)
	})
}

// SolveTargetReturn minimizes w'Σw with μ'w >= target. A binding target is
// enforced by penalty.
func (s *PenaltySolver) SolveTargetReturn(mu []float64, cov mat.Symmetric, target float64) ([]float64, error) {
	return recoverSolve("target return", func() ([]float64, error) {
		n, err := checkProblem(mu, cov)
		if err != nil {
			return nil, err
		}
		if err := checkTarget(mu, target); err != nil {
			return nil, err
		}
		if w, ok := minVarianceMeets(s, mu, cov, target); ok {
			return w, nil
		}
		if n == 1 {
			return single(), nil
		}

		problem := optimize.Problem{
			Func: func(x []float64) float64 {
				w := project(x)
				gap := floats.Dot(mu, w) - target
				return quadForm(cov, w) + s.budgetPenalty(w) + s.PenaltyWeight*gap*gap
			},
			Grad: func(grad, x []float64) {
				w := project(x)
				quadGrad(grad, cov, w)
				s.addBudgetGrad(grad, w)
				gap := floats.Dot(mu, w) - target
				for i := range grad {
					grad[i] += 2 * s.PenaltyWeight * gap * mu[i]
				}
				maskGrad(grad, x)
			},
		}
		return s.minimize(problem, n)
	})
}

// SolveMaxSharpe minimizes -(μ'w - rf)/sqrt(w'Σw).
func (s *PenaltySolver) SolveMaxSharpe(mu []float64, cov mat.Symmetric, riskFree float64) ([]float64, error) {
	return recoverSolve("max sharpe", func() ([]float64, error) {
		n, err := checkProblem(mu, cov)
		if err != nil {
			return nil, err
		}
		if _, err := excessReturns(mu, riskFree); err != nil {
			return nil, err
		}
		if n == 1 {
			return single(), nil
		}

		problem := optimize.Problem{
			Func: func(x []float64) float64 {
				w := project(x)
				stdDev := math.Sqrt(math.Max(quadForm(cov, w), 1e-10))
				return -(floats.Dot(mu, w)-riskFree)/stdDev + s.budgetPenalty(w)
			},
			Grad: func(grad, x []float64) {
				w := project(x)
				variance := quadForm(cov, w)
				stdDev := math.Sqrt(math.Max(variance, 1e-10))
				excess := floats.Dot(mu, w) - riskFree

				quadGrad(grad, cov, w) // d(w'Σw)/dw
				for i := range grad {
					grad[i] = -mu[i]/stdDev + excess*grad[i]/(2*stdDev*stdDev*stdDev)
				}
				s.addBudgetGrad(grad, w)
				maskGrad(grad, x)
			},
		}
		return s.minimize(problem, n)
	})
}

func (s *PenaltySolver) minimize(problem optimize.Problem, n int) ([]float64, error) {
	initial := uniform(n)

	result, err := optimize.Minimize(problem, initial, &optimize.Settings{}, &optimize.BFGS{})
	if err != nil || !converged(result.Status) {
		result, err = optimize.Minimize(problem, initial, &optimize.Settings{}, &optimize.NelderMead{})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrSolverFailure, err)
		}
	}
	if !converged(result.Status) {
		return nil, fmt.Errorf("%w: optimization did not converge: status=%v", domain.ErrSolverFailure, result.Status)
	}

	return normalize(project(result.X))
}

func converged(status optimize.Status) bool {
	switch status {
	case optimize.Success, optimize.GradientThreshold, optimize.FunctionConvergence:
		return true
	}
	return false
}

func (s *PenaltySolver) budgetPenalty(w []float64) float64 {
	gap := floats.Sum(w) - 1
	return s.PenaltyWeight * gap * gap
}

func (s *PenaltySolver) addBudgetGrad(grad, w []float64) {
	gap := floats.Sum(w) - 1
	for i := range grad {
		grad[i] += 2 * s.PenaltyWeight * gap
	}
}

// project clips weights at zero.
func project(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = math.Max(0, v)
	}
	return out
}

// maskGrad zeroes the gradient of coordinates the projection clips, where
// the objective is flat.
func maskGrad(grad, x []float64) {
	for i, v := range x {
		if v < 0 {
			grad[i] = 0
		}
	}
}

func quadForm(cov mat.Symmetric, w []float64) float64 {
	v := mat.NewVecDense(len(w), w)
	return mat.Inner(v, cov, v)
}

// quadGrad writes 2Σw into grad.
func quadGrad(grad []float64, cov mat.Symmetric, w []float64) {
	n := len(w)
	for i := 0; i < n; i++ {
		grad[i] = 0
		for j := 0; j < n; j++ {
			grad[i] += 2 * cov.At(i, j) * w[j]
		}
	}
}
