package optimization

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/aristath/folio/internal/domain"
	"github.com/aristath/folio/pkg/formulas"
)

// ActiveSetSolver solves the quadratic programs exactly with a primal
// active-set method over the bounds w >= 0. A feasible vertex comes from an
// LP phase one; each iteration solves the equality-constrained KKT system on
// the free variables by SVD least squares, so singular covariances and
// redundant constraints do not break it.
type ActiveSetSolver struct {
	MaxIter int
	Tol     float64
}

// NewActiveSetSolver creates a solver with default limits.
func NewActiveSetSolver() *ActiveSetSolver {
	return &ActiveSetSolver{MaxIter: 1000, Tol: 1e-10}
}

// SolveMinVariance minimizes w'Σw over the simplex.
func (s *ActiveSetSolver) SolveMinVariance(cov mat.Symmetric) ([]float64, error) {
	return recoverSolve("min variance", func() ([]float64, error) {
		n, err := checkProblem(nil, cov)
		if err != nil {
			return nil, err
		}
		if n == 1 {
			return single(), nil
		}
		a := mat.NewDense(1, n, ones(n))
		return s.solve(cov, a, []float64{1})
	})
}

// SolveTargetReturn minimizes w'Σw over the simplex with μ'w >= target.
// Above the min-variance return the constraint binds with equality.
func (s *ActiveSetSolver) SolveTargetReturn(mu []float64, cov mat.Symmetric, target float64) ([]float64, error) {
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
		// with equal expected returns the return constraint is either
		// implied by the budget or impossible; checkTarget ruled out the latter
		if n == 1 || formulas.IsZero(formulas.Max(mu)-formulas.Min(mu)) {
			return s.SolveMinVariance(cov)
		}
		a := mat.NewDense(2, n, nil)
		for j := 0; j < n; j++ {
			a.Set(0, j, 1)
			a.Set(1, j, mu[j])
		}
		return s.solve(cov, a, []float64{1, target})
	})
}

// SolveMaxSharpe maximizes the Sharpe ratio. It solves
// min y'Σy s.t. (μ-rf)'y = 1, y >= 0 and returns w = y / sum(y).
func (s *ActiveSetSolver) SolveMaxSharpe(mu []float64, cov mat.Symmetric, riskFree float64) ([]float64, error) {
	return recoverSolve("max sharpe", func() ([]float64, error) {
		n, err := checkProblem(mu, cov)
		if err != nil {
			return nil, err
		}
		excess, err := excessReturns(mu, riskFree)
		if err != nil {
			return nil, err
		}
		if n == 1 {
			return single(), nil
		}
		y, err := s.solve(cov, mat.NewDense(1, n, excess), []float64{1})
		if err != nil {
			return nil, err
		}
		return normalize(y)
	})
}

func (s *ActiveSetSolver) solve(q mat.Symmetric, a *mat.Dense, b []float64) ([]float64, error) {
	w, err := feasibleStart(a, b)
	if err != nil {
		return nil, err
	}
	return s.minimize(q, a, w)
}

// feasibleStart finds a vertex of {w >= 0, Aw = b} with the simplex method.
func feasibleStart(a *mat.Dense, b []float64) ([]float64, error) {
	m, n := a.Dims()

	// the simplex rejects all-zero columns; they cannot help reach b anyway
	keep := make([]int, 0, n)
	for j := 0; j < n; j++ {
		for i := 0; i < m; i++ {
			if a.At(i, j) != 0 {
				keep = append(keep, j)
				break
			}
		}
	}
	if len(keep) < m {
		return nil, fmt.Errorf("%w: constraints cannot be met", domain.ErrInfeasible)
	}

	sub := mat.NewDense(m, len(keep), nil)
	for k, j := range keep {
		for i := 0; i < m; i++ {
			sub.Set(i, k, a.At(i, j))
		}
	}

	_, x, err := lp.Simplex(make([]float64, len(keep)), sub, b, 1e-10, nil)
	if err != nil {
		if errors.Is(err, lp.ErrInfeasible) {
			return nil, fmt.Errorf("%w: %v", domain.ErrInfeasible, err)
		}
		return nil, fmt.Errorf("%w: phase one: %v", domain.ErrSolverFailure, err)
	}

	w := make([]float64, n)
	for k, j := range keep {
		w[j] = math.Max(0, x[k])
	}
	return w, nil
}

// minimize runs the active-set iterations from the feasible point w.
func (s *ActiveSetSolver) minimize(q mat.Symmetric, a *mat.Dense, w []float64) ([]float64, error) {
	n := len(w)
	m, _ := a.Dims()

	active := make([]bool, n)
	for i, v := range w {
		if v <= s.Tol {
			active[i] = true
			w[i] = 0
		}
	}

	wv := mat.NewVecDense(n, w)
	var g mat.VecDense

	for iter := 0; iter < s.MaxIter; iter++ {
		free := make([]int, 0, n)
		for i := 0; i < n; i++ {
			if !active[i] {
				free = append(free, i)
			}
		}
		if len(free) == 0 {
			return nil, fmt.Errorf("%w: every variable at its bound", domain.ErrSolverFailure)
		}

		g.MulVec(q, wv)
		p, lambda, err := kktStep(q, a, g.RawVector().Data, free)
		if err != nil {
			return nil, err
		}

		if floats.Norm(p, 2) <= s.Tol*(1+floats.Norm(w, 2)) {
			// stationary on the free set: check the bound multipliers
			tol := s.Tol * (1 + floats.Norm(g.RawVector().Data, math.Inf(1)))
			release, worst := -1, -tol
			for i := 0; i < n; i++ {
				if !active[i] {
					continue
				}
				nu := g.AtVec(i)
				for k := 0; k < m; k++ {
					nu += a.At(k, i) * lambda[k]
				}
				if nu < worst {
					release, worst = i, nu
				}
			}
			if release < 0 {
				return w, nil
			}
			active[release] = false
			continue
		}

		// longest step along p that keeps w >= 0
		alpha, block := 1.0, -1
		for k, i := range free {
			if p[k] < 0 {
				if r := -w[i] / p[k]; r < alpha {
					alpha, block = r, i
				}
			}
		}
		for k, i := range free {
			w[i] += alpha * p[k]
		}
		if block >= 0 {
			active[block] = true
			w[block] = 0
		}
	}

	return nil, fmt.Errorf("%w: active set did not converge in %d iterations", domain.ErrSolverFailure, s.MaxIter)
}

// kktStep solves
//
//	[Q_FF  A_F'] [p]   [-g_F]
//	[A_F   0   ] [λ] = [ 0  ]
//
// in the least-squares sense and returns p (indexed like free) and λ.
func kktStep(q mat.Symmetric, a *mat.Dense, g []float64, free []int) ([]float64, []float64, error) {
	m, _ := a.Dims()
	nf := len(free)
	size := nf + m

	k := mat.NewDense(size, size, nil)
	rhs := mat.NewVecDense(size, nil)
	for r, i := range free {
		for c, j := range free {
			k.Set(r, c, q.At(i, j))
		}
		for row := 0; row < m; row++ {
			k.Set(r, nf+row, a.At(row, i))
			k.Set(nf+row, r, a.At(row, i))
		}
		rhs.SetVec(r, -g[i])
	}

	var svd mat.SVD
	if !svd.Factorize(k, mat.SVDThin) {
		return nil, nil, fmt.Errorf("%w: KKT factorization failed", domain.ErrSolverFailure)
	}
	rank := svd.Rank(1e-12)
	if rank == 0 {
		return nil, nil, fmt.Errorf("%w: KKT system is zero", domain.ErrSolverFailure)
	}

	var x mat.VecDense
	svd.SolveVecTo(&x, rhs, rank)

	raw := x.RawVector().Data
	p := make([]float64, nf)
	copy(p, raw[:nf])
	lambda := make([]float64, m)
	copy(lambda, raw[nf:])
	return p, lambda, nil
}

func ones(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 1
	}
	return out
}
