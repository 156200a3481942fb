package optimization

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/aristath/folio/internal/domain"
	"github.com/aristath/folio/internal/modules/timeseries"
	"github.com/aristath/folio/pkg/formulas"
)

// RiskModel holds annualized expected returns and covariance for a fixed
// symbol order.
type RiskModel struct {
	Symbols []string
	Mu      []float64
	Cov     *mat.SymDense
}

// NewRiskModel estimates the model from aligned prices: compounded
// historical mean returns and a Ledoit-Wolf shrunk covariance, both
// annualized with 252 trading days.
func NewRiskModel(prices timeseries.AlignedPriceTable, symbols []string) (*RiskModel, error) {
	if len(symbols) == 0 {
		return nil, fmt.Errorf("%w: no symbols", domain.ErrInsufficientData)
	}
	if prices.Len() < 3 {
		return nil, fmt.Errorf("%w: %d price rows", domain.ErrInsufficientData, prices.Len())
	}

	returns := timeseries.Returns(prices)
	nObs := returns.Len()

	mu := make([]float64, len(symbols))
	data := mat.NewDense(nObs, len(symbols), nil)
	for j, symbol := range symbols {
		col, ok := prices.Column(symbol)
		if !ok {
			return nil, fmt.Errorf("%w: no prices for %s", domain.ErrInsufficientData, symbol)
		}
		mu[j] = CompoundedAnnualReturn(col)

		rets, _ := returns.Column(symbol)
		for i, r := range rets {
			data.Set(i, j, r)
		}
	}

	cov, _ := LedoitWolf(data)
	cov.ScaleSym(formulas.TradingDaysPerYear, cov)

	return &RiskModel{Symbols: symbols, Mu: mu, Cov: cov}, nil
}

// CompoundedAnnualReturn returns (last/first)^(252/nReturns) - 1.
func CompoundedAnnualReturn(prices []float64) float64 {
	return formulas.AnnualizedFromPrices(prices)
}

// LedoitWolf returns the shrunk covariance of the columns of x (one row per
// observation) and the shrinkage intensity. The target is the scaled
// identity mu*I with mu the mean variance; the intensity is the
// Ledoit-Wolf optimum, clipped to [0, 1].
func LedoitWolf(x mat.Matrix) (*mat.SymDense, float64) {
	t, n := x.Dims()

	// center columns
	xc := mat.NewDense(t, n, nil)
	for j := 0; j < n; j++ {
		mean := 0.0
		for i := 0; i < t; i++ {
			mean += x.At(i, j)
		}
		mean /= float64(t)
		for i := 0; i < t; i++ {
			xc.Set(i, j, x.At(i, j)-mean)
		}
	}

	// maximum-likelihood covariance X'X/T
	emp := mat.NewSymDense(n, nil)
	emp.SymOuterK(1/float64(t), xc.T())

	x2 := mat.NewDense(t, n, nil)
	x2.MulElem(xc, xc)

	trace := mat.Trace(emp)
	mu := trace / float64(n)

	var x2tx2 mat.Dense
	x2tx2.Mul(x2.T(), x2)
	betaSum := mat.Sum(&x2tx2)

	deltaSum := 0.0
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := emp.At(i, j) * float64(t)
			deltaSum += v * v
		}
	}
	deltaSum /= float64(t) * float64(t)

	beta := (betaSum/float64(t) - deltaSum) / (float64(n) * float64(t))
	delta := (deltaSum - 2*mu*trace + float64(n)*mu*mu) / float64(n)
	beta = math.Min(beta, delta)

	shrinkage := 0.0
	if beta > 0 && delta > 0 {
		shrinkage = beta / delta
	}
	shrinkage = math.Max(0, math.Min(1, shrinkage))

	out := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := (1 - shrinkage) * emp.At(i, j)
			if i == j {
				v += shrinkage * mu
			}
			out.SetSym(i, j, v)
		}
	}
	return out, shrinkage
}

// Performance returns the expected return, volatility and Sharpe ratio of
// weights w under the model. Sharpe is 0 when volatility is 0.
func (m *RiskModel) Performance(w []float64, riskFree float64) (ret, vol, sharpe float64) {
	wv := mat.NewVecDense(len(w), w)
	ret = mat.Dot(mat.NewVecDense(len(m.Mu), m.Mu), wv)
	vol = math.Sqrt(math.Max(mat.Inner(wv, m.Cov, wv), 0))
	if !formulas.IsZero(vol) {
		sharpe = (ret - riskFree) / vol
	}
	return ret, vol, sharpe
}

// Vector orders a symbol-keyed weight map by the model's symbols.
func (m *RiskModel) Vector(weights map[string]float64) []float64 {
	out := make([]float64, len(m.Symbols))
	for i, s := range m.Symbols {
		out[i] = weights[s]
	}
	return out
}

// MaxReturn returns the largest expected return.
func (m *RiskModel) MaxReturn() float64 {
	return formulas.Max(m.Mu)
}
