package optimization

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/aristath/folio/internal/domain"
	"github.com/aristath/folio/internal/modules/timeseries"
)

func day(n int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

// pricePath compounds daily returns into n closes starting at 100.
func pricePath(n int, amp, drift, freq float64) []domain.PriceBar {
	bars := make([]domain.PriceBar, n)
	price := 100.0
	for i := range bars {
		if i > 0 {
			price *= 1 + amp*math.Sin(float64(i)*freq) + drift
		}
		bars[i] = domain.PriceBar{Date: day(i), Close: price}
	}
	return bars
}

func alignedTable(bars map[string][]domain.PriceBar) timeseries.AlignedPriceTable {
	series := make(map[string]timeseries.PriceSeries, len(bars))
	for symbol, b := range bars {
		series[symbol] = timeseries.FromBars(symbol, b)
	}
	return timeseries.Align(series)
}

func TestCompoundedAnnualReturn(t *testing.T) {
	prices := make([]float64, 253)
	for i := range prices {
		prices[i] = 100
	}
	prices[252] = 110
	assert.InDelta(t, 0.10, CompoundedAnnualReturn(prices), 1e-12)

	assert.Equal(t, 0.0, CompoundedAnnualReturn([]float64{100}))
	assert.Equal(t, 0.0, CompoundedAnnualReturn([]float64{0, 100}))
}

func TestLedoitWolf_SingleColumnIsPopulationVariance(t *testing.T) {
	x := mat.NewDense(4, 1, []float64{1, 2, 3, 4})

	cov, shrinkage := LedoitWolf(x)
	assert.Equal(t, 0.0, shrinkage)
	assert.InDelta(t, 1.25, cov.At(0, 0), 1e-12)
}

func TestLedoitWolf_PreservesTrace(t *testing.T) {
	x := mat.NewDense(6, 2, []float64{
		0.01, 0.02,
		-0.02, 0.01,
		0.03, -0.01,
		0.00, 0.02,
		-0.01, -0.03,
		0.02, 0.00,
	})

	cov, shrinkage := LedoitWolf(x)
	assert.GreaterOrEqual(t, shrinkage, 0.0)
	assert.LessOrEqual(t, shrinkage, 1.0)

	// shrinking toward the mean-variance identity keeps the trace
	var centered mat.Dense
	centered.CloneFrom(x)
	for j := 0; j < 2; j++ {
		mean := mat.Sum(x.ColView(j)) / 6
		for i := 0; i < 6; i++ {
			centered.Set(i, j, x.At(i, j)-mean)
		}
	}
	var pop mat.SymDense
	pop.SymOuterK(1.0/6, centered.T())

	assert.InDelta(t, mat.Trace(&pop), mat.Trace(cov), 1e-12)
	assert.InDelta(t, cov.At(0, 1), cov.At(1, 0), 1e-15)
}

func TestNewRiskModel(t *testing.T) {
	prices := alignedTable(map[string][]domain.PriceBar{
		"AAA": pricePath(120, 0.01, 0.001, 0.7),
		"BBB": pricePath(120, 0.015, 0.0005, 0.3),
	})

	model, err := NewRiskModel(prices, []string{"BBB", "AAA"})
	require.NoError(t, err)

	assert.Equal(t, []string{"BBB", "AAA"}, model.Symbols)
	col, _ := prices.Column("AAA")
	assert.InDelta(t, CompoundedAnnualReturn(col), model.Mu[1], 1e-12)
	assert.Equal(t, 2, model.Cov.SymmetricDim())
	assert.Greater(t, model.Cov.At(0, 0), 0.0)

	assert.Equal(t, []float64{0.25, 0.75}, model.Vector(map[string]float64{"AAA": 0.75, "BBB": 0.25, "CCC": 1}))
}

func TestNewRiskModel_TooShort(t *testing.T) {
	prices := alignedTable(map[string][]domain.PriceBar{
		"AAA": pricePath(2, 0.01, 0.001, 0.7),
	})
	_, err := NewRiskModel(prices, []string{"AAA"})
	assert.ErrorIs(t, err, domain.ErrInsufficientData)
}

func TestRiskModel_IdenticalSeriesSplitEvenly(t *testing.T) {
	bars := pricePath(150, 0.02, 0.001, 0.9)
	prices := alignedTable(map[string][]domain.PriceBar{"AAA": bars, "BBB": bars})

	model, err := NewRiskModel(prices, []string{"AAA", "BBB"})
	require.NoError(t, err)

	w, err := NewActiveSetSolver().SolveMinVariance(model.Cov)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, w[0], 1e-6)
	assert.InDelta(t, 0.5, w[1], 1e-6)
}

func TestRiskModel_PerformanceZeroVolatility(t *testing.T) {
	model := &RiskModel{
		Symbols: []string{"A"},
		Mu:      []float64{0.05},
		Cov:     mat.NewSymDense(1, []float64{0}),
	}
	ret, vol, sharpe := model.Performance([]float64{1}, 0)
	assert.InDelta(t, 0.05, ret, 1e-12)
	assert.Equal(t, 0.0, vol)
	assert.Equal(t, 0.0, sharpe)
}
