package formulas

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateCAGR(t *testing.T) {
	tests := []struct {
		name      string
		returns   []float64
		expected  float64
		tolerance float64
	}{
		{
			name:      "empty returns",
			returns:   []float64{},
			expected:  0.0,
			tolerance: 0.0,
		},
		{
			name:      "one year of 4bp per day",
			returns:   makeReturns(0.0004, 252),
			expected:  math.Pow(1.0004, 252) - 1, // ~10.6%
			tolerance: 1e-12,
		},
		{
			name:      "total loss",
			returns:   []float64{-1, 0.5},
			expected:  0.0,
			tolerance: 0.0,
		},
		{
			name:      "very short window uses year floor",
			returns:   []float64{0.01},
			expected:  math.Pow(1.01, 100) - 1, // years = max(1/252, 0.01)
			tolerance: 1e-9,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, CalculateCAGR(tt.returns), tt.tolerance)
		})
	}
}

func TestAnnualizedFromPrices(t *testing.T) {
	prices := make([]float64, 253)
	for i := range prices {
		prices[i] = 100 + 10*float64(i)/252
	}
	assert.InDelta(t, 0.10, AnnualizedFromPrices(prices), 1e-12)
	assert.Equal(t, 0.0, AnnualizedFromPrices([]float64{100}))
	assert.Equal(t, 0.0, AnnualizedFromPrices([]float64{0, 100}))
	assert.Equal(t, 0.0, AnnualizedFromPrices([]float64{100, 0}))
}

func TestGrowthIndexAndTotalReturn(t *testing.T) {
	returns := []float64{0.1, -0.5, 0.2}

	assert.InDeltaSlice(t, []float64{1.1, 0.55, 0.66}, GrowthIndex(returns), 1e-12)
	assert.InDelta(t, -0.34, TotalReturn(returns), 1e-12)
}

func TestDrawdowns(t *testing.T) {
	returns := []float64{0.1, -0.5, 0.2, 1.0, -0.1}
	dd := Drawdowns(returns)

	assert.Equal(t, 0.0, dd[0])
	assert.InDelta(t, -0.5, dd[1], 1e-12)
	assert.InDelta(t, -0.4, dd[2], 1e-12)
	assert.Equal(t, 0.0, dd[3]) // 1.32 is a new peak
	assert.InDelta(t, -0.1, dd[4], 1e-12)

	assert.InDelta(t, -0.5, MaxDrawdown(dd), 1e-12)
	assert.Equal(t, 2, LongestDrawdown(dd))
}

func TestMaxDrawdown_MonotoneSeries(t *testing.T) {
	dd := Drawdowns(makeReturns(0.0004, 252))
	assert.Equal(t, 0.0, MaxDrawdown(dd))
	assert.Equal(t, 0, LongestDrawdown(dd))
}

func TestRound(t *testing.T) {
	assert.Equal(t, 2.68, Round(2.675, 2))
	assert.Equal(t, -1.01, Round(-1.005, 2))
	assert.Equal(t, 0.0, Round(math.NaN(), 2))
	assert.Equal(t, 0.0, Round(math.Inf(1), 2))
	assert.Equal(t, 10.6, Pct(0.10603, 1))
}
