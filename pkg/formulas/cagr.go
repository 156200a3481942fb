package formulas

import "math"

// minYears keeps CAGR from blowing up on very short windows.
const minYears = 0.01

// TotalReturn compounds daily returns: (1+r1)*(1+r2)*...*(1+rN) - 1
func TotalReturn(dailyReturns []float64) float64 {
	growth := 1.0
	for _, r := range dailyReturns {
		growth *= 1 + r
	}
	return growth - 1
}

// CalculateCAGR calculates the compound annual growth rate of daily returns.
//
// Formula: (1+total)^(1/years) - 1 with years = max(N/252, 0.01).
// A total loss of 100% or more yields 0.
func CalculateCAGR(dailyReturns []float64) float64 {
	if len(dailyReturns) == 0 {
		return 0
	}
	total := TotalReturn(dailyReturns)
	if total <= -1 {
		return 0
	}
	years := math.Max(float64(len(dailyReturns))/TradingDaysPerYear, minYears)
	return math.Pow(1+total, 1/years) - 1
}

// AnnualizedFromPrices returns the compounded annual return implied by a
// price path: (last/first)^(252/periods) - 1, where periods = len(prices)-1.
// Paths that start or end at a non-positive price yield 0.
func AnnualizedFromPrices(prices []float64) float64 {
	if len(prices) < 2 || prices[0] <= 0 || prices[len(prices)-1] <= 0 {
		return 0
	}
	periods := float64(len(prices) - 1)
	return math.Pow(prices[len(prices)-1]/prices[0], TradingDaysPerYear/periods) - 1
}

// GrowthIndex returns the running product of (1+r) for each period.
func GrowthIndex(dailyReturns []float64) []float64 {
	out := make([]float64, len(dailyReturns))
	growth := 1.0
	for i, r := range dailyReturns {
		growth *= 1 + r
		out[i] = growth
	}
	return out
}
