// Package formulas holds the statistical primitives shared by the analytics
// and optimization modules. Inputs are plain float64 slices of daily values.
package formulas

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// TradingDaysPerYear is the annualization factor for daily series.
const TradingDaysPerYear = 252

// Epsilon is the tolerance below which a volatility-like denominator counts as zero.
const Epsilon = 1e-12

// IsZero reports whether v is within Epsilon of zero.
func IsZero(v float64) bool {
	return math.Abs(v) < Epsilon
}

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// StdDev calculates the sample standard deviation (n-1 denominator).
// Fewer than two observations yield 0.
func StdDev(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	return stat.StdDev(data, nil)
}

// Variance calculates the sample variance of a slice of float64 values
func Variance(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	return stat.Variance(data, nil)
}

// AnnualizedVolatility calculates annualized volatility from daily returns
// Formula: Std Dev of Daily Returns * sqrt(252 trading days)
func AnnualizedVolatility(dailyReturns []float64) float64 {
	return StdDev(dailyReturns) * math.Sqrt(TradingDaysPerYear)
}

// Correlation calculates the Pearson correlation coefficient between two datasets.
// Undefined correlations (mismatched lengths, zero variance) are reported as 0.
func Correlation(x, y []float64) float64 {
	if len(x) < 2 || len(x) != len(y) {
		return 0
	}
	if IsZero(StdDev(x)) || IsZero(StdDev(y)) {
		return 0
	}
	c := stat.Correlation(x, y, nil)
	if math.IsNaN(c) || math.IsInf(c, 0) {
		return 0
	}
	return c
}

// Covariance calculates the sample covariance between two datasets
func Covariance(x, y []float64) float64 {
	if len(x) < 2 || len(x) != len(y) {
		return 0
	}
	return stat.Covariance(x, y, nil)
}

// Skewness returns the bias-corrected sample skewness, or 0 when it is
// undefined (fewer than 3 points or zero spread).
func Skewness(data []float64) float64 {
	if len(data) < 3 || IsZero(StdDev(data)) {
		return 0
	}
	return finiteOrZero(stat.Skew(data, nil))
}

// ExcessKurtosis returns the bias-corrected sample excess kurtosis, or 0 when
// it is undefined (fewer than 4 points or zero spread).
func ExcessKurtosis(data []float64) float64 {
	if len(data) < 4 || IsZero(StdDev(data)) {
		return 0
	}
	return finiteOrZero(stat.ExKurtosis(data, nil))
}

// Percentile returns the p-th percentile (0..100) using linear interpolation
// between the closest ranks, the same convention numpy uses by default.
func Percentile(data []float64, p float64) float64 {
	if len(data) == 0 {
		return 0
	}
	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}

	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// TailMean returns the mean of the values at or below threshold and whether
// any value qualified.
func TailMean(data []float64, threshold float64) (float64, bool) {
	sum := 0.0
	count := 0
	for _, v := range data {
		if v <= threshold {
			sum += v
			count++
		}
	}
	if count == 0 {
		return 0, false
	}
	return sum / float64(count), true
}

// Negatives returns the strictly negative values of data, in order.
func Negatives(data []float64) []float64 {
	out := make([]float64, 0, len(data))
	for _, v := range data {
		if v < 0 {
			out = append(out, v)
		}
	}
	return out
}

// Max returns the largest value, or 0 for an empty slice.
func Max(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	m := data[0]
	for _, v := range data[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// Min returns the smallest value, or 0 for an empty slice.
func Min(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	m := data[0]
	for _, v := range data[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

// Subtract returns a-b elementwise over the shorter of the two slices.
func Subtract(a, b []float64) []float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = a[i] - b[i]
	}
	return out
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
