package formulas

import (
	"math"

	"github.com/shopspring/decimal"
)

// Round rounds v to places decimals, half away from zero. Non-finite input
// rounds to 0 so that reported figures are always valid JSON numbers.
func Round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

// Pct converts a fraction to a percentage rounded to places decimals.
func Pct(v float64, places int32) float64 {
	return Round(v*100, places)
}
