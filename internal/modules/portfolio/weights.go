// Package portfolio derives current holding weights from positions and the
// last aligned prices.
package portfolio

import (
	"math"

	"github.com/aristath/folio/internal/domain"
	"github.com/aristath/folio/internal/modules/timeseries"
)

// WeightVector maps symbol to a non-negative weight. It sums to 1 when the
// portfolio has value and is empty otherwise.
type WeightVector map[string]float64

// CurrentWeights values each position at the last aligned price of its
// symbol and normalizes by the total. Positions whose symbol has no aligned
// data, or with a non-positive quantity, carry no weight. Repeated symbols
// are accumulated.
func CurrentWeights(positions []domain.Position, prices timeseries.AlignedPriceTable) WeightVector {
	values := make(map[string]float64)
	total := 0.0
	for _, p := range positions {
		if p.Quantity <= 0 {
			continue
		}
		last, ok := prices.Last(p.Symbol)
		if !ok || last <= 0 || math.IsNaN(last) {
			continue
		}
		v := p.Quantity * last
		values[p.Symbol] += v
		total += v
	}

	weights := make(WeightVector, len(values))
	if total <= 0 {
		return weights
	}
	for s, v := range values {
		weights[s] = v / total
	}
	return weights
}

// UniqueSymbols returns the distinct position symbols in first-seen order.
func UniqueSymbols(positions []domain.Position) []string {
	seen := make(map[string]struct{}, len(positions))
	out := make([]string, 0, len(positions))
	for _, p := range positions {
		if p.Symbol == "" {
			continue
		}
		if _, ok := seen[p.Symbol]; ok {
			continue
		}
		seen[p.Symbol] = struct{}{}
		out = append(out, p.Symbol)
	}
	return out
}
