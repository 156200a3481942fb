package analytics

import (
	"sort"

	"github.com/aristath/folio/internal/domain"
	"github.com/aristath/folio/internal/modules/portfolio"
	"github.com/aristath/folio/pkg/formulas"
)

// Allocation attributes.
const (
	AttrAssetClass = "asset_class"
	AttrSector     = "sector"
	AttrCountry    = "country"
)

// AllocationPalette colours allocation slices by rank.
var AllocationPalette = []string{
	"#3b82f6", "#10b981", "#6366f1", "#f59e0b", "#ef4444",
	"#ec4899", "#8b5cf6", "#14b8a6", "#94a3b8", "#f97316",
}

// AggregateAllocation sums position weights per category of attr. Each
// position contributes its symbol's weight, so repeated symbols count once
// per position. Positions without a weight are skipped; instruments with no
// metadata or an empty attribute fall under "Unknown".
func AggregateAllocation(positions []domain.Position, weights portfolio.WeightVector, metadata map[string]domain.Instrument, attr string) []AllocationItem {
	totals := make(map[string]float64)
	for _, p := range positions {
		w, ok := weights[p.Symbol]
		if !ok {
			continue
		}
		key := domain.UnknownCategory
		if inst, found := metadata[p.Symbol]; found {
			key = inst.Attribute(attr)
		}
		totals[key] += w
	}

	names := make([]string, 0, len(totals))
	for name := range totals {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if totals[names[i]] != totals[names[j]] {
			return totals[names[i]] > totals[names[j]]
		}
		return names[i] < names[j]
	})

	out := make([]AllocationItem, len(names))
	for i, name := range names {
		out[i] = AllocationItem{
			Name:  name,
			Value: formulas.Pct(totals[name], 1),
			Color: AllocationPalette[i%len(AllocationPalette)],
		}
	}
	return out
}
