package portfolio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/folio/internal/domain"
	"github.com/aristath/folio/internal/modules/timeseries"
)

func priceTable(cols map[string][]float64) timeseries.AlignedPriceTable {
	series := make(map[string]timeseries.PriceSeries, len(cols))
	for symbol, prices := range cols {
		points := make([]timeseries.PricePoint, len(prices))
		for i, p := range prices {
			points[i] = timeseries.PricePoint{
				Date:  time.Date(2024, 1, 1+i, 0, 0, 0, 0, time.UTC),
				Close: p,
			}
		}
		series[symbol] = timeseries.PriceSeries{Symbol: symbol, Points: points}
	}
	return timeseries.Align(series)
}

func TestCurrentWeights(t *testing.T) {
	table := priceTable(map[string][]float64{
		"AAA": {10, 20},
		"BBB": {5, 10},
	})
	positions := []domain.Position{
		{Symbol: "AAA", Quantity: 1},
		{Symbol: "BBB", Quantity: 2},
		{Symbol: "AAA", Quantity: 1}, // accumulated
		{Symbol: "ZZZ", Quantity: 100},
	}

	w := CurrentWeights(positions, table)

	// AAA: 2*20 = 40, BBB: 2*10 = 20
	require.Len(t, w, 2)
	assert.InDelta(t, 2.0/3.0, w["AAA"], 1e-12)
	assert.InDelta(t, 1.0/3.0, w["BBB"], 1e-12)
	assert.NotContains(t, w, "ZZZ")
}

func TestCurrentWeights_NoValue(t *testing.T) {
	table := priceTable(map[string][]float64{"AAA": {10, 20}})

	w := CurrentWeights([]domain.Position{{Symbol: "AAA", Quantity: 0}}, table)
	assert.Empty(t, w)

	assert.Empty(t, CurrentWeights(nil, table))
}

func TestUniqueSymbols(t *testing.T) {
	positions := []domain.Position{
		{Symbol: "BBB"}, {Symbol: "AAA"}, {Symbol: "BBB"}, {Symbol: ""},
	}
	assert.Equal(t, []string{"BBB", "AAA"}, UniqueSymbols(positions))
}
