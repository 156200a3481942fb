package timeseries

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/folio/internal/domain"
)

func day(n int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func series(symbol string, start int, prices ...float64) PriceSeries {
	points := make([]PricePoint, len(prices))
	for i, p := range prices {
		points[i] = PricePoint{Date: day(start + i), Close: p}
	}
	return PriceSeries{Symbol: symbol, Points: points}
}

func TestPricePoint_Value(t *testing.T) {
	adj := 99.5
	zero := 0.0

	assert.Equal(t, 99.5, PricePoint{Close: 100, AdjustedClose: &adj}.Value())
	assert.Equal(t, 100.0, PricePoint{Close: 100, AdjustedClose: &zero}.Value())
	assert.Equal(t, 100.0, PricePoint{Close: 100}.Value())
}

func TestFromBars_SortsAndDeduplicates(t *testing.T) {
	bars := []domain.PriceBar{
		{Date: day(2).Add(16 * time.Hour), Close: 12},
		{Date: day(0), Close: 10},
		{Date: day(1), Close: 11},
		{Date: day(2), Close: 13},
	}

	s := FromBars("AAA", bars)

	require.Equal(t, 3, s.Len())
	assert.Equal(t, day(0), s.Points[0].Date)
	assert.Equal(t, day(2), s.Points[2].Date)
	assert.Equal(t, 13.0, s.Points[2].Close)
}

func TestAlign_ForwardFillsAndDropsLeadingRows(t *testing.T) {
	a := series("AAA", 0, 10, 11, 12, 13)
	// BBB starts a day later and misses day 2
	b := PriceSeries{Symbol: "BBB", Points: []PricePoint{
		{Date: day(1), Close: 20},
		{Date: day(3), Close: 22},
	}}

	table := Align(map[string]PriceSeries{"AAA": a, "BBB": b})

	require.Equal(t, 3, table.Len())
	assert.Equal(t, []string{"AAA", "BBB"}, table.Symbols)
	assert.Equal(t, []time.Time{day(1), day(2), day(3)}, table.Dates)

	colB, ok := table.Column("BBB")
	require.True(t, ok)
	assert.Equal(t, []float64{20, 20, 22}, colB)

	colA, _ := table.Column("AAA")
	assert.Equal(t, []float64{11, 12, 13}, colA)
}

func TestAlign_SkipsEmptySeries(t *testing.T) {
	table := Align(map[string]PriceSeries{
		"AAA": series("AAA", 0, 1, 2, 3),
		"GAP": {Symbol: "GAP"},
	})

	assert.Equal(t, []string{"AAA"}, table.Symbols)
	assert.False(t, table.Has("GAP"))
	assert.Equal(t, 3, table.Len())
}

func TestAlign_NoOverlapLeavesNoRows(t *testing.T) {
	table := Align(map[string]PriceSeries{})
	assert.Zero(t, table.Len())
	assert.Empty(t, table.Symbols)
}

func TestAlign_Idempotent(t *testing.T) {
	a := series("AAA", 0, 10, 11, 12, 13, 14)
	b := PriceSeries{Symbol: "BBB", Points: []PricePoint{
		{Date: day(1), Close: 20},
		{Date: day(4), Close: 21},
	}}

	first := Align(map[string]PriceSeries{"AAA": a, "BBB": b})
	realigned := make(map[string]PriceSeries, len(first.Symbols))
	for _, symbol := range first.Symbols {
		col, _ := first.Column(symbol)
		points := make([]PricePoint, len(col))
		for i, v := range col {
			points[i] = PricePoint{Date: first.Dates[i], Close: v}
		}
		realigned[symbol] = PriceSeries{Symbol: symbol, Points: points}
	}
	second := Align(realigned)

	assert.Equal(t, first.Dates, second.Dates)
	assert.Equal(t, first.Symbols, second.Symbols)
	for _, symbol := range first.Symbols {
		c1, _ := first.Column(symbol)
		c2, _ := second.Column(symbol)
		assert.Equal(t, c1, c2, symbol)
	}
}

func TestAlign_ColumnsAreFinite(t *testing.T) {
	table := Align(map[string]PriceSeries{
		"AAA": series("AAA", 0, 1, math.NaN(), 3),
		"BBB": series("BBB", 0, 4, 5, 6),
	})

	colA, _ := table.Column("AAA")
	for _, v := range colA {
		assert.False(t, math.IsNaN(v))
	}
	assert.Equal(t, []float64{1, 1, 3}, colA)
}

func TestAlignedPriceTable_RestrictAndLast(t *testing.T) {
	table := Align(map[string]PriceSeries{
		"AAA": series("AAA", 0, 1, 2, 3),
		"BBB": series("BBB", 0, 4, 5, 6),
	})

	r := table.Restrict([]string{"BBB", "ZZZ", "BBB"})
	assert.Equal(t, []string{"BBB"}, r.Symbols)

	last, ok := table.Last("AAA")
	assert.True(t, ok)
	assert.Equal(t, 3.0, last)

	_, ok = table.Last("ZZZ")
	assert.False(t, ok)
}
