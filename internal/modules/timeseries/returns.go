package timeseries

import (
	"time"
)

// ReturnSeries is a date-indexed sequence of simple periodic returns.
type ReturnSeries struct {
	Dates  []time.Time
	Values []float64
}

// Len returns the number of observations.
func (s ReturnSeries) Len() int {
	return len(s.Values)
}

// Zeros returns a series of zero returns on the given dates.
func Zeros(dates []time.Time) ReturnSeries {
	return ReturnSeries{Dates: dates, Values: make([]float64, len(dates))}
}

// ReturnTable holds one return column per symbol on a shared date index,
// which starts at the second row of the source price table.
type ReturnTable struct {
	Dates   []time.Time
	Symbols []string
	columns map[string][]float64
}

// Returns computes p[t]/p[t-1]-1 for every column. A non-positive previous
// price yields a zero return.
func Returns(table AlignedPriceTable) ReturnTable {
	out := ReturnTable{
		Symbols: table.Symbols,
		columns: make(map[string][]float64, len(table.Symbols)),
	}
	if table.Len() < 2 {
		out.Dates = []time.Time{}
		for _, symbol := range table.Symbols {
			out.columns[symbol] = []float64{}
		}
		return out
	}

	out.Dates = table.Dates[1:]
	for _, symbol := range table.Symbols {
		prices := table.columns[symbol]
		rets := make([]float64, len(prices)-1)
		for i := 1; i < len(prices); i++ {
			if prices[i-1] > 0 {
				rets[i-1] = prices[i]/prices[i-1] - 1
			}
		}
		out.columns[symbol] = rets
	}
	return out
}

// Len returns the number of return rows.
func (t ReturnTable) Len() int {
	return len(t.Dates)
}

// Column returns the return column of symbol.
func (t ReturnTable) Column(symbol string) ([]float64, bool) {
	col, ok := t.columns[symbol]
	return col, ok
}

// Series returns the returns of symbol as a standalone series.
func (t ReturnTable) Series(symbol string) (ReturnSeries, bool) {
	col, ok := t.columns[symbol]
	if !ok {
		return ReturnSeries{}, false
	}
	return ReturnSeries{Dates: t.Dates, Values: col}, true
}

// Weighted returns sum_s w_s * r_s per date over the weighted symbols present
// in the table.
func (t ReturnTable) Weighted(weights map[string]float64) ReturnSeries {
	values := make([]float64, len(t.Dates))
	for symbol, w := range weights {
		col, ok := t.columns[symbol]
		if !ok || w == 0 {
			continue
		}
		for i, r := range col {
			values[i] += w * r
		}
	}
	return ReturnSeries{Dates: t.Dates, Values: values}
}

// Intersect restricts both series to the dates they have in common.
func Intersect(a, b ReturnSeries) (ReturnSeries, ReturnSeries) {
	inB := make(map[time.Time]float64, len(b.Dates))
	for i, d := range b.Dates {
		inB[d] = b.Values[i]
	}

	outA := ReturnSeries{Dates: []time.Time{}, Values: []float64{}}
	outB := ReturnSeries{Dates: []time.Time{}, Values: []float64{}}
	for i, d := range a.Dates {
		v, ok := inB[d]
		if !ok {
			continue
		}
		outA.Dates = append(outA.Dates, d)
		outA.Values = append(outA.Values, a.Values[i])
		outB.Dates = append(outB.Dates, d)
		outB.Values = append(outB.Values, v)
	}
	return outA, outB
}
