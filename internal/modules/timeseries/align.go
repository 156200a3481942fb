package timeseries

import (
	"math"
	"sort"
	"time"
)

// MinAlignedRows is the fewest aligned price rows a pipeline will work with.
const MinAlignedRows = 10

// AlignedPriceTable holds one price column per symbol on a shared date index.
// Every column has exactly len(Dates) finite values.
type AlignedPriceTable struct {
	Dates   []time.Time
	Symbols []string
	columns map[string][]float64
}

// Align merges the series onto the union of their dates, forward-fills each
// column and drops every row that still has a gap. Series without any
// observation are left out entirely.
func Align(series map[string]PriceSeries) AlignedPriceTable {
	symbols := make([]string, 0, len(series))
	dateSet := make(map[time.Time]struct{})
	for symbol, s := range series {
		if s.Len() == 0 {
			continue
		}
		symbols = append(symbols, symbol)
		for _, p := range s.Points {
			dateSet[Day(p.Date)] = struct{}{}
		}
	}
	sort.Strings(symbols)

	dates := make([]time.Time, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	dateIndex := make(map[time.Time]int, len(dates))
	for i, d := range dates {
		dateIndex[d] = i
	}

	// Raw columns with NaN for missing dates, then forward-fill.
	raw := make(map[string][]float64, len(symbols))
	for _, symbol := range symbols {
		col := make([]float64, len(dates))
		for i := range col {
			col[i] = math.NaN()
		}
		for _, p := range series[symbol].Points {
			col[dateIndex[Day(p.Date)]] = p.Value()
		}
		forwardFill(col)
		raw[symbol] = col
	}

	keep := make([]int, 0, len(dates))
	for i := range dates {
		complete := true
		for _, symbol := range symbols {
			v := raw[symbol][i]
			if math.IsNaN(v) || math.IsInf(v, 0) {
				complete = false
				break
			}
		}
		if complete {
			keep = append(keep, i)
		}
	}

	table := AlignedPriceTable{
		Dates:   make([]time.Time, len(keep)),
		Symbols: symbols,
		columns: make(map[string][]float64, len(symbols)),
	}
	for k, i := range keep {
		table.Dates[k] = dates[i]
	}
	for _, symbol := range symbols {
		col := make([]float64, len(keep))
		for k, i := range keep {
			col[k] = raw[symbol][i]
		}
		table.columns[symbol] = col
	}
	return table
}

// forwardFill replaces NaNs with the previous valid value; leading NaNs stay.
func forwardFill(col []float64) {
	last := math.NaN()
	for i, v := range col {
		if math.IsNaN(v) {
			col[i] = last
			continue
		}
		last = v
	}
}

// Len returns the number of aligned rows.
func (t AlignedPriceTable) Len() int {
	return len(t.Dates)
}

// Has reports whether symbol is one of the table's columns.
func (t AlignedPriceTable) Has(symbol string) bool {
	_, ok := t.columns[symbol]
	return ok
}

// Column returns the price column of symbol.
func (t AlignedPriceTable) Column(symbol string) ([]float64, bool) {
	col, ok := t.columns[symbol]
	return col, ok
}

// Last returns the last aligned price of symbol.
func (t AlignedPriceTable) Last(symbol string) (float64, bool) {
	col, ok := t.columns[symbol]
	if !ok || len(col) == 0 {
		return 0, false
	}
	return col[len(col)-1], true
}

// Restrict keeps only the listed symbols that exist in the table, in the
// order given. Rows are shared with the receiver.
func (t AlignedPriceTable) Restrict(symbols []string) AlignedPriceTable {
	out := AlignedPriceTable{
		Dates:   t.Dates,
		Symbols: make([]string, 0, len(symbols)),
		columns: make(map[string][]float64, len(symbols)),
	}
	for _, symbol := range symbols {
		col, ok := t.columns[symbol]
		if !ok {
			continue
		}
		if _, dup := out.columns[symbol]; dup {
			continue
		}
		out.Symbols = append(out.Symbols, symbol)
		out.columns[symbol] = col
	}
	return out
}
