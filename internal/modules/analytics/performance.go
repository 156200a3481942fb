package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/aristath/folio/internal/modules/timeseries"
	"github.com/aristath/folio/pkg/formulas"
)

// MonthLabel formats calendar months in monthly return output ("Jan 24").
const MonthLabel = "Jan 06"

// Histogram range and bin width for the return distribution, in percent.
const (
	distributionMin   = -4.0
	distributionMax   = 4.0
	distributionWidth = 0.2
	distributionBins  = 40
)

// BuildPerformance returns one point per common date with the growth index
// (100 = start of window) and cumulative return of both series.
func BuildPerformance(portfolio, benchmark timeseries.ReturnSeries) []PerformancePoint {
	p, b := timeseries.Intersect(portfolio, benchmark)
	pg := formulas.GrowthIndex(p.Values)
	bg := formulas.GrowthIndex(b.Values)

	out := make([]PerformancePoint, p.Len())
	for i, d := range p.Dates {
		out[i] = PerformancePoint{
			Date:            d.Format(timeseries.DateLayout),
			Portfolio:       formulas.Round(pg[i]*100, 2),
			Benchmark:       formulas.Round(bg[i]*100, 2),
			PortfolioReturn: formulas.Pct(pg[i]-1, 2),
			BenchmarkReturn: formulas.Pct(bg[i]-1, 2),
		}
	}
	return out
}

// BuildMonthlyReturns compounds both series per calendar month. A month the
// benchmark does not cover reports 0 for it.
func BuildMonthlyReturns(portfolio, benchmark timeseries.ReturnSeries) []MonthlyReturn {
	pm := timeseries.Monthly(portfolio)
	bm := make(map[time.Time]float64)
	for _, m := range timeseries.Monthly(benchmark) {
		bm[m.Month] = m.Return
	}

	out := make([]MonthlyReturn, len(pm))
	for i, m := range pm {
		out[i] = MonthlyReturn{
			Month:     m.Month.Format(MonthLabel),
			Portfolio: formulas.Pct(m.Return, 2),
			Benchmark: formulas.Pct(bm[m.Month], 2),
		}
	}
	return out
}

// BuildReturnDistribution buckets daily returns (in percent) into 0.2%-wide
// bins over [-4%, 4%]. The last bin includes its right edge; values outside
// the range are not counted.
func BuildReturnDistribution(portfolio timeseries.ReturnSeries) []DistributionBin {
	edges := make([]float64, distributionBins+1)
	for i := range edges {
		edges[i] = distributionMin + float64(i)*distributionWidth
	}

	counts := make([]int, distributionBins)
	for _, r := range portfolio.Values {
		v := r * 100
		if v < edges[0] || v > edges[distributionBins] {
			continue
		}
		idx := sort.Search(len(edges), func(i int) bool { return edges[i] > v }) - 1
		if idx >= distributionBins {
			idx = distributionBins - 1
		}
		counts[idx]++
	}

	out := make([]DistributionBin, distributionBins)
	for i := range out {
		center := (edges[i] + edges[i+1]) / 2
		out[i] = DistributionBin{Bin: fmt.Sprintf("%.1f%%", center), Frequency: counts[i]}
	}
	return out
}
