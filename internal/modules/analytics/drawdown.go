package analytics

import (
	"github.com/aristath/folio/internal/modules/timeseries"
	"github.com/aristath/folio/pkg/formulas"
)

// BuildDrawdown returns the drawdown from the running peak and the cumulative
// return relative to the first day, both in percent, for every date.
func BuildDrawdown(portfolio timeseries.ReturnSeries) []DrawdownPoint {
	out := make([]DrawdownPoint, portfolio.Len())
	if portfolio.Len() == 0 {
		return out
	}

	cum := formulas.GrowthIndex(portfolio.Values)
	dd := formulas.Drawdowns(portfolio.Values)
	base := cum[0]

	for i, d := range portfolio.Dates {
		cumReturn := 0.0
		if base != 0 {
			cumReturn = cum[i]/base - 1
		}
		out[i] = DrawdownPoint{
			Date:      d.Format(timeseries.DateLayout),
			Drawdown:  formulas.Pct(dd[i], 2),
			CumReturn: formulas.Pct(cumReturn, 2),
		}
	}
	return out
}
