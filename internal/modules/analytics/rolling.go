package analytics

import (
	"github.com/aristath/folio/internal/modules/timeseries"
	"github.com/aristath/folio/pkg/formulas"
)

// DefaultRollingWindow is the rolling statistics window in trading days.
const DefaultRollingWindow = 60

// rollingSampleStep keeps every n-th valid rolling value.
const rollingSampleStep = 5

// BuildRollingVolatility computes annualized volatility (percent) over a
// trailing window for both series and keeps every 5th complete window.
func BuildRollingVolatility(portfolio, benchmark timeseries.ReturnSeries, window int) []RollingVolatilityPoint {
	p, b := timeseries.Intersect(portfolio, benchmark)
	out := []RollingVolatilityPoint{}
	if window < 2 || p.Len() < window {
		return out
	}

	for k, end := 0, window; end <= p.Len(); k, end = k+1, end+1 {
		if k%rollingSampleStep != 0 {
			continue
		}
		start := end - window
		out = append(out, RollingVolatilityPoint{
			Date:      p.Dates[end-1].Format(timeseries.DateLayout),
			Portfolio: formulas.Pct(formulas.AnnualizedVolatility(p.Values[start:end]), 2),
			Benchmark: formulas.Pct(formulas.AnnualizedVolatility(b.Values[start:end]), 2),
		})
	}
	return out
}

// BuildRollingCorrelation computes the trailing-window correlation of the two
// series. Windows where either side is flat have no correlation and are
// dropped before every 5th remaining value is kept.
func BuildRollingCorrelation(portfolio, benchmark timeseries.ReturnSeries, window int) []RollingCorrelationPoint {
	p, b := timeseries.Intersect(portfolio, benchmark)
	out := []RollingCorrelationPoint{}
	if window < 2 || p.Len() < window {
		return out
	}

	valid := 0
	for end := window; end <= p.Len(); end++ {
		start := end - window
		pw, bw := p.Values[start:end], b.Values[start:end]
		if formulas.IsZero(formulas.StdDev(pw)) || formulas.IsZero(formulas.StdDev(bw)) {
			continue
		}
		if valid%rollingSampleStep == 0 {
			out = append(out, RollingCorrelationPoint{
				Date:        p.Dates[end-1].Format(timeseries.DateLayout),
				Correlation: formulas.Round(formulas.Correlation(pw, bw), 3),
			})
		}
		valid++
	}
	return out
}
