// Package analytics computes risk metrics, performance curves, drawdowns,
// rolling statistics, allocation breakdowns and correlations for a portfolio
// return series measured against a benchmark.
package analytics

import (
	"math"

	"github.com/aristath/folio/internal/modules/timeseries"
	"github.com/aristath/folio/pkg/formulas"
)

// MinReturnRows is the fewest common return observations metrics need.
const MinReturnRows = 5

var sqrtYear = math.Sqrt(formulas.TradingDaysPerYear)

// ComputeRiskMetrics derives the full metric set from daily portfolio and
// benchmark returns, restricted to their common dates.
func ComputeRiskMetrics(portfolio, benchmark timeseries.ReturnSeries) RiskMetrics {
	p, b := timeseries.Intersect(portfolio, benchmark)
	if p.Len() < MinReturnRows {
		return EmptyRiskMetrics()
	}
	r, br := p.Values, b.Values

	annReturn := formulas.Mean(r) * formulas.TradingDaysPerYear
	annVol := formulas.AnnualizedVolatility(r)
	cagr := formulas.CalculateCAGR(r)

	sharpe := 0.0
	if !formulas.IsZero(annVol) {
		sharpe = annReturn / annVol
	}

	// A single negative day has no sample deviation; use overall volatility.
	downsideStd := annVol
	if negatives := formulas.Negatives(r); len(negatives) > 1 {
		downsideStd = formulas.StdDev(negatives) * sqrtYear
	}
	sortino := 0.0
	if !formulas.IsZero(downsideStd) {
		sortino = annReturn / downsideStd
	}

	drawdowns := formulas.Drawdowns(r)
	maxDD := formulas.MaxDrawdown(drawdowns) * 100
	calmar := 0.0
	if !formulas.IsZero(maxDD) {
		calmar = cagr * 100 / math.Abs(maxDD)
	}

	benchVar := formulas.Variance(br)
	beta := 1.0
	if !formulas.IsZero(benchVar) {
		beta = formulas.Covariance(r, br) / benchVar
	}
	alpha := (annReturn - beta*formulas.Mean(br)*formulas.TradingDaysPerYear) * 100

	tracking := formulas.Subtract(r, br)
	te := formulas.AnnualizedVolatility(tracking)
	ir := 0.0
	if !formulas.IsZero(te) {
		ir = formulas.Mean(tracking) * formulas.TradingDaysPerYear / te
	}

	rSquared := 0.0
	if !formulas.IsZero(benchVar) {
		c := formulas.Correlation(r, br)
		rSquared = c * c
	}

	var95, cvar95 := tailRisk(r, 5)
	var99, cvar99 := tailRisk(r, 1)

	monthly := timeseries.Monthly(p)
	bestMonth, worstMonth, positiveMonths := monthlyStats(monthly)

	wins := 0
	for _, v := range r {
		if v > 0 {
			wins++
		}
	}
	winRate := float64(wins) / float64(len(r)) * 100

	return RiskMetrics{
		AnnualizedReturn:     formulas.Pct(cagr, 2),
		AnnualizedVolatility: formulas.Pct(annVol, 2),
		SharpeRatio:          formulas.Round(sharpe, 2),
		SortinoRatio:         formulas.Round(sortino, 2),
		CalmarRatio:          formulas.Round(calmar, 2),
		InformationRatio:     formulas.Round(ir, 2),
		MaxDrawdown:          formulas.Round(maxDD, 2),
		MaxDrawdownDuration:  formulas.LongestDrawdown(drawdowns),
		Beta:                 formulas.Round(beta, 2),
		Alpha:                formulas.Round(alpha, 2),
		TrackingError:        formulas.Pct(te, 2),
		RSquared:             formulas.Round(rSquared, 2),
		VaR95:                formulas.Pct(var95, 2),
		VaR99:                formulas.Pct(var99, 2),
		CVaR95:               formulas.Pct(cvar95, 2),
		CVaR99:               formulas.Pct(cvar99, 2),
		DownsideDeviation:    formulas.Pct(downsideStd, 2),
		Skewness:             formulas.Round(formulas.Skewness(r), 2),
		Kurtosis:             formulas.Round(formulas.ExcessKurtosis(r), 2),
		BestDay:              formulas.Pct(formulas.Max(r), 2),
		WorstDay:             formulas.Pct(formulas.Min(r), 2),
		BestMonth:            formulas.Pct(bestMonth, 2),
		WorstMonth:           formulas.Pct(worstMonth, 2),
		PositiveMonths:       positiveMonths,
		WinRate:              formulas.Round(winRate, 1),
	}
}

// tailRisk returns the historical VaR at percentile q and the mean of the
// returns at or below it (the VaR itself when that tail is empty).
func tailRisk(r []float64, q float64) (float64, float64) {
	v := formulas.Percentile(r, q)
	cv, ok := formulas.TailMean(r, v)
	if !ok {
		cv = v
	}
	return v, cv
}

func monthlyStats(monthly []timeseries.MonthlyReturn) (best, worst float64, positivePct int) {
	if len(monthly) == 0 {
		return 0, 0, 0
	}
	values := make([]float64, len(monthly))
	positive := 0
	for i, m := range monthly {
		values[i] = m.Return
		if m.Return > 0 {
			positive++
		}
	}
	return formulas.Max(values), formulas.Min(values), int(float64(positive) / float64(len(monthly)) * 100)
}
