package cli

import (
	"fmt"
	"strings"

	"github.com/aristath/folio/internal/modules/analytics"
	"github.com/aristath/folio/internal/modules/optimization"
)

// AnalyticsMarkdown renders the headline sections of an analytics report.
func AnalyticsMarkdown(r *analytics.Report, benchmark string) string {
	var b strings.Builder
	b.WriteString("# Portfolio analytics\n\n")
	if r == nil || len(r.PerformanceData) == 0 {
		b.WriteString("_Not enough price history to analyze this portfolio._\n")
		return b.String()
	}

	first, last := r.PerformanceData[0], r.PerformanceData[len(r.PerformanceData)-1]
	fmt.Fprintf(&b, "%s to %s, benchmark **%s**\n\n", first.Date, last.Date, benchmark)
	fmt.Fprintf(&b, "Cumulative return: **%.2f%%** (benchmark %.2f%%)\n\n", last.PortfolioReturn, last.BenchmarkReturn)

	m := r.RiskMetrics
	b.WriteString("## Risk metrics\n\n")
	b.WriteString("| Metric | Value |\n|---|---:|\n")
	rows := []struct {
		name  string
		value string
	}{
		{"Annualized return", pctCell(m.AnnualizedReturn)},
		{"Annualized volatility", pctCell(m.AnnualizedVolatility)},
		{"Sharpe ratio", numCell(m.SharpeRatio)},
		{"Sortino ratio", numCell(m.SortinoRatio)},
		{"Calmar ratio", numCell(m.CalmarRatio)},
		{"Information ratio", numCell(m.InformationRatio)},
		{"Max drawdown", pctCell(m.MaxDrawdown)},
		{"Max drawdown duration", fmt.Sprintf("%d days", m.MaxDrawdownDuration)},
		{"Beta", numCell(m.Beta)},
		{"Alpha", pctCell(m.Alpha)},
		{"Tracking error", pctCell(m.TrackingError)},
		{"R²", numCell(m.RSquared)},
		{"VaR 95% / 99%", pctCell(m.VaR95) + " / " + pctCell(m.VaR99)},
		{"CVaR 95% / 99%", pctCell(m.CVaR95) + " / " + pctCell(m.CVaR99)},
		{"Best / worst day", pctCell(m.BestDay) + " / " + pctCell(m.WorstDay)},
		{"Best / worst month", pctCell(m.BestMonth) + " / " + pctCell(m.WorstMonth)},
		{"Positive months", fmt.Sprintf("%d", m.PositiveMonths)},
		{"Win rate", pctCell(m.WinRate)},
	}
	for _, row := range rows {
		fmt.Fprintf(&b, "| %s | %s |\n", row.name, row.value)
	}

	allocation(&b, "Allocation by asset class", r.AllocationByClass)
	allocation(&b, "Allocation by sector", r.AllocationBySector)
	allocation(&b, "Allocation by country", r.AllocationByCountry)

	if len(r.MonthlyReturns) > 0 {
		b.WriteString("\n## Monthly returns\n\n| Month | Portfolio | Benchmark |\n|---|---:|---:|\n")
		for _, mr := range r.MonthlyReturns {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", mr.Month, pctCell(mr.Portfolio), pctCell(mr.Benchmark))
		}
	}

	if n := len(r.CorrelationMatrix.Labels); n > 1 {
		b.WriteString("\n## Correlation\n\n| |")
		for _, l := range r.CorrelationMatrix.Labels {
			fmt.Fprintf(&b, " %s |", l)
		}
		b.WriteString("\n|---|" + strings.Repeat("---:|", n) + "\n")
		for i, row := range r.CorrelationMatrix.Data {
			fmt.Fprintf(&b, "| %s |", r.CorrelationMatrix.Labels[i])
			for _, v := range row {
				fmt.Fprintf(&b, " %s |", numCell(v))
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

func allocation(b *strings.Builder, title string, items []analytics.AllocationItem) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n## %s\n\n| Name | Weight |\n|---|---:|\n", title)
	for _, it := range items {
		fmt.Fprintf(b, "| %s | %s |\n", it.Name, pctCell(it.Value))
	}
}

// OptimizationMarkdown renders a single-objective optimization outcome.
func OptimizationMarkdown(out optimization.Outcome, objective optimization.Objective) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Optimization (%s)\n\n", objective)
	if out.Failed() || out.Result == nil {
		fmt.Fprintf(&b, "_%s_\n", out.Error)
		return b.String()
	}

	fmt.Fprintf(&b, "Expected annual return **%s**, volatility **%s**, Sharpe **%s**\n\n",
		pctCell(out.ExpectedAnnualReturn), pctCell(out.AnnualVolatility), numCell(out.SharpeRatio))
	b.WriteString("| Symbol | Current | Optimized | Change |\n|---|---:|---:|---:|\n")
	for _, row := range out.WeightsTable {
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", row.Symbol, pctCell(row.Current), pctCell(row.Optimized), signedPct(row.Diff))
	}
	return b.String()
}

// FullOptimizationMarkdown renders the current, minimum volatility and
// maximum Sharpe portfolios side by side.
func FullOptimizationMarkdown(out optimization.FullOutcome) string {
	var b strings.Builder
	b.WriteString("# Optimization overview\n\n")
	if out.Failed() || out.FullData == nil {
		fmt.Fprintf(&b, "_%s_\n", out.Error)
		return b.String()
	}

	m := out.Metrics
	b.WriteString("| Portfolio | Return | Risk | Sharpe |\n|---|---:|---:|---:|\n")
	fmt.Fprintf(&b, "| Current | %s | %s | %s |\n", pctCell(m.Current.Return), pctCell(m.Current.Risk), numCell(m.Current.Sharpe))
	fmt.Fprintf(&b, "| Min volatility | %s | %s | %s |\n", pctCell(m.MinVol.Return), pctCell(m.MinVol.Risk), numCell(m.MinVol.Sharpe))
	fmt.Fprintf(&b, "| Max Sharpe | %s | %s | %s |\n", pctCell(m.MaxSharpe.Return), pctCell(m.MaxSharpe.Risk), numCell(m.MaxSharpe.Sharpe))

	b.WriteString("\n## Weights\n\n| Symbol | Name | Current | Min vol | Max Sharpe | Change |\n|---|---|---:|---:|---:|---:|\n")
	for _, row := range out.WeightsTable {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
			row.Symbol, row.Name, pctCell(row.Current), pctCell(row.MinVol), pctCell(row.MaxSharpe), signedPct(row.Diff))
	}

	if len(out.EfficientFrontier) > 0 {
		b.WriteString("\n")
		b.WriteString(strings.TrimPrefix(FrontierMarkdown(out.EfficientFrontier), "# Efficient frontier\n\n"))
	}
	return b.String()
}

// FrontierMarkdown renders frontier points as a table.
func FrontierMarkdown(points []optimization.FrontierPoint) string {
	var b strings.Builder
	b.WriteString("# Efficient frontier\n\n")
	if len(points) == 0 {
		b.WriteString("_No frontier could be computed for these holdings._\n")
		return b.String()
	}
	b.WriteString("| # | Risk | Return |\n|---:|---:|---:|\n")
	for i, p := range points {
		fmt.Fprintf(&b, "| %d | %s | %s |\n", i+1, pctCell(p.Risk), pctCell(p.Return))
	}
	return b.String()
}

func pctCell(v float64) string { return fmt.Sprintf("%.2f%%", v) }

func signedPct(v float64) string { return fmt.Sprintf("%+.2f%%", v) }

func numCell(v float64) string { return fmt.Sprintf("%.2f", v) }
