package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/google/subcommands"

	"github.com/aristath/folio/internal/utils"
)

type analyzeCmd struct {
	positions string
	benchmark string
	output
}

func (*analyzeCmd) Name() string     { return "analyze" }
func (*analyzeCmd) Synopsis() string { return "print risk and performance analytics for a portfolio" }
func (*analyzeCmd) Usage() string {
	return `folio analyze -p <SYM:QTY[:COST],...> [-b <benchmark>] [-json] [-raw]

  Computes the analytics report of the given holdings against a benchmark
  (defaults to FOLIO_DEFAULT_BENCHMARK) from the imported price history.
`
}

func (c *analyzeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.positions, "p", "", "holdings as SYMBOL:QTY[:COST], comma separated")
	f.StringVar(&c.benchmark, "b", "", "benchmark symbol")
	c.output.setFlags(f)
}

func (c *analyzeCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	positions, err := utils.ParsePositions(c.positions)
	if err != nil {
		return fail(err, subcommands.ExitUsageError)
	}

	container, cfg, err := open()
	if err != nil {
		return fail(err, subcommands.ExitFailure)
	}
	defer container.Close()

	benchmark := strings.ToUpper(strings.TrimSpace(c.benchmark))
	if benchmark == "" {
		benchmark = cfg.DefaultBenchmark
	}

	report, err := container.AnalyticsService.ComputeAnalytics(ctx, positions, benchmark)
	if err != nil {
		return fail(err, subcommands.ExitFailure)
	}

	if err := c.print(report, AnalyticsMarkdown(report, benchmark)); err != nil {
		return fail(fmt.Errorf("failed to print report: %w", err), subcommands.ExitFailure)
	}
	return subcommands.ExitSuccess
}
