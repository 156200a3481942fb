package cli

import (
	"context"
	"flag"

	"github.com/google/subcommands"

	"github.com/aristath/folio/internal/utils"
)

type frontierCmd struct {
	positions string
	points    int
	output
}

func (*frontierCmd) Name() string     { return "frontier" }
func (*frontierCmd) Synopsis() string { return "trace the efficient frontier of a portfolio's holdings" }
func (*frontierCmd) Usage() string {
	return `folio frontier -p <SYM:QTY[:COST],...> [-n points] [-json] [-raw]

  Sweeps target returns between the minimum volatility portfolio and the best
  single asset, printing risk and return in percent.
`
}

func (c *frontierCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.positions, "p", "", "holdings as SYMBOL:QTY[:COST], comma separated")
	f.IntVar(&c.points, "n", 0, "number of frontier points (0 uses FOLIO_FRONTIER_POINTS)")
	c.output.setFlags(f)
}

func (c *frontierCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	positions, err := utils.ParsePositions(c.positions)
	if err != nil {
		return fail(err, subcommands.ExitUsageError)
	}

	container, _, err := open()
	if err != nil {
		return fail(err, subcommands.ExitFailure)
	}
	defer container.Close()

	points, err := container.OptimizationService.EfficientFrontier(ctx, positions, c.points)
	if err != nil {
		return fail(err, subcommands.ExitFailure)
	}
	if err := c.print(points, FrontierMarkdown(points)); err != nil {
		return fail(err, subcommands.ExitFailure)
	}
	return subcommands.ExitSuccess
}
