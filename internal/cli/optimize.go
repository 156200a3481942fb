package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/aristath/folio/internal/modules/optimization"
	"github.com/aristath/folio/internal/utils"
)

type optimizeCmd struct {
	positions string
	objective string
	full      bool
	output
}

func (*optimizeCmd) Name() string     { return "optimize" }
func (*optimizeCmd) Synopsis() string { return "compute long-only mean-variance weights for a portfolio" }
func (*optimizeCmd) Usage() string {
	return `folio optimize -p <SYM:QTY[:COST],...> [-o max_sharpe|min_volatility] [-full] [-json] [-raw]

  Solves for optimal weights of the given holdings. With -full, prints the
  current, minimum volatility and maximum Sharpe portfolios side by side.
`
}

func (c *optimizeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.positions, "p", "", "holdings as SYMBOL:QTY[:COST], comma separated")
	f.StringVar(&c.objective, "o", string(optimization.ObjectiveMaxSharpe), "objective: max_sharpe or min_volatility")
	f.BoolVar(&c.full, "full", false, "compare current, min volatility and max Sharpe portfolios")
	c.output.setFlags(f)
}

func (c *optimizeCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	positions, err := utils.ParsePositions(c.positions)
	if err != nil {
		return fail(err, subcommands.ExitUsageError)
	}
	objective := optimization.Objective(c.objective)
	if objective != optimization.ObjectiveMaxSharpe && objective != optimization.ObjectiveMinVolatility {
		return fail(fmt.Errorf("unknown objective %q", c.objective), subcommands.ExitUsageError)
	}

	container, _, err := open()
	if err != nil {
		return fail(err, subcommands.ExitFailure)
	}
	defer container.Close()

	svc := container.OptimizationService
	if c.full {
		out, err := svc.FullOptimizationData(ctx, positions)
		if err != nil {
			return fail(err, subcommands.ExitFailure)
		}
		if err := c.print(out, FullOptimizationMarkdown(out)); err != nil {
			return fail(err, subcommands.ExitFailure)
		}
		return subcommands.ExitSuccess
	}

	out, err := svc.Optimize(ctx, positions, objective)
	if err != nil {
		return fail(err, subcommands.ExitFailure)
	}
	if err := c.print(out, OptimizationMarkdown(out, objective)); err != nil {
		return fail(err, subcommands.ExitFailure)
	}
	return subcommands.ExitSuccess
}
