package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"github.com/aristath/folio/internal/domain"
	"github.com/aristath/folio/internal/modules/marketdata"
)

type importCmd struct {
	symbol     string
	name       string
	assetClass string
	sector     string
	country    string
	currency   string
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import daily price bars from a CSV file" }
func (*importCmd) Usage() string {
	return `folio import -s <symbol> [-name <name>] [-class <class>] [-sector <sector>] [-country <country>] <file.csv>

  Imports daily bars into the history database. The CSV needs a header with at
  least "date" and "close" columns. Existing dates are overwritten.
  Instrument metadata is stored when any of -name, -class, -sector or -country is set.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbol, "s", "", "symbol the bars belong to")
	f.StringVar(&c.name, "name", "", "instrument display name")
	f.StringVar(&c.assetClass, "class", "", "asset class (Stock, ETF, Bond, ...)")
	f.StringVar(&c.sector, "sector", "", "sector")
	f.StringVar(&c.country, "country", "", "country")
	f.StringVar(&c.currency, "currency", "", "quote currency")
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	symbol := strings.ToUpper(strings.TrimSpace(c.symbol))
	if symbol == "" || f.NArg() != 1 {
		fmt.Fprint(stderr, c.Usage())
		return subcommands.ExitUsageError
	}

	file, err := os.Open(f.Arg(0))
	if err != nil {
		return fail(err, subcommands.ExitFailure)
	}
	defer file.Close()

	bars, err := marketdata.ParseBarsCSV(file)
	if err != nil {
		return fail(fmt.Errorf("%s: %w", f.Arg(0), err), subcommands.ExitFailure)
	}

	container, _, err := open()
	if err != nil {
		return fail(err, subcommands.ExitFailure)
	}
	defer container.Close()

	if err := container.HistoryStore.SyncPrices(ctx, symbol, bars); err != nil {
		return fail(err, subcommands.ExitFailure)
	}

	if c.name != "" || c.assetClass != "" || c.sector != "" || c.country != "" || c.currency != "" {
		inst := domain.Instrument{
			Symbol:     symbol,
			Name:       c.name,
			AssetClass: c.assetClass,
			Sector:     c.sector,
			Country:    c.country,
			Currency:   domain.Currency(strings.ToUpper(c.currency)),
		}
		if err := container.HistoryStore.UpsertInstrument(ctx, inst); err != nil {
			return fail(err, subcommands.ExitFailure)
		}
	}

	fmt.Fprintf(stdout, "Imported %d bars for %s\n", len(bars), symbol)
	return subcommands.ExitSuccess
}
