package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"slices"

	portfolio "github.com/etnz/rfportfolio"
	"github.com/etnz/rfportfolio/allocation"
	"github.com/etnz/rfportfolio/renderer"
	"github.com/google/subcommands"
)

type allocCmd struct {
	date string
}

func (*allocCmd) Name() string     { return "alloc" }
func (*allocCmd) Synopsis() string { return "allocation breakdown and rebalancing" }
func (*allocCmd) Usage() string {
	return `pfa alloc [-d <date>]

  Breaks the holdings down by asset class, sector, country and currency.
  Positions are valued at the configured prices, at cost otherwise. Classes
  drifting from the configured targets by more than the threshold are listed
  with the trade bringing them back.
`
}

func (c *allocCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "Date of the holdings (YYYY-MM-DD). Defaults to today.")
}

func (c *allocCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := parseDay(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	a, err := loadApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	ledger, err := a.DecodeLedger()
	if err != nil {
		return a.fail(err, "loading ledger")
	}
	instruments, err := a.DecodeInstruments()
	if err != nil {
		return a.fail(err, "loading instruments")
	}
	prices, err := a.Prices(instruments)
	if err != nil {
		return a.fail(err, "loading prices")
	}
	book, err := portfolio.Replay(slices.Collect(ledger.Transactions(portfolio.Until(on))))
	if err != nil {
		return a.fail(err, "replaying ledger")
	}

	items := allocation.Items(book.Holdings(), instruments, prices)
	for _, it := range items {
		if it.Class == allocation.Unknown {
			a.log.Warn().Str("instrument", it.Instrument).Msg("unclassified instrument")
		}
	}
	b := allocation.Aggregate(items)
	var drift []allocation.Deviation
	if len(a.cfg.Targets) > 0 {
		drift = allocation.Drift(b.ByClass, b.Total, a.cfg.Targets, a.cfg.DriftThreshold)
	}

	printMarkdown(renderer.RenderAllocation(renderer.NewAllocation(portfolio.BaseCurrency, b, drift)))
	return subcommands.ExitSuccess
}
