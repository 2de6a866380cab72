package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"slices"

	portfolio "github.com/etnz/rfportfolio"
	"github.com/etnz/rfportfolio/renderer"
	"github.com/google/subcommands"
)

// holdingsCmd holds the flags for the 'holdings' subcommand.
type holdingsCmd struct {
	date    string
	account string
}

func (*holdingsCmd) Name() string     { return "holdings" }
func (*holdingsCmd) Synopsis() string { return "open positions with their cost basis" }
func (*holdingsCmd) Usage() string {
	return `pfa holdings [-d <date>] [-a <account>]

  Replays the ledger up to a date and displays the open positions of each
  account, valued with the configured prices when available.
`
}

func (c *holdingsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "Date of the holdings (YYYY-MM-DD). Defaults to today.")
	f.StringVar(&c.account, "a", "", "Restrict to one account.")
}

func (c *holdingsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	filters := []func(portfolio.Transaction) bool{portfolio.Until(on)}
	if c.account != "" {
		filters = append(filters, portfolio.ByAccount(c.account))
	}
	book, err := portfolio.Replay(slices.Collect(ledger.Transactions(filters...)))
	if err != nil {
		return a.fail(err, "replaying ledger")
	}

	printMarkdown(renderer.HoldingsMarkdown(book.Holdings(), prices))
	return subcommands.ExitSuccess
}
