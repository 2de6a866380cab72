package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	portfolio "github.com/etnz/rfportfolio"
	"github.com/etnz/rfportfolio/renderer"
	"github.com/google/subcommands"
)

// realizedCmd holds the flags for the 'realized' subcommand.
type realizedCmd struct {
	year    int
	account string
}

func (*realizedCmd) Name() string     { return "realized" }
func (*realizedCmd) Synopsis() string { return "realized gains, lot by lot" }
func (*realizedCmd) Usage() string {
	return `pfa realized [-y <year>] [-a <account>]

  Calculates and displays the gains realized by sells, matching lots in FIFO
  order. Amounts are converted to roubles at the transaction rates.
`
}

func (c *realizedCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.year, "y", 0, "Year the lots were closed. All years by default.")
	f.StringVar(&c.account, "a", "", "Restrict to one account.")
}

func (c *realizedCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := loadApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	ledger, err := a.DecodeLedger()
	if err != nil {
		return a.fail(err, "loading ledger")
	}
	book, err := ledger.Book()
	if err != nil {
		return a.fail(err, "replaying ledger")
	}

	events := book.Realized()
	if c.account != "" {
		var kept []portfolio.RealizedEvent
		for _, e := range events {
			if e.Account == c.account {
				kept = append(kept, e)
			}
		}
		events = kept
	}

	printMarkdown(renderer.RealizedMarkdown(events, c.year))
	return subcommands.ExitSuccess
}
