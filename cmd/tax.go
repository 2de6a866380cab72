package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/rfportfolio/date"
	"github.com/etnz/rfportfolio/renderer"
	"github.com/etnz/rfportfolio/tax"
	"github.com/google/subcommands"
)

// taxCmd holds the flags for the 'tax' subcommand.
type taxCmd struct {
	year                int
	asOf                string
	skipPositions       bool
	skipRecommendations bool
}

func (*taxCmd) Name() string     { return "tax" }
func (*taxCmd) Synopsis() string { return "personal income tax (NDFL) of a year" }
func (*taxCmd) Usage() string {
	return `pfa tax [-y <year>] [-asof <date>] [-no-positions] [-no-recommendations]

  Calculates the NDFL due on the investment income of a year: realized gains,
  dividends and coupons, after the long term holding exemption, the IIS type A
  deduction and the carryover of prior losses. Portfolios and their regimes
  come from the configuration.
`
}

func (c *taxCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.year, "y", date.Today().Year()-1, "Tax year.")
	f.StringVar(&c.asOf, "asof", "", "Date recommendations are computed for. Defaults to the end of the tax year.")
	f.BoolVar(&c.skipPositions, "no-positions", false, "Do not list the open positions.")
	f.BoolVar(&c.skipRecommendations, "no-recommendations", false, "Do not list the recommendations.")
}

func (c *taxCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var asOf date.Date
	if c.asOf != "" {
		var err error
		if asOf, err = date.Parse(c.asOf); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
			return subcommands.ExitUsageError
		}
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
	losses, err := a.cfg.Losses()
	if err != nil {
		return a.fail(err, "reading prior losses")
	}

	calc := tax.NewCalculator(tax.Config{
		NonResident: a.cfg.NonResident,
		Classifier:  instruments,
		AsOf:        asOf,
		Prices:      prices,
		PriorLosses: losses,
		Logger:      &a.log,
	})
	result, err := calc.CalculateTaxes(ledger.All(), a.cfg.Portfolios, c.year)
	if err != nil {
		return a.fail(err, "calculating taxes")
	}
	for _, id := range result.Unclassified {
		a.log.Warn().Str("instrument", id).Msg("unclassified instrument taxed as an ordinary security")
	}

	printMarkdown(renderer.RenderTax(result, renderer.TaxRenderOptions{
		SkipPositions:       c.skipPositions,
		SkipRecommendations: c.skipRecommendations,
	}))
	return subcommands.ExitSuccess
}
