package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/rfportfolio/renderer"
	"github.com/etnz/rfportfolio/tax"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

type iisCmd struct {
	income       string
	ret          string
	years        int
	contribution string
}

func (*iisCmd) Name() string     { return "iis" }
func (*iisCmd) Synopsis() string { return "compares IIS type A and type B" }
func (*iisCmd) Usage() string {
	return `pfa iis [-income <amount>] [-return <ratio>] [-years <n>] [-contribution <amount>]

  Projects a constant yearly contribution to an individual investment account
  and compares the refunds of type A (13% of the contribution, at most 52,000
  a year) with the tax free exit of type B.

Usage Examples:
$ pfa iis -income 2000000 -return 0.12 -years 5
`
}

func (c *iisCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.income, "income", "0", "Annual taxable salary in roubles. When set, the type A refund cannot exceed the tax paid on it.")
	f.StringVar(&c.ret, "return", "0.1", "Expected yearly return as a ratio.")
	f.IntVar(&c.years, "years", 3, "Holding period in years.")
	f.StringVar(&c.contribution, "contribution", tax.DefaultIISContribution.String(), "Yearly contribution in roubles.")
}

func (c *iisCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	income, err := decimal.NewFromString(c.income)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing income: %v\n", err)
		return subcommands.ExitUsageError
	}
	ret, err := decimal.NewFromString(c.ret)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing return: %v\n", err)
		return subcommands.ExitUsageError
	}
	contribution, err := decimal.NewFromString(c.contribution)
	if err != nil || !contribution.IsPositive() {
		fmt.Fprintf(os.Stderr, "Error: contribution must be a positive amount, got %q\n", c.contribution)
		return subcommands.ExitUsageError
	}
	if c.years <= 0 {
		fmt.Fprintln(os.Stderr, "Error: -years must be positive")
		return subcommands.ExitUsageError
	}

	a, err := loadApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	calc := tax.NewCalculator(tax.Config{
		NonResident:    a.cfg.NonResident,
		LimitIISRefund: income.IsPositive(),
		Logger:         &a.log,
	})
	cmp := calc.OptimalIISStrategy(income, ret, c.years, contribution)
	printMarkdown(renderer.RenderIIS(&cmp))
	return subcommands.ExitSuccess
}
