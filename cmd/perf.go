package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/rfportfolio/performance"
	"github.com/etnz/rfportfolio/renderer"
	"github.com/google/subcommands"
)

type perfCmd struct {
	name string
}

func (*perfCmd) Name() string     { return "perf" }
func (*perfCmd) Synopsis() string { return "time and money weighted returns, risk metrics" }
func (*perfCmd) Usage() string {
	return `pfa perf [-n <name>]

  Computes the time weighted returns over the standard horizons, the XIRR,
  volatility, Sharpe ratio and maximum drawdown from the valuation snapshots
  and the deposits and withdrawals of the ledger. When a benchmark file is
  configured the portfolio is compared with it.
`
}

func (c *perfCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "n", "", "Name of the portfolio in the report.")
}

func (c *perfCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := loadApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	if a.cfg.Snapshots == "" {
		fmt.Fprintln(os.Stderr, "No snapshot file configured: set 'snapshots' or PFA_SNAPSHOTS.")
		return subcommands.ExitUsageError
	}
	points, err := a.decodePoints(a.cfg.Snapshots)
	if err != nil {
		return a.fail(err, "loading snapshots")
	}
	ledger, err := a.DecodeLedger()
	if err != nil {
		return a.fail(err, "loading ledger")
	}

	flows := performance.FlowsFromTransactions(ledger.All())
	m := performance.Calculate(points, flows, a.cfg.Performance())

	var cmp *performance.Comparison
	if a.cfg.Benchmark != "" {
		bench, err := a.decodePoints(a.cfg.Benchmark)
		if err != nil {
			return a.fail(err, "loading benchmark")
		}
		if res, ok := performance.CompareWithBenchmark(points, bench, a.cfg.TradingDays); ok {
			cmp = &res
		} else {
			a.log.Warn().Str("file", a.cfg.Benchmark).Msg("not enough common days with the benchmark")
		}
	}

	printMarkdown(renderer.RenderPerformance(renderer.NewPerformance(c.name, points, m, cmp)))
	return subcommands.ExitSuccess
}

func (a *app) decodePoints(file string) ([]performance.PricePoint, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	points, err := performance.DecodePricePoints(f, a.cfg.SnapshotsPath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	a.log.Debug().Str("file", file).Int("points", len(points)).Msg("snapshots loaded")
	return points, nil
}
