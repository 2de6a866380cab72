package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	portfolio "github.com/etnz/rfportfolio"
	"github.com/google/subcommands"
)

type fmtCmd struct {
	check bool
}

func (*fmtCmd) Name() string { return "fmt" }
func (*fmtCmd) Synopsis() string {
	return "validates and formats the ledger file into a canonical form"
}
func (*fmtCmd) Usage() string {
	return `pfa fmt [-check]

  Validates and formats the ledger file. This command reads all transactions,
  validates them, assigns an id to those without one, replays the positions to
  detect oversells, sorts them by time and writes them back in a canonical
  JSONL format.

Usage Examples:
# Formats the configured ledger in-place.
$ pfa fmt

`
}

func (p *fmtCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&p.check, "check", false, "Only validate, do not rewrite the ledger.")
}

func (p *fmtCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := loadApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	ledger, err := a.DecodeLedger()
	if err != nil {
		return a.fail(err, "loading ledger")
	}
	if _, err := ledger.Book(); err != nil {
		return a.fail(err, "replaying ledger")
	}
	if p.check {
		a.log.Info().Str("file", a.cfg.Ledger).Int("transactions", ledger.Len()).Msg("ledger is valid")
		return subcommands.ExitSuccess
	}
	if err := a.EncodeLedger(ledger); err != nil {
		return a.fail(err, "writing ledger")
	}
	a.log.Info().Str("file", a.cfg.Ledger).Int("transactions", ledger.Len()).Msg("ledger formatted")
	return subcommands.ExitSuccess
}

type rmCmd struct{}

func (*rmCmd) Name() string     { return "rm" }
func (*rmCmd) Synopsis() string { return "deletes transactions from the ledger" }
func (*rmCmd) Usage() string {
	return `pfa rm <id>...

  Deletes transactions by id and replays the affected positions. A deletion
  that leaves the history inconsistent, like removing a buy a later sell
  relies on, is refused and the ledger is left untouched.
`
}

func (*rmCmd) SetFlags(*flag.FlagSet) {}

func (*rmCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: at least one transaction id is required")
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
	book, err := ledger.Book()
	if err != nil {
		return a.fail(err, "replaying ledger")
	}
	for _, id := range f.Args() {
		if err := ledger.Remove(id, book); errors.Is(err, portfolio.ErrNotFound) {
			fmt.Fprintf(os.Stderr, "Error: no transaction %q in %s\n", id, a.cfg.Ledger)
			return subcommands.ExitUsageError
		} else if err != nil {
			return a.fail(err, "removing transaction")
		}
		a.log.Info().Str("id", id).Msg("transaction removed")
	}
	if err := a.EncodeLedger(ledger); err != nil {
		return a.fail(err, "writing ledger")
	}
	return subcommands.ExitSuccess
}
