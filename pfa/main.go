// Command pfa analyses a portfolio ledger: holdings, realized gains,
// performance, allocation and Russian personal income tax.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/rfportfolio/cmd"
	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	// answers the shell when invoked for completion, and exits.
	cmd.Completion().Complete("pfa")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
