// Package cmd implements the CLI application to analyse a portfolio ledger.
package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"time"

	portfolio "github.com/etnz/rfportfolio"
	"github.com/etnz/rfportfolio/config"
	"github.com/etnz/rfportfolio/date"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

// commands lists the subcommands by group.
func commands() map[string][]subcommands.Command {
	return map[string][]subcommands.Command{
		"reports": {&holdingsCmd{}, &realizedCmd{}, &perfCmd{}, &allocCmd{}},
		"tax":     {&taxCmd{}, &iisCmd{}},
		"ledger":  {&fmtCmd{}, &rmCmd{}},
		"help":    {&topicCmd{}},
	}
}

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	groups := commands()
	for _, group := range slices.Sorted(maps.Keys(groups)) {
		for _, cmd := range groups[group] {
			c.Register(cmd, group)
		}
	}
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configFile = flag.String("config", "", "Path to the YAML configuration file. Defaults to $PFA_CONFIG.")
var rawOutput = flag.Bool("raw", false, "Print reports as plain markdown")
var stdout io.Writer = os.Stdout

// app is the loaded configuration shared by the subcommands.
type app struct {
	cfg *config.Config
	log zerolog.Logger
}

// loadApp loads and validates the configuration.
func loadApp() (*app, error) {
	path := *configFile
	if path == "" {
		path = os.Getenv("PFA_CONFIG")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &app{cfg: cfg, log: newLogger(os.Stderr, cfg.LogLevel)}, nil
}

// newLogger returns a console logger at level, info when the level is empty.
func newLogger(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).
		Level(lvl).
		With().Timestamp().Logger()
}

// fail logs err and returns the failure status.
func (a *app) fail(err error, msg string) subcommands.ExitStatus {
	a.log.Error().Err(err).Msg(msg)
	return subcommands.ExitFailure
}

// DecodeLedger decodes the ledger file of the configuration.
func (a *app) DecodeLedger() (*portfolio.Ledger, error) {
	f, err := os.Open(a.cfg.Ledger)
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}
	defer f.Close()
	ledger, err := portfolio.DecodeLedger(f)
	if err != nil {
		return nil, fmt.Errorf("decoding ledger %q: %w", a.cfg.Ledger, err)
	}
	a.log.Debug().Str("file", a.cfg.Ledger).Int("transactions", ledger.Len()).Msg("ledger loaded")
	return ledger, nil
}

// EncodeLedger replaces the ledger file with the canonical form of ledger.
// The file is written aside first, then renamed.
func (a *app) EncodeLedger(ledger *portfolio.Ledger) error {
	dir := filepath.Dir(a.cfg.Ledger)
	tmp, err := os.CreateTemp(dir, ".ledger-*.jsonl")
	if err != nil {
		return fmt.Errorf("creating temporary ledger: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := portfolio.EncodeLedger(tmp, ledger); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), a.cfg.Ledger)
}

// DecodeInstruments decodes the instrument file of the configuration. A
// missing file is an empty registry: every instrument is then unclassified.
func (a *app) DecodeInstruments() (portfolio.Instruments, error) {
	f, err := os.Open(a.cfg.Instruments)
	if errors.Is(err, fs.ErrNotExist) {
		a.log.Warn().Str("file", a.cfg.Instruments).Msg("instrument file does not exist, instruments are unclassified")
		return portfolio.Instruments{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening instruments: %w", err)
	}
	defer f.Close()
	return portfolio.DecodeInstruments(f)
}

// parseDay parses a day flag, today when empty.
func parseDay(s string) (date.Date, error) {
	if s == "" {
		return date.Today(), nil
	}
	return date.Parse(s)
}
