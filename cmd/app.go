// Package cmd implements the CLI application to inspect and recompute
// account balance histories.
package cmd

import (
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/rs/zerolog"

	"github.com/ewalden/reckon"
	"github.com/ewalden/reckon/store"
)

// Commands lists the subcommands in registration order. A main package
// registers them all and executes the user-selected one.
var Commands = []subcommands.Command{
	&recalcCmd{},
	&historyCmd{},
	&summaryCmd{},
	&balanceCmd{},
	&fmtCmd{},
	&rateCmd{},
	&watchCmd{},
	&topicCmd{},
}

const (
	EnvLedgerFile = "RECKON_LEDGER_FILE"
	EnvStoreFile  = "RECKON_STORE_FILE"
)

// As a CLI application, it has a very short lived lifecycle, so it is ok to
// use global variables for the shared flags.

var ledgerFile = flag.String("ledger-file", envOr(EnvLedgerFile, "ledger.jsonl"), "Path to the ledger file (JSONL format)")
var storeFile = flag.String("store-file", envOr(EnvStoreFile, "balances.db"), "Path to the balance store database")
var Verbose = flag.Bool("v", false, "Enable verbose logging")

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Logger returns the application logger, console-formatted on stderr.
func Logger() zerolog.Logger {
	level := zerolog.WarnLevel
	if *Verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}

// DecodeLedger reads the app ledger file.
func DecodeLedger() (*reckon.Ledger, error) {
	f, err := os.Open(*ledgerFile)
	if err != nil {
		return nil, fmt.Errorf("could not open ledger file %q: %w", *ledgerFile, err)
	}
	defer f.Close()
	l, err := reckon.DecodeLedger(f)
	if err != nil {
		return nil, fmt.Errorf("could not decode ledger file %q: %w", *ledgerFile, err)
	}
	return l, nil
}

// OpenStore opens the app balance store.
func OpenStore() (*store.Store, error) {
	return store.Open(*storeFile, Logger())
}
