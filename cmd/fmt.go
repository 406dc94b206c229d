package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/subcommands"

	"github.com/ewalden/reckon"
)

type fmtCmd struct{}

func (*fmtCmd) Name() string { return "fmt" }
func (*fmtCmd) Synopsis() string {
	return "validates and formats the ledger file into a canonical form"
}
func (*fmtCmd) Usage() string {
	return `reck fmt

  Validates and formats the ledger file in place. This reads every entry,
  assigns ids to entries missing one, recomputes trade amounts, sorts
  entries into canonical order and rewrites the file.
`
}

func (*fmtCmd) SetFlags(f *flag.FlagSet) {}

func (c *fmtCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ledger, err := DecodeLedger()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	// Write the canonical form to a sibling temp file, then swap it in, so
	// a failed write never truncates the ledger.
	dir := filepath.Dir(*ledgerFile)
	tmp, err := os.CreateTemp(dir, ".ledger-fmt-*")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating temporary file: %v\n", err)
		return subcommands.ExitFailure
	}
	defer os.Remove(tmp.Name())

	if err := reckon.EncodeLedger(tmp, ledger); err != nil {
		tmp.Close()
		fmt.Fprintf(os.Stderr, "Error formatting ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := tmp.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing formatted ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := os.Rename(tmp.Name(), *ledgerFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error replacing ledger file: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Formatted %d entries in %s\n", ledger.Len(), *ledgerFile)
	return subcommands.ExitSuccess
}
