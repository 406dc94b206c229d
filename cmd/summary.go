package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/ewalden/reckon/renderer"
)

type summaryCmd struct{}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display the latest stored position" }
func (*summaryCmd) Usage() string {
	return `reck summary

  Displays the most recent stored balance of the ledger's account, split
  into cash and non-cash, one line per currency.
`
}

func (*summaryCmd) SetFlags(f *flag.FlagSet) {}

func (c *summaryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ledger, err := DecodeLedger()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	db, err := OpenStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		return subcommands.ExitFailure
	}
	defer db.Close()

	latest, err := db.Latest(ctx, ledger.Account().ID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading balances: %v\n", err)
		return subcommands.ExitFailure
	}
	if len(latest) == 0 {
		fmt.Fprintln(os.Stderr, "No stored balances; run 'reck recalc' first.")
		return subcommands.ExitSuccess
	}

	printMarkdown(renderer.SummaryMarkdown(renderer.NewSummaryReport(ledger.Account(), latest)))
	return subcommands.ExitSuccess
}
