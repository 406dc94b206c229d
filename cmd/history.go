package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/ewalden/reckon/date"
	"github.com/ewalden/reckon/renderer"
)

type historyCmd struct {
	start string
	end   string
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "display the stored balance history" }
func (*historyCmd) Usage() string {
	return `reck history [-s <start_date>] [-e <end_date>]

  Displays the stored per-day balance history of the ledger's account,
  one table per currency. Defaults to the last 90 days.
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.start, "s", "", "start date of the reported range")
	f.StringVar(&c.end, "e", "", "end date of the reported range (defaults to today)")
}

func (c *historyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ledger, err := DecodeLedger()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	end := date.Today()
	if c.end != "" {
		if end, err = date.Parse(c.end); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing end date: %v\n", err)
			return subcommands.ExitUsageError
		}
	}
	start := end.Add(-89)
	if c.start != "" {
		if start, err = date.Parse(c.start); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing start date: %v\n", err)
			return subcommands.ExitUsageError
		}
	}
	if end.Before(start) {
		fmt.Fprintln(os.Stderr, "end date is before start date")
		return subcommands.ExitUsageError
	}

	db, err := OpenStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		return subcommands.ExitFailure
	}
	defer db.Close()

	series, err := db.Balances(ctx, ledger.Account().ID, date.NewRange(start, end))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading balances: %v\n", err)
		return subcommands.ExitFailure
	}
	if len(series) == 0 {
		fmt.Fprintln(os.Stderr, "No stored balances in range; run 'reck recalc' first.")
		return subcommands.ExitSuccess
	}

	printMarkdown(renderer.HistoryMarkdown(renderer.NewHistoryReport(ledger.Account(), series)))
	return subcommands.ExitSuccess
}
