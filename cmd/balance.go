package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/ewalden/reckon"
)

type balanceCmd struct{}

func (*balanceCmd) Name() string     { return "balance" }
func (*balanceCmd) Synopsis() string { return "show the current balance without storing anything" }
func (*balanceCmd) Usage() string {
	return `reck balance

  Computes the account's current balance straight from the ledger: the most
  recent valuation plus every transaction after it. No balance history is
  reconstructed or stored; use it for a quick check of a manual account.
`
}

func (*balanceCmd) SetFlags(f *flag.FlagSet) {}

func (c *balanceCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	rates, err := db.Rates(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading exchange rates: %v\n", err)
		return subcommands.ExitFailure
	}

	calc := reckon.ManualBalanceCalculator{
		Converter: reckon.Converter{Table: rates, Reporter: reckon.NewLogReporter(Logger())},
	}
	balance := calc.CurrentBalance(ledger.Account(), ledger.Entries())
	fmt.Printf("%s: %s\n", ledger.Account().Name, balance)
	return subcommands.ExitSuccess
}
