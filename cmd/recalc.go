package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ewalden/reckon"
	"github.com/ewalden/reckon/date"
	"github.com/ewalden/reckon/syncer"
)

type recalcCmd struct {
	anchor     string
	anchorCash string
	anchorDate string
	start      string
	asof       string
}

func (*recalcCmd) Name() string { return "recalc" }
func (*recalcCmd) Synopsis() string {
	return "recompute the account's balance history and store it"
}
func (*recalcCmd) Usage() string {
	return `reck recalc [-anchor <amount> [-cash <amount>] [-anchor-date <date>]] [-start <date>] [-asof <date>]

  Recomputes the per-day balance history of the ledger's account and replaces
  the stored history atomically.

  Without -anchor the history is replayed forward from a zero baseline. With
  -anchor the given amount is treated as the authoritative current balance
  and history is reconciled backward from it.

Usage Examples:
# Replay a manual account up to today.
$ reck recalc

# Reconcile a connected account against the provider-reported balance.
$ reck recalc -anchor 1234.56 -anchor-date 2026-08-28

`
}

func (c *recalcCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.anchor, "anchor", "", "authoritative current balance, in the account currency")
	f.StringVar(&c.anchorCash, "cash", "", "cash component of the anchor balance")
	f.StringVar(&c.anchorDate, "anchor-date", "", "date the anchor is authoritative for (defaults to today)")
	f.StringVar(&c.start, "start", "", "extend the history back to this date")
	f.StringVar(&c.asof, "asof", "", "last day to reconstruct (defaults to today)")
}

func (c *recalcCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ledger, err := DecodeLedger()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	in, err := c.input(ledger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
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
	log := Logger()
	conv := reckon.Converter{Table: rates, Reporter: reckon.NewLogReporter(log)}

	s := syncer.New(staticLoader{in}, db, syncer.WithConverter(conv), syncer.WithLogger(log))
	if err := s.Sync(ctx, ledger.Account().ID); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Recomputed balance history for %q.\n", ledger.Account().Name)
	return subcommands.ExitSuccess
}

// input builds the syncer input from the ledger and flags.
func (c *recalcCmd) input(ledger *reckon.Ledger) (syncer.Input, error) {
	in := syncer.Input{
		Account: ledger.Account(),
		Entries: ledger.Entries(),
	}
	var err error
	if in.Start, err = parseDateFlag("start", c.start); err != nil {
		return in, err
	}
	if in.AsOf, err = parseDateFlag("asof", c.asof); err != nil {
		return in, err
	}
	if c.anchor == "" {
		if c.anchorCash != "" || c.anchorDate != "" {
			return in, fmt.Errorf("-cash and -anchor-date require -anchor")
		}
		return in, nil
	}

	amount, err := decimal.NewFromString(c.anchor)
	if err != nil {
		return in, fmt.Errorf("invalid -anchor amount %q: %w", c.anchor, err)
	}
	anchor := &syncer.Anchor{
		Balance: reckon.M(amount, ledger.Account().Currency),
		Date:    date.Today(),
	}
	if c.anchorDate != "" {
		if anchor.Date, err = date.Parse(c.anchorDate); err != nil {
			return in, fmt.Errorf("invalid -anchor-date: %w", err)
		}
	}
	if c.anchorCash != "" {
		cash, err := decimal.NewFromString(c.anchorCash)
		if err != nil {
			return in, fmt.Errorf("invalid -cash amount %q: %w", c.anchorCash, err)
		}
		m := reckon.M(cash, ledger.Account().Currency)
		anchor.Cash = &m
	}
	in.Anchor = anchor
	return in, nil
}

func parseDateFlag(name, value string) (date.Date, error) {
	if value == "" {
		return date.Date{}, nil
	}
	d, err := date.Parse(value)
	if err != nil {
		return date.Date{}, fmt.Errorf("invalid -%s date: %w", name, err)
	}
	return d, nil
}

// staticLoader feeds the syncer the input already assembled from the ledger
// file and flags.
type staticLoader struct {
	in syncer.Input
}

func (l staticLoader) Load(_ context.Context, accountID uuid.UUID) (syncer.Input, error) {
	if accountID != l.in.Account.ID {
		return syncer.Input{}, fmt.Errorf("unknown account %s", accountID)
	}
	return l.in, nil
}
