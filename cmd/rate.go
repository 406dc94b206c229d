package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/ewalden/reckon"
	"github.com/ewalden/reckon/date"
)

type rateCmd struct {
	date string
	from string
	to   string
	rate string
}

func (*rateCmd) Name() string     { return "rate" }
func (*rateCmd) Synopsis() string { return "record an exchange rate" }
func (*rateCmd) Usage() string {
	return `reck rate -from <currency> -to <currency> -r <rate> [-d <date>]

  Records an exchange rate for a day. Rates are append-only: recording a
  rate for a (date, from, to) that already exists leaves the stored rate
  unchanged.

Usage Examples:
$ reck rate -from EUR -to USD -r 1.0842 -d 2026-08-27

`
}

func (c *rateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", "", "date of the rate (defaults to today)")
	f.StringVar(&c.from, "from", "", "source currency code")
	f.StringVar(&c.to, "to", "", "target currency code")
	f.StringVar(&c.rate, "r", "", "units of the target currency per unit of the source")
}

func (c *rateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.from == "" || c.to == "" || c.rate == "" {
		fmt.Fprintln(os.Stderr, "-from, -to and -r are required")
		return subcommands.ExitUsageError
	}
	for _, code := range []string{c.from, c.to} {
		if err := reckon.ValidateCurrency(code); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitUsageError
		}
	}
	rate, err := decimal.NewFromString(c.rate)
	if err != nil || !rate.IsPositive() {
		fmt.Fprintf(os.Stderr, "invalid rate %q\n", c.rate)
		return subcommands.ExitUsageError
	}
	on := date.Today()
	if c.date != "" {
		if on, err = date.Parse(c.date); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
			return subcommands.ExitUsageError
		}
	}

	db, err := OpenStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		return subcommands.ExitFailure
	}
	defer db.Close()

	if err := db.SaveRates(ctx, reckon.ExchangeRate{Date: on, From: c.from, To: c.to, Rate: rate}); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving rate: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Recorded %s/%s = %s on %s\n", c.from, c.to, rate, on)
	return subcommands.ExitSuccess
}
