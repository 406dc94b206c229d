package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/subcommands"
	"github.com/robfig/cron/v3"

	"github.com/ewalden/reckon"
	"github.com/ewalden/reckon/syncer"
)

type watchCmd struct {
	schedule string
}

func (*watchCmd) Name() string     { return "watch" }
func (*watchCmd) Synopsis() string { return "recompute the balance history on a schedule" }
func (*watchCmd) Usage() string {
	return `reck watch [-every <schedule>]

  Re-reads the ledger and recomputes the balance history on a cron
  schedule, until interrupted. Use it to keep the store current while a
  ledger file is being edited or synced by another tool.

Usage Examples:
# Recompute every 15 minutes.
$ reck watch -every "@every 15m"

`
}

func (c *watchCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.schedule, "every", "@hourly", `cron schedule (e.g. "@hourly", "@every 15m", "0 7 * * *")`)
}

func (c *watchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	db, err := OpenStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		return subcommands.ExitFailure
	}
	defer db.Close()

	log := Logger()

	// The ledger is re-read on every tick so edits between runs are picked
	// up without restarting the watcher.
	run := func() {
		ledger, err := DecodeLedger()
		if err != nil {
			log.Error().Err(err).Msg("failed to read ledger")
			return
		}
		rates, err := db.Rates(ctx)
		if err != nil {
			log.Error().Err(err).Msg("failed to load exchange rates")
			return
		}
		conv := reckon.Converter{Table: rates, Reporter: reckon.NewLogReporter(log)}
		in := syncer.Input{Account: ledger.Account(), Entries: ledger.Entries()}
		s := syncer.New(staticLoader{in}, db, syncer.WithConverter(conv), syncer.WithLogger(log))
		if err := s.Sync(ctx, ledger.Account().ID); err != nil {
			log.Error().Err(err).Msg("recomputation failed")
		}
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(c.schedule, run); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid schedule %q: %v\n", c.schedule, err)
		return subcommands.ExitUsageError
	}

	run() // once at startup, then on schedule
	scheduler.Start()
	log.Info().Str("schedule", c.schedule).Msg("watching ledger")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case <-stop:
	case <-ctx.Done():
	}

	<-scheduler.Stop().Done()
	log.Info().Msg("watch stopped")
	return subcommands.ExitSuccess
}
