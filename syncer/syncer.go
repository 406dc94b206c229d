// Package syncer orchestrates per-account balance recomputation: it selects
// the right calculator for each account, runs it, and swaps the resulting
// range into the store atomically.
//
// Many accounts may be recomputed concurrently, but runs for a single
// account are serialized behind a per-account lock: two interleaved partial
// writes would break the continuity invariant. The calculators themselves
// stay stateless; serialization is the syncer's job.
package syncer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ewalden/reckon"
	"github.com/ewalden/reckon/date"
)

// Anchor is an authoritative current balance for a connected account,
// supplied by the connected-account sync layer.
type Anchor struct {
	// Balance is the provider-reported total, in the account currency.
	Balance reckon.Money
	// Cash optionally carries the cash component of the balance, typically
	// resolved from an investment snapshot.
	Cash *reckon.Money
	// Date is the day the balance is authoritative for.
	Date date.Date
}

// Input is everything needed to recompute one account, already loaded in
// memory: the syncer performs no I/O of its own beyond the store write.
type Input struct {
	Account reckon.Account
	Entries []reckon.Entry
	// Anchor selects the strategy: nil means forward replay from a zero
	// baseline, non-nil means backward reconciliation from the anchor.
	Anchor *Anchor
	// Values optionally supplies per-day holdings values for investment
	// accounts (forward path only).
	Values reckon.ValueSeries
	// Start optionally extends the series before the first entry.
	Start date.Date
	// AsOf is the last day to reconstruct; the zero value means today.
	AsOf date.Date
}

// Loader supplies the recomputation input for an account.
type Loader interface {
	Load(ctx context.Context, accountID uuid.UUID) (Input, error)
}

// Store persists a recomputed series atomically.
type Store interface {
	ReplaceRange(ctx context.Context, accountID uuid.UUID, series []reckon.Balance) error
}

// Syncer coordinates recomputation across accounts.
type Syncer struct {
	loader    Loader
	store     Store
	converter reckon.Converter
	log       zerolog.Logger

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

// Option configures a Syncer.
type Option func(*Syncer)

// WithLogger sets the syncer's logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Syncer) { s.log = log.With().Str("component", "syncer").Logger() }
}

// WithConverter sets the currency converter used by the forward calculator.
func WithConverter(c reckon.Converter) Option {
	return func(s *Syncer) { s.converter = c }
}

// New creates a Syncer.
func New(loader Loader, store Store, opts ...Option) *Syncer {
	s := &Syncer{
		loader: loader,
		store:  store,
		log:    zerolog.Nop(),
		locks:  make(map[uuid.UUID]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// lockFor returns the mutex serializing runs for one account.
func (s *Syncer) lockFor(accountID uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[accountID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[accountID] = l
	}
	return l
}

// Sync recomputes one account's balance history and swaps it into the store.
// It is safe to call concurrently for different accounts; calls for the same
// account are serialized. Retries are safe: recomputation is a pure function
// of its inputs, and a failed run leaves the prior rows untouched.
func (s *Syncer) Sync(ctx context.Context, accountID uuid.UUID) error {
	l := s.lockFor(accountID)
	l.Lock()
	defer l.Unlock()

	started := time.Now()
	in, err := s.loader.Load(ctx, accountID)
	if err != nil {
		return fmt.Errorf("failed to load account %s: %w", accountID, err)
	}

	series, err := s.calculate(in)
	if err != nil {
		return fmt.Errorf("failed to calculate balances for account %s: %w", accountID, err)
	}
	if err := s.store.ReplaceRange(ctx, accountID, series); err != nil {
		return fmt.Errorf("failed to store balances for account %s: %w", accountID, err)
	}

	s.log.Info().
		Str("account", accountID.String()).
		Str("archetype", string(in.Account.Archetype)).
		Bool("anchored", in.Anchor != nil).
		Int("rows", len(series)).
		Dur("elapsed", time.Since(started)).
		Msg("account balances recomputed")
	return nil
}

// calculate picks the reconstruction strategy: backward when an
// authoritative current balance exists, forward otherwise.
func (s *Syncer) calculate(in Input) ([]reckon.Balance, error) {
	if in.Anchor != nil {
		calc := reckon.BackwardCalculator{}
		return calc.Calculate(reckon.BackwardInput{
			Account:        in.Account,
			Entries:        in.Entries,
			CurrentBalance: in.Anchor.Balance,
			CurrentCash:    in.Anchor.Cash,
			CurrentDate:    in.Anchor.Date,
		})
	}
	calc := reckon.ForwardCalculator{Converter: s.converter}
	return calc.Calculate(reckon.ForwardInput{
		Account: in.Account,
		Entries: in.Entries,
		Start:   in.Start,
		AsOf:    in.AsOf,
		Values:  in.Values,
	})
}
