package reckon

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ewalden/reckon/date"
)

// ForwardCalculator replays entries chronologically from an assumed zero
// baseline, producing one balance row per day from the first entry (or an
// explicit start) through the as-of day. It is the calculator of choice when
// no authoritative current balance exists: new manual accounts and full
// historical backfills.
//
// It is stateless: every call is a pure function of its input, which makes
// recomputation idempotent and safe under retries.
type ForwardCalculator struct {
	Converter Converter
}

// ForwardInput carries everything a forward replay needs. Entries, rates and
// values are already-loaded in-memory inputs; the calculator performs no I/O.
type ForwardInput struct {
	Account Account
	Entries []Entry
	// Start is the optional explicit first day of the series. The zero value
	// means the first entry's date. When both are present the earlier wins.
	Start date.Date
	// AsOf is the last day of the series; the zero value means today.
	AsOf date.Date
	// Values optionally supplies the per-day market value of the account's
	// holdings, from which price-driven value changes are decomposed into
	// the net market flows column.
	Values ValueSeries
}

// Calculate produces the account's complete daily series in the account
// currency. Multi-currency entries are converted at their own date. Days
// without entries carry the previous day's end forward. An account with no
// entries yields a flat zero series over the window.
func (c ForwardCalculator) Calculate(in ForwardInput) ([]Balance, error) {
	if err := checkOwnership(in.Account, in.Entries); err != nil {
		return nil, err
	}
	asof := in.AsOf
	if asof.IsZero() {
		asof = date.Today()
	}

	entries := make([]Entry, len(in.Entries))
	copy(entries, in.Entries)
	sortEntries(entries)

	start := in.Start
	for _, e := range entries {
		if !e.Excluded {
			if start.IsZero() || e.Date.Before(start) {
				start = e.Date
			}
			break
		}
	}
	if start.IsZero() {
		start = asof
	}
	if asof.Before(start) {
		return nil, fmt.Errorf("as-of day %s is before the first day %s", asof, start)
	}

	convert := func(m Money, on date.Date) Money {
		return c.Converter.Convert(m, in.Account.Currency, on)
	}
	days := indexDays(entries, in.Account.Archetype, convert, asof)

	var runningCash, runningNonCash decimal.Decimal
	series := make([]Balance, 0, date.NewRange(start, asof).Len())
	for day := range date.NewRange(start, asof).Days() {
		b := Balance{
			AccountID:    in.Account.ID,
			Date:         day,
			Currency:     in.Account.Currency,
			StartCash:    runningCash,
			StartNonCash: runningNonCash,
		}
		var valuation *decimal.Decimal
		if cd := days[day]; cd != nil {
			b.CashInflows = cd.flows.cashIn
			b.CashOutflows = cd.flows.cashOut
			b.NonCashInflows = cd.flows.nonCashIn
			b.NonCashOutflows = cd.flows.nonCashOut
			valuation = cd.valuation
		}
		if in.Values != nil {
			if mf, ok := in.Values.marketFlow(day, b.NonCashInflows.Sub(b.NonCashOutflows)); ok {
				b.NetMarketFlows = mf
			}
		}

		endCash := b.StartCash.Add(b.CashInflows).Sub(b.CashOutflows)
		endNonCash := b.StartNonCash.Add(b.NonCashInflows).Sub(b.NonCashOutflows).Add(b.NetMarketFlows)
		if valuation != nil {
			// The series must pass through the anchor exactly; the
			// flow-derived discrepancy is booked as an adjustment.
			diff := valuation.Sub(endCash.Add(endNonCash))
			if in.Account.Archetype.ValuationBucket() == Cash {
				b.CashAdjustments = diff
				endCash = endCash.Add(diff)
			} else {
				b.NonCashAdjustments = diff
				endNonCash = endNonCash.Add(diff)
			}
		}
		b.EndCash, b.EndNonCash = endCash, endNonCash

		runningCash, runningNonCash = endCash, endNonCash
		series = append(series, b)
	}
	return series, nil
}
