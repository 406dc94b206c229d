package reckon

import (
	"slices"

	"github.com/shopspring/decimal"

	"github.com/ewalden/reckon/date"
)

// BackwardCalculator reconciles a known authoritative current balance
// backward through time, subtracting each day's net flows. It is the
// calculator of choice for connected accounts, where the provider reports
// the present balance but history must be reconstructed.
//
// For a fixed entry set anchored at the forward calculator's final value,
// the backward calculator reproduces the forward series exactly, day by day
// and column by column. The two are inverse operations; that equivalence is
// the engine's primary correctness property.
type BackwardCalculator struct{}

// BackwardInput carries everything a backward reconciliation needs.
type BackwardInput struct {
	Account Account
	Entries []Entry
	// CurrentBalance is the authoritative present balance, denominated in
	// the account currency.
	CurrentBalance Money
	// CurrentCash optionally splits the anchor into its cash component
	// (typically resolved from an investment snapshot). When nil the whole
	// anchor sits in the archetype's valuation bucket.
	CurrentCash *Money
	// CurrentDate is the day the anchor is authoritative for; the zero
	// value means today.
	CurrentDate date.Date
}

// Calculate produces one independent ascending series per currency the
// account has transacted in, each reconciled against that currency's own
// flows. Conversion to a single display currency is a downstream concern.
// The anchor applies to its own currency's series; other currencies are
// pinned by their valuations, or reconcile to zero at the current date.
func (c BackwardCalculator) Calculate(in BackwardInput) ([]Balance, error) {
	if err := checkOwnership(in.Account, in.Entries); err != nil {
		return nil, err
	}
	current := in.CurrentDate
	if current.IsZero() {
		current = date.Today()
	}
	anchorCurrency := in.CurrentBalance.Currency()
	if anchorCurrency == "" {
		anchorCurrency = in.Account.Currency
	}

	entries := make([]Entry, len(in.Entries))
	copy(entries, in.Entries)
	sortEntries(entries)

	currencies := entryCurrencies(entries)
	if !slices.Contains(currencies, anchorCurrency) {
		currencies = append(currencies, anchorCurrency)
		slices.Sort(currencies)
	}

	var out []Balance
	for _, currency := range currencies {
		var sub []Entry
		for _, e := range entries {
			if !e.Excluded && e.Amount.Currency() == currency && !e.Date.After(current) {
				sub = append(sub, e)
			}
		}
		var anchorTotal decimal.Decimal
		var anchorCash *decimal.Decimal
		if currency == anchorCurrency {
			anchorTotal = in.CurrentBalance.Decimal()
			if in.CurrentCash != nil {
				v := in.CurrentCash.Decimal()
				anchorCash = &v
			}
		}
		out = append(out, c.reconcile(in.Account, sub, currency, anchorTotal, anchorCash, current)...)
	}
	return out, nil
}

// reconcile walks one currency's days descending from the anchor, derives
// each day's start from its end and net flows, and reverses the result to
// ascending order.
func (c BackwardCalculator) reconcile(account Account, entries []Entry, currency string, anchorTotal decimal.Decimal, anchorCash *decimal.Decimal, current date.Date) []Balance {
	first := current
	for _, e := range entries {
		first = e.Date
		break
	}

	identity := func(m Money, _ date.Date) Money { return m }
	days := indexDays(entries, account.Archetype, identity, current)
	bucket := account.Archetype.ValuationBucket()

	// Ascending pre-pass: replay the flows from a zero baseline to fix each
	// valuation day's adjustment. The adjustment quantifies the gap between
	// a valuation and what the flows below it produce, so it is the same
	// whichever direction the series is reconstructed in; computing it here
	// is what makes the backward walk the exact inverse of the forward one.
	valAdj := make(map[date.Date]decimal.Decimal)
	var preCash, preNonCash decimal.Decimal
	for day := range date.NewRange(first, current).Days() {
		cd := days[day]
		if cd == nil {
			continue
		}
		preCash = preCash.Add(cd.flows.cashIn).Sub(cd.flows.cashOut)
		preNonCash = preNonCash.Add(cd.flows.nonCashIn).Sub(cd.flows.nonCashOut)
		if cd.valuation != nil {
			diff := cd.valuation.Sub(preCash.Add(preNonCash))
			valAdj[day] = diff
			if bucket == Cash {
				preCash = preCash.Add(diff)
			} else {
				preNonCash = preNonCash.Add(diff)
			}
		}
	}

	// Descending reconciliation walk from the anchor.
	var endCash, endNonCash decimal.Decimal
	if anchorCash != nil {
		endCash = *anchorCash
		endNonCash = anchorTotal.Sub(*anchorCash)
	} else if bucket == Cash {
		endCash = anchorTotal
	} else {
		endNonCash = anchorTotal
	}

	n := current.Sub(first) + 1
	series := make([]Balance, n)
	for i := n - 1; i >= 0; i-- {
		day := first.Add(i)
		b := Balance{AccountID: account.ID, Date: day, Currency: currency}
		cd := days[day]
		if cd != nil {
			b.CashInflows = cd.flows.cashIn
			b.CashOutflows = cd.flows.cashOut
			b.NonCashInflows = cd.flows.nonCashIn
			b.NonCashOutflows = cd.flows.nonCashOut
		}

		if cd != nil && cd.valuation != nil {
			// The series must pass through the valuation exactly. Any
			// mismatch with the value propagated from above is folded into
			// the adjustment of the day after, never silently overwritten.
			residual := endCash.Add(endNonCash).Sub(*cd.valuation)
			if !residual.IsZero() {
				if i+1 < n {
					next := &series[i+1]
					if bucket == Cash {
						next.StartCash = next.StartCash.Sub(residual)
						next.CashAdjustments = next.CashAdjustments.Add(residual)
					} else {
						next.StartNonCash = next.StartNonCash.Sub(residual)
						next.NonCashAdjustments = next.NonCashAdjustments.Add(residual)
					}
				}
				if bucket == Cash {
					endCash = endCash.Sub(residual)
				} else {
					endNonCash = endNonCash.Sub(residual)
				}
			}
			if adj, ok := valAdj[day]; ok {
				if bucket == Cash {
					b.CashAdjustments = b.CashAdjustments.Add(adj)
				} else {
					b.NonCashAdjustments = b.NonCashAdjustments.Add(adj)
				}
			}
		}

		b.EndCash, b.EndNonCash = endCash, endNonCash
		b.StartCash = b.EndCash.Sub(b.CashInflows).Add(b.CashOutflows).Sub(b.CashAdjustments)
		b.StartNonCash = b.EndNonCash.Sub(b.NonCashInflows).Add(b.NonCashOutflows).Sub(b.NonCashAdjustments)
		series[i] = b

		// Continuity: the previous day ends where this day starts.
		endCash, endNonCash = b.StartCash, b.StartNonCash
	}
	return series
}
