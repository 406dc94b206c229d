package reckon

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ewalden/reckon/date"
)

// dayFlows accumulates one day's classified flows. Inflow and outflow
// columns are kept as separate non-negative magnitudes so the breakdown
// stays auditable.
type dayFlows struct {
	cashIn, cashOut       decimal.Decimal
	nonCashIn, nonCashOut decimal.Decimal
}

func (f *dayFlows) add(fl Flow) {
	switch {
	case fl.Bucket == Cash && fl.Amount.Sign() >= 0:
		f.cashIn = f.cashIn.Add(fl.Amount)
	case fl.Bucket == Cash:
		f.cashOut = f.cashOut.Add(fl.Amount.Neg())
	case fl.Amount.Sign() >= 0:
		f.nonCashIn = f.nonCashIn.Add(fl.Amount)
	default:
		f.nonCashOut = f.nonCashOut.Add(fl.Amount.Neg())
	}
}

// calcDay is the per-day accumulator the calculators fold entries into.
type calcDay struct {
	flows     dayFlows
	valuation *decimal.Decimal
}

// indexDays folds entries into per-day accumulators. Each entry amount goes
// through convert first (the forward calculator converts to the account
// currency at the entry's date; the backward calculator works per currency
// and passes the identity). Entries after last are out of the reconstruction
// window and ignored. At most one valuation per date is a precondition
// enforced at entry creation.
func indexDays(entries []Entry, archetype Archetype, convert func(Money, date.Date) Money, last date.Date) map[date.Date]*calcDay {
	days := make(map[date.Date]*calcDay)
	for _, e := range entries {
		if e.Excluded || e.Date.After(last) {
			continue
		}
		cd := days[e.Date]
		if cd == nil {
			cd = &calcDay{}
			days[e.Date] = cd
		}
		converted := e
		converted.Amount = convert(e.Amount, e.Date)
		if e.Kind == Valuation {
			v := converted.Amount.Decimal()
			cd.valuation = &v
			continue
		}
		if fl, ok := Classify(converted, archetype); ok {
			cd.flows.add(fl)
		}
	}
	return days
}

// checkOwnership rejects entries that belong to another account.
func checkOwnership(account Account, entries []Entry) error {
	for _, e := range entries {
		if e.AccountID != account.ID {
			return fmt.Errorf("entry %s belongs to account %s, not %s", e.ID, e.AccountID, account.ID)
		}
	}
	return nil
}

// ValueSeries maps days to the market value of an account's holdings,
// denominated in the account currency. It is an optional calculator input
// for investment-type accounts.
type ValueSeries map[date.Date]decimal.Decimal

// marketFlow returns the day's price-driven value change: the change in
// holdings value not explained by that day's trade flows. It requires a
// value for both the day and the day before; the first known day has no
// measurable price movement.
func (v ValueSeries) marketFlow(on date.Date, tradeNet decimal.Decimal) (decimal.Decimal, bool) {
	cur, ok := v[on]
	if !ok {
		return decimal.Decimal{}, false
	}
	prev, ok := v[on.Add(-1)]
	if !ok {
		return decimal.Decimal{}, false
	}
	return cur.Sub(prev).Sub(tradeNet), true
}
