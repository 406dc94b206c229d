package reckon

import (
	"github.com/shopspring/decimal"

	"github.com/ewalden/reckon/date"
)

// ManualBalanceCalculator computes a single present-moment balance for
// lightweight manual accounts, where a full daily history is not needed.
type ManualBalanceCalculator struct {
	Converter Converter
}

// CurrentBalance takes the most recent valuation as the anchor (or zero if
// none) and adds the signed transaction flows dated strictly after it, using
// the same classification sign rules as the series calculators. Amounts are
// converted to the account currency at their own date.
func (c ManualBalanceCalculator) CurrentBalance(account Account, entries []Entry) Money {
	var anchorDate date.Date
	anchor := decimal.Decimal{}
	for _, e := range entries {
		if e.Excluded || e.Kind != Valuation {
			continue
		}
		if anchorDate.IsZero() || e.Date.After(anchorDate) {
			anchorDate = e.Date
			anchor = c.Converter.Convert(e.Amount, account.Currency, e.Date).Decimal()
		}
	}

	total := anchor
	for _, e := range entries {
		if e.Kind != Transaction {
			continue
		}
		if !anchorDate.IsZero() && !e.Date.After(anchorDate) {
			continue
		}
		converted := e
		converted.Amount = c.Converter.Convert(e.Amount, account.Currency, e.Date)
		if fl, ok := Classify(converted, account.Archetype); ok {
			total = total.Add(fl.Amount)
		}
	}
	return M(total, account.Currency)
}
