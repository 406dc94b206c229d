package reckon

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ewalden/reckon/date"
)

// ExchangeRate is the conversion rate between two currencies effective on a
// specific date. Rates are append-only reference data; the engine never
// mutates them.
type ExchangeRate struct {
	Date date.Date
	From string
	To   string
	Rate decimal.Decimal
}

// RateTable looks up the rate effective on a date. Lookups are exact-date:
// gap-filling of rates is an upstream concern, not this engine's.
type RateTable interface {
	Rate(on date.Date, from, to string) (decimal.Decimal, bool)
}

type rateKey struct {
	on       date.Date
	from, to string
}

// Rates is an in-memory RateTable.
type Rates struct {
	table map[rateKey]decimal.Decimal
}

// NewRates returns an empty rate table.
func NewRates() *Rates {
	return &Rates{table: make(map[rateKey]decimal.Decimal)}
}

// Add records a rate, overwriting any previous rate for the same key.
func (r *Rates) Add(rates ...ExchangeRate) {
	for _, x := range rates {
		r.table[rateKey{on: x.Date, from: x.From, to: x.To}] = x.Rate
	}
}

// Rate implements RateTable.
func (r *Rates) Rate(on date.Date, from, to string) (decimal.Decimal, bool) {
	rate, ok := r.table[rateKey{on: on, from: from, to: to}]
	return rate, ok
}

// Len returns the number of rates in the table.
func (r *Rates) Len() int { return len(r.table) }

// All returns every rate in the table, in no particular order.
func (r *Rates) All() []ExchangeRate {
	out := make([]ExchangeRate, 0, len(r.table))
	for k, rate := range r.table {
		out = append(out, ExchangeRate{Date: k.on, From: k.from, To: k.to, Rate: rate})
	}
	return out
}

// Converter converts amounts between currencies on a given date.
//
// When the table has no rate for (date, from, to) the conversion falls back
// to rate 1 and reports an anomaly. The soft fallback is deliberate: a
// missing rate is a data-quality problem, and the engine must never abort a
// reconstruction over one.
type Converter struct {
	Table    RateTable
	Reporter AnomalyReporter
}

// Convert returns m expressed in the to currency on the given date.
func (c Converter) Convert(m Money, to string, on date.Date) Money {
	from := m.Currency()
	if from == to || from == "" {
		return M(m.Decimal(), to)
	}
	rate := decimal.NewFromInt(1)
	if c.Table != nil {
		if r, ok := c.Table.Rate(on, from, to); ok {
			rate = r
		} else {
			report(c.Reporter, Anomaly{
				Kind:     AnomalyMissingRate,
				Date:     on,
				Currency: from,
				Detail:   fmt.Sprintf("no %s to %s rate on %s, using 1", from, to, on),
			})
		}
	} else {
		report(c.Reporter, Anomaly{
			Kind:     AnomalyMissingRate,
			Date:     on,
			Currency: from,
			Detail:   fmt.Sprintf("no rate table, converting %s to %s at 1", from, to),
		})
	}
	return M(m.Decimal().Mul(rate), to)
}
