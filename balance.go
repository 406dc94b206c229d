package reckon

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ewalden/reckon/date"
)

// Balance is one reconstructed day of an account's value in one currency,
// decomposed into cash and non-cash components with an auditable breakdown
// of inflows, outflows, adjustments, and market-driven value changes.
//
// Balance rows are entirely derived: calculators recompute them wholesale
// for an affected range, and readers never recompute flows themselves.
type Balance struct {
	AccountID uuid.UUID
	Date      date.Date
	Currency  string

	StartCash    decimal.Decimal
	StartNonCash decimal.Decimal

	CashInflows     decimal.Decimal
	CashOutflows    decimal.Decimal
	NonCashInflows  decimal.Decimal
	NonCashOutflows decimal.Decimal

	// Adjustments absorb the difference between a flow-derived value and a
	// valuation anchor. The discrepancy is booked here, never silently
	// dropped.
	CashAdjustments    decimal.Decimal
	NonCashAdjustments decimal.Decimal

	// NetMarketFlows is the balance change attributable to price movement of
	// held assets rather than to a transaction.
	NetMarketFlows decimal.Decimal

	EndCash    decimal.Decimal
	EndNonCash decimal.Decimal
}

// StartBalance returns the total value at the start of the day.
func (b Balance) StartBalance() decimal.Decimal { return b.StartCash.Add(b.StartNonCash) }

// EndBalance returns the total value at the end of the day.
func (b Balance) EndBalance() decimal.Decimal { return b.EndCash.Add(b.EndNonCash) }

// netCash is the day's net cash change: inflows - outflows + adjustments.
func (b Balance) netCash() decimal.Decimal {
	return b.CashInflows.Sub(b.CashOutflows).Add(b.CashAdjustments)
}

// netNonCash is the day's net non-cash change, market flows included.
func (b Balance) netNonCash() decimal.Decimal {
	return b.NonCashInflows.Sub(b.NonCashOutflows).Add(b.NonCashAdjustments).Add(b.NetMarketFlows)
}

// Check verifies the row's accounting identity, and its continuity with the
// previous day's row when prev is not nil. A failure is an implementation
// bug, not a data-quality anomaly: the calculators must never emit a row
// that fails its own invariants.
func (b Balance) Check(prev *Balance) error {
	if !b.EndCash.Equal(b.StartCash.Add(b.netCash())) {
		return fmt.Errorf("balance %s %s %s: cash identity broken: end %s != start %s + net %s",
			b.AccountID, b.Date, b.Currency, b.EndCash, b.StartCash, b.netCash())
	}
	if !b.EndNonCash.Equal(b.StartNonCash.Add(b.netNonCash())) {
		return fmt.Errorf("balance %s %s %s: non-cash identity broken: end %s != start %s + net %s",
			b.AccountID, b.Date, b.Currency, b.EndNonCash, b.StartNonCash, b.netNonCash())
	}
	if prev == nil {
		return nil
	}
	if prev.Currency != b.Currency || prev.AccountID != b.AccountID {
		return fmt.Errorf("balance %s %s: cannot check continuity against a row of another series", b.AccountID, b.Date)
	}
	if prev.Date.Add(1) != b.Date {
		return fmt.Errorf("balance %s %s: gap after %s", b.AccountID, b.Date, prev.Date)
	}
	if !prev.EndCash.Equal(b.StartCash) || !prev.EndNonCash.Equal(b.StartNonCash) {
		return fmt.Errorf("balance %s %s %s: continuity broken: previous end (%s, %s) != start (%s, %s)",
			b.AccountID, b.Date, b.Currency, prev.EndCash, prev.EndNonCash, b.StartCash, b.StartNonCash)
	}
	return nil
}

// CheckSeries verifies a whole calculator output: rows grouped per currency,
// each group a gap-free ascending daily series satisfying Check.
func CheckSeries(series []Balance) error {
	prev := make(map[string]*Balance)
	for i := range series {
		b := series[i]
		if err := b.Check(prev[b.Currency]); err != nil {
			return err
		}
		prev[b.Currency] = &series[i]
	}
	return nil
}
