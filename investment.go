package reckon

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Holding is one position inside a connected investment account's raw
// provider snapshot.
type Holding struct {
	SecurityID string
	Quantity   decimal.Decimal
	Price      decimal.Decimal
}

// Value returns quantity times price.
func (h Holding) Value() decimal.Decimal { return h.Quantity.Mul(h.Price) }

// RawSnapshot is the provider-shaped balance report for a connected
// investment account. CurrentBalance is the provider's reported total and is
// treated as ground truth.
type RawSnapshot struct {
	CurrentBalance   decimal.Decimal
	AvailableBalance decimal.Decimal
	Currency         string
	Holdings         []Holding
}

// ResolvedSnapshot is the engine-ready decomposition of a raw snapshot.
type ResolvedSnapshot struct {
	TotalValue  Money
	CashBalance Money
}

// CashResolver separates brokerage cash from true holdings value inside a
// connected investment account's snapshot. Providers report idle cash as
// sentinel "cash equivalent" instruments mixed into the holdings list; the
// resolver filters those out and derives the cash balance as the remainder
// of the provider total.
type CashResolver struct {
	// IsCashProxy identifies provider sentinel instruments that represent
	// cash rather than a real holding. Nil means DefaultCashProxy.
	IsCashProxy func(securityID string) bool
	Reporter    AnomalyReporter
}

// DefaultCashProxy recognizes the common provider convention of currency
// sentinel instruments such as "CUR:USD".
func DefaultCashProxy(securityID string) bool {
	return strings.HasPrefix(securityID, "CUR:")
}

// Resolve computes the snapshot's true holdings value and cash balance.
// The provider total stays ground truth: cash is total minus true holdings.
// Negative computed cash or total indicates upstream data inconsistency and
// is reported as an anomaly, never raised as an error.
func (r CashResolver) Resolve(accountID uuid.UUID, s RawSnapshot) ResolvedSnapshot {
	isProxy := r.IsCashProxy
	if isProxy == nil {
		isProxy = DefaultCashProxy
	}

	var holdingsValue decimal.Decimal
	for _, h := range s.Holdings {
		if h.SecurityID == "" {
			// Unresolvable holdings count as true holdings by default.
			report(r.Reporter, Anomaly{
				Kind:      AnomalyUnknownHolding,
				AccountID: accountID,
				Currency:  s.Currency,
				Detail:    fmt.Sprintf("holding with no security id worth %s treated as non-cash", h.Value()),
			})
			holdingsValue = holdingsValue.Add(h.Value())
			continue
		}
		if isProxy(h.SecurityID) {
			continue
		}
		holdingsValue = holdingsValue.Add(h.Value())
	}

	total := s.CurrentBalance
	cash := total.Sub(holdingsValue)
	if total.IsNegative() {
		report(r.Reporter, Anomaly{
			Kind:      AnomalyNegativeValue,
			AccountID: accountID,
			Currency:  s.Currency,
			Detail:    fmt.Sprintf("provider reports negative total value %s", total),
		})
	}
	if cash.IsNegative() {
		report(r.Reporter, Anomaly{
			Kind:      AnomalyNegativeCash,
			AccountID: accountID,
			Currency:  s.Currency,
			Detail:    fmt.Sprintf("computed cash %s is negative: holdings worth %s exceed total %s", cash, holdingsValue, total),
		})
	}
	return ResolvedSnapshot{
		TotalValue:  M(total, s.Currency),
		CashBalance: M(cash, s.Currency),
	}
}
