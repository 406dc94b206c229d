package reckon

import (
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ewalden/reckon/date"
)

// Kind is the tag of the Entry variant.
type Kind string

const (
	// Transaction is a cash movement. Sign convention: a negative amount is
	// an inflow (income), a positive amount an outflow (expense).
	Transaction Kind = "transaction"
	// Trade is a holdings movement, the amount being quantity times price.
	// Always a non-cash flow: money converted into or out of a holding.
	Trade Kind = "trade"
	// Valuation is an authoritative balance anchor for its date. It is not a
	// flow; the reconstructed series must pass through it exactly.
	Valuation Kind = "valuation"
)

// Entry is one dated financial event of an account: the shared envelope of
// the Transaction/Trade/Valuation variants plus the Trade payload.
type Entry struct {
	ID        uuid.UUID
	AccountID uuid.UUID
	Kind      Kind
	Date      date.Date
	Amount    Money
	// Excluded entries are visible but never contribute to balance flows.
	Excluded bool

	// Trade payload.
	Security string
	Quantity decimal.Decimal
	Price    decimal.Decimal
}

// NewTransaction returns a Transaction entry.
func NewTransaction(accountID uuid.UUID, on date.Date, amount Money) Entry {
	return Entry{ID: uuid.New(), AccountID: accountID, Kind: Transaction, Date: on, Amount: amount}
}

// NewTrade returns a Trade entry. The amount is quantity times price,
// positive for a buy (money flowing out of cash into the holding).
func NewTrade(accountID uuid.UUID, on date.Date, security string, quantity, price decimal.Decimal, currency string) Entry {
	return Entry{
		ID:        uuid.New(),
		AccountID: accountID,
		Kind:      Trade,
		Date:      on,
		Amount:    M(quantity.Mul(price), currency),
		Security:  security,
		Quantity:  quantity,
		Price:     price,
	}
}

// NewValuation returns a Valuation entry. At most one valuation may exist per
// account per date; upstream entry creation enforces it.
func NewValuation(accountID uuid.UUID, on date.Date, amount Money) Entry {
	return Entry{ID: uuid.New(), AccountID: accountID, Kind: Valuation, Date: on, Amount: amount}
}

// sortEntries sorts entries chronologically with a deterministic total order,
// so that recomputing an unchanged entry set yields identical results.
func sortEntries(entries []Entry) {
	slices.SortStableFunc(entries, func(a, b Entry) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		if c := strings.Compare(string(a.Kind), string(b.Kind)); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
}

// entryCurrencies returns the sorted set of currencies the entries are
// denominated in.
func entryCurrencies(entries []Entry) []string {
	seen := make(map[string]bool)
	var currencies []string
	for _, e := range entries {
		if e.Excluded || seen[e.Amount.Currency()] {
			continue
		}
		seen[e.Amount.Currency()] = true
		currencies = append(currencies, e.Amount.Currency())
	}
	slices.Sort(currencies)
	return currencies
}
