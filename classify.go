package reckon

import "github.com/shopspring/decimal"

// Bucket decomposes an account's value into liquid cash versus held value
// (holdings, property, principal).
type Bucket int

const (
	Cash Bucket = iota
	NonCash
)

func (b Bucket) String() string {
	if b == Cash {
		return "cash"
	}
	return "non_cash"
}

// Flow is a signed, classified change to a balance. A positive amount
// increases the stored balance; what "increase" means depends on the
// archetype (net worth for assets, amount owed for liabilities).
type Flow struct {
	Bucket Bucket
	Amount decimal.Decimal
}

// Classify determines the flow bucket, sign and magnitude of an entry for a
// given account archetype. It returns false for entries that are not flows:
// excluded entries and valuations (valuations are anchors, handled by the
// calculators directly).
//
// Transactions are cash flows, trades are non-cash flows; both are signed by
// the archetype's flow sign from the archetypes table. The asset and
// liability sign conventions are two distinct tables reproduced from
// calibration scenarios, not one derived formula; see archetypeTraits.
func Classify(e Entry, archetype Archetype) (Flow, bool) {
	if e.Excluded || e.Kind == Valuation {
		return Flow{}, false
	}
	bucket := Cash
	if e.Kind == Trade {
		bucket = NonCash
	}
	sign := decimal.NewFromInt(int64(archetypes[archetype].flowSign))
	return Flow{Bucket: bucket, Amount: e.Amount.Decimal().Mul(sign)}, true
}
