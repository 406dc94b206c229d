package reckon

import (
	"fmt"

	"github.com/google/uuid"
)

// Archetype is the financial category of an account. It determines the sign
// convention of its flows and which bucket a valuation anchors.
type Archetype string

const (
	Depository     Archetype = "depository"
	CreditCard     Archetype = "credit_card"
	Investment     Archetype = "investment"
	Crypto         Archetype = "crypto"
	Loan           Archetype = "loan"
	Property       Archetype = "property"
	Vehicle        Archetype = "vehicle"
	OtherAsset     Archetype = "other_asset"
	OtherLiability Archetype = "other_liability"
)

// archetypeTraits collects every archetype-dependent rule in one auditable
// table, instead of scattering conditionals through the calculators.
//
// flowSign is the multiplier applied to a raw entry amount to obtain the
// signed flow. For asset archetypes it is -1: a negative entry amount
// (income) becomes a positive flow that increases the balance. For liability
// archetypes the stored balance is the amount owed, so the sign is inverted
// once more: a positive entry amount (an expense charged to the card)
// increases the amount owed.
//
// valuationBucket names the bucket a valuation anchor reconciles against:
// cash-like accounts hold their whole value as cash, appraised and invested
// accounts hold it as non-cash.
type archetypeTraits struct {
	liability       bool
	flowSign        int
	valuationBucket Bucket
}

var archetypes = map[Archetype]archetypeTraits{
	Depository:     {liability: false, flowSign: -1, valuationBucket: Cash},
	CreditCard:     {liability: true, flowSign: +1, valuationBucket: Cash},
	Investment:     {liability: false, flowSign: -1, valuationBucket: NonCash},
	Crypto:         {liability: false, flowSign: -1, valuationBucket: NonCash},
	Loan:           {liability: true, flowSign: +1, valuationBucket: NonCash},
	Property:       {liability: false, flowSign: -1, valuationBucket: NonCash},
	Vehicle:        {liability: false, flowSign: -1, valuationBucket: NonCash},
	OtherAsset:     {liability: false, flowSign: -1, valuationBucket: NonCash},
	OtherLiability: {liability: true, flowSign: +1, valuationBucket: NonCash},
}

// Valid reports whether a is a known archetype.
func (a Archetype) Valid() bool {
	_, ok := archetypes[a]
	return ok
}

// Liability reports whether the archetype's balance represents amount owed.
func (a Archetype) Liability() bool { return archetypes[a].liability }

// ValuationBucket returns the bucket a valuation anchor reconciles against.
func (a Archetype) ValuationBucket() Bucket { return archetypes[a].valuationBucket }

// ParseArchetype parses an archetype from its string form.
func ParseArchetype(s string) (Archetype, error) {
	a := Archetype(s)
	if !a.Valid() {
		return "", fmt.Errorf("unknown account archetype %q", s)
	}
	return a, nil
}

// Account identifies one financial account. Its Balances are entirely
// derived: owned by the calculators, recomputed wholesale, never hand-edited.
type Account struct {
	ID        uuid.UUID
	Name      string
	Currency  string // ISO 4217
	Archetype Archetype
}

// NewAccount creates an account with a fresh id, validating its currency and
// archetype.
func NewAccount(name, currency string, archetype Archetype) (Account, error) {
	if err := ValidateCurrency(currency); err != nil {
		return Account{}, fmt.Errorf("invalid account currency: %w", err)
	}
	if !archetype.Valid() {
		return Account{}, fmt.Errorf("unknown account archetype %q", archetype)
	}
	return Account{ID: uuid.New(), Name: name, Currency: currency, Archetype: archetype}, nil
}
