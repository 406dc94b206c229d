package reckon

import (
	"testing"

	"github.com/google/uuid"
)

func TestLedgerAppendKeepsOrder(t *testing.T) {
	account := testAccount(t, Depository)
	ledger := NewLedger(account)
	ledger.Append(NewTransaction(account.ID, day(0), M(10, "USD")))
	ledger.Append(NewTransaction(account.ID, day(-3), M(20, "USD")))

	entries := ledger.Entries()
	if len(entries) != 2 || entries[0].Date != day(-3) {
		t.Fatalf("entries out of order: %+v", entries)
	}
}

func TestLedgerClaimsEntries(t *testing.T) {
	account := testAccount(t, Depository)
	ledger := NewLedger(account)

	orphan := NewTransaction(uuid.Nil, day(0), M(10, "USD"))
	ledger.Append(orphan)
	if got := ledger.Entries()[0].AccountID; got != account.ID {
		t.Errorf("entry account = %s, want the ledger's %s", got, account.ID)
	}
}

func TestLedgerCurrencies(t *testing.T) {
	account := testAccount(t, Depository)
	ledger := NewLedger(account)
	excluded := NewTransaction(account.ID, day(-1), M(1, "CHF"))
	excluded.Excluded = true
	ledger.Append(
		NewTransaction(account.ID, day(-2), M(1, "USD")),
		NewTransaction(account.ID, day(-1), M(1, "EUR")),
		NewTransaction(account.ID, day(0), M(2, "USD")),
		excluded,
	)
	got := ledger.Currencies()
	if len(got) != 2 || got[0] != "EUR" || got[1] != "USD" {
		t.Errorf("currencies = %v, want [EUR USD]", got)
	}
}
