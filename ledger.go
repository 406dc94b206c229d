package reckon

import (
	"github.com/google/uuid"
)

// Ledger binds an account to its chronologically sorted entries. It is the
// engine's in-memory working set: calculators take its entries as input,
// upstream collaborators (user edits, bank sync) own their creation.
type Ledger struct {
	account Account
	entries []Entry
}

// NewLedger returns an empty ledger for the account.
func NewLedger(account Account) *Ledger {
	return &Ledger{account: account}
}

// Account returns the ledger's account.
func (l *Ledger) Account() Account { return l.account }

// Append adds entries to the ledger, keeping it sorted. Entries with no
// account id are claimed by the ledger's account.
func (l *Ledger) Append(entries ...Entry) {
	for _, e := range entries {
		if e.AccountID == uuid.Nil {
			e.AccountID = l.account.ID
		}
		l.entries = append(l.entries, e)
	}
	sortEntries(l.entries)
}

// Entries returns a copy of the ledger's entries in chronological order.
func (l *Ledger) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of entries.
func (l *Ledger) Len() int { return len(l.entries) }

// Currencies returns the sorted set of currencies the account has
// transacted in.
func (l *Ledger) Currencies() []string { return entryCurrencies(l.entries) }
