package date

import (
	"fmt"
	"iter"
)

// Range represents an inclusive range of dates.
type Range struct{ From, To Date }

// NewRange returns the range [from, to]. It panics if to is before from,
// which is always a programming error in this package's callers.
func NewRange(from, to Date) Range {
	if to.Before(from) {
		panic(fmt.Sprintf("invalid range: %s is before %s", to, from))
	}
	return Range{From: from, To: to}
}

// Contains returns true if date is included in the range (boundaries included).
func (r Range) Contains(date Date) bool { return !date.Before(r.From) && !date.After(r.To) }

// Len returns the number of days in the range, boundaries included.
func (r Range) Len() int { return r.To.Sub(r.From) + 1 }

// Days returns an iterator over every day in the range in chronological
// order, boundaries included. Balance series are built by iterating days,
// not entries, so that days without entries still emit a carried-forward row.
func (r Range) Days() iter.Seq[Date] {
	return func(yield func(Date) bool) {
		for d := r.From; !d.After(r.To); d = d.Add(1) {
			if !yield(d) {
				return
			}
		}
	}
}

// String formats the range in its standard form.
func (r Range) String() string { return fmt.Sprintf("%s..%s", r.From, r.To) }
