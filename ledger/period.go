package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PERIOD - Bounded container of entries
// =============================================================================

// Period is a bounded span of time over which work entries accumulate.
// EndDate is nil while the period is active; it is set exactly once, when a
// new period is started (closing this one). A closed period is never mutated
// again except by clearing the whole ledger.
//
// Entries keep insertion order = chronological logging order. They are NOT
// resorted by Date.
type Period struct {
	ID        PeriodID
	StartDate Date
	EndDate   *Date
	Entries   []Entry
}

func newPeriod(start Date) *Period {
	return &Period{ID: newPeriodID(), StartDate: start}
}

// IsActive reports whether the period is still accepting entries.
func (p *Period) IsActive() bool { return p.EndDate == nil }

// TotalHours sums the hours of all entries in the period.
func (p *Period) TotalHours() decimal.Decimal {
	total := decimal.Zero
	for _, e := range p.Entries {
		total = total.Add(e.Hours)
	}
	return total
}

// AddEntry validates and appends a new entry. Rejected with
// *InvalidEntryError if hours is not positive or the period is closed;
// nothing changes on rejection.
func (p *Period) AddEntry(date Date, hours decimal.Decimal, note string) (Entry, error) {
	if !hours.IsPositive() {
		return Entry{}, &InvalidEntryError{Hours: hours, Reason: "hours must be positive"}
	}
	if !p.IsActive() {
		return Entry{}, &InvalidEntryError{Hours: hours, Reason: "period is closed", Err: ErrPeriodClosed}
	}
	if date.IsZero() {
		date = Today()
	}

	entry := Entry{
		ID:       newEntryID(),
		Date:     date,
		Hours:    hours,
		Note:     note,
		LoggedAt: time.Now().UTC(),
	}
	p.Entries = append(p.Entries, entry)
	return entry, nil
}

// close sets the end boundary. Only the Ledger calls this, from
// StartNewPeriod - that is the sole active->closed transition.
func (p *Period) close(end Date) {
	p.EndDate = &end
}

// Copy returns a deep copy, so readers never alias ledger-owned state.
func (p *Period) Copy() Period {
	cp := *p
	if p.EndDate != nil {
		end := *p.EndDate
		cp.EndDate = &end
	}
	cp.Entries = make([]Entry, len(p.Entries))
	copy(cp.Entries, p.Entries)
	return cp
}
