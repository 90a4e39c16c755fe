/*
ledger.go - The Ledger: periods, entries, and the current rate config

PURPOSE:
  The Ledger owns the ordered sequence of periods and the current
  RateConfig, and exposes every mutating and query operation. It is the
  single writer: all mutations are serialized behind one lock, written
  through the Gateway before they return, and rolled back in memory when
  the durable write fails.

CRITICAL INVARIANTS:
  1. At most one period is active (EndDate == nil) at any time.
  2. The active period, when present, is the last element of the sequence.
  3. After any operation returns, memory matches the last successful
     durable write. A PersistenceError means the mutation did not happen.

ROLLBACK:
  Mutations take a snapshot of the in-memory state, apply the change,
  attempt the durable write, and restore the snapshot on failure. Readers
  take the read lock and receive copies, so they observe either the pre-
  or post-mutation state, never an intermediate one.

SEE ALSO:
  - period.go: Entry validation and period lifecycle
  - gateway.go: The durable write interface
  - earnings.go: Derived earnings from a Period + RateConfig
*/
package ledger

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
)

// Ledger owns all periods and the current rate configuration.
type Ledger struct {
	mu      sync.RWMutex
	gateway Gateway

	periods []*Period
	rate    RateConfig

	// Cached id of the active period ("" when none), so hot paths never
	// scan for the period with no end date.
	activeID PeriodID
}

// New returns an empty ledger with the default rate configuration.
func New(gw Gateway) *Ledger {
	return &Ledger{gateway: gw, rate: DefaultRateConfig()}
}

// Load constructs a ledger from persisted state. On a gateway failure it
// degrades gracefully: the returned ledger is empty with default settings
// and the error is returned alongside for the caller to log. The returned
// ledger is always usable.
func Load(ctx context.Context, gw Gateway) (*Ledger, error) {
	periods, rc, err := gw.LoadAll(ctx)
	if err != nil {
		return New(gw), &PersistenceError{Op: "load all", Err: err}
	}

	l := &Ledger{gateway: gw, rate: rc}
	for i := range periods {
		p := periods[i].Copy()
		l.periods = append(l.periods, &p)
	}
	// Invariant: only the last period may be active.
	if n := len(l.periods); n > 0 && l.periods[n-1].IsActive() {
		l.activeID = l.periods[n-1].ID
	}
	return l, nil
}

// =============================================================================
// MUTATIONS - Serialized, durable before return, rolled back on failure
// =============================================================================

// StartNewPeriod closes the active period (if any) at `start` and appends a
// new active period starting there. A zero start means today. This is the
// sole way a period transitions from active to closed, other than clearing
// all data.
func (l *Ledger) StartNewPeriod(ctx context.Context, start Date) (Period, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.startNewPeriodLocked(ctx, start)
}

func (l *Ledger) startNewPeriodLocked(ctx context.Context, start Date) (Period, error) {
	if start.IsZero() {
		start = Today()
	}

	snap := l.snapshotLocked()

	if prev := l.activePeriodLocked(); prev != nil {
		prev.close(start)
		if err := l.gateway.SavePeriodBoundary(ctx, prev.Copy()); err != nil {
			l.restoreLocked(snap)
			return Period{}, &PersistenceError{Op: "save period boundary", Err: err}
		}
	}

	p := newPeriod(start)
	l.periods = append(l.periods, p)
	l.activeID = p.ID

	if err := l.gateway.SavePeriodBoundary(ctx, p.Copy()); err != nil {
		l.restoreLocked(snap)
		return Period{}, &PersistenceError{Op: "save period boundary", Err: err}
	}

	return p.Copy(), nil
}

// LogHours appends an entry to the active period, starting one implicitly
// (with the entry's date as its start) when none exists. Validation is
// rejected before any durable write; a failed write rolls the whole
// mutation back.
func (l *Ledger) LogHours(ctx context.Context, date Date, hours decimal.Decimal, note string) (Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Fail fast so an invalid entry never implicitly starts a period.
	if !hours.IsPositive() {
		return Entry{}, &InvalidEntryError{Hours: hours, Reason: "hours must be positive"}
	}

	snap := l.snapshotLocked()

	if l.activePeriodLocked() == nil {
		if _, err := l.startNewPeriodLocked(ctx, date); err != nil {
			l.restoreLocked(snap)
			return Entry{}, err
		}
	}

	active := l.activePeriodLocked()
	entry, err := active.AddEntry(date, hours, note)
	if err != nil {
		l.restoreLocked(snap)
		return Entry{}, err
	}

	if err := l.gateway.SaveEntry(ctx, active.ID, entry); err != nil {
		l.restoreLocked(snap)
		return Entry{}, &PersistenceError{Op: "save entry", Err: err}
	}

	return entry, nil
}

// UpdateRateConfig validates and installs a new rate configuration. The
// previous configuration stays current unless the durable write succeeds.
func (l *Ledger) UpdateRateConfig(ctx context.Context, rc RateConfig) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if rc.BaseRate.IsNegative() || rc.AvgTipRate.IsNegative() {
		return &InvalidRateError{BaseRate: rc.BaseRate, AvgTipRate: rc.AvgTipRate}
	}

	if err := l.gateway.SaveRateConfig(ctx, rc); err != nil {
		return &PersistenceError{Op: "save rate config", Err: err}
	}

	l.rate = rc
	return nil
}

// ClearAllData removes every period and resets the rate configuration to
// defaults. Idempotent. The durable state is fully replaced, not merged.
func (l *Ledger) ClearAllData(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.gateway.Clear(ctx); err != nil {
		return &PersistenceError{Op: "clear", Err: err}
	}

	l.periods = nil
	l.activeID = ""
	l.rate = DefaultRateConfig()
	return nil
}

// =============================================================================
// QUERIES - Snapshot reads, never expose internal state
// =============================================================================

// ActivePeriod returns a copy of the active period, or nil when none.
func (l *Ledger) ActivePeriod() *Period {
	l.mu.RLock()
	defer l.mu.RUnlock()

	p := l.activePeriodLocked()
	if p == nil {
		return nil
	}
	cp := p.Copy()
	return &cp
}

// RateConfig returns the currently installed rate configuration.
func (l *Ledger) RateConfig() RateConfig {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.rate
}

// Periods returns copies of all periods in insertion order.
func (l *Ledger) Periods() []Period {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]Period, len(l.periods))
	for i, p := range l.periods {
		result[i] = p.Copy()
	}
	return result
}

// RecentEntries returns up to limit entries in reverse-chronological
// logging order: newest entry of the active period first, then older
// entries, continuing into prior periods. Display only.
func (l *Ledger) RecentEntries(limit int) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if limit <= 0 {
		return nil
	}

	var result []Entry
	for i := len(l.periods) - 1; i >= 0 && len(result) < limit; i-- {
		entries := l.periods[i].Entries
		for j := len(entries) - 1; j >= 0 && len(result) < limit; j-- {
			result = append(result, entries[j])
		}
	}
	return result
}

// =============================================================================
// INTERNAL - Snapshot/restore and invariant helpers
// =============================================================================

func (l *Ledger) activePeriodLocked() *Period {
	if l.activeID == "" {
		return nil
	}
	// Invariant: the active period is the last element.
	last := l.periods[len(l.periods)-1]
	if last.ID != l.activeID {
		return nil
	}
	return last
}

type ledgerSnapshot struct {
	periods  []*Period
	activeID PeriodID
	rate     RateConfig
}

func (l *Ledger) snapshotLocked() ledgerSnapshot {
	periods := make([]*Period, len(l.periods))
	for i, p := range l.periods {
		cp := p.Copy()
		periods[i] = &cp
	}
	return ledgerSnapshot{periods: periods, activeID: l.activeID, rate: l.rate}
}

func (l *Ledger) restoreLocked(s ledgerSnapshot) {
	l.periods = s.periods
	l.activeID = s.activeID
	l.rate = s.rate
}
