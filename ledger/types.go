/*
Package ledger implements the period & earnings ledger for LedgerFlow.

PURPOSE:
  This package contains the core domain model for tracking hourly work:
  entries are logged into user-defined periods, a configurable rate model
  turns hours into money, and every mutation is written through to a
  persistence gateway before it is visible.

KEY CONCEPTS IN THIS FILE (types.go):
  - RateConfig: The wage model (base rate, optional average tips)
  - Entry: One logged work session (date, hours, optional note)
  - Period: A bounded container of entries; at most one is active
  - Entry/Period IDs: Type-safe identifiers

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal for hours and money, never float64
  2. Snapshot reads: Accessors return copies, never internal slices
  3. Write-through: Mutations are durable before they return
  4. Type Safety: Strong typing for IDs prevents mixing entry/period ids

SEE ALSO:
  - ledger.go: The Ledger owning periods and the current RateConfig
  - earnings.go: Actual/projected earnings derived from Period + RateConfig
  - gateway.go: Persistence interface
*/
package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EntryID string
type PeriodID string

func newEntryID() EntryID   { return EntryID(uuid.NewString()) }
func newPeriodID() PeriodID { return PeriodID(uuid.NewString()) }

// =============================================================================
// RATE CONFIG - The wage model
// =============================================================================

// Default rate configuration, applied on first run and after ClearAllData.
var (
	DefaultBaseRate   = decimal.RequireFromString("7.00")
	DefaultAvgTipRate = decimal.RequireFromString("23.15")
)

// RateConfig holds the currently configured wage model. It is an immutable
// value: Ledger.UpdateRateConfig installs a whole new one, it is never
// mutated in place.
//
// AvgTipRate is kept even while IncludeTips is false, so toggling tips back
// on restores the previous value.
type RateConfig struct {
	BaseRate    decimal.Decimal
	IncludeTips bool
	AvgTipRate  decimal.Decimal
}

// DefaultRateConfig returns the first-run configuration.
func DefaultRateConfig() RateConfig {
	return RateConfig{
		BaseRate:    DefaultBaseRate,
		IncludeTips: false,
		AvgTipRate:  DefaultAvgTipRate,
	}
}

// NewRateConfig validates and builds a RateConfig. Both rates must be
// non-negative; a violation is rejected with *InvalidRateError before any
// state changes.
func NewRateConfig(baseRate decimal.Decimal, includeTips bool, avgTipRate decimal.Decimal) (RateConfig, error) {
	if baseRate.IsNegative() || avgTipRate.IsNegative() {
		return RateConfig{}, &InvalidRateError{BaseRate: baseRate, AvgTipRate: avgTipRate}
	}
	return RateConfig{BaseRate: baseRate, IncludeTips: includeTips, AvgTipRate: avgTipRate}, nil
}

// EffectiveHourlyRate returns BaseRate, plus AvgTipRate when tips are
// included.
func (rc RateConfig) EffectiveHourlyRate() decimal.Decimal {
	if rc.IncludeTips {
		return rc.BaseRate.Add(rc.AvgTipRate)
	}
	return rc.BaseRate
}

// =============================================================================
// ENTRY - One logged work session
// =============================================================================

// Entry is a single logged work session. Entries are owned exclusively by
// their Period and are only removed when the whole ledger is cleared.
type Entry struct {
	ID    EntryID
	Date  Date
	Hours decimal.Decimal
	Note  string

	// LoggedAt orders entries within a period (insertion order, which is
	// the chronological logging order - not necessarily sorted by Date).
	LoggedAt time.Time
}
