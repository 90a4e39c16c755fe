/*
earnings.go - Earnings derived from a Period + RateConfig

PURPOSE:
  Stateless derivation of actual and projected earnings. Same inputs
  always produce the same outputs: no hidden state, no randomness, no
  clock reads. The caller supplies everything through the period and the
  rate configuration.

PRECISION:
  Full decimal precision is retained internally; rounding to currency
  precision (two decimal places) is a display concern and happens at the
  edge (API/export), not here.

SEE ALSO:
  - types.go: RateConfig.EffectiveHourlyRate
  - export.go: Report rendering using these values
*/
package ledger

import "github.com/shopspring/decimal"

// ActualEarnings returns the period's total hours multiplied by the
// effective hourly rate. A nil period earns zero.
func ActualEarnings(period *Period, rc RateConfig) decimal.Decimal {
	if period == nil {
		return decimal.Zero
	}
	return period.TotalHours().Mul(rc.EffectiveHourlyRate())
}

// ProjectedEarnings returns targetHours multiplied by the effective hourly
// rate, used for the visual earnings display against a user-set or default
// target. A non-positive target returns zero rather than failing, so the
// projection display degrades gracefully with no data.
func ProjectedEarnings(period *Period, rc RateConfig, targetHours decimal.Decimal) decimal.Decimal {
	if !targetHours.IsPositive() {
		return decimal.Zero
	}
	return targetHours.Mul(rc.EffectiveHourlyRate())
}

// =============================================================================
// SUMMARY - Aggregate for the earnings display
// =============================================================================

// EarningsSummary bundles everything the earnings display needs for one
// period under one rate configuration.
type EarningsSummary struct {
	TotalHours    decimal.Decimal
	EffectiveRate decimal.Decimal
	Actual        decimal.Decimal
	Projected     decimal.Decimal
}

// Summarize computes the full earnings summary for a period. targetHours
// drives the projection; period may be nil (empty ledger).
func Summarize(period *Period, rc RateConfig, targetHours decimal.Decimal) EarningsSummary {
	hours := decimal.Zero
	if period != nil {
		hours = period.TotalHours()
	}
	return EarningsSummary{
		TotalHours:    hours,
		EffectiveRate: rc.EffectiveHourlyRate(),
		Actual:        ActualEarnings(period, rc),
		Projected:     ProjectedEarnings(period, rc, targetHours),
	}
}
