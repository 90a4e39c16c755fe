/*
errors.go - Centralized error types for the ledger

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers match with errors.Is/errors.As; the HTTP layer uses the
  classification helpers to pick status codes.

ERROR CATEGORIES:
  1. Validation errors - Bad input (negative rates, non-positive hours),
     rejected at the Ledger/Period boundary before any durable write
  2. Persistence errors - Durable write failed; in-memory state has been
     rolled back to its pre-call value and the operation can be retried

USAGE:
    if errors.Is(err, ledger.ErrInvalidEntry) {
        // reject with 400
    }
    var perr *ledger.PersistenceError
    if errors.As(err, &perr) {
        // display and allow retry
    }

SEE ALSO:
  - ledger.go: Where persistence failures are wrapped and rolled back
  - types.go: Where rate validation happens
*/
package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidRate is returned when a negative base rate or tip rate is
	// supplied to NewRateConfig.
	ErrInvalidRate = errors.New("invalid rate configuration")

	// ErrInvalidEntry is returned when an entry has non-positive hours or
	// targets a closed period.
	ErrInvalidEntry = errors.New("invalid entry")

	// ErrPeriodClosed is returned when appending to a period that already
	// has an end date. Wrapped by InvalidEntryError.
	ErrPeriodClosed = errors.New("period is closed")

	// ErrPersistence is returned when a durable write failed. The in-memory
	// ledger has been rolled back; the operation is safe to retry.
	ErrPersistence = errors.New("persistence failed")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidRateError reports the rejected rate values.
type InvalidRateError struct {
	BaseRate   decimal.Decimal
	AvgTipRate decimal.Decimal
}

func (e *InvalidRateError) Error() string {
	return fmt.Sprintf("invalid rate configuration: base %s, avg tips %s (rates cannot be negative)",
		e.BaseRate, e.AvgTipRate)
}

func (e *InvalidRateError) Unwrap() error { return ErrInvalidRate }

// InvalidEntryError reports why an entry was rejected.
type InvalidEntryError struct {
	Hours  decimal.Decimal
	Reason string
	Err    error // underlying cause, e.g. ErrPeriodClosed
}

func (e *InvalidEntryError) Error() string {
	return fmt.Sprintf("invalid entry (%s hours): %s", e.Hours, e.Reason)
}

func (e *InvalidEntryError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrInvalidEntry, e.Err}
	}
	return []error{ErrInvalidEntry}
}

// PersistenceError wraps a gateway failure. The ledger guarantees that the
// in-memory state matches the last successful durable write when this is
// returned.
type PersistenceError struct {
	Op  string // e.g. "save entry", "save rate config"
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failed during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return ErrPersistence }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidRate) ||
		errors.Is(err, ErrInvalidEntry) ||
		errors.Is(err, ErrPeriodClosed)
}

// IsRetryable returns true if the error might succeed on retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrPersistence)
}
