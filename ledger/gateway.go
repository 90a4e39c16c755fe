/*
gateway.go - Persistence interface between the ledger and durable storage

PURPOSE:
  Defines the interface the Ledger writes through. Every Ledger mutation is
  durable before it returns; a failed gateway call means the mutation is
  rolled back in memory, so memory and disk never diverge.

CONTRACT:
  - Durability-before-return: when a call returns nil, the data survives a
    process restart.
  - Atomicity per call: a call either fully applies or has no effect
    observable on reload.
  - Clear() fully replaces prior persisted state (not a merge).

IMPLEMENTATIONS:
  - store/sqlite: Production single-file SQLite store
  - ledger/store: In-memory store for tests and dev

SEE ALSO:
  - ledger.go: The only caller of the write methods
  - store/sqlite/sqlite.go: Concrete implementation
*/
package ledger

import "context"

// Gateway is the durable storage for periods, entries, and the current
// rate configuration.
type Gateway interface {
	// LoadAll returns every persisted period (entries included, in logging
	// order) and the current rate configuration. When no configuration has
	// ever been saved, implementations return DefaultRateConfig().
	LoadAll(ctx context.Context) ([]Period, RateConfig, error)

	// SaveEntry durably appends an entry to its period.
	SaveEntry(ctx context.Context, periodID PeriodID, entry Entry) error

	// SavePeriodBoundary durably records a period's boundaries (start and,
	// when closed, end). Called both when a period is created and when it
	// is closed. Also keeps the persisted active-period id in sync.
	SavePeriodBoundary(ctx context.Context, period Period) error

	// SaveRateConfig durably replaces the current rate configuration.
	SaveRateConfig(ctx context.Context, rc RateConfig) error

	// Clear removes all persisted state. Idempotent.
	Clear(ctx context.Context) error
}
