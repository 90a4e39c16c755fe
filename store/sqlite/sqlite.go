/*
Package sqlite provides a SQLite-backed implementation of ledger.Gateway.

PURPOSE:
  Durable local storage for periods, entries, and the rate configuration,
  in a single database file. This is the production gateway; the
  in-memory one in ledger/store exists for tests.

KEY TABLES:
  periods:   Period boundaries (start date, optional end date)
  entries:   Logged work sessions, owned by their period
  settings:  Single row holding the current rate configuration and the
             active period id

DURABILITY CONTRACT:
  Every method commits before returning. Multi-statement writes run inside
  a database transaction, so a call either fully applies or has no effect
  observable on reload.

PRECISION:
  Hours and rates are stored as decimal strings, never as floats, to keep
  exact precision across reload.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  gw, err := sqlite.New("./ledgerflow.db")
  if err != nil {
      log.Fatal(err)
  }
  defer gw.Close()

  led, err := ledger.Load(ctx, gw)

SEE ALSO:
  - ledger/gateway.go: Interface definition and contract
  - ledger/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/ledgerflow/ledger"
)

// timeLayout is RFC 3339 with a fixed-width fractional second. Stored
// timestamps are compared lexicographically (ORDER BY), so the string
// order must equal the chronological order; RFC3339Nano trims trailing
// fractional zeros and breaks that ("...00.15Z" sorts before "...00.1Z").
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Gateway implements ledger.Gateway using SQLite.
type Gateway struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a SQLite gateway at the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Gateway, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	gw := &Gateway{db: db}
	if err := gw.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return gw, nil
}

// Close closes the database connection.
func (g *Gateway) Close() error {
	return g.db.Close()
}

// migrate creates the database schema.
func (g *Gateway) migrate() error {
	schema := `
	-- Periods (boundaries only; entries live in their own table)
	CREATE TABLE IF NOT EXISTS periods (
		id TEXT PRIMARY KEY,
		start_date TEXT NOT NULL,
		end_date TEXT,
		created_at TEXT NOT NULL
	);

	-- Entries (owned by their period, insertion order = logged_at order)
	CREATE TABLE IF NOT EXISTS entries (
		id TEXT PRIMARY KEY,
		period_id TEXT NOT NULL REFERENCES periods(id),
		date TEXT NOT NULL,
		hours TEXT NOT NULL,
		note TEXT,
		logged_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_entries_period
		ON entries(period_id, logged_at);

	-- Settings (single row: current rate config + active period id)
	CREATE TABLE IF NOT EXISTS settings (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		base_rate TEXT NOT NULL,
		include_tips INTEGER NOT NULL,
		avg_tip_rate TEXT NOT NULL,
		active_period_id TEXT,
		updated_at TEXT NOT NULL
	);
	`

	_, err := g.db.Exec(schema)
	return err
}

// =============================================================================
// GATEWAY (ledger.Gateway interface)
// =============================================================================

// LoadAll returns all periods (entries included, in logging order) and the
// current rate configuration.
func (g *Gateway) LoadAll(ctx context.Context) ([]ledger.Period, ledger.RateConfig, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	periods, order, err := g.loadPeriods(ctx)
	if err != nil {
		return nil, ledger.RateConfig{}, err
	}

	if err := g.loadEntries(ctx, periods); err != nil {
		return nil, ledger.RateConfig{}, err
	}

	rc, err := g.loadRateConfig(ctx)
	if err != nil {
		return nil, ledger.RateConfig{}, err
	}

	result := make([]ledger.Period, 0, len(order))
	for _, id := range order {
		result = append(result, *periods[id])
	}
	return result, rc, nil
}

func (g *Gateway) loadPeriods(ctx context.Context) (map[ledger.PeriodID]*ledger.Period, []ledger.PeriodID, error) {
	rows, err := g.db.QueryContext(ctx,
		`SELECT id, start_date, end_date FROM periods ORDER BY created_at ASC, start_date ASC`)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query periods: %w", err)
	}
	defer rows.Close()

	periods := make(map[ledger.PeriodID]*ledger.Period)
	var order []ledger.PeriodID
	for rows.Next() {
		var (
			id        string
			startDate string
			endDate   sql.NullString
		)
		if err := rows.Scan(&id, &startDate, &endDate); err != nil {
			return nil, nil, fmt.Errorf("failed to scan period: %w", err)
		}

		start, err := ledger.ParseDate(startDate)
		if err != nil {
			return nil, nil, fmt.Errorf("corrupt period start date %q: %w", startDate, err)
		}

		p := &ledger.Period{ID: ledger.PeriodID(id), StartDate: start}
		if endDate.Valid {
			end, err := ledger.ParseDate(endDate.String)
			if err != nil {
				return nil, nil, fmt.Errorf("corrupt period end date %q: %w", endDate.String, err)
			}
			p.EndDate = &end
		}

		periods[p.ID] = p
		order = append(order, p.ID)
	}
	return periods, order, rows.Err()
}

func (g *Gateway) loadEntries(ctx context.Context, periods map[ledger.PeriodID]*ledger.Period) error {
	rows, err := g.db.QueryContext(ctx,
		`SELECT id, period_id, date, hours, note, logged_at FROM entries ORDER BY logged_at ASC, id ASC`)
	if err != nil {
		return fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id       string
			periodID string
			date     string
			hours    string
			note     sql.NullString
			loggedAt string
		)
		if err := rows.Scan(&id, &periodID, &date, &hours, &note, &loggedAt); err != nil {
			return fmt.Errorf("failed to scan entry: %w", err)
		}

		p, ok := periods[ledger.PeriodID(periodID)]
		if !ok {
			// Orphaned entry; skip rather than fail the whole load.
			continue
		}

		d, err := ledger.ParseDate(date)
		if err != nil {
			return fmt.Errorf("corrupt entry date %q: %w", date, err)
		}
		h, err := decimal.NewFromString(hours)
		if err != nil {
			return fmt.Errorf("corrupt entry hours %q: %w", hours, err)
		}
		at, _ := time.Parse(time.RFC3339Nano, loggedAt)

		p.Entries = append(p.Entries, ledger.Entry{
			ID:       ledger.EntryID(id),
			Date:     d,
			Hours:    h,
			Note:     note.String,
			LoggedAt: at,
		})
	}
	return rows.Err()
}

func (g *Gateway) loadRateConfig(ctx context.Context) (ledger.RateConfig, error) {
	var (
		baseRate    string
		includeTips int
		avgTipRate  string
	)
	err := g.db.QueryRowContext(ctx,
		`SELECT base_rate, include_tips, avg_tip_rate FROM settings WHERE id = 1`,
	).Scan(&baseRate, &includeTips, &avgTipRate)
	if err == sql.ErrNoRows {
		// First run: no settings saved yet.
		return ledger.DefaultRateConfig(), nil
	}
	if err != nil {
		return ledger.RateConfig{}, fmt.Errorf("failed to load settings: %w", err)
	}

	base, err := decimal.NewFromString(baseRate)
	if err != nil {
		return ledger.RateConfig{}, fmt.Errorf("corrupt base rate %q: %w", baseRate, err)
	}
	tips, err := decimal.NewFromString(avgTipRate)
	if err != nil {
		return ledger.RateConfig{}, fmt.Errorf("corrupt avg tip rate %q: %w", avgTipRate, err)
	}

	return ledger.RateConfig{
		BaseRate:    base,
		IncludeTips: includeTips != 0,
		AvgTipRate:  tips,
	}, nil
}

// SaveEntry durably appends an entry to its period.
func (g *Gateway) SaveEntry(ctx context.Context, periodID ledger.PeriodID, entry ledger.Entry) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	_, err := g.db.ExecContext(ctx,
		`INSERT INTO entries (id, period_id, date, hours, note, logged_at) VALUES (?, ?, ?, ?, ?, ?)`,
		string(entry.ID),
		string(periodID),
		entry.Date.String(),
		entry.Hours.String(),
		nullString(entry.Note),
		entry.LoggedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to save entry: %w", err)
	}
	return nil
}

// SavePeriodBoundary upserts a period's boundaries and keeps the persisted
// active-period id in sync. Runs in one database transaction.
func (g *Gateway) SavePeriodBoundary(ctx context.Context, period ledger.Period) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var endDate any
	if period.EndDate != nil {
		endDate = period.EndDate.String()
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO periods (id, start_date, end_date, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET start_date = excluded.start_date, end_date = excluded.end_date`,
		string(period.ID),
		period.StartDate.String(),
		endDate,
		time.Now().UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to save period boundary: %w", err)
	}

	// Settings track the active period id. A newly opened period becomes
	// active; closing a period clears the id if it was the active one.
	if period.EndDate == nil {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO settings (id, base_rate, include_tips, avg_tip_rate, active_period_id, updated_at)
			VALUES (1, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET active_period_id = excluded.active_period_id, updated_at = excluded.updated_at`,
			ledger.DefaultBaseRate.String(), 0, ledger.DefaultAvgTipRate.String(),
			string(period.ID),
			time.Now().UTC().Format(time.RFC3339),
		)
	} else {
		_, err = tx.ExecContext(ctx,
			`UPDATE settings SET active_period_id = NULL, updated_at = ? WHERE id = 1 AND active_period_id = ?`,
			time.Now().UTC().Format(time.RFC3339), string(period.ID),
		)
	}
	if err != nil {
		return fmt.Errorf("failed to sync active period id: %w", err)
	}

	return tx.Commit()
}

// SaveRateConfig durably replaces the current rate configuration,
// preserving the stored active period id.
func (g *Gateway) SaveRateConfig(ctx context.Context, rc ledger.RateConfig) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	includeTips := 0
	if rc.IncludeTips {
		includeTips = 1
	}

	_, err := g.db.ExecContext(ctx, `
		INSERT INTO settings (id, base_rate, include_tips, avg_tip_rate, active_period_id, updated_at)
		VALUES (1, ?, ?, ?, NULL, ?)
		ON CONFLICT(id) DO UPDATE SET
			base_rate = excluded.base_rate,
			include_tips = excluded.include_tips,
			avg_tip_rate = excluded.avg_tip_rate,
			updated_at = excluded.updated_at`,
		rc.BaseRate.String(),
		includeTips,
		rc.AvgTipRate.String(),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save rate config: %w", err)
	}
	return nil
}

// Clear removes all persisted state. Idempotent; fully replaces prior
// state rather than merging. VACUUM afterwards is best-effort.
func (g *Gateway) Clear(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM entries`,
		`DELETE FROM periods`,
		`DELETE FROM settings`,
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to clear data: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit clear: %w", err)
	}

	// Reclaim file space; failure here does not affect correctness.
	g.db.ExecContext(ctx, `VACUUM`)
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
