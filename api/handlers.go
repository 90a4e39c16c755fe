/*
handlers.go - HTTP API handlers for the earnings ledger

PURPOSE:
  Exposes the ledger via REST API. Handles HTTP request/response, JSON
  serialization, and delegates to domain logic. This layer plays the role
  of the UI boundary: one ledger operation at a time, each awaited until
  its durable write completes.

ENDPOINTS:
  Entries:
    POST   /api/entries             Log hours (implicitly starts a period)
    GET    /api/entries/recent      Recent entries, newest first

  Periods:
    GET    /api/periods             All periods with totals
    POST   /api/periods             Start new period (closes the active one)
    GET    /api/periods/active      The active period

  Settings:
    GET    /api/settings            Current rate configuration
    PUT    /api/settings            Save & apply a new rate configuration

  Earnings:
    GET    /api/earnings            Actual + projected earnings display

  Export / Admin:
    GET    /api/export              Plain-text data export
    POST   /api/admin/clear         Clear all data

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors (negative rates, non-positive hours)
  - 404: No active period
  - 500: Persistence failures (safe to retry; memory was rolled back)

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/ledgerflow/ledger"
)

// DefaultRecentLimit caps the recent-entries display when the client does
// not ask for a specific limit.
const DefaultRecentLimit = 10

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Ledger *ledger.Ledger
}

// NewHandler creates a new handler around the given ledger.
func NewHandler(l *ledger.Ledger) *Handler {
	return &Handler{Ledger: l}
}

// =============================================================================
// ENTRY HANDLERS
// =============================================================================

// LogHours logs a work session into the active period.
func (h *Handler) LogHours(w http.ResponseWriter, r *http.Request) {
	var req LogHoursRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	hours, err := decimal.NewFromString(req.Hours)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid hours (must be a decimal number)", err)
		return
	}

	var date ledger.Date
	if req.Date != "" {
		date, err = ledger.ParseDate(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
			return
		}
	}

	entry, err := h.Ledger.LogHours(r.Context(), date, hours, req.Note)
	if err != nil {
		writeDomainError(w, "Failed to log hours", err)
		return
	}

	writeJSON(w, http.StatusCreated, toEntryDTO(entry))
}

// RecentEntries returns entries in reverse-chronological logging order.
func (h *Handler) RecentEntries(w http.ResponseWriter, r *http.Request) {
	limit := DefaultRecentLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit (must be a positive integer)", err)
			return
		}
		limit = n
	}

	entries := h.Ledger.RecentEntries(limit)
	writeJSON(w, http.StatusOK, toEntryDTOs(entries))
}

// =============================================================================
// PERIOD HANDLERS
// =============================================================================

// ListPeriods returns all periods in insertion order.
func (h *Handler) ListPeriods(w http.ResponseWriter, r *http.Request) {
	periods := h.Ledger.Periods()
	dtos := make([]PeriodDTO, len(periods))
	for i, p := range periods {
		dtos[i] = toPeriodDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// StartPeriod closes the active period and starts a new one. The body is
// optional: no body at all means the same as {} (start today).
func (h *Handler) StartPeriod(w http.ResponseWriter, r *http.Request) {
	var req StartPeriodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var start ledger.Date
	if req.StartDate != "" {
		var err error
		start, err = ledger.ParseDate(req.StartDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid start_date format (use YYYY-MM-DD)", err)
			return
		}
	}

	period, err := h.Ledger.StartNewPeriod(r.Context(), start)
	if err != nil {
		writeDomainError(w, "Failed to start period", err)
		return
	}

	writeJSON(w, http.StatusCreated, toPeriodDTO(period))
}

// ActivePeriod returns the currently active period.
func (h *Handler) ActivePeriod(w http.ResponseWriter, r *http.Request) {
	p := h.Ledger.ActivePeriod()
	if p == nil {
		writeError(w, http.StatusNotFound, "No active period", nil)
		return
	}
	writeJSON(w, http.StatusOK, toPeriodDTO(*p))
}

// =============================================================================
// SETTINGS HANDLERS
// =============================================================================

// GetSettings returns the current rate configuration.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toRateConfigDTO(h.Ledger.RateConfig()))
}

// UpdateSettings validates and installs a new rate configuration
// ("Save & Apply").
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	base, err := decimal.NewFromString(req.BaseRate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid base_rate (must be a decimal number)", err)
		return
	}
	tips, err := decimal.NewFromString(req.AvgTipRate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid avg_tip_rate (must be a decimal number)", err)
		return
	}

	rc, err := ledger.NewRateConfig(base, req.IncludeTips, tips)
	if err != nil {
		writeDomainError(w, "Invalid rate configuration", err)
		return
	}

	if err := h.Ledger.UpdateRateConfig(r.Context(), rc); err != nil {
		writeDomainError(w, "Failed to save settings", err)
		return
	}

	writeJSON(w, http.StatusOK, toRateConfigDTO(h.Ledger.RateConfig()))
}

// =============================================================================
// EARNINGS HANDLER
// =============================================================================

// Earnings returns the earnings display for the active period. The
// optional target_hours query drives the projection.
func (h *Handler) Earnings(w http.ResponseWriter, r *http.Request) {
	target := decimal.Zero
	if raw := r.URL.Query().Get("target_hours"); raw != "" {
		var err error
		target, err = decimal.NewFromString(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid target_hours (must be a decimal number)", err)
			return
		}
	}

	summary := ledger.Summarize(h.Ledger.ActivePeriod(), h.Ledger.RateConfig(), target)

	writeJSON(w, http.StatusOK, EarningsDTO{
		TotalHours:    summary.TotalHours.String(),
		EffectiveRate: summary.EffectiveRate.StringFixed(2),
		Actual:        summary.Actual.StringFixed(2),
		Projected:     summary.Projected.StringFixed(2),
		TargetHours:   target.String(),
	})
}

// =============================================================================
// EXPORT / ADMIN HANDLERS
// =============================================================================

// Export renders the full ledger as a plain-text report.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	report := ledger.FormatReport(h.Ledger.Periods(), h.Ledger.RateConfig(), time.Now())
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(report))
}

// ClearAll removes all periods and resets settings to defaults.
func (h *Handler) ClearAll(w http.ResponseWriter, r *http.Request) {
	if err := h.Ledger.ClearAllData(r.Context()); err != nil {
		writeDomainError(w, "Failed to clear data", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps ledger errors to HTTP status codes. Persistence
// failures are 500s: the ledger rolled itself back, so the client may
// simply retry.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	if ledger.IsClientError(err) {
		writeError(w, http.StatusBadRequest, message, err)
		return
	}
	writeError(w, http.StatusInternalServerError, message, err)
}
