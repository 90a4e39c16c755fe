package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/ledgerflow/api"
	"github.com/warp/ledgerflow/ledger"
	"github.com/warp/ledgerflow/ledger/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	led := ledger.New(store.NewMemory())
	return api.NewRouter(api.NewHandler(led))
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

// =============================================================================
// ENTRIES
// =============================================================================

func TestLogHoursEndpoint(t *testing.T) {
	// GIVEN: A fresh ledger
	// WHEN: Logging 5 hours via the API
	// THEN: 201 with the entry, and the active period reflects it

	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/entries",
		api.LogHoursRequest{Date: "2026-03-02", Hours: "5", Note: "lunch rush"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	entry := decodeJSON[api.EntryDTO](t, rec)
	assert.Equal(t, "2026-03-02", entry.Date)
	assert.Equal(t, "5", entry.Hours)
	assert.Equal(t, "lunch rush", entry.Note)
	assert.NotEmpty(t, entry.ID)

	rec = doJSON(t, router, http.MethodGet, "/api/periods/active", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	period := decodeJSON[api.PeriodDTO](t, rec)
	assert.True(t, period.Active)
	assert.Equal(t, "5", period.TotalHours)
	assert.Equal(t, "2026-03-02", period.StartDate)
}

func TestLogHoursEndpoint_RejectsInvalidHours(t *testing.T) {
	router := newTestRouter(t)

	for _, hours := range []string{"0", "-2", "abc"} {
		rec := doJSON(t, router, http.MethodPost, "/api/entries", api.LogHoursRequest{Hours: hours})
		assert.Equal(t, http.StatusBadRequest, rec.Code, "hours=%q", hours)
	}

	// Nothing was created.
	rec := doJSON(t, router, http.MethodGet, "/api/periods/active", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecentEntriesEndpoint(t *testing.T) {
	router := newTestRouter(t)

	for _, hours := range []string{"1", "2", "3"} {
		rec := doJSON(t, router, http.MethodPost, "/api/entries", api.LogHoursRequest{Hours: hours})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := doJSON(t, router, http.MethodGet, "/api/entries/recent?limit=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	entries := decodeJSON[[]api.EntryDTO](t, rec)
	require.Len(t, entries, 2)
	assert.Equal(t, "3", entries[0].Hours, "newest entry first")
	assert.Equal(t, "2", entries[1].Hours)
}

// =============================================================================
// PERIODS
// =============================================================================

func TestStartPeriodEndpoint(t *testing.T) {
	// GIVEN: An active period with hours logged
	// WHEN: Starting a new period
	// THEN: The old period is closed at the new start, the new one is active

	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/entries",
		api.LogHoursRequest{Date: "2026-01-05", Hours: "6"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/periods",
		api.StartPeriodRequest{StartDate: "2026-02-01"})
	require.Equal(t, http.StatusCreated, rec.Code)
	started := decodeJSON[api.PeriodDTO](t, rec)
	assert.True(t, started.Active)
	assert.Equal(t, "2026-02-01", started.StartDate)

	rec = doJSON(t, router, http.MethodGet, "/api/periods", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	periods := decodeJSON[[]api.PeriodDTO](t, rec)
	require.Len(t, periods, 2)

	assert.False(t, periods[0].Active)
	require.NotNil(t, periods[0].EndDate)
	assert.Equal(t, "2026-02-01", *periods[0].EndDate)
	assert.Equal(t, "6", periods[0].TotalHours)
	assert.True(t, periods[1].Active)
}

func TestStartPeriodEndpoint_EmptyBody(t *testing.T) {
	// A body-less POST is valid and starts a period today.

	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/periods", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	started := decodeJSON[api.PeriodDTO](t, rec)
	assert.True(t, started.Active)
	assert.NotEmpty(t, started.StartDate)
}

func TestActivePeriodEndpoint_NoneYet(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/periods/active", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// SETTINGS
// =============================================================================

func TestSettingsEndpoint_SaveAndApply(t *testing.T) {
	router := newTestRouter(t)

	// Defaults first.
	rec := doJSON(t, router, http.MethodGet, "/api/settings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	settings := decodeJSON[api.RateConfigDTO](t, rec)
	assert.Equal(t, "7.00", settings.BaseRate)
	assert.False(t, settings.IncludeTips)
	assert.Equal(t, "7.00", settings.EffectiveRate)

	// Save & Apply with tips included.
	rec = doJSON(t, router, http.MethodPut, "/api/settings",
		api.UpdateSettingsRequest{BaseRate: "7.00", IncludeTips: true, AvgTipRate: "23.15"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	settings = decodeJSON[api.RateConfigDTO](t, rec)
	assert.Equal(t, "30.15", settings.EffectiveRate)
}

func TestSettingsEndpoint_RejectsNegativeRates(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPut, "/api/settings",
		api.UpdateSettingsRequest{BaseRate: "-1", AvgTipRate: "0"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Previous settings remain in effect.
	rec = doJSON(t, router, http.MethodGet, "/api/settings", nil)
	settings := decodeJSON[api.RateConfigDTO](t, rec)
	assert.Equal(t, "7.00", settings.BaseRate)
}

// =============================================================================
// EARNINGS
// =============================================================================

func TestEarningsEndpoint(t *testing.T) {
	// The brief's scenario end to end: 5 + 3 hours at 7.00 + 23.15 tips.

	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPut, "/api/settings",
		api.UpdateSettingsRequest{BaseRate: "7.00", IncludeTips: true, AvgTipRate: "23.15"})
	require.Equal(t, http.StatusOK, rec.Code)

	for _, hours := range []string{"5", "3"} {
		rec = doJSON(t, router, http.MethodPost, "/api/entries", api.LogHoursRequest{Hours: hours})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/earnings?target_hours=80", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	earnings := decodeJSON[api.EarningsDTO](t, rec)
	assert.Equal(t, "8", earnings.TotalHours)
	assert.Equal(t, "30.15", earnings.EffectiveRate)
	assert.Equal(t, "241.20", earnings.Actual)
	assert.Equal(t, "2412.00", earnings.Projected)
}

func TestEarningsEndpoint_NoTargetDegradesToZeroProjection(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/earnings", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	earnings := decodeJSON[api.EarningsDTO](t, rec)
	assert.Equal(t, "0.00", earnings.Projected)
	assert.Equal(t, "0.00", earnings.Actual)
}

// =============================================================================
// EXPORT / ADMIN
// =============================================================================

func TestExportEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/entries",
		api.LogHoursRequest{Date: "2026-01-02", Hours: "4", Note: "brunch"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/plain"))

	body := rec.Body.String()
	assert.Contains(t, body, "LedgerFlow Data Export")
	assert.Contains(t, body, "Period,Date,Hours,Note,Logged_At")
	assert.Contains(t, body, "2026-01-02,4,brunch")
}

func TestClearEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/entries", api.LogHoursRequest{Hours: "8"})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = doJSON(t, router, http.MethodPut, "/api/settings",
		api.UpdateSettingsRequest{BaseRate: "15", IncludeTips: true, AvgTipRate: "2"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/admin/clear", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/periods/active", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/settings", nil)
	settings := decodeJSON[api.RateConfigDTO](t, rec)
	assert.Equal(t, "7.00", settings.BaseRate, "settings reset to defaults")
	assert.Equal(t, "23.15", settings.AvgTipRate)
	assert.False(t, settings.IncludeTips)
}
