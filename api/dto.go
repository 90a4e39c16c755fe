/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract. Money and
  hours cross the wire as strings at currency precision; full precision
  lives only inside the ledger.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/warp/ledgerflow/ledger"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// EntryDTO represents a logged work session in API responses.
type EntryDTO struct {
	ID       string `json:"id"`
	Date     string `json:"date"`
	Hours    string `json:"hours"`
	Note     string `json:"note,omitempty"`
	LoggedAt string `json:"logged_at"`
}

// PeriodDTO represents a period with its entries and totals.
type PeriodDTO struct {
	ID         string     `json:"id"`
	StartDate  string     `json:"start_date"`
	EndDate    *string    `json:"end_date,omitempty"`
	Active     bool       `json:"active"`
	TotalHours string     `json:"total_hours"`
	Entries    []EntryDTO `json:"entries"`
}

// RateConfigDTO represents the wage model in API responses.
type RateConfigDTO struct {
	BaseRate      string `json:"base_rate"`
	IncludeTips   bool   `json:"include_tips"`
	AvgTipRate    string `json:"avg_tip_rate"`
	EffectiveRate string `json:"effective_rate"`
}

// EarningsDTO is the earnings display payload.
type EarningsDTO struct {
	TotalHours    string `json:"total_hours"`
	EffectiveRate string `json:"effective_rate"`
	Actual        string `json:"actual_earnings"`
	Projected     string `json:"projected_earnings"`
	TargetHours   string `json:"target_hours"`
}

// LogHoursRequest is the request to log a work session.
type LogHoursRequest struct {
	Date  string `json:"date,omitempty"` // YYYY-MM-DD, defaults to today
	Hours string `json:"hours"`
	Note  string `json:"note,omitempty"`
}

// StartPeriodRequest is the request to start a new period.
type StartPeriodRequest struct {
	StartDate string `json:"start_date,omitempty"` // YYYY-MM-DD, defaults to today
}

// UpdateSettingsRequest is the "Save & Apply" payload for the rate config.
type UpdateSettingsRequest struct {
	BaseRate    string `json:"base_rate"`
	IncludeTips bool   `json:"include_tips"`
	AvgTipRate  string `json:"avg_tip_rate"`
}

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERTERS
// =============================================================================

func toEntryDTO(e ledger.Entry) EntryDTO {
	return EntryDTO{
		ID:       string(e.ID),
		Date:     e.Date.String(),
		Hours:    e.Hours.String(),
		Note:     e.Note,
		LoggedAt: e.LoggedAt.Format(time.RFC3339),
	}
}

func toEntryDTOs(entries []ledger.Entry) []EntryDTO {
	dtos := make([]EntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = toEntryDTO(e)
	}
	return dtos
}

func toPeriodDTO(p ledger.Period) PeriodDTO {
	dto := PeriodDTO{
		ID:         string(p.ID),
		StartDate:  p.StartDate.String(),
		Active:     p.IsActive(),
		TotalHours: p.TotalHours().String(),
		Entries:    toEntryDTOs(p.Entries),
	}
	if p.EndDate != nil {
		end := p.EndDate.String()
		dto.EndDate = &end
	}
	return dto
}

func toRateConfigDTO(rc ledger.RateConfig) RateConfigDTO {
	return RateConfigDTO{
		BaseRate:      rc.BaseRate.StringFixed(2),
		IncludeTips:   rc.IncludeTips,
		AvgTipRate:    rc.AvgTipRate.StringFixed(2),
		EffectiveRate: rc.EffectiveHourlyRate().StringFixed(2),
	}
}
