/*
export.go - Plain-text report of the full ledger state

PURPOSE:
  Pure serialization of already-computed ledger state: given the periods
  and the rate configuration, produce the human-readable export. No side
  effects on the ledger, no clock reads - the caller supplies the
  generation timestamp.

FORMAT:
  LedgerFlow Data Export
  Generated: <timestamp>
  Rate: $<effective>/hr (Base: $<base>, Tips: $<tips>)   [or "Tips excluded"]
  ==================================================
  Period,Date,Hours,Note,Logged_At
  <one CSV row per entry, periods in insertion order>
*/
package ledger

import (
	"fmt"
	"strings"
	"time"
)

// FormatReport renders the full ledger state as a plain-text report.
func FormatReport(periods []Period, rc RateConfig, generatedAt time.Time) string {
	var b strings.Builder

	b.WriteString("LedgerFlow Data Export\n")
	fmt.Fprintf(&b, "Generated: %s\n", generatedAt.UTC().Format(time.RFC3339))

	if rc.IncludeTips {
		fmt.Fprintf(&b, "Rate: $%s/hr (Base: $%s, Tips: $%s)\n",
			rc.EffectiveHourlyRate().StringFixed(2),
			rc.BaseRate.StringFixed(2),
			rc.AvgTipRate.StringFixed(2))
	} else {
		fmt.Fprintf(&b, "Rate: $%s/hr (Base: $%s, Tips excluded)\n",
			rc.EffectiveHourlyRate().StringFixed(2),
			rc.BaseRate.StringFixed(2))
	}

	b.WriteString(strings.Repeat("=", 50))
	b.WriteString("\n")
	b.WriteString("Period,Date,Hours,Note,Logged_At\n")

	for _, p := range periods {
		for _, e := range p.Entries {
			fmt.Fprintf(&b, "%s,%s,%s,%s,%s\n",
				p.StartDate,
				e.Date,
				e.Hours,
				csvEscape(e.Note),
				e.LoggedAt.Format(time.RFC3339))
		}
	}

	return b.String()
}

// csvEscape quotes a note containing separators or quotes.
func csvEscape(s string) string {
	if !strings.ContainsAny(s, ",\"\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
