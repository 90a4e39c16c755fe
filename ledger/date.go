package ledger

import "time"

// =============================================================================
// DATE - Calendar day abstraction (entries and period boundaries are days)
// =============================================================================

// Date is a calendar day, normalized to midnight UTC. The canonical string
// form is "2006-01-02", which is also how dates are stored on disk.
type Date struct {
	t time.Time
}

// DateLayout is the canonical wire/storage format for dates.
const DateLayout = "2006-01-02"

// Constructors
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func Today() Date {
	return DateOf(time.Now().UTC())
}

// ParseDate parses the canonical "2006-01-02" form.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

// Comparison
func (d Date) Before(other Date) bool { return d.t.Before(other.t) }
func (d Date) After(other Date) bool  { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool  { return d.t.Equal(other.t) }
func (d Date) IsZero() bool           { return d.t.IsZero() }

// Arithmetic
func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }

// Properties
func (d Date) Year() int         { return d.t.Year() }
func (d Date) Month() time.Month { return d.t.Month() }
func (d Date) Day() int          { return d.t.Day() }
func (d Date) Time() time.Time   { return d.t }

func (d Date) String() string { return d.t.Format(DateLayout) }
