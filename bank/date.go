package bank

import (
	"time"
)

// =============================================================================
// DATE - Day-granularity calendar value
// =============================================================================

// Date is a calendar day in UTC. The simulation engine only ever thinks
// in whole days; wall-clock time appears solely on Transaction and Bill
// timestamps.
type Date struct {
	t time.Time
}

// Constructors
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a time.Time to its UTC calendar day.
func DateOf(t time.Time) Date {
	u := t.UTC()
	return NewDate(u.Year(), u.Month(), u.Day())
}

func Today() Date {
	return DateOf(time.Now())
}

// ParseDate parses "2006-01-02".
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

// Comparison
func (d Date) Before(other Date) bool        { return d.t.Before(other.t) }
func (d Date) After(other Date) bool         { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool         { return d.t.Equal(other.t) }
func (d Date) BeforeOrEqual(other Date) bool { return !d.t.After(other.t) }
func (d Date) AfterOrEqual(other Date) bool  { return !d.t.Before(other.t) }

// Arithmetic
func (d Date) AddDays(n int) Date   { return Date{t: d.t.AddDate(0, 0, n)} }
func (d Date) AddMonths(n int) Date { return Date{t: d.t.AddDate(0, n, 0)} }

// Properties
func (d Date) Year() int         { return d.t.Year() }
func (d Date) Month() time.Month { return d.t.Month() }
func (d Date) Day() int          { return d.t.Day() }
func (d Date) IsZero() bool      { return d.t.IsZero() }

// DaysInMonth returns the length of the month containing d.
func (d Date) DaysInMonth() int {
	first := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
	return first.AddDate(0, 1, -1).Day()
}

// WithDay returns d with its day-of-month replaced. The caller is
// responsible for clamping day against DaysInMonth.
func (d Date) WithDay(day int) Date {
	return NewDate(d.Year(), d.Month(), day)
}

// ClampedDay returns day clamped to the length of d's month.
func (d Date) ClampedDay(day int) int {
	if last := d.DaysInMonth(); day > last {
		return last
	}
	return day
}

// EndsMonth reports whether d is the last day of its month, i.e. the
// next day crosses a month boundary.
func (d Date) EndsMonth() bool {
	return d.AddDays(1).Month() != d.Month()
}

// DaysUntil returns the number of whole days from d to other.
func (d Date) DaysUntil(other Date) int {
	return int(other.t.Sub(d.t).Hours() / 24)
}

// Midnight returns the start-of-day timestamp for d. Used to stamp
// events produced by the simulation rather than by a live caller.
func (d Date) Midnight() time.Time { return d.t }

func (d Date) String() string {
	return d.t.Format("2006-01-02")
}

// JSON round-trips as "2006-01-02".
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) >= 2 && s[0] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
