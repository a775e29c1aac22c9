package timestamp

import (
	"encoding/json"
	"fmt"
	"time"

	"go.yaml.in/yaml/v3"
)

const (
	dateFormat  = "2006-01-02"
	monthFormat = "2006-01"
)

// Date represents a calendar date without time or timezone.
type Date struct {
	time.Time
}

// NewDate creates a Date from year, month, day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar day t falls on in its own location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// Today returns today's date in the local timezone.
func Today() Date {
	return DateOf(time.Now())
}

// ParseDate parses a YYYY-MM-DD string into a Date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateFormat, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return Date{t}, nil
}

// ParseMonth parses a YYYY-MM string and returns the first day of that month.
func ParseMonth(s string) (Date, error) {
	t, err := time.Parse(monthFormat, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid month %q: expected YYYY-MM", s)
	}
	return Date{t}, nil
}

// AddDays returns the date n days after d (n may be negative).
func (d Date) AddDays(n int) Date {
	return Date{d.AddDate(0, 0, n)}
}

// Compare returns -1, 0 or +1 depending on whether d is before, equal to or after other.
func (d Date) Compare(other Date) int {
	return d.Time.Compare(other.Time)
}

// In returns the start of the day d in loc.
func (d Date) In(loc *time.Location) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
}

// String returns the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format(dateFormat)
}

// MarshalYAML implements yaml.Marshaler.
func (d Date) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

// UnmarshalYAML implements yaml.v3 Unmarshaler.
func (d *Date) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := ParseDate(value.Value)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Range is an inclusive span of calendar days. A zero From or To leaves
// that side open.
type Range struct {
	From Date `json:"from,omitzero"`
	To   Date `json:"to,omitzero"`
}

// Active reports whether either bound is set.
func (r Range) Active() bool {
	return !r.From.IsZero() || !r.To.IsZero()
}

// Valid reports whether the range is non-inverted.
func (r Range) Valid() bool {
	if r.From.IsZero() || r.To.IsZero() {
		return true
	}
	return r.From.Compare(r.To) <= 0
}

// Contains reports whether the calendar day of t lies within the range.
func (r Range) Contains(t time.Time) bool {
	day := DateOf(t)
	if !r.From.IsZero() && day.Compare(r.From) < 0 {
		return false
	}
	if !r.To.IsZero() && day.Compare(r.To) > 0 {
		return false
	}
	return true
}
