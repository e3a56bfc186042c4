package entity

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the canonical travel date format
const DateLayout = "2006-01-02"

// Date is a calendar day without time-of-day or zone
type Date struct {
	t time.Time
}

// NewDate creates a date from its components
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseCanonicalDate parses a YYYY-MM-DD string
func ParseCanonicalDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{t: t}, nil
}

// String returns the canonical YYYY-MM-DD form
func (d Date) String() string {
	return d.t.Format(DateLayout)
}

// Time returns the date at midnight UTC
func (d Date) Time() time.Time {
	return d.t
}

// Year returns the date's year
func (d Date) Year() int {
	return d.t.Year()
}

// Month returns the date's month
func (d Date) Month() time.Month {
	return d.t.Month()
}

// Before reports whether d is earlier than other
func (d Date) Before(other Date) bool {
	return d.t.Before(other.t)
}

// After reports whether d is later than other
func (d Date) After(other Date) bool {
	return d.t.After(other.t)
}

// MarshalJSON encodes the date as a YYYY-MM-DD string
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes a YYYY-MM-DD string
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseCanonicalDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
