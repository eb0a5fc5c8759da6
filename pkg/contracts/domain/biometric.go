package domain

import (
	"fmt"
	"time"
)

// DateLayout is the canonical calendar-date rendering used across the API.
const DateLayout = "2006-01-02"

// MonthLayout is the canonical month-bucket rendering.
const MonthLayout = "2006-01"

// BiometricRecord is one normalized row of biometric-authentication attempts.
// A zero Date means the source value was missing or unparsable; the row is
// still counted in every aggregation that does not group by time.
type BiometricRecord struct {
	State     string    `json:"state,omitempty"`
	District  string    `json:"district,omitempty"`
	Date      time.Time `json:"date,omitempty"`
	Age5To17  int64     `json:"bio_age_5_17"`
	Age17Plus int64     `json:"bio_age_17_"`
}

// HasDate reports whether the record carries a parsed calendar date.
func (r BiometricRecord) HasDate() bool {
	return !r.Date.IsZero()
}

// TotalAttempts is the sum of both age-group counts.
func (r BiometricRecord) TotalAttempts() int64 {
	return r.Age5To17 + r.Age17Plus
}

// Month returns the month bucket of the record date.
func (r BiometricRecord) Month() (Month, bool) {
	if !r.HasDate() {
		return Month{}, false
	}
	return MonthOf(r.Date), true
}

// Month identifies a (year, month) bucket.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf truncates t to its month bucket.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// ParseMonth parses a "YYYY-MM" label.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse(MonthLayout, s)
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q: %w", s, err)
	}
	return MonthOf(t), nil
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Before reports whether m is chronologically earlier than other.
func (m Month) Before(other Month) bool {
	if m.Year != other.Year {
		return m.Year < other.Year
	}
	return m.Month < other.Month
}

// MarshalText renders the month as "YYYY-MM".
func (m Month) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText parses a "YYYY-MM" label.
func (m *Month) UnmarshalText(text []byte) error {
	parsed, err := ParseMonth(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
