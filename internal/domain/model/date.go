package model

import (
	"strings"
	"time"

	"fitstudio-backend/internal/domain"
)

const isoDateLayout = "2006-01-02"

// Date is a calendar date serialized as an ISO "YYYY-MM-DD" string.
// Callers must supply dates in this canonical form; comparing month/year
// components on non-canonical input shifts across timezones.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current date truncated to day precision.
func Today() Date {
	now := time.Now()
	return NewDate(now.Year(), now.Month(), now.Day())
}

// ParseDate accepts "YYYY-MM-DD" and full RFC 3339 timestamps.
func ParseDate(s string) (Date, error) {
	if t, err := time.Parse(isoDateLayout, s); err == nil {
		return Date{t}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, domain.ErrInvalidArgument
	}
	return NewDate(t.Year(), t.Month(), t.Day()), nil
}

// AddMonths returns the date with n calendar months added, overflow carrying
// into the year (standard calendar-add semantics, not fixed 30-day steps).
func (d Date) AddMonths(n int) Date {
	return Date{d.Time.AddDate(0, n, 0)}
}

func (d Date) String() string {
	return d.Time.Format(isoDateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.Time.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
