package model

import (
	"fmt"
	"regexp"
	"time"

	"fitstudio-backend/internal/domain"
)

// Period identifies a billing month. Its storage key is "MM-YYYY" and its
// display form is "MM/YYYY"; the "/" separator must never reach a storage path.
type Period struct {
	Month time.Month
	Year  int
}

var periodKeyRe = regexp.MustCompile(`^(\d{2})-(\d{4})$`)

func NewPeriod(month, year int) (Period, error) {
	if month < 1 || month > 12 || year < 1 {
		return Period{}, domain.ErrInvalidPeriod
	}
	return Period{Month: time.Month(month), Year: year}, nil
}

// PeriodOf returns the billing period a date falls in.
func PeriodOf(t time.Time) Period {
	return Period{Month: t.Month(), Year: t.Year()}
}

// CurrentPeriod returns the period of the current calendar month.
func CurrentPeriod() Period {
	return PeriodOf(time.Now())
}

// ParsePeriodKey parses the canonical "MM-YYYY" storage form.
func ParsePeriodKey(s string) (Period, error) {
	m := periodKeyRe.FindStringSubmatch(s)
	if m == nil {
		return Period{}, domain.ErrInvalidPeriod
	}
	var month, year int
	fmt.Sscanf(m[1], "%d", &month)
	fmt.Sscanf(m[2], "%d", &year)
	return NewPeriod(month, year)
}

// Key returns the canonical "MM-YYYY" storage form.
func (p Period) Key() string {
	return fmt.Sprintf("%02d-%04d", int(p.Month), p.Year)
}

// Display returns the human "MM/YYYY" form. Never use it in storage paths.
func (p Period) Display() string {
	return fmt.Sprintf("%02d/%04d", int(p.Month), p.Year)
}

// Contains reports whether t falls in this period. The comparison is on
// calendar month and year only; no timezone normalization is performed.
func (p Period) Contains(t time.Time) bool {
	return t.Month() == p.Month && t.Year() == p.Year
}

func (p Period) IsZero() bool {
	return p.Month == 0 && p.Year == 0
}

func (p Period) String() string { return p.Key() }
