package model

import (
	"fmt"
	"time"
)

// Date is a calendar date stored as plain integer fields. Report filtering
// compares these fields directly, never a reconstructed time.Time, so a
// transaction recorded on the last day of a month can never drift into the
// neighboring period.
type Date struct {
	Year  int
	Month int
	Day   int
}

// NewDate returns a Date from its literal fields.
func NewDate(year, month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

// Today returns the current wall-clock date.
func Today() Date {
	y, m, d := time.Now().Date()
	return Date{Year: y, Month: int(m), Day: d}
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// After reports whether d is strictly after x, by field comparison.
func (d Date) After(x Date) bool {
	if d.Year != x.Year {
		return d.Year > x.Year
	}
	if d.Month != x.Month {
		return d.Month > x.Month
	}
	return d.Day > x.Day
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// ParseDate parses a YYYY-MM-DD string into a Date.
func ParseDate(s string) (Date, error) {
	var d Date
	if _, err := fmt.Sscanf(s, "%d-%d-%d", &d.Year, &d.Month, &d.Day); err != nil {
		return Date{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD: %w", s, err)
	}
	if d.Month < 1 || d.Month > 12 || d.Day < 1 || d.Day > 31 {
		return Date{}, fmt.Errorf("invalid date %q: out of range", s)
	}
	return d, nil
}

// Period identifies a reporting month for one branch's closing cycle.
type Period struct {
	Year  int
	Month int
}

// PeriodOf returns the period a date falls in.
func PeriodOf(d Date) Period {
	return Period{Year: d.Year, Month: d.Month}
}

// Contains reports whether the date's literal year/month fields match the period.
func (p Period) Contains(d Date) bool {
	return d.Year == p.Year && d.Month == p.Month
}

// Key returns the canonical "YYYY-MM" form used to key reports.
func (p Period) Key() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

func (p Period) String() string { return p.Key() }
