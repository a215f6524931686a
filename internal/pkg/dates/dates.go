// Package dates handles the calendar dates stored on records.
// Dates are kept as YYYY-MM-DD strings so they sort lexicographically.
package dates

import (
	"fmt"
	"math"
	"time"
)

// Layout is the storage format for calendar dates
const Layout = "2006-01-02"

// Format renders t as a calendar date in t's location
func Format(t time.Time) string {
	return t.Format(Layout)
}

// AddDays returns the date n days after date
func AddDays(date string, n int) (string, error) {
	t, err := Parse(date)
	if err != nil {
		return "", err
	}
	return Format(t.AddDate(0, 0, n)), nil
}

// Parse parses a calendar date
func Parse(date string) (time.Time, error) {
	t, err := time.Parse(Layout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return t, nil
}

// DaysBetween returns whole days from start to end, rounded up
func DaysBetween(start, end string) (int, error) {
	s, err := Parse(start)
	if err != nil {
		return 0, err
	}
	e, err := Parse(end)
	if err != nil {
		return 0, err
	}
	return int(math.Ceil(e.Sub(s).Hours() / 24)), nil
}

// Month returns the YYYY-MM part of a date
func Month(date string) string {
	if len(date) < 7 {
		return date
	}
	return date[:7]
}

// MonthsBack returns the first day of the month n-1 months before t,
// so MonthsBack(t, 1) is the start of t's month
func MonthsBack(t time.Time, n int) string {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return Format(first.AddDate(0, -(n - 1), 0))
}
