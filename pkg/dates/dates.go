// Package dates handles the calendar days that daily records are keyed by.
// A business date is always midnight UTC so equality and range queries agree
// across database dialects.
package dates

import (
	"errors"
	"strings"
	"time"
)

const Layout = "2006-01-02"

var ErrInvalidDate = errors.New("invalid_date")

// Normalize drops the time-of-day, keeping the calendar day of t.
func Normalize(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Parse reads a YYYY-MM-DD date.
func Parse(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, ErrInvalidDate
	}
	t, err := time.Parse(Layout, value)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// ParseRange reads an inclusive start/end pair and checks its order.
func ParseRange(start, end string) (time.Time, time.Time, error) {
	from, err := Parse(start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := Parse(end)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, ErrInvalidDate
	}
	return from, to, nil
}

func Format(t time.Time) string {
	return t.Format(Layout)
}

// Days returns every date from start to end inclusive.
func Days(start, end time.Time) []time.Time {
	start, end = Normalize(start), Normalize(end)
	var out []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}

// PreviousPeriod returns the range of equal length that ends the day before start.
func PreviousPeriod(start, end time.Time) (time.Time, time.Time) {
	start, end = Normalize(start), Normalize(end)
	length := int(end.Sub(start).Hours()/24) + 1
	prevEnd := start.AddDate(0, 0, -1)
	return prevEnd.AddDate(0, 0, -(length - 1)), prevEnd
}
