package util

import (
	"fmt"
	"time"
)

// ISODate is the wire format for request date ranges.
const ISODate = "2006-01-02"

// ParseISODate parses a YYYY-MM-DD date string.
func ParseISODate(s string) (time.Time, error) {
	t, err := time.Parse(ISODate, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// TradingDaysBetween approximates the number of trading days between two dates
// (5 of every 7 calendar days, holidays ignored).
func TradingDaysBetween(start, end time.Time) int {
	if !end.After(start) {
		return 0
	}
	days := int(end.Sub(start).Hours() / 24)
	return days * 5 / 7
}
