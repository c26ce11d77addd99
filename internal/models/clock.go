package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// ParseClock converts an "HH:MM" wall-clock string into minutes from midnight.
func ParseClock(raw string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(raw), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock value %q", raw)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid hour in clock value %q", raw)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid minute in clock value %q", raw)
	}
	return hour*60 + minute, nil
}

// FormatClock renders minutes from midnight as "HH:MM".
func FormatClock(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}

// ParseDate converts a "YYYY-MM-DD" string into a UTC midnight instant.
func ParseDate(raw string) (time.Time, error) {
	date, err := time.Parse(DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date value %q", raw)
	}
	return date, nil
}

// DateOnly truncates an instant to its UTC calendar date.
func DateOnly(t time.Time) time.Time {
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// IsWeekend reports whether the date falls on Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	weekday := t.Weekday()
	return weekday == time.Saturday || weekday == time.Sunday
}
