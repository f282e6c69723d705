// Package timeutil provides calendar-day math shared by the agenda and the UI.
package timeutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DayKeyLayout is the canonical form used to bucket items by calendar day.
const DayKeyLayout = "2006-01-02"

// UntimedMinutes is the sort key assigned to items without a scheduled time,
// placing them after every timed item.
const UntimedMinutes = 1 << 30

// DayKey formats t as a YYYY-MM-DD bucket key in t's location.
func DayKey(t time.Time) string {
	return t.Format(DayKeyLayout)
}

// ParseDayKey parses a YYYY-MM-DD key into a midnight local time.
func ParseDayKey(key string) (time.Time, error) {
	t, err := time.ParseInLocation(DayKeyLayout, strings.TrimSpace(key), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("timeutil: parse day key %q: %w", key, err)
	}
	return t, nil
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return DayKey(a) == DayKey(b)
}

// ParseClock converts an "HH:MM" 24-hour string into minutes since midnight.
// An empty string yields UntimedMinutes so absent times sort last.
func ParseClock(clock string) (int, error) {
	trimmed := strings.TrimSpace(clock)
	if trimmed == "" {
		return UntimedMinutes, nil
	}
	parts := strings.SplitN(trimmed, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("timeutil: invalid clock %q", clock)
	}
	hh, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("timeutil: invalid clock %q: %w", clock, err)
	}
	mm, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("timeutil: invalid clock %q: %w", clock, err)
	}
	if hh < 0 || hh > 23 || mm < 0 || mm > 59 {
		return 0, fmt.Errorf("timeutil: clock %q out of range", clock)
	}
	return hh*60 + mm, nil
}

// ClockMinutes is ParseClock with malformed input treated as untimed.
func ClockMinutes(clock string) int {
	minutes, err := ParseClock(clock)
	if err != nil {
		return UntimedMinutes
	}
	return minutes
}
