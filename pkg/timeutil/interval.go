package timeutil

import (
	"fmt"
	"strings"
	"time"
)

// WeekStart selects the first weekday of rendered weeks.
type WeekStart time.Weekday

const (
	// WeekStartSunday is the default used by the calendar grid.
	WeekStartSunday = WeekStart(time.Sunday)
	// WeekStartMonday shifts weeks to a Monday start.
	WeekStartMonday = WeekStart(time.Monday)
)

// ParseWeekStart converts a config value to a WeekStart.
func ParseWeekStart(raw string) (WeekStart, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "sunday", "sun":
		return WeekStartSunday, nil
	case "monday", "mon":
		return WeekStartMonday, nil
	}
	return WeekStartSunday, fmt.Errorf("timeutil: unknown week start %q", raw)
}

// Interval is an inclusive range of calendar days, both bounds at midnight.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t's calendar day falls inside the interval.
func (iv Interval) Contains(t time.Time) bool {
	day := StartOfDay(t)
	return !day.Before(iv.Start) && !day.After(iv.End)
}

// Days enumerates every day in the interval in order.
func (iv Interval) Days() []time.Time {
	if iv.End.Before(iv.Start) {
		return nil
	}
	days := make([]time.Time, 0, int(iv.End.Sub(iv.Start).Hours()/24)+1)
	for day := iv.Start; !day.After(iv.End); day = day.AddDate(0, 0, 1) {
		days = append(days, day)
	}
	return days
}

// Keys returns the day keys for every day in the interval.
func (iv Interval) Keys() []string {
	days := iv.Days()
	keys := make([]string, len(days))
	for i, day := range days {
		keys[i] = DayKey(day)
	}
	return keys
}

// DayInterval is the single-day interval containing anchor.
func DayInterval(anchor time.Time) Interval {
	day := StartOfDay(anchor)
	return Interval{Start: day, End: day}
}

// WeekInterval is the week containing anchor, honoring the week start.
func WeekInterval(anchor time.Time, start WeekStart) Interval {
	day := StartOfDay(anchor)
	offset := (int(day.Weekday()) - int(start) + 7) % 7
	first := day.AddDate(0, 0, -offset)
	return Interval{Start: first, End: first.AddDate(0, 0, 6)}
}

// MonthGridInterval is the full calendar-grid interval for anchor's month,
// including the leading and trailing days that pad the grid to whole weeks.
func MonthGridInterval(anchor time.Time, start WeekStart) Interval {
	first := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, anchor.Location())
	last := first.AddDate(0, 1, -1)
	offset := (int(first.Weekday()) - int(start) + 7) % 7
	gridStart := first.AddDate(0, 0, -offset)
	cells := offset + last.Day()
	rows := (cells + 6) / 7
	return Interval{Start: gridStart, End: gridStart.AddDate(0, 0, rows*7-1)}
}
