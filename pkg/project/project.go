// Package project implements the pure projection of schedulable items onto
// calendar days: which items occur on a day, and in what order.
package project

import (
	"sort"
	"time"

	"github.com/teambition/rrule-go"

	"tableflip.dev/daybook/pkg/plan"
	"tableflip.dev/daybook/pkg/timeutil"
	"tableflip.dev/daybook/pkg/trip"
)

// Entry wraps one schedulable item considered for a day. Exactly one of Task
// or Habit is set.
type Entry struct {
	Task  *plan.Task
	Habit *plan.Habit
}

// ID returns the wrapped item's identifier.
func (e Entry) ID() string {
	switch {
	case e.Task != nil:
		return e.Task.ID
	case e.Habit != nil:
		return e.Habit.ID
	}
	return ""
}

// Title returns the wrapped item's title.
func (e Entry) Title() string {
	switch {
	case e.Task != nil:
		return e.Task.Title
	case e.Habit != nil:
		return e.Habit.Title
	}
	return ""
}

// ClockMinutes returns the item's minutes-since-midnight sort key, with
// untimed items keyed after every timed one.
func (e Entry) ClockMinutes() int {
	switch {
	case e.Task != nil:
		return timeutil.ClockMinutes(e.Task.StartTime)
	case e.Habit != nil:
		return timeutil.ClockMinutes(e.Habit.StartTime)
	}
	return timeutil.UntimedMinutes
}

// OccursOn reports whether the entry applies to the given calendar day.
func OccursOn(e Entry, day time.Time) bool {
	switch {
	case e.Task != nil:
		return TaskOccursOn(e.Task, day)
	case e.Habit != nil:
		return HabitOccursOn(e.Habit, day)
	}
	return false
}

// TaskOccursOn matches a task's stored date against the day key, independent
// of task type. Floating tasks never occur on a calendar day.
func TaskOccursOn(t *plan.Task, day time.Time) bool {
	if t == nil || t.Floating() {
		return false
	}
	return t.Date == timeutil.DayKey(day)
}

var rruleWeekdays = [7]rrule.Weekday{
	rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA,
}

// HabitOccursOn evaluates the habit's recurrence for the day. The creation
// day is a hard floor: a habit never projects onto a day before it existed,
// even when the frequency rule would match.
func HabitOccursOn(h *plan.Habit, day time.Time) bool {
	if h == nil || h.CreatedAt.IsZero() {
		return false
	}
	dayStart := timeutil.StartOfDay(day)
	floor := timeutil.StartOfDay(h.CreatedAt.In(day.Location()))
	if dayStart.Before(floor) {
		return false
	}
	switch h.Frequency {
	case plan.FrequencyDaily:
		return true
	case plan.FrequencyWeekly:
		return weeklyOccursOn(h, floor, dayStart)
	}
	return false
}

func weeklyOccursOn(h *plan.Habit, floor, dayStart time.Time) bool {
	opt := rrule.ROption{
		Freq:    rrule.WEEKLY,
		Dtstart: floor,
	}
	for _, wd := range h.DaysOfWeek {
		if wd >= 0 && wd <= 6 {
			opt.Byweekday = append(opt.Byweekday, rruleWeekdays[wd])
		}
	}
	r, err := rrule.NewRRule(opt)
	if err != nil {
		return false
	}
	dayEnd := dayStart.AddDate(0, 0, 1).Add(-time.Second)
	return len(r.Between(dayStart, dayEnd, true)) > 0
}

// ProjectDay filters items down to those occurring on day and orders them:
// timed items ascending by minutes-since-midnight, untimed items after all
// timed ones in their original relative order. The result is a new slice, so
// projecting twice from the same inputs yields identical lists.
func ProjectDay(items []Entry, day time.Time) []Entry {
	out := make([]Entry, 0, len(items))
	for _, item := range items {
		if OccursOn(item, day) {
			out = append(out, item)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ClockMinutes() < out[j].ClockMinutes()
	})
	return out
}

// SortTasks orders a day bucket in place by the projection rule: time-sorted,
// unscheduled last, insertion order preserved among equals.
func SortTasks(tasks []*plan.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return timeutil.ClockMinutes(tasks[i].StartTime) < timeutil.ClockMinutes(tasks[j].StartTime)
	})
}

// SortTrips orders a day bucket of trips in place by start time.
func SortTrips(trips []*trip.Trip) {
	sort.SliceStable(trips, func(i, j int) bool {
		return trips[i].StartAt.Before(trips[j].StartAt)
	})
}
