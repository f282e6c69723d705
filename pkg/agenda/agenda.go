// Package agenda maintains the day-bucketed view of tasks, trips, and habits
// across the visible date range. Buckets are derived state: rebuilt from
// server data through the staleness cache, replaced wholesale on success,
// and left untouched on failure.
package agenda

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"tableflip.dev/daybook/pkg/client"
	"tableflip.dev/daybook/pkg/plan"
	"tableflip.dev/daybook/pkg/project"
	"tableflip.dev/daybook/pkg/snapshot"
	"tableflip.dev/daybook/pkg/staleness"
	"tableflip.dev/daybook/pkg/timeutil"
	"tableflip.dev/daybook/pkg/trip"
)

// ViewMode selects the visible range shape.
type ViewMode string

const (
	// ModeDay shows a single day.
	ModeDay ViewMode = "day"
	// ModeWeek shows the week containing the anchor.
	ModeWeek ViewMode = "week"
	// ModeMonth shows the full calendar grid for the anchor's month.
	ModeMonth ViewMode = "month"
)

// AllViewModes returns the supported view modes.
func AllViewModes() []ViewMode {
	return []ViewMode{ModeDay, ModeWeek, ModeMonth}
}

// ParseViewMode converts a string to a ViewMode.
func ParseViewMode(raw string) (ViewMode, error) {
	m := ViewMode(strings.ToLower(strings.TrimSpace(raw)))
	if m == "" {
		return ModeWeek, nil
	}
	for _, candidate := range AllViewModes() {
		if candidate == m {
			return candidate, nil
		}
	}
	return ModeWeek, fmt.Errorf("agenda: unknown view mode %q", raw)
}

const habitsKey = "habits"

// Aggregator owns the day buckets for the visible range. All mutation happens
// behind its lock and buckets are swapped, never patched, so readers never
// observe a half-applied refresh.
type Aggregator struct {
	fetcher   client.Fetcher
	cache     *staleness.Cache
	snapshots *snapshot.Store
	weekStart timeutil.WeekStart
	now       func() time.Time

	mu          sync.RWMutex
	mode        ViewMode
	anchor      time.Time
	interval    timeutil.Interval
	tags        []string
	selectedDay string

	tasksByDate map[string][]*plan.Task
	tripsByDate map[string][]*trip.Trip
	floating    []*plan.Task
	habits      []*plan.Habit
}

// Option customizes an Aggregator.
type Option func(*Aggregator)

// WithClock injects the time source used for "today" derivation.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) {
		if now != nil {
			a.now = now
		}
	}
}

// WithWeekStart sets the first weekday of week and month-grid intervals.
func WithWeekStart(ws timeutil.WeekStart) Option {
	return func(a *Aggregator) { a.weekStart = ws }
}

// WithSnapshots enables the offline payload store.
func WithSnapshots(s *snapshot.Store) Option {
	return func(a *Aggregator) { a.snapshots = s }
}

// New builds an aggregator anchored to today in week mode.
func New(fetcher client.Fetcher, cache *staleness.Cache, opts ...Option) *Aggregator {
	a := &Aggregator{
		fetcher:     fetcher,
		cache:       cache,
		weekStart:   timeutil.WeekStartSunday,
		now:         time.Now,
		tasksByDate: make(map[string][]*plan.Task),
		tripsByDate: make(map[string][]*trip.Trip),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.setVisibleRangeLocked(ModeWeek, a.now())
	return a
}

// SetVisibleRange recomputes the interval for the mode and anchor and
// re-derives the selected day so it stays inside the new range. It does not
// fetch; the caller triggers exactly one Refresh afterward.
func (a *Aggregator) SetVisibleRange(mode ViewMode, anchor time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.setVisibleRangeLocked(mode, anchor)
}

func (a *Aggregator) setVisibleRangeLocked(mode ViewMode, anchor time.Time) {
	a.mode = mode
	a.anchor = timeutil.StartOfDay(anchor)
	switch mode {
	case ModeDay:
		a.interval = timeutil.DayInterval(anchor)
	case ModeMonth:
		a.interval = timeutil.MonthGridInterval(anchor, a.weekStart)
	default:
		a.interval = timeutil.WeekInterval(anchor, a.weekStart)
	}
	a.selectedDay = a.deriveSelectedDayLocked()
}

// The current selection survives a range change when still visible;
// otherwise fall back to today if today is visible, else the range start.
func (a *Aggregator) deriveSelectedDayLocked() string {
	if a.selectedDay != "" {
		if day, err := timeutil.ParseDayKey(a.selectedDay); err == nil && a.interval.Contains(day) {
			return a.selectedDay
		}
	}
	if today := a.now(); a.interval.Contains(today) {
		return timeutil.DayKey(today)
	}
	return timeutil.DayKey(a.interval.Start)
}

// SetTagFilter replaces the active tag filter. Filtering is server-side, so
// the next Refresh fetches under a different cache key.
func (a *Aggregator) SetTagFilter(tags []string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.tags = append([]string(nil), tags...)
}

// SelectDay moves the selection, ignoring days outside the visible range.
func (a *Aggregator) SelectDay(key string) bool {
	day, err := timeutil.ParseDayKey(key)
	if err != nil {
		return false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.interval.Contains(day) {
		return false
	}
	a.selectedDay = key
	return true
}

// SelectedDay returns the currently selected day key.
func (a *Aggregator) SelectedDay() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.selectedDay
}

// Mode returns the current view mode.
func (a *Aggregator) Mode() ViewMode {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.mode
}

// Anchor returns the current anchor day.
func (a *Aggregator) Anchor() time.Time {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.anchor
}

// Interval returns the visible interval.
func (a *Aggregator) Interval() timeutil.Interval {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.interval
}

// Tags returns the active tag filter.
func (a *Aggregator) Tags() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]string(nil), a.tags...)
}

func (a *Aggregator) cacheKey() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cacheKeyLocked()
}

func (a *Aggregator) cacheKeyLocked() string {
	return fmt.Sprintf("agenda:%s:%s:%s:%s",
		a.mode,
		timeutil.DayKey(a.interval.Start),
		timeutil.DayKey(a.interval.End),
		strings.Join(a.tags, ","),
	)
}

// Refresh fetches the visible interval through the staleness cache: one
// remote fetch per entity kind for the whole interval, never one per day.
// A failed fetch leaves the previous buckets in place and the key unfresh so
// the next trigger retries.
func (a *Aggregator) Refresh(ctx context.Context) error {
	a.mu.RLock()
	key := a.cacheKeyLocked()
	iv := a.interval
	filters := client.TaskFilters{Tags: append([]string(nil), a.tags...)}
	a.mu.RUnlock()

	err := a.cache.FetchIfStale(ctx, key, func(ctx context.Context) error {
		tasks, err := a.fetcher.FetchTasks(ctx, iv, filters)
		if err != nil {
			return err
		}
		trips, err := a.fetcher.FetchTrips(ctx, iv)
		if err != nil {
			return err
		}
		a.replaceBuckets(key, tasks, trips)
		return nil
	})
	if err != nil {
		a.seedFromSnapshot(key)
	}

	herr := a.cache.FetchIfStale(ctx, habitsKey, func(ctx context.Context) error {
		habits, ferr := a.fetcher.FetchHabits(ctx)
		if ferr != nil {
			return ferr
		}
		a.mu.Lock()
		a.habits = habits
		a.mu.Unlock()
		return nil
	})

	if err != nil {
		return err
	}
	return herr
}

// replaceBuckets rebuilds both maps from scratch and swaps them in one
// locked write, so a reader never sees range A's tasks with range B's trips.
func (a *Aggregator) replaceBuckets(key string, tasks []*plan.Task, trips []*trip.Trip) {
	tasksByDate := make(map[string][]*plan.Task, len(tasks))
	floating := make([]*plan.Task, 0)
	for _, t := range tasks {
		if t == nil {
			continue
		}
		if t.Floating() {
			floating = append(floating, t)
			continue
		}
		tasksByDate[t.Date] = append(tasksByDate[t.Date], t)
	}
	for day := range tasksByDate {
		project.SortTasks(tasksByDate[day])
	}

	tripsByDate := make(map[string][]*trip.Trip, len(trips))
	for _, tr := range trips {
		if tr == nil {
			continue
		}
		tripsByDate[tr.OccurrenceDay()] = append(tripsByDate[tr.OccurrenceDay()], tr)
	}
	for day := range tripsByDate {
		project.SortTrips(tripsByDate[day])
	}

	a.mu.Lock()
	a.tasksByDate = tasksByDate
	a.tripsByDate = tripsByDate
	a.floating = floating
	a.mu.Unlock()

	if a.snapshots != nil {
		_ = a.snapshots.Save(key, snapshot.Payload{Tasks: tasks, Trips: trips})
	}
}

// seedFromSnapshot paints saved content for the key when a fetch failed and
// nothing is bucketed yet. The cache key stays unfresh.
func (a *Aggregator) seedFromSnapshot(key string) {
	if a.snapshots == nil {
		return
	}
	a.mu.RLock()
	empty := len(a.tasksByDate) == 0 && len(a.tripsByDate) == 0
	a.mu.RUnlock()
	if !empty {
		return
	}
	payload, ok := a.snapshots.Load(key)
	if !ok {
		return
	}
	a.replaceBuckets(key, payload.Tasks, payload.Trips)
}

// TasksByDate returns a copy of the task buckets.
func (a *Aggregator) TasksByDate() map[string][]*plan.Task {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make(map[string][]*plan.Task, len(a.tasksByDate))
	for day, bucket := range a.tasksByDate {
		out[day] = append([]*plan.Task(nil), bucket...)
	}
	return out
}

// TripsByDate returns a copy of the trip buckets.
func (a *Aggregator) TripsByDate() map[string][]*trip.Trip {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make(map[string][]*trip.Trip, len(a.tripsByDate))
	for day, bucket := range a.tripsByDate {
		out[day] = append([]*trip.Trip(nil), bucket...)
	}
	return out
}

// TasksOn returns the ordered bucket for one day key.
func (a *Aggregator) TasksOn(key string) []*plan.Task {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]*plan.Task(nil), a.tasksByDate[key]...)
}

// TripsOn returns the ordered trip bucket for one day key.
func (a *Aggregator) TripsOn(key string) []*trip.Trip {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]*trip.Trip(nil), a.tripsByDate[key]...)
}

// FloatingTasks returns the dateless tasks fetched with the current range.
func (a *Aggregator) FloatingTasks() []*plan.Task {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]*plan.Task(nil), a.floating...)
}

// Habits returns the full habit catalog from the last successful fetch.
func (a *Aggregator) Habits() []*plan.Habit {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]*plan.Habit(nil), a.habits...)
}

// HabitsOn projects the habit catalog onto one day, ordered by time of day.
func (a *Aggregator) HabitsOn(day time.Time) []*plan.Habit {
	a.mu.RLock()
	items := make([]project.Entry, 0, len(a.habits))
	for _, h := range a.habits {
		items = append(items, project.Entry{Habit: h})
	}
	a.mu.RUnlock()

	projected := project.ProjectDay(items, day)
	out := make([]*plan.Habit, 0, len(projected))
	for _, item := range projected {
		out = append(out, item.Habit)
	}
	return out
}

// FindTrip looks a trip up by id across the visible buckets.
func (a *Aggregator) FindTrip(id string) (*trip.Trip, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, bucket := range a.tripsByDate {
		for _, tr := range bucket {
			if tr.ID == id {
				return tr, true
			}
		}
	}
	return nil, false
}

// InvalidateAgenda drops freshness for every agenda range key.
func (a *Aggregator) InvalidateAgenda() {
	a.cache.InvalidatePrefix("agenda:")
}

// InvalidateHabits drops freshness for the habit catalog.
func (a *Aggregator) InvalidateHabits() {
	a.cache.Invalidate(habitsKey)
}
