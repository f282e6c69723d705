// Package app implements the calendar view state machine: view modes,
// navigation, the overlay stack, selection mode, and completion toggles.
// All remote data flows through the aggregator; the model never patches
// buckets by hand.
package app

import (
	"context"
	"sort"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/daybook/pkg/agenda"
	"tableflip.dev/daybook/pkg/client"
	"tableflip.dev/daybook/pkg/plan"
	"tableflip.dev/daybook/pkg/prefetch"
	"tableflip.dev/daybook/pkg/timeutil"
	"tableflip.dev/daybook/pkg/trip"
	"tableflip.dev/daybook/pkg/tui/theme"
)

const mutationTimeout = 30 * time.Second

// Wide terminals in week mode anchor the edit popout in-grid; anything
// narrower gets a centered modal.
const inlineEditMinWidth = 100

type refreshDoneMsg struct {
	err error
}

type mutationDoneMsg struct {
	status        string
	err           error
	refreshAgenda bool
	refreshHabits bool
	closeEdit     bool
}

type bulkDoneMsg struct {
	completed int
	err       error
}

type tripDeletedMsg struct {
	tripID string
	err    error
}

// Model is the root Bubble Tea model for the calendar UI.
type Model struct {
	agg    *agenda.Aggregator
	svc    client.Service
	routes *prefetch.Trigger

	width  int
	height int

	expandedDay bool
	overlay     overlayState
	selection   selectionState
	cursor      int

	status  string
	lastErr error

	now   func() time.Time
	theme theme.Theme
}

// Option customizes the model.
type Option func(*Model)

// WithClock injects the time source used for "today" and habit selection.
func WithClock(now func() time.Time) Option {
	return func(m *Model) {
		if now != nil {
			m.now = now
		}
	}
}

// WithRoutes wires the prefetch trigger fired on surface switches.
func WithRoutes(routes *prefetch.Trigger) Option {
	return func(m *Model) { m.routes = routes }
}

// New constructs the root model.
func New(agg *agenda.Aggregator, svc client.Service, opts ...Option) *Model {
	m := &Model{
		agg:    agg,
		svc:    svc,
		status: "Ready",
		now:    time.Now,
		theme:  theme.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run launches the Bubble Tea program.
func Run(agg *agenda.Aggregator, svc client.Service, opts ...Option) error {
	p := tea.NewProgram(New(agg, svc, opts...), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Init implements tea.Model: one refresh for the initial range.
func (m *Model) Init() tea.Cmd {
	return m.refreshCmd()
}

func (m *Model) refreshCmd() tea.Cmd {
	agg := m.agg
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
		defer cancel()
		return refreshDoneMsg{err: agg.Refresh(ctx)}
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch v := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = v.Width
		m.height = v.Height
		return m, nil

	case refreshDoneMsg:
		if v.err != nil {
			// Previous buckets stay on screen; the key stays unfresh so the
			// next action retries.
			m.lastErr = v.err
			m.status = "Refresh failed: " + v.err.Error()
		} else {
			m.lastErr = nil
			m.status = "Ready"
			m.clampCursor()
		}
		return m, nil

	case mutationDoneMsg:
		return m.afterMutation(v)

	case bulkDoneMsg:
		return m.afterBulkComplete(v)

	case tripDeletedMsg:
		return m.afterTripDeleted(v)

	case tea.KeyMsg:
		return m.handleKey(v)
	}

	if m.overlay.kind == overlayEdit && m.overlay.edit != nil {
		cmd := m.overlay.edit.update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.String() == "ctrl+c" {
		return m, tea.Quit
	}

	// Overlays consume keys first so typing never leaks into navigation.
	if m.overlay.kind == overlayTrip && m.overlay.trip != nil {
		return m.handleTripOverlayKey(key)
	}
	if m.overlay.kind == overlayEdit && m.overlay.edit != nil {
		return m.handleEditOverlayKey(key)
	}
	if m.selection.active {
		return m.handleSelectionKey(key)
	}

	switch key.String() {
	case "q":
		return m, tea.Quit

	case "d":
		return m.setMode(agenda.ModeDay)
	case "w":
		return m.setMode(agenda.ModeWeek)
	case "m":
		return m.setMode(agenda.ModeMonth)

	case "left", "h":
		return m.navigate(-1)
	case "right", "l":
		return m.navigate(+1)
	case "t":
		return m.goToday()
	case "x":
		m.expandedDay = !m.expandedDay
		return m, nil
	case "esc":
		if m.expandedDay {
			m.expandedDay = false
		}
		return m, nil

	case "tab":
		return m.moveSelectedDay(+1)
	case "shift+tab":
		return m.moveSelectedDay(-1)

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "down", "j":
		if m.cursor < len(m.dayItems())-1 {
			m.cursor++
		}
		return m, nil

	case "enter", "e":
		return m.openItemUnderCursor()

	case "c":
		return m.toggleCompletionUnderCursor()

	case "s":
		m.enterSelectionMode()
		return m, nil

	case "r":
		m.agg.InvalidateAgenda()
		m.agg.InvalidateHabits()
		m.status = "Refreshing…"
		return m, m.refreshCmd()
	}
	return m, nil
}

// setMode changes the view mode and triggers exactly one refresh.
func (m *Model) setMode(mode agenda.ViewMode) (tea.Model, tea.Cmd) {
	if mode == m.agg.Mode() {
		return m, nil
	}
	m.agg.SetVisibleRange(mode, m.agg.Anchor())
	m.cursor = 0
	if m.routes != nil {
		m.routes.Fire(string(mode))
	}
	return m, m.refreshCmd()
}

// navigate advances the anchor by one unit of the current view mode.
func (m *Model) navigate(direction int) (tea.Model, tea.Cmd) {
	anchor := m.agg.Anchor()
	switch m.agg.Mode() {
	case agenda.ModeDay:
		anchor = anchor.AddDate(0, 0, direction)
	case agenda.ModeMonth:
		anchor = anchor.AddDate(0, direction, 0)
	default:
		anchor = anchor.AddDate(0, 0, 7*direction)
	}
	m.agg.SetVisibleRange(m.agg.Mode(), anchor)
	m.cursor = 0
	return m, m.refreshCmd()
}

// goToday re-anchors on today and expands the single-day timeline, which
// full-screens independent of the view mode.
func (m *Model) goToday() (tea.Model, tea.Cmd) {
	today := m.now()
	m.agg.SetVisibleRange(m.agg.Mode(), today)
	m.agg.SelectDay(timeutil.DayKey(today))
	m.expandedDay = true
	m.cursor = 0
	return m, m.refreshCmd()
}

func (m *Model) moveSelectedDay(direction int) (tea.Model, tea.Cmd) {
	day, err := timeutil.ParseDayKey(m.agg.SelectedDay())
	if err != nil {
		return m, nil
	}
	if m.agg.SelectDay(timeutil.DayKey(day.AddDate(0, 0, direction))) {
		m.cursor = 0
	}
	return m, nil
}

type itemKind int

const (
	itemHabit itemKind = iota
	itemTask
	itemTrip
)

type dayItem struct {
	kind  itemKind
	habit *plan.Habit
	task  *plan.Task
	trip  *trip.Trip
}

func (it dayItem) id() string {
	switch it.kind {
	case itemHabit:
		return it.habit.ID
	case itemTask:
		return it.task.ID
	default:
		return it.trip.ID
	}
}

func (it dayItem) clockMinutes() int {
	switch it.kind {
	case itemHabit:
		return timeutil.ClockMinutes(it.habit.StartTime)
	case itemTask:
		return timeutil.ClockMinutes(it.task.StartTime)
	default:
		return timeutil.ClockMinutes(it.trip.ClockTime())
	}
}

// dayItems materializes the selected day's ordered list: habits projected
// onto the day, then the task and trip buckets, all time-sorted with
// untimed items last.
func (m *Model) dayItems() []dayItem {
	key := m.agg.SelectedDay()
	day, err := timeutil.ParseDayKey(key)
	if err != nil {
		return nil
	}

	items := make([]dayItem, 0)
	for _, h := range m.agg.HabitsOn(day) {
		items = append(items, dayItem{kind: itemHabit, habit: h})
	}
	for _, t := range m.agg.TasksOn(key) {
		items = append(items, dayItem{kind: itemTask, task: t})
	}
	for _, tr := range m.agg.TripsOn(key) {
		items = append(items, dayItem{kind: itemTrip, trip: tr})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].clockMinutes() < items[j].clockMinutes()
	})
	return items
}

func (m *Model) clampCursor() {
	if n := len(m.dayItems()); m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) itemUnderCursor() (dayItem, bool) {
	items := m.dayItems()
	if m.cursor < 0 || m.cursor >= len(items) {
		return dayItem{}, false
	}
	return items[m.cursor], true
}

func (m *Model) openItemUnderCursor() (tea.Model, tea.Cmd) {
	item, ok := m.itemUnderCursor()
	if !ok {
		return m, nil
	}
	switch item.kind {
	case itemTask:
		m.openEditOverlay(item.task)
	case itemTrip:
		m.openTripOverlay(item.trip.ID)
	case itemHabit:
		m.status = "Habits toggle with c; edit them on the habit surface"
	}
	return m, nil
}

// toggleCompletionUnderCursor flips a habit between its two states or
// advances a task around its three-state ring. Nothing is applied locally
// until the mutation resolves.
func (m *Model) toggleCompletionUnderCursor() (tea.Model, tea.Cmd) {
	item, ok := m.itemUnderCursor()
	if !ok {
		return m, nil
	}
	switch item.kind {
	case itemHabit:
		return m, m.toggleHabitCmd(item.habit)
	case itemTask:
		return m, m.cycleTaskStatusCmd(item.task)
	}
	return m, nil
}

func (m *Model) toggleHabitCmd(h *plan.Habit) tea.Cmd {
	svc := m.svc
	id := h.ID
	completed := h.CompletedToday
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
		defer cancel()
		var err error
		if completed {
			_, err = svc.UncompleteHabit(ctx, id)
		} else {
			_, err = svc.CompleteHabit(ctx, id)
		}
		return mutationDoneMsg{status: "Habit updated", err: err, refreshHabits: true}
	}
}

func (m *Model) cycleTaskStatusCmd(t *plan.Task) tea.Cmd {
	svc := m.svc
	next := *t
	next.Status = t.Status.Next()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
		defer cancel()
		_, err := svc.UpdateTask(ctx, &next)
		return mutationDoneMsg{status: "Task " + string(next.Status), err: err, refreshAgenda: true}
	}
}

// afterMutation invalidates the touched cache keys and re-runs the fetch;
// failures surface in the status bar and leave local state untouched.
func (m *Model) afterMutation(v mutationDoneMsg) (tea.Model, tea.Cmd) {
	if v.err != nil {
		m.lastErr = v.err
		m.status = v.err.Error()
		return m, nil
	}
	m.lastErr = nil
	if v.status != "" {
		m.status = v.status
	}
	if v.closeEdit && m.overlay.kind == overlayEdit {
		m.closeTopOverlay()
		m.status = v.status
	}
	if v.refreshAgenda {
		m.agg.InvalidateAgenda()
	}
	if v.refreshHabits {
		m.agg.InvalidateHabits()
	}
	if v.refreshAgenda || v.refreshHabits {
		return m, m.refreshCmd()
	}
	return m, nil
}
