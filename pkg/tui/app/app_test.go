package app

import (
	"context"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/daybook/pkg/agenda"
	"tableflip.dev/daybook/pkg/client"
	"tableflip.dev/daybook/pkg/plan"
	"tableflip.dev/daybook/pkg/staleness"
	"tableflip.dev/daybook/pkg/timeutil"
	"tableflip.dev/daybook/pkg/trip"
)

// Wednesday.
var testNow = time.Date(2025, time.November, 5, 10, 0, 0, 0, time.Local)

type fakeService struct {
	mu sync.Mutex

	tasks  []*plan.Task
	trips  []*trip.Trip
	habits []*plan.Habit

	updatedTasks    []*plan.Task
	completedHabits []string
	deletedTrips    []string

	completeErr error
}

func (f *fakeService) FetchTasks(ctx context.Context, iv timeutil.Interval, filters client.TaskFilters) ([]*plan.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tasks, nil
}

func (f *fakeService) FetchTrips(ctx context.Context, iv timeutil.Interval) ([]*trip.Trip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.trips, nil
}

func (f *fakeService) FetchHabits(ctx context.Context) ([]*plan.Habit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.habits, nil
}

func (f *fakeService) CreateTask(ctx context.Context, t *plan.Task) (*plan.Task, error) { return t, nil }

func (f *fakeService) UpdateTask(ctx context.Context, t *plan.Task) (*plan.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *t
	f.updatedTasks = append(f.updatedTasks, &copied)
	return &copied, nil
}

func (f *fakeService) DeleteTask(ctx context.Context, id string) error { return nil }

func (f *fakeService) CompleteHabit(ctx context.Context, id string) (*plan.Habit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.completeErr != nil {
		return nil, f.completeErr
	}
	f.completedHabits = append(f.completedHabits, id)
	return &plan.Habit{ID: id, CompletedToday: true}, nil
}

func (f *fakeService) UncompleteHabit(ctx context.Context, id string) (*plan.Habit, error) {
	return &plan.Habit{ID: id}, nil
}

func (f *fakeService) CreateTrip(ctx context.Context, t *trip.Trip) (*trip.Trip, error) { return t, nil }
func (f *fakeService) UpdateTrip(ctx context.Context, t *trip.Trip) (*trip.Trip, error) { return t, nil }

func (f *fakeService) DeleteTrip(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedTrips = append(f.deletedTrips, id)
	return nil
}

func (f *fakeService) CreateStop(ctx context.Context, tripID string, s *trip.Stop) (*trip.Trip, error) {
	return nil, nil
}

func (f *fakeService) UpdateStop(ctx context.Context, tripID string, s *trip.Stop) (*trip.Trip, error) {
	return nil, nil
}

func (f *fakeService) DeleteStop(ctx context.Context, tripID, stopID string) error { return nil }

func newTestModel(t *testing.T, svc *fakeService) *Model {
	t.Helper()
	clock := func() time.Time { return testNow }
	agg := agenda.New(svc, staleness.New(staleness.WithClock(clock)), agenda.WithClock(clock))
	if err := agg.Refresh(context.Background()); err != nil {
		t.Fatalf("seed refresh: %v", err)
	}
	m := New(agg, svc, WithClock(clock))
	m.width = 80
	m.height = 24
	return m
}

func press(s string) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: rune(s[0]), Text: s}
}

func seededService() *fakeService {
	return &fakeService{
		tasks: []*plan.Task{
			{ID: "t1", Title: "standup", Date: "2025-11-05", StartTime: "09:00", TripID: "tr1"},
			{ID: "t2", Title: "laundry", Date: "2025-11-05"},
		},
		trips: []*trip.Trip{
			{ID: "tr1", Title: "groceries", StartAt: time.Date(2025, time.November, 5, 16, 0, 0, 0, time.Local)},
		},
		habits: []*plan.Habit{
			{ID: "h1", Title: "stretch", CreatedAt: testNow.AddDate(0, 0, -30), Frequency: plan.FrequencyDaily, StartTime: "07:00"},
			{ID: "h2", Title: "journal", CreatedAt: testNow.AddDate(0, 0, -30), Frequency: plan.FrequencyDaily, CompletedToday: true},
		},
	}
}

func TestDayItemsOrderAcrossKinds(t *testing.T) {
	m := newTestModel(t, seededService())

	items := m.dayItems()
	// 07:00 habit, 09:00 task, 16:00 trip, then untimed habit and task.
	wantKinds := []itemKind{itemHabit, itemTask, itemTrip, itemHabit, itemTask}
	wantIDs := []string{"h1", "t1", "tr1", "h2", "t2"}
	if len(items) != len(wantIDs) {
		t.Fatalf("expected %d items, got %d", len(wantIDs), len(items))
	}
	for i := range items {
		if items[i].kind != wantKinds[i] || items[i].id() != wantIDs[i] {
			t.Fatalf("position %d: got kind=%d id=%s, want kind=%d id=%s",
				i, items[i].kind, items[i].id(), wantKinds[i], wantIDs[i])
		}
	}
}

func TestModeKeysChangeViewAndTriggerRefresh(t *testing.T) {
	m := newTestModel(t, seededService())

	_, cmd := m.Update(press("m"))
	if m.agg.Mode() != agenda.ModeMonth {
		t.Fatalf("mode = %s", m.agg.Mode())
	}
	if cmd == nil {
		t.Fatal("mode switch must schedule a refresh")
	}

	// Switching to the current mode is a no-op.
	_, cmd = m.Update(press("m"))
	if cmd != nil {
		t.Fatal("repeated mode key should not refetch")
	}
}

func TestNavigationMovesAnchorByModeUnit(t *testing.T) {
	m := newTestModel(t, seededService())

	_, _ = m.Update(press("l"))
	if got := timeutil.DayKey(m.agg.Anchor()); got != "2025-11-12" {
		t.Fatalf("week navigation anchor = %s", got)
	}

	_, _ = m.Update(press("d"))
	_, _ = m.Update(press("h"))
	if got := timeutil.DayKey(m.agg.Anchor()); got != "2025-11-11" {
		t.Fatalf("day navigation anchor = %s", got)
	}
}

func TestOverlayStackLayersTripOverEdit(t *testing.T) {
	m := newTestModel(t, seededService())

	// Cursor starts on the 07:00 habit; move to the 09:00 task and open it.
	_, _ = m.Update(press("j"))
	_, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if m.overlay.kind != overlayEdit || m.overlay.edit == nil {
		t.Fatalf("expected edit overlay, got kind=%d", m.overlay.kind)
	}
	if m.overlay.edit.task.ID != "t1" {
		t.Fatalf("editing wrong task: %s", m.overlay.edit.task.ID)
	}

	// The linked trip layers on top of the edit.
	_, _ = m.Update(tea.KeyPressMsg{Code: 't', Mod: tea.ModCtrl})
	if m.overlay.kind != overlayTrip || m.overlay.trip == nil {
		t.Fatalf("expected trip overlay on top, got kind=%d", m.overlay.kind)
	}
	if m.overlay.edit == nil {
		t.Fatal("edit overlay must survive underneath")
	}

	// Closing the trip returns to the edit, not the grid.
	_, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if m.overlay.kind != overlayEdit || m.overlay.edit == nil {
		t.Fatalf("expected edit overlay after closing trip, got kind=%d", m.overlay.kind)
	}

	// Closing the edit returns to the grid without touching mode or cursor.
	mode := m.agg.Mode()
	cursor := m.cursor
	_, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if m.overlay.kind != overlayNone || m.overlay.edit != nil {
		t.Fatal("overlay stack should be empty")
	}
	if m.agg.Mode() != mode || m.cursor != cursor {
		t.Fatal("closing overlays must not change view mode or cursor")
	}
}

func TestEditSaveDispatchesUpdateAndCloses(t *testing.T) {
	svc := seededService()
	m := newTestModel(t, svc)

	_, _ = m.Update(press("j"))
	_, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})

	e := m.overlay.edit
	e.title.SetValue("renamed standup")
	e.clock.SetValue("10:15")

	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("save should dispatch a mutation")
	}
	raw := cmd()
	msg, ok := raw.(mutationDoneMsg)
	if !ok {
		t.Fatalf("expected mutationDoneMsg, got %T", raw)
	}
	if msg.err != nil {
		t.Fatalf("save failed: %v", msg.err)
	}

	svc.mu.Lock()
	updated := append([]*plan.Task(nil), svc.updatedTasks...)
	svc.mu.Unlock()
	if len(updated) != 1 || updated[0].Title != "renamed standup" || updated[0].StartTime != "10:15" {
		t.Fatalf("update payload wrong: %#v", updated)
	}

	_, _ = m.Update(msg)
	if m.overlay.kind != overlayNone {
		t.Fatal("successful save should close the edit overlay")
	}
}

func TestEditRejectsMalformedClock(t *testing.T) {
	m := newTestModel(t, seededService())

	_, _ = m.Update(press("j"))
	_, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})

	e := m.overlay.edit
	e.clock.SetValue("25:99")
	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd != nil {
		t.Fatal("invalid clock must not dispatch a save")
	}
	if e.errMsg == "" {
		t.Fatal("expected a validation message")
	}
	if m.overlay.kind != overlayEdit {
		t.Fatal("overlay should stay open for correction")
	}
}

func TestTaskStatusRingMutation(t *testing.T) {
	svc := seededService()
	m := newTestModel(t, svc)

	// Move to the 09:00 task and cycle its status.
	_, _ = m.Update(press("j"))
	_, cmd := m.Update(press("c"))
	if cmd == nil {
		t.Fatal("expected a mutation command")
	}
	msg := cmd().(mutationDoneMsg)
	if msg.err != nil {
		t.Fatalf("mutation failed: %v", msg.err)
	}

	svc.mu.Lock()
	updated := append([]*plan.Task(nil), svc.updatedTasks...)
	svc.mu.Unlock()
	if len(updated) != 1 || updated[0].Status != plan.StatusInProgress {
		t.Fatalf("expected not_started to advance to in_progress, got %#v", updated)
	}

	// A successful mutation invalidates and refreshes instead of patching.
	_, cmd = m.Update(msg)
	if cmd == nil {
		t.Fatal("expected a refresh after the mutation landed")
	}
}

func TestSelectionBulkCompleteSkipsCompleted(t *testing.T) {
	svc := seededService()
	m := newTestModel(t, svc)

	_, _ = m.Update(press("s"))
	if !m.selection.active {
		t.Fatal("selection mode should be active")
	}

	// Select all pending: h2 is already complete and must be skipped.
	_, _ = m.Update(press("a"))
	if len(m.selection.ids) != 1 {
		t.Fatalf("expected only pending habits selected, got %d", len(m.selection.ids))
	}
	if !m.selection.selected("h1") {
		t.Fatal("pending habit h1 should be selected")
	}

	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected bulk complete command")
	}
	msg := cmd().(bulkDoneMsg)
	if msg.err != nil || msg.completed != 1 {
		t.Fatalf("bulk result = %+v", msg)
	}

	svc.mu.Lock()
	completed := append([]string(nil), svc.completedHabits...)
	svc.mu.Unlock()
	if len(completed) != 1 || completed[0] != "h1" {
		t.Fatalf("completed habits = %v", completed)
	}

	_, _ = m.Update(msg)
	if m.selection.active {
		t.Fatal("bulk completion should exit selection mode")
	}
}

func TestSelectionToggleIsIdempotentPerHabit(t *testing.T) {
	m := newTestModel(t, seededService())

	_, _ = m.Update(press("s"))
	// Cursor on the 07:00 habit.
	space := tea.KeyPressMsg{Code: tea.KeySpace, Text: " "}
	_, _ = m.Update(space)
	if !m.selection.selected("h1") {
		t.Fatal("space should select the habit under the cursor")
	}
	_, _ = m.Update(space)
	if m.selection.selected("h1") {
		t.Fatal("space again should deselect")
	}
}

func TestEnteringSelectionModeStartsEmpty(t *testing.T) {
	m := newTestModel(t, seededService())

	_, _ = m.Update(press("s"))
	_, _ = m.Update(tea.KeyPressMsg{Code: tea.KeySpace, Text: " "})
	_, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if m.selection.active {
		t.Fatal("escape should leave selection mode")
	}

	_, _ = m.Update(press("s"))
	if len(m.selection.ids) != 0 {
		t.Fatal("re-entering selection mode must start with an empty set")
	}
}

func TestTripDeletionClearsTaskReferences(t *testing.T) {
	svc := seededService()
	m := newTestModel(t, svc)

	m.openTripOverlay("tr1")
	if m.overlay.kind != overlayTrip {
		t.Fatal("trip overlay should open")
	}

	// First D asks for confirmation, second dispatches.
	_, cmd := m.Update(press("D"))
	if cmd != nil {
		t.Fatal("first D should only arm the confirmation")
	}
	_, cmd = m.Update(press("D"))
	if cmd == nil {
		t.Fatal("confirmed delete should dispatch")
	}
	msg := cmd().(tripDeletedMsg)
	if msg.err != nil {
		t.Fatalf("delete failed: %v", msg.err)
	}

	svc.mu.Lock()
	deleted := append([]string(nil), svc.deletedTrips...)
	updated := append([]*plan.Task(nil), svc.updatedTasks...)
	svc.mu.Unlock()
	if len(deleted) != 1 || deleted[0] != "tr1" {
		t.Fatalf("deleted trips = %v", deleted)
	}
	if len(updated) != 1 || updated[0].ID != "t1" || updated[0].TripID != "" {
		t.Fatalf("referencing task not cleared: %#v", updated)
	}

	_, cmd = m.Update(msg)
	if m.overlay.kind != overlayNone {
		t.Fatal("overlay should close after deletion")
	}
	if cmd == nil {
		t.Fatal("deletion should trigger a refresh")
	}
}

func TestRefreshErrorKeepsScreenAndReportsStatus(t *testing.T) {
	m := newTestModel(t, seededService())

	before := len(m.dayItems())
	_, _ = m.Update(refreshDoneMsg{err: context.DeadlineExceeded})
	if m.lastErr == nil {
		t.Fatal("refresh error should be recorded")
	}
	if got := len(m.dayItems()); got != before {
		t.Fatalf("items changed on failed refresh: %d vs %d", got, before)
	}
}

func TestGoTodayExpandsDay(t *testing.T) {
	m := newTestModel(t, seededService())

	_, _ = m.Update(press("l"))
	_, cmd := m.Update(press("t"))
	if !m.expandedDay {
		t.Fatal("t should expand today")
	}
	if got := m.agg.SelectedDay(); got != "2025-11-05" {
		t.Fatalf("selected day = %s", got)
	}
	if cmd == nil {
		t.Fatal("going to today should refresh")
	}
}
