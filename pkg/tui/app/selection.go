package app

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/daybook/pkg/plan"
	"tableflip.dev/daybook/pkg/timeutil"
)

// selectionState tracks multi-select over the selected day's habits. Entering
// selection mode always starts from an empty set.
type selectionState struct {
	active bool
	ids    map[string]struct{}
}

func (s *selectionState) toggle(id string) {
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return
	}
	s.ids[id] = struct{}{}
}

func (s *selectionState) selected(id string) bool {
	_, ok := s.ids[id]
	return ok
}

func (m *Model) enterSelectionMode() {
	m.selection = selectionState{active: true, ids: map[string]struct{}{}}
	m.status = "Selection: space toggle · a all pending · enter complete · esc cancel"
}

func (m *Model) exitSelectionMode() {
	m.selection = selectionState{}
}

func (m *Model) handleSelectionKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "esc", "s":
		m.exitSelectionMode()
		m.status = "Ready"
		return m, nil

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

	case " ", "space":
		item, ok := m.itemUnderCursor()
		if !ok || item.kind != itemHabit {
			m.status = "Only habits can be bulk-completed"
			return m, nil
		}
		m.selection.toggle(item.habit.ID)
		return m, nil

	case "a":
		// Select every habit on the day that is still pending.
		for _, h := range m.selectedDayHabits() {
			if !h.CompletedToday {
				m.selection.ids[h.ID] = struct{}{}
			}
		}
		return m, nil

	case "enter", "C":
		habits := m.selectedHabits()
		if len(habits) == 0 {
			m.status = "Nothing selected"
			return m, nil
		}
		m.status = "Completing…"
		return m, m.bulkCompleteCmd(habits)
	}
	return m, nil
}

func (m *Model) selectedDayHabits() []*plan.Habit {
	day, err := timeutil.ParseDayKey(m.agg.SelectedDay())
	if err != nil {
		return nil
	}
	return m.agg.HabitsOn(day)
}

// selectedHabits resolves the selection set against the day's habits in
// display order so bulk completion runs deterministically.
func (m *Model) selectedHabits() []*plan.Habit {
	var out []*plan.Habit
	for _, h := range m.selectedDayHabits() {
		if m.selection.selected(h.ID) {
			out = append(out, h)
		}
	}
	return out
}

// bulkCompleteCmd walks the selection one request at a time rather than
// fanning out, and skips habits the server already marked complete. The
// first failure stops the walk with the partial count.
func (m *Model) bulkCompleteCmd(habits []*plan.Habit) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
		defer cancel()
		completed := 0
		for _, h := range habits {
			if h.CompletedToday {
				continue
			}
			if _, err := svc.CompleteHabit(ctx, h.ID); err != nil {
				return bulkDoneMsg{completed: completed, err: err}
			}
			completed++
		}
		return bulkDoneMsg{completed: completed}
	}
}

func (m *Model) afterBulkComplete(v bulkDoneMsg) (tea.Model, tea.Cmd) {
	if v.err != nil {
		// Selection stays so a retry only re-runs what is left.
		m.lastErr = v.err
		m.status = fmt.Sprintf("Completed %d, then failed: %v", v.completed, v.err)
		m.agg.InvalidateHabits()
		return m, m.refreshCmd()
	}
	m.lastErr = nil
	m.exitSelectionMode()
	m.status = fmt.Sprintf("Completed %d habits", v.completed)
	m.agg.InvalidateHabits()
	return m, m.refreshCmd()
}
