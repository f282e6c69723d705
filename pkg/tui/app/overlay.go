package app

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/v2/textinput"
	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/daybook/pkg/agenda"
	"tableflip.dev/daybook/pkg/plan"
	"tableflip.dev/daybook/pkg/timeutil"
)

type overlayKind int

const (
	overlayNone overlayKind = iota
	overlayEdit
	overlayTrip
)

// overlayState is a tagged stack rather than independent nullable fields:
// a trip detail may layer over an edit popout, and closing the trip detail
// returns to the edit instead of to the grid. Closing overlays never touches
// selection or the view mode.
type overlayState struct {
	kind overlayKind
	edit *editOverlay
	trip *tripOverlay
}

type focusField int

const (
	fieldTitle focusField = iota
	fieldTime
)

// editOverlay holds the unsaved form state for one task. There is exactly
// one edit target at a time.
type editOverlay struct {
	task      plan.Task // working copy; the bucket entry stays untouched
	anchorCol int       // day column that triggered the popout, -1 when modal
	focus     focusField
	title     textinput.Model
	clock     textinput.Model
	errMsg    string
}

func newEditOverlay(t *plan.Task, anchorCol int) *editOverlay {
	title := textinput.New()
	title.Placeholder = "Task title…"
	title.Prompt = ""
	title.SetValue(t.Title)
	title.Focus()

	clock := textinput.New()
	clock.Placeholder = "HH:MM"
	clock.Prompt = ""
	clock.SetValue(t.StartTime)

	return &editOverlay{
		task:      *t,
		anchorCol: anchorCol,
		focus:     fieldTitle,
		title:     title,
		clock:     clock,
	}
}

func (e *editOverlay) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch e.focus {
	case fieldTitle:
		e.title, cmd = e.title.Update(msg)
	case fieldTime:
		e.clock, cmd = e.clock.Update(msg)
	}
	return cmd
}

func (e *editOverlay) cycleFocus() {
	if e.focus == fieldTitle {
		e.focus = fieldTime
		e.title.Blur()
		e.clock.Focus()
		return
	}
	e.focus = fieldTitle
	e.clock.Blur()
	e.title.Focus()
}

// apply folds the form fields into the working copy, validating the clock.
func (e *editOverlay) apply() (*plan.Task, bool) {
	title := strings.TrimSpace(e.title.Value())
	if title == "" {
		e.errMsg = "title required"
		return nil, false
	}
	clock := strings.TrimSpace(e.clock.Value())
	if clock != "" {
		if _, err := timeutil.ParseClock(clock); err != nil {
			e.errMsg = "time must be HH:MM"
			return nil, false
		}
	}
	out := e.task
	out.Title = title
	out.StartTime = clock
	e.errMsg = ""
	return &out, true
}

// openEditOverlay replaces any current edit target with the given task. The
// anchor column pins the popout to the triggering day in wide week mode.
func (m *Model) openEditOverlay(t *plan.Task) {
	anchorCol := -1
	if m.agg.Mode() == agenda.ModeWeek && m.width >= inlineEditMinWidth && !m.expandedDay {
		if day, err := timeutil.ParseDayKey(t.Date); err == nil {
			iv := m.agg.Interval()
			anchorCol = int(day.Sub(iv.Start).Hours() / 24)
			if anchorCol < 0 || anchorCol > 6 {
				anchorCol = -1
			}
		}
	}
	m.overlay.edit = newEditOverlay(t, anchorCol)
	m.overlay.kind = overlayEdit
	m.status = "Editing " + t.Title
}

// closeTopOverlay pops the stack: trip detail returns to the edit popout
// when one is underneath, otherwise everything returns to the grid.
func (m *Model) closeTopOverlay() {
	if m.overlay.kind == overlayTrip {
		m.overlay.trip = nil
		if m.overlay.edit != nil {
			m.overlay.kind = overlayEdit
			m.status = "Editing " + m.overlay.edit.task.Title
			return
		}
		m.overlay.kind = overlayNone
		m.status = "Ready"
		return
	}
	m.overlay.edit = nil
	m.overlay.kind = overlayNone
	m.status = "Ready"
}

func (m *Model) handleEditOverlayKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	e := m.overlay.edit
	switch key.String() {
	case "esc":
		// Discards unsaved form state only; dispatched saves still land.
		m.closeTopOverlay()
		return m, nil
	case "tab":
		e.cycleFocus()
		return m, nil
	case "enter":
		updated, ok := e.apply()
		if !ok {
			return m, nil
		}
		return m, m.saveTaskCmd(updated)
	case "ctrl+t":
		if e.task.TripID != "" {
			m.openTripOverlay(e.task.TripID)
		} else {
			m.status = "No trip linked to this task"
		}
		return m, nil
	}
	return m, e.update(key)
}

func (m *Model) saveTaskCmd(t *plan.Task) tea.Cmd {
	svc := m.svc
	saved := *t
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
		defer cancel()
		_, err := svc.UpdateTask(ctx, &saved)
		return mutationDoneMsg{
			status:        "Saved " + saved.Title,
			err:           err,
			refreshAgenda: true,
			closeEdit:     true,
		}
	}
}
