package app

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/muesli/reflow/wordwrap"

	"tableflip.dev/daybook/pkg/plan"
	"tableflip.dev/daybook/pkg/trip"
)

// tripOverlay shows a trip's stops and purchases. It keeps a snapshot of the
// trip taken when opened; a refresh that drops the trip closes the overlay
// via afterTripDeleted rather than mutating the snapshot underneath.
type tripOverlay struct {
	trip       *trip.Trip
	scroll     int
	confirming bool // delete pressed once, waiting for confirmation
}

// openTripOverlay layers the trip detail on top of whatever is open. A
// missing id is reported in the status bar instead of opening an empty pane.
func (m *Model) openTripOverlay(tripID string) {
	tr, ok := m.agg.FindTrip(tripID)
	if !ok {
		m.status = "Trip not found in the visible range"
		return
	}
	m.overlay.trip = &tripOverlay{trip: tr}
	m.overlay.kind = overlayTrip
	m.status = "Trip: " + tr.Title
}

func (m *Model) handleTripOverlayKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	t := m.overlay.trip
	switch key.String() {
	case "esc", "q":
		m.closeTopOverlay()
		return m, nil
	case "up", "k":
		if t.scroll > 0 {
			t.scroll--
		}
		return m, nil
	case "down", "j":
		t.scroll++
		return m, nil
	case "D":
		if !t.confirming {
			t.confirming = true
			m.status = "Delete this trip? Press D again to confirm, esc to keep it"
			return m, nil
		}
		t.confirming = false
		m.status = "Deleting trip…"
		return m, m.deleteTripCmd(t.trip.ID)
	}
	t.confirming = false
	return m, nil
}

// deleteTripCmd removes the trip, then clears the trip reference from every
// visible task that pointed at it. Task references are only touched after
// the trip delete succeeds.
func (m *Model) deleteTripCmd(tripID string) tea.Cmd {
	svc := m.svc
	refs := m.tasksReferencingTrip(tripID)
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
		defer cancel()
		if err := svc.DeleteTrip(ctx, tripID); err != nil {
			return tripDeletedMsg{tripID: tripID, err: err}
		}
		for _, t := range refs {
			cleared := *t
			cleared.TripID = ""
			if _, err := svc.UpdateTask(ctx, &cleared); err != nil {
				return tripDeletedMsg{tripID: tripID, err: err}
			}
		}
		return tripDeletedMsg{tripID: tripID}
	}
}

func (m *Model) tasksReferencingTrip(tripID string) []*plan.Task {
	var refs []*plan.Task
	for _, bucket := range m.agg.TasksByDate() {
		for _, t := range bucket {
			if t.TripID == tripID {
				refs = append(refs, t)
			}
		}
	}
	for _, t := range m.agg.FloatingTasks() {
		if t.TripID == tripID {
			refs = append(refs, t)
		}
	}
	return refs
}

func (m *Model) afterTripDeleted(v tripDeletedMsg) (tea.Model, tea.Cmd) {
	if v.err != nil {
		m.lastErr = v.err
		m.status = "Trip delete failed: " + v.err.Error()
		return m, nil
	}
	m.lastErr = nil
	if m.overlay.kind == overlayTrip {
		m.closeTopOverlay()
	}
	if m.overlay.edit != nil && m.overlay.edit.task.TripID == v.tripID {
		m.overlay.edit.task.TripID = ""
	}
	m.status = "Trip deleted"
	m.agg.InvalidateAgenda()
	return m, m.refreshCmd()
}

// tripOverlayView renders the detail pane at the given content width.
func (m *Model) tripOverlayView(width int) string {
	t := m.overlay.trip
	tr := t.trip
	th := m.theme.Overlay

	var b strings.Builder
	title := tr.Title
	if title == "" {
		title = "Trip"
	}
	b.WriteString(th.Title.Render(title))
	b.WriteString("\n")
	b.WriteString(th.Subtle.Render(tr.StartAt.Format("Mon Jan 2 15:04")))
	b.WriteString("\n\n")

	for i := range tr.Stops {
		stop := &tr.Stops[i]
		b.WriteString(th.Label.Render(stop.StoreName))
		if stop.ArriveAt != nil {
			b.WriteString(th.Subtle.Render("  " + stop.ArriveAt.Format("15:04")))
		}
		b.WriteString("\n")
		for _, p := range stop.Purchases {
			line := "  · " + p.Item
			if p.Brand != "" {
				line += " (" + p.Brand + ")"
			}
			if p.Price > 0 {
				line += fmt.Sprintf("  $%.2f", p.Price)
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
		if stop.Notes != "" {
			b.WriteString(th.Subtle.Render(wordwrap.String("  "+stop.Notes, width-2)))
			b.WriteString("\n")
		}
	}
	if total := tr.Total(); total > 0 {
		b.WriteString("\n")
		b.WriteString(th.Label.Render(fmt.Sprintf("Total $%.2f", total)))
	}
	b.WriteString("\n\n")
	if t.confirming {
		b.WriteString(th.ErrorMsg.Render("D confirm delete · esc cancel"))
	} else {
		b.WriteString(th.Subtle.Render("↑/↓ scroll · D delete · esc close"))
	}

	lines := strings.Split(b.String(), "\n")
	if t.scroll >= len(lines) {
		t.scroll = len(lines) - 1
	}
	if t.scroll < 0 {
		t.scroll = 0
	}
	return strings.Join(lines[t.scroll:], "\n")
}
