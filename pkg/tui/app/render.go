package app

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/muesli/reflow/truncate"

	"tableflip.dev/daybook/pkg/agenda"
	"tableflip.dev/daybook/pkg/plan"
	"tableflip.dev/daybook/pkg/timeutil"
	"tableflip.dev/daybook/pkg/tui/ui/overlay"
)

const (
	headerHeight = 2
	statusHeight = 1
	modalWidth   = 54
)

// View implements tea.Model.
func (m *Model) View() (string, *tea.Cursor) {
	width, height := m.width, m.height
	if width <= 0 {
		width = 80
	}
	if height <= 0 {
		height = 24
	}
	bodyHeight := height - headerHeight - statusHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}

	var body string
	switch {
	case m.expandedDay || m.agg.Mode() == agenda.ModeDay:
		body = m.renderDayTimeline(width, bodyHeight)
	case m.agg.Mode() == agenda.ModeMonth:
		body = m.renderMonthGrid(width, bodyHeight)
	default:
		body = m.renderWeekColumns(width, bodyHeight)
	}

	base := lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(width),
		body,
		m.renderStatusBar(width),
	)

	if m.overlay.edit != nil {
		base = overlay.Compose(base, width, height, m.editOverlayView(), m.editPlacement(width))
	}
	if m.overlay.kind == overlayTrip && m.overlay.trip != nil {
		fg := m.theme.Overlay.Frame.Render(m.tripOverlayView(modalWidth - 6))
		base = overlay.Compose(base, width, height, fg, overlay.Centered(0, 0))
	}
	return base, nil
}

func (m *Model) renderHeader(width int) string {
	anchor := m.agg.Anchor()
	var title string
	switch m.agg.Mode() {
	case agenda.ModeDay:
		title = anchor.Format("Monday, January 2 2006")
	case agenda.ModeMonth:
		title = anchor.Format("January 2006")
	default:
		iv := m.agg.Interval()
		title = iv.Start.Format("Jan 2") + " – " + iv.End.Format("Jan 2, 2006")
	}

	mode := string(m.agg.Mode())
	if m.expandedDay {
		mode += " · expanded"
	}
	if m.selection.active {
		mode += fmt.Sprintf(" · %d selected", len(m.selection.ids))
	}
	if tags := m.agg.Tags(); len(tags) > 0 {
		mode += " · #" + strings.Join(tags, " #")
	}

	left := m.theme.Calendar.Header.Render(title)
	right := m.theme.Status.Help.Render(mode)
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right + "\n"
}

func (m *Model) renderStatusBar(width int) string {
	line := m.status
	if m.lastErr != nil {
		return truncate.StringWithTail(m.theme.Status.Error.Render(line), uint(width), "…")
	}
	help := "d/w/m mode · h/l move · t today · x expand · c complete · s select · r refresh · q quit"
	bar := m.theme.Status.Bar.Render(line)
	hint := m.theme.Status.Help.Render(help)
	gap := width - lipgloss.Width(bar) - lipgloss.Width(hint)
	if gap < 1 {
		return truncate.StringWithTail(bar, uint(width), "…")
	}
	return bar + strings.Repeat(" ", gap) + hint
}

// renderMonthGrid draws the padded month grid; leading and trailing days from
// neighboring months render dimmed but stay selectable.
func (m *Model) renderMonthGrid(width, height int) string {
	iv := m.agg.Interval()
	days := iv.Days()
	colWidth := width / 7
	if colWidth < 4 {
		colWidth = 4
	}
	rows := len(days) / 7
	rowHeight := 1
	if rows > 0 && height/rows > 1 {
		rowHeight = height / rows
	}

	anchorMonth := m.agg.Anchor().Month()
	selected := m.agg.SelectedDay()
	today := timeutil.DayKey(m.now())

	var b strings.Builder
	b.WriteString(m.weekdayHeader(colWidth))
	b.WriteString("\n")
	for row := 0; row < rows; row++ {
		cells := make([]string, 0, 7)
		for col := 0; col < 7; col++ {
			day := days[row*7+col]
			cells = append(cells, m.monthCell(day, anchorMonth, selected, today, colWidth, rowHeight))
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells...))
		if row < rows-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m *Model) monthCell(day time.Time, anchorMonth time.Month, selected, today string, colWidth, rowHeight int) string {
	key := timeutil.DayKey(day)
	label := fmt.Sprintf("%2d", day.Day())
	if n := len(m.agg.TasksOn(key)) + len(m.agg.TripsOn(key)); n > 0 {
		label += fmt.Sprintf(" ·%d", n)
	}

	style := m.theme.Calendar.DayLabel
	if day.Month() != anchorMonth {
		style = m.theme.Calendar.Adjacent
	}
	if key == today {
		style = style.Underline(true)
	}
	if key == selected {
		style = m.theme.Calendar.Selected
	}
	cell := style.Width(colWidth).Render(truncate.String(label, uint(colWidth)))

	if rowHeight > 1 {
		lines := []string{cell}
		for _, t := range m.agg.TasksOn(key) {
			if len(lines) >= rowHeight {
				break
			}
			lines = append(lines, m.itemLineStyle(t).Width(colWidth).Render(truncate.StringWithTail(t.Title, uint(colWidth), "…")))
		}
		for len(lines) < rowHeight {
			lines = append(lines, strings.Repeat(" ", colWidth))
		}
		cell = strings.Join(lines, "\n")
	}
	return cell
}

func (m *Model) weekdayHeader(colWidth int) string {
	iv := m.agg.Interval()
	names := make([]string, 0, 7)
	for i := 0; i < 7; i++ {
		day := iv.Start.AddDate(0, 0, i)
		names = append(names, m.theme.Calendar.Header.Width(colWidth).Render(day.Format("Mon")))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, names...)
}

// renderWeekColumns draws seven day columns with each day's habits, tasks,
// and trips in time order.
func (m *Model) renderWeekColumns(width, height int) string {
	iv := m.agg.Interval()
	days := iv.Days()
	colWidth := width / 7
	if colWidth < 8 {
		colWidth = 8
	}
	selected := m.agg.SelectedDay()
	today := timeutil.DayKey(m.now())

	cols := make([]string, 0, len(days))
	for _, day := range days {
		key := timeutil.DayKey(day)
		headStyle := m.theme.Calendar.DayLabel
		if key == today {
			headStyle = headStyle.Underline(true)
		}
		if key == selected {
			headStyle = m.theme.Calendar.Selected
		}
		lines := []string{headStyle.Width(colWidth).Render(day.Format("Mon 2"))}

		for _, h := range m.agg.HabitsOn(day) {
			if len(lines) >= height {
				break
			}
			glyph := "○ "
			if h.CompletedToday {
				glyph = "● "
			}
			lines = append(lines, m.theme.Item.Habit.Width(colWidth).Render(truncate.StringWithTail(glyph+h.Title, uint(colWidth), "…")))
		}
		for _, t := range m.agg.TasksOn(key) {
			if len(lines) >= height {
				break
			}
			lines = append(lines, m.itemLineStyle(t).Width(colWidth).Render(truncate.StringWithTail(taskLine(t), uint(colWidth), "…")))
		}
		for _, tr := range m.agg.TripsOn(key) {
			if len(lines) >= height {
				break
			}
			label := "⇒ " + tr.ClockTime() + " " + tr.Title
			lines = append(lines, m.theme.Item.Trip.Width(colWidth).Render(truncate.StringWithTail(label, uint(colWidth), "…")))
		}
		for len(lines) < height {
			lines = append(lines, strings.Repeat(" ", colWidth))
		}
		cols = append(cols, strings.Join(lines[:height], "\n"))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

// renderDayTimeline draws the selected day's ordered items with the cursor,
// plus selection checkboxes when selection mode is active.
func (m *Model) renderDayTimeline(width, height int) string {
	items := m.dayItems()
	day, err := timeutil.ParseDayKey(m.agg.SelectedDay())
	title := m.agg.SelectedDay()
	if err == nil {
		title = day.Format("Monday, January 2")
	}

	lines := []string{m.theme.Calendar.DayLabel.Bold(true).Render(title), ""}
	if len(items) == 0 {
		lines = append(lines, m.theme.Status.Help.Render("Nothing scheduled"))
	}
	for i, item := range items {
		line := m.dayItemLine(item)
		if m.selection.active {
			box := "[ ] "
			if item.kind == itemHabit && m.selection.selected(item.habit.ID) {
				box = m.theme.Item.Checked.Render("[✓]") + " "
			} else if item.kind != itemHabit {
				box = "    "
			}
			line = box + line
		}
		line = truncate.StringWithTail(line, uint(width-2), "…")
		if i == m.cursor {
			line = m.theme.Item.Cursor.Render(line)
		}
		lines = append(lines, line)
	}

	if floating := m.agg.FloatingTasks(); len(floating) > 0 && !m.selection.active {
		lines = append(lines, "", m.theme.Calendar.Header.Render("Floating"))
		for _, t := range floating {
			lines = append(lines, m.itemLineStyle(t).Render(truncate.StringWithTail(taskLine(t), uint(width-2), "…")))
		}
	}

	if len(lines) > height {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}

func (m *Model) dayItemLine(item dayItem) string {
	switch item.kind {
	case itemHabit:
		glyph := "○"
		if item.habit.CompletedToday {
			glyph = "●"
		}
		return m.theme.Item.Habit.Render(clockPrefix(item.habit.StartTime) + glyph + " " + item.habit.Title)
	case itemTrip:
		label := clockPrefix(item.trip.ClockTime()) + "⇒ " + item.trip.Title
		if total := item.trip.Total(); total > 0 {
			label += fmt.Sprintf("  $%.2f", total)
		}
		return m.theme.Item.Trip.Render(label)
	default:
		return m.itemLineStyle(item.task).Render(clockPrefix(item.task.StartTime) + taskGlyph(item.task) + " " + item.task.Title)
	}
}

func (m *Model) itemLineStyle(t *plan.Task) lipgloss.Style {
	base := m.theme.Item.Timed
	if t.StartTime == "" {
		base = m.theme.Item.Untimed
	}
	if t.Status == plan.StatusCompleted {
		return m.theme.Item.Completed
	}
	return m.theme.ItemStyle(t.Color, base)
}

func taskGlyph(t *plan.Task) string {
	switch t.Status {
	case plan.StatusCompleted:
		return "[x]"
	case plan.StatusInProgress:
		return "[~]"
	default:
		return "[ ]"
	}
}

func taskLine(t *plan.Task) string {
	return clockPrefix(t.StartTime) + taskGlyph(t) + " " + t.Title
}

func clockPrefix(clock string) string {
	if clock == "" {
		return "      "
	}
	return clock + " "
}

// editOverlayView renders the task form, framed for the modal variant or with
// the lighter inline frame when anchored in-grid.
func (m *Model) editOverlayView() string {
	e := m.overlay.edit
	th := m.theme.Overlay

	var b strings.Builder
	b.WriteString(th.Title.Render("Edit task"))
	b.WriteString("\n\n")
	b.WriteString(th.Label.Render("Title "))
	b.WriteString(e.title.View())
	b.WriteString("\n")
	b.WriteString(th.Label.Render("Time  "))
	b.WriteString(e.clock.View())
	b.WriteString("\n")
	if e.errMsg != "" {
		b.WriteString(th.ErrorMsg.Render(e.errMsg))
		b.WriteString("\n")
	}
	if e.task.TripID != "" {
		b.WriteString(th.Subtle.Render("ctrl+t trip detail"))
		b.WriteString("\n")
	}
	b.WriteString(th.Subtle.Render("tab field · enter save · esc close"))

	if e.anchorCol >= 0 {
		return th.Inline.Render(b.String())
	}
	return th.Frame.Width(modalWidth).Render(b.String())
}

func (m *Model) editPlacement(width int) overlay.Placement {
	e := m.overlay.edit
	if e.anchorCol >= 0 {
		colWidth := width / 7
		return overlay.Anchored(e.anchorCol*colWidth, 0, 0)
	}
	return overlay.Centered(0, 0)
}
