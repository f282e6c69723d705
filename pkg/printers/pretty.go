// Package printers renders agenda content for the terminal.
package printers

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/daybook/pkg/plan"
	"tableflip.dev/daybook/pkg/trip"
)

type PrettyPrint struct {
	ShowID bool
}

var (
	spacing = strings.Repeat(" ", len("171dff69-f8b9-9dca  "))
)

func (pp *PrettyPrint) NewLine() {
	_, _ = fmt.Fprintln(color.Output, "")
}

func (pp *PrettyPrint) Title(title string) {
	t := color.New(color.Bold, color.Underline)

	if pp.ShowID {
		_, _ = t.Print(spacing)
	}
	_, _ = t.Fprintln(color.Output, title)
}

func (pp *PrettyPrint) TitleWithCount(title string, count int) {
	t := color.New(color.Bold, color.Underline)
	c := color.New(color.Faint)

	if pp.ShowID {
		_, _ = t.Print(spacing)
	}
	_, _ = t.Print(title)
	_, _ = c.Printf(" - %d", count)

	switch count {
	case 1:
		_, _ = c.Println(" item")
	default:
		_, _ = c.Println(" items")
	}
}

func (pp *PrettyPrint) none() {
	f := color.New(color.Faint, color.Italic)
	if pp.ShowID {
		_, _ = f.Print(spacing)
	}
	_, _ = f.Print(" none\n")
}

func statusGlyph(s plan.Status) string {
	switch s {
	case plan.StatusCompleted:
		return "[x]"
	case plan.StatusInProgress:
		return "[~]"
	default:
		return "[ ]"
	}
}

func clockColumn(clock string) string {
	if clock == "" {
		return "     "
	}
	return clock
}

// Tasks prints one line per task, time column first, untimed last per the
// aggregator's ordering.
func (pp *PrettyPrint) Tasks(tasks ...*plan.Task) {
	if len(tasks) == 0 {
		pp.none()
		return
	}

	t := color.New()
	done := color.New(color.Faint, color.CrossedOut)
	y := color.New(color.FgHiYellow, color.Italic, color.Faint)

	for _, task := range tasks {
		if pp.ShowID {
			_, _ = y.Print(task.ID)
			if pad := len(spacing) - len(task.ID); pad > 0 {
				_, _ = y.Print(strings.Repeat(" ", pad))
			}
		}
		printer := t
		if task.Status == plan.StatusCompleted {
			printer = done
		}
		_, _ = printer.Fprintf(color.Output, "%s %s %s\n", clockColumn(task.StartTime), statusGlyph(task.Status), task.Title)
	}
}

// Habits prints the habit checklist with completion dots.
func (pp *PrettyPrint) Habits(habits ...*plan.Habit) {
	if len(habits) == 0 {
		pp.none()
		return
	}

	t := color.New(color.FgGreen)
	done := color.New(color.FgGreen, color.Faint)

	for _, h := range habits {
		glyph := "○"
		printer := t
		if h.CompletedToday {
			glyph = "●"
			printer = done
		}
		if pp.ShowID {
			_, _ = fmt.Fprint(color.Output, spacing)
		}
		_, _ = printer.Fprintf(color.Output, "%s %s %s\n", clockColumn(h.StartTime), glyph, h.Title)
	}
}

// Trips prints a stop/total table per trip.
func (pp *PrettyPrint) Trips(trips ...*trip.Trip) {
	if len(trips) == 0 {
		return
	}

	bold := color.New(color.Bold)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("Time"), bold.Sprint("Trip"), bold.Sprint("Stops"), bold.Sprint("Total"))
	for _, tr := range trips {
		total := ""
		if sum := tr.Total(); sum > 0 {
			total = fmt.Sprintf("$%.2f", sum)
		}
		tbl.AddRow(tr.ClockTime(), tr.Title, len(tr.Stops), total)
	}

	_, _ = fmt.Fprintln(color.Output, tbl)
}
