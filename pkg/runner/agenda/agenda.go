package agenda

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	isatty "github.com/mattn/go-isatty"

	engine "tableflip.dev/daybook/pkg/agenda"
	"tableflip.dev/daybook/pkg/printers"
	"tableflip.dev/daybook/pkg/timeutil"
)

// Agenda prints the aggregated range for a mode and anchor day.
type Agenda struct {
	Mode   string
	On     string
	Tags   []string
	JSON   bool
	ShowID bool

	Aggregator *engine.Aggregator
}

func (n *Agenda) Do(ctx context.Context) error {
	if n.Aggregator == nil {
		return errors.New("can not print agenda, no aggregator")
	}

	mode, err := engine.ParseViewMode(n.Mode)
	if err != nil {
		return err
	}

	anchor := time.Now()
	if n.On != "" && n.On != "today" {
		anchor, err = timeutil.ParseDayKey(n.On)
		if err != nil {
			return err
		}
	}

	n.Aggregator.SetTagFilter(n.Tags)
	n.Aggregator.SetVisibleRange(mode, anchor)
	if err := n.Aggregator.Refresh(ctx); err != nil {
		return err
	}

	if n.JSON {
		return n.printJSON()
	}

	if !isatty.IsTerminal(os.Stdout.Fd()) {
		color.NoColor = true
	}

	pp := printers.PrettyPrint{ShowID: n.ShowID}
	pp.NewLine()

	for _, day := range n.Aggregator.Interval().Days() {
		key := timeutil.DayKey(day)
		habits := n.Aggregator.HabitsOn(day)
		tasks := n.Aggregator.TasksOn(key)
		trips := n.Aggregator.TripsOn(key)

		if mode != engine.ModeDay && len(habits) == 0 && len(tasks) == 0 && len(trips) == 0 {
			continue
		}

		pp.TitleWithCount(day.Format("Monday, January 2"), len(habits)+len(tasks)+len(trips))
		if len(habits) > 0 {
			pp.Habits(habits...)
		}
		pp.Tasks(tasks...)
		pp.Trips(trips...)
		pp.NewLine()
	}

	if floating := n.Aggregator.FloatingTasks(); len(floating) > 0 {
		pp.Title("Floating")
		pp.Tasks(floating...)
		pp.NewLine()
	}
	return nil
}

func (n *Agenda) printJSON() error {
	out := struct {
		Mode     engine.ViewMode `json:"mode"`
		From     string          `json:"from"`
		To       string          `json:"to"`
		ByDate   interface{}     `json:"tasks_by_date"`
		Trips    interface{}     `json:"trips_by_date"`
		Floating interface{}     `json:"floating,omitempty"`
		Habits   interface{}     `json:"habits,omitempty"`
	}{
		Mode:     n.Aggregator.Mode(),
		From:     timeutil.DayKey(n.Aggregator.Interval().Start),
		To:       timeutil.DayKey(n.Aggregator.Interval().End),
		ByDate:   n.Aggregator.TasksByDate(),
		Trips:    n.Aggregator.TripsByDate(),
		Floating: n.Aggregator.FloatingTasks(),
		Habits:   n.Aggregator.Habits(),
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
