package project

import (
	"testing"
	"time"

	"tableflip.dev/daybook/pkg/plan"
	"tableflip.dev/daybook/pkg/timeutil"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func TestTaskOccursOnMatchesDayKey(t *testing.T) {
	task := &plan.Task{ID: "t1", Title: "mow lawn", Date: "2025-06-03"}

	if !TaskOccursOn(task, day(2025, time.June, 3)) {
		t.Fatal("task should occur on its stored date")
	}
	if TaskOccursOn(task, day(2025, time.June, 4)) {
		t.Fatal("task must not leak onto other days")
	}
}

func TestFloatingTaskNeverOccurs(t *testing.T) {
	floating := &plan.Task{ID: "t2", Title: "someday", Type: plan.TypeFloating}
	if TaskOccursOn(floating, day(2025, time.June, 3)) {
		t.Fatal("floating tasks have no calendar day")
	}
}

func TestHabitCreationDayIsAHardFloor(t *testing.T) {
	// Created on a Tuesday, recurring weekly on Tuesdays. The previous
	// Tuesday matches the rule but predates the habit.
	h := &plan.Habit{
		ID:         "h1",
		Title:      "water plants",
		CreatedAt:  time.Date(2025, time.June, 3, 9, 30, 0, 0, time.Local),
		Frequency:  plan.FrequencyWeekly,
		DaysOfWeek: []int{2},
	}

	if HabitOccursOn(h, day(2025, time.May, 27)) {
		t.Fatal("habit projected before its creation day")
	}
	if !HabitOccursOn(h, day(2025, time.June, 3)) {
		t.Fatal("habit should occur on its creation day when the rule matches")
	}
	if !HabitOccursOn(h, day(2025, time.June, 10)) {
		t.Fatal("habit should recur the following Tuesday")
	}
	if HabitOccursOn(h, day(2025, time.June, 9)) {
		t.Fatal("Monday is not in the weekday set")
	}
}

func TestDailyHabitOccursEveryDayFromCreation(t *testing.T) {
	h := &plan.Habit{
		ID:        "h2",
		Title:     "stretch",
		CreatedAt: day(2025, time.June, 3),
		Frequency: plan.FrequencyDaily,
	}

	if HabitOccursOn(h, day(2025, time.June, 2)) {
		t.Fatal("daily habit must not predate creation")
	}
	for d := 3; d <= 7; d++ {
		if !HabitOccursOn(h, day(2025, time.June, d)) {
			t.Fatalf("daily habit missing on June %d", d)
		}
	}
}

func TestWeeklyHabitWithMultipleWeekdays(t *testing.T) {
	// Monday and Wednesday, created on a Sunday.
	h := &plan.Habit{
		ID:         "h3",
		Title:      "gym",
		CreatedAt:  day(2025, time.June, 1),
		Frequency:  plan.FrequencyWeekly,
		DaysOfWeek: []int{1, 3},
	}

	want := map[int]bool{2: true, 3: false, 4: true, 5: false, 9: true, 11: true}
	for d, expect := range want {
		if got := HabitOccursOn(h, day(2025, time.June, d)); got != expect {
			t.Fatalf("June %d: got %v, want %v", d, got, expect)
		}
	}
}

func TestWeeklyHabitWithoutWeekdaysUsesCreationWeekday(t *testing.T) {
	// No weekday set: recurs on the creation weekday (Tuesday).
	h := &plan.Habit{
		ID:        "h4",
		Title:     "review notes",
		CreatedAt: day(2025, time.June, 3),
		Frequency: plan.FrequencyWeekly,
	}

	if !HabitOccursOn(h, day(2025, time.June, 10)) {
		t.Fatal("expected recurrence on the creation weekday")
	}
	if HabitOccursOn(h, day(2025, time.June, 11)) {
		t.Fatal("unexpected recurrence off the creation weekday")
	}
}

func TestHabitWithZeroCreationNeverOccurs(t *testing.T) {
	h := &plan.Habit{ID: "h5", Title: "ghost", Frequency: plan.FrequencyDaily}
	if HabitOccursOn(h, day(2025, time.June, 3)) {
		t.Fatal("habit without a creation time must not project")
	}
}

func TestProjectDayOrdersTimedBeforeUntimed(t *testing.T) {
	on := day(2025, time.June, 3)
	items := []Entry{
		{Task: &plan.Task{ID: "late", Title: "dinner", Date: "2025-06-03", StartTime: "17:30"}},
		{Task: &plan.Task{ID: "untimed-a", Title: "laundry", Date: "2025-06-03"}},
		{Task: &plan.Task{ID: "early", Title: "standup", Date: "2025-06-03", StartTime: "09:00"}},
		{Task: &plan.Task{ID: "untimed-b", Title: "email", Date: "2025-06-03"}},
		{Task: &plan.Task{ID: "elsewhere", Title: "other day", Date: "2025-06-04", StartTime: "08:00"}},
	}

	got := ProjectDay(items, on)
	wantOrder := []string{"early", "late", "untimed-a", "untimed-b"}
	if len(got) != len(wantOrder) {
		t.Fatalf("expected %d entries, got %d", len(wantOrder), len(got))
	}
	for i, id := range wantOrder {
		if got[i].ID() != id {
			t.Fatalf("position %d: got %s, want %s", i, got[i].ID(), id)
		}
	}
}

func TestProjectDayIsDeterministic(t *testing.T) {
	on := day(2025, time.June, 3)
	items := []Entry{
		{Task: &plan.Task{ID: "a", Title: "a", Date: "2025-06-03", StartTime: "09:00"}},
		{Task: &plan.Task{ID: "b", Title: "b", Date: "2025-06-03", StartTime: "09:00"}},
		{Habit: &plan.Habit{ID: "c", Title: "c", CreatedAt: day(2025, time.June, 1), Frequency: plan.FrequencyDaily}},
	}

	first := ProjectDay(items, on)
	second := ProjectDay(items, on)
	if len(first) != len(second) {
		t.Fatalf("projection size changed: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID() != second[i].ID() {
			t.Fatalf("position %d changed between projections: %s vs %s", i, first[i].ID(), second[i].ID())
		}
	}
	// Equal sort keys keep their input order.
	if first[0].ID() != "a" || first[1].ID() != "b" {
		t.Fatalf("stable sort violated: %s, %s", first[0].ID(), first[1].ID())
	}
}

func TestSortTasksPlacesUnscheduledLast(t *testing.T) {
	tasks := []*plan.Task{
		{ID: "u", Title: "untimed"},
		{ID: "b", Title: "later", StartTime: "17:30"},
		{ID: "a", Title: "earlier", StartTime: "09:00"},
	}
	SortTasks(tasks)

	want := []string{"a", "b", "u"}
	for i, id := range want {
		if tasks[i].ID != id {
			t.Fatalf("position %d: got %s, want %s", i, tasks[i].ID, id)
		}
	}
	if timeutil.ClockMinutes(tasks[2].StartTime) != timeutil.UntimedMinutes {
		t.Fatal("untimed task should carry the untimed sort key")
	}
}
