package plan

import "testing"

func TestStatusRing(t *testing.T) {
	if got := StatusNotStarted.Next(); got != StatusInProgress {
		t.Fatalf("not_started.Next() = %s", got)
	}
	if got := StatusInProgress.Next(); got != StatusCompleted {
		t.Fatalf("in_progress.Next() = %s", got)
	}
	if got := StatusCompleted.Next(); got != StatusNotStarted {
		t.Fatalf("completed.Next() = %s", got)
	}

	// Three advances land back where we started, for every state.
	for _, s := range AllStatuses() {
		if got := s.Next().Next().Next(); got != s {
			t.Fatalf("ring broken for %s: %s", s, got)
		}
	}
}

func TestParseStatus(t *testing.T) {
	if s, err := ParseStatus(" In_Progress "); err != nil || s != StatusInProgress {
		t.Fatalf("ParseStatus(in_progress) = %v, %v", s, err)
	}
	if s, err := ParseStatus(""); err != nil || s != StatusNotStarted {
		t.Fatalf("empty status should default, got %v, %v", s, err)
	}
	if _, err := ParseStatus("paused"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestTaskFloatingAndTimed(t *testing.T) {
	floating := NewTask("someday", TypeFloating, "")
	if !floating.Floating() {
		t.Fatal("task without a date is floating")
	}

	timed := NewTask("standup", TypeTimed, "2025-11-05")
	timed.StartTime = "09:00"
	if timed.Floating() {
		t.Fatal("dated task is not floating")
	}
	if !timed.Timed() {
		t.Fatal("task with a start time is timed")
	}
}

func TestHabitOnWeekday(t *testing.T) {
	h := &Habit{DaysOfWeek: []int{1, 3}}
	if !h.OnWeekday(1) || !h.OnWeekday(3) {
		t.Fatal("configured weekdays should match")
	}
	if h.OnWeekday(0) {
		t.Fatal("unconfigured weekday matched")
	}
}
