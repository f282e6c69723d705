package plan

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// TaskType distinguishes how a task binds to the calendar.
type TaskType string

const (
	// TypeTodo is a dated checklist item without a scheduled time.
	TypeTodo TaskType = "todo"
	// TypeTimed is a dated item with a start time.
	TypeTimed TaskType = "timed"
	// TypeFloating has no date and lives outside the day buckets.
	TypeFloating TaskType = "floating"
	// TypeTrip is a task that shadows a shopping trip.
	TypeTrip TaskType = "trip"
)

// AllTaskTypes returns the supported task types.
func AllTaskTypes() []TaskType {
	return []TaskType{TypeTodo, TypeTimed, TypeFloating, TypeTrip}
}

// ParseTaskType converts a string to a TaskType.
func ParseTaskType(raw string) (TaskType, error) {
	t := TaskType(strings.ToLower(strings.TrimSpace(raw)))
	if t == "" {
		return TypeTodo, nil
	}
	for _, candidate := range AllTaskTypes() {
		if candidate == t {
			return candidate, nil
		}
	}
	return TypeTodo, fmt.Errorf("plan: unknown task type %q", raw)
}

// Step is one checklist line inside a task.
type Step struct {
	Content   string `json:"content"`
	Completed bool   `json:"completed"`
}

// Task is a dated (or floating) schedulable item.
type Task struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Status          Status   `json:"status"`
	Type            TaskType `json:"type"`
	Date            string   `json:"date,omitempty"`       // day key, empty for floating items
	StartTime       string   `json:"start_time,omitempty"` // "HH:MM", empty for untimed
	DurationMinutes int      `json:"duration_minutes,omitempty"`
	Color           string   `json:"color,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	Steps           []Step   `json:"steps,omitempty"`
	TripID          string   `json:"trip_id,omitempty"`
}

// NewTask mints a task with a fresh id and defaulted status/type.
func NewTask(title string, typ TaskType, date string) *Task {
	if typ == "" {
		typ = TypeTodo
	}
	return &Task{
		ID:     uuid.New().String(),
		Title:  strings.TrimSpace(title),
		Status: StatusNotStarted,
		Type:   typ,
		Date:   strings.TrimSpace(date),
	}
}

// Floating reports whether the task has no calendar date.
func (t *Task) Floating() bool {
	return strings.TrimSpace(t.Date) == ""
}

// Timed reports whether the task carries a start time.
func (t *Task) Timed() bool {
	return strings.TrimSpace(t.StartTime) != ""
}

// HasTag reports whether the task carries the given tag (case-insensitive).
func (t *Task) HasTag(tag string) bool {
	for _, candidate := range t.Tags {
		if strings.EqualFold(candidate, tag) {
			return true
		}
	}
	return false
}
