// Package plan defines the schedulable items rendered on the calendar.
package plan

import (
	"fmt"
	"strings"
)

// Status tracks task progress. Tasks cycle through a three-state ring rather
// than a boolean.
type Status string

const (
	// StatusNotStarted is the initial task state.
	StatusNotStarted Status = "not_started"
	// StatusInProgress marks a task someone is actively working.
	StatusInProgress Status = "in_progress"
	// StatusCompleted marks a finished task.
	StatusCompleted Status = "completed"
)

// AllStatuses returns the supported task statuses in ring order.
func AllStatuses() []Status {
	return []Status{StatusNotStarted, StatusInProgress, StatusCompleted}
}

// ParseStatus converts a string to a Status or returns an error for unknown values.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if s == "" {
		return StatusNotStarted, nil
	}
	for _, candidate := range AllStatuses() {
		if candidate == s {
			return candidate, nil
		}
	}
	return StatusNotStarted, fmt.Errorf("plan: unknown status %q", raw)
}

// Next advances the ring: not_started → in_progress → completed → not_started.
func (s Status) Next() Status {
	switch s {
	case StatusNotStarted:
		return StatusInProgress
	case StatusInProgress:
		return StatusCompleted
	case StatusCompleted:
		return StatusNotStarted
	default:
		return StatusInProgress
	}
}
