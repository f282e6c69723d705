package plan

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Frequency controls how often a habit recurs.
type Frequency string

const (
	// FrequencyDaily recurs every day from the habit's creation day onward.
	FrequencyDaily Frequency = "daily"
	// FrequencyWeekly recurs on the habit's weekday set.
	FrequencyWeekly Frequency = "weekly"
)

// AllFrequencies returns the supported habit frequencies.
func AllFrequencies() []Frequency {
	return []Frequency{FrequencyDaily, FrequencyWeekly}
}

// ParseFrequency converts a string to a Frequency.
func ParseFrequency(raw string) (Frequency, error) {
	f := Frequency(strings.ToLower(strings.TrimSpace(raw)))
	if f == "" {
		return FrequencyDaily, nil
	}
	for _, candidate := range AllFrequencies() {
		if candidate == f {
			return candidate, nil
		}
	}
	return FrequencyDaily, fmt.Errorf("plan: unknown frequency %q", raw)
}

// Habit is a recurring schedulable item. A habit never appears on days before
// its creation day, whatever its frequency says.
type Habit struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	CreatedAt      time.Time `json:"created_at"`
	Frequency      Frequency `json:"frequency"`
	DaysOfWeek     []int     `json:"days_of_week,omitempty"` // 0 = Sunday … 6 = Saturday
	CompletedToday bool      `json:"completed_today"`
	StartTime      string    `json:"start_time,omitempty"` // "HH:MM", empty for untimed
	Color          string    `json:"color,omitempty"`
	Tags           []string  `json:"tags,omitempty"`
}

// NewHabit mints a habit with a fresh id.
func NewHabit(title string, freq Frequency, createdAt time.Time) *Habit {
	if freq == "" {
		freq = FrequencyDaily
	}
	return &Habit{
		ID:        uuid.New().String(),
		Title:     strings.TrimSpace(title),
		Frequency: freq,
		CreatedAt: createdAt,
	}
}

// OnWeekday reports whether the habit's weekday set includes wd.
func (h *Habit) OnWeekday(wd time.Weekday) bool {
	for _, day := range h.DaysOfWeek {
		if day == int(wd) {
			return true
		}
	}
	return false
}
