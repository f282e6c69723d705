// Package client defines the remote collaborators the calendar engine talks
// to. The backend owns persistence; the engine only reads, projects, and
// invalidates. Payloads are opaque JSON records defined by the backend.
package client

import (
	"context"
	"fmt"

	"tableflip.dev/daybook/pkg/plan"
	"tableflip.dev/daybook/pkg/timeutil"
	"tableflip.dev/daybook/pkg/trip"
)

// TaskFilters narrows a task fetch. Filtering happens server-side so an empty
// filtered result is indistinguishable from "no items".
type TaskFilters struct {
	Tags []string
}

// Fetcher covers the idempotent, side-effect-free reads.
type Fetcher interface {
	FetchTasks(ctx context.Context, iv timeutil.Interval, filters TaskFilters) ([]*plan.Task, error)
	FetchTrips(ctx context.Context, iv timeutil.Interval) ([]*trip.Trip, error)
	FetchHabits(ctx context.Context) ([]*plan.Habit, error)
}

// Mutator covers writes. Each call returns the canonical updated entity (or
// deletes it); after a success the engine invalidates cache keys and
// refreshes rather than hand-patching remote state.
type Mutator interface {
	CreateTask(ctx context.Context, t *plan.Task) (*plan.Task, error)
	UpdateTask(ctx context.Context, t *plan.Task) (*plan.Task, error)
	DeleteTask(ctx context.Context, id string) error

	CompleteHabit(ctx context.Context, id string) (*plan.Habit, error)
	UncompleteHabit(ctx context.Context, id string) (*plan.Habit, error)

	CreateTrip(ctx context.Context, t *trip.Trip) (*trip.Trip, error)
	UpdateTrip(ctx context.Context, t *trip.Trip) (*trip.Trip, error)
	DeleteTrip(ctx context.Context, id string) error

	CreateStop(ctx context.Context, tripID string, s *trip.Stop) (*trip.Trip, error)
	UpdateStop(ctx context.Context, tripID string, s *trip.Stop) (*trip.Trip, error)
	DeleteStop(ctx context.Context, tripID, stopID string) error
}

// Service is the combined collaborator surface handed to the engine.
type Service interface {
	Fetcher
	Mutator
}

// APIError is the typed failure surfaced by the HTTP collaborator.
type APIError struct {
	StatusCode int
	Method     string
	Path       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("client: %s %s: %d %s", e.Method, e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("client: %s %s: status %d", e.Method, e.Path, e.StatusCode)
}
