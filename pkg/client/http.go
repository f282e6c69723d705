package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tableflip.dev/daybook/pkg/plan"
	"tableflip.dev/daybook/pkg/timeutil"
	"tableflip.dev/daybook/pkg/trip"
)

const defaultTimeout = 15 * time.Second

// HTTP is the REST implementation of the fetch/mutation collaborators.
type HTTP struct {
	base   *url.URL
	token  string
	client *http.Client
}

var _ Service = (*HTTP)(nil)

// NewHTTP builds a collaborator against the given base URL. The token, when
// set, is sent as a bearer credential.
func NewHTTP(baseURL, token string) (*HTTP, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, fmt.Errorf("client: base url required")
	}
	base, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("client: parse base url: %w", err)
	}
	return &HTTP{
		base:  base,
		token: token,
		client: &http.Client{
			Timeout: defaultTimeout,
		},
	}, nil
}

func (h *HTTP) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	u := *h.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("client: encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("client: build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Method: method, Path: path}
		var payload struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
			if payload.Error != "" {
				apiErr.Message = payload.Error
			} else {
				apiErr.Message = payload.Message
			}
		}
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("client: decode %s %s: %w", method, path, err)
	}
	return nil
}

func rangeQuery(iv timeutil.Interval) url.Values {
	q := url.Values{}
	q.Set("from", timeutil.DayKey(iv.Start))
	q.Set("to", timeutil.DayKey(iv.End))
	return q
}

// FetchTasks reads every task in the interval, filtered server-side.
func (h *HTTP) FetchTasks(ctx context.Context, iv timeutil.Interval, filters TaskFilters) ([]*plan.Task, error) {
	q := rangeQuery(iv)
	if len(filters.Tags) > 0 {
		q.Set("tags", strings.Join(filters.Tags, ","))
	}
	var tasks []*plan.Task
	if err := h.do(ctx, http.MethodGet, "/api/tasks", q, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// FetchTrips reads every trip starting in the interval.
func (h *HTTP) FetchTrips(ctx context.Context, iv timeutil.Interval) ([]*trip.Trip, error) {
	var trips []*trip.Trip
	if err := h.do(ctx, http.MethodGet, "/api/trips", rangeQuery(iv), nil, &trips); err != nil {
		return nil, err
	}
	return trips, nil
}

// FetchHabits reads the full habit catalog.
func (h *HTTP) FetchHabits(ctx context.Context) ([]*plan.Habit, error) {
	var habits []*plan.Habit
	if err := h.do(ctx, http.MethodGet, "/api/habits", nil, nil, &habits); err != nil {
		return nil, err
	}
	return habits, nil
}

// CreateTask persists a new task and returns the canonical record.
func (h *HTTP) CreateTask(ctx context.Context, t *plan.Task) (*plan.Task, error) {
	var created plan.Task
	if err := h.do(ctx, http.MethodPost, "/api/tasks", nil, t, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateTask replaces a task and returns the canonical record.
func (h *HTTP) UpdateTask(ctx context.Context, t *plan.Task) (*plan.Task, error) {
	var updated plan.Task
	if err := h.do(ctx, http.MethodPut, "/api/tasks/"+url.PathEscape(t.ID), nil, t, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteTask removes a task.
func (h *HTTP) DeleteTask(ctx context.Context, id string) error {
	return h.do(ctx, http.MethodDelete, "/api/tasks/"+url.PathEscape(id), nil, nil, nil)
}

// CompleteHabit marks the habit done for today.
func (h *HTTP) CompleteHabit(ctx context.Context, id string) (*plan.Habit, error) {
	var updated plan.Habit
	if err := h.do(ctx, http.MethodPost, "/api/habits/"+url.PathEscape(id)+"/complete", nil, nil, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// UncompleteHabit clears today's completion.
func (h *HTTP) UncompleteHabit(ctx context.Context, id string) (*plan.Habit, error) {
	var updated plan.Habit
	if err := h.do(ctx, http.MethodDelete, "/api/habits/"+url.PathEscape(id)+"/complete", nil, nil, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// CreateTrip persists a new trip.
func (h *HTTP) CreateTrip(ctx context.Context, t *trip.Trip) (*trip.Trip, error) {
	var created trip.Trip
	if err := h.do(ctx, http.MethodPost, "/api/trips", nil, t, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateTrip replaces a trip.
func (h *HTTP) UpdateTrip(ctx context.Context, t *trip.Trip) (*trip.Trip, error) {
	var updated trip.Trip
	if err := h.do(ctx, http.MethodPut, "/api/trips/"+url.PathEscape(t.ID), nil, t, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteTrip removes a trip. Task references are cleared by the caller after
// success.
func (h *HTTP) DeleteTrip(ctx context.Context, id string) error {
	return h.do(ctx, http.MethodDelete, "/api/trips/"+url.PathEscape(id), nil, nil, nil)
}

// CreateStop appends a stop and returns the updated trip.
func (h *HTTP) CreateStop(ctx context.Context, tripID string, s *trip.Stop) (*trip.Trip, error) {
	var updated trip.Trip
	path := "/api/trips/" + url.PathEscape(tripID) + "/stops"
	if err := h.do(ctx, http.MethodPost, path, nil, s, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// UpdateStop replaces a stop and returns the updated trip.
func (h *HTTP) UpdateStop(ctx context.Context, tripID string, s *trip.Stop) (*trip.Trip, error) {
	var updated trip.Trip
	path := "/api/trips/" + url.PathEscape(tripID) + "/stops/" + url.PathEscape(s.ID)
	if err := h.do(ctx, http.MethodPut, path, nil, s, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteStop removes a stop from a trip.
func (h *HTTP) DeleteStop(ctx context.Context, tripID, stopID string) error {
	path := "/api/trips/" + url.PathEscape(tripID) + "/stops/" + url.PathEscape(stopID)
	return h.do(ctx, http.MethodDelete, path, nil, nil, nil)
}
