// Package trip defines multi-stop shopping trips and their purchases.
package trip

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"tableflip.dev/daybook/pkg/timeutil"
)

// Purchase is one line item bought (or planned) at a stop.
type Purchase struct {
	ID       string  `json:"id"`
	Brand    string  `json:"brand,omitempty"`
	Item     string  `json:"item"`
	Quantity float64 `json:"quantity,omitempty"`
	Price    float64 `json:"price,omitempty"`
	Taxable  bool    `json:"taxable,omitempty"`
}

// Stop is one store visit inside a trip.
type Stop struct {
	ID        string     `json:"id"`
	StoreName string     `json:"store_name"`
	ArriveAt  *time.Time `json:"arrive_at,omitempty"`
	DepartAt  *time.Time `json:"depart_at,omitempty"`
	Notes     string     `json:"notes,omitempty"`
	Purchases []Purchase `json:"purchases,omitempty"`
}

// Trip is an ordered list of stops anchored to a start timestamp.
type Trip struct {
	ID      string    `json:"id"`
	Title   string    `json:"title,omitempty"`
	StartAt time.Time `json:"trip_start"`
	Stops   []Stop    `json:"stops,omitempty"`
}

// New mints a trip with a fresh id.
func New(title string, startAt time.Time) *Trip {
	return &Trip{
		ID:      uuid.New().String(),
		Title:   strings.TrimSpace(title),
		StartAt: startAt,
	}
}

// OccurrenceDay returns the day key the trip buckets under, derived from its
// start timestamp.
func (t *Trip) OccurrenceDay() string {
	return timeutil.DayKey(t.StartAt)
}

// ClockTime returns the trip start as "HH:MM" for time-of-day ordering.
func (t *Trip) ClockTime() string {
	return t.StartAt.Format("15:04")
}

// Total sums purchase prices across all stops.
func (t *Trip) Total() float64 {
	var total float64
	for _, stop := range t.Stops {
		for _, p := range stop.Purchases {
			qty := p.Quantity
			if qty == 0 {
				qty = 1
			}
			total += p.Price * qty
		}
	}
	return total
}

// FindStop returns the stop with the given id, if present.
func (t *Trip) FindStop(stopID string) (*Stop, bool) {
	for i := range t.Stops {
		if t.Stops[i].ID == stopID {
			return &t.Stops[i], true
		}
	}
	return nil, false
}
