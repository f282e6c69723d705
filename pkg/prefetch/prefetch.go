// Package prefetch maps opaque route identifiers to fire-and-forget
// refreshes. Triggers are latency hints only: callers never await them, and
// the staleness cache guarantees fresh data is not fetched twice.
package prefetch

import (
	"context"
	"strings"
	"sync"
	"time"
)

const fireTimeout = 30 * time.Second

// RefreshFunc is a refresh-equivalent invoked when a route fires.
type RefreshFunc func(ctx context.Context) error

// Trigger dispatches registered refreshes for a route without awaiting them.
type Trigger struct {
	mu     sync.RWMutex
	routes map[string][]RefreshFunc
}

// New constructs an empty trigger table.
func New() *Trigger {
	return &Trigger{routes: make(map[string][]RefreshFunc)}
}

// Register adds a refresh for a route identifier.
func (t *Trigger) Register(route string, fn RefreshFunc) {
	route = strings.TrimSpace(route)
	if route == "" || fn == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.routes[route] = append(t.routes[route], fn)
}

// Fire dispatches every refresh registered for the route, each on its own
// goroutine. Errors are dropped: a failed prefetch just means the view pays
// the fetch cost later.
func (t *Trigger) Fire(route string) {
	t.mu.RLock()
	fns := append([]RefreshFunc(nil), t.routes[strings.TrimSpace(route)]...)
	t.mu.RUnlock()

	for _, fn := range fns {
		fn := fn
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), fireTimeout)
			defer cancel()
			_ = fn(ctx)
		}()
	}
}
