package ui

import (
	"context"
	"errors"

	engine "tableflip.dev/daybook/pkg/agenda"
	"tableflip.dev/daybook/pkg/client"
	"tableflip.dev/daybook/pkg/prefetch"
	"tableflip.dev/daybook/pkg/tui/app"
)

// UI launches the full-screen calendar.
type UI struct {
	Aggregator *engine.Aggregator
	Service    client.Service
	Routes     *prefetch.Trigger
}

func (d *UI) Do(ctx context.Context) error {
	if d.Aggregator == nil || d.Service == nil {
		return errors.New("can not open ui, engine not configured")
	}
	opts := make([]app.Option, 0, 1)
	if d.Routes != nil {
		opts = append(opts, app.WithRoutes(d.Routes))
	}
	return app.Run(d.Aggregator, d.Service, opts...)
}
