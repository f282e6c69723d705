package commands

import (
	engine "tableflip.dev/daybook/pkg/agenda"
	"tableflip.dev/daybook/pkg/client"
	"tableflip.dev/daybook/pkg/prefetch"
	"tableflip.dev/daybook/pkg/snapshot"
	"tableflip.dev/daybook/pkg/staleness"
	"tableflip.dev/daybook/pkg/store"
)

// buildEngine assembles the fetch/cache/aggregate pipeline from config. Every
// command shares this wiring so the staleness cache coalesces across surfaces.
func buildEngine() (*engine.Aggregator, client.Service, *prefetch.Trigger, error) {
	cfg, err := store.LoadConfig()
	if err != nil {
		return nil, nil, nil, err
	}

	svc, err := client.NewHTTP(cfg.BaseURL(), cfg.Token())
	if err != nil {
		return nil, nil, nil, err
	}

	agg := engine.New(svc, staleness.New(),
		engine.WithWeekStart(cfg.WeekStart()),
		engine.WithSnapshots(snapshot.Open(cfg.SnapshotPath())),
	)

	routes := prefetch.New()
	for _, mode := range engine.AllViewModes() {
		routes.Register(string(mode), agg.Refresh)
	}

	return agg, svc, routes, nil
}
