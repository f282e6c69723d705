package commands

import (
	"context"

	"github.com/spf13/cobra"

	"tableflip.dev/daybook/pkg/runner/ui"
)

func addUI(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "ui",
		Short: "open the full-screen calendar",
		Example: `
daybook ui
`,
		ValidArgs: []string{},
		RunE: func(cmd *cobra.Command, args []string) error {
			agg, svc, routes, err := buildEngine()
			if err != nil {
				return err
			}
			i := ui.UI{Aggregator: agg, Service: svc, Routes: routes}
			return i.Do(context.Background())
		},
	}

	topLevel.AddCommand(cmd)
}
