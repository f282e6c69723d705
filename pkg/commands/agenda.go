package commands

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/daybook/pkg/commands/options"
	"tableflip.dev/daybook/pkg/runner/agenda"
)

func addAgenda(topLevel *cobra.Command) {
	mode := "week"
	on := "today"
	tags := ""
	showID := false

	cmd := &cobra.Command{
		Use:   "agenda [day|week|month]",
		Short: "print the agenda for a range",
		Example: `
daybook agenda
daybook agenda month --on 2026-03-01
daybook agenda day --tags errands,home
`,
		ValidArgs: []string{"day", "week", "month"},
		Args:      cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				mode = args[0]
			}
			agg, _, _, err := buildEngine()
			if err != nil {
				return err
			}
			s := agenda.Agenda{
				Mode:       mode,
				On:         on,
				JSON:       oo.JSON,
				ShowID:     showID,
				Aggregator: agg,
			}
			if tags != "" {
				s.Tags = strings.Split(tags, ",")
			}
			err = s.Do(context.Background())
			return oo.HandleError(err)
		},
	}

	cmd.Flags().StringVar(&on, "on", "today", "Anchor day as 2006-01-02, or 'today'.")
	cmd.Flags().StringVar(&tags, "tags", "", "Comma separated tag filter.")
	cmd.Flags().BoolVar(&showID, "show-ids", false, "Print item ids.")
	options.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}
