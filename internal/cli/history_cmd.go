package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mgilsanz/presencia/internal/cli/formatter"
)

// newHistoryCmd lists recent punches from the local journal. Reads only
// local state; works offline.
func newHistoryCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent attendance punches recorded by this kiosk",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Journal == nil {
				return fmt.Errorf("the punch journal is disabled")
			}
			entries, err := app.Journal.Recent(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("reading punch journal: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, formatter.Dim("no punches recorded yet"))
				return nil
			}

			fmt.Fprintln(out, formatter.Header("Recent punches"))
			for _, e := range entries {
				var extras []string
				if e.Observations != "" {
					extras = append(extras, e.Observations)
				}
				if e.Progress != nil {
					extras = append(extras, fmt.Sprintf("%d%%", *e.Progress))
				}
				suffix := ""
				if len(extras) > 0 {
					suffix = "  " + formatter.Dim(strings.Join(extras, " · "))
				}
				fmt.Fprintf(out, "%s  %s  %s%s%s%s\n",
					formatter.Dim(e.At.Local().Format("2006-01-02 15:04")),
					formatter.ActionBadge(e.Action),
					formatter.Bold(e.Project.Label),
					formatter.Dim(" / "),
					e.Task.Label,
					suffix,
				)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of punches to show")
	return cmd
}
