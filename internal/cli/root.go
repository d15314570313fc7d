// Package cli implements the terminal front end: the kiosk TUI and the
// maintenance subcommands around it.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mgilsanz/presencia/internal/history"
	"github.com/mgilsanz/presencia/internal/location"
	"github.com/mgilsanz/presencia/internal/odoo"
)

// App holds the wired dependencies used by CLI commands.
type App struct {
	Client  *odoo.Client
	Gate    *location.Gate
	Journal *history.Store
	Version string

	// IsInteractive reports whether stdin is a terminal. The kiosk
	// refuses to start without one.
	IsInteractive func() bool
}

// NewRootCmd creates the top-level "presencia" command. Running it with
// no subcommand starts the kiosk.
func NewRootCmd(app *App) *cobra.Command {
	var serverURL string

	root := &cobra.Command{
		Use:          "presencia",
		Short:        "Attendance kiosk for the company ERP",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if serverURL != "" {
				app.Client.Reconfigure(serverURL)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKiosk(app)
		},
	}

	root.PersistentFlags().StringVar(&serverURL, "url", "", "override the ERP server URL for this run")

	root.AddCommand(
		newHistoryCmd(app),
		newPingCmd(app),
		newVersionCmd(app),
	)

	return root
}

func newVersionCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the presencia version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "presencia %s\n", app.Version)
		},
	}
}

func newPingCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the ERP server is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.Client.Available(cmd.Context()) {
				return fmt.Errorf("server %s is not reachable", app.Client.URL())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "server %s is reachable\n", app.Client.URL())
			return nil
		},
	}
}
