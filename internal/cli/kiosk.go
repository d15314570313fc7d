package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// runKiosk starts the full-screen kiosk. Refuses to run without a
// terminal so a cron job or pipe cannot hang on the login form.
func runKiosk(app *App) error {
	if app.IsInteractive != nil && !app.IsInteractive() {
		return fmt.Errorf("the kiosk needs an interactive terminal; use the subcommands for scripting")
	}

	p := tea.NewProgram(newKioskModel(app), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running kiosk: %w", err)
	}
	return nil
}
