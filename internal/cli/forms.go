package cli

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/mgilsanz/presencia/internal/cli/formatter"
	"github.com/mgilsanz/presencia/internal/domain"
)

// presenciaHuhTheme returns a custom huh theme using the Gruvbox palette.
func presenciaHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	// Focused state: orange accent
	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	// Blurred state: dimmed
	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// loginForm collects employee credentials.
func loginForm(user, pass *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("User").
				Placeholder("employee login").
				Value(user).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("user is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(pass).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("password is required")
					}
					return nil
				}),
		),
	).WithTheme(presenciaHuhTheme()).WithShowHelp(false)
}

// selectProjectForm picks one of the employee's assigned projects.
func selectProjectForm(projects []domain.Project, result *int64) *huh.Form {
	options := make([]huh.Option[int64], 0, len(projects))
	for _, p := range projects {
		options = append(options, huh.NewOption(p.Label, p.ID))
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int64]().
				Title("Which project?").
				Options(options...).
				Value(result),
		),
	).WithTheme(presenciaHuhTheme()).WithShowHelp(false)
}

// selectTaskForm picks a task within the chosen project. Stage labels
// come from the ERP and may be empty.
func selectTaskForm(tasks []domain.Task, result *int64) *huh.Form {
	options := make([]huh.Option[int64], 0, len(tasks))
	for _, t := range tasks {
		label := t.Label
		if t.Stage != "" {
			label = fmt.Sprintf("%s (%s)", t.Label, t.Stage)
		}
		options = append(options, huh.NewOption(label, t.ID))
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int64]().
				Title("Which task?").
				Options(options...).
				Value(result),
		),
	).WithTheme(presenciaHuhTheme()).WithShowHelp(false)
}

// observationsForm collects the free-text work description.
func observationsForm(result *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("Observations").
				Placeholder("what did you work on?").
				Value(result),
		),
	).WithTheme(presenciaHuhTheme()).WithShowHelp(false)
}

// progressForm collects the task progress percentage. Sanitizing is
// done by the session machine, so anything typed here is accepted.
func progressForm(result *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Progress (%)").
				Placeholder("0-100, blank for none").
				Value(result),
		),
	).WithTheme(presenciaHuhTheme()).WithShowHelp(false)
}
