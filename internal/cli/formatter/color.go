package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mgilsanz/presencia/internal/domain"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

// Predefined lipgloss styles.
var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// StepColor returns the lipgloss style corresponding to the session step.
func StepColor(step domain.Step) lipgloss.Style {
	switch step {
	case domain.StepCheckedIn:
		return StyleGreen
	case domain.StepBeforeCheckout:
		return StyleYellow
	case domain.StepChangingTask:
		return StyleBlue
	case domain.StepCheckedOut:
		return StylePurple
	default:
		return StyleDim
	}
}

// StepIndicator returns a colored step label such as "● WORKING".
func StepIndicator(step domain.Step) string {
	switch step {
	case domain.StepCheckedIn:
		return StyleGreen.Render("● WORKING")
	case domain.StepBeforeCheckout:
		return StyleYellow.Render("● WRAPPING UP")
	case domain.StepChangingTask:
		return StyleBlue.Render("● CHANGING TASK")
	case domain.StepCheckedOut:
		return StylePurple.Render("● DONE")
	default:
		return StyleDim.Render("● READY")
	}
}

// ActionBadge renders a short colored badge for a punch direction.
func ActionBadge(action domain.AttendanceAction) string {
	if action == domain.ActionCheckIn {
		return StyleGreen.Render("IN ")
	}
	return StyleYellow.Render("OUT")
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", len(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

// Dim renders text in the muted/dim color.
func Dim(text string) string {
	return StyleDim.Render(text)
}

// Bold renders text in bold with the foreground color.
func Bold(text string) string {
	return StyleBold.Render(text)
}
