package cli

import (
	"fmt"
	"strings"

	"github.com/mgilsanz/presencia/internal/cli/formatter"
	"github.com/mgilsanz/presencia/internal/domain"
	"github.com/mgilsanz/presencia/internal/session"
)

func (m kioskModel) View() string {
	if m.quitting {
		return ""
	}

	snap := m.snapshot()
	var sections []string

	sections = append(sections, m.renderHeader(snap))

	switch {
	case m.busy || snap.Loading:
		sections = append(sections, fmt.Sprintf("\n  %s %s", m.spin.View(), formatter.Dim("contacting server…")))
	case m.form != nil:
		sections = append(sections, m.form.View())
	default:
		sections = append(sections, m.renderStep(snap))
	}

	if m.errText != "" {
		sections = append(sections, "\n  "+formatter.StyleRed.Render(m.errText))
	}

	sections = append(sections, m.renderStatusBar(snap))

	result := strings.Join(sections, "\n")

	// Pad to terminal height to prevent stale line artifacts from
	// bubbletea's line-diff renderer in alt-screen mode.
	if m.height > 0 {
		lines := strings.Count(result, "\n") + 1
		if lines < m.height {
			result += strings.Repeat("\n", m.height-lines)
		}
	}
	return result
}

func (m kioskModel) renderHeader(snap session.Snapshot) string {
	title := formatter.StylePurple.Render("presencia")
	header := title + "  " + formatter.StepIndicator(snap.Step)
	if m.machine != nil {
		if name := m.machine.Identity().Name; name != "" {
			header += "  " + formatter.Dim("["+name+"]")
		}
	}
	sep := formatter.Dim(strings.Repeat("─", max(m.width, 20)))
	return header + "\n" + sep
}

func (m kioskModel) renderStep(snap session.Snapshot) string {
	switch snap.Step {
	case domain.StepWelcome:
		return renderWelcome(snap)
	case domain.StepCheckedIn:
		return renderCheckedIn(snap)
	case domain.StepBeforeCheckout:
		return renderBeforeCheckout(snap)
	case domain.StepChangingTask:
		return renderChangingTask(snap)
	case domain.StepCheckedOut:
		return renderCheckedOut(snap)
	}
	return ""
}

func renderWelcome(snap session.Snapshot) string {
	var b strings.Builder
	b.WriteString("\n  " + formatter.Header("Welcome") + "\n\n")
	if snap.Selection != nil {
		b.WriteString("  " + formatter.Bold(snap.Selection.Project.Label) + formatter.Dim(" / ") + formatter.Bold(snap.Selection.Task.Label) + "\n")
		b.WriteString("\n  " + formatter.Dim("ready to check in") + "\n")
	} else {
		b.WriteString("  " + formatter.Dim("pick a project and task to start the day") + "\n")
	}
	if snap.Observations != "" {
		b.WriteString("\n  " + formatter.Dim("observations: ") + snap.Observations + "\n")
	}
	return b.String()
}

func renderCheckedIn(snap session.Snapshot) string {
	var b strings.Builder
	b.WriteString("\n  " + formatter.Header("Working") + "\n\n")
	b.WriteString("  " + renderTimer(snap.Timer) + "\n\n")
	if snap.Selection != nil {
		b.WriteString("  " + formatter.Bold(snap.Selection.Project.Label) + formatter.Dim(" / ") + formatter.Bold(snap.Selection.Task.Label) + "\n")
	}
	b.WriteString("  " + formatter.Dim("checked in at ") + snap.CheckInTime + "\n")
	return b.String()
}

func renderBeforeCheckout(snap session.Snapshot) string {
	var b strings.Builder
	b.WriteString("\n  " + formatter.Header("Wrapping up") + "\n\n")
	b.WriteString("  " + renderTimer(snap.Timer) + "\n\n")
	if snap.Selection != nil {
		b.WriteString("  " + formatter.Bold(snap.Selection.Project.Label) + formatter.Dim(" / ") + formatter.Bold(snap.Selection.Task.Label) + "\n")
	}
	obs := snap.Observations
	if obs == "" {
		obs = formatter.Dim("none")
	}
	b.WriteString("  " + formatter.Dim("observations: ") + obs + "\n")
	progress := formatter.Dim("not set")
	if snap.Progress != nil {
		progress = fmt.Sprintf("%d%%", *snap.Progress)
	}
	b.WriteString("  " + formatter.Dim("progress: ") + progress + "\n")
	return b.String()
}

func renderChangingTask(snap session.Snapshot) string {
	var b strings.Builder
	b.WriteString("\n  " + formatter.Header("Changing task") + "\n\n")
	if snap.LastSelection != nil {
		b.WriteString("  " + formatter.Dim("closing: ") + snap.LastSelection.Project.Label + formatter.Dim(" / ") + snap.LastSelection.Task.Label + "\n")
	}
	switch {
	case snap.PendingProject != nil && snap.PendingTask != nil:
		b.WriteString("  " + formatter.Dim("opening: ") + formatter.StyleGreen.Render(snap.PendingProject.Label) + formatter.Dim(" / ") + formatter.StyleGreen.Render(snap.PendingTask.Label) + "\n")
		b.WriteString("\n  " + formatter.Dim("confirm to switch") + "\n")
	case snap.PendingProject != nil:
		b.WriteString("  " + formatter.Dim("opening: ") + snap.PendingProject.Label + formatter.Dim(" / …") + "\n")
	default:
		b.WriteString("\n  " + formatter.Dim("pick the new project and task") + "\n")
	}
	return b.String()
}

func renderCheckedOut(snap session.Snapshot) string {
	var b strings.Builder
	b.WriteString("\n  " + formatter.Header("Done for now") + "\n\n")
	if snap.Selection != nil {
		b.WriteString("  " + formatter.Bold(snap.Selection.Project.Label) + formatter.Dim(" / ") + formatter.Bold(snap.Selection.Task.Label) + "\n\n")
	}
	b.WriteString("  " + formatter.Dim("in ") + snap.CheckInTime + formatter.Dim("  out ") + snap.CheckOutTime + "\n")
	if snap.WorkedHours != "" {
		b.WriteString("  " + formatter.Dim("worked ") + formatter.StyleGreen.Render(snap.WorkedHours+" h") + formatter.Dim(" (") + snap.FullTime + formatter.Dim(")") + "\n")
	}
	return b.String()
}

func renderTimer(timer string) string {
	return formatter.StyleHeader.Render(timer)
}

func (m kioskModel) renderStatusBar(snap session.Snapshot) string {
	var hints []string

	switch {
	case m.busy || snap.Loading:
		hints = append(hints, formatter.Dim("working…"))
	case m.form != nil:
		hints = append(hints, formatter.Dim("enter: accept"), formatter.Dim("ctrl+c: quit"))
	default:
		switch snap.Step {
		case domain.StepWelcome:
			hints = append(hints, formatter.Dim("s: select task"), formatter.Dim("o: observations"))
			if snap.Selection != nil {
				hints = append(hints, formatter.Dim("enter: check in"))
			}
			hints = append(hints, formatter.Dim("q: quit"))
		case domain.StepCheckedIn:
			hints = append(hints, formatter.Dim("enter: finish or change task"))
		case domain.StepBeforeCheckout:
			hints = append(hints,
				formatter.Dim("enter: check out"),
				formatter.Dim("t: change task"),
				formatter.Dim("o: observations"),
				formatter.Dim("p: progress"))
		case domain.StepChangingTask:
			hints = append(hints, formatter.Dim("s: select"), formatter.Dim("enter: confirm"), formatter.Dim("esc: cancel"))
		case domain.StepCheckedOut:
			hints = append(hints, formatter.Dim("enter: new session"), formatter.Dim("q: quit"))
		}
	}

	bar := strings.Join(hints, "  ")
	sep := formatter.Dim(strings.Repeat("─", max(m.width, 20)))
	return sep + "\n" + bar
}
