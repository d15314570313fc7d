package cli

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/mgilsanz/presencia/internal/cli/formatter"
	"github.com/mgilsanz/presencia/internal/domain"
	"github.com/mgilsanz/presencia/internal/location"
	"github.com/mgilsanz/presencia/internal/session"
)

// formKind identifies which modal form is currently on screen.
type formKind int

const (
	formNone formKind = iota
	formLogin
	formProject
	formTask
	formObservations
	formProgress
)

// kioskModel is the root bubbletea Model for the kiosk. The session
// machine owns all attendance state; the model only renders snapshots
// and translates key presses and form results into machine intents.
type kioskModel struct {
	app     *App
	machine *session.Machine

	width  int
	height int

	spin spinner.Model
	busy bool // a fetch (auth, projects, tasks) is in flight

	form     *huh.Form
	formKind formKind

	loginUser string
	loginPass string

	projects  []domain.Project
	tasks     []domain.Task
	projectID int64
	taskID    int64
	obsInput  string
	progInput string

	errText  string
	quitting bool
}

// ── messages ────────────────────────────────────────────────────────────────

type authResultMsg struct {
	identity domain.Identity
	err      error
}

type projectsMsg struct {
	projects []domain.Project
	err      error
}

type tasksMsg struct {
	tasks []domain.Task
	err   error
}

type transitionMsg struct {
	err error
}

type tickMsg time.Time

func newKioskModel(app *App) kioskModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(formatter.ColorHeader)

	m := kioskModel{
		app:  app,
		spin: sp,
	}
	m.openForm(formLogin)
	return m
}

// openForm builds and activates the requested modal form.
func (m *kioskModel) openForm(kind formKind) {
	switch kind {
	case formLogin:
		m.loginPass = ""
		m.form = loginForm(&m.loginUser, &m.loginPass)
	case formProject:
		m.form = selectProjectForm(m.projects, &m.projectID)
	case formTask:
		m.form = selectTaskForm(m.tasks, &m.taskID)
	case formObservations:
		m.obsInput = m.snapshot().Observations
		m.form = observationsForm(&m.obsInput)
	case formProgress:
		m.progInput = ""
		m.form = progressForm(&m.progInput)
	default:
		m.form = nil
		m.formKind = formNone
		return
	}
	m.formKind = kind
}

func (m *kioskModel) closeForm() {
	m.form = nil
	m.formKind = formNone
}

// snapshot returns the machine state, or a zero welcome snapshot before
// login.
func (m *kioskModel) snapshot() session.Snapshot {
	if m.machine == nil {
		return session.Snapshot{Step: domain.StepWelcome}
	}
	return m.machine.Snapshot()
}

// ── commands ────────────────────────────────────────────────────────────────

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m kioskModel) authenticateCmd() tea.Cmd {
	user, pass := m.loginUser, m.loginPass
	return func() tea.Msg {
		identity, err := m.app.Client.Authenticate(context.Background(), user, pass)
		return authResultMsg{identity: identity, err: err}
	}
}

func (m kioskModel) loadProjectsCmd() tea.Cmd {
	identity := m.machine.Identity()
	return func() tea.Msg {
		projects, err := m.app.Client.FetchAssignedProjects(context.Background(), identity)
		return projectsMsg{projects: projects, err: err}
	}
}

func (m kioskModel) loadTasksCmd(projectID int64) tea.Cmd {
	identity := m.machine.Identity()
	return func() tea.Msg {
		tasks, err := m.app.Client.FetchProjectActivities(context.Background(), identity, projectID)
		return tasksMsg{tasks: tasks, err: err}
	}
}

// transitionCmd runs a blocking machine intent off the UI loop. The
// machine's loading flag rejects anything issued while it runs.
func transitionCmd(fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return transitionMsg{err: fn(context.Background())}
	}
}

// ── bubbletea interface ─────────────────────────────────────────────────────

func (m kioskModel) Init() tea.Cmd {
	return tea.Batch(m.form.Init(), m.spin.Tick, tickCmd())
}

func (m kioskModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		// The view re-reads the machine snapshot every render, so the
		// tick only needs to trigger a redraw and re-arm itself.
		return m, tickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case authResultMsg:
		return m.handleAuthResult(msg)

	case projectsMsg:
		return m.handleProjects(msg)

	case tasksMsg:
		return m.handleTasks(msg)

	case transitionMsg:
		if msg.err != nil {
			m.errText = transitionErrorText(msg.err)
		} else {
			m.errText = ""
		}
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.quitting = true
			return m, tea.Quit
		}
		if m.form != nil {
			return m.updateForm(msg)
		}
		return m.handleKey(msg)
	}

	if m.form != nil {
		return m.updateForm(msg)
	}
	return m, nil
}

func (m kioskModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	updated, cmd := m.form.Update(msg)
	if f, ok := updated.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		return m.handleFormDone()
	case huh.StateAborted:
		return m.handleFormAborted()
	}
	return m, cmd
}

// handleFormDone commits a completed form to the machine and decides
// what comes next.
func (m kioskModel) handleFormDone() (tea.Model, tea.Cmd) {
	kind := m.formKind
	m.closeForm()

	switch kind {
	case formLogin:
		m.busy = true
		m.errText = ""
		return m, tea.Batch(m.authenticateCmd(), m.spin.Tick)

	case formProject:
		if m.snapshot().Step == domain.StepChangingTask {
			if p := m.projectByID(m.projectID); p != nil {
				m.machine.SetPendingProject(*p)
			}
		}
		m.busy = true
		return m, tea.Batch(m.loadTasksCmd(m.projectID), m.spin.Tick)

	case formTask:
		task := m.taskByID(m.taskID)
		project := m.projectByID(m.projectID)
		if task == nil || project == nil {
			return m, nil
		}
		if m.snapshot().Step == domain.StepChangingTask {
			m.machine.SetPendingTask(*task)
		} else {
			m.machine.SetSelection(domain.Selection{Project: *project, Task: *task})
		}
		return m, nil

	case formObservations:
		m.machine.SetObservations(m.obsInput)
		return m, nil

	case formProgress:
		m.machine.SetProgressInput(m.progInput)
		return m, nil
	}
	return m, nil
}

func (m kioskModel) handleFormAborted() (tea.Model, tea.Cmd) {
	kind := m.formKind
	m.closeForm()
	if kind == formLogin {
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m kioskModel) handleAuthResult(msg authResultMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	if msg.err != nil {
		m.errText = msg.err.Error()
		m.openForm(formLogin)
		return m, m.form.Init()
	}

	m.errText = ""
	var recorder session.Recorder
	if m.app.Journal != nil {
		recorder = m.app.Journal.Bind(msg.identity.UID)
	}
	m.machine = session.New(session.Deps{
		Gateway:  m.app.Client,
		Location: m.app.Gate,
		Identity: msg.identity,
		Recorder: recorder,
	})

	m.busy = true
	return m, tea.Batch(m.loadProjectsCmd(), m.spin.Tick)
}

func (m kioskModel) handleProjects(msg projectsMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	if msg.err != nil {
		m.errText = msg.err.Error()
		return m, nil
	}
	m.errText = ""
	m.projects = msg.projects
	if len(m.projects) == 0 {
		m.errText = "no projects assigned to this employee"
		return m, nil
	}
	m.openForm(formProject)
	return m, m.form.Init()
}

func (m kioskModel) handleTasks(msg tasksMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	if msg.err != nil {
		m.errText = msg.err.Error()
		return m, nil
	}
	m.errText = ""
	m.tasks = msg.tasks
	if len(m.tasks) == 0 {
		m.errText = "the selected project has no tasks"
		return m, nil
	}
	m.openForm(formTask)
	return m, m.form.Init()
}

// handleKey routes bare key presses by session step.
func (m kioskModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.machine == nil || m.busy {
		return m, nil
	}
	snap := m.snapshot()
	key := msg.String()

	switch snap.Step {
	case domain.StepWelcome:
		switch key {
		case "q":
			m.quitting = true
			return m, tea.Quit
		case "s":
			m.busy = true
			return m, tea.Batch(m.loadProjectsCmd(), m.spin.Tick)
		case "o":
			m.openForm(formObservations)
			return m, m.form.Init()
		case "enter":
			return m, transitionCmd(m.machine.CheckIn)
		}

	case domain.StepCheckedIn:
		if key == "enter" {
			return m, transitionCmd(func(context.Context) error {
				return m.machine.AdvanceToCheckout()
			})
		}

	case domain.StepBeforeCheckout:
		switch key {
		case "o":
			m.openForm(formObservations)
			return m, m.form.Init()
		case "p":
			m.openForm(formProgress)
			return m, m.form.Init()
		case "t":
			if err := m.machine.StartTaskChange(); err != nil {
				m.errText = err.Error()
				return m, nil
			}
			m.busy = true
			return m, tea.Batch(m.loadProjectsCmd(), m.spin.Tick)
		case "enter":
			return m, transitionCmd(m.machine.CheckOut)
		}

	case domain.StepChangingTask:
		switch key {
		case "s":
			m.busy = true
			return m, tea.Batch(m.loadProjectsCmd(), m.spin.Tick)
		case "esc":
			return m, transitionCmd(func(context.Context) error {
				return m.machine.CancelTaskChange()
			})
		case "enter":
			return m, transitionCmd(m.machine.ConfirmTaskChange)
		}

	case domain.StepCheckedOut:
		switch key {
		case "q":
			m.quitting = true
			return m, tea.Quit
		case "enter":
			return m, transitionCmd(func(context.Context) error {
				return m.machine.Restart()
			})
		}
	}

	return m, nil
}

// transitionErrorText prefers the location gate's operator guidance
// over the raw error chain; the kiosk user needs to know what to fix.
func transitionErrorText(err error) string {
	switch {
	case errors.Is(err, location.ErrPermissionDenied),
		errors.Is(err, location.ErrServicesDisabled),
		errors.Is(err, location.ErrTimeout):
		return location.Reason(err)
	}
	return err.Error()
}

func (m *kioskModel) projectByID(id int64) *domain.Project {
	for i := range m.projects {
		if m.projects[i].ID == id {
			return &m.projects[i]
		}
	}
	return nil
}

func (m *kioskModel) taskByID(id int64) *domain.Task {
	for i := range m.tasks {
		if m.tasks[i].ID == id {
			return &m.tasks[i]
		}
	}
	return nil
}
