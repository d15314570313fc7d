package cli

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgilsanz/presencia/internal/domain"
	"github.com/mgilsanz/presencia/internal/session"
	"github.com/mgilsanz/presencia/internal/testutil"
)

var (
	testProjects = []domain.Project{
		{ID: 3, Label: "Obra Norte"},
		{ID: 9, Label: "Interna"},
	}
	testTasks = []domain.Task{
		{ID: 21, Label: "Replanteo", Stage: "In Progress"},
		{ID: 31, Label: "Soporte"},
	}
)

func testModel(t *testing.T) (kioskModel, *testutil.FakeGateway) {
	t.Helper()
	gw := &testutil.FakeGateway{}
	loc := &testutil.FakeLocator{Coords: domain.Coordinates{Latitude: 40.4168, Longitude: -3.7038}}
	clock := testutil.NewFakeClock(time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC))

	m := newKioskModel(&App{})
	m.closeForm()
	m.machine = session.New(session.Deps{
		Gateway:  gw,
		Location: loc,
		Identity: domain.Identity{UID: 7, Login: "ana", Name: "Ana"},
		Clock:    clock.Now,
	})
	return m, gw
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

// runTransition dispatches a key, executes the returned command, and
// feeds the resulting message back, mirroring the bubbletea loop.
func runTransition(t *testing.T, m kioskModel, key string) kioskModel {
	t.Helper()
	updated, cmd := m.handleKey(keyMsg(key))
	require.NotNil(t, cmd)
	next, _ := updated.(kioskModel).Update(cmd())
	return next.(kioskModel)
}

func TestNewKioskModel_StartsAtLogin(t *testing.T) {
	m := newKioskModel(&App{})
	assert.Equal(t, formLogin, m.formKind)
	require.NotNil(t, m.form)
}

func TestHandleProjects_OpensSelectForm(t *testing.T) {
	m, _ := testModel(t)
	updated, _ := m.handleProjects(projectsMsg{projects: testProjects})
	mm := updated.(kioskModel)
	assert.Equal(t, formProject, mm.formKind)
	assert.Empty(t, mm.errText)
}

func TestHandleProjects_EmptyListShowsError(t *testing.T) {
	m, _ := testModel(t)
	updated, _ := m.handleProjects(projectsMsg{})
	mm := updated.(kioskModel)
	assert.Nil(t, mm.form)
	assert.Contains(t, mm.errText, "no projects")
}

func TestTaskForm_CommitsSelection(t *testing.T) {
	m, _ := testModel(t)
	m.projects = testProjects
	m.tasks = testTasks
	m.projectID = 3
	m.taskID = 21
	m.formKind = formTask
	m.form = selectTaskForm(m.tasks, &m.taskID)

	updated, _ := m.handleFormDone()
	mm := updated.(kioskModel)

	snap := mm.machine.Snapshot()
	require.NotNil(t, snap.Selection)
	assert.Equal(t, int64(3), snap.Selection.Project.ID)
	assert.Equal(t, "Replanteo", snap.Selection.Task.Label)
}

func TestWelcome_EnterChecksIn(t *testing.T) {
	m, gw := testModel(t)
	m.machine.SetSelection(domain.Selection{Project: testProjects[0], Task: testTasks[0]})

	mm := runTransition(t, m, "enter")

	assert.Equal(t, domain.StepCheckedIn, mm.snapshot().Step)
	assert.Empty(t, mm.errText)
	assert.Len(t, gw.Events(), 1)
}

func TestWelcome_EnterWithoutSelectionShowsError(t *testing.T) {
	m, gw := testModel(t)

	mm := runTransition(t, m, "enter")

	assert.Equal(t, domain.StepWelcome, mm.snapshot().Step)
	assert.NotEmpty(t, mm.errText)
	assert.Equal(t, 0, gw.Calls())
}

func TestChangingTask_EscCancels(t *testing.T) {
	m, _ := testModel(t)
	m.machine.SetSelection(domain.Selection{Project: testProjects[0], Task: testTasks[0]})
	require.NoError(t, m.machine.CheckIn(context.Background()))
	require.NoError(t, m.machine.AdvanceToCheckout())
	require.NoError(t, m.machine.StartTaskChange())

	mm := runTransition(t, m, "esc")
	assert.Equal(t, domain.StepBeforeCheckout, mm.snapshot().Step)
}

func TestChangingTask_ConfirmWithoutPendingShowsError(t *testing.T) {
	m, _ := testModel(t)
	m.machine.SetSelection(domain.Selection{Project: testProjects[0], Task: testTasks[0]})
	require.NoError(t, m.machine.CheckIn(context.Background()))
	require.NoError(t, m.machine.AdvanceToCheckout())
	require.NoError(t, m.machine.StartTaskChange())

	mm := runTransition(t, m, "enter")
	assert.Equal(t, domain.StepChangingTask, mm.snapshot().Step)
	assert.NotEmpty(t, mm.errText)
}

func TestProjectForm_StagesPendingDuringChange(t *testing.T) {
	m, _ := testModel(t)
	m.machine.SetSelection(domain.Selection{Project: testProjects[0], Task: testTasks[0]})
	require.NoError(t, m.machine.CheckIn(context.Background()))
	require.NoError(t, m.machine.AdvanceToCheckout())
	require.NoError(t, m.machine.StartTaskChange())

	m.projects = testProjects
	m.projectID = 9
	m.formKind = formProject
	m.form = selectProjectForm(m.projects, &m.projectID)
	updated, _ := m.handleFormDone()
	mm := updated.(kioskModel)

	snap := mm.snapshot()
	require.NotNil(t, snap.PendingProject)
	assert.Equal(t, int64(9), snap.PendingProject.ID)
}

func TestView_CheckedOutShowsWorkedTime(t *testing.T) {
	m, _ := testModel(t)
	clock := testutil.NewFakeClock(time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC))
	m.machine = session.New(session.Deps{
		Gateway:  &testutil.FakeGateway{},
		Location: &testutil.FakeLocator{},
		Identity: domain.Identity{UID: 7},
		Clock:    clock.Now,
	})
	m.machine.SetSelection(domain.Selection{Project: testProjects[0], Task: testTasks[0]})
	require.NoError(t, m.machine.CheckIn(context.Background()))
	require.NoError(t, m.machine.AdvanceToCheckout())
	clock.Advance(90 * time.Minute)
	require.NoError(t, m.machine.CheckOut(context.Background()))

	view := m.View()
	assert.True(t, strings.Contains(view, "1.50"), "view should show worked hours")
	assert.True(t, strings.Contains(view, "1 h 30 min"), "view should show the long form")
}

func TestView_TimerVisibleWhileWorking(t *testing.T) {
	m, _ := testModel(t)
	m.machine.SetSelection(domain.Selection{Project: testProjects[0], Task: testTasks[0]})
	require.NoError(t, m.machine.CheckIn(context.Background()))

	view := m.View()
	assert.True(t, strings.Contains(view, "00:00:00"), "timer starts at zero")
	assert.True(t, strings.Contains(view, "Obra Norte"))
}
