// Package session implements the attendance session state machine: the
// single component that decides which step the kiosk is in, stages
// pending selections during a task change, keeps elapsed-time
// bookkeeping, and submits transitions to the remote ledger.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mgilsanz/presencia/internal/domain"
	"github.com/mgilsanz/presencia/internal/odoo"
)

const clockLayout = "15:04:05"

// Machine owns one employee's attendance session for the lifetime of a
// login. All mutation happens inside its transition methods; the loading
// flag serializes them, so a second intent issued while a network round
// trip is outstanding is rejected with ErrBusy instead of interleaving.
type Machine struct {
	gateway  Gateway
	location Locator
	recorder Recorder
	identity domain.Identity
	clock    func() time.Time
	logf     func(format string, args ...any)

	mu      sync.Mutex
	step    domain.Step
	loading bool

	selection      *domain.Selection
	pendingProject *domain.Project
	pendingTask    *domain.Task
	lastSelection  *domain.Selection

	observations string
	progress     *int

	checkInTimestamp time.Time
	currentTaskStart time.Time
	timerStart       time.Time

	checkInTime  string
	checkOutTime string
	workedHours  string
	fullTime     string
}

// New creates a Machine at the welcome step.
func New(deps Deps) *Machine {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logf := deps.Logf
	if logf == nil {
		logf = func(string, ...any) {}
	}
	return &Machine{
		gateway:  deps.Gateway,
		location: deps.Location,
		recorder: deps.Recorder,
		identity: deps.Identity,
		clock:    clock,
		logf:     logf,
		step:     domain.StepWelcome,
	}
}

// Identity returns the employee this session belongs to.
func (m *Machine) Identity() domain.Identity { return m.identity }

// ── selection and input capture ─────────────────────────────────────────────

// SetSelection stages the committed project/task pair. Only meaningful
// at the welcome step; ignored elsewhere so a late UI event cannot
// corrupt an active session.
func (m *Machine) SetSelection(sel domain.Selection) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.step != domain.StepWelcome || m.loading {
		return
	}
	if sel.Complete() {
		s := sel
		m.selection = &s
	}
}

// ClearSelection drops the committed selection (both halves at once).
func (m *Machine) ClearSelection() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.step != domain.StepWelcome || m.loading {
		return
	}
	m.selection = nil
}

// SetPendingProject stages a tentative project during a task change.
// Picking a different project invalidates any staged task, since tasks
// belong to their project.
func (m *Machine) SetPendingProject(p domain.Project) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.step != domain.StepChangingTask || m.loading {
		return
	}
	if m.pendingProject == nil || m.pendingProject.ID != p.ID {
		m.pendingTask = nil
	}
	proj := p
	m.pendingProject = &proj
}

// SetPendingTask stages a tentative task during a task change. Ignored
// until a pending project is staged.
func (m *Machine) SetPendingTask(t domain.Task) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.step != domain.StepChangingTask || m.loading || m.pendingProject == nil {
		return
	}
	task := t
	m.pendingTask = &task
}

// SetObservations replaces the free-text work description. Never
// trimmed; the user's text is sent as typed.
func (m *Machine) SetObservations(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observations = text
}

// SetProgressInput sanitizes and stores the progress field: non-digit
// runes are stripped, an empty result maps to unset (never zero), and
// values clamp to 100.
func (m *Machine) SetProgressInput(input string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.progress = parseProgressInput(input)
}

// ── transitions ─────────────────────────────────────────────────────────────

// CheckIn opens the session's first attendance interval.
func (m *Machine) CheckIn(ctx context.Context) error {
	m.mu.Lock()
	if m.loading {
		m.mu.Unlock()
		return ErrBusy
	}
	if m.step != domain.StepWelcome {
		m.mu.Unlock()
		return ErrWrongStep
	}
	if m.selection == nil || !m.selection.Complete() {
		m.mu.Unlock()
		return ErrSelectionRequired
	}
	sel := *m.selection
	obs, prog := m.observations, m.progress
	m.loading = true
	m.mu.Unlock()
	defer m.clearLoading()

	coords, err := m.location.AcquireFix(ctx)
	if err != nil {
		return fmt.Errorf("acquiring location: %w", err)
	}

	now := m.clock()
	ev := domain.AttendanceEvent{
		Action:       domain.ActionCheckIn,
		Selection:    sel,
		Observations: obs,
		Quality:      true,
		Progress:     prog,
		Coordinates:  coords,
		At:           now,
	}
	if err := m.gateway.SubmitAttendance(ctx, m.identity, ev); err != nil {
		return err
	}
	m.record(ctx, ev)

	m.mu.Lock()
	m.checkInTimestamp = now
	m.currentTaskStart = now
	m.checkInTime = now.Format(clockLayout)
	m.resetInputsLocked()
	m.transitionLocked(domain.StepCheckedIn, now)
	m.mu.Unlock()
	return nil
}

// AdvanceToCheckout moves to the pre-checkout screen where observations
// and progress are collected. Purely local.
func (m *Machine) AdvanceToCheckout() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loading {
		return ErrBusy
	}
	if m.step != domain.StepCheckedIn {
		return ErrWrongStep
	}
	m.progress = nil
	m.transitionLocked(domain.StepBeforeCheckout, m.clock())
	return nil
}

// CheckOut closes the open attendance interval and computes the worked
// time for the active task.
func (m *Machine) CheckOut(ctx context.Context) error {
	m.mu.Lock()
	if m.loading {
		m.mu.Unlock()
		return ErrBusy
	}
	if m.step != domain.StepBeforeCheckout {
		m.mu.Unlock()
		return ErrWrongStep
	}
	var sel domain.Selection
	if m.selection != nil {
		sel = *m.selection
	}
	obs, prog := m.observations, m.progress
	m.loading = true
	m.mu.Unlock()
	defer m.clearLoading()

	coords, err := m.location.AcquireFix(ctx)
	if err != nil {
		return fmt.Errorf("acquiring location: %w", err)
	}

	now := m.clock()
	ev := domain.AttendanceEvent{
		Action:       domain.ActionCheckOut,
		Selection:    sel,
		Observations: obs,
		Quality:      true,
		Progress:     prog,
		Coordinates:  coords,
		At:           now,
	}
	if err := m.gateway.SubmitAttendance(ctx, m.identity, ev); err != nil {
		return err
	}
	m.record(ctx, ev)

	m.mu.Lock()
	if base := m.elapsedBaseLocked(); !base.IsZero() {
		worked := now.Sub(base)
		m.workedHours = domain.WorkedHours(worked)
		m.fullTime = domain.FullTime(worked)
	}
	m.checkOutTime = now.Format(clockLayout)
	m.currentTaskStart = time.Time{}
	m.resetInputsLocked()
	m.transitionLocked(domain.StepCheckedOut, now)
	m.mu.Unlock()
	return nil
}

// StartTaskChange snapshots the committed selection and opens the
// pending staging area. The snapshot matters: the close-out leg of the
// change must name the task being closed, and the committed selection
// will be overwritten once the change confirms.
func (m *Machine) StartTaskChange() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loading {
		return ErrBusy
	}
	if m.step != domain.StepBeforeCheckout {
		return ErrWrongStep
	}
	if m.selection != nil {
		last := *m.selection
		m.lastSelection = &last
	} else {
		m.lastSelection = nil
	}
	m.pendingProject = nil
	m.pendingTask = nil
	m.transitionLocked(domain.StepChangingTask, m.clock())
	return nil
}

// ConfirmTaskChange executes the two-leg change: close the previous
// task's interval, then open one for the staged selection. The step
// never advances until both legs succeed; a failed second leg leaves
// the machine at changing_task with the staging intact so the user can
// retry the confirm, rather than stranding the ledger with no open
// interval while the kiosk claims checked_in.
func (m *Machine) ConfirmTaskChange(ctx context.Context) error {
	m.mu.Lock()
	if m.loading {
		m.mu.Unlock()
		return ErrBusy
	}
	if m.step != domain.StepChangingTask {
		m.mu.Unlock()
		return ErrWrongStep
	}
	if m.pendingProject == nil || m.pendingTask == nil {
		m.mu.Unlock()
		return ErrPendingSelectionRequired
	}
	var prev domain.Selection
	if m.lastSelection != nil {
		prev = *m.lastSelection
	}
	next := domain.Selection{Project: *m.pendingProject, Task: *m.pendingTask}
	obs, prog := m.observations, m.progress
	m.loading = true
	m.mu.Unlock()
	defer m.clearLoading()

	coords, err := m.location.AcquireFix(ctx)
	if err != nil {
		return fmt.Errorf("acquiring location: %w", err)
	}

	now := m.clock()
	closeOut := domain.AttendanceEvent{
		Action:       domain.ActionCheckOut,
		Selection:    prev,
		Observations: obs,
		Quality:      true,
		Progress:     prog,
		Coordinates:  coords,
		At:           now,
	}
	if err := m.gateway.SubmitAttendance(ctx, m.identity, closeOut); err != nil {
		if errors.Is(err, odoo.ErrNoOpenRecord) {
			// Recoverable: the ledger has nothing to close, so the
			// session was never really open. Fall back to welcome.
			m.mu.Lock()
			m.pendingProject = nil
			m.pendingTask = nil
			m.currentTaskStart = time.Time{}
			m.transitionLocked(domain.StepWelcome, now)
			m.mu.Unlock()
			return fmt.Errorf("check in before changing task: %w", err)
		}
		return err
	}
	m.record(ctx, closeOut)

	openNew := domain.AttendanceEvent{
		Action:       domain.ActionCheckIn,
		Selection:    next,
		Observations: obs,
		Quality:      true,
		Progress:     prog,
		Coordinates:  coords,
		At:           now,
	}
	if err := m.gateway.SubmitAttendance(ctx, m.identity, openNew); err != nil {
		return fmt.Errorf("previous task closed but the new record failed, retry the change: %w", err)
	}
	m.record(ctx, openNew)

	m.mu.Lock()
	m.selection = &next
	m.pendingProject = nil
	m.pendingTask = nil
	m.lastSelection = nil
	m.currentTaskStart = now
	m.resetInputsLocked()
	m.transitionLocked(domain.StepCheckedIn, now)
	m.mu.Unlock()
	return nil
}

// CancelTaskChange abandons the staged selection. A no-op outside
// changing_task, so repeated cancels are harmless.
func (m *Machine) CancelTaskChange() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loading {
		return ErrBusy
	}
	if m.step != domain.StepChangingTask {
		return nil
	}
	m.pendingProject = nil
	m.pendingTask = nil
	m.lastSelection = nil
	m.transitionLocked(domain.StepBeforeCheckout, m.clock())
	return nil
}

// Restart returns the kiosk to the welcome screen for the next shift,
// dropping everything the finished session displayed.
func (m *Machine) Restart() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loading {
		return ErrBusy
	}
	if m.step != domain.StepCheckedOut {
		return ErrWrongStep
	}
	m.selection = nil
	m.observations = ""
	m.progress = nil
	m.checkInTimestamp = time.Time{}
	m.currentTaskStart = time.Time{}
	m.checkInTime = ""
	m.checkOutTime = ""
	m.workedHours = ""
	m.fullTime = ""
	m.transitionLocked(domain.StepWelcome, m.clock())
	return nil
}

// ── internals ───────────────────────────────────────────────────────────────

// transitionLocked advances step and keeps the timer origin in sync:
// the counter runs only inside {checked_in, before_checkout} and resets
// when those states are left.
func (m *Machine) transitionLocked(to domain.Step, now time.Time) {
	switch {
	case to.TimerRunning() && !m.step.TimerRunning():
		m.timerStart = now
	case !to.TimerRunning():
		m.timerStart = time.Time{}
	}
	m.step = to
}

// elapsedBaseLocked picks the timestamp a worked interval is measured
// from: the current task's start when a task change has set it,
// otherwise the original check-in.
func (m *Machine) elapsedBaseLocked() time.Time {
	if !m.currentTaskStart.IsZero() {
		return m.currentTaskStart
	}
	return m.checkInTimestamp
}

// resetInputsLocked clears observation and progress after a successful
// submission. Failures deliberately keep the typed input.
func (m *Machine) resetInputsLocked() {
	m.observations = ""
	m.progress = nil
}

func (m *Machine) clearLoading() {
	m.mu.Lock()
	m.loading = false
	m.mu.Unlock()
}

func (m *Machine) record(ctx context.Context, ev domain.AttendanceEvent) {
	if m.recorder == nil {
		return
	}
	if err := m.recorder.Record(ctx, ev); err != nil {
		m.logf("punch journal write failed: %v", err)
	}
}
