package session

import (
	"time"

	"github.com/mgilsanz/presencia/internal/domain"
)

// Snapshot is the observable session state consumed by the UI. All
// pointer fields are copies; mutating a snapshot never touches the
// machine.
type Snapshot struct {
	Step           domain.Step
	Selection      *domain.Selection
	PendingProject *domain.Project
	PendingTask    *domain.Task
	LastSelection  *domain.Selection
	Observations   string
	Progress       *int
	Loading        bool
	TimerSeconds   int
	Timer          string
	CheckInTime    string
	CheckOutTime   string
	WorkedHours    string
	FullTime       string
}

// Snapshot captures the current observable state.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	secs := m.timerSecondsLocked(m.clock())
	return Snapshot{
		Step:           m.step,
		Selection:      copySelection(m.selection),
		PendingProject: copyProject(m.pendingProject),
		PendingTask:    copyTask(m.pendingTask),
		LastSelection:  copySelection(m.lastSelection),
		Observations:   m.observations,
		Progress:       copyInt(m.progress),
		Loading:        m.loading,
		TimerSeconds:   secs,
		Timer:          domain.ClockFormat(secs),
		CheckInTime:    m.checkInTime,
		CheckOutTime:   m.checkOutTime,
		WorkedHours:    m.workedHours,
		FullTime:       m.fullTime,
	}
}

// TimerSeconds reports whole seconds since the timer states were
// entered, 0 outside them.
func (m *Machine) TimerSeconds(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.timerSecondsLocked(now)
}

func (m *Machine) timerSecondsLocked(now time.Time) int {
	if m.timerStart.IsZero() || !m.step.TimerRunning() {
		return 0
	}
	secs := int(now.Sub(m.timerStart).Seconds())
	if secs < 0 {
		return 0
	}
	return secs
}

func copySelection(s *domain.Selection) *domain.Selection {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

func copyProject(p *domain.Project) *domain.Project {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

func copyTask(t *domain.Task) *domain.Task {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func copyInt(n *int) *int {
	if n == nil {
		return nil
	}
	c := *n
	return &c
}
