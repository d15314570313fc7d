package domain

import "fmt"

// Project is an assignable project as reported by the ERP.
type Project struct {
	ID    int64
	Label string
}

// Task is an activity within a project. Stage carries the remote
// stage/status label when the ERP provides one.
type Task struct {
	ID    int64
	Label string
	Stage string
}

// Selection is a project/task pair. A task is only meaningful together
// with its parent project, so the two travel as one value: a Selection is
// either complete or absent, never half-set.
type Selection struct {
	Project Project
	Task    Task
}

// Complete reports whether both halves of the selection are set.
func (s Selection) Complete() bool {
	return s.Project.ID != 0 && s.Task.ID != 0
}

// String renders the selection for display and logs.
func (s Selection) String() string {
	if !s.Complete() {
		return "(none)"
	}
	return fmt.Sprintf("%s / %s", s.Project.Label, s.Task.Label)
}
