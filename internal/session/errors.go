package session

import "errors"

var (
	// ErrBusy indicates a transition is already in flight; the intent
	// was rejected before touching any state.
	ErrBusy = errors.New("a submission is already in progress")

	// ErrWrongStep indicates the intent is not valid in the current
	// step.
	ErrWrongStep = errors.New("intent not valid in current step")

	// ErrSelectionRequired indicates check-in was attempted without a
	// complete project/task selection.
	ErrSelectionRequired = errors.New("select a project and task first")

	// ErrPendingSelectionRequired indicates a task-change confirm was
	// attempted before both pending fields were staged. Refused
	// client-side; no remote call is made.
	ErrPendingSelectionRequired = errors.New("select the new project and task first")
)
