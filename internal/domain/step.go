package domain

// Step is the current phase of the attendance session.
type Step string

const (
	StepWelcome        Step = "welcome"
	StepCheckedIn      Step = "checked_in"
	StepBeforeCheckout Step = "before_checkout"
	StepChangingTask   Step = "changing_task"
	StepCheckedOut     Step = "checked_out"
)

// Valid reports whether s is one of the five known steps.
func (s Step) Valid() bool {
	switch s {
	case StepWelcome, StepCheckedIn, StepBeforeCheckout, StepChangingTask, StepCheckedOut:
		return true
	}
	return false
}

// TimerRunning reports whether the elapsed-time counter ticks in this step.
func (s Step) TimerRunning() bool {
	return s == StepCheckedIn || s == StepBeforeCheckout
}
