package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWorkedHours(t *testing.T) {
	assert.Equal(t, "1.50", WorkedHours(90*time.Minute))
	assert.Equal(t, "1.00", WorkedHours(time.Hour))
	assert.Equal(t, "0.25", WorkedHours(15*time.Minute))
	assert.Equal(t, "0.00", WorkedHours(0))
}

func TestFullTime(t *testing.T) {
	assert.Equal(t, "1 h 30 min", FullTime(90*time.Minute))
	assert.Equal(t, "0 h 45 min", FullTime(45*time.Minute))
	assert.Equal(t, "2 h 0 min", FullTime(2*time.Hour))
	// Sub-minute remainders truncate rather than round.
	assert.Equal(t, "0 h 1 min", FullTime(119*time.Second))
}

func TestClockFormat(t *testing.T) {
	assert.Equal(t, "00:00:00", ClockFormat(0))
	assert.Equal(t, "00:00:59", ClockFormat(59))
	assert.Equal(t, "01:30:05", ClockFormat(5405))
	assert.Equal(t, "10:00:00", ClockFormat(36000))
}

func TestStepValid(t *testing.T) {
	for _, s := range []Step{StepWelcome, StepCheckedIn, StepBeforeCheckout, StepChangingTask, StepCheckedOut} {
		assert.True(t, s.Valid(), string(s))
	}
	assert.False(t, Step("").Valid())
	assert.False(t, Step("paused").Valid())
}

func TestSelectionComplete(t *testing.T) {
	var empty Selection
	assert.False(t, empty.Complete())
	assert.Equal(t, "(none)", empty.String())

	sel := Selection{
		Project: Project{ID: 7, Label: "Interna"},
		Task:    Task{ID: 31, Label: "Soporte"},
	}
	assert.True(t, sel.Complete())
	assert.Equal(t, "Interna / Soporte", sel.String())
}
