package domain

import "time"

// AttendanceAction distinguishes the two kinds of attendance submissions.
type AttendanceAction string

const (
	ActionCheckIn  AttendanceAction = "check_in"
	ActionCheckOut AttendanceAction = "check_out"
)

// Coordinates is a GPS fix captured immediately before a submission.
type Coordinates struct {
	Latitude  float64
	Longitude float64
	Accuracy  *float64
}

// Identity is the authenticated ERP user on whose behalf events are
// submitted.
type Identity struct {
	UID      int64
	Login    string
	Password string
	Name     string
}

// AttendanceEvent is the payload of a single attendance submission.
// Progress is nil when the user left the progress field unset.
type AttendanceEvent struct {
	Action       AttendanceAction
	Selection    Selection
	Observations string
	Quality      bool
	Progress     *int
	Coordinates  Coordinates
	At           time.Time
}
