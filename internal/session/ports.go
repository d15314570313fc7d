package session

import (
	"context"
	"time"

	"github.com/mgilsanz/presencia/internal/domain"
)

// Gateway is the remote attendance ledger. Implementations submit one
// event synchronously and report the outcome; the machine never sees
// transport details beyond the error taxonomy.
type Gateway interface {
	SubmitAttendance(ctx context.Context, id domain.Identity, ev domain.AttendanceEvent) error
}

// Locator acquires a fresh GPS fix. Called immediately before every
// submission; results are never cached across transitions.
type Locator interface {
	AcquireFix(ctx context.Context) (domain.Coordinates, error)
}

// Recorder receives acknowledged events for the local punch journal.
// Recording is best-effort: a journal failure never fails a transition.
type Recorder interface {
	Record(ctx context.Context, ev domain.AttendanceEvent) error
}

// Deps bundles the collaborators a Machine needs. Gateway, Location and
// Identity are required; Clock defaults to time.Now, Recorder and Logf
// are optional.
type Deps struct {
	Gateway  Gateway
	Location Locator
	Identity domain.Identity
	Clock    func() time.Time
	Recorder Recorder
	Logf     func(format string, args ...any)
}
