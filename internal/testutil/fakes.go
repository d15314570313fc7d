// Package testutil provides fakes for the session machine's ports.
package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/mgilsanz/presencia/internal/domain"
)

// FakeGateway records submissions and fails on demand via a queued
// error list consumed one submission at a time.
type FakeGateway struct {
	mu     sync.Mutex
	events []domain.AttendanceEvent
	calls  int
	queue  []error
}

// QueueError makes the next submission fail with err. Queue several to
// script multi-leg scenarios.
func (g *FakeGateway) QueueError(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.queue = append(g.queue, err)
}

func (g *FakeGateway) SubmitAttendance(_ context.Context, _ domain.Identity, ev domain.AttendanceEvent) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if len(g.queue) > 0 {
		err := g.queue[0]
		g.queue = g.queue[1:]
		if err != nil {
			return err
		}
	}
	g.events = append(g.events, ev)
	return nil
}

// Events returns the successfully accepted submissions, in order.
func (g *FakeGateway) Events() []domain.AttendanceEvent {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]domain.AttendanceEvent(nil), g.events...)
}

// Calls returns the number of submission attempts, including failures.
func (g *FakeGateway) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

// FakeLocator returns fixed coordinates, or Err when set.
type FakeLocator struct {
	mu     sync.Mutex
	Coords domain.Coordinates
	Err    error
	calls  int
}

func (l *FakeLocator) AcquireFix(context.Context) (domain.Coordinates, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	if l.Err != nil {
		return domain.Coordinates{}, l.Err
	}
	return l.Coords, nil
}

// Calls returns how many fresh fixes were requested.
func (l *FakeLocator) Calls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

// SetErr changes the scripted failure for subsequent acquisitions.
func (l *FakeLocator) SetErr(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Err = err
}

// FakeClock is a manually advanced clock.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// FakeRecorder captures journaled events; Err makes every write fail.
type FakeRecorder struct {
	mu     sync.Mutex
	events []domain.AttendanceEvent
	Err    error
}

func (r *FakeRecorder) Record(_ context.Context, ev domain.AttendanceEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.events = append(r.events, ev)
	return nil
}

func (r *FakeRecorder) Events() []domain.AttendanceEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.AttendanceEvent(nil), r.events...)
}
