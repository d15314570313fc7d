// Package location provides the GPS precondition gate: every attendance
// submission needs a fresh fix, acquired immediately before the RPC and
// never reused from an earlier attempt.
package location

import (
	"context"
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/mgilsanz/presencia/internal/domain"
)

var (
	// ErrPermissionDenied indicates the host denied location access.
	ErrPermissionDenied = errors.New("location permission denied")

	// ErrServicesDisabled indicates positioning is switched off on the
	// device.
	ErrServicesDisabled = errors.New("location services disabled")

	// ErrTimeout indicates no fix arrived within the acquisition bound.
	ErrTimeout = errors.New("location acquisition timed out")
)

// Provider acquires a single fresh GPS fix.
type Provider interface {
	AcquireFix(ctx context.Context) (domain.Coordinates, error)
}

// Reason maps a gate failure onto operator guidance text.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrPermissionDenied):
		return "Location permission is required. Enable it in the device settings and retry."
	case errors.Is(err, ErrServicesDisabled):
		return "GPS is switched off. Enable location services and retry."
	case errors.Is(err, ErrTimeout):
		return "Could not get a GPS fix in time. Check signal and retry."
	default:
		return "Could not determine the current location. Check GPS and retry."
	}
}

// Gate wraps a Provider with an explicit acquisition bound so a stuck
// provider surfaces as a retryable failure instead of hanging the
// transition.
type Gate struct {
	provider Provider
	timeout  time.Duration
}

// DefaultTimeout bounds a single fix acquisition.
const DefaultTimeout = 10 * time.Second

// NewGate creates a Gate over provider. A non-positive timeout falls
// back to DefaultTimeout.
func NewGate(provider Provider, timeout time.Duration) *Gate {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Gate{provider: provider, timeout: timeout}
}

// AcquireFix performs one fresh acquisition within the configured bound.
func (g *Gate) AcquireFix(ctx context.Context) (domain.Coordinates, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	type result struct {
		coords domain.Coordinates
		err    error
	}
	ch := make(chan result, 1)
	go func() {
		coords, err := g.provider.AcquireFix(ctx)
		ch <- result{coords, err}
	}()

	select {
	case r := <-ch:
		if r.err != nil && ctx.Err() != nil {
			return domain.Coordinates{}, ErrTimeout
		}
		return r.coords, r.err
	case <-ctx.Done():
		return domain.Coordinates{}, ErrTimeout
	}
}

// GateTimeout reads the acquisition bound from the environment
// (PRESENCIA_LOCATION_TIMEOUT_MS), falling back to DefaultTimeout.
func GateTimeout() time.Duration {
	if v := os.Getenv("PRESENCIA_LOCATION_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Millisecond
		}
	}
	return DefaultTimeout
}

// FixedProvider reports configured coordinates. Used for wall-mounted
// kiosks installed at a known site, where the punch location is the
// site itself.
type FixedProvider struct {
	Coordinates domain.Coordinates
}

func (p FixedProvider) AcquireFix(ctx context.Context) (domain.Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return domain.Coordinates{}, ErrTimeout
	}
	return p.Coordinates, nil
}
