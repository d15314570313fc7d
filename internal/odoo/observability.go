package odoo

import (
	"errors"
	"fmt"
	"io"
	"time"
)

// RPCCallEvent records metadata about a single RPC invocation.
type RPCCallEvent struct {
	Service   string
	Method    string
	Model     string
	LatencyMs int64
	Success   bool
	ErrorCode string
}

// Observer receives events about RPC calls for logging and metrics.
type Observer interface {
	OnCallComplete(event RPCCallEvent)
}

// LogObserver writes RPC call events to an io.Writer.
type LogObserver struct {
	w io.Writer
}

// NewLogObserver creates an Observer that logs events to w.
func NewLogObserver(w io.Writer) *LogObserver {
	return &LogObserver{w: w}
}

func (o *LogObserver) OnCallComplete(event RPCCallEvent) {
	ts := time.Now().UTC().Format(time.RFC3339)
	status := "ok"
	if !event.Success {
		status = "err:" + event.ErrorCode
	}
	fmt.Fprintf(o.w, "[%s] rpc_call service=%s method=%s model=%s latency_ms=%d status=%s\n",
		ts, event.Service, event.Method, event.Model, event.LatencyMs, status)
}

// NoopObserver discards all events. Useful for tests.
type NoopObserver struct{}

func (NoopObserver) OnCallComplete(RPCCallEvent) {}

func errorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout):
		return "TIMEOUT"
	case errors.Is(err, ErrUnavailable):
		return "UNAVAILABLE"
	case errors.Is(err, ErrAuthFailed):
		return "AUTH_FAILED"
	case errors.Is(err, ErrNoOpenRecord):
		return "NO_OPEN_RECORD"
	case errors.Is(err, ErrRemote):
		return "REMOTE"
	default:
		return "UNKNOWN"
	}
}
