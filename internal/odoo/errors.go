package odoo

import "errors"

var (
	// ErrUnavailable indicates the RPC endpoint is unreachable.
	ErrUnavailable = errors.New("odoo server unavailable")

	// ErrTimeout indicates the RPC call exceeded the configured timeout.
	ErrTimeout = errors.New("odoo request timed out")

	// ErrAuthFailed indicates the ERP rejected the credentials.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrNoOpenRecord indicates a check-out was submitted while the
	// employee has no open attendance interval on the remote ledger.
	// This is a business signal, not a transport fault.
	ErrNoOpenRecord = errors.New("no open attendance record")

	// ErrRemote indicates the ERP reported a fault while executing the
	// call. The wrapped detail carries the remote message.
	ErrRemote = errors.New("odoo remote error")
)
