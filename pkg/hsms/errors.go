package hsms

import "fmt"

// ErrSendFailed wraps a transport-level failure encountered while writing
// a message to the connection.
type ErrSendFailed struct {
	Cause error
}

func (e *ErrSendFailed) Error() string { return fmt.Sprintf("hsms: send failed: %v", e.Cause) }
func (e *ErrSendFailed) Unwrap() error { return e.Cause }

// ErrTimeout reports that a timer expired waiting for a correlated reply.
type ErrTimeout struct {
	System uint32
	Timer  string // "T3", "T6" or "T7"
}

func (e *ErrTimeout) Error() string {
	return fmt.Sprintf("hsms: %s timeout waiting for reply to system %d", e.Timer, e.System)
}

// ErrDisconnected reports that an operation was attempted, or a pending
// reply abandoned, because the underlying connection is gone.
type ErrDisconnected struct{}

func (e *ErrDisconnected) Error() string { return "hsms: session disconnected" }

// ErrProtocolViolation reports malformed input that the session cannot
// reconcile with its current state: a bad frame length, an unparsable
// header, or a control message received outside its expected state.
type ErrProtocolViolation struct {
	Reason string
}

func (e *ErrProtocolViolation) Error() string { return fmt.Sprintf("hsms: protocol violation: %s", e.Reason) }

// ErrUnknownFunction reports that no handler is registered for the
// incoming (stream, function) pair, and an S9F5 reply was issued.
type ErrUnknownFunction struct {
	Stream, Function byte
}

func (e *ErrUnknownFunction) Error() string {
	return fmt.Sprintf("hsms: no handler registered for S%dF%d", e.Stream, e.Function)
}

// ErrAborted reports that the peer replied with SxF0, meaning it could
// not service the request.
type ErrAborted struct {
	Stream byte
	System uint32
}

func (e *ErrAborted) Error() string {
	return fmt.Sprintf("hsms: peer aborted S%dF0 for system %d", e.Stream, e.System)
}

// ErrNotSelected reports an attempt to exchange data messages while the
// session is not in the SELECTED state.
type ErrNotSelected struct {
	State State
}

func (e *ErrNotSelected) Error() string {
	return fmt.Sprintf("hsms: session not selected (state=%s)", e.State)
}
