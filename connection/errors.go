package connection

import "fmt"

// The ConnectionFailedError is used when the dial or the TLS upgrade of a connection
// fails before the handshake completes. The transport is left unconnected with nothing
// to clean up
type ConnectionFailedError struct {
	Err error
}

func (e *ConnectionFailedError) Error() string {
	return fmt.Sprintf("connection failed: %s", e.Err)
}

func (e *ConnectionFailedError) Unwrap() error { return e.Err }

// The ConnectionRefusedError is used when the operating system actively refuses the
// dial, i.e. nothing is listening on the target port. It is kept distinct from the
// generic ConnectionFailedError so callers can special-case it
type ConnectionRefusedError struct {
	Err error
}

func (e *ConnectionRefusedError) Error() string {
	return fmt.Sprintf("connection refused: %s", e.Err)
}

func (e *ConnectionRefusedError) Unwrap() error { return e.Err }

// The ProtocolViolationError is used when the server's greeting is missing, malformed,
// or not the greeting we expect
type ProtocolViolationError struct {
	Err error
}

func (e *ProtocolViolationError) Error() string {
	return fmt.Sprintf("protocol violation: %s", e.Err)
}

func (e *ProtocolViolationError) Unwrap() error { return e.Err }

// The OptionMismatchError is used when the caller's requested options are incompatible
// with the capabilities the server announced in its greeting
type OptionMismatchError struct {
	Reason string
}

func (e *OptionMismatchError) Error() string { return e.Reason }

func (e *OptionMismatchError) Unwrap() error { return nil }

// The WriteFailedError is used when a send's underlying socket write reports an error.
// It is surfaced to the caller of that send only and never tears the connection down
type WriteFailedError struct {
	Err error
}

func (e *WriteFailedError) Error() string {
	return fmt.Sprintf("write failed: %s", e.Err)
}

func (e *WriteFailedError) Unwrap() error { return e.Err }
