package core

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Precondition failures. These are fatal at round start and prevent the
// round from starting at all; they are never session-scoped.
var (
	// ErrMissingAPIKey indicates the credential required for outbound calls
	// was not supplied by the environment.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrEmptyRoster indicates no agents were configured for the panel.
	ErrEmptyRoster = errors.New("empty roster")
)

// ConnectionError indicates the stream could not be established or was torn
// down by the transport mid-flight. Session-scoped: one agent's connection
// failure never aborts the round.
type ConnectionError struct {
	Err error
}

// Error implements the error interface for ConnectionError.
func (e *ConnectionError) Error() string { return fmt.Sprintf("connection failure: %v", e.Err) }

// Unwrap exposes the underlying transport error for errors.Is / errors.As.
func (e *ConnectionError) Unwrap() error { return e.Err }

// ProtocolError indicates a malformed record inside an otherwise healthy
// stream. Tolerated per-record by the decoder: the record is skipped and
// decoding continues, so a ProtocolError never terminates a session.
type ProtocolError struct {
	Record string
	Err    error
}

// Error implements the error interface for ProtocolError.
func (e *ProtocolError) Error() string {
	return fmt.Sprintf("malformed stream record %q: %v", e.Record, e.Err)
}

// Unwrap exposes the underlying parse error.
func (e *ProtocolError) Unwrap() error { return e.Err }

// TimeoutError indicates a session produced no terminal event within its
// fixed budget. Partial content already delivered is not retracted.
type TimeoutError struct {
	Limit time.Duration
}

// Error implements the error interface for TimeoutError.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("session timed out after %s", e.Limit)
}

// Is reports equivalence with context.DeadlineExceeded so callers can match
// either form.
func (e *TimeoutError) Is(target error) bool { return target == context.DeadlineExceeded }

// UpstreamError indicates the generation endpoint answered with a
// non-success status before any stream was delivered.
type UpstreamError struct {
	Status int
	Body   string
}

// Error implements the error interface for UpstreamError.
func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned status %d: %s", e.Status, e.Body)
}
