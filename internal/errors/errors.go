// Package errors defines the typed error taxonomy shared by the graph
// compiler, cache, wire protocol and render pool. Each type wraps an
// operation label and an optional cause, and implements Unwrap so
// errors.Is/As see through to the cause.
package errors

import (
	"context"
	stdErrors "errors"
	"fmt"
	"time"
)

// coreMarker is implemented by every error type below except TimeoutError,
// so callers can test "is this one of ours" without enumerating each
// concrete type.
type coreMarker interface {
	error
	isCore()
}

// GraphError indicates the Store's node graph cannot be materialized or
// compiled: a cycle, a dangling link, or a link whose endpoint types are
// incompatible.
type GraphError struct {
	Op  string
	Err error
}

func (e *GraphError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("graph error: %s", e.Op)
	}
	return fmt.Sprintf("graph error: %s: %v", e.Op, e.Err)
}
func (e *GraphError) Unwrap() error { return e.Err }
func (e *GraphError) isCore()       {}

// StoreError indicates the persisted Store itself is invalid: malformed
// JSON, a clip reference with no matching clip, or a task that cannot apply.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("store error: %s", e.Op)
	}
	return fmt.Sprintf("store error: %s: %v", e.Op, e.Err)
}
func (e *StoreError) Unwrap() error { return e.Err }
func (e *StoreError) isCore()       {}

// NodeEmitError indicates a specific node's emit step failed during a
// compile pass. NodeID identifies the offending node so a partial compile
// can report which branch of the graph was dropped.
type NodeEmitError struct {
	Op     string
	NodeID fmt.Stringer
	Err    error
}

func (e *NodeEmitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("node emit error: %s (node %s)", e.Op, e.NodeID)
	}
	return fmt.Sprintf("node emit error: %s (node %s): %v", e.Op, e.NodeID, e.Err)
}
func (e *NodeEmitError) Unwrap() error { return e.Err }
func (e *NodeEmitError) isCore()       {}

// ProtocolError indicates a wire-protocol framing violation: a short read,
// an unrecognized message tag, or a malformed payload.
type ProtocolError struct {
	Op  string
	Err error
}

func (e *ProtocolError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("protocol error: %s", e.Op)
	}
	return fmt.Sprintf("protocol error: %s: %v", e.Op, e.Err)
}
func (e *ProtocolError) Unwrap() error { return e.Err }
func (e *ProtocolError) isCore()       {}

// IOError indicates a filesystem operation failed: writing a chunk, reading
// a source clip, or creating an intermediate artifact directory.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("io error: %s", e.Op)
	}
	return fmt.Sprintf("io error: %s: %v", e.Op, e.Err)
}
func (e *IOError) Unwrap() error { return e.Err }
func (e *IOError) isCore()       {}

// ConnectError indicates the client failed to establish or maintain a
// connection to the server.
type ConnectError struct {
	Op  string
	Err error
}

func (e *ConnectError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("connect error: %s", e.Op)
	}
	return fmt.Sprintf("connect error: %s: %v", e.Op, e.Err)
}
func (e *ConnectError) Unwrap() error { return e.Err }
func (e *ConnectError) isCore()       {}

// TimeoutError indicates an operation exceeded a deadline: render-process
// watchdog expiry or source-clip discovery taking longer than its bound.
type TimeoutError struct {
	Op       string
	Duration time.Duration
	Err      error
}

func (e *TimeoutError) Error() string {
	base := fmt.Sprintf("timeout error: %s (after %s)", e.Op, e.Duration)
	if e.Err != nil {
		return base + ": " + e.Err.Error()
	}
	return base
}
func (e *TimeoutError) Unwrap() error { return e.Err }

// IsTimeout returns true if err is (or wraps) a TimeoutError, a context
// deadline exceeded, or any error type that exposes Timeout() bool and
// returns true.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	var te *TimeoutError
	if stdErrors.As(err, &te) {
		return true
	}
	if stdErrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var toErr interface{ Timeout() bool }
	if stdErrors.As(err, &toErr) && toErr.Timeout() {
		return true
	}
	return false
}

// IsCoreError returns true if the error chain contains any of the typed
// errors in this package other than TimeoutError, which IsTimeout covers.
func IsCoreError(err error) bool {
	if err == nil {
		return false
	}
	var cm coreMarker
	return stdErrors.As(err, &cm)
}

// Constructors (encourage contextual wrapping with %w when used by callers).
func NewGraphError(op string, cause error) error { return &GraphError{Op: op, Err: cause} }
func NewStoreError(op string, cause error) error { return &StoreError{Op: op, Err: cause} }
func NewNodeEmitError(op string, nodeID fmt.Stringer, cause error) error {
	return &NodeEmitError{Op: op, NodeID: nodeID, Err: cause}
}
func NewProtocolError(op string, cause error) error { return &ProtocolError{Op: op, Err: cause} }
func NewIOError(op string, cause error) error       { return &IOError{Op: op, Err: cause} }
func NewConnectError(op string, cause error) error  { return &ConnectError{Op: op, Err: cause} }
func NewTimeoutError(op string, d time.Duration, cause error) error {
	return &TimeoutError{Op: op, Duration: d, Err: cause}
}
