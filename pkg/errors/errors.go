// Package errors provides structured error reporting for the viewer.
package errors

import (
	"fmt"
	"time"
)

// Kind categorizes a reported error.
type Kind int

const (
	// KindUnknown indicates an error of unknown category.
	KindUnknown Kind = iota
	// KindConfig indicates a configuration load or reload failure.
	KindConfig
	// KindTransport indicates a state-source fetch failure.
	KindTransport
	// KindRender indicates a backend submission failure.
	KindRender
	// KindInit indicates an initialization error.
	KindInit
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindTransport:
		return "transport"
	case KindRender:
		return "render"
	case KindInit:
		return "init"
	default:
		return "unknown"
	}
}

// ViewerError represents a structured, recoverable error.
type ViewerError struct {
	// Op is the operation that failed (e.g. "engine.RunFrame").
	Op string
	// Kind categorizes the error.
	Kind Kind
	// Err is the underlying error.
	Err error
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *ViewerError) Error() string {
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *ViewerError) Unwrap() error {
	return e.Err
}

// E constructs a ViewerError.
func E(op string, kind Kind, err error) *ViewerError {
	return &ViewerError{Op: op, Kind: kind, Err: err, Timestamp: time.Now()}
}

// InvariantError reports a violated internal invariant: a condition the
// validator guarantees cannot occur was observed at runtime. These are
// programmer errors; they are raised as panics and never recovered by the
// frame loop.
type InvariantError struct {
	// Op is the operation that detected the violation.
	Op string
	// Detail describes the violated invariant.
	Detail string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violation in %s: %s", e.Op, e.Detail)
}

// Invariantf panics with an InvariantError.
func Invariantf(op, format string, args ...any) {
	panic(&InvariantError{Op: op, Detail: fmt.Sprintf(format, args...)})
}
