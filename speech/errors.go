package speech

import (
	"errors"
	"fmt"
)

// Common errors for the speech system.
var (
	// Engine errors
	ErrEngineNotFound    = errors.New("unknown speech engine")
	ErrEngineUnavailable = errors.New("speech engine is not available")
	ErrEngineClosed      = errors.New("speech engine has been closed")
	ErrSynthesisFailed   = errors.New("speech synthesis failed")
	ErrTextTooLong       = errors.New("text exceeds engine limit")

	// Callback errors
	ErrNilCallback      = errors.New("nil word-boundary callback")
	ErrCallbackNotFound = errors.New("word-boundary callback not registered")

	// Worker errors
	ErrWorkerTerminated = errors.New("speech worker has terminated")
	ErrStateTransition  = errors.New("invalid worker state transition")
)

// Error wraps an underlying error with the engine and operation that
// produced it.
type Error struct {
	Err    error  // The underlying error
	Engine string // Engine name, empty for worker-level errors
	Op     string // Operation being performed
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Engine != "" && e.Op != "":
		return fmt.Sprintf("%s: %s: %v", e.Engine, e.Op, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return e.Err.Error()
	}
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError wraps err with engine and operation context.
func NewError(err error, engine, op string) *Error {
	return &Error{Err: err, Engine: engine, Op: op}
}
