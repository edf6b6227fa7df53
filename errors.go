package chachan

import (
	"errors"
	"fmt"
)

// ErrCancelled is the cancellation signal. Returned from a before hook it
// aborts the invocation silently: no state mutation, no broadcast, no ack.
// It is ordinary control flow, not a fault.
var ErrCancelled = errors.New("invocation cancelled")

// Cancel returns the cancellation signal for use in before hooks.
func Cancel() error {
	return ErrCancelled
}

// Stage identifies the pipeline stage a fault originated from.
type Stage string

const (
	StageBefore Stage = "before"
	StageOn     Stage = "on"
	StageAfter  Stage = "after"
)

// StageError tags a hook failure with the wire event and pipeline stage it
// came from.
type StageError struct {
	Event string
	Stage Stage
	Err   error
}

// Error implements the error interface.
func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %s hook: %v", e.Event, e.Stage, e.Err)
}

// Unwrap returns the underlying hook error.
func (e *StageError) Unwrap() error {
	return e.Err
}
