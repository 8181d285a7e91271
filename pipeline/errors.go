package pipeline

import (
	"errors"
	"fmt"
)

// OrchestratorKind classifies orchestrator precondition failures.
type OrchestratorKind int

const (
	// KindBusy means a mutating event arrived while another one was still
	// in flight. Events are rejected, never queued.
	KindBusy OrchestratorKind = iota
	// KindInvalidTransition means the event is not valid in the current
	// stage. The stage is unchanged.
	KindInvalidTransition
)

// String returns the stable name of the failure kind.
func (k OrchestratorKind) String() string {
	switch k {
	case KindBusy:
		return "Busy"
	case KindInvalidTransition:
		return "InvalidTransition"
	default:
		return "Unknown"
	}
}

// OrchestratorError is a precondition failure surfaced to the boundary. It
// never reflects a crashed pipeline; the orchestrator stays in its last
// stable stage.
type OrchestratorError struct {
	Kind    OrchestratorKind
	Message string
	Action  string
}

func (e *OrchestratorError) Error() string {
	if e.Action != "" {
		return fmt.Sprintf("%s: %s. %s", e.Kind, e.Message, e.Action)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NewBusyError reports a rejected concurrent event.
func NewBusyError(operation string) *OrchestratorError {
	return &OrchestratorError{
		Kind:    KindBusy,
		Message: fmt.Sprintf("cannot %s while another operation is in progress", operation),
		Action:  "Wait for the current operation to finish, then try again",
	}
}

// NewInvalidTransitionError reports an event that is not valid in the
// current stage.
func NewInvalidTransitionError(stage Stage, event EventType) *OrchestratorError {
	return &OrchestratorError{
		Kind:    KindInvalidTransition,
		Message: fmt.Sprintf("event %s is not valid in stage %s", event, stage),
		Action:  "Complete the earlier pipeline steps first",
	}
}

// AsOrchestratorError extracts an *OrchestratorError from an error chain.
func AsOrchestratorError(err error) (*OrchestratorError, bool) {
	var orchErr *OrchestratorError
	if errors.As(err, &orchErr) {
		return orchErr, true
	}
	return nil, false
}
