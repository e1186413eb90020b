package taskproc

import "fmt"

// ProcessingError is returned by a TaskProcess callback for a generic
// failure during task processing; it is reported to the framework as
// reason DEFUNCT.
type ProcessingError struct{ Msg string }

func (e *ProcessingError) Error() string { return e.Msg }

// InputError signals that the object(s) given to the task were
// malformed; reported as reason INPUT.
type InputError struct{ Msg string }

func (e *InputError) Error() string { return e.Msg }

// ParamError signals a bad task parameter; reported as reason PARAMS.
type ParamError struct{ Msg string }

func (e *ParamError) Error() string { return e.Msg }

// BadTypeError is raised internally when a delivery's message type is
// not "TaskRequest"; reported as reason DEFUNCT.
type BadTypeError struct{ Got string }

func (e *BadTypeError) Error() string { return fmt.Sprintf("bad message type received %q", e.Got) }

// TerminationError is returned by the state machine when the object
// store reports the service is shutting down mid-request. Handle
// answers it with bus.RejectRequeue; the consume loop itself ends once
// the bus's keepRunning flag is cleared.
type TerminationError struct{}

func (e *TerminationError) Error() string { return "termination requested" }
