package datastore

import "fmt"

// Error reports a Data Store request that failed, wrapping the
// transport or status-code cause.
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("datastore: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("datastore: %s", e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func newError(message string, cause error) *Error {
	return &Error{Message: message, Cause: cause}
}
