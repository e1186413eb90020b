// Package safework wraps operations that must not take the process down
// with them: a panicking task callback or a panicking supervisory
// goroutine should be logged and recovered from, never fatal.
package safework

import (
	"fmt"
	"runtime/debug"

	"github.com/hsn2-platform/worker-core/logging"
)

// Execute runs fn with panic recovery. A panic is logged and converted
// into an error identifying the failing operation.
func Execute(logger logging.Logger, operation string, fn func() error) error {
	var panicErr error
	func() {
		defer func() {
			if r := recover(); r != nil {
				stack := string(debug.Stack())
				if logger != nil {
					logger.Error("panic_recovered", "operation", operation, "panic", r, "stack", stack)
				}
				panicErr = fmt.Errorf("panic in %s: %v", operation, r)
			}
		}()
		panicErr = fn()
	}()
	return panicErr
}

// ExecuteWithResult is the generic variant of Execute for functions that
// also return a value, used by the task processor's user callback.
func ExecuteWithResult[T any](logger logging.Logger, operation string, fn func() (T, error)) (T, error) {
	var result T
	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				stack := string(debug.Stack())
				if logger != nil {
					logger.Error("panic_recovered", "operation", operation, "panic", r, "stack", stack)
				}
				err = fmt.Errorf("panic in %s: %v", operation, r)
			}
		}()
		result, err = fn()
	}()
	return result, err
}

// Go launches fn in a goroutine with panic recovery, calling onPanic
// (if non-nil) with the recovered value.
func Go(logger logging.Logger, operation string, fn func(), onPanic func(recovered any)) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				stack := string(debug.Stack())
				if logger != nil {
					logger.Error("goroutine_panic_recovered", "operation", operation, "panic", r, "stack", stack)
				}
				if onPanic != nil {
					onPanic(r)
				}
			}
		}()
		fn()
	}()
}
