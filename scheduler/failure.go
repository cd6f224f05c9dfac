package scheduler

import (
	"errors"
	"fmt"
	"runtime"
)

// ErrConsumed is returned when a single-use value (a Handle, Task or Stream)
// is waited on or driven a second time.
var ErrConsumed = errors.New("scheduler: already consumed")

// ExecutionFailure reports that scheduled work panicked before producing a
// result. The payload is opaque; callers decide the policy.
type ExecutionFailure struct {
	// Value is the value passed to panic.
	Value any
	// Stack is the goroutine stack captured where the panic was recovered.
	Stack string
}

func (e *ExecutionFailure) Error() string {
	return fmt.Sprintf("execution failure: panic: %v", e.Value)
}

// Unwrap returns the panic value when it is itself an error.
func (e *ExecutionFailure) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// NewExecutionFailure captures v and the current stack. Call it from the
// deferred recover of the failing goroutine.
func NewExecutionFailure(v any) *ExecutionFailure {
	buf := make([]byte, 8192)
	n := runtime.Stack(buf, false)
	return &ExecutionFailure{Value: v, Stack: string(buf[:n])}
}

// IsExecutionFailure reports whether err (or any error in its chain) is an
// *ExecutionFailure.
func IsExecutionFailure(err error) bool {
	var ef *ExecutionFailure
	return errors.As(err, &ef)
}

// Guard runs fn and converts a panic into an *ExecutionFailure.
func Guard[T any](fn func() (T, error)) (T, error) {
	v, _, err := guard(fn)
	return v, err
}

func guard[T any](fn func() (T, error)) (v T, panicked bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			v, panicked, err = zero, true, NewExecutionFailure(r)
		}
	}()
	v, err = fn()
	return v, false, err
}
