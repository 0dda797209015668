package evt

import (
	"errors"
	"fmt"
)

// ErrSubscriberPanic matches any *PanicError via errors.Is.
var ErrSubscriberPanic = errors.New("evt: subscriber panicked")

// PanicError describes a handler panic recovered under RecoverAndContinue.
type PanicError struct {
	Event string
	ID    ID
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("evt: subscriber %d on %q panicked: %v", e.ID, e.Event, e.Value)
}

func (e *PanicError) Is(target error) bool { return target == ErrSubscriberPanic }

// Unwrap exposes the panic value when it was itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// IsSubscriberPanic reports whether err came from a recovered handler panic.
func IsSubscriberPanic(err error) bool {
	var pe *PanicError
	return errors.As(err, &pe)
}
