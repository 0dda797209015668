package evt

import "github.com/rs/zerolog"

// PanicPolicy controls what Publish does when a handler panics.
type PanicPolicy int

const (
	// Propagate lets the panic unwind out of Publish; subscribers after the
	// failing one are not invoked for that call.
	Propagate PanicPolicy = iota
	// RecoverAndContinue recovers the panic, reports it as a *PanicError to
	// the logger and observers, and moves on to the next subscriber.
	RecoverAndContinue
)

func (p PanicPolicy) String() string {
	switch p {
	case Propagate:
		return "propagate"
	case RecoverAndContinue:
		return "recover"
	default:
		return "unknown"
	}
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger installs a structured logger. Lifecycle operations are logged at
// debug level, recovered panics at error level.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Registry) { r.log = l }
}

// WithObserver adds an observer. May be given more than once.
func WithObserver(o Observer) Option {
	return func(r *Registry) {
		if o != nil {
			r.observers = append(r.observers, o)
		}
	}
}

// WithPanicPolicy sets the panic policy. The default is Propagate.
func WithPanicPolicy(p PanicPolicy) Option {
	return func(r *Registry) { r.policy = p }
}
