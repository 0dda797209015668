// Package script replays a scripted sequence of registry operations against a
// fresh evt.Registry whose subscribers are recorders, and returns a trace of
// what every step issued, removed and invoked.
//
// Files:
//   - script.go (Script, Step, Load, Validate)
//   - run.go    (Run, Trace, Entry, Call)
//   - errors.go (invalid script errors)
package script
