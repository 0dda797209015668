package script

import "fmt"

// invalidStepError reports a step that cannot be executed.
type invalidStepError struct {
	index int
	msg   string
}

func (e invalidStepError) Error() string {
	return fmt.Sprintf("steps[%d]: %s", e.index, e.msg)
}

// IsInvalidStep reports whether err describes a malformed step.
func IsInvalidStep(err error) bool {
	_, ok := err.(invalidStepError)
	return ok
}
