package step

import "fmt"

// MissingInputError reports that a required input for a step was not
// present in the incoming state. Flows treat it as a misconfiguration and
// stop the run without propagating an error.
type MissingInputError struct {
	StepID string
	Input  string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("step %s: required input %q not found in state", e.StepID, e.Input)
}

// ExecutionError reports that an external process invoked by a step exited
// abnormally. Flows treat it as a handled pipeline failure.
type ExecutionError struct {
	StepID   string
	Cmd      string
	ExitCode int
	Err      error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("step %s: command %q exited with code %d", e.StepID, e.Cmd, e.ExitCode)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}
