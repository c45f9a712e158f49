// Package step defines the unit-of-work capability consumed by flows.
//
// A Step transforms the most recent pipeline State into a new one, or fails
// in one of two recognized ways: a missing required input (the run was
// misconfigured) or an external execution failure (a tool the step invoked
// exited abnormally). Any other failure is treated as unanticipated and is
// not handled by the scheduling core.
//
// Flows never reuse step objects: a strategy constructs a fresh instance
// through a Factory immediately before execution and discards it after,
// retaining it only for inspection.
package step

import (
	"context"

	"github.com/stagehand-io/stagehand/internal/config"
	"github.com/stagehand-io/stagehand/internal/logging"
	"github.com/stagehand-io/stagehand/internal/state"
	"github.com/stagehand-io/stagehand/internal/toolbox"
)

// Step is one unit of work within a flow.
type Step interface {
	// ID returns the step's stable identifier, used in stage directory
	// names. Must be filesystem-safe.
	ID() string

	// Name returns the step's display name, used in progress descriptions.
	Name() string

	// Start executes the step against the previous state and returns the
	// new state. The two handled failure kinds are *MissingInputError and
	// *ExecutionError; anything else propagates to the flow's caller.
	Start(ctx context.Context, rc RunContext, prev *state.State) (*state.State, error)
}

// Factory constructs a fresh Step instance. Strategies call the factory
// immediately before executing the step.
type Factory func() Step

// RunContext carries the run-scoped collaborators a step needs.
type RunContext struct {
	// StepDir is the step's working directory inside the run directory,
	// already prefixed with the stage ordinal.
	StepDir string

	// Toolbox is the run's scratch workspace.
	Toolbox *toolbox.Toolbox

	// Config is the resolved configuration for the run.
	Config *config.Config

	// Log receives the step's structured log records.
	Log *logging.Logger
}
