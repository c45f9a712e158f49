package step

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/stagehand-io/stagehand/internal/config"
	"github.com/stagehand-io/stagehand/internal/state"
)

// CommandStep runs an external command inside its stage directory.
//
// Required inputs are checked against the previous state before anything is
// executed; a missing one yields *MissingInputError. The command's combined
// stdout/stderr is captured to <stage-dir>/<id>.log. On success the declared
// outputs are registered as artifacts of the new state and the snapshot is
// written to <stage-dir>/state_out.json. A non-zero exit yields
// *ExecutionError.
type CommandStep struct {
	cfg config.StepConfig
}

// NewCommand returns a Factory producing CommandSteps for the declaration.
func NewCommand(cfg config.StepConfig) Factory {
	return func() Step {
		return &CommandStep{cfg: cfg}
	}
}

// ID implements Step.
func (c *CommandStep) ID() string { return c.cfg.ID }

// Name implements Step.
func (c *CommandStep) Name() string {
	if c.cfg.Name != "" {
		return c.cfg.Name
	}
	return c.cfg.ID
}

// Start implements Step.
func (c *CommandStep) Start(ctx context.Context, rc RunContext, prev *state.State) (*state.State, error) {
	for _, input := range c.cfg.Inputs {
		if _, ok := prev.Artifact(input); !ok {
			return nil, &MissingInputError{StepID: c.cfg.ID, Input: input}
		}
	}
	if len(c.cfg.Command) == 0 {
		return nil, &MissingInputError{StepID: c.cfg.ID, Input: "command"}
	}

	if err := os.MkdirAll(rc.StepDir, 0755); err != nil {
		return nil, fmt.Errorf("step %s: creating stage directory: %w", c.cfg.ID, err)
	}

	logPath := filepath.Join(rc.StepDir, c.cfg.ID+".log")
	logFile, err := os.Create(logPath)
	if err != nil {
		return nil, fmt.Errorf("step %s: creating log file: %w", c.cfg.ID, err)
	}
	defer logFile.Close()

	cmd := exec.CommandContext(ctx, c.cfg.Command[0], c.cfg.Command[1:]...)
	cmd.Dir = rc.StepDir
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	cmd.Env = append(os.Environ(), c.env(rc, prev)...)

	if rc.Log != nil {
		rc.Log.Debug("executing command", "argv", strings.Join(c.cfg.Command, " "), "dir", rc.StepDir)
	}

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, &ExecutionError{
				StepID:   c.cfg.ID,
				Cmd:      strings.Join(c.cfg.Command, " "),
				ExitCode: exitErr.ExitCode(),
				Err:      err,
			}
		}
		// Startup failures (binary not found, permissions) are not an
		// abnormal tool exit and propagate unhandled.
		return nil, fmt.Errorf("step %s: starting command: %w", c.cfg.ID, err)
	}

	next := prev.WithArtifact(c.cfg.ID+".log", logPath)
	for name, rel := range c.cfg.Outputs {
		next = next.WithArtifact(name, filepath.Join(rc.StepDir, rel))
	}

	if err := next.WriteTo(filepath.Join(rc.StepDir, "state_out.json")); err != nil {
		return nil, fmt.Errorf("step %s: %w", c.cfg.ID, err)
	}
	return next, nil
}

// env renders the step's extra environment, exposing input artifact paths
// as STAGEHAND_INPUT_<NAME> alongside the declared variables.
func (c *CommandStep) env(rc RunContext, prev *state.State) []string {
	env := make([]string, 0, len(c.cfg.Env)+len(c.cfg.Inputs)+1)
	for k, v := range c.cfg.Env {
		env = append(env, k+"="+v)
	}
	for _, input := range c.cfg.Inputs {
		if path, ok := prev.Artifact(input); ok {
			env = append(env, "STAGEHAND_INPUT_"+sanitizeEnvKey(input)+"="+path)
		}
	}
	if rc.Toolbox != nil {
		env = append(env, "STAGEHAND_TMP="+rc.Toolbox.Dir())
	}
	return env
}

func sanitizeEnvKey(name string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, name)
	return strings.ToUpper(mapped)
}
