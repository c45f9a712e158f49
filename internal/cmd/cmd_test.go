package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/stagehand-io/stagehand/internal/config"
	"github.com/stagehand-io/stagehand/internal/flow"
	"github.com/stagehand-io/stagehand/internal/state"
)

// resetRunFlags restores the run command's flag variables to their
// defaults. The variables are package state shared across Execute calls,
// and cobra does not reset them between invocations.
func resetRunFlags() {
	runFlowName = ""
	runTag = ""
	runInitial = ""
	runOnly = nil
	runSkip = nil
	runWorkers = 0
	runNoProgress = false
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	resetRunFlags()

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestFlowsCommand_ListsBuiltins(t *testing.T) {
	flow.RegisterBuiltins()

	stdout, _, err := execute(t, "flows")
	if err != nil {
		t.Fatalf("flows: %v", err)
	}
	if !strings.Contains(stdout, "Sequential") {
		t.Errorf("output = %q, want Sequential listed", stdout)
	}
}

func TestRunCommand_UnknownFlow(t *testing.T) {
	flow.RegisterBuiltins()

	_, _, err := execute(t, "run", t.TempDir(), "--flow", "DoesNotExist", "--no-progress")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "unknown flow") {
		t.Errorf("error = %q, want unknown flow", err)
	}
}

func TestRunCommand_EndToEnd(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("end-to-end test uses /bin/sh")
	}
	flow.RegisterBuiltins()

	designDir := t.TempDir()
	cfgJSON := `{
	  "design": "spm",
	  "steps": [
	    {"id": "emit", "command": ["/bin/sh", "-c", "echo done > out.txt"], "outputs": {"out": "out.txt"}},
	    {"id": "check", "command": ["/bin/sh", "-c", "test -n \"$STAGEHAND_INPUT_OUT\""], "inputs": ["out"]}
	  ]
	}`
	if err := os.WriteFile(filepath.Join(designDir, "config.json"), []byte(cfgJSON), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	stdout, _, err := execute(t, "run", designDir, "--tag", "RUN_E2E", "--no-progress")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(stdout, "complete") {
		t.Errorf("stdout = %q, want completion notice", stdout)
	}

	runDir := filepath.Join(designDir, "runs", "RUN_E2E")
	for _, rel := range []string{"resolved.json", "state_out.json", "1-emit/emit.log", "2-check"} {
		if _, err := os.Stat(filepath.Join(runDir, rel)); err != nil {
			t.Errorf("expected %s in run dir: %v", rel, err)
		}
	}
}

func TestRunCommand_FailingStepExitsNonZero(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("end-to-end test uses /bin/sh")
	}
	flow.RegisterBuiltins()

	designDir := t.TempDir()
	cfgJSON := `{"steps": [{"id": "bad", "command": ["/bin/sh", "-c", "exit 9"]}]}`
	if err := os.WriteFile(filepath.Join(designDir, "config.json"), []byte(cfgJSON), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	_, stderr, err := execute(t, "run", designDir, "--tag", "RUN_FAIL", "--no-progress")
	if err == nil {
		t.Fatal("expected error for failing flow")
	}
	if !strings.Contains(stderr, "failed after 0 of 1 stages") {
		t.Errorf("stderr = %q, want failure summary", stderr)
	}
}

func TestRunCommand_FlagsDoNotLeakBetweenInvocations(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("end-to-end test uses /bin/sh")
	}
	flow.RegisterBuiltins()

	if _, _, err := execute(t, "run", t.TempDir(), "--flow", "DoesNotExist", "--no-progress"); err == nil {
		t.Fatal("expected error for unknown flow")
	}

	designDir := t.TempDir()
	cfgJSON := `{"steps": [{"id": "solo", "command": ["true"]}]}`
	if err := os.WriteFile(filepath.Join(designDir, "config.json"), []byte(cfgJSON), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	// Without --flow this must fall back to the configured default, not
	// the flow name from the previous invocation.
	if _, _, err := execute(t, "run", designDir, "--tag", "RUN_CLEAN", "--no-progress"); err != nil {
		t.Fatalf("run after unknown-flow invocation: %v", err)
	}
	if _, err := os.Stat(filepath.Join(designDir, "runs", "RUN_CLEAN", "1-solo")); err != nil {
		t.Errorf("step directory missing: %v", err)
	}
}

type bareRunner struct{}

func (bareRunner) Name() string { return "Bare" }

func (bareRunner) Run(context.Context, *flow.Flow, *state.State) (bool, []*state.State, error) {
	return true, nil, nil
}

func TestRunCommand_RunnerWithoutLineage(t *testing.T) {
	flow.RegisterBuiltins()
	flow.Register("Bare", func(cfg *config.Config, designDir string, opts ...flow.Option) (*flow.Flow, error) {
		return flow.New(cfg, designDir, bareRunner{}, opts...)
	})

	designDir := t.TempDir()
	stdout, _, err := execute(t, "run", designDir, "--flow", "Bare", "--tag", "RUN_BARE", "--no-progress")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(stdout, "complete") {
		t.Errorf("stdout = %q, want completion notice", stdout)
	}
	if _, err := os.Stat(filepath.Join(designDir, "runs", "RUN_BARE", "state_out.json")); !os.IsNotExist(err) {
		t.Errorf("expected no final snapshot for empty lineage, stat err = %v", err)
	}
}

func TestRunCommand_SkipFiltersSteps(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("end-to-end test uses /bin/sh")
	}
	flow.RegisterBuiltins()

	designDir := t.TempDir()
	cfgJSON := `{"steps": [
	  {"id": "keep", "command": ["true"]},
	  {"id": "drop-me", "command": ["/bin/sh", "-c", "exit 1"]}
	]}`
	if err := os.WriteFile(filepath.Join(designDir, "config.json"), []byte(cfgJSON), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	_, _, err := execute(t, "run", designDir, "--tag", "RUN_SKIP", "--no-progress", "--skip", "drop-*")
	if err != nil {
		t.Fatalf("run with --skip: %v", err)
	}
	if _, err := os.Stat(filepath.Join(designDir, "runs", "RUN_SKIP", "1-keep")); err != nil {
		t.Errorf("kept step directory missing: %v", err)
	}
}
