package flow

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/stagehand-io/stagehand/internal/config"
	"github.com/stagehand-io/stagehand/internal/logging"
	"github.com/stagehand-io/stagehand/internal/progress"
	"github.com/stagehand-io/stagehand/internal/state"
	"github.com/stagehand-io/stagehand/internal/step"
	"github.com/stagehand-io/stagehand/internal/toolbox"
)

// Runner is a scheduling strategy. It owns step sequencing only; all
// lifecycle, workspace, and progress concerns belong to the Flow driving it.
//
// Run must return (false, partial lineage, nil) for the two handled failure
// kinds, (true, full lineage, nil) on success, and a non-nil error for
// anything unanticipated — never converting unexpected failures into an
// ordinary pipeline failure.
type Runner interface {
	// Name returns the strategy's name, used as the flow display name when
	// no explicit name is set.
	Name() string

	// Run executes the strategy against the given flow.
	Run(ctx context.Context, f *Flow, initial *state.State) (bool, []*state.State, error)
}

// Flow drives one pipeline over a design directory.
//
// A Flow may be reused for successive runs with different tags, but must
// not drive two Start invocations concurrently: run-scoped fields (ordinal,
// run directory, toolbox) are owned exclusively by the in-flight invocation.
type Flow struct {
	cfg       *config.Config
	designDir string
	runner    Runner
	name      string
	log       *logging.Logger
	reporter  progress.Reporter
	pool      *pool

	// Run-scoped fields, valid only between Start and its return.
	ordinal  int
	maxStage int
	runDir   string
	tmpDir   string
	tb       *toolbox.Toolbox
	steps    []step.Step
	tracking bool
	runLog   *logging.Logger
}

// Option configures a Flow at construction.
type Option func(*Flow)

// WithName overrides the display name derived from the runner.
func WithName(name string) Option {
	return func(f *Flow) { f.name = name }
}

// WithLogger sets the flow's logger. Defaults to a no-op logger.
func WithLogger(log *logging.Logger) Option {
	return func(f *Flow) { f.log = log }
}

// WithReporter sets the progress reporter. Defaults to progress.Nop.
func WithReporter(r progress.Reporter) Option {
	return func(f *Flow) { f.reporter = r }
}

// WithMaxWorkers bounds the async step dispatcher. Defaults to the
// configured worker count.
func WithMaxWorkers(n int) Option {
	return func(f *Flow) {
		if n > 0 {
			f.pool = newPool(n)
		}
	}
}

// New creates a Flow for the given configuration, design directory, and
// scheduling strategy. The dispatcher pool is created here and lives for
// the Flow's whole lifetime; release it with Close.
func New(cfg *config.Config, designDir string, runner Runner, opts ...Option) (*Flow, error) {
	if cfg == nil {
		return nil, fmt.Errorf("flow: config is required")
	}
	if designDir == "" {
		return nil, fmt.Errorf("flow: design directory is required")
	}
	if runner == nil {
		return nil, fmt.Errorf("flow: runner is required")
	}

	f := &Flow{
		cfg:       cfg,
		designDir: designDir,
		runner:    runner,
		log:       logging.NopLogger(),
		reporter:  progress.Nop{},
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.pool == nil {
		workers := cfg.Workers
		if workers <= 0 {
			workers = 4
		}
		f.pool = newPool(workers)
	}
	return f, nil
}

// Name returns the flow's display name: the explicit name if set, else the
// runner's name.
func (f *Flow) Name() string {
	if f.name != "" {
		return f.name
	}
	return f.runner.Name()
}

// Config returns the flow's configuration.
func (f *Flow) Config() *config.Config { return f.cfg }

// DesignDir returns the design directory the flow operates on.
func (f *Flow) DesignDir() string { return f.designDir }

// RunDir returns the directory of the most recent run, or "" before the
// first Start.
func (f *Flow) RunDir() string { return f.runDir }

// Toolbox returns the scratch workspace of the in-flight run, or nil
// outside one.
func (f *Flow) Toolbox() *toolbox.Toolbox { return f.tb }

// Ordinal returns the 1-based number of the stage currently executing,
// or 0 outside a run.
func (f *Flow) Ordinal() int { return f.ordinal }

// Steps returns the step instances executed so far, for inspection only.
func (f *Flow) Steps() []step.Step {
	out := make([]step.Step, len(f.steps))
	copy(out, f.steps)
	return out
}

// RunLog returns the logger for the in-flight run, or the flow's base
// logger outside one.
func (f *Flow) RunLog() *logging.Logger {
	if f.runLog != nil {
		return f.runLog
	}
	return f.log
}

// Start is the sealed entry point for a flow.
//
// It prepares the run workspace under <design-dir>/runs/<tag> (deriving a
// sortable timestamp tag when none is given), persists the resolved
// configuration snapshot, installs progress tracking, delegates to the
// runner, and tears run-scoped state back down before returning the
// runner's result unchanged.
//
// A nil initial state starts the lineage with a fresh empty state. Calling
// Start concurrently on one Flow is a precondition violation.
func (f *Flow) Start(ctx context.Context, initial *state.State, tag string) (bool, []*state.State, error) {
	if tag == "" {
		tag = time.Now().Format("RUN_2006-01-02_15-04-05")
	}

	f.runDir = filepath.Join(f.designDir, "runs", tag)
	f.tmpDir = filepath.Join(f.runDir, "tmp")
	f.tb = toolbox.New(f.tmpDir)

	if err := os.MkdirAll(f.runDir, 0755); err != nil {
		return false, nil, fmt.Errorf("flow: creating run directory: %w", err)
	}

	resolved, err := f.cfg.Dumps()
	if err != nil {
		return false, nil, err
	}
	if err := os.WriteFile(filepath.Join(f.runDir, "resolved.json"), []byte(resolved), 0644); err != nil {
		return false, nil, fmt.Errorf("flow: writing resolved config: %w", err)
	}

	f.runLog = f.log.WithFlow(f.Name()).WithRun(uuid.NewString(), tag)
	f.steps = nil
	f.reporter.Begin(f.Name())
	f.tracking = true

	defer func() {
		f.reporter.End()
		f.tracking = false
		f.ordinal = 0
		f.maxStage = 0
		f.tmpDir = ""
		f.tb = nil
		f.runLog = nil
	}()

	return f.runner.Run(ctx, f, initial)
}

// SetMaxStageCount records the expected number of stages for display.
// A no-op outside an active run.
func (f *Flow) SetMaxStageCount(count int) {
	if !f.tracking {
		return
	}
	f.maxStage = count
	f.reporter.SetTotal(count)
}

// StartStage begins a new stage, incrementing the ordinal and updating the
// progress description. A no-op outside an active run.
func (f *Flow) StartStage(name string) {
	if !f.tracking {
		return
	}
	f.ordinal++
	f.reporter.Describe(fmt.Sprintf("%s - Stage %d - %s", f.Name(), f.ordinal, name))
}

// EndStage marks the current ordinal as completed on the progress display.
// A no-op outside an active run.
func (f *Flow) EndStage() {
	if !f.tracking {
		return
	}
	f.reporter.Complete(f.ordinal)
}

// CurrentStagePrefix renders the current ordinal zero-padded to the width
// of the expected stage count, with a trailing separator, so lexicographic
// directory ordering matches execution order.
func (f *Flow) CurrentStagePrefix() string {
	width := len(strconv.Itoa(f.maxStage))
	return fmt.Sprintf("%0*d-", width, f.ordinal)
}

// DirForStep returns the step's working directory inside the run
// directory, prefixed with the current stage number. It fails when no run
// directory has been established.
func (f *Flow) DirForStep(s step.Step) (string, error) {
	if f.runDir == "" {
		return "", fmt.Errorf("flow: no run directory established")
	}
	return filepath.Join(f.runDir, f.CurrentStagePrefix()+s.ID()), nil
}

// RunStepAsync submits the step's execution to the flow's bounded worker
// pool and returns immediately. The caller decides when (and whether) to
// join the returned Future; the flow never joins outstanding futures
// automatically, and submitted work is not cancelled on early return.
func (f *Flow) RunStepAsync(ctx context.Context, s step.Step, rc step.RunContext, prev *state.State) *Future {
	return f.pool.submit(ctx, func() (*state.State, error) {
		return s.Start(ctx, rc, prev)
	})
}

// recordStep appends an executed step instance to the flow's bookkeeping.
func (f *Flow) recordStep(s step.Step) {
	f.steps = append(f.steps, s)
}

// Close drains the dispatcher pool. After Close the Flow must not be used.
func (f *Flow) Close() error {
	f.pool.close()
	return nil
}
