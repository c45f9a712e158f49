package flow

import (
	"context"
	"errors"

	"github.com/stagehand-io/stagehand/internal/state"
	"github.com/stagehand-io/stagehand/internal/step"
)

// Sequential is the simplest scheduling strategy: it runs each declared
// step as a stage, serially, in declared order, with nothing happening in
// parallel, stopping at the first handled failure.
type Sequential struct {
	factories []step.Factory
}

// NewSequential returns a Sequential strategy over the given step
// factories. Each factory is invoked exactly once, immediately before its
// step executes.
func NewSequential(factories ...step.Factory) *Sequential {
	return &Sequential{factories: factories}
}

// Name implements Runner.
func (s *Sequential) Name() string { return "Sequential" }

// Run implements Runner.
func (s *Sequential) Run(ctx context.Context, f *Flow, initial *state.State) (bool, []*state.State, error) {
	f.SetMaxStageCount(len(s.factories))

	if initial == nil {
		initial = state.New()
	}
	lineage := []*state.State{initial}

	log := f.RunLog()
	log.Info("starting flow", "steps", len(s.factories))

	for _, factory := range s.factories {
		st := factory()
		f.recordStep(st)
		f.StartStage(st.Name())

		stepDir, err := f.DirForStep(st)
		if err != nil {
			return false, lineage, err
		}
		rc := step.RunContext{
			StepDir: stepDir,
			Toolbox: f.Toolbox(),
			Config:  f.Config(),
			Log:     log.WithStage(f.Ordinal(), st.Name()),
		}

		next, err := st.Start(ctx, rc, lineage[len(lineage)-1])
		if err != nil {
			var missing *step.MissingInputError
			if errors.As(err, &missing) {
				log.Error("misconfigured flow", "error", missing.Error())
				return false, lineage, nil
			}
			var execFailed *step.ExecutionError
			if errors.As(err, &execFailed) {
				log.Error("an error has been encountered, the flow will stop", "step", st.ID())
				return false, lineage, nil
			}
			return false, lineage, err
		}

		lineage = append(lineage, next)
		f.EndStage()
	}

	log.Info("flow complete")
	return true, lineage, nil
}
